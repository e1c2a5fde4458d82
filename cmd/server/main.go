package main

import (
	"context"
	"log"
	"net/http"
	"path"

	"github.com/gonuts/flag"

	"github.com/aliffadillah/durian-leaf-classification/internal/bootstrap"
	"github.com/aliffadillah/durian-leaf-classification/internal/config"
	"github.com/aliffadillah/durian-leaf-classification/internal/handlers"
	"github.com/aliffadillah/durian-leaf-classification/internal/logger"
	"github.com/aliffadillah/durian-leaf-classification/internal/metrics"
)

func enableCORS(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// staticSite serves dir, answering missing files with notFound.
func staticSite(dir string, notFound http.HandlerFunc) http.Handler {
	root := http.Dir(dir)
	files := http.FileServer(root)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, err := root.Open(path.Clean("/" + r.URL.Path))
		if err != nil {
			notFound(w, r)
			return
		}
		f.Close()
		files.ServeHTTP(w, r)
	})
}

func newMux(handler *handlers.Handler, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", enableCORS(http.HandlerFunc(handler.Health)))
	mux.HandleFunc("/api", enableCORS(http.HandlerFunc(handler.API)))
	mux.HandleFunc("/predict", enableCORS(http.HandlerFunc(handler.Predict)))
	mux.HandleFunc("/metrics", enableCORS(metrics.Handler()))

	if staticDir != "" {
		mux.HandleFunc("/", enableCORS(staticSite(staticDir, handler.NotFound)))
	} else {
		mux.HandleFunc("/", enableCORS(http.HandlerFunc(handler.NotFound)))
	}
	return mux
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: ./config.yaml or ./configs/config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.Log.File, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer lg.Close()

	p, cleanup, err := bootstrap.Pipeline(context.Background(), cfg, lg)
	if err != nil {
		log.Fatalf("Failed to initialize pipeline: %v", err)
	}
	defer cleanup()

	handler := handlers.NewHandler(p, cfg.Server, lg.With("http"))
	mux := newMux(handler, cfg.Server.StaticDir)

	port := cfg.Server.Port
	st := p.Status()
	lg.Info("Server starting on port %s", port)
	lg.Info("Model: %v, scaler: %v, dataset: %v", st.Model, st.Scaler, st.Dataset)
	lg.Info("Endpoints:")
	lg.Info("  GET  /health  - Health check")
	lg.Info("  GET  /api     - Service description")
	lg.Info("  POST /predict - Classify an uploaded leaf photo")
	lg.Info("  GET  /metrics - Prometheus metrics")
	lg.Info("Upload test: curl -X POST -F \"image=@leaf.jpg\" http://localhost:%s/predict", port)

	if err := http.ListenAndServe(":"+port, mux); err != nil {
		lg.Error("Server failed: %v", err)
		cleanup()
		lg.Close()
		log.Fatalf("Server failed: %v", err)
	}
}
