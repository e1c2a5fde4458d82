package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/aliffadillah/durian-leaf-classification/internal/config"
	"github.com/aliffadillah/durian-leaf-classification/internal/leafimage"
	"github.com/aliffadillah/durian-leaf-classification/internal/logger"
	"github.com/aliffadillah/durian-leaf-classification/internal/metrics"
	"github.com/aliffadillah/durian-leaf-classification/internal/pipeline"
)

type Handler struct {
	pipeline *pipeline.Context
	server   config.Server
	log      *logger.Manager
}

func NewHandler(p *pipeline.Context, server config.Server, log *logger.Manager) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		pipeline: p,
		server:   server,
		log:      log,
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, title, message string) {
	writeJSON(w, status, ErrorResponse{Error: title, Message: message, StatusCode: status})
}

func loaded(ok bool) string {
	if ok {
		return "loaded"
	}
	return "not loaded"
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.pipeline.Status()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":        "healthy",
		"model_status":  loaded(st.Model),
		"scaler_status": loaded(st.Scaler),
		"data_status":   loaded(st.Dataset),
		"timestamp":     time.Now().Format("2006-01-02 15:04:05"),
	})
}

func (h *Handler) API(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Durian Leaf Classification API",
		"endpoints": map[string]string{
			"POST /predict": "Upload image for classification",
			"GET /health":   "Check API health status",
			"GET /metrics":  "Prometheus metrics",
		},
		"status": "running",
	})
}

// NotFound answers unknown routes when no static site is configured.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Not Found",
		"The requested resource was not found on this server.")
}

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "Use POST with a multipart image upload.")
		return
	}

	id := uuid.NewString()
	log := h.log.With(id[:8])
	w.Header().Set("X-Request-ID", id)

	st := h.pipeline.Status()
	if !st.Model {
		h.reject(w, "unavailable", http.StatusServiceUnavailable, "Model not available",
			"Machine learning model is not loaded. Please check server configuration.")
		return
	}
	if !st.Dataset {
		h.reject(w, "unavailable", http.StatusServiceUnavailable, "Data not available",
			"GLCM features data is not loaded. Please check server configuration.")
		return
	}

	if r.ContentLength > h.server.MaxUploadBytes {
		h.tooLarge(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.server.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.server.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.tooLarge(w)
			return
		}
		log.Debug("multipart parse: %v", err)
		h.reject(w, "input", http.StatusBadRequest, "Bad Request",
			"The request could not be understood by the server.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		h.reject(w, "input", http.StatusBadRequest, "No image provided", "Please upload an image file.")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		h.reject(w, "input", http.StatusBadRequest, "No file selected", "Please select an image file to upload.")
		return
	}
	if !h.server.AllowsExtension(filepath.Ext(header.Filename)) {
		h.reject(w, "input", http.StatusBadRequest, "Invalid file type",
			"Please upload a valid image file (PNG, JPG, JPEG, GIF, BMP).")
		return
	}

	log.Info("Received file: %s, size: %d bytes", header.Filename, header.Size)

	img, err := leafimage.DecodeLimit(file, h.server.MaxPixels)
	if err != nil {
		log.Debug("decode: %v", err)
		h.reject(w, "input", http.StatusBadRequest, "Invalid image",
			"Could not decode the uploaded image. Please upload a valid image file.")
		return
	}

	start := time.Now()
	result, err := h.pipeline.Run(r.Context(), img)
	if err != nil {
		log.Error("Prediction error: %v", err)
		status, title, outcome := classify(err)
		h.reject(w, outcome, status, title, err.Error())
		return
	}
	metrics.ObserveStage(pipeline.StageCompleted.String(), start)
	metrics.Requests.WithLabelValues("ok").Inc()
	metrics.Labels.WithLabelValues(result.Label.String()).Inc()

	log.Info("Prediction: %s (%d comparisons)", result.Prediction, result.Comparisons)
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) reject(w http.ResponseWriter, outcome string, status int, title, message string) {
	metrics.Requests.WithLabelValues(outcome).Inc()
	writeError(w, status, title, message)
}

func (h *Handler) tooLarge(w http.ResponseWriter) {
	h.reject(w, "too_large", http.StatusRequestEntityTooLarge, "Request Entity Too Large",
		"The uploaded file is too large.")
}

// classify maps a pipeline failure to a status, title and metrics outcome.
func classify(err error) (int, string, string) {
	kind, _ := pipeline.KindOf(err)
	switch kind {
	case pipeline.KindInput:
		return http.StatusBadRequest, "Invalid image", "input"
	case pipeline.KindExtraction:
		return http.StatusUnprocessableEntity, "Feature extraction failed", "extraction"
	case pipeline.KindUnavailable:
		return http.StatusServiceUnavailable, "Service not available", "unavailable"
	case pipeline.KindSegmentation:
		return http.StatusInternalServerError, "Segmentation error", "segmentation"
	case pipeline.KindRanking:
		return http.StatusInternalServerError, "Distance calculation error", "ranking"
	case pipeline.KindPrediction:
		return http.StatusInternalServerError, "Prediction error", "prediction"
	default:
		return http.StatusInternalServerError, "Unexpected error", "internal"
	}
}
