package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliffadillah/durian-leaf-classification/internal/config"
	"github.com/aliffadillah/durian-leaf-classification/internal/glcm"
	"github.com/aliffadillah/durian-leaf-classification/internal/handlers"
	"github.com/aliffadillah/durian-leaf-classification/internal/pipeline"
	"github.com/aliffadillah/durian-leaf-classification/internal/segment"
)

func testHandler(t *testing.T) *handlers.Handler {
	p, err := pipeline.NewContext(pipeline.Options{
		Segmenter: segment.NewNative(segment.DefaultThresholds()),
		Extractor: glcm.Extractor{},
	}, pipeline.Artifacts{})
	require.NoError(t, err)
	return handlers.NewHandler(p, config.Default().Server, nil)
}

func TestPreflight(t *testing.T) {
	mux := newMux(testHandler(t), "")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/predict", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestRoutes(t *testing.T) {
	mux := newMux(testHandler(t), "")

	for path, want := range map[string]int{
		"/health":  http.StatusOK,
		"/api":     http.StatusOK,
		"/metrics": http.StatusOK,
		"/missing": http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), path)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStaticSite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>leaf</h1>"), 0o644))

	mux := newMux(testHandler(t), dir)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "leaf")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"error":"Not Found"`)
}
