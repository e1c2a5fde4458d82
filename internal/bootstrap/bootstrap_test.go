package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliffadillah/durian-leaf-classification/internal/config"
	"github.com/aliffadillah/durian-leaf-classification/internal/feature"
	"github.com/aliffadillah/durian-leaf-classification/internal/logger"
	"github.com/aliffadillah/durian-leaf-classification/internal/model"
)

type stubModel struct{}

func (stubModel) Predict(feature.Vector) (model.Label, error) { return model.Unrecognized, nil }

func artifactsDir(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Artifacts.Scaler = filepath.Join(dir, "scaler.json")
	cfg.Artifacts.Dataset = filepath.Join(dir, "features.csv")
	cfg.Artifacts.Model = filepath.Join(dir, "model.onnx")
	cfg.Artifacts.Metadata = filepath.Join(dir, "model_metadata.json")

	s, err := feature.NewScaler(feature.Vector{100, 0.5, 0.1, 0.3}, feature.Vector{20, 0.1, 0.02, 0.05})
	require.NoError(t, err)
	require.NoError(t, s.Save(cfg.Artifacts.Scaler))
	require.NoError(t, os.WriteFile(cfg.Artifacts.Dataset, []byte(
		"contrast,correlation,energy,homogeneity,label\n"+
			"120,0.9,0.05,0.3,HEALTHY\n"+
			"80,0.8,0.07,0.35,LEAF_SPOT\n"), 0o644))
	return cfg
}

func TestLoadArtifactsIndependently(t *testing.T) {
	cfg := artifactsDir(t)
	var buf bytes.Buffer

	a, cleanup := LoadArtifacts(context.Background(), cfg, logger.NewWriter(&buf, false))
	defer cleanup()

	require.NoError(t, a.ScalerErr)
	require.NoError(t, a.DatasetErr)
	assert.Equal(t, 2, a.Dataset.Len())
	assert.Nil(t, a.Model)
	assert.Error(t, a.ModelErr, "metadata file is missing")
	assert.Contains(t, buf.String(), "Error loading model")
}

func TestPipelineWithStubModel(t *testing.T) {
	orig := newModel
	defer func() { newModel = orig }()
	closed := false
	newModel = func(config.Artifacts) (model.Predictor, func(), error) {
		return stubModel{}, func() { closed = true }, nil
	}

	cfg := artifactsDir(t)
	cfg.Staging.Enabled = true
	cfg.Staging.Dir = t.TempDir()

	p, cleanup, err := Pipeline(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	assert.True(t, p.Status().Ready())
	cleanup()
	assert.True(t, closed)
}

func TestPipelineMissingEverything(t *testing.T) {
	orig := newModel
	defer func() { newModel = orig }()
	newModel = func(config.Artifacts) (model.Predictor, func(), error) {
		return nil, func() {}, errors.New("no model")
	}

	cfg := config.Default()
	dir := t.TempDir()
	cfg.Artifacts.Scaler = filepath.Join(dir, "missing.json")
	cfg.Artifacts.Dataset = filepath.Join(dir, "missing.csv")

	p, cleanup, err := Pipeline(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	defer cleanup()
	st := p.Status()
	assert.False(t, st.Model || st.Scaler || st.Dataset)
}

func TestOptionsRejectsBadBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Segmentation.Backend = "cuda"
	_, err := Options(cfg, logger.Discard())
	assert.Error(t, err)
}
