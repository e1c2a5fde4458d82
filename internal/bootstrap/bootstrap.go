// Package bootstrap loads the startup artifacts named by a Config and
// assembles the shared pipeline context.
package bootstrap

import (
	"context"

	"github.com/aliffadillah/durian-leaf-classification/internal/config"
	"github.com/aliffadillah/durian-leaf-classification/internal/dataset"
	"github.com/aliffadillah/durian-leaf-classification/internal/feature"
	"github.com/aliffadillah/durian-leaf-classification/internal/glcm"
	"github.com/aliffadillah/durian-leaf-classification/internal/leafimage"
	"github.com/aliffadillah/durian-leaf-classification/internal/logger"
	"github.com/aliffadillah/durian-leaf-classification/internal/metrics"
	"github.com/aliffadillah/durian-leaf-classification/internal/model"
	"github.com/aliffadillah/durian-leaf-classification/internal/pipeline"
	"github.com/aliffadillah/durian-leaf-classification/internal/segment"
)

// newModel is replaced in tests so they don't need the onnxruntime library.
var newModel = func(a config.Artifacts) (model.Predictor, func(), error) {
	s, err := model.NewServer(a.Model, a.Metadata, a.OnnxLibrary)
	if err != nil {
		return nil, func() {}, err
	}
	return s, s.Close, nil
}

// LoadArtifacts loads each artifact independently. A failure is logged and
// recorded in the returned Artifacts; it never stops the others. The
// returned func releases the model.
func LoadArtifacts(ctx context.Context, cfg config.Config, log *logger.Manager) (pipeline.Artifacts, func()) {
	var a pipeline.Artifacts

	a.Scaler, a.ScalerErr = feature.LoadScaler(cfg.Artifacts.Scaler)
	if a.ScalerErr != nil {
		log.Error("Error loading scaler: %v", a.ScalerErr)
	} else {
		log.Info("Scaler loaded successfully")
	}
	metrics.SetArtifact("scaler", a.ScalerErr == nil)

	m, closeModel, err := newModel(cfg.Artifacts)
	if err != nil {
		a.ModelErr = err
		log.Error("Error loading model: %v", err)
	} else {
		a.Model = m
		log.Info("Model loaded from %s", cfg.Artifacts.Model)
	}
	metrics.SetArtifact("model", err == nil)

	a.Dataset, a.DatasetErr = loadDataset(ctx, cfg, log)
	if a.DatasetErr != nil {
		log.Error("Error loading GLCM features: %v", a.DatasetErr)
	} else {
		log.Info("GLCM features loaded: %d records, labels %v", a.Dataset.Len(), a.Dataset.Labels())
		metrics.DatasetRecords.Set(float64(a.Dataset.Len()))
	}
	metrics.SetArtifact("dataset", a.DatasetErr == nil)

	return a, closeModel
}

func loadDataset(ctx context.Context, cfg config.Config, log *logger.Manager) (*dataset.Dataset, error) {
	if cfg.Dataset.Driver == "" {
		return dataset.LoadCSV(cfg.Artifacts.Dataset)
	}

	log.Info("Reading dataset from %s table %s", cfg.Dataset.Driver, cfg.Dataset.Table)
	db, err := dataset.Open(ctx, cfg.Dataset.Driver, cfg.Dataset.DSN)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return dataset.LoadSQL(ctx, db, cfg.Dataset.Table)
}

// Options translates the processing settings of cfg.
func Options(cfg config.Config, log *logger.Manager) (pipeline.Options, error) {
	seg, err := segment.New(cfg.Segmentation.Backend, cfg.Segmentation.Thresholds.Segment())
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Segmenter:           seg,
		Extractor:           glcm.Extractor{},
		MaxSide:             cfg.Preprocess.MaxSide,
		TopK:                cfg.Ranking.TopK,
		UnrecognizedMessage: cfg.Labels.UnrecognizedMessage,
		Logger:              log.With("pipeline"),
	}
	if cfg.Staging.Enabled {
		opts.Staging = leafimage.NewStaging(cfg.Staging.Dir, cfg.Staging.RetryDelay)
	}
	return opts, nil
}

// Pipeline loads everything and returns the shared context plus a cleanup
// func. Only an invalid processing setup is an error; missing artifacts
// leave the context partially available.
func Pipeline(ctx context.Context, cfg config.Config, log *logger.Manager) (*pipeline.Context, func(), error) {
	opts, err := Options(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	a, cleanup := LoadArtifacts(ctx, cfg, log)
	p, err := pipeline.NewContext(opts, a)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return p, cleanup, nil
}
