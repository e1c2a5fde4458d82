// Package pipeline runs one leaf photo through segmentation, texture
// extraction, scaling, classification and reference ranking.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/aliffadillah/durian-leaf-classification/internal/dataset"
	"github.com/aliffadillah/durian-leaf-classification/internal/feature"
	"github.com/aliffadillah/durian-leaf-classification/internal/leafimage"
	"github.com/aliffadillah/durian-leaf-classification/internal/logger"
	"github.com/aliffadillah/durian-leaf-classification/internal/model"
	"github.com/aliffadillah/durian-leaf-classification/internal/rank"
	"github.com/aliffadillah/durian-leaf-classification/internal/segment"
)

// Extractor computes a texture descriptor from a segmented image.
type Extractor interface {
	Extract(img *leafimage.Image) (feature.Vector, error)
}

// Options are the fixed processing settings.
type Options struct {
	Segmenter segment.Segmenter
	Extractor Extractor
	// Staging, when set, round-trips each query image through a temporary
	// file before segmentation.
	Staging *leafimage.Staging
	// MaxSide downscales larger inputs before segmentation; 0 disables it.
	MaxSide             uint
	TopK                int
	UnrecognizedMessage string
	Logger              *logger.Manager
}

// Artifacts are the startup inputs. A nil artifact must come with the
// error that prevented loading it.
type Artifacts struct {
	Scaler     *feature.Scaler
	ScalerErr  error
	Model      model.Predictor
	ModelErr   error
	Dataset    *dataset.Dataset
	DatasetErr error
}

// Context is built once at startup and shared read-only by every query.
type Context struct {
	opts      Options
	log       *logger.Manager
	scaler    *feature.Scaler
	model     model.Predictor
	reference *dataset.Dataset
	scaled    *dataset.Dataset

	scalerErr  error
	modelErr   error
	datasetErr error
}

// NewContext validates options and pre-scales the reference dataset.
func NewContext(opts Options, a Artifacts) (*Context, error) {
	if opts.Segmenter == nil {
		return nil, errors.New("pipeline needs a segmenter")
	}
	if opts.Extractor == nil {
		return nil, errors.New("pipeline needs a feature extractor")
	}
	if opts.TopK <= 0 {
		opts.TopK = rank.DefaultTopK
	}
	if opts.UnrecognizedMessage == "" {
		opts.UnrecognizedMessage = model.DefaultUnrecognizedMessage
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	c := &Context{
		opts:       opts,
		log:        log,
		scaler:     a.Scaler,
		model:      a.Model,
		reference:  a.Dataset,
		scalerErr:  missing("scaler", a.Scaler == nil, a.ScalerErr),
		modelErr:   missing("model", a.Model == nil, a.ModelErr),
		datasetErr: missing("dataset", a.Dataset == nil, a.DatasetErr),
	}
	if c.scaler != nil && c.reference != nil {
		c.scaled = c.reference.Scaled(c.scaler)
	}
	return c, nil
}

func missing(name string, absent bool, err error) error {
	if !absent {
		return nil
	}
	if err == nil {
		return fmt.Errorf("%s %w", name, ErrUnavailable)
	}
	return fmt.Errorf("%s %w: %v", name, ErrUnavailable, err)
}

// Status reports which artifacts are usable.
type Status struct {
	Model   bool
	Scaler  bool
	Dataset bool
}

// Ready reports whether a full query can run.
func (s Status) Ready() bool {
	return s.Model && s.Scaler && s.Dataset
}

func (c *Context) Status() Status {
	return Status{
		Model:   c.model != nil,
		Scaler:  c.scaler != nil,
		Dataset: c.reference != nil,
	}
}

// Reference returns the unscaled reference dataset, nil when not loaded.
func (c *Context) Reference() *dataset.Dataset {
	return c.reference
}

// TopK is the configured short-list size.
func (c *Context) TopK() int {
	return c.opts.TopK
}

// Segment isolates the leaf. The input is never modified.
func (c *Context) Segment(img *leafimage.Image) (*leafimage.Image, error) {
	if img.Empty() {
		return nil, fail(KindInput, StageValidated, leafimage.ErrDecode)
	}

	src := img
	if c.opts.Staging != nil {
		staged, err := c.opts.Staging.Stage(img)
		if err != nil {
			return nil, fail(KindSegmentation, StageValidated, err)
		}
		defer func() {
			c.log.LogError(staged.Release(), "staging cleanup")
		}()

		src, err = staged.Load()
		if err != nil {
			return nil, fail(KindSegmentation, StageValidated, err)
		}
	}

	out, err := c.opts.Segmenter.Segment(src)
	if err != nil {
		return nil, fail(KindSegmentation, StageValidated, err)
	}
	return out, nil
}

// ExtractFeatures computes the raw texture descriptor.
func (c *Context) ExtractFeatures(img *leafimage.Image) (feature.Vector, error) {
	v, err := c.opts.Extractor.Extract(img)
	if err != nil {
		return feature.Vector{}, fail(KindExtraction, StageSegmented, err)
	}
	if !v.Finite() {
		return feature.Vector{}, fail(KindExtraction, StageSegmented, errors.New("descriptor is not finite"))
	}
	return v, nil
}

// Transform scales a raw descriptor.
func (c *Context) Transform(v feature.Vector) (feature.Vector, error) {
	if c.scaler == nil {
		return feature.Vector{}, fail(KindUnavailable, StageFeatureExtracted, c.scalerErr)
	}
	return c.scaler.Transform(v), nil
}

// Predict classifies a scaled descriptor.
func (c *Context) Predict(v feature.Vector) (model.Label, error) {
	if c.model == nil {
		return model.Label{}, fail(KindUnavailable, StageScaled, c.modelErr)
	}
	l, err := c.model.Predict(v)
	if err != nil {
		return model.Label{}, fail(KindPrediction, StageScaled, err)
	}
	return l, nil
}

// Rank orders the scaled reference dataset by distance to a scaled query.
func (c *Context) Rank(v feature.Vector) (*rank.Ranking, error) {
	if c.scaled == nil {
		err := c.datasetErr
		if err == nil {
			err = c.scalerErr
		}
		return nil, fail(KindUnavailable, StageScaled, err)
	}
	r, err := rank.Rank(v, c.scaled.Records())
	if err != nil {
		return nil, fail(KindRanking, StageScaled, err)
	}
	return r, nil
}
