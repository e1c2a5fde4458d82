package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aliffadillah/durian-leaf-classification/internal/feature"
	"github.com/aliffadillah/durian-leaf-classification/internal/leafimage"
	"github.com/aliffadillah/durian-leaf-classification/internal/metrics"
	"github.com/aliffadillah/durian-leaf-classification/internal/model"
	"github.com/aliffadillah/durian-leaf-classification/internal/rank"
)

// Result is a completed query.
type Result struct {
	Label       model.Label
	Prediction  string
	Features    feature.Vector
	Scaled      feature.Vector
	Comparisons int
	// Closest and TopK are empty when the classifier rejected the image.
	Closest *rank.Match
	TopK    []rank.Match
	Stage   Stage
}

// MarshalJSON renders the public response shape.
func (r *Result) MarshalJSON() ([]byte, error) {
	top := r.TopK
	if top == nil {
		top = []rank.Match{}
	}
	return json.Marshal(struct {
		Success          bool               `json:"success"`
		ModelPrediction  string             `json:"model_prediction"`
		InputFeatures    map[string]float64 `json:"input_features"`
		TotalComparisons int                `json:"total_comparisons"`
		ClosestMatch     *rank.Match        `json:"closest_match"`
		TopMatches       []rank.Match       `json:"top_5_matches"`
	}{
		Success:          true,
		ModelPrediction:  r.Prediction,
		InputFeatures:    r.Features.Map(),
		TotalComparisons: r.Comparisons,
		ClosestMatch:     r.Closest,
		TopMatches:       top,
	})
}

// Run takes a decoded photo through every stage. On failure the returned
// error is an *Error naming the stage the query had reached.
func (c *Context) Run(ctx context.Context, img *leafimage.Image) (*Result, error) {
	if img.Empty() {
		return nil, fail(KindInput, StageValidated, leafimage.ErrDecode)
	}
	if !c.Status().Ready() {
		return nil, c.unavailable()
	}
	img = leafimage.Downscale(img, c.opts.MaxSide)

	start := time.Now()
	segmented, err := c.Segment(img)
	if err != nil {
		return nil, err
	}
	metrics.ObserveStage(StageSegmented.String(), start)
	if err := ctx.Err(); err != nil {
		return nil, fail(KindSegmentation, StageSegmented, err)
	}

	start = time.Now()
	raw, err := c.ExtractFeatures(segmented)
	if err != nil {
		return nil, err
	}
	metrics.ObserveStage(StageFeatureExtracted.String(), start)
	c.log.Debug("features %v", raw)

	scaled, err := c.Transform(raw)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	ranking, err := c.Rank(scaled)
	if err != nil {
		return nil, err
	}
	metrics.ObserveStage(StageRanked.String(), start)

	start = time.Now()
	label, err := c.Predict(scaled)
	if err != nil {
		return nil, err
	}
	metrics.ObserveStage(StageClassified.String(), start)

	res := &Result{
		Label:       label,
		Prediction:  model.Describe(label, c.opts.UnrecognizedMessage),
		Features:    raw,
		Scaled:      scaled,
		Comparisons: ranking.Len(),
		TopK:        []rank.Match{},
		Stage:       StageCompleted,
	}
	if !label.IsUnrecognized() {
		if closest, ok := ranking.Closest(); ok {
			res.Closest = &closest
		}
		res.TopK = ranking.TopK(c.opts.TopK)
	}
	return res, nil
}

func (c *Context) unavailable() *Error {
	for _, err := range []error{c.modelErr, c.datasetErr, c.scalerErr} {
		if err != nil {
			return fail(KindUnavailable, StageValidated, err)
		}
	}
	return fail(KindUnavailable, StageValidated, ErrUnavailable)
}
