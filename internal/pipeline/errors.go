package pipeline

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks an operation whose startup artifact did not load.
var ErrUnavailable = errors.New("not available")

// Kind classifies a pipeline failure.
type Kind int

const (
	KindInput Kind = iota + 1
	KindSegmentation
	KindExtraction
	KindUnavailable
	KindRanking
	KindPrediction
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindSegmentation:
		return "segmentation"
	case KindExtraction:
		return "extraction"
	case KindUnavailable:
		return "configuration unavailable"
	case KindRanking:
		return "ranking"
	case KindPrediction:
		return "prediction"
	default:
		return "unknown"
	}
}

// Stage is a step of one query's lifecycle.
type Stage int

const (
	StageValidated Stage = iota
	StageSegmented
	StageFeatureExtracted
	StageScaled
	StageClassified
	StageRanked
	StageCompleted
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageValidated:
		return "validated"
	case StageSegmented:
		return "segmented"
	case StageFeatureExtracted:
		return "feature_extracted"
	case StageScaled:
		return "scaled"
	case StageClassified:
		return "classified"
	case StageRanked:
		return "ranked"
	case StageCompleted:
		return "completed"
	default:
		return "failed"
	}
}

// Error is the failed terminal state of a query. From is the last stage
// the query reached before failing.
type Error struct {
	Kind Kind
	From Stage
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failure after %s: %v", e.Kind, e.From, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fail(kind Kind, from Stage, err error) *Error {
	return &Error{Kind: kind, From: from, Err: err}
}

// KindOf returns the Kind of a pipeline error.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}
