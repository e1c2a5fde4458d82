package model

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/aliffadillah/durian-leaf-classification/internal/feature"
)

// Server runs the exported classifier through ONNX Runtime. The session
// binds one input and one output tensor, so Predict calls are serialized.
type Server struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	Metadata     Metadata
	labels       *LabelSet
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// NewServer loads metadata and the ONNX graph. libraryPath points at the
// onnxruntime shared library; empty uses the platform default.
func NewServer(modelPath, metadataPath, libraryPath string) (*Server, error) {
	metadata, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}
	labels, err := NewLabelSet(metadata.Classes, metadata.Sentinel)
	if err != nil {
		return nil, err
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	s := &Server{Metadata: metadata, labels: labels}

	inputShape := ort.NewShape(1, feature.Len)
	outputShape := ort.NewShape(1, int64(labels.Len()))

	s.inputTensor, err = ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	s.outputTensor, err = ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	s.session, err = ort.NewAdvancedSession(modelPath,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.ArbitraryTensor{s.inputTensor}, []ort.ArbitraryTensor{s.outputTensor},
		nil)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return s, nil
}

// Labels returns the model's label set.
func (s *Server) Labels() *LabelSet {
	return s.labels
}

// Classify runs the model and returns the most probable class with the
// per-class scores.
func (s *Server) Classify(v feature.Vector) (*Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copy(s.inputTensor.GetData(), v.Float32())

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	return decide(s.labels, s.outputTensor.GetData())
}

// Predict implements Predictor.
func (s *Server) Predict(v feature.Vector) (Label, error) {
	p, err := s.Classify(v)
	if err != nil {
		return Label{}, err
	}
	return p.Label, nil
}

// decide picks the highest score; the first class wins ties.
func decide(labels *LabelSet, outputData []float32) (*Prediction, error) {
	if len(outputData) == 0 {
		return nil, fmt.Errorf("model produced no scores")
	}

	maxIdx := 0
	maxVal := outputData[0]
	predictions := make(map[string]float32)

	for i, val := range outputData {
		if i < labels.Len() {
			predictions[labels.classes[i]] = val
			if val > maxVal {
				maxVal = val
				maxIdx = i
			}
		}
	}

	label, err := labels.At(maxIdx)
	if err != nil {
		return nil, err
	}
	return &Prediction{
		Label:       label,
		Confidence:  maxVal,
		Predictions: predictions,
	}, nil
}

func (s *Server) Close() {
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
	}
	if s.session != nil {
		s.session.Destroy()
	}
	ort.DestroyEnvironment()
}
