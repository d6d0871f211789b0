// Package classifier defines the terrain risk classifier capability and its
// on-device ONNX implementation.
package classifier

import "context"

// Prediction is a single (label, confidence) pair produced by the model.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
}

// Client exposes the subset of classifier functionality used by the analysis
// flow. Classify returns predictions ordered by descending confidence; the
// implementation is an opaque pre-trained model and is stubbed in tests.
type Client interface {
	// InputSize reports the square input dimension the model expects.
	InputSize() int
	Classify(ctx context.Context, tensor []float32) ([]Prediction, error)
}
