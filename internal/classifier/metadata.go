package classifier

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metadata describes the exported model artifact: tensor shapes, the label
// vocabulary in output order, and the square input resolution.
type Metadata struct {
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

// LoadMetadata reads and validates the model metadata file written alongside
// the ONNX artifact at export time.
func LoadMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, fmt.Errorf("parse metadata: %w", err)
	}
	if err := meta.validate(); err != nil {
		return Metadata{}, fmt.Errorf("invalid metadata %s: %w", path, err)
	}
	return meta, nil
}

func (m Metadata) validate() error {
	if len(m.Classes) == 0 {
		return fmt.Errorf("no classes declared")
	}
	if m.ImageSize <= 0 {
		return fmt.Errorf("image_size must be positive, got %d", m.ImageSize)
	}
	if len(m.InputShape) == 0 || len(m.OutputShape) == 0 {
		return fmt.Errorf("input and output shapes are required")
	}
	if expected := 3 * m.ImageSize * m.ImageSize; m.inputLength() != expected {
		return fmt.Errorf("input_shape %v does not match image_size %d (expected %d values)", m.InputShape, m.ImageSize, expected)
	}
	return nil
}

// inputLength is the flattened element count of the model input tensor.
func (m Metadata) inputLength() int {
	length := 1
	for _, dim := range m.InputShape {
		length *= int(dim)
	}
	return length
}
