package classifier

import (
	"context"
	"fmt"
	"sort"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

// ONNXClassifier runs a pre-trained terrain risk model through the ONNX
// runtime. The session owns pre-allocated input and output tensors, so a
// mutex serializes Classify calls: at most one inference is in flight.
type ONNXClassifier struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	meta         Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// NewONNXClassifier loads the model artifact and its metadata and prepares a
// reusable inference session. The caller must Close the classifier when done.
func NewONNXClassifier(modelPath, metadataPath string, logger *zap.Logger) (*ONNXClassifier, error) {
	meta, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx environment: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("create onnx session for %s: %w", modelPath, err)
	}

	logger.Info("loaded terrain risk model",
		zap.String("model", modelPath),
		zap.Strings("classes", meta.Classes),
		zap.Int("image_size", meta.ImageSize))

	return &ONNXClassifier{
		session:      session,
		meta:         meta,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

// InputSize reports the square input dimension from the model metadata.
func (c *ONNXClassifier) InputSize() int {
	return c.meta.ImageSize
}

// Classify runs a single synchronous inference over the given tensor and
// returns the label vocabulary ranked by descending confidence.
func (c *ONNXClassifier) Classify(ctx context.Context, tensor []float32) ([]Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if expected := c.meta.inputLength(); len(tensor) != expected {
		return nil, fmt.Errorf("tensor has %d values, model expects %d", len(tensor), expected)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	copy(c.inputTensor.GetData(), tensor)
	if err := c.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	return rankPredictions(c.meta.Classes, c.outputTensor.GetData()), nil
}

// Close releases the session and its tensors.
func (c *ONNXClassifier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inputTensor != nil {
		c.inputTensor.Destroy()
	}
	if c.outputTensor != nil {
		c.outputTensor.Destroy()
	}
	if c.session != nil {
		c.session.Destroy()
	}
	ort.DestroyEnvironment()
}

// rankPredictions pairs each class label with its score and sorts by
// descending confidence. Extra scores beyond the vocabulary are ignored.
func rankPredictions(classes []string, scores []float32) []Prediction {
	n := len(classes)
	if len(scores) < n {
		n = len(scores)
	}

	predictions := make([]Prediction, 0, n)
	for i := 0; i < n; i++ {
		predictions = append(predictions, Prediction{Label: classes[i], Confidence: scores[i]})
	}
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Confidence > predictions[j].Confidence
	})
	return predictions
}
