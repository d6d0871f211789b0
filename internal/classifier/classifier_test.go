package classifier

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRankPredictionsSortsByConfidence(t *testing.T) {
	classes := []string{"Highrisk", "Mediumrisk", "Lowrisk"}
	scores := []float32{0.12, 0.7, 0.18}

	ranked := rankPredictions(classes, scores)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 predictions, got %d", len(ranked))
	}
	if ranked[0].Label != "Mediumrisk" || ranked[0].Confidence != 0.7 {
		t.Fatalf("unexpected top prediction: %+v", ranked[0])
	}
	if ranked[1].Label != "Lowrisk" || ranked[2].Label != "Highrisk" {
		t.Fatalf("unexpected tail ordering: %+v", ranked[1:])
	}
}

func TestRankPredictionsIgnoresExtraScores(t *testing.T) {
	ranked := rankPredictions([]string{"Highrisk"}, []float32{0.4, 0.9, 0.2})
	if len(ranked) != 1 {
		t.Fatalf("expected 1 prediction, got %d", len(ranked))
	}
	if ranked[0].Label != "Highrisk" || ranked[0].Confidence != 0.4 {
		t.Fatalf("unexpected prediction: %+v", ranked[0])
	}
}

func TestRankPredictionsStableForTies(t *testing.T) {
	ranked := rankPredictions([]string{"Highrisk", "Mediumrisk"}, []float32{0.5, 0.5})
	if ranked[0].Label != "Highrisk" {
		t.Fatalf("tie should preserve vocabulary order, got %+v", ranked)
	}
}

func TestLoadMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	content := `{
		"input_shape": [1, 3, 224, 224],
		"output_shape": [1, 3],
		"classes": ["Highrisk", "Mediumrisk", "Lowrisk"],
		"image_size": 224
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write metadata: %v", err)
	}

	meta, err := LoadMetadata(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ImageSize != 224 {
		t.Fatalf("unexpected image size: %d", meta.ImageSize)
	}
	if got := meta.inputLength(); got != 3*224*224 {
		t.Fatalf("unexpected input length: %d", got)
	}
}

func TestLoadMetadataRejectsEmptyClasses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	content := `{"input_shape": [1, 3, 224, 224], "output_shape": [1, 0], "classes": [], "image_size": 224}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write metadata: %v", err)
	}
	if _, err := LoadMetadata(path); err == nil {
		t.Fatal("expected validation error, got nil")
	}
}

func TestLoadMetadataRejectsShapeSizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	content := `{
		"input_shape": [1, 3, 299, 299],
		"output_shape": [1, 3],
		"classes": ["Highrisk", "Mediumrisk", "Lowrisk"],
		"image_size": 224
	}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write metadata: %v", err)
	}
	if _, err := LoadMetadata(path); err == nil {
		t.Fatal("expected error for input_shape / image_size mismatch, got nil")
	}
}

func TestLoadMetadataMissingFile(t *testing.T) {
	if _, err := LoadMetadata(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
