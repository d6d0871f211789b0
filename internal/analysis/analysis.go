// Package analysis orchestrates a single terrain photo analysis: decode,
// preprocess, classify, and resolve the advisory for the top prediction.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/fire-risk/internal/advisory"
	"github.com/example/fire-risk/internal/classifier"
	"github.com/example/fire-risk/internal/logging"
	"github.com/example/fire-risk/internal/preprocess"
)

// ErrNoResult reports that no completed analysis exists for a request ID.
var ErrNoResult = errors.New("analysis produced no result")

// processingMarker is cached under the request key while an analysis runs.
const processingMarker = "processing"

// Result is the outcome of one analysis request. Every result carries the
// request ID it was produced for, so a stale delivery can never be confused
// with a newer one.
type Result struct {
	RequestID      string    `json:"request_id"`
	Label          string    `json:"label"`
	Confidence     float32   `json:"confidence"`
	Summary        string    `json:"summary"`
	Recommendation string    `json:"recommendation"`
	CreatedAt      time.Time `json:"created_at"`
}

// AnalysisUseCase encapsulates the analysis pipeline and result caching.
type AnalysisUseCase struct {
	cache          Cache
	model          classifier.Client
	logger         *zap.Logger
	resultTTL      time.Duration
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewAnalysisUseCase constructs a new use case instance.
func NewAnalysisUseCase(cache Cache, model classifier.Client, resultTTL time.Duration, logger *zap.Logger) *AnalysisUseCase {
	return &AnalysisUseCase{
		cache:          cache,
		model:          model,
		logger:         logger.Named("analysis_usecase"),
		resultTTL:      resultTTL,
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// AnalyzeImage runs one synchronous analysis over the raw image bytes. Any
// stage failure aborts the whole analysis: the error is logged and wrapped,
// and no partial result is produced or cached.
func (uc *AnalysisUseCase) AnalyzeImage(ctx context.Context, imageBytes []byte) (*Result, error) {
	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "analysis.analyze_image", requestID)

	cacheKey := resultCacheKey(requestID)
	if err := uc.withCacheRetry(ctx, requestID, "cache.set.processing", func() error {
		return uc.cache.Set(ctx, cacheKey, processingMarker, time.Minute)
	}); err != nil {
		opLogger.Error("failed to set processing flag", zap.Error(err))
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		wrapped := logging.NewOperationError("analysis.decode_image", requestID, err)
		opLogger.Error("image decode failed", zap.Error(wrapped))
		return nil, wrapped
	}

	tensor, err := preprocess.Tensor(img, uc.model.InputSize())
	if err != nil {
		wrapped := logging.NewOperationError("analysis.preprocess", requestID, err)
		opLogger.Error("preprocessing failed", zap.Error(wrapped),
			zap.String("format", format),
			zap.Int("width", img.Bounds().Dx()),
			zap.Int("height", img.Bounds().Dy()))
		return nil, wrapped
	}

	predictions, err := uc.model.Classify(ctx, tensor)
	if err != nil {
		wrapped := logging.NewOperationError("analysis.classify", requestID, err)
		opLogger.Error("classification failed", zap.Error(wrapped))
		return nil, wrapped
	}
	if len(predictions) == 0 {
		wrapped := logging.NewOperationError("analysis.classify", requestID, errors.New("classifier returned no predictions"))
		opLogger.Error("classification returned nothing", zap.Error(wrapped))
		return nil, wrapped
	}

	top := predictions[0]
	result := &Result{
		RequestID:      requestID,
		Label:          top.Label,
		Confidence:     top.Confidence,
		Summary:        advisory.Summary(top.Label, top.Confidence),
		Recommendation: advisory.Recommendation(top.Label),
		CreatedAt:      time.Now().UTC(),
	}

	serialized, err := json.Marshal(result)
	if err != nil {
		opLogger.Error("failed to serialize analysis result", zap.Error(err))
		return nil, err
	}

	if err := uc.withCacheRetry(ctx, requestID, "cache.set.result", func() error {
		return uc.cache.Set(ctx, cacheKey, string(serialized), uc.resultTTL)
	}); err != nil {
		opLogger.Error("failed to cache analysis result", zap.Error(err))
		return nil, err
	}

	opLogger.Info("analysis complete",
		zap.String("label", result.Label),
		zap.Float32("confidence", result.Confidence))
	return result, nil
}

// GetResult retrieves a completed analysis by request ID. ErrNoResult is
// returned when the result has expired, never existed, or is still running.
func (uc *AnalysisUseCase) GetResult(ctx context.Context, requestID string) (*Result, error) {
	opLogger := logging.WithOperation(uc.logger, "analysis.get_result", requestID)

	cached, err := uc.withCacheGet(ctx, requestID, "cache.get.result", resultCacheKey(requestID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoResult
		}
		opLogger.Warn("failed to read cache", zap.Error(err))
		return nil, err
	}

	if cached == processingMarker {
		return nil, ErrNoResult
	}

	var result Result
	if err := json.Unmarshal([]byte(cached), &result); err != nil {
		opLogger.Warn("failed to decode cached result", zap.Error(err))
		return nil, ErrNoResult
	}
	return &result, nil
}

func resultCacheKey(requestID string) string {
	return fmt.Sprintf("analysis:%s", requestID)
}

func (uc *AnalysisUseCase) withCacheRetry(ctx context.Context, requestID, operation string, fn func() error) error {
	if uc.retryAttempts <= 1 {
		err := fn()
		return logging.NewOperationError(operation, requestID, err)
	}

	backoff := uc.initialBackoff
	opLogger := logging.WithOperation(uc.logger, operation, requestID)
	var err error
	for attempt := 0; attempt < uc.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, requestID, ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= uc.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("cache operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}

		if !isTransientError(err) || attempt == uc.retryAttempts-1 {
			opLogger.Error("cache operation failed", zap.Error(err), zap.Int("attempt", attempt+1))
			return logging.NewOperationError(operation, requestID, err)
		}

		opLogger.Warn("transient cache error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, requestID, err)
}

func (uc *AnalysisUseCase) withCacheGet(ctx context.Context, requestID, operation, cacheKey string) (string, error) {
	var result string
	err := uc.withCacheRetry(ctx, requestID, operation, func() error {
		value, err := uc.cache.Get(ctx, cacheKey)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		return "", err
	}
	return result, nil
}

func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && temporary.Temporary() {
		return true
	}

	return false
}
