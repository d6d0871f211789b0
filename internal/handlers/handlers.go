package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/fire-risk/internal/advisory"
	"github.com/example/fire-risk/internal/analysis"
)

// MaxUploadSize bounds the accepted image payload.
const MaxUploadSize = 10 << 20

// noResultMessage is the only failure detail exposed to callers; the actual
// cause is logged server-side.
const noResultMessage = "analysis produced no result"

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// AnalysisService is the use case surface the HTTP layer depends on.
type AnalysisService interface {
	AnalyzeImage(ctx context.Context, imageBytes []byte) (*analysis.Result, error)
	GetResult(ctx context.Context, requestID string) (*analysis.Result, error)
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, svc AnalysisService, authMiddleware gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/advisories", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"recommendations": advisory.Table(),
			"default":         advisory.DefaultRecommendation,
		})
	})

	router.POST("/analyze", authMiddleware, func(c *gin.Context) {
		if c.Request.ContentLength > MaxUploadSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds upload limit"})
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		if file.Size > MaxUploadSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds upload limit"})
			return
		}
		if contentType := file.Header.Get("Content-Type"); !allowedContentTypes[contentType] {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "supported image types: JPEG, PNG"})
			return
		}

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unable to open image"})
			return
		}
		defer src.Close()

		data, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image"})
			return
		}
		if len(data) > MaxUploadSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds upload limit"})
			return
		}

		result, err := svc.AnalyzeImage(c.Request.Context(), data)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": noResultMessage})
			return
		}

		c.JSON(http.StatusOK, result)
	})

	router.GET("/result/:id", authMiddleware, func(c *gin.Context) {
		requestID := c.Param("id")
		if requestID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
			return
		}

		result, err := svc.GetResult(c.Request.Context(), requestID)
		if err != nil {
			if errors.Is(err, analysis.ErrNoResult) {
				c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load result"})
			return
		}

		c.JSON(http.StatusOK, result)
	})
}
