// Package preprocess converts arbitrary source images into the fixed-shape
// float32 tensor the terrain classifier consumes.
package preprocess

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Channels is the number of color channels in the classifier input.
const Channels = 3

// ErrEmptyImage reports a source image with no pixels.
var ErrEmptyImage = errors.New("source image has no pixels")

// Letterbox scales src uniformly so it fits inside a target×target square
// without cropping or distortion, then centers it on an opaque black canvas.
// The scale factor is min(target/srcWidth, target/srcHeight); sources smaller
// than the target are scaled up. Any alpha in the source is composited over
// the black background.
func Letterbox(src image.Image, target int) (*image.NRGBA, error) {
	if target <= 0 {
		return nil, fmt.Errorf("target dimension must be positive, got %d", target)
	}
	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, ErrEmptyImage
	}

	scale := float64(target) / float64(srcW)
	if s := float64(target) / float64(srcH); s < scale {
		scale = s
	}
	// Round, don't truncate: target/s*s can evaluate to 223.999... and a
	// truncated dimension would leave a one-pixel rim on a square source.
	scaledW := clampDim(int(math.Round(float64(srcW)*scale)), target)
	scaledH := clampDim(int(math.Round(float64(srcH)*scale)), target)

	scaled := imaging.Resize(src, scaledW, scaledH, imaging.Lanczos)
	canvas := imaging.New(target, target, color.Black)
	offset := image.Pt((target-scaledW)/2, (target-scaledH)/2)
	return imaging.Overlay(canvas, scaled, offset, 1.0), nil
}

func clampDim(dim, max int) int {
	if dim < 1 {
		return 1
	}
	if dim > max {
		return max
	}
	return dim
}

// ToTensor flattens a square canvas into a CHW float32 buffer with each
// 8-bit channel normalized to [0, 1]. The returned slice always has length
// Channels×width×height.
func ToTensor(img *image.NRGBA) []float32 {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	plane := width * height
	data := make([]float32, Channels*plane)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := img.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			pixel := y*width + x
			data[pixel] = float32(img.Pix[i]) / 255.0
			data[plane+pixel] = float32(img.Pix[i+1]) / 255.0
			data[2*plane+pixel] = float32(img.Pix[i+2]) / 255.0
		}
	}
	return data
}

// Tensor runs the full preprocessing step: letterbox to target×target and
// convert to the classifier's CHW layout.
func Tensor(src image.Image, target int) ([]float32, error) {
	canvas, err := Letterbox(src, target)
	if err != nil {
		return nil, err
	}
	return ToTensor(canvas), nil
}
