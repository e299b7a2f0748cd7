// Package ocr extracts text from preprocessed captures.
package ocr

import (
	"context"
	"image"
)

// Engine recognizes text in an image.
type Engine interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
	Close() error
}
