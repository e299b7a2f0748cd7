package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"

	apperrors "github.com/screenlate/screenlate/internal/errors"
)

// Tesseract wraps a gosseract client configured for one source language and
// single-uniform-block page segmentation (captured regions are a single text
// column, not a full page layout).
type Tesseract struct {
	mu     sync.Mutex // gosseract clients are not safe for concurrent use
	client *gosseract.Client
}

// NewTesseract creates an engine for the given tesseract language, e.g. "kor".
func NewTesseract(language string) (*Tesseract, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		_ = client.Close()
		return nil, apperrors.Wrapf(err, apperrors.CodeOCRFailed, "set language %q", language)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		_ = client.Close()
		return nil, apperrors.Wrap(err, apperrors.CodeOCRFailed, "set page segmentation mode")
	}
	return &Tesseract{client: client}, nil
}

// Recognize runs tesseract over the image and returns the raw text.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeOCRFailed, "encode frame")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeOCRFailed, "load frame")
	}
	text, err := t.client.Text()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeOCRFailed, "recognize")
	}
	return text, nil
}

// Close releases the tesseract client.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
