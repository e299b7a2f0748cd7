package screen

import (
	"image"

	"github.com/kbinani/screenshot"

	apperrors "github.com/screenlate/screenlate/internal/errors"
	"github.com/screenlate/screenlate/internal/region"
)

// Grabber captures desktop pixels. CaptureRect accepts rectangles anchored at
// arbitrary, possibly negative coordinates, which multi-monitor layouts need.
type Grabber struct{}

// NewGrabber creates a desktop capturer.
func NewGrabber() *Grabber { return &Grabber{} }

// Capture grabs the region as an RGBA image.
func (g *Grabber) Capture(r region.CaptureRegion) (image.Image, error) {
	img, err := screenshot.CaptureRect(r.Bounds())
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.CodeCaptureFailed, "capture %s", r)
	}
	return img, nil
}
