// Package region defines the screen rectangle selected for capture.
package region

import (
	"fmt"
	"image"

	apperrors "github.com/screenlate/screenlate/internal/errors"
)

// MinDimension is the smallest accepted selection edge, in pixels. Anything
// smaller is treated as an accidental drag rather than a real selection.
const MinDimension = 40

// CaptureRegion is an immutable screen rectangle in pixel coordinates.
// Left and Top may be negative on multi-monitor layouts.
type CaptureRegion struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FromCorners builds a region from two drag corners in either order.
// Selections narrower than MinDimension on either edge are rejected.
func FromCorners(x1, y1, x2, y2 int) (CaptureRegion, error) {
	left, right := min(x1, x2), max(x1, x2)
	top, bottom := min(y1, y2), max(y1, y2)

	r := CaptureRegion{
		Left:   left,
		Top:    top,
		Width:  max(1, right-left),
		Height: max(1, bottom-top),
	}
	if err := r.Validate(); err != nil {
		return CaptureRegion{}, err
	}
	return r, nil
}

// Validate checks the minimum selection size.
func (r CaptureRegion) Validate() error {
	if r.Width < MinDimension || r.Height < MinDimension {
		return apperrors.Newf(apperrors.CodeRegionInvalid,
			"selection %dx%d below minimum %dx%d", r.Width, r.Height, MinDimension, MinDimension)
	}
	return nil
}

// Bounds returns the rectangle in image coordinates.
func (r CaptureRegion) Bounds() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

func (r CaptureRegion) String() string {
	return fmt.Sprintf("left=%d top=%d w=%d h=%d", r.Left, r.Top, r.Width, r.Height)
}
