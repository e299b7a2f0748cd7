// Package screen grabs raw pixels for a selected capture region.
package screen

import (
	"image"

	"github.com/screenlate/screenlate/internal/region"
)

// Capturer captures the pixels of a screen region.
type Capturer interface {
	Capture(r region.CaptureRegion) (image.Image, error)
}
