// Package fingerprint produces cheap content fingerprints for captured frames.
// Fingerprint equality is a heuristic for "pixels unchanged", not an identity
// claim; the text-level dedup downstream absorbs false negatives.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/draw"

	"github.com/corona10/goimagehash"
	"github.com/nfnt/resize"
)

// Thumbnail sizing: never below the floor, otherwise one tenth per dimension.
// The floor keeps tiny regions from collapsing to near-nothing; the ratio keeps
// large regions cheap to hash every tick.
const (
	thumbFloor   = 40
	thumbDivisor = 10
)

// Fingerprint is a comparable digest of one captured frame.
type Fingerprint interface {
	// Equal reports whether two fingerprints should be treated as the same
	// frame. Fingerprints from different hashers never compare equal.
	Equal(other Fingerprint) bool
	String() string
}

// Hasher derives a Fingerprint from an image.
type Hasher interface {
	Sum(img image.Image) (Fingerprint, error)
}

// ForMode returns the hasher for a configured mode name. Unknown modes fall
// back to exact hashing.
func ForMode(mode string, maxDistance int) Hasher {
	if mode == "perceptual" {
		return Perceptual{MaxDistance: maxDistance}
	}
	return Exact{}
}

// Exact downsamples the frame to a thumbnail and hashes its raw pixel bytes
// with SHA-256. Equal fingerprints mean byte-identical thumbnails; the
// downsampling absorbs anti-aliasing jitter that full-resolution comparison
// would flag as change.
type Exact struct{}

// Sum computes the thumbnail digest.
func (Exact) Sum(img image.Image) (Fingerprint, error) {
	b := img.Bounds()
	tw := max(thumbFloor, b.Dx()/thumbDivisor)
	th := max(thumbFloor, b.Dy()/thumbDivisor)
	thumb := resize.Resize(uint(tw), uint(th), img, resize.Bicubic)
	return exactFingerprint(sha256.Sum256(rawPixels(thumb))), nil
}

type exactFingerprint [sha256.Size]byte

func (f exactFingerprint) Equal(other Fingerprint) bool {
	o, ok := other.(exactFingerprint)
	return ok && f == o
}

func (f exactFingerprint) String() string { return hex.EncodeToString(f[:]) }

// rawPixels returns the decoded pixel bytes of img in RGBA order.
func rawPixels(img image.Image) []byte {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba.Pix
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba.Pix
}

// Perceptual gates on pHash Hamming distance instead of exact thumbnail bytes,
// tolerating more rendering jitter at the cost of occasional false skips.
type Perceptual struct {
	MaxDistance int // frames within this Hamming distance count as unchanged
}

// Sum computes the perception hash.
func (p Perceptual) Sum(img image.Image) (Fingerprint, error) {
	h, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, err
	}
	return &perceptualFingerprint{hash: h, maxDistance: p.MaxDistance}, nil
}

type perceptualFingerprint struct {
	hash        *goimagehash.ImageHash
	maxDistance int
}

func (f *perceptualFingerprint) Equal(other Fingerprint) bool {
	o, ok := other.(*perceptualFingerprint)
	if !ok {
		return false
	}
	dist, err := f.hash.Distance(o.hash)
	return err == nil && dist <= f.maxDistance
}

func (f *perceptualFingerprint) String() string { return f.hash.ToString() }
