package services

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"
)

// EXIFService reads camera metadata embedded in image bytes
type EXIFService struct{}

// NewEXIFService creates a new EXIFService
func NewEXIFService() *EXIFService {
	return &EXIFService{}
}

// Orientation returns the EXIF orientation tag (1-8), defaulting to 1
// (upright) when the image carries no usable metadata.
func (s *EXIFService) Orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		// No EXIF data or unsupported format
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	val, err := tag.Int(0)
	if err != nil || val < 1 || val > 8 {
		return 1
	}
	return val
}
