package services

import (
	"image"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette holds the colors derived from an entry's pixels for UI theming
type Palette struct {
	Color    string // dominant color, "#rrggbb"
	Contrast string // overlay color, "#000000" or "#ffffff"
}

// PaletteService derives a dominant color and a legible overlay color from
// decoded pixel data. The derivation is deterministic: identical pixels
// always yield identical colors.
type PaletteService struct{}

// NewPaletteService creates a new PaletteService
func NewPaletteService() *PaletteService {
	return &PaletteService{}
}

const (
	// sample bound before the histogram pass
	sampleMaxDim = 64
	// 3 bits per channel, 512 histogram buckets
	bucketShift       = 5
	bucketsPerChannel = 1 << (8 - bucketShift)
)

type bucket struct {
	count   uint32
	r, g, b uint64
}

// Extract returns the dominant and contrast colors of the image
func (s *PaletteService) Extract(img image.Image) Palette {
	// NearestNeighbor keeps the downsample cheap and reproducible
	sample := imaging.Fit(img, sampleMaxDim, sampleMaxDim, imaging.NearestNeighbor)

	var buckets [bucketsPerChannel * bucketsPerChannel * bucketsPerChannel]bucket

	bounds := sample.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := sample.At(x, y).RGBA()
			r8, g8, b8 := r>>8, g>>8, b>>8

			idx := (r8>>bucketShift)*bucketsPerChannel*bucketsPerChannel +
				(g8>>bucketShift)*bucketsPerChannel +
				(b8 >> bucketShift)

			buckets[idx].count++
			buckets[idx].r += uint64(r8)
			buckets[idx].g += uint64(g8)
			buckets[idx].b += uint64(b8)
		}
	}

	// Densest bucket wins; ties resolve to the lowest index so the result
	// stays deterministic.
	best := 0
	for i := range buckets {
		if buckets[i].count > buckets[best].count {
			best = i
		}
	}

	dominant := colorful.Color{R: 0, G: 0, B: 0}
	if n := uint64(buckets[best].count); n > 0 {
		dominant = colorful.Color{
			R: float64(buckets[best].r/n) / 255.0,
			G: float64(buckets[best].g/n) / 255.0,
			B: float64(buckets[best].b/n) / 255.0,
		}
	}

	return Palette{
		Color:    dominant.Hex(),
		Contrast: contrastFor(dominant),
	}
}

// contrastFor picks the overlay color by the HSL lightness midpoint rule:
// captions over a bright photo get black, over a dark photo white.
func contrastFor(c colorful.Color) string {
	_, _, lightness := c.Hsl()
	if lightness > 0.5 {
		return "#000000"
	}
	return "#ffffff"
}
