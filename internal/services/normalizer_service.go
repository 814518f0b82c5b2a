package services

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/jdeng/goheif"

	"github.com/picorama/server/internal/models"
)

// DerivativeSize bounds a downscaled copy of the original
type DerivativeSize struct {
	Suffix    string
	MaxWidth  int
	MaxHeight int
	Quality   int // JPEG quality (1-100)
}

var (
	// Derivative1280 is the large derivative, bounded by 1280x960
	Derivative1280 = DerivativeSize{Suffix: "-1280", MaxWidth: 1280, MaxHeight: 960, Quality: 85}
	// Derivative800 is the small derivative, bounded by 800x600
	Derivative800 = DerivativeSize{Suffix: "-800", MaxWidth: 800, MaxHeight: 600, Quality: 85}
)

const originalQuality = 90

// NormalizerService turns raw upload bytes into the stored original plus two
// downscaled derivatives, all rotation-corrected and keyed by canonical name.
type NormalizerService struct {
	storage *StorageService
	exif    *EXIFService
}

// NewNormalizerService creates a new NormalizerService
func NewNormalizerService(storage *StorageService, exifService *EXIFService) *NormalizerService {
	return &NormalizerService{storage: storage, exif: exifService}
}

// Normalize decodes the upload, applies the EXIF orientation before any
// resizing, and writes the original and both derivatives. It returns the
// upright image for palette extraction and the paths written so the caller
// can discard them if a later step fails.
func (s *NormalizerService) Normalize(data []byte, mimeType, name string) (image.Image, []string, error) {
	img, err := decodeImage(data, mimeType)
	if err != nil {
		return nil, nil, models.ErrUnsupportedImage
	}

	// Orientation correction must precede resizing so the derivatives never
	// bake in a wrong rotation.
	img = applyOrientation(img, s.exif.Orientation(data))

	var written []string

	original, err := encodeJPEG(img, originalQuality)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode original: %w", err)
	}

	path, err := s.storage.WriteOriginal(name, original)
	if err != nil {
		return nil, written, err
	}
	written = append(written, path)

	for _, size := range []DerivativeSize{Derivative1280, Derivative800} {
		path, err := s.writeDerivative(img, name, size)
		if err != nil {
			return nil, written, fmt.Errorf("failed to write %s derivative: %w", size.Suffix, err)
		}
		written = append(written, path)
	}

	return img, written, nil
}

// RebuildDerivatives regenerates only the derivatives for an existing
// original, used by the bulk importer. Returns the upright image.
func (s *NormalizerService) RebuildDerivatives(data []byte, mimeType, name string) (image.Image, error) {
	img, err := decodeImage(data, mimeType)
	if err != nil {
		return nil, models.ErrUnsupportedImage
	}

	img = applyOrientation(img, s.exif.Orientation(data))

	for _, size := range []DerivativeSize{Derivative1280, Derivative800} {
		if _, err := s.writeDerivative(img, name, size); err != nil {
			return nil, fmt.Errorf("failed to write %s derivative: %w", size.Suffix, err)
		}
	}

	return img, nil
}

func (s *NormalizerService) writeDerivative(img image.Image, name string, size DerivativeSize) (string, error) {
	// Fit keeps the aspect ratio and never upscales a smaller source
	resized := imaging.Fit(img, size.MaxWidth, size.MaxHeight, imaging.Lanczos)

	encoded, err := encodeJPEG(resized, size.Quality)
	if err != nil {
		return "", err
	}

	return s.storage.WriteDerivative(name, size.Suffix, encoded)
}

// decodeImage decodes raw bytes, routing HEIC/HEIF to goheif
func decodeImage(data []byte, mimeType string) (image.Image, error) {
	if isHEICMime(mimeType) {
		return goheif.Decode(bytes.NewReader(data))
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Some clients declare a generic MIME type for HEIC uploads
		if heicImg, heicErr := goheif.Decode(bytes.NewReader(data)); heicErr == nil {
			return heicImg, nil
		}
		return nil, err
	}
	return img, nil
}

func isHEICMime(mimeType string) bool {
	m := strings.ToLower(mimeType)
	return strings.Contains(m, "heic") || strings.Contains(m, "heif")
}

func encodeJPEG(img image.Image, quality int) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return &buf, nil
}

// applyOrientation corrects image orientation based on the EXIF tag
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		// Flip horizontal
		return imaging.FlipH(img)
	case 3:
		// Rotate 180
		return imaging.Rotate180(img)
	case 4:
		// Flip vertical
		return imaging.FlipV(img)
	case 5:
		// Transpose (flip horizontal + rotate 270)
		return imaging.Rotate270(imaging.FlipH(img))
	case 6:
		// Rotate 90 CW
		return imaging.Rotate270(img)
	case 7:
		// Transverse (flip horizontal + rotate 90)
		return imaging.Rotate90(imaging.FlipH(img))
	case 8:
		// Rotate 90 CCW
		return imaging.Rotate90(img)
	default:
		return img
	}
}
