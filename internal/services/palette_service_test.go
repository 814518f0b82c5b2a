package services

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

func uniformImage(c color.Color, w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func TestPaletteService_Extract(t *testing.T) {
	svc := NewPaletteService()

	t.Run("uniform image yields its own color", func(t *testing.T) {
		pal := svc.Extract(uniformImage(color.RGBA{R: 255, A: 255}, 20, 20))

		assert.Equal(t, "#ff0000", pal.Color)
	})

	t.Run("bright image gets black contrast", func(t *testing.T) {
		pal := svc.Extract(uniformImage(color.RGBA{R: 255, G: 255, B: 255, A: 255}, 10, 10))

		assert.Equal(t, "#ffffff", pal.Color)
		assert.Equal(t, "#000000", pal.Contrast)
	})

	t.Run("dark image gets white contrast", func(t *testing.T) {
		pal := svc.Extract(uniformImage(color.RGBA{R: 16, G: 16, B: 16, A: 255}, 10, 10))

		assert.Equal(t, "#101010", pal.Color)
		assert.Equal(t, "#ffffff", pal.Contrast)
	})

	t.Run("majority color wins", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{B: 255, A: 255}), image.Point{}, draw.Src)
		// A 2x8 stripe of yellow cannot outvote the blue field
		draw.Draw(img, image.Rect(0, 0, 2, 8), image.NewUniform(color.RGBA{R: 255, G: 255, A: 255}), image.Point{}, draw.Src)

		pal := svc.Extract(img)
		assert.Equal(t, "#0000ff", pal.Color)
	})

	t.Run("extraction is deterministic", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 100, 80))
		for y := 0; y < 80; y++ {
			for x := 0; x < 100; x++ {
				img.Set(x, y, color.RGBA{R: uint8(x * 2), G: uint8(y * 3), B: uint8((x + y) % 256), A: 255})
			}
		}

		first := svc.Extract(img)
		second := svc.Extract(img)

		assert.Equal(t, first, second)
	})

	t.Run("color is a lowercase hex string", func(t *testing.T) {
		pal := svc.Extract(uniformImage(color.RGBA{R: 0xAB, G: 0xCD, B: 0xEF, A: 255}, 10, 10))

		assert.Regexp(t, `^#[0-9a-f]{6}$`, pal.Color)
		assert.Contains(t, []string{"#000000", "#ffffff"}, pal.Contrast)
	})
}
