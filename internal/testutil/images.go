package testutil

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

// PNGBytes returns an encoded PNG of the given dimensions.
func PNGBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	return encodeImage(t, width, height, imaging.PNG)
}

// JPEGBytes returns an encoded JPEG of the given dimensions.
func JPEGBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	return encodeImage(t, width, height, imaging.JPEG)
}

// GIFBytes returns an encoded GIF of the given dimensions.
func GIFBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	return encodeImage(t, width, height, imaging.GIF)
}

// encodeImage builds a gradient-filled image so encoders have real pixel
// data to work with, then encodes it in the requested format.
func encodeImage(t *testing.T, width, height int, format imaging.Format) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x % 256),
				G: uint8(y % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		t.Fatalf("failed to encode %dx%d test image: %v", width, height, err)
	}

	return buf.Bytes()
}
