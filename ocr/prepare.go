package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned when image data cannot be decoded.
var ErrUnsupportedImage = errors.New("unsupported image data")

// PrepareImage decodes clipboard image data (PNG, JPEG, GIF, BMP, TIFF or
// WebP) and re-encodes it as a grayscale PNG, which every Tesseract build
// reads. It also returns the decoded format name.
func PrepareImage(data []byte) ([]byte, string, error) {
	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	b := img.Bounds()
	gray := image.NewGray(b)
	// Transparent areas read as white so text on a transparent background
	// keeps its contrast.
	draw.Draw(gray, b, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(gray, b, img, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), name, nil
}
