package ocr

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// createTestPNG creates a white image with a black rectangle.
func createTestPNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	for x := 2; x < width/2; x++ {
		for y := 2; y < height/2; y++ {
			img.Set(x, y, color.Black)
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

func TestPrepareImage(t *testing.T) {
	out, name, err := PrepareImage(createTestPNG(20, 10))
	if err != nil {
		t.Fatalf("PrepareImage() error = %v", err)
	}
	if name != "png" {
		t.Errorf("format = %q, want png", name)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("output model = %T, want *image.Gray", img)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("bounds = %v, want 20x10", b)
	}
	if g := img.(*image.Gray).GrayAt(3, 3).Y; g != 0 {
		t.Errorf("pixel (3,3) = %d, want black", g)
	}
	if g := img.(*image.Gray).GrayAt(15, 8).Y; g != 255 {
		t.Errorf("pixel (15,8) = %d, want white", g)
	}
}

func TestPrepareImageTransparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	out, _, err := PrepareImage(buf.Bytes())
	if err != nil {
		t.Fatalf("PrepareImage() error = %v", err)
	}
	gray, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if g := gray.(*image.Gray).GrayAt(1, 1).Y; g != 255 {
		t.Errorf("transparent pixel = %d, want white", g)
	}
}

func TestPrepareImageUnsupported(t *testing.T) {
	_, _, err := PrepareImage([]byte("plain text"))
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("error = %v, want ErrUnsupportedImage", err)
	}
}
