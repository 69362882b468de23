//go:build !integration

package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNormalizeStretchesContrast(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 1))
	src.Set(0, 0, color.RGBA{100, 100, 100, 255})
	src.Set(1, 0, color.RGBA{120, 120, 120, 255})
	src.Set(2, 0, color.RGBA{140, 140, 140, 255})
	src.Set(3, 0, color.RGBA{150, 150, 150, 255})

	out, err := Normalize(encodePNG(t, src))
	if err != nil {
		t.Fatal(err)
	}
	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil || format != "png" {
		t.Fatalf("output not png: %v %s", err, format)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("output is %T, want *image.Gray", img)
	}
	if g.GrayAt(0, 0).Y != 0 || g.GrayAt(3, 0).Y != 255 {
		t.Errorf("range not stretched: %v", g.Pix)
	}
	if g.GrayAt(1, 0).Y <= 0 || g.GrayAt(1, 0).Y >= g.GrayAt(2, 0).Y {
		t.Errorf("ordering lost: %v", g.Pix)
	}
}

func TestNormalizeAcceptsJPEG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			src.Set(x, y, color.RGBA{uint8(x * 30), uint8(y * 30), 50, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := Normalize(buf.Bytes()); err != nil {
		t.Fatalf("jpeg: %v", err)
	}
}

func TestNormalizeFlatImage(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 77
	}
	out, err := Normalize(encodePNG(t, src))
	if err != nil {
		t.Fatal(err)
	}
	img, _, _ := image.Decode(bytes.NewReader(out))
	if img.(*image.Gray).GrayAt(1, 1).Y != 77 {
		t.Error("flat image should be unchanged")
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	if _, err := Normalize([]byte("not an image")); err == nil {
		t.Error("expected decode error")
	}
	if _, err := Normalize(nil); err == nil {
		t.Error("expected error on empty input")
	}
}

func TestNormalizeRejectsHugeDimensions(t *testing.T) {
	// A valid header is enough: DecodeConfig never reads the pixels.
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	// IHDR width/height live at bytes 16..23
	raw[16], raw[17], raw[18], raw[19] = 0, 0, 0x4e, 0x20 // 20000
	raw[20], raw[21], raw[22], raw[23] = 0, 0, 0x4e, 0x20
	binary.BigEndian.PutUint32(raw[29:33], crc32.ChecksumIEEE(raw[12:29]))
	if _, err := Normalize(raw); !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}
