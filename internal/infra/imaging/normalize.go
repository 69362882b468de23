// Package imaging prepares receipt photos for text extraction.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
)

// maxPixels rejects decompression bombs before the full decode.
const maxPixels = 40_000_000

var ErrTooLarge = errors.New("image dimensions too large")

// Normalize decodes a JPEG, PNG or GIF, converts it to 8-bit grayscale,
// stretches the histogram so the darkest pixel becomes black and the
// lightest white, and re-encodes it as PNG.
func Normalize(raw []byte) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("imaging: %dx%d: %w", cfg.Width, cfg.Height, ErrTooLarge)
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}

	gray := toGray(src)
	autocontrast(gray)

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, fmt.Errorf("imaging: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func toGray(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetGray(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(src.At(x, y)).(color.Gray))
		}
	}
	return dst
}

// autocontrast maps [min,max] linearly onto [0,255] in place. A flat image
// is left untouched.
func autocontrast(img *image.Gray) {
	lo, hi := uint8(255), uint8(0)
	for _, v := range img.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi <= lo {
		return
	}
	var lut [256]uint8
	scale := 255.0 / float64(hi-lo)
	for i := int(lo); i <= int(hi); i++ {
		lut[i] = uint8(float64(i-int(lo))*scale + 0.5)
	}
	for i, v := range img.Pix {
		img.Pix[i] = lut[v]
	}
}
