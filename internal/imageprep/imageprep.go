// Package imageprep fits arbitrary images into the square, opaque PNGs that
// image-variation and vision endpoints accept.
package imageprep

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	// Decoders for uploads.
	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"
)

// MaxEncodedBytes is the largest PNG EncodePNG will return.
const MaxEncodedBytes = 4 << 20

// ErrTooLarge is returned when the encoded PNG exceeds MaxEncodedBytes.
var ErrTooLarge = errors.New("imageprep: encoded image too large")

// ValidSizes are the accepted square edge lengths, smallest first.
var ValidSizes = []int{256, 512, 1024}

// TargetSize picks the smallest valid edge that holds the longest side, or
// the largest valid edge when none does.
func TargetSize(b image.Rectangle) int {
	longest := max(b.Dx(), b.Dy())
	for _, s := range ValidSizes {
		if longest <= s {
			return s
		}
	}
	return ValidSizes[len(ValidSizes)-1]
}

func isValidSquare(b image.Rectangle) bool {
	if b.Dx() != b.Dy() {
		return false
	}
	for _, s := range ValidSizes {
		if b.Dx() == s {
			return true
		}
	}
	return false
}

// Square flattens src onto white and, unless it already is a valid square,
// scales it down to fit the target edge and centres it on a white canvas.
func Square(src image.Image) *image.RGBA {
	b := src.Bounds()
	if isValidSquare(b) {
		out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		draw.Draw(out, out.Bounds(), src, b.Min, draw.Over)
		return out
	}

	edge := TargetSize(b)
	w, h := b.Dx(), b.Dy()
	if w > edge || h > edge {
		if w >= h {
			h = max(1, h*edge/w)
			w = edge
		} else {
			w = max(1, w*edge/h)
			h = edge
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, edge, edge))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	offX, offY := (edge-w)/2, (edge-h)/2
	dst := image.Rect(offX, offY, offX+w, offY+h)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(out, dst, src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(out, dst, src, b, draw.Over, nil)
	}
	return out
}

// EncodePNG encodes img and enforces MaxEncodedBytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imageprep: encode png: %w", err)
	}
	if buf.Len() > MaxEncodedBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, buf.Len())
	}
	return buf.Bytes(), nil
}

// Prepare decodes data (PNG, JPEG or GIF), squares it and re-encodes as PNG.
func Prepare(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imageprep: decode: %w", err)
	}
	return EncodePNG(Square(img))
}
