// Package imaging re-encodes generated and uploaded images.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 90

// ToJPEG decodes data (png, jpeg or webp) and re-encodes it as JPEG.
// Transparent pixels are flattened onto white.
func ToJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}
	return encodeJPEG(img)
}

// Fit shrinks data so neither side exceeds maxDim, keeping the aspect
// ratio. Images already within bounds are returned as a copy of the input.
// PNG input stays PNG; everything else becomes JPEG. The returned string
// is the MIME type of the result.
func Fit(data []byte, maxDim uint) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("imaging: decode: %w", err)
	}
	bounds := img.Bounds()
	if maxDim == 0 || (uint(bounds.Dx()) <= maxDim && uint(bounds.Dy()) <= maxDim) {
		return append([]byte(nil), data...), "image/" + format, nil
	}
	resized := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
	if format == "png" {
		var buf bytes.Buffer
		if err := png.Encode(&buf, resized); err != nil {
			return nil, "", fmt.Errorf("imaging: encode png: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	}
	out, err := encodeJPEG(resized)
	if err != nil {
		return nil, "", err
	}
	return out, "image/jpeg", nil
}

func encodeJPEG(img image.Image) ([]byte, error) {
	flat := image.NewRGBA(img.Bounds())
	draw.Draw(flat, flat.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("imaging: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
