// Package imageproc normalizes uploaded meal photos before storage and
// analysis: decode, bound the long edge, flatten alpha and re-encode as JPEG.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"macrolens/internal/domain"
)

const (
	// MaxEdge bounds the longest side of a stored photo in pixels.
	MaxEdge     = 1024
	jpegQuality = 75

	// MaxPixels bounds the decoded size of an upload.
	MaxPixels = 40_000_000

	// Extension is the file extension of normalized photos.
	Extension   = "jpg"
	contentType = "image/jpeg"
)

// ErrTooManyPixels is returned for images whose header declares more than
// MaxPixels pixels. The image is not decoded.
var ErrTooManyPixels = errors.New("image dimensions exceed limit")

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
}

// AllowedFilename reports whether filename has an accepted image extension.
func AllowedFilename(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return allowedExtensions[ext]
}

// Normalize decodes data and returns a JPEG no larger than MaxEdge on its
// longest side. Images over MaxPixels are rejected before decoding.
func Normalize(data []byte) (domain.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.Image{}, fmt.Errorf("decode image config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return domain.Image{}, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.Image{}, fmt.Errorf("decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fit(src, MaxEdge), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return domain.Image{}, fmt.Errorf("encode image: %w", err)
	}
	return domain.Image{Data: buf.Bytes(), ContentType: contentType}, nil
}

// fit scales src down to fit within maxEdge, onto a white background.
func fit(src image.Image, maxEdge int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxEdge || h > maxEdge {
		if w >= h {
			h = max(1, h*maxEdge/w)
			w = maxEdge
		} else {
			w = max(1, w*maxEdge/h)
			h = maxEdge
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
