// Package raster reads and writes the ordinary image formats textures are
// converted from and to.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/dblezek/tga"
	"github.com/erinpentecost/blptool/internal/dds"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrUnknownFormat = errors.New("unknown image format")
	ErrDecode        = errors.New("decode image")
)

// Format is an export target, named by its usual file extension.
type Format string

const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	JPEG Format = "jpg"
	DDS  Format = "dds"
)

// FormatFromPath picks an export format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "dds":
		return DDS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// Decode decodes PNG, JPEG, GIF, BMP, TIFF, WebP and DDS by content and TGA
// by the extension of name.
func Decode(data []byte, name string) (image.Image, error) {
	if dds.IsDDS(data) {
		img, err := dds.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return img, nil
	}
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err := tga.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: tga: %w", ErrDecode, err)
		}
		return img, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return img, nil
}

// ExportOptions tunes Export.
type ExportOptions struct {
	// Quality applies to JPEG output.
	Quality int
	// Codec and MaxMips apply to DDS output.
	Codec   dds.Codec
	MaxMips int
}

// Export encodes img in the given format.
func Export(w io.Writer, img image.Image, format Format, opts *ExportOptions) error {
	if opts == nil {
		opts = &ExportOptions{}
	}
	switch format {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case JPEG:
		q := opts.Quality
		if q == 0 {
			q = jpeg.DefaultQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
	case DDS:
		return dds.Encode(w, img, opts.Codec, opts.MaxMips)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(format))
}
