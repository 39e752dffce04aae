package dds

import (
	"bytes"
	"fmt"
	"image"

	"github.com/woozymasta/bcn"
)

// Decode returns the largest surface of a DDS file.
// Supports DXT1, DXT3, DXT5 and 32-bit RGBA/BGRA, with or without a DX10
// header.
func Decode(data []byte) (image.Image, error) {
	if !IsDDS(data) {
		return nil, fmt.Errorf("%w: missing magic 'DDS '", ErrHeader)
	}
	r := bytes.NewReader(data)
	header, err := bcn.ReadDDSHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeader, err)
	}
	dx10, err := bcn.ReadDDSHeaderDX10(r, header)
	if err != nil {
		return nil, fmt.Errorf("%w: dx10: %v", ErrHeader, err)
	}

	format, name := pixelFormat(header, dx10)
	if format == bcn.FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	width, height := int(header.Width), int(header.Height)
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyImage, width, height)
	}
	start := len(data) - r.Len()
	size := dataLength(format, width, height)
	if len(data)-start < size {
		return nil, fmt.Errorf("%w: %s %dx%d needs %d bytes, have %d", ErrTruncated, name, width, height, size, len(data)-start)
	}

	img, err := bcn.DecodeImageWithOptions(data[start:start+size], width, height, format, nil)
	if err != nil {
		return nil, fmt.Errorf("dds: decode %s: %w", name, err)
	}
	return img, nil
}
