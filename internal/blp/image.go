package blp

import (
	"fmt"
	"image"
	"strings"
)

// Mip is one slot of the pyramid.
type Mip struct {
	Width  int
	Height int
	// Offset and Length locate the payload in the source buffer. A zero
	// Length, or a range outside the buffer, means the slot has no source.
	Offset uint32
	Length uint32
	// Pix is tightly packed, non-premultiplied RGBA. It is nil until decoded.
	Pix []byte
	// Encoded is the JPEG stream Encode produced for this level, if any.
	Encoded []byte

	sourced bool
}

// HasSource reports whether the slot points at a payload inside the buffer.
func (m *Mip) HasSource() bool { return m.sourced }

// Decoded reports whether RGBA pixels are available.
func (m *Mip) Decoded() bool { return m.Pix != nil }

// Image wraps Pix without copying. It returns nil for undecoded slots.
func (m *Mip) Image() *image.NRGBA {
	if m.Pix == nil {
		return nil
	}
	return &image.NRGBA{Pix: m.Pix, Stride: 4 * m.Width, Rect: image.Rect(0, 0, m.Width, m.Height)}
}

// Image is a parsed or synthesized BLP texture.
type Image struct {
	Header
	Mips [MaxMips]Mip
	// Holes counts buffer bytes not covered by the header, shared block or
	// any mip range.
	Holes    int
	Warnings []string

	src  []byte
	logf func(format string, args ...any)
}

func (img *Image) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	img.Warnings = append(img.Warnings, msg)
	if img.logf != nil {
		img.logf("%s", msg)
	}
}

// Base returns the first decoded mip, or nil.
func (img *Image) Base() *Mip {
	for i := range img.Mips {
		if img.Mips[i].Decoded() {
			return &img.Mips[i]
		}
	}
	return nil
}

// MipCount returns the number of slots with a source or decoded pixels.
func (img *Image) MipCount() int {
	n := 0
	for i := range img.Mips {
		if img.Mips[i].HasSource() || img.Mips[i].Decoded() {
			n++
		}
	}
	return n
}

func (img *Image) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %dx%d alpha=%d", img.Version, img.TextureType, img.Width, img.Height, img.AlphaBits)
	if img.Version == BLP2 {
		fmt.Fprintf(&sb, " encoding=%d alphaType=%d", img.Compression, img.AlphaType)
	}
	if img.TextureType == JPEG {
		fmt.Fprintf(&sb, " jpegHeader=%d", img.JPEGHeaderLength)
	}
	fmt.Fprintf(&sb, " holes=%d\n", img.Holes)
	for i, m := range img.Mips {
		if !m.HasSource() && !m.Decoded() {
			continue
		}
		fmt.Fprintf(&sb, "  mip %2d: %dx%d offset=%d length=%d\n", i, m.Width, m.Height, m.Offset, m.Length)
	}
	return sb.String()
}
