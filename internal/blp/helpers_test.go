package blp

import (
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

// directFile assembles a Direct texture with the given mip payloads placed
// back to back after the palette.
func directFile(t *testing.T, h Header, palette [256]color.RGBA, mips ...[]byte) []byte {
	t.Helper()
	h.TextureType = Direct
	offset := h.Size() + paletteSize
	for i, m := range mips {
		h.Offsets[i] = uint32(offset)
		h.Lengths[i] = uint32(len(m))
		offset += len(m)
	}
	buf, err := h.MarshalBinary()
	require.NoError(t, err)
	for _, c := range palette {
		buf = append(buf, c.B, c.G, c.R, 0)
	}
	for _, m := range mips {
		buf = append(buf, m...)
	}
	return buf
}

func testPalette() [256]color.RGBA {
	var p [256]color.RGBA
	for i := range p {
		p[i] = color.RGBA{R: uint8(i), G: uint8(255 - i), B: uint8(i / 2), A: 255}
	}
	return p
}

func opaqueImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / max(1, w-1)), G: uint8(y * 255 / max(1, h-1)), B: 90, A: 255})
		}
	}
	return img
}

func alphaImage(w, h int) *image.NRGBA {
	img := opaqueImage(w, h)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = img.Pix[i-3]
	}
	return img
}

func maxDiff(a, b []byte) int {
	worst := 0
	for i := range a {
		d := int(a[i]) - int(b[i])
		worst = max(worst, d, -d)
	}
	return worst
}

func u32(buf []byte, off int) uint32 { return binary.LittleEndian.Uint32(buf[off:]) }
