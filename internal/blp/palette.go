package blp

import (
	"fmt"
	"image/color"
)

// alphaLen returns the size of the alpha plane that follows n palette indices.
func alphaLen(n int, alphaBits uint32) (int, error) {
	switch alphaBits {
	case 0:
		return 0, nil
	case 1:
		return (n + 7) / 8, nil
	case 4:
		return (n + 1) / 2, nil
	case 8:
		return n, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedAlphaDepth, alphaBits)
}

// DecodePalette expands a palettized payload of n indices and its alpha plane
// into RGBA.
//
// 1-bit alpha is packed least significant bit first. 4-bit alpha stores even
// pixels in the low nibble and is widened as (v<<4)|v.
func DecodePalette(palette *[256]color.RGBA, raw []byte, width, height int, alphaBits uint32) ([]byte, error) {
	n := width * height
	na, err := alphaLen(n, alphaBits)
	if err != nil {
		return nil, err
	}
	if len(raw) < n+na {
		return nil, fmt.Errorf("%w: palette mip needs %d bytes, have %d", ErrTruncated, n+na, len(raw))
	}
	alpha := raw[n : n+na]
	out := make([]byte, n*4)
	for p := 0; p < n; p++ {
		c := palette[raw[p]]
		a := uint8(255)
		switch alphaBits {
		case 1:
			if alpha[p/8]>>(p%8)&1 == 0 {
				a = 0
			}
		case 4:
			v := alpha[p/2]
			if p%2 == 0 {
				v &= 0x0F
			} else {
				v >>= 4
			}
			a = v<<4 | v
		case 8:
			a = alpha[p]
		}
		out[4*p], out[4*p+1], out[4*p+2], out[4*p+3] = c.R, c.G, c.B, a
	}
	return out, nil
}
