package blp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alphaChannel(rgba []byte) []byte {
	out := make([]byte, 0, len(rgba)/4)
	for i := 3; i < len(rgba); i += 4 {
		out = append(out, rgba[i])
	}
	return out
}

func TestDecodePaletteColors(t *testing.T) {
	pal := testPalette()
	got, err := DecodePalette(&pal, []byte{0, 10, 255, 128}, 2, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0, 255, 0, 255,
		10, 245, 5, 255,
		255, 0, 127, 255,
		128, 127, 64, 255,
	}, got)
}

func TestDecodePaletteAlpha(t *testing.T) {
	pal := testPalette()
	idx := make([]byte, 10)
	tests := []struct {
		name      string
		alphaBits uint32
		alpha     []byte
		want      []byte
	}{
		{"1-bit LSB first", 1, []byte{0b10100101, 0b00000010},
			[]byte{255, 0, 255, 0, 0, 255, 0, 255, 0, 255}},
		{"4-bit low nibble first", 4, []byte{0x1F, 0x80, 0x00, 0xFF, 0x3C},
			[]byte{0xFF, 0x11, 0x00, 0x88, 0x00, 0x00, 0xFF, 0xFF, 0xCC, 0x33}},
		{"8-bit", 8, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
			[]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePalette(&pal, append(idx, tt.alpha...), 5, 2, tt.alphaBits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, alphaChannel(got))
		})
	}
}

func TestDecodePaletteRejects(t *testing.T) {
	pal := testPalette()
	_, err := DecodePalette(&pal, make([]byte, 16), 4, 4, 2)
	require.ErrorIs(t, err, ErrUnsupportedAlphaDepth)

	_, err = DecodePalette(&pal, make([]byte, 15), 4, 4, 0)
	require.ErrorIs(t, err, ErrTruncated)

	// 16 indices and 16 bytes of 8-bit alpha are required.
	_, err = DecodePalette(&pal, make([]byte, 31), 4, 4, 8)
	require.ErrorIs(t, err, ErrTruncated)

	// 1-bit alpha for 9 pixels needs two bytes.
	_, err = DecodePalette(&pal, make([]byte, 10), 3, 3, 1)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestDecodePaletteUniformOneBit(t *testing.T) {
	pal := testPalette()
	raw := append(make([]byte, 256), bytes.Repeat([]byte{0xFF}, 32)...)
	got, err := DecodePalette(&pal, raw, 16, 16, 1)
	require.NoError(t, err)
	require.Len(t, got, 16*16*4)
	for p := 0; p < 256; p++ {
		assert.Equal(t, []byte{0, 255, 0, 255}, got[4*p:4*p+4], "pixel %d", p)
	}
}
