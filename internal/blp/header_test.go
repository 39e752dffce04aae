package blp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderRejects(t *testing.T) {
	_, err := ParseHeader([]byte("PNG!xxxxxxxx"))
	require.ErrorIs(t, err, ErrMalformedHeader)
	require.ErrorIs(t, err, ErrInvalidMagic)

	_, err = ParseHeader([]byte("BLP1\x00\x00"))
	require.ErrorIs(t, err, ErrMalformedHeader)
	require.ErrorIs(t, err, ErrTruncated)

	// A JPEG texture without room for the shared header length.
	h := Header{Version: BLP1, TextureType: JPEG, Width: 4, Height: 4}
	fixed, err := h.MarshalBinary()
	require.NoError(t, err)
	_, err = ParseHeader(fixed)
	require.ErrorIs(t, err, ErrTruncated)

	// A Direct texture with a short palette.
	h.TextureType = Direct
	fixed, err = h.MarshalBinary()
	require.NoError(t, err)
	_, err = ParseHeader(append(fixed, make([]byte, 1000)...))
	require.ErrorIs(t, err, ErrTruncated)

	h.TextureType = 7
	fixed, err = h.MarshalBinary()
	require.NoError(t, err)
	_, err = ParseHeader(append(fixed, make([]byte, paletteSize)...))
	require.ErrorIs(t, err, ErrMalformedHeader)
}

func TestHeaderRoundTrip(t *testing.T) {
	for _, v := range []Version{BLP0, BLP1, BLP2} {
		t.Run(v.String(), func(t *testing.T) {
			h := Header{
				Version:     v,
				TextureType: Direct,
				AlphaBits:   8,
				HasMips:     1,
				Width:       64,
				Height:      32,
			}
			if v == BLP2 {
				h.Compression = EncodingPalette
				h.AlphaType = AlphaTypeDXT3
			} else {
				h.Compression = uint8(Direct)
				h.Extra = blp1Extra
			}
			if v != BLP0 {
				h.Offsets[0], h.Lengths[0] = 2000, 3000
				h.Offsets[15], h.Lengths[15] = 9, 1
			}
			fixed, err := h.MarshalBinary()
			require.NoError(t, err)
			require.Len(t, fixed, h.Size())

			got, err := ParseHeader(append(fixed, make([]byte, paletteSize)...))
			require.NoError(t, err)
			for i := range h.Palette {
				h.Palette[i].A = 255
			}
			assert.Equal(t, h, *got)
		})
	}
}

func TestBLP1Layout(t *testing.T) {
	h := Header{Version: BLP1, TextureType: JPEG, AlphaBits: 8, Width: 256, Height: 128, Extra: blp1Extra, HasMips: 1}
	h.Offsets[1] = 0xAABBCCDD
	h.Lengths[2] = 0x11223344
	fixed, err := h.MarshalBinary()
	require.NoError(t, err)

	assert.Equal(t, "BLP1", string(fixed[:4]))
	assert.Equal(t, uint32(0), u32(fixed, 4))
	assert.Equal(t, uint32(8), u32(fixed, 8))
	assert.Equal(t, uint32(256), u32(fixed, 12))
	assert.Equal(t, uint32(128), u32(fixed, 16))
	assert.Equal(t, uint32(5), u32(fixed, 20))
	assert.Equal(t, uint32(1), u32(fixed, 24))
	assert.Equal(t, uint32(0xAABBCCDD), u32(fixed, 28+4))
	assert.Equal(t, uint32(0x11223344), u32(fixed, 92+8))
}

func TestCoverage(t *testing.T) {
	h := Header{Version: BLP1, TextureType: JPEG, JPEGHeaderOffset: 160, JPEGHeaderLength: 40}
	h.Offsets[0], h.Lengths[0] = 200, 100
	h.Offsets[1], h.Lengths[1] = 350, 50
	h.Offsets[2], h.Lengths[2] = 380, 30 // overlaps mip 1
	h.Offsets[3], h.Lengths[3] = 900, 200 // out of range, ignored

	var warnings []string
	holes := h.coverage(500, func(format string, args ...any) { warnings = append(warnings, format) })

	// Covered: [0,200) [200,300) [350,410). Holes: [300,350) and [410,500).
	assert.Equal(t, 50+90, holes)
	assert.Len(t, warnings, 1)
}
