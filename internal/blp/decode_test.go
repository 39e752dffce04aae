package blp

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBLP1Palette(t *testing.T) {
	pal := testPalette()
	mip0 := append([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 10, 20, 30, 40, 50, 60, 70, 80)
	mip1 := []byte{9, 10, 99, 100}
	buf := directFile(t, Header{Version: BLP1, AlphaBits: 8, Width: 4, Height: 2, HasMips: 1, Extra: blp1Extra}, pal, mip0, mip1)

	var logged []string
	img, err := Decode(buf, &DecodeOptions{Logf: func(format string, args ...any) { logged = append(logged, format) }})
	require.NoError(t, err)
	assert.Empty(t, logged)
	assert.Equal(t, 0, img.Holes)
	assert.Equal(t, 2, img.MipCount())

	m := img.Mips[0]
	require.True(t, m.Decoded())
	assert.Equal(t, []byte{1, 254, 0, 10}, m.Pix[:4])
	assert.Equal(t, []byte{8, 247, 4, 80}, m.Pix[28:])

	m = img.Mips[1]
	require.True(t, m.Decoded())
	assert.Equal(t, 2, m.Width)
	assert.Equal(t, 1, m.Height)
	assert.Equal(t, []byte{9, 246, 4, 99, 10, 245, 5, 100}, m.Pix)

	assert.False(t, img.Mips[2].HasSource())
	require.ErrorIs(t, img.DecodeMip(2), ErrMipAbsent)
}

func TestDecodeOutOfRangeMip(t *testing.T) {
	pal := testPalette()
	buf := directFile(t, Header{Version: BLP1, Width: 2, Height: 2}, pal, []byte{0, 0, 0, 0}, []byte{0})
	// Push mip 1 past the end of the buffer.
	buf[28+4] = 0xFF
	buf[28+5] = 0xFF

	img, err := Decode(buf, nil)
	require.NoError(t, err)
	assert.True(t, img.Mips[0].Decoded())
	assert.False(t, img.Mips[1].HasSource())
	assert.False(t, img.Mips[1].Decoded())
	require.Len(t, img.Warnings, 1)
	assert.Contains(t, img.Warnings[0], ErrRegionOutOfBounds.Error())
	assert.Equal(t, 1, img.Holes)
}

func TestDecodeTruncatedMipIsWarning(t *testing.T) {
	pal := testPalette()
	buf := directFile(t, Header{Version: BLP1, AlphaBits: 8, Width: 2, Height: 2}, pal, []byte{0, 0, 0, 0, 0})

	img, err := Decode(buf, nil)
	require.NoError(t, err)
	assert.False(t, img.Mips[0].Decoded())
	require.Len(t, img.Warnings, 1)
	require.ErrorIs(t, img.DecodeMip(0), ErrTruncated)
}

func TestDecodeBLP2BGRA(t *testing.T) {
	h := Header{Version: BLP2, Compression: EncodingBGRA, AlphaBits: 8, Width: 2, Height: 1}
	buf := directFile(t, h, [256]color.RGBA{}, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	img, err := Decode(buf, nil)
	require.NoError(t, err)
	require.True(t, img.Mips[0].Decoded())
	assert.Equal(t, []byte{3, 2, 1, 4, 7, 6, 5, 8}, img.Mips[0].Pix)
}

func TestDecodeBLP2DXT1(t *testing.T) {
	h := Header{Version: BLP2, Compression: EncodingDXTC, Width: 4, Height: 4}
	// color0 is pure red in RGB565 and every index selects it.
	block := []byte{0x00, 0xF8, 0x1F, 0x00, 0, 0, 0, 0}
	buf := directFile(t, h, [256]color.RGBA{}, block)

	img, err := Decode(buf, nil)
	require.NoError(t, err)
	require.True(t, img.Mips[0].Decoded(), "%v", img.Warnings)
	pix := img.Mips[0].Pix
	require.Len(t, pix, 64)
	for i := 0; i < 64; i += 4 {
		assert.GreaterOrEqual(t, pix[i], uint8(248))
		assert.Equal(t, uint8(0), pix[i+1])
		assert.Equal(t, uint8(0), pix[i+2])
		assert.Equal(t, uint8(255), pix[i+3])
	}
}

func TestDecodeBLP2UnknownEncoding(t *testing.T) {
	h := Header{Version: BLP2, Compression: 9, Width: 1, Height: 1}
	buf := directFile(t, h, [256]color.RGBA{}, []byte{0, 0, 0, 0})

	img, err := Parse(buf, nil)
	require.NoError(t, err)
	require.ErrorIs(t, img.DecodeMip(0), ErrUnsupportedCompression)
}

func TestParseBLP0(t *testing.T) {
	h := Header{Version: BLP0, TextureType: Direct, Width: 8, Height: 8}
	fixed, err := h.MarshalBinary()
	require.NoError(t, err)
	img, err := Parse(append(fixed, make([]byte, paletteSize)...), nil)
	require.NoError(t, err)
	assert.Equal(t, BLP0, img.Version)
	assert.Equal(t, 0, img.MipCount())
	assert.Len(t, img.Warnings, 1)
}

func TestFromBytesRaster(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, opaqueImage(20, 20)))

	img, err := FromBytes(buf.Bytes(), &DecodeOptions{Name: "icon.png"})
	require.NoError(t, err)
	assert.Equal(t, BLP1, img.Version)
	assert.Equal(t, uint32(32), img.Width)
	assert.Equal(t, uint32(32), img.Height)
	assert.Equal(t, 6, img.MipCount())
}
