package dds

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/bcn"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: 200, A: 255})
		}
	}
	return img
}

func TestEncodeLossless(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{1, 2, 3, 255})
	img.SetNRGBA(1, 0, color.NRGBA{5, 6, 7, 255})
	img.SetNRGBA(0, 1, color.NRGBA{9, 10, 11, 255})
	img.SetNRGBA(1, 1, color.NRGBA{13, 14, 15, 255})

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, Lossless, 1))
	data := buf.Bytes()
	require.True(t, IsDDS(data))
	require.Len(t, data, 128+16)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[12:]))

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Bounds().Dx())
	r, g, b, a := got.At(1, 1).RGBA()
	assert.Equal(t, [4]uint32{13, 14, 15, 255}, [4]uint32{r >> 8, g >> 8, b >> 8, a >> 8})
}

func TestEncodeCompressedRoundTrip(t *testing.T) {
	for _, codec := range []Codec{DXT1, DXT5} {
		t.Run(codec.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, testImage(16, 16), codec, 0))

			got, err := Decode(buf.Bytes())
			require.NoError(t, err)
			require.Equal(t, 16, got.Bounds().Dx())
			require.Equal(t, 16, got.Bounds().Dy())
			_, _, b, a := got.At(3, 3).RGBA()
			assert.InDelta(t, 200, b>>8, 12)
			assert.Equal(t, uint32(255), a>>8)
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode([]byte("PNG"))
	require.ErrorIs(t, err, ErrHeader)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testImage(8, 8), DXT5, 1))
	_, err = Decode(buf.Bytes()[:140])
	require.ErrorIs(t, err, ErrTruncated)
}

func TestParseCodec(t *testing.T) {
	c, err := ParseCodec("DXT5")
	require.NoError(t, err)
	assert.Equal(t, DXT5, c)
	_, err = ParseCodec("bc7")
	require.ErrorIs(t, err, ErrUnknownCodec)
}

// rawDDS writes a 2x2 header with the given legacy FourCC, the optional DX10
// extension and payload.
func rawDDS(t *testing.T, code string, dxgi uint32, payload []byte) []byte {
	t.Helper()
	hdr := &bcn.DDSHeader{Size: bcn.DDSHeaderSize, Width: 2, Height: 2, Depth: 1, MipMapCount: 1}
	hdr.PixelFormat.Size = bcn.DDSPixelFormatSize
	hdr.PixelFormat.Flags = bcn.DDSPFFourCC
	hdr.PixelFormat.FourCC = binary.LittleEndian.Uint32([]byte(code))
	var buf bytes.Buffer
	require.NoError(t, bcn.WriteDDSMagic(&buf))
	require.NoError(t, bcn.WriteDDSHeader(&buf, hdr))
	if code == "DX10" {
		ext := [5]uint32{dxgi, 3, 0, 1, 0}
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, ext))
	}
	buf.Write(payload)
	return buf.Bytes()
}

func TestDecodePixelFormats(t *testing.T) {
	_, err := Decode(rawDDS(t, "ATI1", 0, make([]byte, 8)))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "ATI1")

	_, err = Decode(rawDDS(t, "DX10", 80, make([]byte, 8)))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "DXGI 80")

	bgra := []byte{
		3, 2, 1, 255, 7, 6, 5, 255,
		11, 10, 9, 255, 15, 14, 13, 255,
	}
	got, err := Decode(rawDDS(t, "DX10", 87, bgra))
	require.NoError(t, err)
	r, g, b, a := got.At(1, 1).RGBA()
	assert.Equal(t, [4]uint32{13, 14, 15, 255}, [4]uint32{r >> 8, g >> 8, b >> 8, a >> 8})

	_, err = Decode(rawDDS(t, "DXT3", 0, make([]byte, 16)))
	require.NoError(t, err)
}
