// Package dds moves textures in and out of DirectDraw Surface files.
package dds

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/woozymasta/bcn"
)

var (
	ErrUnknownCodec      = errors.New("dds: unknown codec")
	ErrUnsupportedFormat = errors.New("dds: unsupported pixel format")
	ErrTruncated         = errors.New("dds: truncated pixel data")
	ErrHeader            = errors.New("dds: bad header")
	ErrEmptyImage        = errors.New("dds: empty image")
)

// IsDDS reports whether data starts with the DDS magic.
func IsDDS(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "DDS "
}

// fourCCs lists the block formats read from legacy headers. The first name
// of each format is the one written.
var fourCCs = []struct {
	code   string
	format bcn.Format
}{
	{"DXT1", bcn.FormatDXT1},
	{"DXT3", bcn.FormatDXT3},
	{"DXT2", bcn.FormatDXT3},
	{"DXT5", bcn.FormatDXT5},
	{"DXT4", bcn.FormatDXT5},
}

// dxgiFormats maps DXGI_FORMAT values of a DX10 header, typeless and sRGB
// variants included.
var dxgiFormats = map[uint32]bcn.Format{
	28: bcn.FormatRGBA8, 29: bcn.FormatRGBA8,
	71: bcn.FormatDXT1, 72: bcn.FormatDXT1,
	74: bcn.FormatDXT3, 75: bcn.FormatDXT3,
	77: bcn.FormatDXT5, 78: bcn.FormatDXT5,
	87: bcn.FormatBGRA8, 91: bcn.FormatBGRA8,
}

func fourCC(v uint32) string {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return string(b[:])
}

func fourCCOf(format bcn.Format) (uint32, bool) {
	for _, f := range fourCCs {
		if f.format == format {
			return binary.LittleEndian.Uint32([]byte(f.code)), true
		}
	}
	return 0, false
}

// pixelFormat names the surface layout of a header. Unknown layouts come back
// as bcn.FormatUnknown with a name for the error message.
func pixelFormat(header *bcn.DDSHeader, dx10 *bcn.DDSHeaderDX10) (bcn.Format, string) {
	if dx10 != nil {
		name := fmt.Sprintf("DXGI %d", dx10.DXGIFormat)
		if f, ok := dxgiFormats[dx10.DXGIFormat]; ok {
			return f, name
		}
		return bcn.FormatUnknown, name
	}
	pf := header.PixelFormat
	if pf.Flags&bcn.DDSPFFourCC != 0 {
		code := fourCC(pf.FourCC)
		for _, f := range fourCCs {
			if f.code == code {
				return f.format, code
			}
		}
		return bcn.FormatUnknown, code
	}
	if pf.Flags&bcn.DDSPFRGB == 0 || pf.RGBBitCount != 32 || pf.GBitMask != 0x0000ff00 {
		return bcn.FormatUnknown, fmt.Sprintf("%d-bit RGB", pf.RGBBitCount)
	}
	switch {
	case pf.RBitMask == 0x000000ff && pf.BBitMask == 0x00ff0000:
		return bcn.FormatRGBA8, "RGBA8"
	case pf.RBitMask == 0x00ff0000 && pf.BBitMask == 0x000000ff:
		return bcn.FormatBGRA8, "BGRA8"
	}
	return bcn.FormatUnknown, "32-bit RGB"
}

// dataLength is the byte size of one surface of the given format.
func dataLength(format bcn.Format, width, height int) int {
	bw, bh := (width+3)/4, (height+3)/4
	switch format {
	case bcn.FormatDXT1:
		return bw * bh * 8
	case bcn.FormatDXT3, bcn.FormatDXT5:
		return bw * bh * 16
	case bcn.FormatRGBA8, bcn.FormatBGRA8:
		return width * height * 4
	}
	return -1
}

func makeHeader(width, height, mipMapCount uint32, format bcn.Format) (*bcn.DDSHeader, error) {
	flags := uint32(bcn.DDSFlagCaps | bcn.DDSFlagHeight | bcn.DDSFlagWidth | bcn.DDSFlagPixelFormat)
	caps := uint32(bcn.DDSCapsTexture)
	if mipMapCount > 1 {
		flags |= bcn.DDSFlagMipmapCount
		caps |= bcn.DDSCapsComplex | bcn.DDSCapsMipmap
	}
	hdr := &bcn.DDSHeader{
		Size:        bcn.DDSHeaderSize,
		Flags:       flags,
		Height:      height,
		Width:       width,
		Depth:       1,
		MipMapCount: mipMapCount,
		Caps:        caps,
	}
	hdr.PixelFormat.Size = bcn.DDSPixelFormatSize

	switch format {
	case bcn.FormatDXT1, bcn.FormatDXT3, bcn.FormatDXT5:
		hdr.Flags |= bcn.DDSFlagLinearSize
		hdr.PixelFormat.Flags = bcn.DDSPFFourCC
		hdr.PixelFormat.FourCC, _ = fourCCOf(format)
		hdr.PitchOrLinearSize = uint32(dataLength(format, int(width), int(height)))
	case bcn.FormatBGRA8:
		hdr.Flags |= bcn.DDSFlagPitch
		hdr.PixelFormat.Flags = bcn.DDSPFRGB | bcn.DDSPFAlphaPixels
		hdr.PixelFormat.RGBBitCount = 32
		hdr.PixelFormat.RBitMask = 0x00ff0000
		hdr.PixelFormat.GBitMask = 0x0000ff00
		hdr.PixelFormat.BBitMask = 0x000000ff
		hdr.PixelFormat.ABitMask = 0xff000000
		hdr.PitchOrLinearSize = width * 4
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	return hdr, nil
}
