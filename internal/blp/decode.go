package blp

import (
	"fmt"

	"github.com/erinpentecost/blptool/internal/jpegcodec"
	"github.com/erinpentecost/blptool/internal/raster"
)

// DecodeOptions tunes Parse, Decode and FromBytes. The zero value is usable.
type DecodeOptions struct {
	// Logf receives every warning as it is recorded.
	Logf func(format string, args ...any)
	// Name is the source file name. Its extension picks a decoder for
	// formats without a magic number, such as TGA.
	Name string
}

func (o *DecodeOptions) logf() func(string, ...any) {
	if o == nil {
		return nil
	}
	return o.Logf
}

// Parse reads the header and locates every mip payload without decoding any
// of them. buf is retained and must not be modified afterwards.
func Parse(buf []byte, opts *DecodeOptions) (*Image, error) {
	h, err := ParseHeader(buf)
	if err != nil {
		return nil, err
	}
	img := &Image{Header: *h, src: buf, logf: opts.logf()}
	if h.Version == BLP0 {
		img.warnf("BLP0 keeps its mips in external files; only the header was read")
	}
	if h.TextureType == JPEG && h.JPEGHeaderOffset+h.JPEGHeaderLength > len(buf) {
		img.warnf("%v: jpeg header [%d,%d) beyond %d bytes", ErrRegionOutOfBounds,
			h.JPEGHeaderOffset, h.JPEGHeaderOffset+h.JPEGHeaderLength, len(buf))
	}
	img.Holes = h.coverage(len(buf), img.warnf)
	img.locateMips()
	return img, nil
}

// Decode parses buf and decodes every mip it can.
func Decode(buf []byte, opts *DecodeOptions) (*Image, error) {
	img, err := Parse(buf, opts)
	if err != nil {
		return nil, err
	}
	img.DecodeMips()
	return img, nil
}

// FromBytes decodes a BLP, or any raster format the raster package knows, in
// which case the result is a synthesized BLP1 pyramid.
func FromBytes(buf []byte, opts *DecodeOptions) (*Image, error) {
	if IsBLP(buf) {
		return Decode(buf, opts)
	}
	name := ""
	if opts != nil {
		name = opts.Name
	}
	src, err := raster.Decode(buf, name)
	if err != nil {
		return nil, err
	}
	return FromRaster(src, opts)
}

func (img *Image) locateMips() {
	w, h := int(img.Width), int(img.Height)
	for i := range img.Mips {
		m := &img.Mips[i]
		m.Width, m.Height = MipDimension(w, i), MipDimension(h, i)
		m.Offset, m.Length = img.Offsets[i], img.Lengths[i]
		if img.Version == BLP0 || m.Length == 0 {
			continue
		}
		if uint64(m.Offset)+uint64(m.Length) > uint64(len(img.src)) {
			img.warnf("mip %d: %v: [%d,%d) beyond %d bytes", i, ErrRegionOutOfBounds,
				m.Offset, uint64(m.Offset)+uint64(m.Length), len(img.src))
			continue
		}
		m.sourced = true
	}
}

func (img *Image) jpegHeader() ([]byte, error) {
	start, end := img.JPEGHeaderOffset, img.JPEGHeaderOffset+img.JPEGHeaderLength
	if end > len(img.src) {
		return nil, fmt.Errorf("%w: jpeg header [%d,%d)", ErrRegionOutOfBounds, start, end)
	}
	return img.src[start:end], nil
}

// startsWithSOI reports whether a JPEG payload carries its own header.
func startsWithSOI(raw []byte) bool {
	return len(raw) >= 2 && raw[0] == 0xFF && raw[1] == 0xD8
}

// DecodeMip decodes slot i into Mips[i].Pix.
func (img *Image) DecodeMip(i int) error {
	if i < 0 || i >= MaxMips || !img.Mips[i].HasSource() {
		return fmt.Errorf("%w: slot %d", ErrMipAbsent, i)
	}
	m := &img.Mips[i]
	raw := img.src[m.Offset : m.Offset+m.Length]

	var pix []byte
	var err error
	switch {
	case img.TextureType == JPEG:
		var header []byte
		if !startsWithSOI(raw) {
			header, err = img.jpegHeader()
		}
		if err == nil {
			pix, err = jpegcodec.Decode(header, raw, m.Width, m.Height, img.AlphaBits)
		}
	case img.Version != BLP2 || img.Compression == EncodingPalette:
		pix, err = DecodePalette(&img.Palette, raw, m.Width, m.Height, img.AlphaBits)
	case img.Compression == EncodingDXTC:
		pix, err = decodeDXTC(raw, m.Width, m.Height, img.AlphaBits, img.AlphaType)
	case img.Compression == EncodingBGRA:
		pix, err = decodeBGRA(raw, m.Width, m.Height, img.AlphaBits)
	default:
		err = fmt.Errorf("%w: blp2 encoding %d", ErrUnsupportedCompression, img.Compression)
	}
	if err != nil {
		return fmt.Errorf("mip %d: %w", i, err)
	}
	m.Pix = pix
	return nil
}

// DecodeMips decodes every sourced slot and returns how many succeeded.
// Failures are recorded as warnings and leave the slot undecoded.
func (img *Image) DecodeMips() int {
	n := 0
	for i := range img.Mips {
		if !img.Mips[i].HasSource() {
			continue
		}
		if err := img.DecodeMip(i); err != nil {
			img.warnf("%v", err)
			continue
		}
		n++
	}
	return n
}
