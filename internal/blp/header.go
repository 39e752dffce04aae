package blp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image/color"
	"slices"
)

const (
	blp0HeaderSize = 28
	blp1HeaderSize = 156
	blp2HeaderSize = 148
	paletteSize    = 256 * 4

	// blp1Extra is written to the extra field of every BLP1 we produce.
	blp1Extra = 5
)

// Header is the fixed part of a BLP file plus the location of the shared
// JPEG header or the palette that follows it.
type Header struct {
	Version     Version
	TextureType TextureType
	// Compression is the BLP2 color encoding. For BLP0/1 it mirrors TextureType.
	Compression uint8
	AlphaBits   uint32
	// AlphaType selects the DXT variant in BLP2 and is zero otherwise.
	AlphaType uint8
	// HasMips is the BLP2 has_mips byte or the BLP0/1 has_mipmaps word.
	HasMips uint32
	// Extra is the BLP0/1 word at offset 20, usually 4 or 5.
	Extra  uint32
	Width  uint32
	Height uint32

	Offsets [MaxMips]uint32
	Lengths [MaxMips]uint32

	// JPEGHeaderOffset and JPEGHeaderLength locate the shared JPEG header.
	JPEGHeaderOffset int
	JPEGHeaderLength int
	Palette          [256]color.RGBA
}

// Size returns the length of the fixed header for the version.
func (h *Header) Size() int {
	switch h.Version {
	case BLP0:
		return blp0HeaderSize
	case BLP2:
		return blp2HeaderSize
	}
	return blp1HeaderSize
}

// IsBLP reports whether buf starts with a BLP magic.
func IsBLP(buf []byte) bool {
	_, ok := sniffVersion(buf)
	return ok
}

func sniffVersion(buf []byte) (Version, bool) {
	if len(buf) < 4 {
		return 0, false
	}
	i := slices.Index(magics[:], string(buf[:4]))
	return Version(i), i >= 0
}

func truncated(what string, need, have int) error {
	return fmt.Errorf("%w: %w: %s needs %d bytes, have %d", ErrMalformedHeader, ErrTruncated, what, need, have)
}

// ParseHeader reads the fixed header and the shared JPEG header length or
// palette. It does not touch mip payloads.
func ParseHeader(buf []byte) (*Header, error) {
	v, ok := sniffVersion(buf)
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrMalformedHeader, ErrInvalidMagic)
	}
	h := &Header{Version: v}
	if len(buf) < h.Size() {
		return nil, truncated("header", h.Size(), len(buf))
	}
	le := binary.LittleEndian
	switch v {
	case BLP0, BLP1:
		h.TextureType = TextureType(le.Uint32(buf[4:]))
		h.AlphaBits = le.Uint32(buf[8:])
		h.Width = le.Uint32(buf[12:])
		h.Height = le.Uint32(buf[16:])
		h.Extra = le.Uint32(buf[20:])
		h.HasMips = le.Uint32(buf[24:])
		h.Compression = uint8(h.TextureType)
		if v == BLP1 {
			for i := range MaxMips {
				h.Offsets[i] = le.Uint32(buf[28+4*i:])
				h.Lengths[i] = le.Uint32(buf[92+4*i:])
			}
		}
	case BLP2:
		h.TextureType = TextureType(le.Uint32(buf[4:]))
		h.Compression = buf[8]
		h.AlphaBits = uint32(buf[9])
		h.AlphaType = buf[10]
		h.HasMips = uint32(buf[11])
		h.Width = le.Uint32(buf[12:])
		h.Height = le.Uint32(buf[16:])
		for i := range MaxMips {
			h.Offsets[i] = le.Uint32(buf[20+4*i:])
			h.Lengths[i] = le.Uint32(buf[84+4*i:])
		}
	}
	if h.TextureType != JPEG && h.TextureType != Direct {
		return nil, fmt.Errorf("%w: texture type %d", ErrMalformedHeader, uint32(h.TextureType))
	}

	pos := h.Size()
	switch h.TextureType {
	case JPEG:
		if len(buf) < pos+4 {
			return nil, truncated("jpeg header length", pos+4, len(buf))
		}
		h.JPEGHeaderOffset = pos + 4
		h.JPEGHeaderLength = int(le.Uint32(buf[pos:]))
	case Direct:
		if len(buf) < pos+paletteSize {
			return nil, truncated("palette", pos+paletteSize, len(buf))
		}
		for i := range h.Palette {
			e := buf[pos+4*i:]
			h.Palette[i] = color.RGBA{R: e[2], G: e[1], B: e[0], A: 255}
		}
	}
	return h, nil
}

// MarshalBinary writes the fixed header. The shared JPEG header or palette is
// not included.
func (h *Header) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(h.Size())
	buf.WriteString(h.Version.String())
	le := binary.LittleEndian
	w := func(v uint32) { buf.Write(le.AppendUint32(nil, v)) }
	switch h.Version {
	case BLP0, BLP1:
		w(uint32(h.TextureType))
		w(h.AlphaBits)
		w(h.Width)
		w(h.Height)
		w(h.Extra)
		w(h.HasMips)
		if h.Version == BLP1 {
			for _, o := range h.Offsets {
				w(o)
			}
			for _, l := range h.Lengths {
				w(l)
			}
		}
	case BLP2:
		if h.AlphaBits > 0xFF || h.HasMips > 0xFF {
			return nil, fmt.Errorf("%w: blp2 fields overflow a byte", ErrMalformedHeader)
		}
		w(uint32(h.TextureType))
		buf.Write([]byte{h.Compression, uint8(h.AlphaBits), h.AlphaType, uint8(h.HasMips)})
		w(h.Width)
		w(h.Height)
		for _, o := range h.Offsets {
			w(o)
		}
		for _, l := range h.Lengths {
			w(l)
		}
	default:
		return nil, fmt.Errorf("%w: unknown version %d", ErrMalformedHeader, int(h.Version))
	}
	return buf.Bytes(), nil
}

type span struct{ start, end int }

// coverage reports how many bytes of a buffer of size n are not claimed by
// the header, the shared block or any in-bounds mip, calling warn for every
// pair of overlapping mip ranges.
func (h *Header) coverage(n int, warn func(format string, args ...any)) int {
	sharedEnd := h.Size()
	switch h.TextureType {
	case JPEG:
		sharedEnd = min(n, h.JPEGHeaderOffset+h.JPEGHeaderLength)
	case Direct:
		sharedEnd += paletteSize
	}
	spans := []span{{0, sharedEnd}}

	var slots []int
	for i := range MaxMips {
		off, length := int(h.Offsets[i]), int(h.Lengths[i])
		if length == 0 || off+length > n {
			continue
		}
		s := span{off, off + length}
		for _, j := range slots {
			o := span{int(h.Offsets[j]), int(h.Offsets[j]) + int(h.Lengths[j])}
			if s.start < o.end && o.start < s.end {
				warn("mip %d [%d,%d) overlaps mip %d [%d,%d)", i, s.start, s.end, j, o.start, o.end)
			}
		}
		slots = append(slots, i)
		spans = append(spans, s)
	}

	slices.SortFunc(spans, func(a, b span) int { return a.start - b.start })
	covered, reach := 0, 0
	for _, s := range spans {
		start := max(s.start, reach)
		if s.end > start {
			covered += s.end - start
			reach = s.end
		}
	}
	return n - covered
}
