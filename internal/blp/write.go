package blp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/erinpentecost/blptool/internal/jpegcodec"
	"github.com/erinpentecost/blptool/internal/jpegplan"
)

// EncodeOptions tunes Encode. The zero value is usable.
type EncodeOptions struct {
	// Quality is the JPEG quality, 1-100. Zero selects jpegcodec.DefaultQuality.
	Quality int
	// Visible hides source slots whose entry is false. Missing entries are
	// visible.
	Visible []bool
	// Logf receives warnings such as the fallback to per-mip headers.
	Logf func(format string, args ...any)
}

func (o *EncodeOptions) visible(i int) bool {
	return o == nil || i >= len(o.Visible) || o.Visible[i]
}

// encodedMip is one output level on its way into the file.
type encodedMip struct {
	width, height int
	jpeg          []byte
	plan          *jpegplan.Plan
	scan          []byte
}

// Encode writes img as a BLP1 JPEG file.
//
// The first decoded, visible slot becomes output level 0 and later slots
// shift down with it. Hidden or undecoded slots are written with a zero
// offset and length. When every level's JPEG agrees on its tables, one
// shared header is stored and each level keeps only SOF0, SOS and its scan;
// otherwise every level keeps a complete stream.
func Encode(img *Image, opts *EncodeOptions) ([]byte, error) {
	var quality int
	var logf func(string, ...any)
	if opts != nil {
		quality, logf = opts.Quality, opts.Logf
	}
	base := -1
	for i := range img.Mips {
		if img.Mips[i].Decoded() && opts.visible(i) {
			base = i
			break
		}
	}
	if base < 0 {
		return nil, ErrNoVisibleMips
	}
	bw, bh := img.Mips[base].Width, img.Mips[base].Height
	if bw <= 0 || bh <= 0 {
		return nil, fmt.Errorf("%w: base mip %d is %dx%d", ErrEmptyBaseDimension, base, bw, bh)
	}
	alpha := jpegcodec.HasAlpha(img.Mips[base].Pix)

	var levels [MaxMips]*encodedMip
	for k := base; k < MaxMips; k++ {
		m := &img.Mips[k]
		if !m.Decoded() || !opts.visible(k) {
			continue
		}
		j := k - base
		w, h := MipDimension(bw, j), MipDimension(bh, j)
		if m.Width != w || m.Height != h {
			return nil, fmt.Errorf("%w: mip %d is %dx%d, expected %dx%d", ErrSizeMismatch, k, m.Width, m.Height, w, h)
		}
		data, err := jpegcodec.Encode(m.Pix, w, h, alpha, quality)
		if err != nil {
			return nil, fmt.Errorf("mip %d: %w", k, err)
		}
		levels[j] = &encodedMip{width: w, height: h, jpeg: data}
	}

	alphaBits := uint32(0)
	if alpha {
		alphaBits = 8
	}
	out, err := assemble(bw, bh, alphaBits, levels[:], logf)
	if err != nil {
		return nil, err
	}
	for j, l := range levels {
		if l != nil {
			img.Mips[base+j].Encoded = l.jpeg
		}
	}
	return out, nil
}

// assemble lays out the header, the shared JPEG header and the level
// payloads in slot order.
func assemble(width, height int, alphaBits uint32, levels []*encodedMip, logf func(string, ...any)) ([]byte, error) {
	var first *jpegplan.Plan
	shared := true
	count := 0
	for j, l := range levels {
		if l == nil {
			continue
		}
		count++
		p, err := jpegplan.Parse(l.jpeg)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", j, err)
		}
		if l.scan, err = jpegplan.Scan(l.jpeg); err != nil {
			return nil, fmt.Errorf("level %d: %w", j, err)
		}
		l.plan = p
		if first == nil {
			first = p
		} else if shared && !first.Compatible(p) {
			shared = false
			if logf != nil {
				logf("level %d tables differ from level 0, storing a full header per level", j)
			}
		}
	}

	var common []byte
	if shared {
		common = first.CommonHeader()
	}
	payloads := make([][]byte, len(levels))
	for j, l := range levels {
		if l == nil {
			continue
		}
		tail, err := l.plan.Tail(l.width, l.height)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", j, err)
		}
		var p []byte
		if !shared {
			p = l.plan.CommonHeader()
		}
		p = append(p, tail...)
		payloads[j] = append(p, l.scan...)
	}

	h := Header{
		Version:     BLP1,
		TextureType: JPEG,
		AlphaBits:   alphaBits,
		Width:       uint32(width),
		Height:      uint32(height),
		Extra:       blp1Extra,
	}
	if count > 1 {
		h.HasMips = 1
	}
	offset := blp1HeaderSize + 4 + len(common)
	for j, p := range payloads {
		if p == nil {
			continue
		}
		if uint64(offset+len(p)) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: level %d ends past 4GiB", ErrRegionOutOfBounds, j)
		}
		h.Offsets[j] = uint32(offset)
		h.Lengths[j] = uint32(len(p))
		offset += len(p)
	}

	fixed, err := h.MarshalBinary()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(offset)
	buf.Write(fixed)
	buf.Write(binary.LittleEndian.AppendUint32(nil, uint32(len(common))))
	buf.Write(common)
	for _, p := range payloads {
		buf.Write(p)
	}
	return buf.Bytes(), nil
}
