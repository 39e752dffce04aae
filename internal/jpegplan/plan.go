package jpegplan

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"
)

// QuantTable is an 8-bit DQT table. Values are kept in stream (zigzag) order.
type QuantTable struct {
	ID     uint8
	Values [64]uint8
}

// HuffmanTable is a DHT table. Class 0 is DC, class 1 is AC.
type HuffmanTable struct {
	Class   uint8
	ID      uint8
	Counts  [16]uint8
	Symbols []byte
}

func (t HuffmanTable) equal(o HuffmanTable) bool {
	return t.Class == o.Class && t.ID == o.ID && t.Counts == o.Counts && bytes.Equal(t.Symbols, o.Symbols)
}

// AppSegment is an APPn segment kept verbatim.
type AppSegment struct {
	Marker  uint8
	Payload []byte
}

func (a AppSegment) equal(o AppSegment) bool {
	return a.Marker == o.Marker && bytes.Equal(a.Payload, o.Payload)
}

// FrameComponent is one SOF0 component specification.
type FrameComponent struct {
	ID    uint8
	H, V  uint8
	Quant uint8
}

// ScanComponent is one SOS component selector.
type ScanComponent struct {
	ID uint8
	DC uint8
	AC uint8
}

// Plan holds everything needed to rebuild the header of a baseline JPEG.
// Width and Height are informational and ignored by Compatible.
type Plan struct {
	Apps       []AppSegment
	Quant      []QuantTable   // sorted by ID
	Huffman    []HuffmanTable // sorted by (Class, ID)
	HasRestart bool
	Restart    uint16

	Precision uint8
	Width     int
	Height    int
	Frame     []FrameComponent

	Scan       []ScanComponent
	Ss, Se     uint8
	Ah, Al     uint8
	scanOffset int
}

// Components returns the number of frame components.
func (p *Plan) Components() int { return len(p.Frame) }

// HasAdobe reports whether an Adobe APP14 segment is present.
func (p *Plan) HasAdobe() bool {
	for _, a := range p.Apps {
		if a.Marker == 0xEE && bytes.HasPrefix(a.Payload, []byte("Adobe")) {
			return true
		}
	}
	return false
}

// ScanOffset is the byte offset of the first entropy-coded byte in the
// stream the plan was parsed from.
func (p *Plan) ScanOffset() int { return p.scanOffset }

// Compatible reports whether p and o can share one common header.
func (p *Plan) Compatible(o *Plan) bool {
	if p == nil || o == nil {
		return false
	}
	return p.HasRestart == o.HasRestart &&
		p.Restart == o.Restart &&
		p.Precision == o.Precision &&
		p.Ss == o.Ss && p.Se == o.Se && p.Ah == o.Ah && p.Al == o.Al &&
		slices.Equal(p.Quant, o.Quant) &&
		slices.Equal(p.Frame, o.Frame) &&
		slices.Equal(p.Scan, o.Scan) &&
		slices.EqualFunc(p.Huffman, o.Huffman, HuffmanTable.equal) &&
		slices.EqualFunc(p.Apps, o.Apps, AppSegment.equal)
}

// segment is one length-prefixed marker segment found before SOS.
type segment struct {
	marker  byte
	payload []byte
	end     int
}

// walk calls fn for each marker segment after SOI, stopping after SOS.
// It returns the offset just past the SOS segment.
func walk(data []byte, fn func(segment) error) (int, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return 0, fmt.Errorf("%w: missing SOI", ErrMalformed)
	}
	pos := 2
	for {
		if pos >= len(data) {
			return 0, fmt.Errorf("%w: missing SOS", ErrMalformed)
		}
		if data[pos] != 0xFF {
			return 0, fmt.Errorf("%w: expected marker at offset %d, got 0x%02x", ErrMalformed, pos, data[pos])
		}
		// Any number of 0xFF fill bytes may precede a marker.
		for pos < len(data) && data[pos] == 0xFF {
			pos++
		}
		if pos >= len(data) {
			return 0, fmt.Errorf("%w: missing SOS", ErrMalformed)
		}
		marker := data[pos]
		pos++
		if marker == markerEOI || marker == markerSOI || isRST(marker) || marker == 0x01 {
			return 0, fmt.Errorf("%w: 0x%02x before SOS", ErrUnexpectedMarker, marker)
		}
		if pos+2 > len(data) {
			return 0, fmt.Errorf("%w: truncated length of marker 0x%02x", ErrMalformed, marker)
		}
		n := int(binary.BigEndian.Uint16(data[pos:]))
		if n < 2 || pos+n > len(data) {
			return 0, fmt.Errorf("%w: segment 0x%02x at offset %d overruns data", ErrMalformed, marker, pos-2)
		}
		seg := segment{marker: marker, payload: data[pos+2 : pos+n], end: pos + n}
		pos += n
		if err := fn(seg); err != nil {
			return 0, err
		}
		if marker == markerSOS {
			return pos, nil
		}
	}
}

// Parse reads the markers of a baseline JPEG up to and including SOS.
func Parse(data []byte) (*Plan, error) {
	p := &Plan{}
	sawFrame := false
	end, err := walk(data, func(s segment) error {
		switch {
		case s.marker == markerDQT:
			return p.parseDQT(s.payload)
		case s.marker == markerDHT:
			return p.parseDHT(s.payload)
		case s.marker == markerDRI:
			if len(s.payload) != 2 {
				return fmt.Errorf("%w: DRI length %d", ErrMalformed, len(s.payload))
			}
			p.HasRestart = true
			p.Restart = binary.BigEndian.Uint16(s.payload)
		case isAPP(s.marker):
			p.Apps = append(p.Apps, AppSegment{Marker: s.marker, Payload: bytes.Clone(s.payload)})
		case s.marker == markerCOM:
		case s.marker == markerSOF0:
			if sawFrame {
				return fmt.Errorf("%w: duplicate SOF", ErrMalformed)
			}
			sawFrame = true
			return p.parseSOF0(s.payload)
		case isSOF(s.marker), s.marker == markerDAC:
			return fmt.Errorf("%w: marker 0x%02x", ErrUnsupportedProfile, s.marker)
		case s.marker == markerSOS:
			if !sawFrame {
				return fmt.Errorf("%w: SOS before SOF0", ErrMalformed)
			}
			return p.parseSOS(s.payload)
		default:
			return fmt.Errorf("%w: 0x%02x before SOS", ErrUnexpectedMarker, s.marker)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	p.scanOffset = end
	slices.SortFunc(p.Quant, func(a, b QuantTable) int { return int(a.ID) - int(b.ID) })
	slices.SortFunc(p.Huffman, func(a, b HuffmanTable) int {
		if a.Class != b.Class {
			return int(a.Class) - int(b.Class)
		}
		return int(a.ID) - int(b.ID)
	})
	return p, nil
}

func (p *Plan) parseDQT(b []byte) error {
	for len(b) > 0 {
		pq, tq := b[0]>>4, b[0]&0x0F
		if pq != 0 {
			return fmt.Errorf("%w: 16-bit quantization table %d", ErrUnsupportedProfile, tq)
		}
		if tq > 3 {
			return fmt.Errorf("%w: quantization table id %d", ErrMalformed, tq)
		}
		if len(b) < 65 {
			return fmt.Errorf("%w: short DQT", ErrMalformed)
		}
		t := QuantTable{ID: tq}
		copy(t.Values[:], b[1:65])
		p.Quant = slices.DeleteFunc(p.Quant, func(q QuantTable) bool { return q.ID == tq })
		p.Quant = append(p.Quant, t)
		b = b[65:]
	}
	return nil
}

func (p *Plan) parseDHT(b []byte) error {
	for len(b) > 0 {
		if len(b) < 17 {
			return fmt.Errorf("%w: short DHT", ErrMalformed)
		}
		t := HuffmanTable{Class: b[0] >> 4, ID: b[0] & 0x0F}
		if t.Class > 1 || t.ID > 3 {
			return fmt.Errorf("%w: huffman table class %d id %d", ErrMalformed, t.Class, t.ID)
		}
		copy(t.Counts[:], b[1:17])
		total := 0
		for _, c := range t.Counts {
			total += int(c)
		}
		if total > 256 || len(b) < 17+total {
			return fmt.Errorf("%w: bad DHT symbol count %d", ErrMalformed, total)
		}
		t.Symbols = bytes.Clone(b[17 : 17+total])
		p.Huffman = slices.DeleteFunc(p.Huffman, func(h HuffmanTable) bool { return h.Class == t.Class && h.ID == t.ID })
		p.Huffman = append(p.Huffman, t)
		b = b[17+total:]
	}
	return nil
}

func (p *Plan) parseSOF0(b []byte) error {
	if len(b) < 6 {
		return fmt.Errorf("%w: short SOF0", ErrMalformed)
	}
	p.Precision = b[0]
	if p.Precision != 8 {
		return fmt.Errorf("%w: %d-bit precision", ErrUnsupportedProfile, p.Precision)
	}
	p.Height = int(binary.BigEndian.Uint16(b[1:]))
	p.Width = int(binary.BigEndian.Uint16(b[3:]))
	n := int(b[5])
	if n < 1 || n > 4 || len(b) != 6+3*n {
		return fmt.Errorf("%w: SOF0 with %d components", ErrMalformed, n)
	}
	p.Frame = make([]FrameComponent, n)
	for i := range p.Frame {
		c := b[6+3*i:]
		p.Frame[i] = FrameComponent{ID: c[0], H: c[1] >> 4, V: c[1] & 0x0F, Quant: c[2]}
		if p.Frame[i].Quant > 3 {
			return fmt.Errorf("%w: component %d quant selector %d", ErrMalformed, c[0], c[2])
		}
	}
	return nil
}

func (p *Plan) parseSOS(b []byte) error {
	if len(b) < 1 {
		return fmt.Errorf("%w: short SOS", ErrMalformed)
	}
	n := int(b[0])
	if n < 1 || n > 4 || len(b) != 4+2*n {
		return fmt.Errorf("%w: SOS with %d components", ErrMalformed, n)
	}
	if n != len(p.Frame) {
		return fmt.Errorf("%w: non-interleaved scan (%d of %d components)", ErrUnsupportedProfile, n, len(p.Frame))
	}
	p.Scan = make([]ScanComponent, n)
	for i := range p.Scan {
		c := b[1+2*i:]
		sc := ScanComponent{ID: c[0], DC: c[1] >> 4, AC: c[1] & 0x0F}
		if !slices.ContainsFunc(p.Frame, func(f FrameComponent) bool { return f.ID == sc.ID }) {
			return fmt.Errorf("%w: scan references unknown component %d", ErrMalformed, sc.ID)
		}
		p.Scan[i] = sc
	}
	tail := b[1+2*n:]
	p.Ss, p.Se = tail[0], tail[1]
	p.Ah, p.Al = tail[2]>>4, tail[2]&0x0F
	if p.Ss != 0 || p.Se != 63 || p.Ah != 0 || p.Al != 0 {
		return fmt.Errorf("%w: spectral selection %d-%d", ErrUnsupportedProfile, p.Ss, p.Se)
	}
	return nil
}
