package jpegplan

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

func writeSegment(buf *bytes.Buffer, marker byte, payload ...[]byte) {
	n := 2
	for _, p := range payload {
		n += len(p)
	}
	buf.Write([]byte{0xFF, marker, byte(n >> 8), byte(n)})
	for _, p := range payload {
		buf.Write(p)
	}
}

// CommonHeader returns SOI, the APPn segments, one DQT per table, one DHT
// per table in (class, id) order and DRI when a restart interval is set.
func (p *Plan) CommonHeader() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, markerSOI})
	for _, a := range p.Apps {
		writeSegment(&buf, a.Marker, a.Payload)
	}
	for _, q := range p.Quant {
		writeSegment(&buf, markerDQT, []byte{q.ID}, q.Values[:])
	}
	for _, h := range p.Huffman {
		writeSegment(&buf, markerDHT, []byte{h.Class<<4 | h.ID}, h.Counts[:], h.Symbols)
	}
	if p.HasRestart {
		writeSegment(&buf, markerDRI, binary.BigEndian.AppendUint16(nil, p.Restart))
	}
	return buf.Bytes()
}

// Tail returns the SOF0 and SOS segments for an image of the given size.
func (p *Plan) Tail(width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 || width > 0xFFFF || height > 0xFFFF {
		return nil, fmt.Errorf("%w: frame size %dx%d", ErrMalformed, width, height)
	}
	var buf bytes.Buffer
	sof := []byte{p.Precision, byte(height >> 8), byte(height), byte(width >> 8), byte(width), byte(len(p.Frame))}
	for _, c := range p.Frame {
		sof = append(sof, c.ID, c.H<<4|c.V, c.Quant)
	}
	writeSegment(&buf, markerSOF0, sof)

	sos := []byte{byte(len(p.Scan))}
	for _, c := range p.Scan {
		sos = append(sos, c.ID, c.DC<<4|c.AC)
	}
	sos = append(sos, p.Ss, p.Se, p.Ah<<4|p.Al)
	writeSegment(&buf, markerSOS, sos)
	return buf.Bytes(), nil
}

// FullJPEG assembles CommonHeader, Tail, the entropy-coded scan and EOI.
func (p *Plan) FullJPEG(width, height int, scan []byte) ([]byte, error) {
	tail, err := p.Tail(width, height)
	if err != nil {
		return nil, err
	}
	out := p.CommonHeader()
	out = append(out, tail...)
	out = append(out, scan...)
	return append(out, 0xFF, markerEOI), nil
}
