package jpegcodec

import (
	"bytes"
)

const (
	markerSOF0 = 0xC0
	markerDHT  = 0xC4
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerDQT  = 0xDB
	markerAPP0 = 0xE0
	markerAPPE = 0xEE
)

// plane is one full-resolution component. Sampling is always 1x1.
type plane struct {
	id    uint8
	quant quantIndex
	pix   []byte
}

// encoder writes a baseline, single-scan JPEG into an in-memory buffer.
type encoder struct {
	buf     bytes.Buffer
	scratch [16]byte
	// bits and nBits are accumulated bits not yet written.
	bits, nBits uint32
	// quant is the scaled quantization tables, in zig-zag order.
	quant [nQuantIndex][blockSize]byte
}

func newEncoder(quality int) *encoder {
	e := &encoder{}
	quality = max(1, min(quality, 100))
	// Convert from a quality rating to a scaling factor.
	var scale int
	if quality < 50 {
		scale = 5000 / quality
	} else {
		scale = 200 - quality*2
	}
	for i := range e.quant {
		for j := range e.quant[i] {
			x := int(unscaledQuant[i][j])
			x = (x*scale + 50) / 100
			e.quant[i][j] = byte(max(1, min(x, 255)))
		}
	}
	return e
}

// emit emits the least significant nBits bits of bits to the bit-stream.
// The precondition is bits < 1<<nBits && nBits <= 16.
func (e *encoder) emit(bits, nBits uint32) {
	nBits += e.nBits
	bits <<= 32 - nBits
	bits |= e.bits
	for nBits >= 8 {
		b := uint8(bits >> 24)
		e.buf.WriteByte(b)
		if b == 0xff {
			e.buf.WriteByte(0x00)
		}
		bits <<= 8
		nBits -= 8
	}
	e.bits, e.nBits = bits, nBits
}

func (e *encoder) emitHuff(h huffIndex, value int32) {
	x := theHuffmanLUT[h][value]
	e.emit(x&(1<<24-1), x>>24)
}

// emitHuffRLE emits a run length and a value category, followed by the
// value's extra bits.
func (e *encoder) emitHuffRLE(h huffIndex, runLength, value int32) {
	a, b := value, value
	if a < 0 {
		a, b = -value, value-1
	}
	var nBits uint32
	if a < 0x100 {
		nBits = uint32(bitCount[a])
	} else {
		nBits = 8 + uint32(bitCount[a>>8])
	}
	e.emitHuff(h, runLength<<4|int32(nBits))
	if nBits > 0 {
		e.emit(uint32(b)&(1<<nBits-1), nBits)
	}
}

func (e *encoder) writeMarkerHeader(marker uint8, markerlen int) {
	e.buf.Write([]byte{0xff, marker, uint8(markerlen >> 8), uint8(markerlen)})
}

// writeJFIF writes a minimal JFIF 1.01 APP0 segment with a 1:1 aspect.
func (e *encoder) writeJFIF() {
	e.writeMarkerHeader(markerAPP0, 16)
	e.buf.Write([]byte{'J', 'F', 'I', 'F', 0, 1, 1, 0, 0, 1, 0, 1, 0, 0})
}

// writeAdobe writes an APP14 segment with transform 0, which tells decoders
// the four components are stored without a color transform.
func (e *encoder) writeAdobe() {
	e.buf.Write(adobeSegment)
}

// writeDQT writes one DQT segment per table in use.
func (e *encoder) writeDQT(n int) {
	for i := 0; i < n; i++ {
		e.writeMarkerHeader(markerDQT, 2+1+blockSize)
		e.buf.WriteByte(uint8(i))
		e.buf.Write(e.quant[i][:])
	}
}

// writeDHT writes one DHT segment per table, DC tables first.
func (e *encoder) writeDHT(nQuant int) {
	order := []huffIndex{huffIndexLuminanceDC, huffIndexChrominanceDC, huffIndexLuminanceAC, huffIndexChrominanceAC}
	for _, h := range order {
		class, id := uint8(h%2), uint8(h/2)
		if int(id) >= nQuant {
			continue
		}
		s := theHuffmanSpec[h]
		e.writeMarkerHeader(markerDHT, 2+1+16+len(s.value))
		e.buf.WriteByte(class<<4 | id)
		e.buf.Write(s.count[:])
		e.buf.Write(s.value)
	}
}

func (e *encoder) writeSOF0(width, height int, planes []plane) {
	e.writeMarkerHeader(markerSOF0, 8+3*len(planes))
	e.scratch[0] = 8
	e.scratch[1] = uint8(height >> 8)
	e.scratch[2] = uint8(height)
	e.scratch[3] = uint8(width >> 8)
	e.scratch[4] = uint8(width)
	e.scratch[5] = uint8(len(planes))
	e.buf.Write(e.scratch[:6])
	for _, p := range planes {
		e.buf.Write([]byte{p.id, 0x11, uint8(p.quant)})
	}
}

func (e *encoder) writeSOS(planes []plane) {
	e.writeMarkerHeader(markerSOS, 6+2*len(planes))
	e.buf.WriteByte(uint8(len(planes)))
	for _, p := range planes {
		e.buf.Write([]byte{p.id, uint8(p.quant)<<4 | uint8(p.quant)})
	}
	e.buf.Write([]byte{0, 63, 0})
}

// writeBlock writes a block of samples using the given quantization table,
// returning the post-quantized DC value. b is in natural order.
func (e *encoder) writeBlock(b *block, q quantIndex, prevDC int32) int32 {
	fdct(b)
	dc := div(b[0], 8*int32(e.quant[q][0]))
	e.emitHuffRLE(huffIndex(2*q+0), 0, dc-prevDC)
	h, runLength := huffIndex(2*q+1), int32(0)
	for zig := 1; zig < blockSize; zig++ {
		ac := div(b[unzig[zig]], 8*int32(e.quant[q][zig]))
		if ac == 0 {
			runLength++
		} else {
			for runLength > 15 {
				e.emitHuff(h, 0xf0)
				runLength -= 16
			}
			e.emitHuffRLE(h, runLength, ac)
			runLength = 0
		}
	}
	if runLength > 0 {
		e.emitHuff(h, 0x00)
	}
	return dc
}

// loadBlock copies the 8x8 region at (x, y) of a plane, replicating the
// last row and column past the image edge.
func loadBlock(b *block, pix []byte, width, height, x, y int) {
	xmax, ymax := width-1, height-1
	for j := 0; j < 8; j++ {
		row := min(y+j, ymax) * width
		for i := 0; i < 8; i++ {
			b[8*j+i] = int32(pix[row+min(x+i, xmax)])
		}
	}
}

// writeScan writes the interleaved entropy-coded data for all planes.
func (e *encoder) writeScan(width, height int, planes []plane) {
	var b block
	prevDC := make([]int32, len(planes))
	for y := 0; y < height; y += 8 {
		for x := 0; x < width; x += 8 {
			for i, p := range planes {
				loadBlock(&b, p.pix, width, height, x, y)
				prevDC[i] = e.writeBlock(&b, p.quant, prevDC[i])
			}
		}
	}
	// Pad the last byte with 1's.
	e.emit(0x7f, 7)
}
