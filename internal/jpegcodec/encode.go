package jpegcodec

import (
	"fmt"
	"image/color"
)

// DefaultQuality is used when no quality is requested.
const DefaultQuality = 90

// adobeSegment is a complete APP14 "Adobe" segment with transform 0.
var adobeSegment = []byte{
	0xFF, markerAPPE, 0x00, 0x0E,
	'A', 'd', 'o', 'b', 'e',
	0x00, 0x64, // version 100
	0x00, 0x00, // flags0
	0x00, 0x00, // flags1
	0x00, // transform
}

// HasAlpha reports whether any pixel of an RGBA buffer is not fully opaque.
func HasAlpha(rgba []byte) bool {
	for i := 3; i < len(rgba); i += 4 {
		if rgba[i] != 0xFF {
			return true
		}
	}
	return false
}

// PackBGR reorders RGBA pixels into the B,G,R triplets stored in opaque
// textures.
func PackBGR(rgba []byte) []byte {
	out := make([]byte, 0, len(rgba)/4*3)
	for i := 0; i+3 < len(rgba); i += 4 {
		out = append(out, rgba[i+2], rgba[i+1], rgba[i])
	}
	return out
}

// PackCMYK converts RGBA pixels into the C,M,Y,K form image/jpeg returns for
// textures with alpha: C=255-B, M=255-G, Y=255-R, K=255-A.
func PackCMYK(rgba []byte) []byte {
	out := make([]byte, 0, len(rgba))
	for i := 0; i+3 < len(rgba); i += 4 {
		out = append(out, 255-rgba[i+2], 255-rgba[i+1], 255-rgba[i], 255-rgba[i+3])
	}
	return out
}

// Encode compresses a tightly packed RGBA buffer into a baseline JPEG.
//
// Without alpha the stream is 3-component YCbCr built from the B,G,R
// channels. With alpha it is a 4-component Adobe stream whose stored samples
// are B,G,R,A, which image/jpeg decodes as CMYK with C=255-B and so on.
// Neither variant subsamples chroma.
func Encode(rgba []byte, width, height int, withAlpha bool, quality int) ([]byte, error) {
	if width <= 0 || height <= 0 || width > 0xFFFF || height > 0xFFFF {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	n := width * height
	if len(rgba) != n*4 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d RGBA", ErrSizeMismatch, len(rgba), width, height)
	}
	if quality == 0 {
		quality = DefaultQuality
	}

	var planes []plane
	if withAlpha {
		cmyk := PackCMYK(rgba)
		for c := 0; c < 4; c++ {
			pix := make([]byte, n)
			for i := range pix {
				pix[i] = 255 - cmyk[4*i+c]
			}
			planes = append(planes, plane{id: uint8(c + 1), quant: quantIndexLuminance, pix: pix})
		}
	} else {
		bgr := PackBGR(rgba)
		y := make([]byte, n)
		cb := make([]byte, n)
		cr := make([]byte, n)
		for i := 0; i < n; i++ {
			y[i], cb[i], cr[i] = color.RGBToYCbCr(bgr[3*i+2], bgr[3*i+1], bgr[3*i])
		}
		planes = []plane{
			{id: 1, quant: quantIndexLuminance, pix: y},
			{id: 2, quant: quantIndexChrominance, pix: cb},
			{id: 3, quant: quantIndexChrominance, pix: cr},
		}
	}

	e := newEncoder(quality)
	e.buf.Grow(n)
	e.buf.Write([]byte{0xff, markerSOI})
	nQuant := 2
	if withAlpha {
		e.writeAdobe()
		nQuant = 1
	} else {
		e.writeJFIF()
	}
	e.writeDQT(nQuant)
	e.writeDHT(nQuant)
	e.writeSOF0(width, height, planes)
	e.writeSOS(planes)
	e.writeScan(width, height, planes)
	e.buf.Write([]byte{0xff, markerEOI})
	return e.buf.Bytes(), nil
}
