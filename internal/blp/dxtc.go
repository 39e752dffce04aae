package blp

import (
	"fmt"

	"github.com/mauserzjeh/dxt"
)

// decodeDXTC decodes a BLP2 DXT payload. The variant follows the alpha
// fields: alpha type 7 is DXT5, otherwise more than one alpha bit is DXT3
// and anything else DXT1.
func decodeDXTC(raw []byte, width, height int, alphaBits uint32, alphaType uint8) ([]byte, error) {
	bw, bh := (width+3)/4, (height+3)/4
	blockSize := 16
	decode := dxt.DecodeDXT3
	switch {
	case alphaType == AlphaTypeDXT5:
		decode = dxt.DecodeDXT5
	case alphaBits <= 1:
		decode = dxt.DecodeDXT1
		blockSize = 8
	}
	need := bw * bh * blockSize
	if len(raw) < need {
		return nil, fmt.Errorf("%w: dxt mip needs %d bytes, have %d", ErrTruncated, need, len(raw))
	}
	pw, ph := bw*4, bh*4
	full, err := decode(raw[:need], uint(pw), uint(ph))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrThirdPartyCodec, err)
	}
	if len(full) != pw*ph*4 {
		return nil, fmt.Errorf("%w: dxt decoder returned %d bytes for %dx%d", ErrSizeMismatch, len(full), pw, ph)
	}
	out := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		copy(out[y*width*4:(y+1)*width*4], full[y*pw*4:])
	}
	if alphaBits == 0 {
		for i := 3; i < len(out); i += 4 {
			out[i] = 255
		}
	}
	return out, nil
}

// decodeBGRA converts a BLP2 uncompressed payload.
func decodeBGRA(raw []byte, width, height int, alphaBits uint32) ([]byte, error) {
	n := width * height
	if len(raw) < n*4 {
		return nil, fmt.Errorf("%w: bgra mip needs %d bytes, have %d", ErrTruncated, n*4, len(raw))
	}
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		out[4*i], out[4*i+1], out[4*i+2], out[4*i+3] = raw[4*i+2], raw[4*i+1], raw[4*i], raw[4*i+3]
		if alphaBits == 0 {
			out[4*i+3] = 255
		}
	}
	return out, nil
}
