package jpegcodec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/erinpentecost/blptool/internal/jpegplan"
)

// PixelFormat is the sample layout produced by the JPEG decoder.
type PixelFormat int

const (
	// FormatCMYK32 is C,M,Y,K with C=255-B, M=255-G, Y=255-R, K=255-A.
	FormatCMYK32 PixelFormat = iota
	// FormatRGB24 is R,G,B.
	FormatRGB24
	// FormatL8 is 8-bit luminance.
	FormatL8
	// FormatL16 is big-endian 16-bit luminance.
	FormatL16
)

func (f PixelFormat) String() string {
	switch f {
	case FormatCMYK32:
		return "CMYK32"
	case FormatRGB24:
		return "RGB24"
	case FormatL8:
		return "L8"
	case FormatL16:
		return "L16"
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// BytesPerPixel returns the size of one sample group.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatCMYK32:
		return 4
	case FormatRGB24:
		return 3
	case FormatL16:
		return 2
	}
	return 1
}

// Unpack converts decoder output into tightly packed RGBA. alphaBits of zero
// forces every pixel opaque.
func Unpack(format PixelFormat, pix []byte, width, height int, alphaBits uint32) ([]byte, error) {
	n := width * height
	if width < 0 || height < 0 || len(pix) != n*format.BytesPerPixel() {
		return nil, fmt.Errorf("%w: %d bytes of %s for %dx%d", ErrSizeMismatch, len(pix), format, width, height)
	}
	out := make([]byte, n*4)
	switch format {
	case FormatCMYK32:
		for i := 0; i < n; i++ {
			c, m, y, k := pix[4*i], pix[4*i+1], pix[4*i+2], pix[4*i+3]
			out[4*i+0] = 255 - y
			out[4*i+1] = 255 - m
			out[4*i+2] = 255 - c
			if alphaBits == 0 {
				out[4*i+3] = 255
			} else {
				out[4*i+3] = 255 - k
			}
		}
	case FormatRGB24:
		for i := 0; i < n; i++ {
			copy(out[4*i:4*i+3], pix[3*i:3*i+3])
			out[4*i+3] = 255
		}
	case FormatL8:
		for i, v := range pix {
			out[4*i], out[4*i+1], out[4*i+2], out[4*i+3] = v, v, v, 255
		}
	case FormatL16:
		for i := 0; i < n; i++ {
			v := uint8((uint32(pix[2*i])<<8 | uint32(pix[2*i+1])) / 257)
			out[4*i], out[4*i+1], out[4*i+2], out[4*i+3] = v, v, v, 255
		}
	default:
		return nil, fmt.Errorf("%w: unknown pixel format %d", ErrThirdPartyCodec, int(format))
	}
	return out, nil
}

// Assemble joins a shared header and a mip payload into one stream. A
// payload that begins with SOI carries its own header and is used alone.
// EOI is appended when missing.
func Assemble(header, payload []byte) []byte {
	var out []byte
	if len(payload) >= 2 && payload[0] == 0xFF && payload[1] == markerSOI {
		out = make([]byte, 0, len(payload)+2)
	} else {
		out = make([]byte, 0, len(header)+len(payload)+2)
		out = append(out, header...)
	}
	out = append(out, payload...)
	if n := len(out); n < 2 || out[n-2] != 0xFF || out[n-1] != markerEOI {
		out = append(out, 0xFF, markerEOI)
	}
	return out
}

// withAdobe inserts an Adobe APP14 segment right after SOI.
func withAdobe(stream []byte) []byte {
	out := make([]byte, 0, len(stream)+len(adobeSegment))
	out = append(out, stream[:2]...)
	out = append(out, adobeSegment...)
	return append(out, stream[2:]...)
}

// Decode decodes one mip level and returns tightly packed RGBA.
func Decode(header, payload []byte, width, height int, alphaBits uint32) ([]byte, error) {
	stream := Assemble(header, payload)
	plan, err := jpegplan.Parse(stream)
	if err != nil {
		return nil, err
	}
	// image/jpeg refuses 4-component streams that lack APP14.
	if plan.Components() == 4 && !plan.HasAdobe() {
		stream = withAdobe(stream)
	}
	img, err := jpeg.Decode(bytes.NewReader(stream))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrThirdPartyCodec, err)
	}
	format, pix := samples(img)
	return Unpack(format, pix, width, height, alphaBits)
}

// samples flattens a decoded image into one of the PixelFormat layouts.
func samples(img image.Image) (PixelFormat, []byte) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	switch m := img.(type) {
	case *image.CMYK:
		return FormatCMYK32, tight(m.Pix, m.Stride, w*4, h)
	case *image.Gray:
		return FormatL8, tight(m.Pix, m.Stride, w, h)
	case *image.Gray16:
		return FormatL16, tight(m.Pix, m.Stride, w*2, h)
	case *image.YCbCr:
		out := make([]byte, 0, w*h*3)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := m.YCbCrAt(x, y)
				r, g, bb := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
				out = append(out, r, g, bb)
			}
		}
		return FormatRGB24, out
	}
	out := make([]byte, 0, w*h*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			out = append(out, c.R, c.G, c.B)
		}
	}
	return FormatRGB24, out
}

// tight copies rows of rowLen bytes out of a strided buffer.
func tight(pix []byte, stride, rowLen, rows int) []byte {
	if stride == rowLen {
		return pix[:rowLen*rows]
	}
	out := make([]byte, 0, rowLen*rows)
	for y := 0; y < rows; y++ {
		out = append(out, pix[y*stride:y*stride+rowLen]...)
	}
	return out
}
