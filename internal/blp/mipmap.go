package blp

import (
	"fmt"
	"image"
	"math"

	"github.com/erinpentecost/blptool/internal/jpegcodec"
	"golang.org/x/image/draw"
)

// maxPow2 is the largest edge PickPow2Cover will choose.
const maxPow2 = 8192

// MipDimension returns the edge length of a mip level: base halved level
// times, never below 1. A non-positive base stays 0.
func MipDimension(base, level int) int {
	if base <= 0 {
		return 0
	}
	if level >= 31 {
		return 1
	}
	return max(1, base>>level)
}

type pow2Candidate struct {
	w, h       int
	scale      float64
	aspectDiff float64
}

const scaleEpsilon = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < scaleEpsilon }

// better orders candidates: any covering scale (>= 1) beats a non-covering
// one, then the smallest covering scale wins, then the closest aspect ratio,
// then the smallest area. Without any covering candidate the largest scale
// wins.
func (c pow2Candidate) better(o pow2Candidate) bool {
	cCovers, oCovers := c.scale >= 1-scaleEpsilon, o.scale >= 1-scaleEpsilon
	if cCovers != oCovers {
		return cCovers
	}
	if !near(c.scale, o.scale) {
		if cCovers {
			return c.scale < o.scale
		}
		return c.scale > o.scale
	}
	if !near(c.aspectDiff, o.aspectDiff) {
		return c.aspectDiff < o.aspectDiff
	}
	return c.w*c.h < o.w*o.h
}

// PickPow2Cover picks the power-of-two frame, up to 8192 on each side, that
// a w by h image can cover with the least upscaling. (100, 50) yields
// (128, 64).
func PickPow2Cover(w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	aspect := float64(w) / float64(h)
	var best pow2Candidate
	found := false
	for cw := 1; cw <= maxPow2; cw <<= 1 {
		for ch := 1; ch <= maxPow2; ch <<= 1 {
			c := pow2Candidate{
				w:          cw,
				h:          ch,
				scale:      max(float64(cw)/float64(w), float64(ch)/float64(h)),
				aspectDiff: math.Abs(float64(cw)/float64(ch) - aspect),
			}
			if !found || c.better(best) {
				best, found = c, true
			}
		}
	}
	return best.w, best.h
}

// coverCrop scales src uniformly until it covers a w by h frame and keeps the
// centered w by h window.
func coverCrop(src image.Image, w, h int) *image.NRGBA {
	b := src.Bounds()
	s := max(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	cw, ch := float64(w)/s, float64(h)/s
	x0 := float64(b.Min.X) + (float64(b.Dx())-cw)/2
	y0 := float64(b.Min.Y) + (float64(b.Dy())-ch)/2
	sr := image.Rect(
		int(math.Round(x0)), int(math.Round(y0)),
		int(math.Round(x0+cw)), int(math.Round(y0+ch)),
	).Intersect(b)
	if sr.Empty() {
		sr = b
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, sr, draw.Src, nil)
	return dst
}

// halve resamples src into a w by h image with the given kernel.
func halve(src *image.NRGBA, w, h int, k draw.Interpolator) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	k.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// FromRaster builds a BLP1 JPEG image from an arbitrary raster. The source
// is cover-scaled and center-cropped onto the frame chosen by PickPow2Cover,
// then halved with a bilinear filter down to 1x1.
func FromRaster(src image.Image, opts *DecodeOptions) (*Image, error) {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: source is %dx%d", ErrEmptyBaseDimension, b.Dx(), b.Dy())
	}
	w, h := PickPow2Cover(b.Dx(), b.Dy())
	base := coverCrop(src, w, h)

	img := &Image{
		Header: Header{
			Version:     BLP1,
			TextureType: JPEG,
			Compression: uint8(JPEG),
			Width:       uint32(w),
			Height:      uint32(h),
			Extra:       blp1Extra,
		},
		logf: opts.logf(),
	}
	if jpegcodec.HasAlpha(base.Pix) {
		img.AlphaBits = 8
	}
	if w != b.Dx() || h != b.Dy() {
		img.warnf("resized %dx%d to %dx%d", b.Dx(), b.Dy(), w, h)
	}
	img.Mips[0] = Mip{Width: w, Height: h, Pix: base.Pix}
	img.fillChain(0, draw.BiLinear)
	if img.MipCount() > 1 {
		img.HasMips = 1
	}
	return img, nil
}

// RebuildMips regenerates every slot after base from the base pixels using a
// Catmull-Rom filter. Slots past the 1x1 level are cleared.
func (img *Image) RebuildMips(base int) error {
	if base < 0 || base >= MaxMips || !img.Mips[base].Decoded() {
		return fmt.Errorf("%w: slot %d", ErrMipAbsent, base)
	}
	img.fillChain(base, draw.CatmullRom)
	return nil
}

func (img *Image) fillChain(base int, k draw.Interpolator) {
	w, h := img.Mips[base].Width, img.Mips[base].Height
	prev := img.Mips[base].Image()
	for i := base + 1; i < MaxMips; i++ {
		j := i - base
		m := &img.Mips[i]
		if prev == nil || (prev.Rect.Dx() == 1 && prev.Rect.Dy() == 1) {
			*m = Mip{Width: MipDimension(w, j), Height: MipDimension(h, j)}
			prev = nil
			continue
		}
		next := halve(prev, MipDimension(w, j), MipDimension(h, j), k)
		*m = Mip{Width: next.Rect.Dx(), Height: next.Rect.Dy(), Pix: next.Pix}
		prev = next
	}
}
