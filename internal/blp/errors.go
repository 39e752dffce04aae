package blp

import (
	"errors"

	"github.com/erinpentecost/blptool/internal/jpegcodec"
	"github.com/erinpentecost/blptool/internal/jpegplan"
)

var (
	// ErrMalformedHeader is returned when the fixed header cannot be read.
	ErrMalformedHeader = errors.New("malformed blp header")
	// ErrInvalidMagic is returned when the buffer does not start with BLP0, BLP1 or BLP2.
	ErrInvalidMagic = errors.New("invalid blp magic")
	// ErrTruncated is returned when the buffer ends before a required field.
	ErrTruncated = errors.New("truncated data")
	// ErrUnsupportedAlphaDepth is returned for alpha depths other than 0, 1, 4 and 8.
	ErrUnsupportedAlphaDepth = errors.New("unsupported alpha depth")
	// ErrUnsupportedCompression is returned for storage modes this package cannot decode.
	ErrUnsupportedCompression = errors.New("unsupported compression")
	// ErrRegionOutOfBounds is returned when a mip or the shared header lies
	// outside the buffer. The affected mip is treated as absent.
	ErrRegionOutOfBounds = errors.New("region out of bounds")
	// ErrMipAbsent is returned when decoding a mip slot that has no data.
	ErrMipAbsent = errors.New("mip level absent")
	// ErrNoVisibleMips is returned by Encode when no present mip is visible.
	ErrNoVisibleMips = errors.New("no visible mip levels")
	// ErrEmptyBaseDimension is returned when the base image has a zero dimension.
	ErrEmptyBaseDimension = errors.New("empty base dimension")

	// ErrSizeMismatch is returned when decoded pixels or a mip's dimensions do
	// not match the size its slot implies.
	ErrSizeMismatch = jpegcodec.ErrSizeMismatch
	// ErrThirdPartyCodec wraps a failure reported by the JPEG or DXT decoder.
	ErrThirdPartyCodec = jpegcodec.ErrThirdPartyCodec

	// ErrJPEGMalformed is returned for a mip whose JPEG stream lacks SOF0 or
	// SOS or has a truncated segment.
	ErrJPEGMalformed = jpegplan.ErrMalformed
	// ErrJPEGUnsupportedProfile is returned for progressive, arithmetic or
	// 16-bit quantized JPEG mips.
	ErrJPEGUnsupportedProfile = jpegplan.ErrUnsupportedProfile
	// ErrJPEGUnexpectedMarker is returned when a JPEG mip carries a marker
	// that may not precede SOS.
	ErrJPEGUnexpectedMarker = jpegplan.ErrUnexpectedMarker
)
