package jpegcodec

import "errors"

var (
	// ErrSizeMismatch is returned when a pixel buffer does not match its
	// declared dimensions.
	ErrSizeMismatch = errors.New("pixel data size mismatch")
	// ErrThirdPartyCodec wraps failures reported by image/jpeg.
	ErrThirdPartyCodec = errors.New("jpeg codec failure")
	// ErrInvalidDimensions is returned for frames a baseline JPEG cannot hold.
	ErrInvalidDimensions = errors.New("invalid jpeg dimensions")
)
