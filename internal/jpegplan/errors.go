package jpegplan

import "errors"

var (
	// ErrMalformed indicates a structurally broken stream: missing SOI/SOF0/SOS
	// or a segment that runs past the end of the data.
	ErrMalformed = errors.New("jpeg: malformed stream")
	// ErrUnsupportedProfile indicates a valid JPEG outside the baseline profile
	// (progressive, arithmetic, 16-bit quantization, non-8-bit precision).
	ErrUnsupportedProfile = errors.New("jpeg: unsupported profile")
	// ErrUnexpectedMarker indicates a marker that may not appear before SOS.
	ErrUnexpectedMarker = errors.New("jpeg: unexpected marker")
)
