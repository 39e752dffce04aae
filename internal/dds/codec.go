package dds

import (
	"fmt"
	"strings"

	"github.com/woozymasta/bcn"
)

type Codec int

const (
	// DXT1 doesn't support alpha.
	DXT1 Codec = iota
	// DXT5 supports alpha.
	DXT5
	// Lossless is uncompressed BGRA.
	Lossless
)

func (c Codec) String() string {
	switch c {
	case DXT1:
		return "dxt1"
	case DXT5:
		return "dxt5"
	case Lossless:
		return "lossless"
	}
	return fmt.Sprintf("codec(%d)", int(c))
}

// ParseCodec accepts the names printed by Codec.String.
func ParseCodec(s string) (Codec, error) {
	for _, c := range []Codec{DXT1, DXT5, Lossless} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, s)
}

func (c Codec) format() (bcn.Format, error) {
	switch c {
	case DXT1:
		return bcn.FormatDXT1, nil
	case DXT5:
		return bcn.FormatDXT5, nil
	case Lossless:
		return bcn.FormatBGRA8, nil
	}
	return bcn.FormatUnknown, fmt.Errorf("%w: %v", ErrUnknownCodec, c)
}
