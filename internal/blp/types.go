package blp

import "fmt"

// MaxMips is the number of mip slots in every BLP header.
const MaxMips = 16

// Version identifies the container revision by its magic.
type Version int

const (
	BLP0 Version = iota
	BLP1
	BLP2
)

var magics = [...]string{BLP0: "BLP0", BLP1: "BLP1", BLP2: "BLP2"}

func (v Version) String() string {
	if v >= 0 && int(v) < len(magics) {
		return magics[v]
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

// TextureType is the storage family of the mip payloads.
type TextureType uint32

const (
	// JPEG mips are baseline JPEG scans, usually sharing one header.
	JPEG TextureType = 0
	// Direct mips are uncompressed (palette, DXTC or BGRA depending on version).
	Direct TextureType = 1
)

func (t TextureType) String() string {
	switch t {
	case JPEG:
		return "JPEG"
	case Direct:
		return "DIRECT"
	}
	return fmt.Sprintf("TextureType(%d)", uint32(t))
}

// BLP2 color encodings, stored in the compression byte.
const (
	EncodingJPEG    uint8 = 0
	EncodingPalette uint8 = 1
	EncodingDXTC    uint8 = 2
	EncodingBGRA    uint8 = 3
)

// BLP2 alpha types that select the DXT variant.
const (
	AlphaTypeDXT1 uint8 = 0
	AlphaTypeDXT3 uint8 = 1
	AlphaTypeDXT5 uint8 = 7
)
