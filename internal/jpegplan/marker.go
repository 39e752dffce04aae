package jpegplan

// JPEG marker codes, the byte following 0xFF.
const (
	markerSOF0 = 0xC0 // Baseline DCT
	markerSOF1 = 0xC1 // Extended sequential DCT
	markerSOF2 = 0xC2 // Progressive DCT
	markerSOF3 = 0xC3 // Lossless
	markerDHT  = 0xC4
	markerJPG  = 0xC8
	markerSOF9 = 0xC9 // Arithmetic sequential
	markerDAC  = 0xCC
	markerSOFF = 0xCF
	markerRST0 = 0xD0
	markerRST7 = 0xD7
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerDQT  = 0xDB
	markerDRI  = 0xDD
	markerAPP0 = 0xE0
	markerAPPF = 0xEF
	markerCOM  = 0xFE
)

// isSOF reports whether m is any start-of-frame marker.
// DHT, JPG and DAC share the 0xC0-0xCF range but are not frames.
func isSOF(m byte) bool {
	return m >= markerSOF0 && m <= markerSOFF &&
		m != markerDHT && m != markerJPG && m != markerDAC
}

func isRST(m byte) bool { return m >= markerRST0 && m <= markerRST7 }

func isAPP(m byte) bool { return m >= markerAPP0 && m <= markerAPPF }
