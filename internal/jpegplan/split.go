package jpegplan

// Split locates the entropy-coded scan of a JPEG. headLen is the offset just
// past the SOS segment and scanLen runs up to the first marker that is not a
// stuffed 0xFF00 or an RSTn, usually EOI. Without such a marker the scan runs
// to the end of data.
func Split(data []byte) (headLen, scanLen int, err error) {
	headLen, err = walk(data, func(segment) error { return nil })
	if err != nil {
		return 0, 0, err
	}
	i := headLen
	for i+1 < len(data) {
		if data[i] != 0xFF {
			i++
			continue
		}
		next := data[i+1]
		switch {
		case next == 0x00 || isRST(next):
			i += 2
		case next == 0xFF:
			i++
		default:
			return headLen, i - headLen, nil
		}
	}
	return headLen, len(data) - headLen, nil
}

// Scan returns the entropy-coded bytes of a JPEG stream.
func Scan(data []byte) ([]byte, error) {
	h, n, err := Split(data)
	if err != nil {
		return nil, err
	}
	return data[h : h+n], nil
}
