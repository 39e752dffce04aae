package dds

import (
	"fmt"
	"image"
	"io"

	"github.com/woozymasta/bcn"
)

// Encode writes m encoded as DDS into w, followed by a mip chain generated
// from m. maxMips limits the chain; zero keeps every level down to 1x1.
func Encode(w io.Writer, m image.Image, codec Codec, maxMips int) error {
	b := m.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ErrEmptyImage
	}
	format, err := codec.format()
	if err != nil {
		return err
	}

	mips := bcn.GenerateMipmaps(m, false)
	if maxMips > 0 && len(mips) > maxMips {
		mips = mips[:maxMips]
	}
	payloads := make([][]byte, len(mips))
	for i, mip := range mips {
		data, _, _, err := bcn.EncodeImageWithOptions(mip, format, nil)
		if err != nil {
			return fmt.Errorf("dds: mipmap %d: %w", i, err)
		}
		payloads[i] = data
	}

	header, err := makeHeader(uint32(b.Dx()), uint32(b.Dy()), uint32(len(payloads)), format)
	if err != nil {
		return err
	}
	if err := bcn.WriteDDSMagic(w); err != nil {
		return fmt.Errorf("dds: write magic: %w", err)
	}
	if err := bcn.WriteDDSHeader(w, header); err != nil {
		return fmt.Errorf("dds: write header: %w", err)
	}
	// Standard DDS stores the largest surface first.
	for i, p := range payloads {
		if _, err := w.Write(p); err != nil {
			return fmt.Errorf("dds: mipmap %d: %w", i, err)
		}
	}
	return nil
}
