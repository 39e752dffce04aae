package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/erinpentecost/blptool/internal/blp"
	"github.com/erinpentecost/blptool/internal/dds"
	"github.com/erinpentecost/blptool/internal/raster"
)

type logFunc func(format string, args ...any)

// allMips selects every decoded slot in decodeFile.
const allMips = -1

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func describe(path string, logf logFunc) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", path, err)
	}
	img, err := blp.Parse(raw, &blp.DecodeOptions{Name: path})
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", path, err)
	}
	decoded := img.DecodeMips()
	for _, w := range img.Warnings {
		logf("%s: %s", path, w)
	}
	return fmt.Sprintf("%s: %d of %d mips decoded\n%s", path, decoded, img.MipCount(), img), nil
}

// decodeFile exports mip (or every mip, for allMips) of path into outDir and
// returns the files it wrote.
func decodeFile(path, outDir string, mip int, cfg Config, logf logFunc) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	img, err := blp.FromBytes(raw, &blp.DecodeOptions{Name: path, Logf: prefixed(path, logf)})
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}
	format, err := cfg.format()
	if err != nil {
		return nil, err
	}
	codec, err := dds.ParseCodec(cfg.Codec)
	if err != nil {
		return nil, err
	}

	var slots []int
	switch {
	case mip == allMips:
		for i := range img.Mips {
			if img.Mips[i].Decoded() {
				slots = append(slots, i)
			}
		}
	case mip < 0 || mip >= blp.MaxMips:
		return nil, fmt.Errorf("mip %d is outside 0-%d", mip, blp.MaxMips-1)
	case !img.Mips[mip].Decoded():
		return nil, fmt.Errorf("mip %d of %q: %w", mip, path, blp.ErrMipAbsent)
	default:
		slots = []int{mip}
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("decode %q: %w", path, blp.ErrNoVisibleMips)
	}

	var written []string
	for _, i := range slots {
		name := stem(path)
		if len(slots) > 1 || i != 0 {
			name = fmt.Sprintf("%s_mip%d", name, i)
		}
		out := filepath.Join(outDir, name+"."+string(format))
		var buf bytes.Buffer
		opts := &raster.ExportOptions{Quality: cfg.Quality, Codec: codec}
		if err := raster.Export(&buf, img.Mips[i].Image(), format, opts); err != nil {
			return written, fmt.Errorf("export %q: %w", out, err)
		}
		if err := os.WriteFile(out, buf.Bytes(), 0666); err != nil {
			return written, fmt.Errorf("write %q: %w", out, err)
		}
		written = append(written, out)
	}
	return written, nil
}

// encodeFile converts a BLP or raster image at path into a BLP1 file at out.
func encodeFile(path, out string, cfg Config, logf logFunc) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	img, err := blp.FromBytes(raw, &blp.DecodeOptions{Name: path, Logf: prefixed(path, logf)})
	if err != nil {
		return fmt.Errorf("decode %q: %w", path, err)
	}
	if cfg.RebuildMips {
		for i := range img.Mips {
			if img.Mips[i].Decoded() {
				if err := img.RebuildMips(i); err != nil {
					return fmt.Errorf("rebuild mips of %q: %w", path, err)
				}
				break
			}
		}
	}
	data, err := blp.Encode(img, &blp.EncodeOptions{
		Quality: cfg.Quality,
		Visible: cfg.visible(),
		Logf:    prefixed(out, logf),
	})
	if err != nil {
		return fmt.Errorf("encode %q: %w", path, err)
	}
	if err := os.WriteFile(out, data, 0666); err != nil {
		return fmt.Errorf("write %q: %w", out, err)
	}
	return nil
}

func prefixed(name string, logf logFunc) logFunc {
	if logf == nil {
		return nil
	}
	return func(format string, args ...any) {
		logf("%s: %s", name, fmt.Sprintf(format, args...))
	}
}

type convertJob struct {
	Mode   string
	Path   string
	OutDir string
	Config Config
}

func (j *convertJob) Run(ctx context.Context, logf logFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch j.Mode {
	case "decode":
		written, err := decodeFile(j.Path, j.OutDir, 0, j.Config, logf)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s.\n", strings.Join(written, ", "))
	case "encode":
		out := filepath.Join(j.OutDir, stem(j.Path)+".blp")
		if err := encodeFile(j.Path, out, j.Config, logf); err != nil {
			return err
		}
		fmt.Printf("Wrote %s.\n", out)
	default:
		return fmt.Errorf("unknown batch mode %q", j.Mode)
	}
	return nil
}
