package main

import (
	"fmt"
	"os"

	"github.com/erinpentecost/blptool/internal/blp"
	"github.com/erinpentecost/blptool/internal/dds"
	"github.com/erinpentecost/blptool/internal/jpegcodec"
	"github.com/erinpentecost/blptool/internal/raster"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds the settings a YAML file may provide. Flags given on the
// command line win over the file.
type Config struct {
	Quality     int    `yaml:"quality"`
	Hide        []int  `yaml:"hide"`
	Format      string `yaml:"format"`
	Codec       string `yaml:"codec"`
	Workers     int    `yaml:"workers"`
	RebuildMips bool   `yaml:"rebuild_mips"`
}

func defaultConfig() Config {
	return Config{
		Quality: jpegcodec.DefaultQuality,
		Format:  string(raster.PNG),
		Codec:   dds.Lossless.String(),
		Workers: 4,
	}
}

// loadConfig reads path over the defaults. Keys missing from the file keep
// their default value. The result is validated by resolve once flags apply.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("quality %d is outside 1-100", c.Quality)
	}
	for _, i := range c.Hide {
		if i < 0 || i >= blp.MaxMips {
			return fmt.Errorf("hidden mip %d is outside 0-%d", i, blp.MaxMips-1)
		}
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if _, err := c.format(); err != nil {
		return err
	}
	_, err := dds.ParseCodec(c.Codec)
	return err
}

func (c Config) format() (raster.Format, error) {
	return raster.FormatFromPath("." + c.Format)
}

// visible turns the hide list into the mask Encode expects.
func (c Config) visible() []bool {
	mask := make([]bool, blp.MaxMips)
	for i := range mask {
		mask[i] = true
	}
	for _, i := range c.Hide {
		mask[i] = false
	}
	return mask
}

// settings binds the shared flags of a subcommand.
type settings struct {
	configPath string
	flags      Config
}

func (s *settings) registerCommon(fl *pflag.FlagSet) {
	def := defaultConfig()
	fl.StringVar(&s.configPath, "config", "", "YAML file with default settings")
	fl.IntVarP(&s.flags.Quality, "quality", "q", def.Quality, "JPEG quality (1-100)")
}

func (s *settings) registerDecode(fl *pflag.FlagSet) {
	def := defaultConfig()
	fl.StringVarP(&s.flags.Format, "format", "f", def.Format, "export format: png, bmp, tiff, jpg or dds")
	fl.StringVar(&s.flags.Codec, "codec", def.Codec, "DDS codec: lossless, dxt1 or dxt5")
}

func (s *settings) registerEncode(fl *pflag.FlagSet) {
	fl.IntSliceVar(&s.flags.Hide, "hide", nil, "mip slots to leave out of the output")
	fl.BoolVar(&s.flags.RebuildMips, "rebuild-mips", false, "regenerate mips from the base level before writing")
}

func (s *settings) registerBatch(fl *pflag.FlagSet) {
	fl.IntVarP(&s.flags.Workers, "workers", "j", defaultConfig().Workers, "files converted in parallel")
}

// resolve starts from the defaults, or the config file when one is given, and
// applies only the flags that were set explicitly. A subcommand that does not
// register a flag keeps the default for it.
func (s *settings) resolve(fl *pflag.FlagSet) (Config, error) {
	cfg := defaultConfig()
	if s.configPath != "" {
		var err error
		if cfg, err = loadConfig(s.configPath); err != nil {
			return cfg, err
		}
	}
	if fl.Changed("quality") {
		cfg.Quality = s.flags.Quality
	}
	if fl.Changed("format") {
		cfg.Format = s.flags.Format
	}
	if fl.Changed("codec") {
		cfg.Codec = s.flags.Codec
	}
	if fl.Changed("hide") {
		cfg.Hide = s.flags.Hide
	}
	if fl.Changed("rebuild-mips") {
		cfg.RebuildMips = s.flags.RebuildMips
	}
	if fl.Changed("workers") {
		cfg.Workers = s.flags.Workers
	}
	return cfg, cfg.validate()
}
