package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batchFlags(t *testing.T, args ...string) (*settings, *pflag.FlagSet) {
	t.Helper()
	s := &settings{}
	fl := pflag.NewFlagSet("batch", pflag.ContinueOnError)
	s.registerCommon(fl)
	s.registerDecode(fl)
	s.registerEncode(fl)
	s.registerBatch(fl)
	require.NoError(t, fl.Parse(args))
	return s, fl
}

func TestResolveDefaults(t *testing.T) {
	s, fl := batchFlags(t)
	cfg, err := s.resolve(fl)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	for _, v := range cfg.visible() {
		assert.True(t, v)
	}
}

func TestResolveFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blptool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quality: 70\nformat: tiff\nhide: [1, 3]\nworkers: 2\nrebuild_mips: true\n"), 0666))

	s, fl := batchFlags(t, "--config", path, "-q", "55", "--workers=8")
	cfg, err := s.resolve(fl)
	require.NoError(t, err)
	assert.Equal(t, 55, cfg.Quality)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "tiff", cfg.Format)
	assert.Equal(t, "lossless", cfg.Codec)
	assert.True(t, cfg.RebuildMips)
	assert.Equal(t, []int{1, 3}, cfg.Hide)

	mask := cfg.visible()
	assert.True(t, mask[0])
	assert.False(t, mask[1])
	assert.False(t, mask[3])
}

func TestResolveRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"quality", []string{"--quality", "0"}},
		{"hide", []string{"--hide", "16"}},
		{"format", []string{"--format", "gif"}},
		{"codec", []string{"--codec", "bc7"}},
		{"workers", []string{"--workers", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, fl := batchFlags(t, tt.args...)
			_, err := s.resolve(fl)
			require.Error(t, err)
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := loadConfig(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quality: [\n"), 0666))
	_, err = loadConfig(path)
	require.Error(t, err)
}

func TestResolveWithoutConfigKeepsUnregisteredDefaults(t *testing.T) {
	enc := &encodeCmd{}
	fl := pflag.NewFlagSet("encode", pflag.ContinueOnError)
	enc.RegisterFlags(fl)
	require.NoError(t, fl.Parse([]string{"in.png", "-o", "out.blp", "-q", "70"}))
	cfg, err := enc.resolve(fl)
	require.NoError(t, err)
	assert.Equal(t, 70, cfg.Quality)
	assert.Equal(t, defaultConfig().Workers, cfg.Workers)
	assert.Equal(t, defaultConfig().Format, cfg.Format)
	assert.Equal(t, defaultConfig().Codec, cfg.Codec)

	dec := &decodeCmd{}
	fl = pflag.NewFlagSet("decode", pflag.ContinueOnError)
	dec.RegisterFlags(fl)
	require.NoError(t, fl.Parse([]string{"in.blp", "-f", "bmp"}))
	cfg, err = dec.resolve(fl)
	require.NoError(t, err)
	assert.Equal(t, "bmp", cfg.Format)
	assert.Equal(t, defaultConfig().Workers, cfg.Workers)
	assert.Equal(t, defaultConfig().Quality, cfg.Quality)
	assert.Empty(t, cfg.Hide)
}

func TestResolveFlagsRepairFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blptool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("quality: 0\n"), 0666))

	s, fl := batchFlags(t, "--config", path)
	_, err := s.resolve(fl)
	require.Error(t, err)

	s, fl = batchFlags(t, "--config", path, "-q", "80")
	cfg, err := s.resolve(fl)
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Quality)
}
