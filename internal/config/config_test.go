package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bahimpro2011-code/vixc/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "x86_64", cfg.Target)
	assert.Equal(t, "clang", cfg.CC)
	assert.Equal(t, 100, cfg.MaxErrors)
}

func TestLoadFillsDefaultsForMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vixc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target: arm64\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "arm64", cfg.Target)
	assert.Equal(t, "clang", cfg.CC)
	assert.Equal(t, 100, cfg.MaxErrors)
}

func TestLoadRespectsExplicitOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vixc.yaml")
	content := "target: x86\ncc: zig cc\nmax_errors: 5\nextra_libs: [\"m\", \"pthread\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "x86", cfg.Target)
	assert.Equal(t, "zig cc", cfg.CC)
	assert.Equal(t, 5, cfg.MaxErrors)
	assert.Equal(t, []string{"m", "pthread"}, cfg.ExtraLibs)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
