package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.BatchSize)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.EqualValues(t, 0, cfg.Limit)
	assert.Equal(t, "data/patterns_en.yaml", cfg.Patterns)
	assert.Equal(t, "kb.tsv", cfg.Output)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yml := "batch_size: 10\nlimit: 500\noutput: out.tsv\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wikikb.yaml"), []byte(yml), 0644))
	t.Setenv("WIKIKB_OUTPUT", "env.tsv")
	t.Setenv("WIKIKB_WORKERS", "3")

	cfg, err := load(dir)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.EqualValues(t, 500, cfg.Limit)
	assert.Equal(t, "env.tsv", cfg.Output)
	assert.Equal(t, 3, cfg.Workers)
}

func TestBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wikikb.yaml"), []byte("limit: [\n"), 0644))
	_, err := load(dir)
	assert.Error(t, err)
}
