package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const small = `
fps: 24
theme: neural-circuit
viewport: {width: 64, height: 48, dpr: 1}
sections:
  - name: hero
    height: 48
    effects:
      - kind: particles
        options: {count: 12}
`

func writeConfig(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "page.yaml")
	require.NoError(t, os.WriteFile(p, []byte(small), 0644))
	return p
}

func TestFlagsWinOnlyWhenSet(t *testing.T) {
	var g globals
	root := newRoot(&g)
	cmd, _, err := root.Find([]string{"render"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--config", writeConfig(t), "--fps", "30", "--log-level", "warn"}))

	cfg, err := g.load(cmd)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "neural-circuit", cfg.Theme)
	assert.False(t, cfg.ReducedMotion)
	assert.Equal(t, 64, cfg.Viewport.Width)
}

func TestBadFlagsFailValidation(t *testing.T) {
	var g globals
	root := newRoot(&g)
	cmd, _, err := root.Find([]string{"render"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--fps", "0"}))
	_, err = g.load(cmd)
	assert.ErrorContains(t, err, "fps")
}

func TestRenderWritesFrames(t *testing.T) {
	out := t.TempDir()
	root := newRoot(&globals{})
	root.SetArgs([]string{"render", "--config", writeConfig(t), "-n", "3", "-o", out, "--log-level", "error"})
	require.NoError(t, root.Execute())

	files, err := filepath.Glob(filepath.Join(out, "frame-*.png"))
	require.NoError(t, err)
	assert.Len(t, files, 3)
}
