package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 3320, c.PageHeight())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "canvasfx.yaml")
	src := `
fps: 30
theme: neural-circuit
unknown_key: ignored
sections:
  - name: hero
    height: 400
    effects:
      - kind: particles
        options:
          count: 120
          size: [1, 4]
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, c.FPS)
	assert.Equal(t, "neural-circuit", c.Theme)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 1280, c.Viewport.Width)
	require.Len(t, c.Sections, 1)

	var opts struct {
		Count int `yaml:"count"`
	}
	require.NoError(t, c.Sections[0].Effects[0].Options.Decode(&opts))
	assert.Equal(t, 120, opts.Count)
}

func TestValidateRejects(t *testing.T) {
	c := Default()
	c.FPS = 0
	c.LogLevel = "loud"
	c.Viewport.DPR = 0
	c.Sections = append(c.Sections, Section{Name: "hero", Height: -1, Effects: []Effect{{}}})
	err := c.Validate()
	require.Error(t, err)
	for _, want := range []string{"fps", "log_level", "dpr", "defined twice", "height", "no kind"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	c := Default()
	c.Theme = "blockchain-horizons"
	require.NoError(t, Save(path, c))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "blockchain-horizons", got.Theme)
	assert.Len(t, got.Sections, len(c.Sections))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateBoxesAndTypewriter(t *testing.T) {
	c := Default()
	require.NotNil(t, c.Sections[0].Typewriter)
	assert.Equal(t, 30.0, c.Sections[0].Typewriter.ConsonantMS)

	c.Sections[5].Effects[0].Box = &Box{Y: 150, Width: 100, Height: 100}
	c.Sections[0].Typewriter.VowelMS = -1
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leaves the section")
	assert.Contains(t, err.Error(), "typewriter")
}
