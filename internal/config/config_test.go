package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geostyle/internal/ingest"
	"geostyle/internal/style"
	"geostyle/internal/texture"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "stylerview.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	p, err := cfg.Palette()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p.Points[0], 1e-9)
	assert.Equal(t, 1.0, p.Labels[3])
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
projection = "ecef"
watch = true

[texture]
npot = true
padding = "resample"

[log]
level = "debug"
file = "/tmp/stylerview.log"

[colors]
lines = "#ff000080"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Watch)
	assert.True(t, cfg.Texture.NPOT)

	mode, err := cfg.PaddingMode()
	require.NoError(t, err)
	assert.Equal(t, texture.Resample, mode)

	proj, err := cfg.ProjectionValue()
	require.NoError(t, err)
	assert.IsType(t, style.ECEFProjection{}, proj)

	lvl, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
	assert.Equal(t, "/tmp/stylerview.log", cfg.Log.File)

	pal, err := cfg.Palette()
	require.NoError(t, err)
	assert.Equal(t, ingest.RGBA{1, 0, 0, 128.0 / 255}, pal.Lines)
	// untouched keys keep their defaults
	assert.Equal(t, Default().Colors.Points, cfg.Colors.Points)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, `colour = "red"`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `projection = "mercator"`))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(writeConfig(t, "[texture]\npadding = \"mirror\"\n"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(writeConfig(t, "[log]\nlevel = \"loud\"\n"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(writeConfig(t, "[colors]\npoints = \"#12\"\n"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(writeConfig(t, "watch = \"yes\"\n"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Watch = true
	cfg.Texture.Padding = "resample"
	path := filepath.Join(t.TempDir(), "out.toml")
	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#00ff00")
	require.NoError(t, err)
	assert.Equal(t, ingest.RGBA{0, 1, 0, 1}, c)
	c, err = ParseColor("336699cc")
	require.NoError(t, err)
	assert.InDelta(t, 0.2, c[0], 1e-9)
	assert.InDelta(t, 0.8, c[3], 1e-9)
	_, err = ParseColor("#gg0000")
	assert.ErrorIs(t, err, ErrInvalid)
}
