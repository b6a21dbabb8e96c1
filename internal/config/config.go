// Package config reads the viewer settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"geostyle/internal/ingest"
	"geostyle/internal/style"
	"geostyle/internal/texture"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Texture    Texture `toml:"texture"`
	Projection string  `toml:"projection"`
	Log        Log     `toml:"log"`
	Colors     Colors  `toml:"colors"`
	// Watch re-reads loaded files when they change on disk.
	Watch bool `toml:"watch"`
}

type Texture struct {
	NPOT    bool   `toml:"npot"`
	Padding string `toml:"padding"`
}

type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Colors are "#rrggbb" or "#rrggbbaa".
type Colors struct {
	Points   string `toml:"points"`
	Lines    string `toml:"lines"`
	Polygons string `toml:"polygons"`
	Labels   string `toml:"labels"`
}

func Default() Config {
	return Config{
		Texture:    Texture{NPOT: false, Padding: texture.PadTransparent.String()},
		Projection: "identity",
		Log:        Log{Level: "info"},
		Colors: Colors{
			Points:   "#ffa600",
			Lines:    "#33bfff",
			Polygons: "#7c3aed",
			Labels:   "#e6e6e6",
		},
	}
}

// Load reads path over the defaults. Keys absent from the file keep their
// default value; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return cfg, fmt.Errorf("config %s: %s", path, sme.String())
		}
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Save writes cfg to path.
func Save(path string, cfg Config) error {
	b, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func (c Config) Validate() error {
	if _, err := c.PaddingMode(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := c.ProjectionValue(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	_, err := c.Palette()
	return err
}

func (c Config) PaddingMode() (texture.PaddingMode, error) {
	return texture.ParsePaddingMode(c.Texture.Padding)
}

func (c Config) ProjectionValue() (style.Projection, error) {
	switch strings.ToLower(c.Projection) {
	case "", "identity":
		return style.IdentityProjection{}, nil
	case "ecef":
		return style.ECEFProjection{}, nil
	}
	return nil, fmt.Errorf("%w: projection %q", ErrInvalid, c.Projection)
}

func (c Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	return l, nil
}

// Palette converts the layer colors.
func (c Config) Palette() (ingest.Palette, error) {
	var p ingest.Palette
	for _, x := range []struct {
		s   string
		dst *ingest.RGBA
		def ingest.RGBA
	}{
		{c.Colors.Points, &p.Points, ingest.DefaultPalette.Points},
		{c.Colors.Lines, &p.Lines, ingest.DefaultPalette.Lines},
		{c.Colors.Polygons, &p.Polygons, ingest.DefaultPalette.Polygons},
		{c.Colors.Labels, &p.Labels, ingest.DefaultPalette.Labels},
	} {
		if x.s == "" {
			*x.dst = x.def
			continue
		}
		rgba, err := ParseColor(x.s)
		if err != nil {
			return p, err
		}
		*x.dst = rgba
	}
	return p, nil
}

// ParseColor reads "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (ingest.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 && len(h) != 8 {
		return ingest.RGBA{}, fmt.Errorf("%w: color %q", ErrInvalid, s)
	}
	if len(h) == 6 {
		h += "ff"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return ingest.RGBA{}, fmt.Errorf("%w: color %q", ErrInvalid, s)
	}
	var c ingest.RGBA
	for i := range c {
		c[i] = float64(v>>(24-8*i)&0xff) / 255
	}
	return c, nil
}
