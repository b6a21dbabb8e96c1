package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"geostyle/internal/logging"
)

// Extensions lists the file extensions Load understands.
var Extensions = []string{".csv", ".geojson", ".json", ".kml", ".wkt"}

// Supported reports whether Load can read path.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func loadWith(path string, read func(io.Reader) (*Features, error)) (*Features, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	f, err := read(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f, nil
}

func LoadCSV(path string) (*Features, error) { return loadWith(path, ReadCSV) }

func LoadGeoJSON(path string) (*Features, error) { return loadWith(path, ReadGeoJSON) }

func LoadKML(path string) (*Features, error) { return loadWith(path, ReadKML) }

func LoadWKT(path string) (*Features, error) {
	return loadWith(path, func(r io.Reader) (*Features, error) {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return ParseWKT(string(b))
	})
}

// Load reads path according to its extension.
func Load(path string) (*Features, error) {
	var (
		f   *Features
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, err = LoadCSV(path)
	case ".geojson", ".json":
		f, err = LoadGeoJSON(path)
	case ".kml":
		f, err = LoadKML(path)
	case ".wkt":
		f, err = LoadWKT(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	if err != nil {
		return nil, err
	}
	logging.Logger().Info("features loaded", "path", path,
		"points", len(f.Points), "lines", len(f.Lines), "rings", len(f.Rings))
	return f, nil
}
