package ingest

import (
	"encoding/json"
	"fmt"
	"io"
)

type geoJSON struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
	Geometries  []geoJSON       `json:"geometries"`
	Geometry    *geoJSON        `json:"geometry"`
	Properties  map[string]any  `json:"properties"`
	Features    []geoJSON       `json:"features"`
}

// ReadGeoJSON reads a FeatureCollection, a Feature or a bare geometry.
// Feature properties "name" and "value" feed the point attributes and
// the names of lines and rings.
func ReadGeoJSON(r io.Reader) (*Features, error) {
	var doc geoJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("geojson: %w", err)
	}
	f := &Features{}
	if err := f.walkGeoJSON(&doc, "", 0); err != nil {
		return nil, err
	}
	if f.Len() == 0 {
		return nil, fmt.Errorf("geojson: %w", ErrNoFeatures)
	}
	return f, nil
}

func (f *Features) walkGeoJSON(g *geoJSON, name string, value float64) error {
	switch g.Type {
	case "FeatureCollection":
		for i := range g.Features {
			if err := f.walkGeoJSON(&g.Features[i], "", 0); err != nil {
				return err
			}
		}
		return nil
	case "Feature":
		if g.Geometry == nil {
			return nil
		}
		n, v := featureAttrs(g.Properties)
		return f.walkGeoJSON(g.Geometry, n, v)
	case "GeometryCollection":
		for i := range g.Geometries {
			if err := f.walkGeoJSON(&g.Geometries[i], name, value); err != nil {
				return err
			}
		}
		return nil
	}
	if len(g.Coordinates) == 0 || string(g.Coordinates) == "null" {
		return nil
	}
	switch g.Type {
	case "Point":
		var c []float64
		if err := decodeCoords(g, &c); err != nil {
			return err
		}
		if len(c) >= 2 {
			f.addPoint(c[0], c[1], name, value)
		}
	case "MultiPoint":
		var cs [][]float64
		if err := decodeCoords(g, &cs); err != nil {
			return err
		}
		for _, c := range lonLats(cs) {
			f.addPoint(c[0], c[1], name, value)
		}
	case "LineString":
		var cs [][]float64
		if err := decodeCoords(g, &cs); err != nil {
			return err
		}
		f.addLine(name, lonLats(cs))
	case "MultiLineString":
		var ls [][][]float64
		if err := decodeCoords(g, &ls); err != nil {
			return err
		}
		for _, cs := range ls {
			f.addLine(name, lonLats(cs))
		}
	case "Polygon":
		var rs [][][]float64
		if err := decodeCoords(g, &rs); err != nil {
			return err
		}
		f.addPolygon(name, rings(rs))
	case "MultiPolygon":
		var ps [][][][]float64
		if err := decodeCoords(g, &ps); err != nil {
			return err
		}
		for _, rs := range ps {
			f.addPolygon(name, rings(rs))
		}
	default:
		return fmt.Errorf("geojson type %q: %w", g.Type, ErrUnsupported)
	}
	return nil
}

func decodeCoords(g *geoJSON, dst any) error {
	if err := json.Unmarshal(g.Coordinates, dst); err != nil {
		return fmt.Errorf("geojson %s coordinates: %w", g.Type, err)
	}
	return nil
}

func lonLats(cs [][]float64) [][2]float64 {
	out := make([][2]float64, 0, len(cs))
	for _, c := range cs {
		if len(c) >= 2 {
			out = append(out, [2]float64{c[0], c[1]})
		}
	}
	return out
}

func rings(rs [][][]float64) [][][2]float64 {
	out := make([][][2]float64, len(rs))
	for i, r := range rs {
		out[i] = lonLats(r)
	}
	return out
}

func featureAttrs(props map[string]any) (string, float64) {
	var name string
	var value float64
	switch v := props["name"].(type) {
	case string:
		name = v
	case float64:
		name = fmt.Sprintf("%g", v)
	}
	if v, ok := props["value"].(float64); ok {
		value = v
	}
	return name, value
}
