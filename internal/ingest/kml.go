package ingest

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlBoundary struct {
	Ring kmlCoords `xml:"LinearRing"`
}

type kmlPolygon struct {
	Outer kmlBoundary   `xml:"outerBoundaryIs"`
	Inner []kmlBoundary `xml:"innerBoundaryIs"`
}

type kmlGeometry struct {
	Points   []kmlCoords   `xml:"Point"`
	Lines    []kmlCoords   `xml:"LineString"`
	Polygons []kmlPolygon  `xml:"Polygon"`
	Multi    []kmlGeometry `xml:"MultiGeometry"`
}

type kmlPlacemark struct {
	Name string `xml:"name"`
	kmlGeometry
}

// ReadKML reads the Point, LineString and Polygon geometries of every
// Placemark, nested folders and MultiGeometry included. Altitudes are
// dropped.
func ReadKML(r io.Reader) (*Features, error) {
	f := &Features{}
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("kml: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}
		var pm kmlPlacemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return nil, fmt.Errorf("kml placemark: %w", err)
		}
		f.addKML(strings.TrimSpace(pm.Name), &pm.kmlGeometry)
	}
	if f.Len() == 0 {
		return nil, fmt.Errorf("kml: %w", ErrNoFeatures)
	}
	return f, nil
}

func (f *Features) addKML(name string, g *kmlGeometry) {
	for _, p := range g.Points {
		for _, c := range kmlTuples(p.Coordinates) {
			f.addPoint(c[0], c[1], name, 0)
		}
	}
	for _, l := range g.Lines {
		f.addLine(name, kmlTuples(l.Coordinates))
	}
	for _, poly := range g.Polygons {
		rs := [][][2]float64{kmlTuples(poly.Outer.Ring.Coordinates)}
		for _, in := range poly.Inner {
			rs = append(rs, kmlTuples(in.Ring.Coordinates))
		}
		f.addPolygon(name, rs)
	}
	for i := range g.Multi {
		f.addKML(name, &g.Multi[i])
	}
}

// kmlTuples parses whitespace separated "lon,lat[,alt]" tuples.
func kmlTuples(s string) [][2]float64 {
	var out [][2]float64
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(vals[0], 64)
		lat, err2 := strconv.ParseFloat(vals[1], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, [2]float64{lon, lat})
	}
	return out
}
