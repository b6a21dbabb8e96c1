// Package ingest reads vector files into data nodes that stylers can draw.
//
// Every loader produces a Features collection; Node turns it into three
// block lists:
//
//	points    one block per point     {lon, lat, name, value}
//	lines     one block per line      {name, pts[]{lon, lat}}
//	polygons  one block per ring      {name, hole, pts[]{lon, lat}}
package ingest

import (
	"errors"
	"math"

	"geostyle/internal/data"
	"geostyle/internal/extent"
	"geostyle/internal/style"
)

const (
	ListPoints   = "points"
	ListLines    = "lines"
	ListPolygons = "polygons"
)

var (
	ErrNoFeatures  = errors.New("ingest: no features found")
	ErrUnsupported = errors.New("ingest: unsupported format")
)

var pointStruct = data.DataRecord("lonlat", data.Quantity("lon"), data.Quantity("lat"))

var (
	PointStructure = data.DataRecord("point",
		data.Quantity("lon"),
		data.Quantity("lat"),
		data.Text("name"),
		data.Quantity("value"),
	)
	LineStructure = data.DataRecord("line",
		data.Text("name"),
		data.DataArray("pts", pointStruct),
	)
	RingStructure = data.DataRecord("ring",
		data.Text("name"),
		data.Boolean("hole"),
		data.DataArray("pts", pointStruct),
	)
)

type Point struct {
	Lon, Lat float64
	Name     string
	Value    float64
}

type Line struct {
	Name string
	Pts  [][2]float64
}

// Ring is one polygon boundary. Holes follow their outer ring.
type Ring struct {
	Name string
	Hole bool
	Pts  [][2]float64
}

// Features is what a loader read.
type Features struct {
	Points []Point
	Lines  []Line
	Rings  []Ring
}

func (f *Features) Len() int { return len(f.Points) + len(f.Lines) + len(f.Rings) }

func (f *Features) addPoint(lon, lat float64, name string, value float64) {
	f.Points = append(f.Points, Point{Lon: lon, Lat: lat, Name: name, Value: value})
}

func (f *Features) addLine(name string, pts [][2]float64) {
	if len(pts) > 0 {
		f.Lines = append(f.Lines, Line{Name: name, Pts: pts})
	}
}

// addPolygon stores rings[0] as the outer boundary and the rest as holes.
func (f *Features) addPolygon(name string, rings [][][2]float64) {
	for i, r := range rings {
		if len(r) > 0 {
			f.Rings = append(f.Rings, Ring{Name: name, Hole: i > 0, Pts: r})
		}
	}
}

func (f *Features) merge(o *Features) {
	f.Points = append(f.Points, o.Points...)
	f.Lines = append(f.Lines, o.Lines...)
	f.Rings = append(f.Rings, o.Rings...)
}

// Bounds is the lon/lat envelope of every coordinate.
func (f *Features) Bounds() *extent.SpatialExtent {
	e := extent.New()
	e.Crs = style.CrsWGS84
	// seeded explicitly: a first point at the origin would read as null
	first := true
	add := func(lon, lat float64) {
		if first {
			e.MinX, e.MinY, e.MaxX, e.MaxY = lon, lat, lon, lat
			first = false
			return
		}
		e.MinX, e.MaxX = math.Min(e.MinX, lon), math.Max(e.MaxX, lon)
		e.MinY, e.MaxY = math.Min(e.MinY, lat), math.Max(e.MaxY, lat)
	}
	for _, p := range f.Points {
		add(p.Lon, p.Lat)
	}
	for _, l := range f.Lines {
		for _, p := range l.Pts {
			add(p[0], p[1])
		}
	}
	for _, r := range f.Rings {
		for _, p := range r.Pts {
			add(p[0], p[1])
		}
	}
	return e
}

func coords(pts [][2]float64) data.Datum {
	elems := make([]data.Datum, len(pts))
	for i, p := range pts {
		elems[i] = data.Record(data.Scalar(data.Float(p[0])), data.Scalar(data.Float(p[1])))
	}
	return data.Array(elems...)
}

// Node builds a data node holding the three feature lists. Lists are
// created even when empty so that stylers can bind to them.
func (f *Features) Node() *data.Node {
	n := data.NewNode()
	pts := n.CreateList(ListPoints, PointStructure)
	for _, p := range f.Points {
		pts.Append(data.NewBlock(PointStructure, data.Record(
			data.Scalar(data.Float(p.Lon)),
			data.Scalar(data.Float(p.Lat)),
			data.Scalar(data.String(p.Name)),
			data.Scalar(data.Float(p.Value)),
		)))
	}
	lines := n.CreateList(ListLines, LineStructure)
	for _, l := range f.Lines {
		lines.Append(data.NewBlock(LineStructure, data.Record(
			data.Scalar(data.String(l.Name)),
			coords(l.Pts),
		)))
	}
	rings := n.CreateList(ListPolygons, RingStructure)
	for _, r := range f.Rings {
		rings.Append(data.NewBlock(RingStructure, data.Record(
			data.Scalar(data.String(r.Name)),
			data.Scalar(data.Bool(r.Hole)),
			coords(r.Pts),
		)))
	}
	n.SetStructureReady(true)
	return n
}
