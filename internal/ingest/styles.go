package ingest

import (
	"geostyle/internal/data"
	"geostyle/internal/style"
)

// RGBA is a color with components in 0..1.
type RGBA [4]float64

func (c RGBA) color() style.Color { return style.RGBA(c[0], c[1], c[2], c[3]) }

// Palette colors the default layers.
type Palette struct {
	Points   RGBA
	Lines    RGBA
	Polygons RGBA
	Labels   RGBA
}

var DefaultPalette = Palette{
	Points:   RGBA{1, 0.65, 0, 1},
	Lines:    RGBA{0.2, 0.75, 1, 1},
	Polygons: RGBA{0.49, 0.23, 0.93, 1},
	Labels:   RGBA{0.9, 0.9, 0.9, 1},
}

// DefaultStyles returns one symbolizer per non-empty list of n: points
// sized by value and labelled by name, lines, polygons, and a texture for
// a grid/image pair.
func DefaultStyles(n *data.Node, pal Palette) []style.Symbolizer {
	var out []style.Symbolizer
	geo := func(list string) style.Geometry {
		return style.Geometry{
			X:   style.Mapped(list+"/lon", nil),
			Y:   style.Mapped(list+"/lat", nil),
			Crs: style.CrsWGS84,
		}
	}
	size := func(l *data.BlockList) int {
		if l == nil {
			return 0
		}
		return l.Size()
	}

	if pts := n.List(ListPoints); size(pts) > 0 {
		lo, hi, named := pointStats(pts)
		sz := style.Const(1)
		if hi > lo {
			sz = style.Mapped(ListPoints+"/value", style.Interpolate{Points: []style.InterpolationPoint{
				{In: lo, Out: 1}, {In: hi, Out: 3},
			}})
		}
		out = append(out, &style.PointSymbolizer{
			Common: style.Common{Name: ListPoints, Geometry: geo(ListPoints)},
			Size:   sz,
			Shape:  "dot",
			Color:  pal.Points.color(),
		})
		if named {
			out = append(out, labels(geo(ListPoints), pal.Labels))
		}
	}
	if size(n.List(ListLines)) > 0 {
		out = append(out, &style.LineSymbolizer{
			Common:        style.Common{Name: ListLines, Geometry: geo(ListLines + "/pts")},
			Width:         style.Const(1),
			Color:         pal.Lines.color(),
			BreakPerBlock: true,
		})
	}
	if size(n.List(ListPolygons)) > 0 {
		// holes get a transparent fill
		fill := pal.Polygons.color()
		fill.Alpha = style.Mapped(ListPolygons+"/hole", style.Linear{Gain: -0.35, Offset: 0.35})
		out = append(out, &style.PolygonSymbolizer{
			Common:      style.Common{Name: ListPolygons, Geometry: geo(ListPolygons + "/pts")},
			Fill:        fill,
			Stroke:      pal.Polygons.color(),
			StrokeWidth: style.Const(1),
		})
	}
	if size(n.List(ListGrid)) > 0 && size(n.List(ListImage)) > 0 {
		out = append(out, TextureStyle())
	}
	return out
}

func labels(g style.Geometry, c RGBA) *style.TextSymbolizer {
	return &style.TextSymbolizer{
		Common:   style.Common{Name: "labels", Geometry: g},
		Label:    style.Mapped(ListPoints+"/name", nil),
		FontSize: style.Const(1),
		Color:    c.color(),
	}
}

// pointStats returns the value range of the points and whether any point
// is named.
func pointStats(l *data.BlockList) (lo, hi float64, named bool) {
	first := true
	for it := l.First(); it != nil; it = it.Next() {
		root := it.Block().Root()
		if root.Field(2).Value().Text() != "" {
			named = true
		}
		v := root.Field(3).Value().Float64()
		if first {
			lo, hi, first = v, v, false
			continue
		}
		lo, hi = min(lo, v), max(hi, v)
	}
	return lo, hi, named
}

// TextureStyle drapes the image list of SyntheticGrid over its grid list,
// mapping values to a blue-to-red ramp.
func TextureStyle() *style.TextureSymbolizer {
	v := ListImage + "/rows/row/v"
	return &style.TextureSymbolizer{
		Common: style.Common{Name: "coverage", Geometry: style.Geometry{
			X:   style.Mapped(ListGrid+"/rows/row/lon", nil),
			Y:   style.Mapped(ListGrid+"/rows/row/lat", nil),
			Crs: style.CrsWGS84,
		}},
		GridWidth:    style.ArrayDim(ListGrid + "/rows/row"),
		GridLength:   style.ArrayDim(ListGrid + "/rows"),
		RasterWidth:  style.ArrayDim(ListImage + "/rows/row"),
		RasterHeight: style.ArrayDim(ListImage + "/rows"),
		Channels: style.Channels{
			Red:   style.Mapped(v, nil),
			Green: style.Mapped(v, style.Interpolate{Points: []style.InterpolationPoint{{In: 0, Out: 0}, {In: 0.5, Out: 1}, {In: 1, Out: 0}}}),
			Blue:  style.Mapped(v, style.Linear{Gain: -1, Offset: 1}),
		},
		Opacity:          style.Const(0.8),
		NormalizedColors: true,
	}
}
