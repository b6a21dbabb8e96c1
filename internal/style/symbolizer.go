package style

import (
	"strings"

	"geostyle/internal/data"
)

// ScalarParameter is one style parameter: either a constant or a block
// field, given as "list/path/in/block", passed through an optional mapping.
type ScalarParameter struct {
	Property string
	Constant data.Value
	Mapping  MappingFunction
}

// Const is a constant numeric parameter.
func Const(v float64) *ScalarParameter {
	return &ScalarParameter{Constant: data.Float(v)}
}

func ConstText(s string) *ScalarParameter {
	return &ScalarParameter{Constant: data.String(s)}
}

// Mapped binds a parameter to the field at path.
func Mapped(path string, fn MappingFunction) *ScalarParameter {
	return &ScalarParameter{Property: path, Mapping: fn}
}

func (p *ScalarParameter) IsConstant() bool { return p.Property == "" }

// Float returns the mapped constant value.
func (p *ScalarParameter) Float() float64 {
	return apply(p.Mapping, p.Constant.Float64())
}

// Geometry locates a primitive. Nil coordinates stay at zero.
type Geometry struct {
	X, Y, Z *ScalarParameter
	Crs     string
}

// Color holds components in the 0..1 range.
type Color struct {
	Red, Green, Blue, Alpha *ScalarParameter
}

// RGBA is a constant Color.
func RGBA(r, g, b, a float64) Color {
	return Color{Red: Const(r), Green: Const(g), Blue: Const(b), Alpha: Const(a)}
}

// Channels selects the raster bands. Gray is only used when none of
// Red, Green and Blue is set.
type Channels struct {
	Red, Green, Blue, Gray, Alpha *ScalarParameter
}

// DimensionSource tells where the size of a grid or raster axis comes from.
type DimensionSource int

const (
	// FromArrayLength uses the run-time length of the array at Path.
	FromArrayLength DimensionSource = iota
	// FromListLength makes every block of the list one slice along the axis;
	// the axis size is the list size. Path is the list name.
	FromListLength
	// FromField reads the size from the scalar at SizeField; the array at
	// Path is still the one addressed along the axis.
	FromField
)

func (s DimensionSource) String() string {
	switch s {
	case FromArrayLength:
		return "array-length"
	case FromListLength:
		return "list-length"
	case FromField:
		return "field"
	}
	return "unknown"
}

// Dimension binds one axis of a grid or raster.
type Dimension struct {
	Path      string
	Source    DimensionSource
	SizeField string
}

// ArrayDim is a Dimension sized by the array at path.
func ArrayDim(path string) *Dimension {
	return &Dimension{Path: path, Source: FromArrayLength}
}

// ListDim is a Dimension made of the blocks of list.
func ListDim(list string) *Dimension {
	return &Dimension{Path: list, Source: FromListLength}
}

// Symbolizer is a style descriptor. The set of implementations is closed.
// Symbolizers are compared by pointer identity: a texture cache keeps one
// table per symbolizer value.
type Symbolizer interface {
	Base() *Common
	kind() Kind
}

// Common holds what every symbolizer has.
type Common struct {
	Name     string
	Geometry Geometry
}

func (c *Common) Base() *Common { return c }

type PointSymbolizer struct {
	Common
	Size  *ScalarParameter
	Shape string
	Color Color
}

type LineSymbolizer struct {
	Common
	Width *ScalarParameter
	Color Color
	// BreakPerBlock starts a new line at the first point of every block.
	BreakPerBlock bool
}

type TextSymbolizer struct {
	Common
	Label       *ScalarParameter
	FontSize    *ScalarParameter
	Orientation *ScalarParameter
	Color       Color
}

type GridSymbolizer struct {
	Common
	Width  *Dimension
	Length *Dimension
	Color  Color
}

type RasterSymbolizer struct {
	Common
	Width    *Dimension
	Height   *Dimension
	Channels Channels
	Opacity  *ScalarParameter
	// NormalizedColors marks channel data in 0..1, rescaled to 0..255 on read.
	NormalizedColors bool
}

type TextureSymbolizer struct {
	Common
	GridWidth        *Dimension
	GridLength       *Dimension
	RasterWidth      *Dimension
	RasterHeight     *Dimension
	Channels         Channels
	Opacity          *ScalarParameter
	NormalizedColors bool
}

type PolygonSymbolizer struct {
	Common
	Fill        Color
	Stroke      Color
	StrokeWidth *ScalarParameter
}

func (*PointSymbolizer) kind() Kind   { return KindPoint }
func (*LineSymbolizer) kind() Kind    { return KindLine }
func (*TextSymbolizer) kind() Kind    { return KindLabel }
func (*GridSymbolizer) kind() Kind    { return KindGrid }
func (*RasterSymbolizer) kind() Kind  { return KindRaster }
func (*TextureSymbolizer) kind() Kind { return KindTexture }
func (*PolygonSymbolizer) kind() Kind { return KindPolygon }

// KindOf returns the styler kind a symbolizer is drawn with.
func KindOf(sym Symbolizer) Kind { return sym.kind() }

// splitPath separates the list name from the path inside the block.
func splitPath(p string) (list, rest string) {
	p = strings.Trim(p, "/")
	list, rest, _ = strings.Cut(p, "/")
	return list, rest
}
