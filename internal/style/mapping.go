package style

import (
	"math"
	"sort"
	"strconv"

	"geostyle/internal/data"
)

// MappingFunction transforms a scalar before it is written to a primitive.
// A nil MappingFunction is the identity.
type MappingFunction interface {
	Compute(x float64) float64
}

func apply(fn MappingFunction, x float64) float64 {
	if fn == nil {
		return x
	}
	return fn.Compute(x)
}

// Linear is Gain*x + Offset.
type Linear struct {
	Gain   float64
	Offset float64
}

func (l Linear) Compute(x float64) float64 { return l.Gain*x + l.Offset }

// InterpolationPoint is one sample of an Interpolate table.
type InterpolationPoint struct {
	In  float64
	Out float64
}

// Interpolate maps x piecewise linearly through Points, which must be sorted
// by In. Inputs outside the table are clamped to the end values.
type Interpolate struct {
	Points []InterpolationPoint
}

func (f Interpolate) Compute(x float64) float64 {
	pts := f.Points
	switch {
	case len(pts) == 0:
		return x
	case x <= pts[0].In:
		return pts[0].Out
	case x >= pts[len(pts)-1].In:
		return pts[len(pts)-1].Out
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].In >= x })
	a, b := pts[i-1], pts[i]
	if b.In == a.In {
		return b.Out
	}
	t := (x - a.In) / (b.In - a.In)
	return a.Out + t*(b.Out-a.Out)
}

// Categorize returns Values[i] where i is the number of Thresholds <= x.
// Values must hold one more entry than Thresholds.
type Categorize struct {
	Thresholds []float64
	Values     []float64
}

func (f Categorize) Compute(x float64) float64 {
	if len(f.Values) == 0 {
		return x
	}
	i := sort.Search(len(f.Thresholds), func(i int) bool { return f.Thresholds[i] > x })
	if i >= len(f.Values) {
		i = len(f.Values) - 1
	}
	return f.Values[i]
}

// scaled multiplies the result of fn by factor.
type scaled struct {
	fn     MappingFunction
	factor float64
}

func (s scaled) Compute(x float64) float64 { return apply(s.fn, x) * s.factor }

// number is the set of primitive field types a NumberMapper can write.
type number interface {
	~float64 | ~float32 | ~int
}

// NumberMapper writes a mapped scalar into one numeric primitive field.
type NumberMapper[T number] struct {
	Target  *T
	Mapping MappingFunction
}

func (m *NumberMapper[T]) MapData(v data.Value) {
	*m.Target = T(apply(m.Mapping, v.Float64()))
}

// TextMapper writes a scalar as text. With a Mapping, the value is parsed as
// a number, mapped and formatted back.
type TextMapper struct {
	Target  *string
	Mapping MappingFunction
}

func (m *TextMapper) MapData(v data.Value) {
	if m.Mapping == nil {
		*m.Target = v.Text()
		return
	}
	x := apply(m.Mapping, v.Float64())
	if math.IsNaN(x) {
		*m.Target = v.Text()
		return
	}
	*m.Target = strconv.FormatFloat(x, 'g', -1, 64)
}

// DimensionMapper sets an integer primitive dimension, either from a bound
// scalar or from the length of a bound array.
type DimensionMapper struct {
	Target  *int
	Mapping MappingFunction
}

func (m *DimensionMapper) MapData(v data.Value) {
	*m.Target = int(apply(m.Mapping, v.Float64()))
}

func (m *DimensionMapper) SetDimensionSize(n int) {
	*m.Target = n
}
