package style

import (
	"fmt"

	"geostyle/internal/extent"
)

func checkSymbolizer[T Symbolizer](sym Symbolizer) (T, error) {
	s, ok := sym.(T)
	var zero T
	if !ok || sym == nil || any(s) == any(zero) {
		return zero, fmt.Errorf("%w: %T", ErrSymbolizerKind, sym)
	}
	return s, nil
}

// PointStyler yields one point per tuple.
type PointStyler struct {
	styler
	symbolizer *PointSymbolizer
	raw        extent.Vector3
	point      PointGraphic
}

func NewPointStyler(sym *PointSymbolizer) *PointStyler {
	s := &PointStyler{}
	s.init(KindPoint, s.updateDataMappings)
	if sym != nil {
		s.SetSymbolizer(sym)
	}
	return s
}

func (s *PointStyler) SetSymbolizer(sym Symbolizer) error {
	p, err := checkSymbolizer[*PointSymbolizer](sym)
	if err != nil {
		return err
	}
	s.symbolizer = p
	s.setSymbolizer(p)
	return nil
}

func (s *PointStyler) updateDataMappings() error {
	sym := s.symbolizer
	s.raw = extent.Vector3{}
	s.point = PointGraphic{Size: 1, Shape: sym.Shape}
	if err := s.bindGeometry("", sym.Geometry, &s.raw); err != nil {
		return err
	}
	if err := bindNumber(&s.styler, "", sym.Size, &s.point.Size); err != nil {
		return err
	}
	return s.bindColor("", sym.Color, &s.point.PrimitiveGraphic)
}

// NextPoint returns the next point, or nil at the end of the pass.
// The record is reused by the following call.
func (s *PointStyler) NextPoint() (*PointGraphic, error) {
	ok, err := s.nextTuple()
	if !ok {
		return nil, err
	}
	s.place(&s.point.PrimitiveGraphic, s.raw)
	return &s.point, nil
}

func (s *PointStyler) ComputeBoundingBox() error {
	return s.fold(func() (*PrimitiveGraphic, error) {
		p, err := s.NextPoint()
		if p == nil {
			return nil, err
		}
		return &p.PrimitiveGraphic, nil
	})
}

// LineStyler yields the vertices of polylines.
type LineStyler struct {
	styler
	symbolizer *LineSymbolizer
	raw        extent.Vector3
	point      LinePointGraphic
}

func NewLineStyler(sym *LineSymbolizer) *LineStyler {
	s := &LineStyler{}
	s.init(KindLine, s.updateDataMappings)
	if sym != nil {
		s.SetSymbolizer(sym)
	}
	return s
}

func (s *LineStyler) SetSymbolizer(sym Symbolizer) error {
	l, err := checkSymbolizer[*LineSymbolizer](sym)
	if err != nil {
		return err
	}
	s.symbolizer = l
	s.setSymbolizer(l)
	return nil
}

func (s *LineStyler) updateDataMappings() error {
	sym := s.symbolizer
	s.raw = extent.Vector3{}
	s.point = LinePointGraphic{Width: 1}
	if err := s.bindGeometry("", sym.Geometry, &s.raw); err != nil {
		return err
	}
	if err := bindNumber(&s.styler, "", sym.Width, &s.point.Width); err != nil {
		return err
	}
	return s.bindColor("", sym.Color, &s.point.PrimitiveGraphic)
}

// NextPoint returns the next vertex. Break is set on the first vertex of
// the pass and, with BreakPerBlock, on the first vertex of every block.
func (s *LineStyler) NextPoint() (*LinePointGraphic, error) {
	ok, err := s.nextTuple()
	if !ok {
		return nil, err
	}
	s.point.Break = s.count == 1 || (s.symbolizer.BreakPerBlock && s.firstInBlock)
	s.place(&s.point.PrimitiveGraphic, s.raw)
	return &s.point, nil
}

func (s *LineStyler) ComputeBoundingBox() error {
	return s.fold(func() (*PrimitiveGraphic, error) {
		p, err := s.NextPoint()
		if p == nil {
			return nil, err
		}
		return &p.PrimitiveGraphic, nil
	})
}

// LabelStyler yields text labels.
type LabelStyler struct {
	styler
	symbolizer *TextSymbolizer
	raw        extent.Vector3
	label      LabelGraphic
}

func NewLabelStyler(sym *TextSymbolizer) *LabelStyler {
	s := &LabelStyler{}
	s.init(KindLabel, s.updateDataMappings)
	if sym != nil {
		s.SetSymbolizer(sym)
	}
	return s
}

func (s *LabelStyler) SetSymbolizer(sym Symbolizer) error {
	t, err := checkSymbolizer[*TextSymbolizer](sym)
	if err != nil {
		return err
	}
	s.symbolizer = t
	s.setSymbolizer(t)
	return nil
}

func (s *LabelStyler) updateDataMappings() error {
	sym := s.symbolizer
	s.raw = extent.Vector3{}
	s.label = LabelGraphic{Size: 12}
	if err := s.bindGeometry("", sym.Geometry, &s.raw); err != nil {
		return err
	}
	if err := s.bindText("", sym.Label, &s.label.Text); err != nil {
		return err
	}
	if err := bindNumber(&s.styler, "", sym.FontSize, &s.label.Size); err != nil {
		return err
	}
	if err := bindNumber(&s.styler, "", sym.Orientation, &s.label.Orientation); err != nil {
		return err
	}
	return s.bindColor("", sym.Color, &s.label.PrimitiveGraphic)
}

// NextLabel returns the next label, or nil at the end of the pass.
func (s *LabelStyler) NextLabel() (*LabelGraphic, error) {
	ok, err := s.nextTuple()
	if !ok {
		return nil, err
	}
	s.place(&s.label.PrimitiveGraphic, s.raw)
	return &s.label, nil
}

func (s *LabelStyler) ComputeBoundingBox() error {
	return s.fold(func() (*PrimitiveGraphic, error) {
		l, err := s.NextLabel()
		if l == nil {
			return nil, err
		}
		return &l.PrimitiveGraphic, nil
	})
}

// PolygonStyler yields one polygon per block.
type PolygonStyler struct {
	styler
	symbolizer *PolygonSymbolizer
	raw        extent.Vector3
	point      PolygonPointGraphic
}

func NewPolygonStyler(sym *PolygonSymbolizer) *PolygonStyler {
	s := &PolygonStyler{}
	s.init(KindPolygon, s.updateDataMappings)
	if sym != nil {
		s.SetSymbolizer(sym)
	}
	return s
}

func (s *PolygonStyler) SetSymbolizer(sym Symbolizer) error {
	p, err := checkSymbolizer[*PolygonSymbolizer](sym)
	if err != nil {
		return err
	}
	s.symbolizer = p
	s.setSymbolizer(p)
	return nil
}

func (s *PolygonStyler) updateDataMappings() error {
	sym := s.symbolizer
	s.raw = extent.Vector3{}
	s.point = PolygonPointGraphic{StrokeWidth: 1}
	if err := s.bindGeometry("", sym.Geometry, &s.raw); err != nil {
		return err
	}
	if err := s.bindColor("", sym.Fill, &s.point.PrimitiveGraphic); err != nil {
		return err
	}
	stroke := []struct {
		p   *ScalarParameter
		dst *float32
	}{
		{sym.Stroke.Red, &s.point.Stroke[0]},
		{sym.Stroke.Green, &s.point.Stroke[1]},
		{sym.Stroke.Blue, &s.point.Stroke[2]},
		{sym.Stroke.Alpha, &s.point.Stroke[3]},
		{sym.StrokeWidth, &s.point.StrokeWidth},
	}
	s.point.Stroke[3] = 1
	for _, c := range stroke {
		if err := bindNumber(&s.styler, "", c.p, c.dst); err != nil {
			return err
		}
	}
	return nil
}

// NextPolygon moves to the next polygon. It reports false at the end of the pass.
func (s *PolygonStyler) NextPolygon() (bool, error) {
	return s.NextBlock()
}

// NextPoint returns the next vertex of the current polygon, nil after its
// last vertex.
func (s *PolygonStyler) NextPoint() (*PolygonPointGraphic, error) {
	ok, err := s.advance()
	if !ok {
		return nil, err
	}
	s.point.PolygonBreak = s.firstInBlock
	s.place(&s.point.PrimitiveGraphic, s.raw)
	return &s.point, nil
}

func (s *PolygonStyler) ComputeBoundingBox() error {
	return s.fold(func() (*PrimitiveGraphic, error) {
		for {
			p, err := s.NextPoint()
			if err != nil {
				return nil, err
			}
			if p != nil {
				return &p.PrimitiveGraphic, nil
			}
			ok, err := s.NextPolygon()
			if !ok {
				return nil, err
			}
		}
	})
}
