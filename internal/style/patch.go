package style

import (
	"geostyle/internal/extent"
	"geostyle/internal/index"
)

// openPatch loads the block of the next patch. When li is indexed by list
// position the whole list is a single patch, handed out once per pass.
func (s *styler) openPatch(li *listInfo, handed *bool) (bool, error) {
	if li.indexOffset >= 0 {
		if *handed || li.list.Size() == 0 {
			return false, nil
		}
		*handed = true
		if err := li.setBlock(li.list.First()); err != nil {
			return false, err
		}
		return true, nil
	}
	ok, err := s.nextBlock()
	if !ok {
		return false, err
	}
	// one step so array lengths reach the dimension mappers
	for _, l := range s.lists {
		if _, err := l.indexer.Next(); err != nil {
			return false, err
		}
	}
	return true, nil
}

// listLength stores the list size into the dimension indexed by li.
func listLength(li *listInfo, dims ...*int) {
	if li.indexOffset >= 0 && li.indexOffset < len(dims) && dims[li.indexOffset] != nil {
		*dims[li.indexOffset] = li.list.Size()
	}
}

func texCoord(i, n int) float32 {
	if n <= 1 {
		return 0
	}
	return float32(i) / float32(n-1)
}

// GridStyler yields grid patches whose points are addressed by (u, v).
type GridStyler struct {
	styler
	symbolizer *GridSymbolizer
	raw        extent.Vector3
	patch      GridPatchGraphic
	point      GridPointGraphic
	coords     [2]int
	cursor     int
	open       bool
	handed     bool
}

func NewGridStyler(sym *GridSymbolizer) *GridStyler {
	s := &GridStyler{}
	s.init(KindGrid, s.updateDataMappings)
	s.onReset = func() {
		s.open = false
		s.handed = false
	}
	if sym != nil {
		s.SetSymbolizer(sym)
	}
	return s
}

func (s *GridStyler) SetSymbolizer(sym Symbolizer) error {
	g, err := checkSymbolizer[*GridSymbolizer](sym)
	if err != nil {
		return err
	}
	s.symbolizer = g
	s.setSymbolizer(g)
	return nil
}

func (s *GridStyler) updateDataMappings() error {
	sym := s.symbolizer
	s.raw = extent.Vector3{}
	s.patch = GridPatchGraphic{Depth: 1}
	s.point = GridPointGraphic{NormalizedTexCoords: true}
	if err := s.bindDimension("", sym.Width, 0, &s.patch.Width); err != nil {
		return err
	}
	if err := s.bindDimension("", sym.Length, 1, &s.patch.Length); err != nil {
		return err
	}
	if err := s.bindGeometry("", sym.Geometry, &s.raw); err != nil {
		return err
	}
	return s.bindColor("", sym.Color, &s.point.PrimitiveGraphic)
}

// NextGrid returns the next patch, or nil at the end of the pass.
func (s *GridStyler) NextGrid() (*GridPatchGraphic, error) {
	if err := s.prepare(); err != nil {
		return nil, err
	}
	s.open = false
	li := s.first("")
	if li == nil {
		return nil, nil
	}
	ok, err := s.openPatch(li, &s.handed)
	if !ok {
		return nil, err
	}
	listLength(li, &s.patch.Width, &s.patch.Length)
	s.patch.Block = li.current.Block()
	s.cursor = 0
	s.open = true
	return &s.patch, nil
}

// GridPoint returns the point at column u, row v of the current patch.
func (s *GridStyler) GridPoint(u, v int) (*GridPointGraphic, error) {
	if !s.open {
		return nil, index.ErrNoData
	}
	s.coords = [2]int{u, v}
	for _, li := range s.lists {
		if err := li.getData(s.coords[:]); err != nil {
			return nil, err
		}
	}
	s.place(&s.point.PrimitiveGraphic, s.raw)
	s.point.TX = texCoord(u, s.patch.Width)
	s.point.TY = texCoord(v, s.patch.Length)
	s.point.GridBreak = u == 0
	return &s.point, nil
}

// NextPoint walks the current patch row by row. GridBreak marks row starts.
func (s *GridStyler) NextPoint() (*GridPointGraphic, error) {
	if !s.open || s.patch.Width <= 0 || s.cursor >= s.patch.Width*s.patch.Length {
		return nil, nil
	}
	u, v := s.cursor%s.patch.Width, s.cursor/s.patch.Width
	s.cursor++
	return s.GridPoint(u, v)
}

func (s *GridStyler) ComputeBoundingBox() error {
	return s.fold(func() (*PrimitiveGraphic, error) {
		for {
			p, err := s.NextPoint()
			if err != nil {
				return nil, err
			}
			if p != nil {
				return &p.PrimitiveGraphic, nil
			}
			g, err := s.NextGrid()
			if g == nil {
				return nil, err
			}
		}
	})
}

// RasterStyler yields image tiles whose pixels are addressed by (x, y).
type RasterStyler struct {
	styler
	symbolizer *RasterSymbolizer
	tile       RasterTileGraphic
	pixel      RasterPixelGraphic
	coords     [4]int
	open       bool
	handed     bool
}

func NewRasterStyler(sym *RasterSymbolizer) *RasterStyler {
	s := &RasterStyler{}
	s.init(KindRaster, s.updateDataMappings)
	s.onReset = func() {
		s.open = false
		s.handed = false
	}
	if sym != nil {
		s.SetSymbolizer(sym)
	}
	return s
}

func (s *RasterStyler) SetSymbolizer(sym Symbolizer) error {
	r, err := checkSymbolizer[*RasterSymbolizer](sym)
	if err != nil {
		return err
	}
	s.symbolizer = r
	s.setSymbolizer(r)
	return nil
}

func (s *RasterStyler) updateDataMappings() error {
	sym := s.symbolizer
	s.tile = RasterTileGraphic{Depth: 1}
	s.pixel = RasterPixelGraphic{}
	if err := s.bindDimension("", sym.Width, 2, &s.tile.Width); err != nil {
		return err
	}
	if err := s.bindDimension("", sym.Height, 3, &s.tile.Height); err != nil {
		return err
	}
	return s.bindChannels("", sym.Channels, sym.Opacity, sym.NormalizedColors, &s.pixel, &s.tile)
}

// NextRaster returns the next tile, or nil at the end of the pass.
func (s *RasterStyler) NextRaster() (*RasterTileGraphic, error) {
	if err := s.prepare(); err != nil {
		return nil, err
	}
	s.open = false
	li := s.first("")
	if li == nil {
		return nil, nil
	}
	ok, err := s.openPatch(li, &s.handed)
	if !ok {
		return nil, err
	}
	listLength(li, nil, nil, &s.tile.Width, &s.tile.Height)
	s.tile.Block = li.current.Block()
	s.tile.WidthPadding, s.tile.HeightPadding = 0, 0
	s.open = true
	return &s.tile, nil
}

// Pixel returns the pixel at column x, row y of the current tile, with
// components in 0..255.
func (s *RasterStyler) Pixel(x, y int) (*RasterPixelGraphic, error) {
	if !s.open {
		return nil, index.ErrNoData
	}
	s.coords[2], s.coords[3] = x, y
	for _, li := range s.lists {
		if err := li.getData(s.coords[:]); err != nil {
			return nil, err
		}
	}
	return &s.pixel, nil
}

// ComputeBoundingBox spans the pixel space of the largest tile.
func (s *RasterStyler) ComputeBoundingBox() error {
	if err := s.prepare(); err != nil {
		return err
	}
	s.ResetIterators()
	defer s.ResetIterators()
	box := extent.New()
	for {
		t, err := s.NextRaster()
		if err != nil {
			return err
		}
		if t == nil {
			break
		}
		if err := box.Add(extent.Bounds("", 0, 0, 0, float64(t.Width), float64(t.Height), 0)); err != nil {
			return err
		}
	}
	s.bbox = box
	return nil
}
