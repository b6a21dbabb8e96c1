package style

import (
	"geostyle/internal/extent"
	"geostyle/internal/index"
	"geostyle/internal/logging"
)

const (
	roleGrid    = "grid"
	roleTexture = "texture"
)

// TextureStyler drapes images over grids. Grid geometry and image data come
// from two lists, which may be the same list; tiles pair their blocks in
// order. When the grid length is the list length, the whole list forms one
// patch per pass.
type TextureStyler struct {
	styler
	symbolizer *TextureSymbolizer
	raw        extent.Vector3
	patch      TexturePatchGraphic
	pixel      RasterPixelGraphic
	point      GridPointGraphic
	gridCoords [4]int
	texCoords  [4]int
	open       bool
	handed     bool
}

func NewTextureStyler(sym *TextureSymbolizer) *TextureStyler {
	s := &TextureStyler{}
	s.init(KindTexture, s.updateDataMappings)
	s.onReset = func() {
		s.open = false
		s.handed = false
	}
	if sym != nil {
		s.SetSymbolizer(sym)
	}
	return s
}

func (s *TextureStyler) SetSymbolizer(sym Symbolizer) error {
	t, err := checkSymbolizer[*TextureSymbolizer](sym)
	if err != nil {
		return err
	}
	s.symbolizer = t
	s.setSymbolizer(t)
	return nil
}

func (s *TextureStyler) updateDataMappings() error {
	sym := s.symbolizer
	// keep the previous grid length so the next patch can tell if it grew
	length := s.patch.Grid.Length
	s.patch = TexturePatchGraphic{}
	s.patch.Grid.Depth, s.patch.Texture.Depth = 1, 1
	s.patch.Grid.Length = length
	s.pixel = RasterPixelGraphic{}
	s.point = GridPointGraphic{NormalizedTexCoords: true}
	s.raw = extent.Vector3{}

	if err := s.bindDimension(roleGrid, sym.GridWidth, 0, &s.patch.Grid.Width); err != nil {
		return err
	}
	if sym.GridLength == nil || sym.GridLength.Source != FromListLength {
		s.patch.Grid.Length = 0
	}
	if err := s.bindDimension(roleGrid, sym.GridLength, 1, &s.patch.Grid.Length); err != nil {
		return err
	}
	if err := s.bindGeometry(roleGrid, sym.Geometry, &s.raw); err != nil {
		return err
	}
	if err := s.bindDimension(roleTexture, sym.RasterWidth, 2, &s.patch.Texture.Width); err != nil {
		return err
	}
	if err := s.bindDimension(roleTexture, sym.RasterHeight, 3, &s.patch.Texture.Height); err != nil {
		return err
	}
	return s.bindChannels(roleTexture, sym.Channels, sym.Opacity, sym.NormalizedColors, &s.pixel, &s.patch.Texture)
}

// NextTile returns the next patch, or nil once either list is exhausted.
func (s *TextureStyler) NextTile() (*TexturePatchGraphic, error) {
	if err := s.prepare(); err != nil {
		return nil, err
	}
	s.open = false
	grid, tex := s.first(roleGrid), s.first(roleTexture)
	if grid == nil || tex == nil {
		return nil, nil
	}

	if grid.indexOffset >= 0 {
		gridSize := grid.list.Size()
		if s.handed || gridSize == 0 || tex.list.Size() == 0 {
			return nil, nil
		}
		s.handed = true
		s.patch.Updated = gridSize != s.patch.Grid.Length
		if err := grid.setBlock(grid.list.First()); err != nil {
			return nil, err
		}
		if err := tex.setBlock(tex.list.First()); err != nil {
			return nil, err
		}
		listLength(grid, &s.patch.Grid.Width, &s.patch.Grid.Length)
		listLength(tex, nil, nil, &s.patch.Texture.Width, &s.patch.Texture.Height)
		if s.patch.Updated {
			logging.Logger().Debug("texture patch resized", "name", s.symbolizer.Name, "length", gridSize)
		}
	} else {
		if !grid.iter.HasNext() || !tex.iter.HasNext() {
			return nil, nil
		}
		if err := grid.setBlock(grid.iter.Next()); err != nil {
			return nil, err
		}
		if err := tex.setBlock(tex.iter.Next()); err != nil {
			return nil, err
		}
		listLength(tex, nil, nil, &s.patch.Texture.Width, &s.patch.Texture.Height)
		s.patch.Updated = false
	}
	s.patch.Grid.Block = grid.current.Block()
	s.patch.Texture.Block = tex.current.Block()
	s.patch.Texture.WidthPadding, s.patch.Texture.HeightPadding = 0, 0
	s.open = true
	return &s.patch, nil
}

// Pixel returns the image pixel at column x, row y of the current tile, with
// components in 0..255.
func (s *TextureStyler) Pixel(x, y int) (*RasterPixelGraphic, error) {
	tex := s.first(roleTexture)
	if !s.open || tex == nil {
		return nil, index.ErrNoData
	}
	s.texCoords[2], s.texCoords[3] = x, y
	if err := tex.getData(s.texCoords[:]); err != nil {
		return nil, err
	}
	return &s.pixel, nil
}

// GridPoint returns the projected grid vertex at column u, row v of the
// current tile, with texture coordinates in 0..1.
func (s *TextureStyler) GridPoint(u, v int) (*GridPointGraphic, error) {
	grid := s.first(roleGrid)
	if !s.open || grid == nil {
		return nil, index.ErrNoData
	}
	s.gridCoords[0], s.gridCoords[1] = u, v
	if err := grid.getData(s.gridCoords[:]); err != nil {
		return nil, err
	}
	s.place(&s.point.PrimitiveGraphic, s.raw)
	s.point.TX = texCoord(u, s.patch.Grid.Width)
	s.point.TY = texCoord(v, s.patch.Grid.Length)
	s.point.GridBreak = u == 0
	return &s.point, nil
}

// ComputeBoundingBox walks every grid block of the grid list.
func (s *TextureStyler) ComputeBoundingBox() error {
	if err := s.prepare(); err != nil {
		return err
	}
	grid := s.first(roleGrid)
	if grid == nil {
		s.bbox = extent.New()
		return nil
	}
	s.ResetIterators()
	defer s.ResetIterators()
	box := extent.New()
	box.Crs = s.projection.Crs(s.crs())
	var p PrimitiveGraphic
	seeded := false
	for it := grid.list.First(); it != nil; it = it.Next() {
		if err := grid.indexer.SetData(it.Block()); err != nil {
			return err
		}
		for grid.indexer.HasNext() {
			if _, err := grid.indexer.Next(); err != nil {
				return err
			}
			s.place(&p, s.raw)
			v := extent.Vector3{X: p.X, Y: p.Y, Z: p.Z}
			if !seeded {
				box.Seed(v)
				seeded = true
				continue
			}
			box.Extend(v)
		}
	}
	s.bbox = box
	return nil
}
