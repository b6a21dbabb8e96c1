// Package style turns data blocks into graphic primitives.
//
// A styler binds a symbolizer (the style descriptor) to a data item. On
// first use, and again whenever it is flagged updated, it rebuilds one index
// tree per bound block list from the symbolizer's parameters; it then walks
// the lists block by block, in lockstep, and hands out primitive records
// filled by the bound mappers.
//
// Stylers are not safe for concurrent use. Independent stylers may run on
// separate goroutines.
package style

import (
	"errors"
	"fmt"

	"geostyle/internal/data"
	"geostyle/internal/extent"
	"geostyle/internal/index"
	"geostyle/internal/logging"
)

var (
	ErrNotReady       = errors.New("style: data node structure not ready")
	ErrUnbound        = errors.New("style: styler has no symbolizer or data item")
	ErrUnknownList    = errors.New("style: unknown block list")
	ErrSymbolizerKind = errors.New("style: symbolizer does not match styler kind")
)

// Kind enumerates the stylers.
type Kind int

const (
	KindPoint Kind = iota
	KindLine
	KindLabel
	KindGrid
	KindRaster
	KindTexture
	KindPolygon
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindLine:
		return "line"
	case KindLabel:
		return "label"
	case KindGrid:
		return "grid"
	case KindRaster:
		return "raster"
	case KindTexture:
		return "texture"
	case KindPolygon:
		return "polygon"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// State is the binding state of a styler.
type State int

const (
	// StateUnbound: symbolizer or data item missing.
	StateUnbound State = iota
	// StateBound: both set, mappings not built yet.
	StateBound
	// StateReady: mappings built and current.
	StateReady
	// StateStale: mappings built but flagged for rebuild.
	StateStale
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateBound:
		return "bound"
	case StateReady:
		return "ready"
	case StateStale:
		return "stale"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// DataProvider gives access to the block lists of a data source.
type DataProvider interface {
	DataNode() *data.Node
}

// DataItem is what a styler draws.
type DataItem interface {
	DataProvider() DataProvider
}

// Styler is the behaviour shared by all stylers. Kind-specific primitive
// accessors live on the concrete types.
type Styler interface {
	Kind() Kind
	Symbolizer() Symbolizer
	SetSymbolizer(sym Symbolizer) error
	DataItem() DataItem
	SetDataItem(item DataItem)
	State() State
	IsUpdated() bool
	SetUpdated(updated bool)
	// RebuildMappings rebuilds index trees now.
	RebuildMappings() error
	// ResetIterators rewinds every bound list to its first block.
	ResetIterators()
	// NextBlock advances every bound list by one block. It reports false
	// as soon as one of them is exhausted.
	NextBlock() (bool, error)
	BoundingBox() *extent.SpatialExtent
	// ComputeBoundingBox walks every primitive once. It resets iterators.
	ComputeBoundingBox() error
	SetProjection(p Projection)
}

// New returns the styler drawing sym.
func New(sym Symbolizer) (Styler, error) {
	switch s := sym.(type) {
	case *PointSymbolizer:
		return NewPointStyler(s), nil
	case *LineSymbolizer:
		return NewLineStyler(s), nil
	case *TextSymbolizer:
		return NewLabelStyler(s), nil
	case *GridSymbolizer:
		return NewGridStyler(s), nil
	case *RasterSymbolizer:
		return NewRasterStyler(s), nil
	case *TextureSymbolizer:
		return NewTextureStyler(s), nil
	case *PolygonSymbolizer:
		return NewPolygonStyler(s), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrSymbolizerKind, sym)
}

// listInfo is one bound block list: its index tree and its own iterator.
type listInfo struct {
	role    string
	name    string
	list    *data.BlockList
	builder *index.Builder
	indexer *index.Indexer
	iter    *data.Iterator
	current *data.Item

	// indexOffset is the coordinate slot selecting a block of the list in
	// lookups, -1 when blocks are walked one at a time.
	indexOffset int
}

// setBlock points the indexer at it and runs the first tuple so that
// array lengths reach their dimension mappers.
func (li *listInfo) setBlock(it *data.Item) error {
	li.current = it
	if err := li.indexer.SetData(it.Block()); err != nil {
		return fmt.Errorf("list %s: %w", li.name, err)
	}
	if _, err := li.indexer.Next(); err != nil {
		return err
	}
	return nil
}

func (li *listInfo) getData(coords []int) error {
	if li.indexOffset >= 0 {
		if li.indexOffset >= len(coords) {
			return fmt.Errorf("%w: list %s uses dimension %d", index.ErrOutOfRange, li.name, li.indexOffset)
		}
		i := coords[li.indexOffset]
		it := li.list.At(i)
		if it == nil {
			return fmt.Errorf("%w: list %s has no block %d", index.ErrOutOfRange, li.name, i)
		}
		if li.indexer.Block() != it.Block() {
			if err := li.indexer.SetData(it.Block()); err != nil {
				return fmt.Errorf("list %s: %w", li.name, err)
			}
		}
	}
	return li.indexer.GetData(coords)
}

// styler holds what the concrete stylers share.
type styler struct {
	kind       Kind
	sym        Symbolizer
	item       DataItem
	node       *data.Node
	lists      []*listInfo
	bbox       *extent.SpatialExtent
	projection Projection

	updated bool
	built   bool

	blockOpen    bool
	newBlock     bool
	firstInBlock bool
	count        int

	rebuild func() error
	onReset func()
}

func (s *styler) init(kind Kind, rebuild func() error) {
	s.kind = kind
	s.rebuild = rebuild
	s.updated = true
	s.bbox = extent.New()
	s.projection = IdentityProjection{}
}

func (s *styler) Kind() Kind { return s.kind }

func (s *styler) Symbolizer() Symbolizer { return s.sym }

func (s *styler) DataItem() DataItem { return s.item }

// SetDataItem binds a new item; mappings are rebuilt on next use.
func (s *styler) SetDataItem(item DataItem) {
	s.item = item
	s.built = false
	s.updated = true
	s.lists = nil
}

func (s *styler) setSymbolizer(sym Symbolizer) {
	s.sym = sym
	s.updated = true
}

func (s *styler) State() State {
	switch {
	case s.sym == nil || s.item == nil:
		return StateUnbound
	case !s.built:
		return StateBound
	case s.updated:
		return StateStale
	}
	return StateReady
}

func (s *styler) IsUpdated() bool { return s.updated }

func (s *styler) SetUpdated(updated bool) { s.updated = updated }

func (s *styler) BoundingBox() *extent.SpatialExtent { return s.bbox }

func (s *styler) SetProjection(p Projection) {
	if p == nil {
		p = IdentityProjection{}
	}
	s.projection = p
}

func (s *styler) crs() string {
	if s.sym == nil {
		return ""
	}
	return s.sym.Base().Geometry.Crs
}

func (s *styler) RebuildMappings() error {
	if s.sym == nil || s.item == nil {
		return ErrUnbound
	}
	var node *data.Node
	if p := s.item.DataProvider(); p != nil {
		node = p.DataNode()
	}
	if node == nil || !node.IsStructureReady() {
		return ErrNotReady
	}
	s.node = node
	s.lists = nil
	if err := s.rebuild(); err != nil {
		s.lists = nil
		s.built = false
		return err
	}
	for _, li := range s.lists {
		li.indexer = li.builder.Build()
		li.iter = li.list.NewIterator()
	}
	s.built = true
	s.updated = false
	s.ResetIterators()
	logging.Logger().Debug("styler mappings rebuilt", "kind", s.kind, "name", s.sym.Base().Name, "lists", len(s.lists))
	return nil
}

// prepare rebuilds mappings when none exist or the styler is updated.
func (s *styler) prepare() error {
	if s.built && !s.updated {
		return nil
	}
	return s.RebuildMappings()
}

func (s *styler) ResetIterators() {
	for _, li := range s.lists {
		if li.iter != nil {
			li.iter.Reset()
		}
		if li.indexer != nil {
			li.indexer.Reset()
		}
		li.current = nil
	}
	s.blockOpen = false
	s.newBlock = false
	s.count = 0
	if s.onReset != nil {
		s.onReset()
	}
}

func (s *styler) NextBlock() (bool, error) {
	if err := s.prepare(); err != nil {
		return false, err
	}
	return s.nextBlock()
}

// nextBlock advances all lists in lockstep. The first exhausted list ends
// the pass; no list moves in that case.
func (s *styler) nextBlock() (bool, error) {
	s.blockOpen = false
	if len(s.lists) == 0 {
		return false, nil
	}
	for _, li := range s.lists {
		if !li.iter.HasNext() {
			return false, nil
		}
	}
	for _, li := range s.lists {
		it := li.iter.Next()
		li.current = it
		if err := li.indexer.SetData(it.Block()); err != nil {
			return false, fmt.Errorf("list %s: %w", li.name, err)
		}
	}
	s.blockOpen = true
	s.newBlock = true
	return true, nil
}

// advance visits the next tuple of the current block. The first list drives
// the walk; the others follow while they have tuples.
func (s *styler) advance() (bool, error) {
	if !s.blockOpen {
		return false, nil
	}
	drv := s.lists[0].indexer
	if !drv.HasNext() {
		s.blockOpen = false
		return false, nil
	}
	if _, err := drv.Next(); err != nil {
		return false, err
	}
	for _, li := range s.lists[1:] {
		if li.indexer.HasNext() {
			if _, err := li.indexer.Next(); err != nil {
				return false, err
			}
		}
	}
	s.firstInBlock = s.newBlock
	s.newBlock = false
	s.count++
	return true, nil
}

// nextTuple visits the next tuple, moving to the next block when needed.
func (s *styler) nextTuple() (bool, error) {
	if err := s.prepare(); err != nil {
		return false, err
	}
	for {
		ok, err := s.advance()
		if err != nil || ok {
			return ok, err
		}
		ok, err = s.nextBlock()
		if err != nil || !ok {
			return false, err
		}
	}
}

// fold recomputes the bounding box from the points next returns, until it
// returns nil.
func (s *styler) fold(next func() (*PrimitiveGraphic, error)) error {
	if err := s.prepare(); err != nil {
		return err
	}
	s.ResetIterators()
	box := extent.New()
	box.Crs = s.projection.Crs(s.crs())
	for seeded := false; ; seeded = true {
		g, err := next()
		if err != nil {
			s.ResetIterators()
			return err
		}
		if g == nil {
			break
		}
		p := extent.Vector3{X: g.X, Y: g.Y, Z: g.Z}
		if !seeded {
			box.Seed(p)
			continue
		}
		box.Extend(p)
	}
	s.bbox = box
	s.ResetIterators()
	return nil
}

// place projects raw into g.
func (s *styler) place(g *PrimitiveGraphic, raw extent.Vector3) {
	s.projection.Adjust(s.crs(), &raw)
	g.X, g.Y, g.Z = raw.X, raw.Y, raw.Z
}

// first returns the first list bound under role.
func (s *styler) first(role string) *listInfo {
	for _, li := range s.lists {
		if li.role == role {
			return li
		}
	}
	return nil
}

// listFor returns the list info of the list named by path's first segment,
// creating it on first use, and the rest of the path.
func (s *styler) listFor(role, path string) (*listInfo, string, error) {
	name, rest := splitPath(path)
	for _, li := range s.lists {
		if li.role == role && li.name == name {
			return li, rest, nil
		}
	}
	list := s.node.List(name)
	if list == nil {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownList, name)
	}
	li := &listInfo{
		role:        role,
		name:        name,
		list:        list,
		builder:     index.NewBuilder(list.Structure()),
		indexOffset: -1,
	}
	s.lists = append(s.lists, li)
	return li, rest, nil
}

func (s *styler) addPropertyMapper(role, path string, v index.Visitor) error {
	li, rest, err := s.listFor(role, path)
	if err != nil {
		return err
	}
	return li.builder.Bind(rest, v)
}

// bindDimension wires axis dim of a patch to d. Sizes from list lengths are
// left to the caller, which reads them when it builds a patch.
func (s *styler) bindDimension(role string, d *Dimension, dim int, target *int) error {
	if d == nil {
		return nil
	}
	switch d.Source {
	case FromListLength:
		li, _, err := s.listFor(role, d.Path)
		if err != nil {
			return err
		}
		li.indexOffset = dim
		return nil
	case FromField:
		if err := s.addPropertyMapper(role, d.SizeField, &DimensionMapper{Target: target}); err != nil {
			return err
		}
	default:
		li, rest, err := s.listFor(role, d.Path)
		if err != nil {
			return err
		}
		if err := li.builder.BindLength(rest, &DimensionMapper{Target: target}); err != nil {
			return err
		}
	}
	li, rest, err := s.listFor(role, d.Path)
	if err != nil {
		return err
	}
	return li.builder.SetDimension(rest, dim)
}

// bindNumber writes a constant now or binds a mapper writing into dst.
func bindNumber[T number](s *styler, role string, p *ScalarParameter, dst *T) error {
	if p == nil {
		return nil
	}
	if p.IsConstant() {
		*dst = T(p.Float())
		return nil
	}
	return s.addPropertyMapper(role, p.Property, &NumberMapper[T]{Target: dst, Mapping: p.Mapping})
}

func (s *styler) bindText(role string, p *ScalarParameter, dst *string) error {
	if p == nil {
		return nil
	}
	if p.IsConstant() {
		*dst = p.Constant.Text()
		return nil
	}
	return s.addPropertyMapper(role, p.Property, &TextMapper{Target: dst, Mapping: p.Mapping})
}

func (s *styler) bindGeometry(role string, g Geometry, raw *extent.Vector3) error {
	if err := bindNumber(s, role, g.X, &raw.X); err != nil {
		return err
	}
	if err := bindNumber(s, role, g.Y, &raw.Y); err != nil {
		return err
	}
	return bindNumber(s, role, g.Z, &raw.Z)
}

// bindColor binds c into the 0..1 color of g. Alpha defaults to opaque.
func (s *styler) bindColor(role string, c Color, g *PrimitiveGraphic) error {
	g.A = 1
	for _, ch := range []struct {
		p   *ScalarParameter
		dst *float32
	}{{c.Red, &g.R}, {c.Green, &g.G}, {c.Blue, &g.B}, {c.Alpha, &g.A}} {
		if err := bindNumber(s, role, ch.p, ch.dst); err != nil {
			return err
		}
	}
	return nil
}

// bindChannels binds raster bands into px, a pixel in 0..255, and sets the
// band count of tile. Normalized channel values are rescaled from 0..1;
// opacity is always given in 0..1.
func (s *styler) bindChannels(role string, ch Channels, opacity *ScalarParameter, normalized bool, px *RasterPixelGraphic, tile *RasterTileGraphic) error {
	px.A = 255
	tile.Bands = 3
	scale := 1.0
	if normalized {
		scale = 255
	}
	if opacity != nil {
		if err := s.bindChannel(role, opacity, 255, &px.A); err != nil {
			return err
		}
	}
	colors := false
	for _, c := range []struct {
		p   *ScalarParameter
		dst *float32
	}{{ch.Red, &px.R}, {ch.Green, &px.G}, {ch.Blue, &px.B}} {
		if c.p == nil {
			continue
		}
		colors = true
		if err := s.bindChannel(role, c.p, scale, c.dst); err != nil {
			return err
		}
	}
	if !colors && ch.Gray != nil {
		tile.Bands = 1
		// one gray value feeds all three components
		for _, dst := range []*float32{&px.R, &px.G, &px.B} {
			if err := s.bindChannel(role, ch.Gray, scale, dst); err != nil {
				return err
			}
		}
	}
	if ch.Alpha != nil {
		tile.Bands++
		if err := s.bindChannel(role, ch.Alpha, scale, &px.A); err != nil {
			return err
		}
	}
	return nil
}

func (s *styler) bindChannel(role string, p *ScalarParameter, scale float64, dst *float32) error {
	if p.IsConstant() {
		*dst = float32(p.Float() * scale)
		return nil
	}
	fn := p.Mapping
	if scale != 1 {
		fn = scaled{fn: fn, factor: scale}
	}
	return s.addPropertyMapper(role, p.Property, &NumberMapper[float32]{Target: dst, Mapping: fn})
}
