package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geostyle/internal/data"
	"geostyle/internal/extent"
)

type provider struct{ node *data.Node }

func (p provider) DataNode() *data.Node { return p.node }

type item struct{ node *data.Node }

func (i item) DataProvider() DataProvider { return provider{i.node} }

var obsStruct = data.DataRecord("obs",
	data.Quantity("x"),
	data.Quantity("y"),
	data.Text("name"),
)

func obsNode(t *testing.T, xy ...float64) *data.Node {
	t.Helper()
	n := data.NewNode()
	l := n.CreateList("obs", obsStruct)
	for i := 0; i+1 < len(xy); i += 2 {
		l.Append(data.NewBlock(obsStruct, data.Record(
			data.Scalar(data.Float(xy[i])),
			data.Scalar(data.Float(xy[i+1])),
			data.Scalar(data.String("p")),
		)))
	}
	n.SetStructureReady(true)
	return n
}

func pointSym() *PointSymbolizer {
	return &PointSymbolizer{
		Common: Common{Name: "obs", Geometry: Geometry{
			X: Mapped("obs/x", nil),
			Y: Mapped("obs/y", nil),
		}},
		Size:  Const(4),
		Color: RGBA(1, 0.5, 0, 1),
	}
}

func drainPoints(t *testing.T, s *PointStyler) []PointGraphic {
	t.Helper()
	var out []PointGraphic
	for {
		p, err := s.NextPoint()
		require.NoError(t, err)
		if p == nil {
			return out
		}
		out = append(out, *p)
	}
}

func TestPointStylerEndToEnd(t *testing.T) {
	s := NewPointStyler(pointSym())
	s.SetDataItem(item{obsNode(t, 1, 10, 2, 20, 3, 30)})

	first := drainPoints(t, s)
	require.Len(t, first, 3)
	for i, p := range first {
		assert.Equal(t, float64(i+1), p.X)
		assert.Equal(t, float64(10*(i+1)), p.Y)
		assert.Equal(t, float32(1), p.R)
		assert.Equal(t, float32(0.5), p.G)
		assert.Equal(t, float32(0), p.B)
		assert.Equal(t, float32(1), p.A)
		assert.Equal(t, float32(4), p.Size)
	}

	s.ResetIterators()
	assert.Equal(t, first, drainPoints(t, s))
}

func TestStateMachine(t *testing.T) {
	s := NewPointStyler(nil)
	assert.Equal(t, StateUnbound, s.State())
	_, err := s.NextPoint()
	assert.ErrorIs(t, err, ErrUnbound)

	require.NoError(t, s.SetSymbolizer(pointSym()))
	node := obsNode(t, 1, 1)
	node.SetStructureReady(false)
	s.SetDataItem(item{node})
	assert.Equal(t, StateBound, s.State())

	_, err = s.NextPoint()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, StateBound, s.State())

	node.SetStructureReady(true)
	p, err := s.NextPoint()
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, StateReady, s.State())
	assert.False(t, s.IsUpdated())

	s.SetUpdated(true)
	assert.Equal(t, StateStale, s.State())
	s.ResetIterators()
	p, err = s.NextPoint()
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, StateReady, s.State())
}

func TestSymbolizerChangeRebuilds(t *testing.T) {
	s := NewPointStyler(pointSym())
	s.SetDataItem(item{obsNode(t, 1, 10)})
	p, err := s.NextPoint()
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.X)

	swapped := pointSym()
	swapped.Geometry.X = Mapped("obs/y", Linear{Gain: 2})
	require.NoError(t, s.SetSymbolizer(swapped))
	assert.Equal(t, StateStale, s.State())

	s.ResetIterators()
	p, err = s.NextPoint()
	require.NoError(t, err)
	assert.Equal(t, 20.0, p.X)
}

func TestUnknownList(t *testing.T) {
	sym := pointSym()
	sym.Geometry.X = Mapped("nope/x", nil)
	s := NewPointStyler(sym)
	s.SetDataItem(item{obsNode(t, 1, 1)})
	_, err := s.NextPoint()
	assert.ErrorIs(t, err, ErrUnknownList)
}

func TestStructureMismatchStopsPass(t *testing.T) {
	node := obsNode(t, 1, 1)
	bad := data.DataRecord("bad", data.Quantity("x"))
	node.List("obs").Append(data.NewBlock(bad, data.Record(data.Scalar(data.Float(0)))))

	s := NewPointStyler(pointSym())
	s.SetDataItem(item{node})
	p, err := s.NextPoint()
	require.NoError(t, err)
	require.NotNil(t, p)
	_, err = s.NextPoint()
	assert.ErrorIs(t, err, data.ErrStructureMismatch)
}

func TestLockstepAcrossLists(t *testing.T) {
	node := obsNode(t, 1, 1, 2, 2, 3, 3)
	other := node.CreateList("other", obsStruct)
	other.Append(data.NewBlock(obsStruct, data.Record(
		data.Scalar(data.Float(7)), data.Scalar(data.Float(0)), data.Scalar(data.String("q")))))

	sym := pointSym()
	sym.Size = Mapped("other/x", nil)
	s := NewPointStyler(sym)
	s.SetDataItem(item{node})

	pts := drainPoints(t, s)
	require.Len(t, pts, 1)
	assert.Equal(t, float32(7), pts[0].Size)
}

func TestBoundingBox(t *testing.T) {
	s := NewPointStyler(pointSym())
	s.SetDataItem(item{obsNode(t, -1, 5, 4, -2, 2, 3)})
	require.NoError(t, s.ComputeBoundingBox())
	bb := s.BoundingBox()
	assert.Equal(t, -1.0, bb.MinX)
	assert.Equal(t, 4.0, bb.MaxX)
	assert.Equal(t, -2.0, bb.MinY)
	assert.Equal(t, 5.0, bb.MaxY)

	// iterators are rewound afterwards
	assert.Len(t, drainPoints(t, s), 3)
}

func TestBoundingBoxOriginFirst(t *testing.T) {
	s := NewPointStyler(pointSym())
	s.SetDataItem(item{obsNode(t, 0, 0, 5, 5)})
	require.NoError(t, s.ComputeBoundingBox())
	bb := s.BoundingBox()
	assert.Equal(t, []float64{0, 0, 5, 5}, []float64{bb.MinX, bb.MinY, bb.MaxX, bb.MaxY})
	assert.True(t, bb.ContainsPoint(extent.Vector3{}))
	assert.True(t, bb.ContainsPoint(extent.Vector3{X: 5, Y: 5}))
}

func TestECEFProjection(t *testing.T) {
	sym := pointSym()
	sym.Geometry.Crs = CrsWGS84
	s := NewPointStyler(sym)
	s.SetProjection(ECEFProjection{})
	s.SetDataItem(item{obsNode(t, 0, 0, 90, 0)})

	pts := drainPoints(t, s)
	require.Len(t, pts, 2)
	assert.InDelta(t, 6378137.0, pts[0].X, 1e-6)
	assert.InDelta(t, 0, pts[0].Y, 1e-6)
	assert.InDelta(t, 0, pts[1].X, 1e-6)
	assert.InDelta(t, 6378137.0, pts[1].Y, 1e-6)

	require.NoError(t, s.ComputeBoundingBox())
	assert.Equal(t, CrsECEF, s.BoundingBox().Crs)

	var p extent.Vector3
	p.X, p.Y = 0, 90
	ECEFProjection{}.Adjust(CrsWGS84, &p)
	assert.InDelta(t, 6356752.314, p.Z, 1e-3)
}

func TestNewDispatch(t *testing.T) {
	syms := []Symbolizer{
		&PointSymbolizer{}, &LineSymbolizer{}, &TextSymbolizer{}, &GridSymbolizer{},
		&RasterSymbolizer{}, &TextureSymbolizer{}, &PolygonSymbolizer{},
	}
	for _, sym := range syms {
		s, err := New(sym)
		require.NoError(t, err)
		assert.Equal(t, KindOf(sym), s.Kind())
		assert.Same(t, sym, s.Symbolizer())
	}
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrSymbolizerKind)

	p := NewPointStyler(nil)
	assert.ErrorIs(t, p.SetSymbolizer(&LineSymbolizer{}), ErrSymbolizerKind)
	assert.ErrorIs(t, p.SetSymbolizer((*PointSymbolizer)(nil)), ErrSymbolizerKind)
}
