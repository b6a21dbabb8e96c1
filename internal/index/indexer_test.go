package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geostyle/internal/data"
)

type recorder struct {
	name string
	log  *[]string
}

func (r recorder) MapData(v data.Value) {
	*r.log = append(*r.log, r.name+"="+v.Text())
}

type sizes []int

func (s *sizes) SetDimensionSize(n int) { *s = append(*s, n) }

// track{id, samples[]{x, y}}
var track = data.DataRecord("track",
	data.Count("id"),
	data.DataArray("samples", data.DataRecord("sample", data.Quantity("x"), data.Quantity("y"))),
)

func trackBlock(id int, xy ...float64) *data.Block {
	var samples []data.Datum
	for i := 0; i+1 < len(xy); i += 2 {
		samples = append(samples, data.Record(data.Scalar(data.Float(xy[i])), data.Scalar(data.Float(xy[i+1]))))
	}
	return data.NewBlock(track, data.Record(data.Scalar(data.Int(id)), data.Array(samples...)))
}

func drain(t *testing.T, ix *Indexer) int {
	t.Helper()
	n := 0
	for {
		ok, err := ix.Next()
		require.NoError(t, err)
		if !ok {
			return n
		}
		n++
	}
}

func TestWalkOneTuplePerElement(t *testing.T) {
	var log []string
	b := NewBuilder(track)
	require.NoError(t, b.Bind("id", recorder{"id", &log}))
	require.NoError(t, b.Bind("samples/x", recorder{"x", &log}))
	require.NoError(t, b.Bind("samples/sample/y", recorder{"y", &log}))
	ix := b.Build()

	require.NoError(t, ix.SetData(trackBlock(7, 1, 2, 3, 4)))
	assert.Equal(t, 2, ix.Len())

	ok, err := ix.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"id=7", "x=1", "y=2"}, log)
	assert.True(t, ix.HasNext())

	log = nil
	ok, _ = ix.Next()
	require.True(t, ok)
	assert.Equal(t, []string{"x=3", "y=4"}, log)
	assert.False(t, ix.HasNext())

	ok, err = ix.Next()
	require.NoError(t, err)
	assert.False(t, ok)

	// reset replays the same sequence
	log = nil
	ix.Reset()
	assert.Equal(t, 2, drain(t, ix))
	assert.Equal(t, []string{"id=7", "x=1", "y=2", "x=3", "y=4"}, log)
}

func TestSamePathTwice(t *testing.T) {
	var a, c []string
	b := NewBuilder(track)
	require.NoError(t, b.Bind("samples/x", recorder{"a", &a}))
	require.NoError(t, b.Bind("samples/x", recorder{"c", &c}))
	ix := b.Build()

	require.NoError(t, ix.SetData(trackBlock(1, 10, 0, 20, 0, 30, 0)))
	assert.Equal(t, 3, drain(t, ix))
	assert.Equal(t, []string{"a=10", "a=20", "a=30"}, a)
	assert.Equal(t, []string{"c=10", "c=20", "c=30"}, c)
}

func TestScalarsOnlyYieldOnce(t *testing.T) {
	var log []string
	b := NewBuilder(track)
	require.NoError(t, b.Bind("id", recorder{"id", &log}))
	ix := b.Build()

	require.NoError(t, ix.SetData(trackBlock(3, 1, 1)))
	assert.Equal(t, 1, ix.Len())
	assert.Equal(t, 1, drain(t, ix))
	assert.Equal(t, []string{"id=3"}, log)
}

func TestEmptyArrayFallsBackToScalars(t *testing.T) {
	var log []string
	b := NewBuilder(track)
	require.NoError(t, b.Bind("id", recorder{"id", &log}))
	require.NoError(t, b.Bind("samples/x", recorder{"x", &log}))
	ix := b.Build()

	require.NoError(t, ix.SetData(trackBlock(9)))
	assert.Equal(t, 1, drain(t, ix))
	assert.Equal(t, []string{"id=9"}, log)
}

func TestLengthVisitor(t *testing.T) {
	var lens sizes
	b := NewBuilder(track)
	require.NoError(t, b.BindLength("samples", &lens))
	ix := b.Build()

	require.NoError(t, ix.SetData(trackBlock(1, 1, 1, 2, 2, 3, 3)))
	assert.Equal(t, 0, drain(t, ix))
	assert.Equal(t, sizes{3}, lens)

	// lookups do not report lengths
	require.NoError(t, ix.GetData(nil))
	assert.Equal(t, sizes{3}, lens)
}

func TestNestedArrays(t *testing.T) {
	// grid{rows[]{row[]{v}}}
	grid := data.DataRecord("grid",
		data.DataArray("rows", data.DataArray("row", data.Quantity("v"))),
	)
	blk := data.NewBlock(grid, data.Record(data.Array(
		data.Floats(1, 2, 3),
		data.Floats(4, 5, 6),
	)))

	var log []string
	var widths, heights sizes
	b := NewBuilder(grid)
	require.NoError(t, b.Bind("rows/row/v", recorder{"v", &log}))
	require.NoError(t, b.BindLength("rows", &heights))
	require.NoError(t, b.BindLength("rows/row", &widths))
	require.NoError(t, b.SetDimension("rows/row", 0))
	require.NoError(t, b.SetDimension("rows", 1))
	ix := b.Build()

	require.NoError(t, ix.SetData(blk))
	assert.Equal(t, 6, ix.Len())
	assert.Equal(t, 6, drain(t, ix))
	assert.Equal(t, []string{"v=1", "v=2", "v=3", "v=4", "v=5", "v=6"}, log)
	assert.Equal(t, sizes{2}, heights)
	assert.Equal(t, sizes{3, 3}, widths)

	log = nil
	require.NoError(t, ix.GetData([]int{2, 1}))
	assert.Equal(t, []string{"v=6"}, log)

	assert.ErrorIs(t, ix.GetData([]int{3, 0}), ErrOutOfRange)
	assert.ErrorIs(t, ix.GetData([]int{0}), ErrOutOfRange)
}

func TestGetDataNeedsDimension(t *testing.T) {
	var log []string
	b := NewBuilder(track)
	require.NoError(t, b.Bind("samples/y", recorder{"y", &log}))
	ix := b.Build()
	require.NoError(t, ix.SetData(trackBlock(1, 1, 2)))
	assert.ErrorIs(t, ix.GetData([]int{0}), ErrNoDimension)
}

func TestBindErrors(t *testing.T) {
	b := NewBuilder(track)
	assert.ErrorIs(t, b.Bind("nope", recorder{}), ErrInvalidPath)
	assert.ErrorIs(t, b.Bind("id/deeper", recorder{}), ErrInvalidPath)
	assert.ErrorIs(t, b.Bind("samples/sample", recorder{}), ErrNotAScalar)
	assert.ErrorIs(t, b.BindLength("id", new(sizes)), ErrNotAnArray)
	assert.ErrorIs(t, b.SetDimension("id", 0), ErrNotAnArray)
}

func TestStructureMismatch(t *testing.T) {
	b := NewBuilder(track)
	require.NoError(t, b.Bind("id", recorder{"id", new([]string)}))
	ix := b.Build()

	other := data.DataRecord("other", data.Quantity("a"))
	err := ix.SetData(data.NewBlock(other, data.Record(data.Scalar(data.Float(1)))))
	assert.ErrorIs(t, err, data.ErrStructureMismatch)
	assert.Nil(t, ix.Block())

	_, err = ix.Next()
	assert.ErrorIs(t, err, ErrNoData)
}

func TestBuildResetsBuilder(t *testing.T) {
	var log []string
	b := NewBuilder(track)
	require.NoError(t, b.Bind("id", recorder{"id", &log}))
	first := b.Build()
	second := b.Build()

	blk := trackBlock(5)
	require.NoError(t, first.SetData(blk))
	require.NoError(t, second.SetData(blk))
	assert.Equal(t, 1, drain(t, first))
	assert.Equal(t, 0, drain(t, second))
	assert.Equal(t, []string{"id=5"}, log)
}

func TestTrailingScalarAppliesToEveryTuple(t *testing.T) {
	// trk{pts[]{x, y}, w}
	trk := data.DataRecord("trk",
		data.DataArray("pts", data.DataRecord("pt", data.Quantity("x"), data.Quantity("y"))),
		data.Quantity("w"),
	)
	block := func(w float64, xs ...float64) *data.Block {
		var pts []data.Datum
		for _, x := range xs {
			pts = append(pts, data.Record(data.Scalar(data.Float(x)), data.Scalar(data.Float(0))))
		}
		return data.NewBlock(trk, data.Record(data.Array(pts...), data.Scalar(data.Float(w))))
	}

	var log []string
	b := NewBuilder(trk)
	require.NoError(t, b.Bind("pts/x", recorder{"x", &log}))
	require.NoError(t, b.Bind("w", recorder{"w", &log}))
	ix := b.Build()

	require.NoError(t, ix.SetData(block(10, 1, 2)))
	assert.Equal(t, 2, ix.Len())
	ok, err := ix.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"w=10", "x=1"}, log)
	assert.Equal(t, 2, 1+drain(t, ix))

	log = nil
	require.NoError(t, ix.SetData(block(20, 3)))
	assert.Equal(t, 1, drain(t, ix))
	assert.Equal(t, []string{"w=20", "x=3"}, log)
}
