package extent

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNull(t *testing.T) {
	assert.True(t, New().IsNull())
	assert.True(t, (&SpatialExtent{}).IsNull())
	assert.False(t, Bounds("", 0, 0, 0, 1, 0, 0).IsNull())
	assert.False(t, Bounds("", -1, 0, 0, 0, 0, 0).IsNull())
}

func TestResizeToContain(t *testing.T) {
	e := New()
	e.ResizeToContain(Vector3{X: 3, Y: 4, Z: 5})
	assert.Equal(t, Bounds("", 3, 4, 5, 3, 4, 5), e)

	e.ResizeToContain(Vector3{X: -1, Y: 10, Z: 5})
	assert.Equal(t, -1.0, e.MinX)
	assert.Equal(t, 3.0, e.MaxX)
	assert.Equal(t, 4.0, e.MinY)
	assert.Equal(t, 10.0, e.MaxY)
	assert.True(t, e.ContainsPoint(Vector3{X: 0, Y: 5, Z: 5}))
}

func TestSeedKeepsOrigin(t *testing.T) {
	e := New()
	e.Seed(Vector3{})
	e.Extend(Vector3{X: 5, Y: 5})
	assert.Equal(t, Bounds("", 0, 0, 0, 5, 5, 0), e)

	// a null extent reseeds instead
	n := New()
	n.ResizeToContain(Vector3{})
	n.ResizeToContain(Vector3{X: 5, Y: 5})
	assert.Equal(t, 5.0, n.MinX)
}

func TestAddCommutativeAssociative(t *testing.T) {
	a := Bounds("EPSG:4326", 0, 0, 0, 2, 2, 1)
	b := Bounds("EPSG:4326", -3, 1, -1, 1, 5, 0)
	c := Bounds("EPSG:4326", 4, -2, 2, 6, 0, 3)

	ab := a.Copy()
	require.NoError(t, ab.Add(b))
	ba := b.Copy()
	require.NoError(t, ba.Add(a))
	assert.Equal(t, ab, ba)

	abc1 := ab.Copy()
	require.NoError(t, abc1.Add(c))
	bc := b.Copy()
	require.NoError(t, bc.Add(c))
	abc2 := a.Copy()
	require.NoError(t, abc2.Add(bc))
	assert.Equal(t, abc1, abc2)
	assert.Equal(t, Bounds("EPSG:4326", -3, -2, -1, 6, 5, 3), abc1)
}

func TestAddNullIsIdentity(t *testing.T) {
	a := Bounds("", 1, 1, 1, 2, 2, 2)
	n := New()
	require.NoError(t, n.Add(a))
	assert.Equal(t, a, n)

	b := a.Copy()
	require.NoError(t, b.Add(New()))
	assert.Equal(t, a, b)
}

func TestCrsMismatch(t *testing.T) {
	a := Bounds("EPSG:4326", 0, 0, 0, 1, 1, 1)
	b := Bounds("EPSG:4978", 0, 0, 0, 1, 1, 1)
	assert.ErrorIs(t, a.Add(b), ErrCrsMismatch)
	assert.ErrorIs(t, a.Intersect(b), ErrCrsMismatch)
	_, err := a.Contains(b)
	assert.ErrorIs(t, err, ErrCrsMismatch)
	_, err = a.Crosses(b)
	assert.ErrorIs(t, err, ErrCrsMismatch)

	// an untagged extent is compatible with anything
	assert.NoError(t, a.Add(Bounds("", 2, 2, 2, 3, 3, 3)))
	assert.Equal(t, "EPSG:4326", a.Crs)
}

func TestIntersect(t *testing.T) {
	a := Bounds("", 0, 0, 0, 4, 4, 4)
	require.NoError(t, a.Intersect(Bounds("", 2, 1, 3, 6, 3, 8)))
	assert.Equal(t, Bounds("", 2, 1, 3, 4, 3, 4), a)

	b := Bounds("", 0, 0, 0, 1, 1, 1)
	require.NoError(t, b.Intersect(Bounds("", 5, 5, 5, 6, 6, 6)))
	assert.True(t, b.IsNull())
}

func TestContainsCrosses(t *testing.T) {
	outer := Bounds("", 0, 0, 0, 10, 10, 10)
	inner := Bounds("", 1, 1, 1, 2, 2, 2)
	side := Bounds("", 9, 9, 9, 12, 12, 12)
	far := Bounds("", 20, 20, 20, 30, 30, 30)

	ok, err := outer.Contains(inner)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = outer.Contains(side)
	assert.False(t, ok)
	ok, _ = outer.Crosses(side)
	assert.True(t, ok)
	ok, _ = outer.Crosses(far)
	assert.False(t, ok)
}

func TestCenterDiagonal(t *testing.T) {
	e := Bounds("", 0, 0, 0, 2, 4, 4)
	assert.Equal(t, Vector3{X: 1, Y: 2, Z: 2}, e.Center())
	assert.InDelta(t, 6.0, e.DiagonalDistance(), 1e-12)
	assert.InDelta(t, math.Sqrt(3), Bounds("", 0, 0, 0, 1, 1, 1).DiagonalDistance(), 1e-12)
}
