package data

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pointStruct = DataRecord("point", Quantity("x"), Quantity("y"))

func point(x, y float64) *Block {
	return NewBlock(pointStruct, Record(Scalar(Float(x)), Scalar(Float(y))))
}

func collect(l *BlockList) []*Block {
	var out []*Block
	it := l.NewIterator()
	for it.HasNext() {
		out = append(out, it.Next().Block())
	}
	return out
}

// checkIntegrity walks the list both ways and verifies links and size.
func checkIntegrity(t *testing.T, l *BlockList) {
	t.Helper()
	if l.Size() == 0 {
		assert.Nil(t, l.First())
		assert.Nil(t, l.Last())
		return
	}
	require.NotNil(t, l.First())
	require.NotNil(t, l.Last())
	assert.Nil(t, l.First().Prev())
	assert.Nil(t, l.Last().Next())
	n := 0
	var prev *Item
	for it := l.First(); it != nil; it = it.Next() {
		assert.Equal(t, prev, it.Prev())
		prev = it
		n++
	}
	assert.Equal(t, l.Last(), prev)
	assert.Equal(t, l.Size(), n)
}

func TestAppendOrder(t *testing.T) {
	l := NewBlockList(pointStruct)
	b1, b2, b3 := point(1, 1), point(2, 2), point(3, 3)
	l.Append(b1)
	l.Append(b2)
	l.Append(b3)
	checkIntegrity(t, l)
	assert.Equal(t, []*Block{b1, b2, b3}, collect(l))
	assert.Equal(t, b2, l.At(1).Block())
	assert.Nil(t, l.At(3))
}

func TestRemoveWithoutCursor(t *testing.T) {
	l := NewBlockList(pointStruct)
	assert.ErrorIs(t, l.RemoveBlock(), ErrEmptyList)
	l.Append(point(0, 0))
	assert.ErrorIs(t, l.RemoveBlock(), ErrEmptyList)
}

func TestRemoveFirstAndLast(t *testing.T) {
	l := NewBlockList(pointStruct)
	b1, b2, b3 := point(1, 1), point(2, 2), point(3, 3)
	l.Append(b1)
	l.Append(b2)
	l.Append(b3)

	require.True(t, l.MoveFirst())
	require.NoError(t, l.RemoveBlock())
	checkIntegrity(t, l)
	assert.Equal(t, b2, l.First().Block())
	assert.Equal(t, b2, l.Current().Block())

	require.True(t, l.MoveLast())
	require.NoError(t, l.RemoveBlock())
	checkIntegrity(t, l)
	assert.Equal(t, b2, l.Last().Block())
	assert.Nil(t, l.Current())

	require.True(t, l.MoveFirst())
	require.NoError(t, l.RemoveBlock())
	checkIntegrity(t, l)
	assert.Equal(t, 0, l.Size())
}

func TestInsertAtCursor(t *testing.T) {
	l := NewBlockList(pointStruct)
	b1, b2, b3 := point(1, 1), point(2, 2), point(3, 3)

	// no cursor: insert at head
	l.InsertBlock(b2)
	l.MoveTo(nil)
	l.InsertBlock(b1)
	checkIntegrity(t, l)
	assert.Equal(t, []*Block{b1, b2}, collect(l))

	require.True(t, l.MoveLast())
	l.InsertBlock(b3)
	checkIntegrity(t, l)
	assert.Equal(t, []*Block{b1, b2, b3}, collect(l))
	assert.Equal(t, b3, l.Last().Block())

	// replace a stale tile in the middle
	l.MoveFirst()
	l.MoveNext()
	fresh := point(20, 20)
	require.NoError(t, l.RemoveBlock())
	l.MoveTo(l.First())
	l.InsertBlock(fresh)
	checkIntegrity(t, l)
	assert.Equal(t, []*Block{b1, fresh, b3}, collect(l))
}

func TestRandomEditsKeepSize(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	l := NewBlockList(pointStruct)
	adds, removes := 0, 0
	for i := 0; i < 500; i++ {
		switch rnd.Intn(4) {
		case 0, 1:
			l.Append(point(float64(i), 0))
			adds++
		case 2:
			if l.Size() > 0 {
				l.MoveTo(l.At(rnd.Intn(l.Size())))
				require.NoError(t, l.RemoveBlock())
				removes++
			}
		case 3:
			if l.Size() > 0 {
				l.MoveTo(l.At(rnd.Intn(l.Size())))
			}
			l.InsertBlock(point(float64(i), 1))
			adds++
		}
		assert.Equal(t, adds-removes, l.Size())
		assert.Equal(t, l.Size() == 0, l.First() == nil)
		assert.Equal(t, l.Size() == 0, l.Last() == nil)
	}
	checkIntegrity(t, l)
}

func TestIteratorsAreIndependent(t *testing.T) {
	l := NewBlockList(pointStruct)
	for i := 0; i < 3; i++ {
		l.Append(point(float64(i), 0))
	}
	a, b := l.NewIterator(), l.NewIterator()
	a.Next()
	a.Next()
	assert.Equal(t, l.First(), b.Next())
	assert.Equal(t, l.Last(), a.Next())
	assert.False(t, a.HasNext())
	assert.Nil(t, a.Next())

	a.Reset()
	assert.Equal(t, l.First(), a.Next())
}

func TestIteratorSurvivesRemovalOfItsItem(t *testing.T) {
	l := NewBlockList(pointStruct)
	b1, b2, b3 := point(1, 1), point(2, 2), point(3, 3)
	l.Append(b1)
	l.Append(b2)
	l.Append(b3)

	it := l.NewIterator()
	it.Next()
	cur := it.Next()
	require.Equal(t, b2, cur.Block())

	l.MoveTo(cur)
	require.NoError(t, l.RemoveBlock())

	require.True(t, it.HasNext())
	assert.Equal(t, b3, it.Next().Block())
	assert.False(t, it.HasNext())
}

func TestIteratorSeesAppendsAfterExhaustion(t *testing.T) {
	l := NewBlockList(pointStruct)
	l.Append(point(1, 1))
	it := l.NewIterator()
	it.Next()
	assert.False(t, it.HasNext())

	b := point(2, 2)
	l.Append(b)
	require.True(t, it.HasNext())
	assert.Equal(t, b, it.Next().Block())
}

func TestIteratorOnRemovedTailSeesAppends(t *testing.T) {
	l := NewBlockList(pointStruct)
	b1, b2, b3 := point(1, 1), point(2, 2), point(3, 3)
	l.Append(b1)
	l.Append(b2)

	it := l.NewIterator()
	it.Next()
	cur := it.Next()
	require.Equal(t, b2, cur.Block())
	l.MoveTo(cur)
	require.NoError(t, l.RemoveBlock())
	assert.False(t, it.HasNext())

	l.Append(b3)
	assert.Equal(t, 2, l.Size())
	require.True(t, it.HasNext())
	assert.Equal(t, b3, it.Next().Block())
	assert.False(t, it.HasNext())
}

func TestIteratorOnRemovedItemSeesInsertsAfterPredecessor(t *testing.T) {
	l := NewBlockList(pointStruct)
	b1, b2, b3, b4 := point(1, 1), point(2, 2), point(3, 3), point(4, 4)
	first := l.Append(b1)
	l.Append(b2)
	l.Append(b3)

	it := l.NewIterator()
	it.Next()
	cur := it.Next()
	l.MoveTo(cur)
	require.NoError(t, l.RemoveBlock())

	l.MoveTo(first)
	l.InsertBlock(b4)
	checkIntegrity(t, l)
	assert.Equal(t, b4, it.Next().Block())
	assert.Equal(t, b3, it.Next().Block())
	assert.Nil(t, it.Next())

	// removing the head resumes at the new head
	it = l.NewIterator()
	cur = it.Next()
	l.MoveTo(cur)
	require.NoError(t, l.RemoveBlock())
	assert.Equal(t, b4, it.Next().Block())
}

func TestAtTracksEdits(t *testing.T) {
	l := NewBlockList(pointStruct)
	b1, b2, b3 := point(1, 1), point(2, 2), point(3, 3)
	l.Append(b1)
	l.Append(b3)
	assert.Equal(t, b3, l.At(1).Block())

	l.MoveFirst()
	l.InsertBlock(b2)
	assert.Equal(t, []*Block{b1, b2, b3}, []*Block{l.At(0).Block(), l.At(1).Block(), l.At(2).Block()})

	l.MoveFirst()
	require.NoError(t, l.RemoveBlock())
	assert.Equal(t, b2, l.At(0).Block())
	assert.Nil(t, l.At(2))

	l.Clear()
	assert.Nil(t, l.At(0))
	l.Append(b1)
	assert.Equal(t, b1, l.At(0).Block())
}

func TestClear(t *testing.T) {
	l := NewBlockList(pointStruct)
	l.Append(point(1, 1))
	l.Append(point(2, 2))
	it := l.NewIterator()
	it.Next()
	l.Clear()
	checkIntegrity(t, l)
	assert.False(t, it.HasNext())
	it.Reset()
	assert.False(t, it.HasNext())
}

func TestNode(t *testing.T) {
	n := NewNode()
	assert.False(t, n.IsStructureReady())
	a := n.CreateList("b", pointStruct)
	assert.Same(t, a, n.CreateList("b", nil))
	n.CreateList("a", pointStruct)
	assert.Equal(t, []string{"b", "a"}, n.ListNames())
	assert.Equal(t, []string{"a", "b"}, n.SortedListNames())

	a.Append(point(0, 0))
	n.Clear()
	assert.Equal(t, 0, a.Size())
	assert.Nil(t, n.List("missing"))
}
