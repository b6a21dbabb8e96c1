package index

import (
	"fmt"

	"geostyle/internal/data"
)

type frame struct {
	n   *node
	d   *data.Datum
	pos int
	// set on the element frame of an innermost array
	yieldOnPop bool
}

// Indexer walks blocks of one structure and feeds bound visitors.
//
// The walk is lazy: each Next call advances to the end of one tuple, which
// is one element of an innermost bound array. The scalars of a record that
// sit outside its arrays are visited when the walk enters the record,
// whatever their position, so they apply to every tuple below it. A block
// with no bound array elements yields a single tuple holding its scalars.
//
// An Indexer is not safe for concurrent use.
type Indexer struct {
	structure *data.Component
	root      *node

	block   *data.Block
	stack   []frame
	started bool
	done    bool
	pending bool
	yielded int
	total   int
}

func (ix *Indexer) Structure() *data.Component { return ix.structure }

// Block returns the block set by SetData.
func (ix *Indexer) Block() *data.Block { return ix.block }

// SetData points the indexer at b and rewinds it. It fails with
// data.ErrStructureMismatch when b's value tree does not fit the indexer
// structure.
func (ix *Indexer) SetData(b *data.Block) error {
	if b == nil {
		ix.block = nil
		ix.Reset()
		return nil
	}
	if ix.structure == nil {
		return errNilStructure
	}
	if err := data.Validate(ix.structure, *b.Root()); err != nil {
		return err
	}
	ix.block = b
	ix.Reset()
	ix.total = 0
	if ix.root != nil {
		ix.total = countTuples(ix.root, b.Root())
		if ix.total == 0 && ix.root.hasScalars {
			ix.total = 1
		}
	}
	return nil
}

// Reset rewinds the walk over the current block.
func (ix *Indexer) Reset() {
	ix.stack = ix.stack[:0]
	ix.started = false
	ix.done = false
	ix.pending = false
	ix.yielded = 0
}

// Len returns the number of tuples Next produces for the current block.
func (ix *Indexer) Len() int { return ix.total }

func (ix *Indexer) HasNext() bool {
	return ix.block != nil && ix.yielded < ix.total
}

// Next visits the next tuple. It returns false once the block is exhausted.
func (ix *Indexer) Next() (bool, error) {
	if ix.block == nil {
		return false, ErrNoData
	}
	if ix.done || ix.root == nil {
		return false, nil
	}
	if !ix.started {
		ix.started = true
		ix.enter(ix.root, ix.block.Root())
	}
	for len(ix.stack) > 0 {
		f := &ix.stack[len(ix.stack)-1]
		switch f.n.comp.Kind {
		case data.KindRecord:
			if f.pos < len(f.n.children) {
				c := f.n.children[f.pos]
				f.pos++
				// flat children were visited on entry
				if c.hasArray {
					ix.enter(c, f.d.Field(c.field))
				}
				continue
			}
		case data.KindArray:
			if f.pos < f.d.Len() {
				i, n := f.pos, f.n
				f.pos++
				// enter may grow the stack; f is stale afterwards
				pushed := ix.enter(n.elem, f.d.Elem(i))
				if n.innermost {
					if !pushed {
						return ix.yield(), nil
					}
					ix.stack[len(ix.stack)-1].yieldOnPop = true
				}
				continue
			}
		}
		yieldOnPop := f.yieldOnPop
		ix.stack = ix.stack[:len(ix.stack)-1]
		if yieldOnPop {
			return ix.yield(), nil
		}
	}
	ix.done = true
	if ix.yielded == 0 && ix.pending {
		return ix.yield(), nil
	}
	return false, nil
}

func (ix *Indexer) yield() bool {
	ix.pending = false
	ix.yielded++
	return true
}

// enter visits n and reports whether it pushed a frame.
func (ix *Indexer) enter(n *node, d *data.Datum) bool {
	switch n.comp.Kind {
	case data.KindScalar:
		if len(n.visitors) > 0 {
			v := d.Value()
			for _, vis := range n.visitors {
				vis.MapData(v)
			}
			ix.pending = true
		}
		return false
	case data.KindRecord:
		for _, c := range n.children {
			if !c.hasArray {
				ix.visitFlat(c, d.Field(c.field))
			}
		}
	case data.KindArray:
		for _, s := range n.sizers {
			s.SetDimensionSize(d.Len())
		}
		if !n.hasScalars {
			return false
		}
	}
	ix.stack = append(ix.stack, frame{n: n, d: d})
	return true
}

// visitFlat visits a subtree holding no scalar-bearing array in one go.
func (ix *Indexer) visitFlat(n *node, d *data.Datum) {
	switch n.comp.Kind {
	case data.KindScalar:
		ix.enter(n, d)
	case data.KindRecord:
		for _, c := range n.children {
			ix.visitFlat(c, d.Field(c.field))
		}
	case data.KindArray:
		for _, s := range n.sizers {
			s.SetDimensionSize(d.Len())
		}
	}
}

func countTuples(n *node, d *data.Datum) int {
	switch n.comp.Kind {
	case data.KindRecord:
		total := 0
		for _, c := range n.children {
			total += countTuples(c, d.Field(c.field))
		}
		return total
	case data.KindArray:
		if !n.hasScalars {
			return 0
		}
		if n.innermost {
			return d.Len()
		}
		total := 0
		for i := 0; i < d.Len(); i++ {
			total += countTuples(n.elem, d.Elem(i))
		}
		return total
	}
	return 0
}

// GetData visits every bound scalar of the current block at the given
// coordinates: each array on the way is indexed by coords[dim]. Length
// visitors are not called.
func (ix *Indexer) GetData(coords []int) error {
	if ix.block == nil {
		return ErrNoData
	}
	if ix.root == nil {
		return nil
	}
	return ix.lookup(ix.root, ix.block.Root(), coords)
}

func (ix *Indexer) lookup(n *node, d *data.Datum, coords []int) error {
	switch n.comp.Kind {
	case data.KindScalar:
		if len(n.visitors) > 0 {
			v := d.Value()
			for _, vis := range n.visitors {
				vis.MapData(v)
			}
		}
	case data.KindRecord:
		for _, c := range n.children {
			if !c.hasScalars {
				continue
			}
			if err := ix.lookup(c, d.Field(c.field), coords); err != nil {
				return err
			}
		}
	case data.KindArray:
		if !n.hasScalars {
			return nil
		}
		if n.dim < 0 {
			return fmt.Errorf("%w: %s", ErrNoDimension, n.comp.Name)
		}
		if n.dim >= len(coords) {
			return fmt.Errorf("%w: %s uses dimension %d of %d", ErrOutOfRange, n.comp.Name, n.dim, len(coords))
		}
		i := coords[n.dim]
		if i < 0 || i >= d.Len() {
			return fmt.Errorf("%w: %s[%d], length %d", ErrOutOfRange, n.comp.Name, i, d.Len())
		}
		return ix.lookup(n.elem, d.Elem(i), coords)
	}
	return nil
}
