package data

import "errors"

// ErrEmptyList is returned by cursor edits when the list has no current item.
var ErrEmptyList = errors.New("data: no current block")

// Item is one slot of a BlockList.
type Item struct {
	block    *Block
	prev     *Item
	next     *Item
	detached bool
}

func (it *Item) Block() *Block { return it.block }

// Next returns the following item, nil at the end of the list.
func (it *Item) Next() *Item {
	if it.detached {
		return nil
	}
	return it.next
}

func (it *Item) Prev() *Item {
	if it.detached {
		return nil
	}
	return it.prev
}

// BlockList is a doubly linked sequence of blocks sharing one structure.
// It keeps an edit cursor used by InsertBlock and RemoveBlock.
//
// A BlockList is not safe for concurrent use while it is being edited.
// Readers that only walk items or call At may share it.
type BlockList struct {
	size      int
	structure *Component
	first     *Item
	last      *Item
	current   *Item

	// positional index, kept current by every mutation so At only reads
	fastAccess []*Item
}

func NewBlockList(structure *Component) *BlockList {
	return &BlockList{structure: structure}
}

func (l *BlockList) Size() int { return l.size }

// First returns the head item, nil iff the list is empty.
func (l *BlockList) First() *Item { return l.first }

// Last returns the tail item, nil iff the list is empty.
func (l *BlockList) Last() *Item { return l.last }

// Current returns the item under the edit cursor.
func (l *BlockList) Current() *Item { return l.current }

func (l *BlockList) Structure() *Component { return l.structure }

func (l *BlockList) SetStructure(c *Component) { l.structure = c }

// Clear drops every block.
func (l *BlockList) Clear() {
	for it := l.first; it != nil; {
		next := it.next
		it.detached = true
		it = next
	}
	l.first, l.last, l.current = nil, nil, nil
	l.size = 0
	l.fastAccess = nil
}

// Append adds b at the end of the list and returns its slot.
// The cursor is left unchanged.
func (l *BlockList) Append(b *Block) *Item {
	it := &Item{block: b, prev: l.last}
	if l.last != nil {
		l.last.next = it
	} else {
		l.first = it
	}
	l.last = it
	l.size++
	l.fastAccess = append(l.fastAccess, it)
	return it
}

// InsertBlock inserts b right after the cursor, or at the head of the list
// when there is no cursor, and moves the cursor onto the new slot.
func (l *BlockList) InsertBlock(b *Block) *Item {
	it := &Item{block: b}
	if l.current == nil {
		it.next = l.first
		if l.first != nil {
			l.first.prev = it
		}
		l.first = it
		if l.last == nil {
			l.last = it
		}
	} else {
		it.prev = l.current
		it.next = l.current.next
		if it.next != nil {
			it.next.prev = it
		} else {
			l.last = it
		}
		l.current.next = it
	}
	l.current = it
	l.size++
	l.reindex()
	return it
}

// RemoveBlock unlinks the block under the cursor and moves the cursor to
// its successor (nil when the removed block was last).
//
// The removed item keeps its back link so iterators positioned on it can
// resume after its nearest predecessor still in the list.
func (l *BlockList) RemoveBlock() error {
	it := l.current
	if it == nil || it.detached {
		return ErrEmptyList
	}
	if it.prev != nil {
		it.prev.next = it.next
	} else {
		l.first = it.next
	}
	if it.next != nil {
		it.next.prev = it.prev
	} else {
		l.last = it.prev
	}
	it.detached = true
	l.current = it.next
	l.size--
	l.reindex()
	return nil
}

func (l *BlockList) reindex() {
	l.fastAccess = l.fastAccess[:0]
	for it := l.first; it != nil; it = it.next {
		l.fastAccess = append(l.fastAccess, it)
	}
}

// MoveFirst places the cursor on the first item. It reports false on an empty list.
func (l *BlockList) MoveFirst() bool {
	l.current = l.first
	return l.current != nil
}

func (l *BlockList) MoveLast() bool {
	l.current = l.last
	return l.current != nil
}

// MoveNext advances the cursor. At the end of the list the cursor becomes nil.
func (l *BlockList) MoveNext() bool {
	if l.current == nil {
		return false
	}
	l.current = l.current.next
	return l.current != nil
}

// MoveTo places the cursor on it, which must belong to l.
func (l *BlockList) MoveTo(it *Item) {
	l.current = it
}

// At returns the i-th item, or nil when i is out of range. It does not
// modify the list, so concurrent readers may call it while nobody edits.
func (l *BlockList) At(i int) *Item {
	if i < 0 || i >= l.size {
		return nil
	}
	return l.fastAccess[i]
}

// NewIterator returns an independent forward iterator positioned before the
// first block.
func (l *BlockList) NewIterator() *Iterator {
	return &Iterator{list: l}
}

// Iterator walks a BlockList without owning it. Several iterators may be
// active on one list.
//
// When the item an iterator last returned is removed from the list, the
// iterator resumes after the nearest predecessor still attached to the list,
// or at the head when there is none. Blocks appended or inserted there later,
// including after the iterator ran out, become visible to it.
type Iterator struct {
	list    *BlockList
	current *Item
	started bool
}

func (it *Iterator) List() *BlockList { return it.list }

// Reset rewinds the iterator to the start of the list.
func (it *Iterator) Reset() {
	it.current = nil
	it.started = false
}

func (it *Iterator) peek() *Item {
	if !it.started {
		return it.list.first
	}
	if it.current == nil {
		return nil
	}
	anchor := it.current
	for anchor != nil && anchor.detached {
		anchor = anchor.prev
	}
	if anchor == nil {
		return it.list.first
	}
	return anchor.next
}

func (it *Iterator) HasNext() bool {
	return it.peek() != nil
}

// Next returns the next item, or nil once the list is exhausted.
func (it *Iterator) Next() *Item {
	n := it.peek()
	if n == nil {
		return nil
	}
	it.started = true
	it.current = n
	return n
}
