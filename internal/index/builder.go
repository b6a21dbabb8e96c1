// Package index resolves bound field paths inside data blocks.
//
// A Builder mirrors the part of a block structure that has bindings on it;
// the Indexer it produces walks blocks of that structure, either lazily in
// depth-first order or by direct coordinate lookup.
package index

import (
	"errors"
	"fmt"
	"strings"

	"geostyle/internal/data"
)

var (
	ErrInvalidPath  = errors.New("index: invalid path")
	ErrNoDimension  = errors.New("index: array has no dimension")
	ErrOutOfRange   = errors.New("index: coordinate out of range")
	ErrNoData       = errors.New("index: no block set")
	ErrNotAnArray   = errors.New("index: path does not name an array")
	ErrNotAScalar   = errors.New("index: path does not name a scalar")
	errNilStructure = errors.New("index: nil structure")
)

// Visitor receives the scalar found at a bound leaf.
type Visitor interface {
	MapData(v data.Value)
}

// Sizer receives the run-time length of a bound array.
type Sizer interface {
	SetDimensionSize(n int)
}

// node mirrors one component. Only components on a bound path get a node.
type node struct {
	comp     *data.Component
	field    int     // index in the parent record, -1 otherwise
	children []*node // record members, sorted by field
	elem     *node   // array element
	visitors []Visitor
	sizers   []Sizer
	dim      int

	hasScalars bool // some visitor below
	hasArray   bool // some scalar-bearing array below, or n is one
	innermost  bool // array whose element subtree holds no scalar-bearing array
}

func newNode(c *data.Component, field int) *node {
	return &node{comp: c, field: field, dim: -1}
}

func (n *node) child(i int) *node {
	for _, c := range n.children {
		if c.field == i {
			return c
		}
	}
	c := newNode(n.comp.Fields[i], i)
	// keep value order so the walk follows the block layout
	pos := len(n.children)
	for pos > 0 && n.children[pos-1].field > i {
		pos--
	}
	n.children = append(n.children, nil)
	copy(n.children[pos+1:], n.children[pos:])
	n.children[pos] = c
	return c
}

func (n *node) elemNode() *node {
	if n.elem == nil {
		n.elem = newNode(n.comp.Elem, -1)
	}
	return n.elem
}

// Builder collects bindings for one block structure.
type Builder struct {
	structure *data.Component
	root      *node
}

func NewBuilder(structure *data.Component) *Builder {
	b := &Builder{structure: structure}
	b.Clear()
	return b
}

func (b *Builder) Structure() *data.Component { return b.structure }

// Clear drops every binding.
func (b *Builder) Clear() {
	if b.structure == nil {
		b.root = nil
		return
	}
	b.root = newNode(b.structure, -1)
}

// resolve walks path from the root, creating nodes on the way.
// Array elements are transparent: a segment either names the element
// component itself or is matched against the element's own members.
func (b *Builder) resolve(path string) (*node, error) {
	if b.root == nil {
		return nil, errNilStructure
	}
	n := b.root
	path = strings.Trim(path, "/")
	if path == "" {
		return n, nil
	}
	for _, seg := range strings.Split(path, "/") {
		for {
			if n.comp.Kind == data.KindArray {
				n = n.elemNode()
				if n.comp.Name == seg {
					break
				}
				continue
			}
			if n.comp.Kind != data.KindRecord {
				return nil, fmt.Errorf("%w: %q: %s is a scalar", ErrInvalidPath, path, n.comp.Name)
			}
			i, f := n.comp.Field(seg)
			if f == nil {
				return nil, fmt.Errorf("%w: %q: no field %s in %s", ErrInvalidPath, path, seg, n.comp.Name)
			}
			n = n.child(i)
			break
		}
	}
	return n, nil
}

// Bind registers v on the scalar at path. Trailing arrays are descended,
// so binding an array of scalars binds its elements. Binding a path twice
// keeps both visitors, called in binding order.
func (b *Builder) Bind(path string, v Visitor) error {
	n, err := b.resolve(path)
	if err != nil {
		return err
	}
	for n.comp.Kind == data.KindArray {
		n = n.elemNode()
	}
	if n.comp.Kind != data.KindScalar {
		return fmt.Errorf("%w: %q", ErrNotAScalar, path)
	}
	n.visitors = append(n.visitors, v)
	return nil
}

// BindLength registers s on the array at path; it is told the array length
// each time the walk enters the array.
func (b *Builder) BindLength(path string, s Sizer) error {
	n, err := b.resolve(path)
	if err != nil {
		return err
	}
	if n.comp.Kind != data.KindArray {
		return fmt.Errorf("%w: %q", ErrNotAnArray, path)
	}
	n.sizers = append(n.sizers, s)
	return nil
}

// SetDimension makes the array at path addressable by coords[dim] in GetData.
func (b *Builder) SetDimension(path string, dim int) error {
	if dim < 0 {
		return fmt.Errorf("%w: dimension %d", ErrOutOfRange, dim)
	}
	n, err := b.resolve(path)
	if err != nil {
		return err
	}
	if n.comp.Kind != data.KindArray {
		return fmt.Errorf("%w: %q", ErrNotAnArray, path)
	}
	n.dim = dim
	return nil
}

// Build hands the collected tree to a new Indexer and resets the builder.
func (b *Builder) Build() *Indexer {
	root := b.root
	if root != nil {
		annotate(root)
	}
	b.Clear()
	return &Indexer{structure: b.structure, root: root}
}

// annotate fills hasScalars, hasArray and innermost bottom-up and reports
// whether the subtree holds a scalar-bearing array.
func annotate(n *node) bool {
	switch n.comp.Kind {
	case data.KindScalar:
		n.hasScalars = len(n.visitors) > 0
	case data.KindRecord:
		for _, c := range n.children {
			if annotate(c) {
				n.hasArray = true
			}
			n.hasScalars = n.hasScalars || c.hasScalars
		}
	case data.KindArray:
		if n.elem != nil {
			inner := annotate(n.elem)
			n.hasScalars = n.elem.hasScalars
			n.innermost = n.hasScalars && !inner
		}
		n.hasArray = n.hasScalars
	}
	return n.hasArray
}
