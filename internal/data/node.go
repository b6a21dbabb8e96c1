package data

import (
	"sort"
	"sync"
)

// Node groups the named block lists produced by one data source.
// The name table is guarded for concurrent ingestion; the lists themselves
// are not.
type Node struct {
	mu    sync.RWMutex
	lists map[string]*BlockList
	order []string
	ready bool
}

func NewNode() *Node {
	return &Node{lists: make(map[string]*BlockList)}
}

// CreateList returns the list called name, creating it with structure if needed.
func (n *Node) CreateList(name string, structure *Component) *BlockList {
	n.mu.Lock()
	defer n.mu.Unlock()
	if l, ok := n.lists[name]; ok {
		return l
	}
	l := NewBlockList(structure)
	n.lists[name] = l
	n.order = append(n.order, name)
	return l
}

// AddList registers l under name, replacing any previous list.
func (n *Node) AddList(name string, l *BlockList) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.lists[name]; !ok {
		n.order = append(n.order, name)
	}
	n.lists[name] = l
}

// List returns the list called name or nil.
func (n *Node) List(name string) *BlockList {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.lists[name]
}

// ListNames returns list names in creation order.
func (n *Node) ListNames() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out
}

// SortedListNames returns list names alphabetically.
func (n *Node) SortedListNames() []string {
	names := n.ListNames()
	sort.Strings(names)
	return names
}

// SetStructureReady marks whether every list has a known structure.
// Stylers refuse to bind until it is set.
func (n *Node) SetStructureReady(ready bool) {
	n.mu.Lock()
	n.ready = ready
	n.mu.Unlock()
}

func (n *Node) IsStructureReady() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ready
}

// Clear empties every list, keeping names and structures.
func (n *Node) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, l := range n.lists {
		l.Clear()
	}
}
