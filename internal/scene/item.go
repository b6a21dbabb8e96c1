// Package scene groups data items into folders and owns what the items
// share: the texture cache and the projection.
package scene

import (
	"fmt"
	"sync"

	"geostyle/internal/data"
	"geostyle/internal/style"
)

// Provider owns the data node of a source. Loaders fill the node; the
// node can be swapped when the source is re-read.
type Provider struct {
	Name string
	// Source is the file the node was read from, if any.
	Source string

	mu   sync.RWMutex
	node *data.Node
}

func NewProvider(name string, node *data.Node) *Provider {
	if node == nil {
		node = data.NewNode()
	}
	return &Provider{Name: name, node: node}
}

func (p *Provider) DataNode() *data.Node {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.node
}

// SetNode replaces the node. Stylers pick it up on their next rebuild.
func (p *Provider) SetNode(n *data.Node) {
	p.mu.Lock()
	p.node = n
	p.mu.Unlock()
}

// Item is one drawable entry: a provider and the stylers drawing it.
type Item struct {
	Name    string
	Enabled bool

	provider *Provider
	stylers  []style.Styler
}

func NewItem(name string, p *Provider) *Item {
	return &Item{Name: name, Enabled: true, provider: p}
}

// DataProvider implements style.DataItem.
func (it *Item) DataProvider() style.DataProvider {
	if it.provider == nil {
		return nil
	}
	return it.provider
}

func (it *Item) Provider() *Provider { return it.provider }

// AddStyler creates the styler for sym and binds it to the item.
func (it *Item) AddStyler(sym style.Symbolizer) (style.Styler, error) {
	s, err := style.New(sym)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", it.Name, err)
	}
	s.SetDataItem(it)
	it.stylers = append(it.stylers, s)
	return s, nil
}

func (it *Item) Stylers() []style.Styler { return it.stylers }

// Folder is a named, recursive group of items.
type Folder struct {
	Name    string
	Enabled bool

	items   []*Item
	folders []*Folder
}

func NewFolder(name string) *Folder {
	return &Folder{Name: name, Enabled: true}
}

func (f *Folder) Add(it *Item) { f.items = append(f.items, it) }

// AddFolder creates a subfolder.
func (f *Folder) AddFolder(name string) *Folder {
	sub := NewFolder(name)
	f.folders = append(f.folders, sub)
	return sub
}

func (f *Folder) Folders() []*Folder { return f.folders }

// Remove detaches it from f or any subfolder.
func (f *Folder) Remove(it *Item) bool {
	for i, x := range f.items {
		if x == it {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true
		}
	}
	for _, sub := range f.folders {
		if sub.Remove(it) {
			return true
		}
	}
	return false
}

// Items lists every item of f and its subfolders, depth first.
func (f *Folder) Items() []*Item {
	out := append([]*Item(nil), f.items...)
	for _, sub := range f.folders {
		out = append(out, sub.Items()...)
	}
	return out
}

// Visible lists the enabled items under enabled folders.
func (f *Folder) Visible() []*Item {
	if !f.Enabled {
		return nil
	}
	var out []*Item
	for _, it := range f.items {
		if it.Enabled {
			out = append(out, it)
		}
	}
	for _, sub := range f.folders {
		out = append(out, sub.Visible()...)
	}
	return out
}
