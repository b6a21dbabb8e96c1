package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"

	"geostyle/internal/data"
	"geostyle/internal/ingest"
	"geostyle/internal/logging"
	"geostyle/internal/scene"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		if e.IsDir() || !ingest.Supported(e.Name()) {
			continue
		}
		items = append(items, fileItem{
			title: e.Name(),
			desc:  strings.ToLower(filepath.Ext(e.Name())),
			path:  filepath.Join(m.cwd, e.Name()),
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).title < items[j].(fileItem).title })
	m.l.SetItems(items)
	if len(items) == 0 {
		m.status = "no supported files in current directory"
	}
}

// loadPath reads p and makes it the current item.
func (m *Model) loadPath(p string) {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	f, err := ingest.Load(p)
	if err != nil {
		m.status = "load error: " + err.Error()
		return
	}
	m.setCurrent(filepath.Base(p), p, f.Node())
	m.zoom, m.offsetX, m.offsetY = 1, 0, 0
	m.status = fmt.Sprintf("loaded: %s  pts=%d ls=%d rings=%d", filepath.Base(p), len(f.Points), len(f.Lines), len(f.Rings))
}

// setCurrent replaces the current item with a new one drawing node with
// the default styles.
func (m *Model) setCurrent(name, path string, node *data.Node) {
	if m.current != nil {
		if err := m.scene.RemoveItem(m.current); err != nil {
			logging.Logger().Warn("remove item", "name", m.current.Name, "err", err)
		}
		m.current = nil
	}
	p := scene.NewProvider(name, node)
	p.Source = path
	it := scene.NewItem(name, p)
	for _, sym := range ingest.DefaultStyles(node, m.palette) {
		if _, err := it.AddStyler(sym); err != nil {
			m.status = err.Error()
			return
		}
	}
	m.scene.AddItem(it)
	m.current = it
	m.selPath = path
	m.watch(path)
	m.refreshScene()
}

// reload re-reads the current file after it changed on disk. The stylers
// keep their symbolizers and rebuild against the new data.
func (m *Model) reload(path string) {
	if m.current == nil || m.current.Provider().Source != path {
		return
	}
	f, err := ingest.Load(path)
	if err != nil {
		// editors write in several steps; keep the last good data
		m.status = "reload error: " + err.Error()
		return
	}
	m.current.Provider().SetNode(f.Node())
	m.scene.Invalidate(m.current)
	m.refreshScene()
	m.status = "reloaded: " + filepath.Base(path)
}
