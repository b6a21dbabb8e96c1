// Package tui is a terminal viewer drawing styler output with braille
// characters.
package tui

import (
	"os"
	"sync/atomic"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"geostyle/internal/config"
	"geostyle/internal/extent"
	"geostyle/internal/ingest"
	"geostyle/internal/logging"
	"geostyle/internal/scene"
	"geostyle/internal/style"
	"geostyle/internal/texture"
)

// Options configure a viewer.
type Options struct {
	Config config.Config
	// Path is loaded at start when set.
	Path string
	// Demo adds a synthetic textured coverage.
	Demo bool
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	zoom    float64
	offsetX int
	offsetY int

	status string

	// File explorer
	cwd     string
	l       list.Model
	selPath string

	// Scene
	scene   *scene.Scene
	backend *texture.ImageBackend
	palette ingest.Palette
	current *scene.Item // file or pasted item
	bounds  extent.SpatialExtent
	// vertices of points, lines and polygons, for hover and inspect
	vertices [][2]float64

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// hidden layers; see layerOf
	hidden [layerCount]bool

	inspectPopup string

	// hover state
	hovering    bool
	hoverMicX   int
	hoverMicY   int
	hoverHasGeo bool
	hoverX      float64
	hoverY      float64

	// styler inspector
	showStylers bool
	tbl         table.Model

	watcher  *fsnotify.Watcher
	watchDir string
	// shared with the running watch command
	watched *atomic.Pointer[string]
}

func New(opts Options) Model {
	cfg := opts.Config
	m := Model{
		helpVisible: true,
		zoom:        1.0,
		status:      "stylerview ready",
		watched:     new(atomic.Pointer[string]),
	}
	m.cwd, _ = os.Getwd()

	var err error
	if m.palette, err = cfg.Palette(); err != nil {
		m.palette = ingest.DefaultPalette
		m.status = err.Error()
	}
	pad, _ := cfg.PaddingMode()
	m.backend = texture.NewImageBackend(cfg.Texture.NPOT)
	m.scene = scene.New(texture.NewCache(m.backend, texture.WithPadding(pad)))
	if proj, err := cfg.ProjectionValue(); err == nil {
		m.scene.SetProjection(proj)
	}

	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste WKT here (POINT, LINESTRING, POLYGON, MULTI*, GEOMETRYCOLLECTION). Enter renders; Esc cancels."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	m.tbl = table.New(table.WithFocused(true), table.WithColumns(stylerColumns))
	m.tbl.SetHeight(12)

	if cfg.Watch {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			logging.Logger().Warn("file watch unavailable", "err", err)
		} else {
			m.watcher = w
		}
	}

	m.refreshDir()
	if opts.Demo {
		m.addDemo()
	}
	if opts.Path != "" {
		m.loadPath(opts.Path)
	}
	return m
}

func (m Model) Init() tea.Cmd { return m.watchCmd() }

// Close releases the watcher and the texture cache.
func (m Model) Close() error {
	if m.watcher != nil {
		m.watcher.Close()
	}
	return m.scene.Close()
}

// addDemo adds the synthetic coverage as its own item.
func (m *Model) addDemo() {
	it := scene.NewItem("demo", scene.NewProvider("demo", ingest.SyntheticGrid(ingest.DefaultGridSpec)))
	for _, sym := range ingest.DefaultStyles(it.Provider().DataNode(), m.palette) {
		if _, err := it.AddStyler(sym); err != nil {
			m.status = err.Error()
			return
		}
	}
	m.scene.AddItem(it)
	m.refreshScene()
}

// layers toggled by the number keys
const (
	layerPoints = iota
	layerLines
	layerPolygons
	layerCoverage
	layerCount
)

func layerOf(k style.Kind) int {
	switch k {
	case style.KindPoint, style.KindLabel:
		return layerPoints
	case style.KindLine:
		return layerLines
	case style.KindPolygon:
		return layerPolygons
	}
	return layerCoverage
}
