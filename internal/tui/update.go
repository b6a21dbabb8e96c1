package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"geostyle/internal/ingest"
)

const sidebarWidth = 28

// layout is the screen split shared by View and mouse handling.
type layout struct {
	contentW, contentH int
	mapX, mapY         int
	mapW, mapH         int
}

func (m Model) layout() layout {
	const headerHeight, footerHeight = 1, 2
	l := layout{
		contentW: max(10, m.width),
		contentH: max(4, m.height-headerHeight-footerHeight),
		mapY:     headerHeight,
	}
	side := 0
	if m.showSidebar {
		side = sidebarWidth
		l.mapX = sidebarWidth + 1
	}
	l.mapW = max(10, l.contentW-side-1)
	l.mapH = l.contentH
	return l
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.l.SetSize(sidebarWidth-2, m.layout().contentH-2)
	case fileChangedMsg:
		m.reload(msg.path)
		return m, m.watchCmd()
	case watchErrMsg:
		m.status = "watch: " + msg.err.Error()
		return m, m.watchCmd()
	case tea.KeyMsg:
		// keys go to the list while it filters
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			return m.updatePaste(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "1", "2", "3", "4":
			k := int(msg.String()[0] - '1')
			m.hidden[k] = !m.hidden[k]
			m.status = m.layerStatus()
		case "l":
			all := true
			for _, h := range m.hidden {
				all = all && !h
			}
			for k := range m.hidden {
				m.hidden[k] = all
			}
			m.status = m.layerStatus()
		case "+", "=":
			if m.zoom < 64 {
				m.zoom *= 1.2
				m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
			}
		case "-", "_":
			if m.zoom > 0.05 {
				m.zoom /= 1.2
				m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
			}
		case "0":
			m.zoom, m.offsetX, m.offsetY = 1, 0, 0
			m.status = "view reset"
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshDir()
			}
		case "p":
			m.pasteMode = true
			m.ta.SetValue("")
			m.ta.Focus()
			m.status = "paste mode"
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showStylers = !m.showStylers
			if m.showStylers {
				m.refreshStylerTable()
			}
		case "i":
			m.inspect()
		case "esc":
			m.inspectPopup = ""
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					m.loadPath(it.path)
				}
			}
		case "up":
			m.offsetY--
		case "down":
			m.offsetY++
		case "left":
			m.offsetX -= 2
		case "right":
			m.offsetX += 2
		}
	case tea.MouseMsg:
		m.hover(msg.X, msg.Y)
	}
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	if m.showStylers {
		var cmd tea.Cmd
		m.tbl, cmd = m.tbl.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.pasteMode = false
		m.ta.Blur()
		m.status = "view mode"
		return m, nil
	case "enter":
		w := strings.TrimSpace(m.ta.Value())
		if w == "" {
			m.status = "paste: empty"
			return m, nil
		}
		f, err := ingest.ParseWKT(w)
		if err != nil {
			m.status = "wkt error: " + err.Error()
			return m, nil
		}
		m.setCurrent("pasted", "", f.Node())
		m.zoom, m.offsetX, m.offsetY = 1, 0, 0
		m.status = fmt.Sprintf("rendered WKT  pts=%d ls=%d rings=%d", len(f.Points), len(f.Lines), len(f.Rings))
		m.pasteMode = false
		m.ta.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

func (m Model) layerStatus() string {
	on := func(k int) bool { return !m.hidden[k] }
	return fmt.Sprintf("layers: pts=%v ls=%v poly=%v cov=%v",
		on(layerPoints), on(layerLines), on(layerPolygons), on(layerCoverage))
}

// hover tracks the mouse over the map and snaps the marker to the nearest
// vertex.
func (m *Model) hover(x, y int) {
	l := m.layout()
	cx, cy := x-l.mapX, y-l.mapY
	if cx < 0 || cy < 0 || cx >= l.mapW || cy >= l.mapH {
		m.hovering = false
		m.hoverHasGeo = false
		return
	}
	m.hovering = true
	v := m.viewport(l.mapW, l.mapH)
	m.hoverX, m.hoverY, m.hoverHasGeo = v.unproject(cx, cy)
	m.hoverMicX, m.hoverMicY = cx*2, cy*4
	if _, bx, by, ok := m.nearestVertex(v, cx*2, cy*4); ok {
		m.hoverMicX, m.hoverMicY = bx, by
	}
}

// inspect fills the popup with the vertex nearest to the map center, or to
// the mouse when hovering.
func (m *Model) inspect() {
	l := m.layout()
	v := m.viewport(l.mapW, l.mapH)
	mx, my := l.mapW, l.mapH*2
	if m.hovering {
		mx, my = m.hoverMicX, m.hoverMicY
	}
	p, _, _, ok := m.nearestVertex(v, mx, my)
	if !ok {
		m.inspectPopup = "no feature nearby"
		m.status = m.inspectPopup
		return
	}
	name := "<none>"
	if m.current != nil {
		name = m.current.Name
	}
	if m.selPath != "" {
		name = filepath.Base(m.selPath)
	}
	stats := m.scene.Cache().Stats()
	m.inspectPopup = strings.Join([]string{
		"item: " + name,
		fmt.Sprintf("bbox: [%.5f, %.5f, %.5f, %.5f]", m.bounds.MinX, m.bounds.MinY, m.bounds.MaxX, m.bounds.MaxY),
		"crs: " + m.bounds.Crs,
		fmt.Sprintf("vertices: %d", len(m.vertices)),
		fmt.Sprintf("nearest: x=%.6f y=%.6f", p[0], p[1]),
		fmt.Sprintf("textures: %d entries, %d syntheses", stats.Entries, stats.Syntheses),
	}, "\n")
	m.status = "inspect popup"
}
