package tui

import (
	"context"
	"sort"
	"strings"

	"geostyle/internal/extent"
	"geostyle/internal/logging"
	"geostyle/internal/style"
)

// view maps scene coordinates into a w x h cell area, with zoom around the
// center and a pan offset in cells.
type view struct {
	box        extent.SpatialExtent
	zoom       float64
	offX, offY int
	w, h       int
}

func (m Model) viewport(w, h int) view {
	return view{box: m.bounds, zoom: m.zoom, offX: m.offsetX, offY: m.offsetY, w: w, h: h}
}

func (v view) valid() bool {
	return v.box.MaxX > v.box.MinX && v.box.MaxY > v.box.MinY
}

func (v view) normalized(x, y float64) (float64, float64) {
	nx := (x - v.box.MinX) / (v.box.MaxX - v.box.MinX)
	ny := (y - v.box.MinY) / (v.box.MaxY - v.box.MinY)
	return 0.5 + (nx-0.5)*v.zoom, 0.5 + (ny-0.5)*v.zoom
}

// micro maps (x, y) into the 2x4 micro-pixel grid of the braille canvas.
func (v view) micro(x, y float64) (int, int, bool) {
	if !v.valid() {
		return 0, 0, false
	}
	zx, zy := v.normalized(x, y)
	sx := int(zx*float64(v.w*2-1)) + v.offX*2
	sy := int((1.0-zy)*float64(v.h*4-1)) + v.offY*4
	return sx, sy, true
}

// cell maps (x, y) to a cell.
func (v view) cell(x, y float64) (int, int, bool) {
	if !v.valid() {
		return 0, 0, false
	}
	zx, zy := v.normalized(x, y)
	return int(zx*float64(v.w-1)) + v.offX, int((1.0-zy)*float64(v.h-1)) + v.offY, true
}

// unproject converts a cell back to scene coordinates.
func (v view) unproject(cx, cy int) (float64, float64, bool) {
	if !v.valid() || v.w <= 1 || v.h <= 1 {
		return 0, 0, false
	}
	zx := float64(cx-v.offX) / float64(v.w-1)
	zy := 1.0 - float64(cy-v.offY)/float64(v.h-1)
	nx := 0.5 + (zx-0.5)/v.zoom
	ny := 0.5 + (zy-0.5)/v.zoom
	return v.box.MinX + nx*(v.box.MaxX-v.box.MinX), v.box.MinY + ny*(v.box.MaxY-v.box.MinY), true
}

// refreshScene recomputes bounds, vertices and the styler table after the
// scene changed.
func (m *Model) refreshScene() {
	box, err := m.scene.ComputeBounds(context.Background())
	if err != nil {
		m.status = "bounds: " + err.Error()
		return
	}
	// give single points and straight lines some room
	if box.MaxX == box.MinX {
		box.MinX, box.MaxX = box.MinX-1, box.MaxX+1
	}
	if box.MaxY == box.MinY {
		box.MinY, box.MaxY = box.MinY-1, box.MaxY+1
	}
	m.bounds = *box
	m.vertices = nil
	for _, it := range m.scene.Root.Visible() {
		for _, st := range it.Stylers() {
			_, err := walkPrimitives(st, func(g *style.PrimitiveGraphic) {
				m.vertices = append(m.vertices, [2]float64{g.X, g.Y})
			})
			if err != nil {
				logging.Logger().Warn("walk primitives", "item", it.Name, "kind", st.Kind(), "err", err)
			}
		}
	}
	m.refreshStylerTable()
}

// walkPrimitives calls fn for every vector primitive of st and counts them.
// Grid, raster and texture stylers are not walked.
func walkPrimitives(st style.Styler, fn func(*style.PrimitiveGraphic)) (int, error) {
	st.ResetIterators()
	defer st.ResetIterators()
	n := 0
	visit := func(g *style.PrimitiveGraphic) {
		n++
		if fn != nil {
			fn(g)
		}
	}
	switch s := st.(type) {
	case *style.PointStyler:
		for {
			p, err := s.NextPoint()
			if err != nil || p == nil {
				return n, err
			}
			visit(&p.PrimitiveGraphic)
		}
	case *style.LineStyler:
		for {
			p, err := s.NextPoint()
			if err != nil || p == nil {
				return n, err
			}
			visit(&p.PrimitiveGraphic)
		}
	case *style.PolygonStyler:
		for {
			ok, err := s.NextPolygon()
			if err != nil || !ok {
				return n, err
			}
			for {
				p, err := s.NextPoint()
				if err != nil {
					return n, err
				}
				if p == nil {
					break
				}
				visit(&p.PrimitiveGraphic)
			}
		}
	}
	return n, nil
}

// drawScene draws every visible styler onto c. The first error stops the
// drawing.
func (m Model) drawScene(c *canvas, v view) error {
	for _, it := range m.scene.Root.Visible() {
		for _, st := range it.Stylers() {
			if m.hidden[layerOf(st.Kind())] {
				continue
			}
			if err := m.drawStyler(c, v, st); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m Model) drawStyler(c *canvas, v view, st style.Styler) error {
	st.ResetIterators()
	defer st.ResetIterators()
	switch s := st.(type) {
	case *style.PointStyler:
		return drawPoints(c, v, s)
	case *style.LineStyler:
		return drawLines(c, v, s)
	case *style.LabelStyler:
		return drawLabels(c, v, s)
	case *style.PolygonStyler:
		return drawPolygons(c, v, s)
	case *style.GridStyler:
		return drawGrids(c, v, s)
	case *style.TextureStyler:
		return m.drawTextures(c, v, s)
	}
	// rasters carry no geometry; they are shown draped by texture stylers
	return nil
}

func drawPoints(c *canvas, v view, s *style.PointStyler) error {
	for {
		p, err := s.NextPoint()
		if err != nil || p == nil {
			return err
		}
		mx, my, ok := v.micro(p.X, p.Y)
		if !ok {
			continue
		}
		col := hexColor(p.R, p.G, p.B)
		r := max(0, int(p.Size)-1)
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				c.setPixel(mx+dx, my+dy, col)
			}
		}
	}
}

func drawLines(c *canvas, v view, s *style.LineStyler) error {
	var prev *[2]int
	for {
		p, err := s.NextPoint()
		if err != nil || p == nil {
			return err
		}
		if p.Break {
			prev = nil
		}
		mx, my, ok := v.micro(p.X, p.Y)
		if !ok {
			continue
		}
		if prev != nil {
			c.line(prev[0], prev[1], mx, my, hexColor(p.R, p.G, p.B))
		}
		prev = &[2]int{mx, my}
	}
}

func drawLabels(c *canvas, v view, s *style.LabelStyler) error {
	for {
		l, err := s.NextLabel()
		if err != nil || l == nil {
			return err
		}
		if l.Text == "" {
			continue
		}
		cx, cy, ok := v.cell(l.X, l.Y)
		if !ok {
			continue
		}
		c.label(cx+1, cy, l.Text, hexColor(l.R, l.G, l.B))
	}
}

type ring struct {
	pts          [][2]int
	fill, stroke string
	// holes have a transparent fill and are cut out of the other rings
	hole bool
}

func drawPolygons(c *canvas, v view, s *style.PolygonStyler) error {
	var rings []ring
	for {
		ok, err := s.NextPolygon()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		var r ring
		for {
			p, err := s.NextPoint()
			if err != nil {
				return err
			}
			if p == nil {
				break
			}
			if p.PolygonBreak {
				r.hole = p.A <= 0
				r.fill = hexColor(p.R, p.G, p.B)
				r.stroke = hexColor(p.Stroke[0], p.Stroke[1], p.Stroke[2])
			}
			if mx, my, ok := v.micro(p.X, p.Y); ok {
				r.pts = append(r.pts, [2]int{mx, my})
			}
		}
		if len(r.pts) >= 3 {
			rings = append(rings, r)
		}
	}
	fillRings(c, rings)
	for _, r := range rings {
		for i := range r.pts {
			a, b := r.pts[i], r.pts[(i+1)%len(r.pts)]
			c.line(a[0], a[1], b[0], b[1], r.stroke)
		}
	}
	return nil
}

// fillRings fills the rings with the even-odd rule one micro-pixel
// scanline at a time, leaving the inside of holes empty.
func fillRings(c *canvas, rings []ring) {
	w := c.w * 2
	row := make([]string, w)
	var xs []int
	for y := 0; y < c.h*4; y++ {
		clear(row)
		for _, hole := range []bool{false, true} {
			for _, r := range rings {
				if r.hole != hole {
					continue
				}
				xs = crossings(r.pts, y, xs[:0])
				for i := 0; i+1 < len(xs); i += 2 {
					for x := max(0, xs[i]); x <= min(w-1, xs[i+1]); x++ {
						row[x] = r.fill
						if hole {
							row[x] = ""
						}
					}
				}
			}
		}
		for x, col := range row {
			if col != "" {
				c.setPixel(x, y, col)
			}
		}
	}
}

// crossings appends the sorted x positions where scanline y crosses pts.
func crossings(pts [][2]int, y int, xs []int) []int {
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		if a[1] == b[1] {
			continue
		}
		if (y >= a[1] && y < b[1]) || (y >= b[1] && y < a[1]) {
			t := float64(y-a[1]) / float64(b[1]-a[1])
			xs = append(xs, int(float64(a[0])+t*float64(b[0]-a[0])))
		}
	}
	sort.Ints(xs)
	return xs
}

func drawGrids(c *canvas, v view, s *style.GridStyler) error {
	for {
		patch, err := s.NextGrid()
		if err != nil || patch == nil {
			return err
		}
		above := make([]*[2]int, patch.Width)
		var prev *[2]int
		for {
			p, err := s.NextPoint()
			if err != nil {
				return err
			}
			if p == nil {
				break
			}
			if p.GridBreak {
				prev = nil
			}
			u := int(p.TX*float32(patch.Width-1) + 0.5)
			mx, my, ok := v.micro(p.X, p.Y)
			if !ok {
				continue
			}
			col := hexColor(p.R, p.G, p.B)
			cur := &[2]int{mx, my}
			if prev != nil {
				c.line(prev[0], prev[1], mx, my, col)
			}
			if u >= 0 && u < len(above) {
				if a := above[u]; a != nil {
					c.line(a[0], a[1], mx, my, col)
				}
				above[u] = cur
			}
			prev = cur
		}
	}
}

// drawTextures fills the cells under every grid quad with the texel at
// the quad center.
func (m Model) drawTextures(c *canvas, v view, s *style.TextureStyler) error {
	for {
		patch, err := s.NextTile()
		if err != nil || patch == nil {
			return err
		}
		h, err := m.scene.Cache().AcquirePatch(s.Symbolizer(), s, patch)
		if err != nil {
			return err
		}
		img, ok := m.backend.Image(h.ID)
		if !ok {
			continue
		}
		gw, gl := patch.Grid.Width, patch.Grid.Length
		for q := 0; q+1 < gl; q++ {
			for u := 0; u+1 < gw; u++ {
				a, err := s.GridPoint(u, q)
				if err != nil {
					return err
				}
				ax, ay, ok := v.cell(a.X, a.Y)
				if !ok {
					continue
				}
				b, err := s.GridPoint(u+1, q+1)
				if err != nil {
					return err
				}
				bx, by, _ := v.cell(b.X, b.Y)

				tu, tv := h.TexCoords((float64(u)+0.5)/float64(gw-1), (float64(q)+0.5)/float64(gl-1))
				px := min(img.Rect.Dx()-1, int(tu*float64(img.Rect.Dx())))
				py := min(img.Rect.Dy()-1, int(tv*float64(img.Rect.Dy())))
				texel := img.NRGBAAt(px, py)
				if texel.A == 0 {
					continue
				}
				c.fillCells(ax, ay, bx, by, hexColor(float32(texel.R)/255, float32(texel.G)/255, float32(texel.B)/255))
			}
		}
	}
}

func (m Model) renderMap(w, h int) (string, error) {
	c := newCanvas(w, h)
	err := m.drawScene(c, m.viewport(w, h))
	if m.hovering {
		if cx, cy := m.hoverMicX/2, m.hoverMicY/4; c.inside(cx, cy) {
			c.text[cy][cx] = '◯'
			c.fg[cy][cx] = "#FFA500"
		}
	}
	return strings.Join(c.lines(), "\n"), err
}

// nearestVertex returns the vertex closest to micro-pixel (mx, my).
func (m Model) nearestVertex(v view, mx, my int) ([2]float64, int, int, bool) {
	best := -1
	var bp [2]float64
	var bx, by int
	for _, p := range m.vertices {
		x, y, ok := v.micro(p[0], p[1])
		if !ok {
			continue
		}
		d := (x-mx)*(x-mx) + (y-my)*(y-my)
		if best < 0 || d < best {
			best, bp, bx, by = d, p, x, y
		}
	}
	return bp, bx, by, best >= 0
}
