package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// canvas is a braille micro-pixel buffer (2x4 dots per cell) with one
// foreground and one background color per cell and a text overlay.
type canvas struct {
	w, h int // in cells
	mask [][]uint8
	fg   [][]string
	bg   [][]string
	text [][]rune
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h}
	c.mask = make([][]uint8, h)
	c.fg = make([][]string, h)
	c.bg = make([][]string, h)
	c.text = make([][]rune, h)
	for i := 0; i < h; i++ {
		c.mask[i] = make([]uint8, w)
		c.fg[i] = make([]string, w)
		c.bg[i] = make([]string, w)
		c.text[i] = make([]rune, w)
	}
	return c
}

// dot bits of the braille pattern, by [column][row] inside a cell
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func (c *canvas) inside(cx, cy int) bool {
	return cx >= 0 && cy >= 0 && cx < c.w && cy < c.h
}

// setPixel lights micro-pixel (mx, my) and colors its cell.
func (c *canvas) setPixel(mx, my int, color string) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if !c.inside(cx, cy) {
		return
	}
	c.mask[cy][cx] |= brailleBits[mx%2][my%4]
	if color != "" {
		c.fg[cy][cx] = color
	}
}

// line draws from (x0, y0) to (x1, y1) in micro-pixels with Bresenham.
func (c *canvas) line(x0, y0, x1, y1 int, color string) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		c.setPixel(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// fillCells paints the background of the cell rectangle [x0,x1]x[y0,y1].
func (c *canvas) fillCells(x0, y0, x1, y1 int, color string) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := max(0, y0); y <= min(c.h-1, y1); y++ {
		for x := max(0, x0); x <= min(c.w-1, x1); x++ {
			c.bg[y][x] = color
		}
	}
}

// label writes s starting at cell (cx, cy).
func (c *canvas) label(cx, cy int, s, color string) {
	if cy < 0 || cy >= c.h {
		return
	}
	for _, r := range s {
		if cx >= c.w {
			return
		}
		if cx >= 0 {
			c.text[cy][cx] = r
			if color != "" {
				c.fg[cy][cx] = color
			}
		}
		cx++
	}
}

func (c *canvas) glyph(cx, cy int) rune {
	if r := c.text[cy][cx]; r != 0 {
		return r
	}
	if m := c.mask[cy][cx]; m != 0 {
		return rune(0x2800 + int(m))
	}
	return ' '
}

// lines renders the canvas, one styled run per stretch of equal colors.
func (c *canvas) lines() []string {
	out := make([]string, c.h)
	var sb, run strings.Builder
	for y := 0; y < c.h; y++ {
		sb.Reset()
		start := 0
		for x := 1; x <= c.w; x++ {
			if x < c.w && c.fg[y][x] == c.fg[y][start] && c.bg[y][x] == c.bg[y][start] {
				continue
			}
			run.Reset()
			for i := start; i < x; i++ {
				run.WriteRune(c.glyph(i, y))
			}
			sb.WriteString(cellStyle(c.fg[y][start], c.bg[y][start]).Render(run.String()))
			start = x
		}
		out[y] = sb.String()
	}
	return out
}

func cellStyle(fg, bg string) lipgloss.Style {
	s := lipgloss.NewStyle()
	if fg != "" {
		s = s.Foreground(lipgloss.Color(fg))
	}
	if bg != "" {
		s = s.Background(lipgloss.Color(bg))
	}
	return s
}

// hexColor formats 0..1 components; alpha is ignored.
func hexColor(r, g, b float32) string {
	return fmt.Sprintf("#%02x%02x%02x", unit8(r), unit8(g), unit8(b))
}

func unit8(v float32) uint8 {
	switch {
	case v <= 0 || v != v:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
