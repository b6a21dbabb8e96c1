package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"geostyle/internal/extent"
)

func TestCanvasPixels(t *testing.T) {
	c := newCanvas(2, 1)
	c.setPixel(0, 0, "#ffffff")
	c.setPixel(3, 3, "")
	c.setPixel(-1, 0, "#000000")
	c.setPixel(4, 0, "#000000")

	assert.Equal(t, uint8(0x01), c.mask[0][0])
	assert.Equal(t, uint8(0x80), c.mask[0][1])
	assert.Equal(t, "#ffffff", c.fg[0][0])
	assert.Equal(t, "", c.fg[0][1])
	assert.Equal(t, '⠁', c.glyph(0, 0))
	assert.Equal(t, '⢀', c.glyph(1, 0))
}

func TestCanvasLine(t *testing.T) {
	c := newCanvas(2, 1)
	c.line(0, 0, 3, 0, "")
	assert.Equal(t, uint8(0x09), c.mask[0][0])
	assert.Equal(t, uint8(0x09), c.mask[0][1])

	c = newCanvas(1, 1)
	c.line(0, 3, 0, 0, "")
	assert.Equal(t, uint8(0x47), c.mask[0][0])
}

func TestCanvasTextAndFill(t *testing.T) {
	c := newCanvas(6, 2)
	c.label(4, 0, "abc", "#ff0000")
	c.label(0, 5, "out", "")
	c.fillCells(2, 1, 0, 1, "#00ff00")
	assert.Equal(t, 'a', c.text[0][4])
	assert.Equal(t, 'b', c.text[0][5])
	assert.Equal(t, "#00ff00", c.bg[1][0])
	assert.Equal(t, "#00ff00", c.bg[1][2])
	assert.Equal(t, "", c.bg[1][3])

	lines := c.lines()
	assert.Len(t, lines, 2)
	assert.True(t, strings.Contains(lines[0], "ab"))
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, "#ff8000", hexColor(1, 0.5, 0))
	assert.Equal(t, "#000000", hexColor(-1, float32NaN(), 0))
	assert.Equal(t, "#ffffff", hexColor(2, 2, 2))
}

func float32NaN() float32 {
	var zero float32
	return zero / zero
}

func TestViewport(t *testing.T) {
	v := view{box: *extent.Bounds("", 0, 0, 0, 10, 10, 0), zoom: 1, w: 11, h: 11}
	x, y, ok := v.cell(0, 0)
	assert.True(t, ok)
	assert.Equal(t, [2]int{0, 10}, [2]int{x, y})
	x, y, _ = v.cell(10, 10)
	assert.Equal(t, [2]int{10, 0}, [2]int{x, y})
	mx, my, _ := v.micro(10, 0)
	assert.Equal(t, [2]int{21, 43}, [2]int{mx, my})

	gx, gy, ok := v.unproject(5, 5)
	assert.True(t, ok)
	assert.InDelta(t, 5, gx, 1e-9)
	assert.InDelta(t, 5, gy, 1e-9)

	v.zoom, v.offX = 2, 1
	x, y, _ = v.cell(5, 5)
	assert.Equal(t, [2]int{6, 5}, [2]int{x, y})
	gx, gy, _ = v.unproject(6, 5)
	assert.InDelta(t, 5, gx, 1e-9)
	assert.InDelta(t, 5, gy, 1e-9)

	_, _, ok = view{zoom: 1, w: 4, h: 4}.cell(0, 0)
	assert.False(t, ok)
}

func TestFillRingsCutsHoles(t *testing.T) {
	c := newCanvas(8, 4)
	fillRings(c, []ring{
		{pts: [][2]int{{0, 0}, {15, 0}, {15, 15}, {0, 15}}, fill: "#111111"},
		{pts: [][2]int{{4, 4}, {11, 4}, {11, 12}, {4, 12}}, hole: true},
	})
	assert.Equal(t, uint8(0xff), c.mask[0][0])
	// cell (3,2) covers micro-pixels x 6..7, y 8..11, all inside the hole
	assert.Equal(t, uint8(0), c.mask[2][3])
	assert.Equal(t, "#111111", c.fg[0][0])
}
