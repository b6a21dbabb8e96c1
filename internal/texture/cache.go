package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/draw"

	"geostyle/internal/data"
	"geostyle/internal/logging"
	"geostyle/internal/style"
)

var (
	// ErrBackend wraps failures of the resource backend. The entry stays
	// dirty and the next Acquire retries.
	ErrBackend   = errors.New("texture: backend failure")
	ErrEmptyTile = errors.New("texture: tile has no pixels")
	ErrClosed    = errors.New("texture: cache closed")
)

// PixelSource reads the pixels of the current tile, components in 0..255.
// Raster and texture stylers implement it.
type PixelSource interface {
	Pixel(x, y int) (*style.RasterPixelGraphic, error)
}

// PaddingMode selects how images are fitted to power-of-two sizes.
type PaddingMode int

const (
	// PadTransparent grows the image with transparent white texels on the
	// right and bottom; the padding is reported to the tile.
	PadTransparent PaddingMode = iota
	// Resample stretches the image bilinearly; no padding is reported.
	Resample
)

func (m PaddingMode) String() string {
	if m == Resample {
		return "resample"
	}
	return "transparent"
}

// ParsePaddingMode accepts the String forms.
func ParsePaddingMode(s string) (PaddingMode, error) {
	switch s {
	case "", "transparent":
		return PadTransparent, nil
	case "resample":
		return Resample, nil
	}
	return PadTransparent, fmt.Errorf("texture: unknown padding mode %q", s)
}

type Option func(*Cache)

func WithPadding(m PaddingMode) Option {
	return func(c *Cache) { c.padding = m }
}

// Handle is what consumers bind: a resource and the layout of the tile in it.
type Handle struct {
	ID            ResourceID
	Width         int
	Height        int
	WidthPadding  int
	HeightPadding int
}

// TexCoords maps normalized tile coordinates to normalized texture
// coordinates, skipping the padding.
func (h Handle) TexCoords(u, v float64) (float64, float64) {
	if h.Width <= 0 || h.Height <= 0 {
		return u, v
	}
	return u * float64(h.Width-h.WidthPadding) / float64(h.Width),
		v * float64(h.Height-h.HeightPadding) / float64(h.Height)
}

type entry struct {
	handle      Handle
	created     bool
	needsUpdate bool
}

// Stats counts cache activity.
type Stats struct {
	Symbolizers int
	Entries     int
	Syntheses   int
	Failures    int
}

// Cache maps (symbolizer, block) to a backend resource. Entries are created
// on first Acquire and live until released; the cache never evicts on its
// own.
//
// One mutex guards the whole table, including synthesis and backend calls,
// so ingestion and rendering goroutines may share a Cache.
type Cache struct {
	mu      sync.Mutex
	backend Backend
	padding PaddingMode
	table   map[style.Symbolizer]map[*data.Block]*entry
	stats   Stats
	closed  bool
}

func NewCache(backend Backend, opts ...Option) *Cache {
	c := &Cache{
		backend: backend,
		table:   make(map[style.Symbolizer]map[*data.Block]*entry),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Acquire returns the resource for tile, synthesizing it from src when the
// entry is new or dirty. The tile paddings are updated from the entry.
func (c *Cache) Acquire(sym style.Symbolizer, src PixelSource, tile *style.RasterTileGraphic) (Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acquire(sym, src, tile, false)
}

// AcquirePatch is Acquire for a texture patch; a patch flagged Updated is
// resynthesized.
func (c *Cache) AcquirePatch(sym style.Symbolizer, src PixelSource, patch *style.TexturePatchGraphic) (Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acquire(sym, src, &patch.Texture, patch.Updated)
}

func (c *Cache) acquire(sym style.Symbolizer, src PixelSource, tile *style.RasterTileGraphic, force bool) (Handle, error) {
	if c.closed {
		return Handle{}, ErrClosed
	}
	blocks := c.table[sym]
	if blocks == nil {
		blocks = make(map[*data.Block]*entry)
		c.table[sym] = blocks
	}
	e := blocks[tile.Block]
	if e == nil {
		e = &entry{needsUpdate: true}
		blocks[tile.Block] = e
	}
	if force {
		e.needsUpdate = true
	}
	if e.needsUpdate {
		if err := c.synthesize(e, src, tile); err != nil {
			return Handle{}, err
		}
	}
	tile.WidthPadding = e.handle.WidthPadding
	tile.HeightPadding = e.handle.HeightPadding
	return e.handle, nil
}

func (c *Cache) synthesize(e *entry, src PixelSource, tile *style.RasterTileGraphic) error {
	w, h := tile.Width, tile.Height
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyTile, w, h)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px, err := src.Pixel(x, y)
			if err != nil {
				return fmt.Errorf("pixel %d,%d: %w", x, y, err)
			}
			img.SetNRGBA(x, y, color.NRGBA{R: clamp8(px.R), G: clamp8(px.G), B: clamp8(px.B), A: clamp8(px.A)})
		}
	}

	out, handle := c.fit(img)
	// the old texture stays usable until its replacement exists
	id, err := c.backend.Create(handle.Width, handle.Height, out.Pix)
	if err != nil {
		c.stats.Failures++
		logging.Logger().Warn("texture upload failed", "width", handle.Width, "height", handle.Height, "err", err)
		return fmt.Errorf("%w: %w", ErrBackend, err)
	}
	if e.created {
		if err := c.backend.Delete(e.handle.ID); err != nil {
			logging.Logger().Warn("texture delete failed", "id", e.handle.ID, "err", err)
		}
	}
	handle.ID = id
	e.handle = handle
	e.created = true
	e.needsUpdate = false
	c.stats.Syntheses++
	logging.Logger().Debug("texture synthesized", "id", id, "width", w, "height", h,
		"wpad", handle.WidthPadding, "hpad", handle.HeightPadding)
	return nil
}

// fit enlarges img to power-of-two sizes when the backend needs them.
func (c *Cache) fit(img *image.NRGBA) (*image.NRGBA, Handle) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if c.backend.NPOTSupported() || (isPow2(w) && isPow2(h)) {
		return img, Handle{Width: w, Height: h}
	}
	pw, ph := nextPow2(w), nextPow2(h)
	dst := image.NewNRGBA(image.Rect(0, 0, pw, ph))
	if c.padding == Resample {
		draw.BiLinear.Scale(dst, dst.Rect, img, img.Rect, draw.Src, nil)
		return dst, Handle{Width: pw, Height: ph}
	}
	draw.Draw(dst, dst.Rect, image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255}), image.Point{}, draw.Src)
	draw.Draw(dst, img.Rect, img, image.Point{}, draw.Src)
	return dst, Handle{Width: pw, Height: ph, WidthPadding: pw - w, HeightPadding: ph - h}
}

func clamp8(v float32) uint8 {
	switch {
	case v <= 0 || math.IsNaN(float64(v)):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}

// Invalidate marks the entry of (sym, block) dirty.
func (c *Cache) Invalidate(sym style.Symbolizer, block *data.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.table[sym][block]; e != nil {
		e.needsUpdate = true
	}
}

// InvalidateAll marks every entry of sym dirty.
func (c *Cache) InvalidateAll(sym style.Symbolizer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.table[sym] {
		e.needsUpdate = true
	}
}

// Release deletes every resource of sym.
func (c *Cache) Release(sym style.Symbolizer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.release(sym)
}

func (c *Cache) release(sym style.Symbolizer) error {
	var errs []error
	for _, e := range c.table[sym] {
		errs = append(errs, c.drop(e))
	}
	delete(c.table, sym)
	return errors.Join(errs...)
}

// ReleaseBlock deletes the resource of (sym, block).
func (c *Cache) ReleaseBlock(sym style.Symbolizer, block *data.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	blocks := c.table[sym]
	e := blocks[block]
	if e == nil {
		return nil
	}
	delete(blocks, block)
	if len(blocks) == 0 {
		delete(c.table, sym)
	}
	return c.drop(e)
}

func (c *Cache) drop(e *entry) error {
	if !e.created {
		return nil
	}
	e.created = false
	if err := c.backend.Delete(e.handle.ID); err != nil {
		return fmt.Errorf("%w: %w", ErrBackend, err)
	}
	return nil
}

// Close releases everything. Later acquisitions fail with ErrClosed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for sym := range c.table {
		errs = append(errs, c.release(sym))
	}
	c.closed = true
	return errors.Join(errs...)
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Symbolizers = len(c.table)
	for _, blocks := range c.table {
		s.Entries += len(blocks)
	}
	return s
}
