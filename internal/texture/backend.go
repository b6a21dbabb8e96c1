// Package texture keeps the images synthesized from raster tiles, keyed by
// symbolizer and block, and hands them to a resource backend.
package texture

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// ResourceID names a backend resource.
type ResourceID uint64

// Backend owns the derived resources. Implementations wrap a GPU texture
// API or, like ImageBackend, plain memory.
type Backend interface {
	// NPOTSupported reports whether sizes other than powers of two are accepted.
	NPOTSupported() bool
	// Create uploads a w x h non-premultiplied RGBA image.
	Create(w, h int, rgba []byte) (ResourceID, error)
	Delete(id ResourceID) error
}

var (
	ErrUnknownResource = errors.New("texture: unknown resource")
	ErrBadSize         = errors.New("texture: buffer does not match size")
)

// ImageBackend keeps textures as in-memory images.
type ImageBackend struct {
	mu     sync.Mutex
	npot   bool
	next   ResourceID
	images map[ResourceID]*image.NRGBA
}

func NewImageBackend(npot bool) *ImageBackend {
	return &ImageBackend{npot: npot, images: make(map[ResourceID]*image.NRGBA)}
}

func (b *ImageBackend) NPOTSupported() bool { return b.npot }

func (b *ImageBackend) Create(w, h int, rgba []byte) (ResourceID, error) {
	if w <= 0 || h <= 0 || len(rgba) != w*h*4 {
		return 0, fmt.Errorf("%w: %dx%d with %d bytes", ErrBadSize, w, h, len(rgba))
	}
	if !b.npot && (!isPow2(w) || !isPow2(h)) {
		return 0, fmt.Errorf("%w: %dx%d is not a power of two", ErrBadSize, w, h)
	}
	src := &image.NRGBA{Pix: rgba, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
	img := image.NewNRGBA(src.Rect)
	draw.Draw(img, img.Rect, src, image.Point{}, draw.Src)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.images[b.next] = img
	return b.next, nil
}

func (b *ImageBackend) Delete(id ResourceID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.images[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownResource, id)
	}
	delete(b.images, id)
	return nil
}

// Image returns the texture stored under id.
func (b *ImageBackend) Image(id ResourceID) (*image.NRGBA, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	img, ok := b.images[id]
	return img, ok
}

// Len returns the number of live textures.
func (b *ImageBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.images)
}

func isPow2(n int) bool { return n > 0 && n&(n-1) == 0 }

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
