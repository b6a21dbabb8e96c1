package scene

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"geostyle/internal/extent"
	"geostyle/internal/logging"
	"geostyle/internal/style"
	"geostyle/internal/texture"
)

var ErrNotInScene = errors.New("scene: item not in scene")

// Scene is the tree of items being drawn. Methods are safe for concurrent
// use; the stylers themselves are not, so a scene must not be drawn while
// ComputeBounds runs.
type Scene struct {
	Root *Folder

	mu         sync.Mutex
	cache      *texture.Cache
	projection style.Projection
}

func New(cache *texture.Cache) *Scene {
	return &Scene{
		Root:       NewFolder("root"),
		cache:      cache,
		projection: style.IdentityProjection{},
	}
}

func (s *Scene) Cache() *texture.Cache { return s.cache }

// SetProjection applies p to every styler, present and future.
func (s *Scene) SetProjection(p style.Projection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		p = style.IdentityProjection{}
	}
	s.projection = p
	for _, it := range s.Root.Items() {
		for _, st := range it.stylers {
			st.SetProjection(p)
		}
	}
}

// AddItem places it under the root folder.
func (s *Scene) AddItem(it *Item) {
	s.AddItemTo(s.Root, it)
}

func (s *Scene) AddItemTo(f *Folder, it *Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range it.stylers {
		st.SetProjection(s.projection)
	}
	f.Add(it)
}

// RemoveItem detaches it and evicts the textures of its stylers.
func (s *Scene) RemoveItem(it *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Root.Remove(it) {
		return ErrNotInScene
	}
	var errs []error
	for _, st := range it.stylers {
		errs = append(errs, s.evict(st.Symbolizer()))
	}
	return errors.Join(errs...)
}

// SetSymbolizer restyles st. The textures drawn with the previous
// symbolizer are released.
func (s *Scene) SetSymbolizer(st style.Styler, sym style.Symbolizer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := st.Symbolizer()
	if err := st.SetSymbolizer(sym); err != nil {
		return err
	}
	if old != nil && old != sym {
		return s.evict(old)
	}
	return nil
}

// Invalidate reports that the data of it changed: its stylers rebuild on
// next use and their textures are resynthesized.
func (s *Scene) Invalidate(it *Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range it.stylers {
		st.SetUpdated(true)
		if sym := st.Symbolizer(); sym != nil && s.cache != nil {
			s.cache.InvalidateAll(sym)
		}
	}
	logging.Logger().Info("item invalidated", "item", it.Name, "stylers", len(it.stylers))
}

func (s *Scene) evict(sym style.Symbolizer) error {
	if sym == nil || s.cache == nil {
		return nil
	}
	return s.cache.Release(sym)
}

// ComputeBounds recomputes the bounding box of every visible styler, one
// goroutine per styler, and returns their union. Stylers without
// primitives are skipped; stylers whose data is not ready yet too. Raster
// boxes are in pixel space and stay out of the union.
//
// Stylers sharing a data node read its lists concurrently, so the scene
// data must not be edited while ComputeBounds runs.
func (s *Scene) ComputeBounds(ctx context.Context) (*extent.SpatialExtent, error) {
	s.mu.Lock()
	var stylers []style.Styler
	for _, it := range s.Root.Visible() {
		stylers = append(stylers, it.stylers...)
	}
	s.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, st := range stylers {
		st := st
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := st.ComputeBoundingBox()
			if errors.Is(err, style.ErrNotReady) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s styler: %w", st.Kind(), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	box := extent.New()
	for _, st := range stylers {
		if st.Kind() == style.KindRaster {
			continue
		}
		b := st.BoundingBox()
		if b == nil {
			continue
		}
		if err := box.Add(b); err != nil {
			return nil, err
		}
	}
	logging.Logger().Debug("scene bounds", "stylers", len(stylers), "extent", box.String())
	return box, nil
}

// Close releases the texture cache.
func (s *Scene) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cache == nil {
		return nil
	}
	logging.Logger().Info("closing scene cache", "stats", fmt.Sprintf("%+v", s.cache.Stats()))
	return s.cache.Close()
}
