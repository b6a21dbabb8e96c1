// Package extent provides the axis-aligned bounding volume used by stylers
// and scenes to track the spatial coverage of their data.
package extent

import (
	"errors"
	"fmt"
	"math"
)

// ErrCrsMismatch is returned when two extents tagged with different
// coordinate reference systems are combined or compared.
var ErrCrsMismatch = errors.New("extent: CRS must match")

// Vector3 is a point or size in extent space.
type Vector3 struct {
	X, Y, Z float64
}

// SpatialExtent is an envelope with an optional CRS tag.
// The zero value (all bounds 0) is the null extent.
type SpatialExtent struct {
	Crs  string
	MinX float64
	MinY float64
	MinZ float64
	MaxX float64
	MaxY float64
	MaxZ float64

	TilingEnabled bool
	XTiles        int
	YTiles        int
	ZTiles        int
}

// New returns a null extent with a single tile per axis.
func New() *SpatialExtent {
	return &SpatialExtent{XTiles: 1, YTiles: 1, ZTiles: 1}
}

// Bounds returns an extent with the given corners.
func Bounds(crs string, minX, minY, minZ, maxX, maxY, maxZ float64) *SpatialExtent {
	e := New()
	e.Crs = crs
	e.MinX, e.MinY, e.MinZ = minX, minY, minZ
	e.MaxX, e.MaxY, e.MaxZ = maxX, maxY, maxZ
	return e
}

// Copy returns an exact copy of e.
func (e *SpatialExtent) Copy() *SpatialExtent {
	c := *e
	return &c
}

// Set replaces the bounds and CRS of e with those of o.
func (e *SpatialExtent) Set(o *SpatialExtent) {
	e.Crs = o.Crs
	e.MinX, e.MinY, e.MinZ = o.MinX, o.MinY, o.MinZ
	e.MaxX, e.MaxY, e.MaxZ = o.MaxX, o.MaxY, o.MaxZ
}

// Reset turns e back into the null extent, keeping CRS and tiling.
func (e *SpatialExtent) Reset() {
	e.MinX, e.MinY, e.MinZ = 0, 0, 0
	e.MaxX, e.MaxY, e.MaxZ = 0, 0, 0
}

func (e *SpatialExtent) Center() Vector3 {
	return Vector3{
		X: (e.MinX + e.MaxX) / 2,
		Y: (e.MinY + e.MaxY) / 2,
		Z: (e.MinZ + e.MaxZ) / 2,
	}
}

func (e *SpatialExtent) Size() Vector3 {
	return Vector3{X: e.MaxX - e.MinX, Y: e.MaxY - e.MinY, Z: e.MaxZ - e.MinZ}
}

// DiagonalDistance is the length of the min-max diagonal.
func (e *SpatialExtent) DiagonalDistance() float64 {
	s := e.Size()
	return math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)
}

// IsNull reports whether e is the all-zero sentinel.
func (e *SpatialExtent) IsNull() bool {
	return e.MinX == 0 && e.MinY == 0 && e.MinZ == 0 &&
		e.MaxX == 0 && e.MaxY == 0 && e.MaxZ == 0
}

// Seed collapses e onto p. Folds seed from their first point so that a
// first point at the origin is kept.
func (e *SpatialExtent) Seed(p Vector3) {
	e.MinX, e.MinY, e.MinZ = p.X, p.Y, p.Z
	e.MaxX, e.MaxY, e.MaxZ = p.X, p.Y, p.Z
}

// ResizeToContain grows e so that p lies inside it.
// The first point added to a null extent becomes both corners.
func (e *SpatialExtent) ResizeToContain(p Vector3) {
	if e.IsNull() {
		e.Seed(p)
		return
	}
	e.Extend(p)
}

// Extend grows e so that p lies inside it, treating e as a real box even
// when it is all zero.
func (e *SpatialExtent) Extend(p Vector3) {
	e.MinX = math.Min(e.MinX, p.X)
	e.MinY = math.Min(e.MinY, p.Y)
	e.MinZ = math.Min(e.MinZ, p.Z)
	e.MaxX = math.Max(e.MaxX, p.X)
	e.MaxY = math.Max(e.MaxY, p.Y)
	e.MaxZ = math.Max(e.MaxZ, p.Z)
}

// Add replaces e with the smallest extent containing both e and o.
// A null operand contributes nothing.
func (e *SpatialExtent) Add(o *SpatialExtent) error {
	if err := e.CheckCrs(o); err != nil {
		return err
	}
	if o.IsNull() {
		return nil
	}
	if e.Crs == "" {
		e.Crs = o.Crs
	}
	if e.IsNull() {
		e.MinX, e.MinY, e.MinZ = o.MinX, o.MinY, o.MinZ
		e.MaxX, e.MaxY, e.MaxZ = o.MaxX, o.MaxY, o.MaxZ
		return nil
	}
	e.MinX = math.Min(e.MinX, o.MinX)
	e.MinY = math.Min(e.MinY, o.MinY)
	e.MinZ = math.Min(e.MinZ, o.MinZ)
	e.MaxX = math.Max(e.MaxX, o.MaxX)
	e.MaxY = math.Max(e.MaxY, o.MaxY)
	e.MaxZ = math.Max(e.MaxZ, o.MaxZ)
	return nil
}

// Intersect shrinks e to its overlap with o.
// Disjoint extents leave e null.
func (e *SpatialExtent) Intersect(o *SpatialExtent) error {
	if err := e.CheckCrs(o); err != nil {
		return err
	}
	if e.IsNull() {
		return nil
	}
	if o.IsNull() {
		e.Reset()
		return nil
	}
	minX, maxX := math.Max(e.MinX, o.MinX), math.Min(e.MaxX, o.MaxX)
	minY, maxY := math.Max(e.MinY, o.MinY), math.Min(e.MaxY, o.MaxY)
	minZ, maxZ := math.Max(e.MinZ, o.MinZ), math.Min(e.MaxZ, o.MaxZ)
	if minX > maxX || minY > maxY || minZ > maxZ {
		e.Reset()
		return nil
	}
	e.MinX, e.MinY, e.MinZ = minX, minY, minZ
	e.MaxX, e.MaxY, e.MaxZ = maxX, maxY, maxZ
	return nil
}

// Contains reports whether o lies completely inside e.
func (e *SpatialExtent) Contains(o *SpatialExtent) (bool, error) {
	if err := e.CheckCrs(o); err != nil {
		return false, err
	}
	return o.MinX >= e.MinX && o.MaxX <= e.MaxX &&
		o.MinY >= e.MinY && o.MaxY <= e.MaxY &&
		o.MinZ >= e.MinZ && o.MaxZ <= e.MaxZ, nil
}

// Crosses reports whether e and o overlap, touching edges included.
func (e *SpatialExtent) Crosses(o *SpatialExtent) (bool, error) {
	if err := e.CheckCrs(o); err != nil {
		return false, err
	}
	return o.MinX <= e.MaxX && o.MaxX >= e.MinX &&
		o.MinY <= e.MaxY && o.MaxY >= e.MinY &&
		o.MinZ <= e.MaxZ && o.MaxZ >= e.MinZ, nil
}

func (e *SpatialExtent) ContainsPoint(p Vector3) bool {
	return p.X >= e.MinX && p.X <= e.MaxX &&
		p.Y >= e.MinY && p.Y <= e.MaxY &&
		p.Z >= e.MinZ && p.Z <= e.MaxZ
}

// CheckCrs fails when both extents carry a CRS and they differ.
func (e *SpatialExtent) CheckCrs(o *SpatialExtent) error {
	if e.Crs != "" && o.Crs != "" && e.Crs != o.Crs {
		return fmt.Errorf("%w: %q vs %q", ErrCrsMismatch, e.Crs, o.Crs)
	}
	return nil
}

func (e *SpatialExtent) String() string {
	crs := e.Crs
	if crs == "" {
		crs = "unknown"
	}
	return fmt.Sprintf("[%g %g %g, %g %g %g] crs=%s", e.MinX, e.MinY, e.MinZ, e.MaxX, e.MaxY, e.MaxZ, crs)
}
