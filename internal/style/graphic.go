package style

import "geostyle/internal/data"

// Primitive records are owned by the styler that returns them and are
// overwritten by its next call; copy what must outlive it.

// PrimitiveGraphic is the part every primitive shares. Colors of vector
// primitives are in 0..1, raster pixels in 0..255.
type PrimitiveGraphic struct {
	X, Y, Z    float64
	R, G, B, A float32
}

type PointGraphic struct {
	PrimitiveGraphic
	Size  float32
	Shape string
}

type LinePointGraphic struct {
	PrimitiveGraphic
	Width float32
	// Break is set on the first point of a new line.
	Break bool
}

type LabelGraphic struct {
	PrimitiveGraphic
	Text        string
	Size        float32
	Orientation float32
}

type GridPointGraphic struct {
	PrimitiveGraphic
	TX, TY, TZ          float32
	NormalizedTexCoords bool
	GridBreak           bool
}

type RasterPixelGraphic struct {
	PrimitiveGraphic
}

// PolygonPointGraphic carries the fill color in its PrimitiveGraphic.
type PolygonPointGraphic struct {
	PrimitiveGraphic
	Stroke      [4]float32
	StrokeWidth float32
	// PolygonBreak is set on the first point of each polygon.
	PolygonBreak bool
}

// GridPatchGraphic describes one grid made of Width x Length points.
type GridPatchGraphic struct {
	Block  *data.Block
	Width  int
	Length int
	Depth  int
}

// RasterTileGraphic describes one image. The paddings are filled in by the
// texture cache when the image had to be enlarged.
type RasterTileGraphic struct {
	Block         *data.Block
	Width         int
	Height        int
	Depth         int
	Bands         int
	WidthPadding  int
	HeightPadding int
}

// TexturePatchGraphic is a grid draped with a raster.
type TexturePatchGraphic struct {
	Grid    GridPatchGraphic
	Texture RasterTileGraphic
	// Updated asks consumers to resynthesize the texture: the image list
	// grew or shrank since the previous pass.
	Updated bool
}
