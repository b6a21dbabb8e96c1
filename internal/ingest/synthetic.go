package ingest

import (
	"math"

	"geostyle/internal/data"
)

const (
	ListGrid  = "grid"
	ListImage = "image"
)

var (
	// GridStructure is a georeferenced point grid, rows of {lon, lat}.
	GridStructure = data.DataRecord("grid",
		data.DataArray("rows", data.DataArray("row", pointStruct)),
	)
	// ImageStructure is a single band image, rows of normalized values.
	ImageStructure = data.DataRecord("image",
		data.DataArray("rows", data.DataArray("row", data.Quantity("v"))),
	)
)

// GridSpec describes a synthetic tiled coverage.
type GridSpec struct {
	MinLon, MinLat float64
	MaxLon, MaxLat float64
	TilesX, TilesY int
	// GridSize is the number of grid points per tile side.
	GridSize int
	// ImageSize is the number of pixels per tile side.
	ImageSize int
}

var DefaultGridSpec = GridSpec{
	MinLon: -10, MinLat: 35, MaxLon: 30, MaxLat: 60,
	TilesX: 4, TilesY: 3,
	GridSize:  5,
	ImageSize: 16,
}

// SyntheticGrid builds a node with a "grid" and an "image" list holding
// one block per tile, in lockstep. Image values lie in 0..1.
func SyntheticGrid(spec GridSpec) *data.Node {
	if spec.TilesX < 1 {
		spec.TilesX = 1
	}
	if spec.TilesY < 1 {
		spec.TilesY = 1
	}
	spec.GridSize = max(spec.GridSize, 2)
	spec.ImageSize = max(spec.ImageSize, 1)

	n := data.NewNode()
	grids := n.CreateList(ListGrid, GridStructure)
	images := n.CreateList(ListImage, ImageStructure)
	tw := (spec.MaxLon - spec.MinLon) / float64(spec.TilesX)
	th := (spec.MaxLat - spec.MinLat) / float64(spec.TilesY)
	for ty := 0; ty < spec.TilesY; ty++ {
		for tx := 0; tx < spec.TilesX; tx++ {
			lon0 := spec.MinLon + float64(tx)*tw
			lat0 := spec.MinLat + float64(ty)*th
			grids.Append(data.NewBlock(GridStructure, data.Record(gridRows(lon0, lat0, tw, th, spec.GridSize))))
			images.Append(data.NewBlock(ImageStructure, data.Record(imageRows(lon0, lat0, tw, th, spec.ImageSize))))
		}
	}
	n.SetStructureReady(true)
	return n
}

func gridRows(lon0, lat0, w, h float64, size int) data.Datum {
	rows := make([]data.Datum, size)
	for v := range rows {
		row := make([]data.Datum, size)
		for u := range row {
			lon := lon0 + w*float64(u)/float64(size-1)
			lat := lat0 + h*float64(v)/float64(size-1)
			row[u] = data.Record(data.Scalar(data.Float(lon)), data.Scalar(data.Float(lat)))
		}
		rows[v] = data.Array(row...)
	}
	return data.Array(rows...)
}

func imageRows(lon0, lat0, w, h float64, size int) data.Datum {
	rows := make([]data.Datum, size)
	for y := range rows {
		vs := make([]float64, size)
		for x := range vs {
			lon := lon0 + w*(float64(x)+0.5)/float64(size)
			lat := lat0 + h*(float64(y)+0.5)/float64(size)
			vs[x] = field(lon, lat)
		}
		rows[y] = data.Floats(vs...)
	}
	return data.Array(rows...)
}

// field is a smooth test signal in 0..1.
func field(lon, lat float64) float64 {
	k := math.Pi / 20
	return 0.5 + 0.25*math.Sin(lon*k)*math.Cos(lat*k) + 0.25*math.Sin((lon+lat)*k/2)
}
