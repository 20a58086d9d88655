package view

import (
	"math"

	"grid-fog-engine/fog"
)

// Geometry is the part of a Map the transform needs.
type Geometry struct {
	Cols, Rows       int
	CellW, CellH     int
	OffsetX, OffsetY int
	ImageW, ImageH   int
}

func GeometryOf(m *fog.Map) Geometry {
	cw, ch := m.CellSize()
	ox, oy := m.GridOffset()
	b := m.Image().Bounds()
	return Geometry{
		Cols: m.Columns(), Rows: m.Rows(),
		CellW: cw, CellH: ch,
		OffsetX: ox, OffsetY: oy,
		ImageW: b.Dx(), ImageH: b.Dy(),
	}
}

// Transform maps between screen pixels, image pixels and grid cells for
// one viewport's pan and zoom. It holds no state beyond its inputs.
type Transform struct {
	Offset Point
	Zoom   float64
	Grid   Geometry
}

func (t Transform) ScreenToImage(px, py float64) Point {
	return Point{X: (px - t.Offset.X) / t.Zoom, Y: (py - t.Offset.Y) / t.Zoom}
}

func (t Transform) ImageToScreen(p Point) Point {
	return Point{X: t.Offset.X + p.X*t.Zoom, Y: t.Offset.Y + p.Y*t.Zoom}
}

// ScreenToGrid returns the cell under a screen point, or fog.Invalid.
func (t Transform) ScreenToGrid(px, py float64) fog.Coord {
	if !(t.Zoom > 0) {
		return fog.Invalid
	}
	p := t.ScreenToImage(px, py)
	col := math.Floor((p.X - float64(t.Grid.OffsetX)) / float64(t.Grid.CellW))
	row := math.Floor((p.Y - float64(t.Grid.OffsetY)) / float64(t.Grid.CellH))
	// NaN fails both comparisons and lands here too.
	if !(col >= 0 && col < float64(t.Grid.Cols) && row >= 0 && row < float64(t.Grid.Rows)) {
		return fog.Invalid
	}
	return fog.Coord{Col: int(col), Row: int(row)}
}

// GridToScreenRect is the inverse of ScreenToGrid for one cell.
func (t Transform) GridToScreenRect(col, row int) Rect {
	cw, ch := float64(t.Grid.CellW), float64(t.Grid.CellH)
	return Rect{
		X: t.Offset.X + (float64(t.Grid.OffsetX)+float64(col)*cw)*t.Zoom,
		Y: t.Offset.Y + (float64(t.Grid.OffsetY)+float64(row)*ch)*t.Zoom,
		W: cw * t.Zoom,
		H: ch * t.Zoom,
	}
}

// GridScreenRect covers the whole grid on screen.
func (t Transform) GridScreenRect() Rect {
	return Rect{
		X: t.Offset.X + float64(t.Grid.OffsetX)*t.Zoom,
		Y: t.Offset.Y + float64(t.Grid.OffsetY)*t.Zoom,
		W: float64(t.Grid.Cols*t.Grid.CellW) * t.Zoom,
		H: float64(t.Grid.Rows*t.Grid.CellH) * t.Zoom,
	}
}

func (t Transform) ImageToScreenRect() Rect {
	return Rect{
		X: t.Offset.X,
		Y: t.Offset.Y,
		W: float64(t.Grid.ImageW) * t.Zoom,
		H: float64(t.Grid.ImageH) * t.Zoom,
	}
}

// OutsideGrid returns the top, bottom, left and right bands around the
// grid, clipped to bounds. Empty bands are dropped. The bands never overlap
// each other or the grid.
func (t Transform) OutsideGrid(bounds Rect) []Rect {
	g := t.GridScreenRect()
	gmax, bmax := g.Max(), bounds.Max()

	bands := []Rect{
		{X: bounds.X, Y: bounds.Y, W: bounds.W, H: g.Y - bounds.Y},
		{X: bounds.X, Y: gmax.Y, W: bounds.W, H: bmax.Y - gmax.Y},
		{X: bounds.X, Y: g.Y, W: g.X - bounds.X, H: g.H},
		{X: gmax.X, Y: g.Y, W: bmax.X - gmax.X, H: g.H},
	}

	out := bands[:0]
	for _, b := range bands {
		if b.Empty() {
			continue
		}
		if c := b.Intersect(bounds); !c.Empty() {
			out = append(out, c)
		}
	}
	return out
}
