package fog

import "fmt"

// Coord addresses one cell of the grid by column and row.
type Coord struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Invalid is the "no cell" value returned by transforms that land outside
// the grid.
var Invalid = Coord{Col: -1, Row: -1}

func (c Coord) Valid() bool {
	return c != Invalid
}

func (c Coord) String() string {
	if !c.Valid() {
		return "Invalid"
	}
	return fmt.Sprintf("%d|%d", c.Col, c.Row)
}

// GridRect is an inclusive rectangle of cells.
type GridRect struct {
	Min Coord `json:"min"`
	Max Coord `json:"max"`
}

// RectBetween returns the rectangle spanned by two corner cells in any order.
func RectBetween(a, b Coord) GridRect {
	return GridRect{Min: a, Max: b}.Normalize()
}

func (r GridRect) Normalize() GridRect {
	if r.Min.Col > r.Max.Col {
		r.Min.Col, r.Max.Col = r.Max.Col, r.Min.Col
	}
	if r.Min.Row > r.Max.Row {
		r.Min.Row, r.Max.Row = r.Max.Row, r.Min.Row
	}
	return r
}

// Clip restricts the rectangle to [0,cols)x[0,rows). The second result is
// false when nothing of the rectangle is left.
func (r GridRect) Clip(cols, rows int) (GridRect, bool) {
	r = r.Normalize()
	r.Min.Col = max(r.Min.Col, 0)
	r.Min.Row = max(r.Min.Row, 0)
	r.Max.Col = min(r.Max.Col, cols-1)
	r.Max.Row = min(r.Max.Row, rows-1)
	if r.Min.Col > r.Max.Col || r.Min.Row > r.Max.Row {
		return GridRect{}, false
	}
	return r, true
}

func (r GridRect) Count() int {
	return (r.Max.Col - r.Min.Col + 1) * (r.Max.Row - r.Min.Row + 1)
}

func (r GridRect) Contains(c Coord) bool {
	return c.Col >= r.Min.Col && c.Col <= r.Max.Col &&
		c.Row >= r.Min.Row && c.Row <= r.Max.Row
}
