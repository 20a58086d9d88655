package view

import (
	"testing"

	"grid-fog-engine/fog"

	. "github.com/smartystreets/goconvey/convey"
)

var testGeometry = Geometry{
	Cols: 6, Rows: 4,
	CellW: 12, CellH: 9,
	OffsetX: 7, OffsetY: 5,
	ImageW: 100, ImageH: 60,
}

var testViews = []struct {
	offset Point
	zoom   float64
}{
	{Point{0, 0}, 1},
	{Point{-40, 13}, 1.5},
	{Point{250.5, -33.25}, 0.4444},
	{Point{17, 17}, 3.375},
}

func TestScreenToGrid(t *testing.T) {
	Convey("Given a grid with an offset and non-square cells", t, func() {

		Convey("Every cell center round-trips under any pan and zoom", func() {
			for _, v := range testViews {
				tr := Transform{Offset: v.offset, Zoom: v.zoom, Grid: testGeometry}
				for col := 0; col < testGeometry.Cols; col++ {
					for row := 0; row < testGeometry.Rows; row++ {
						c := tr.GridToScreenRect(col, row).Center()
						So(tr.ScreenToGrid(c.X, c.Y), ShouldResemble, fog.Coord{Col: col, Row: row})
					}
				}
			}
		})

		Convey("Points outside the grid are Invalid and points inside are not", func() {
			for _, v := range testViews {
				tr := Transform{Offset: v.offset, Zoom: v.zoom, Grid: testGeometry}
				g := tr.GridScreenRect()
				for px := g.X - 30; px < g.X+g.W+30; px += 3.7 {
					for py := g.Y - 30; py < g.Y+g.H+30; py += 2.9 {
						got := tr.ScreenToGrid(px, py)
						inside := g.Contains(Point{px, py})
						So(got.Valid(), ShouldEqual, inside)
					}
				}
			}
		})

		Convey("A non-positive zoom never yields a cell", func() {
			tr := Transform{Zoom: 0, Grid: testGeometry}
			So(tr.ScreenToGrid(10, 10), ShouldResemble, fog.Invalid)
		})

		Convey("The unit map hits cell 2|2 at (25,25)", func() {
			tr := Transform{Zoom: 1, Grid: Geometry{Cols: 4, Rows: 4, CellW: 10, CellH: 10, ImageW: 40, ImageH: 40}}
			So(tr.ScreenToGrid(25, 25), ShouldResemble, fog.Coord{Col: 2, Row: 2})
			So(tr.ScreenToGrid(40, 25), ShouldResemble, fog.Invalid)
			So(tr.ScreenToGrid(-0.5, 3), ShouldResemble, fog.Invalid)
		})
	})
}

func TestZoomAtCursor(t *testing.T) {
	Convey("Given a viewport over the test grid", t, func() {
		vp := NewViewport("v1", Preview, 200, 120, testGeometry)
		So(vp.Zoom, ShouldEqual, 1)
		So(vp.Offset, ShouldResemble, Point{50, 30})

		cursors := []Point{{63.3, 41.7}, {101.1, 58.2}, {120.9, 70.4}}

		Convey("The cell under the cursor survives zooming in and out", func() {
			for _, delta := range []float64{1, 1, 1, -1, -1, -1, -1, 1} {
				for _, e := range cursors {
					before := vp.Transform(testGeometry).ScreenToGrid(e.X, e.Y)
					copyVP := vp
					So(copyVP.ZoomAt(e.X, e.Y, delta, DefaultZoomLimits), ShouldBeTrue)
					after := copyVP.Transform(testGeometry).ScreenToGrid(e.X, e.Y)
					So(after, ShouldResemble, before)
				}
				vp.ZoomAt(cursors[0].X, cursors[0].Y, delta, DefaultZoomLimits)
			}
		})

		Convey("The image point under the cursor stays put", func() {
			e := cursors[1]
			before := vp.Transform(testGeometry).ScreenToImage(e.X, e.Y)
			vp.ZoomAt(e.X, e.Y, 1, DefaultZoomLimits)
			after := vp.Transform(testGeometry).ScreenToImage(e.X, e.Y)
			So(vp.Zoom, ShouldEqual, 1.5)
			So(after.X, ShouldAlmostEqual, before.X, 1e-9)
			So(after.Y, ShouldAlmostEqual, before.Y, 1e-9)
		})

		Convey("Zoom is clamped and reports no change at the limit", func() {
			lim := ZoomLimits{Step: 2, Min: 0.5, Max: 2}
			So(vp.ZoomAt(10, 10, 1, lim), ShouldBeTrue)
			So(vp.ZoomAt(10, 10, 1, lim), ShouldBeFalse)
			So(vp.Zoom, ShouldEqual, 2)
			So(vp.ZoomAt(10, 10, 0, lim), ShouldBeFalse)
		})
	})
}

func TestOutsideGrid(t *testing.T) {
	Convey("Given a grid drawn inside the viewport", t, func() {
		tr := Transform{Offset: Point{10, 20}, Zoom: 2, Grid: Geometry{
			Cols: 2, Rows: 2, CellW: 10, CellH: 10, ImageW: 40, ImageH: 40,
		}}
		bounds := Rect{W: 100, H: 100}
		bands := tr.OutsideGrid(bounds)

		Convey("All four bands are present and tile the rest of the viewport", func() {
			So(bands, ShouldHaveLength, 4)
			So(bands[0], ShouldResemble, Rect{X: 0, Y: 0, W: 100, H: 20})
			So(bands[1], ShouldResemble, Rect{X: 0, Y: 60, W: 100, H: 40})
			So(bands[2], ShouldResemble, Rect{X: 0, Y: 20, W: 10, H: 40})
			So(bands[3], ShouldResemble, Rect{X: 50, Y: 20, W: 50, H: 40})

			area := tr.GridScreenRect().W * tr.GridScreenRect().H
			for _, b := range bands {
				area += b.W * b.H
			}
			So(area, ShouldEqual, 100*100)
		})

		Convey("Bands are clipped when the grid hangs off screen", func() {
			tr.Offset = Point{-30, -30}
			bands := tr.OutsideGrid(bounds)
			So(bands, ShouldHaveLength, 2)
			for _, b := range bands {
				So(b.X, ShouldBeGreaterThanOrEqualTo, 0)
				So(b.Y, ShouldBeGreaterThanOrEqualTo, 0)
				So(b.Max().X, ShouldBeLessThanOrEqualTo, 100)
				So(b.Max().Y, ShouldBeLessThanOrEqualTo, 100)
			}
		})

		Convey("A grid entirely off screen leaves the whole viewport to one band", func() {
			tr.Offset = Point{500, 0}
			bands := tr.OutsideGrid(bounds)
			area := 0.0
			for _, b := range bands {
				area += b.W * b.H
			}
			So(area, ShouldEqual, 100*100)
		})
	})
}
