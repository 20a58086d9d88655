package render

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"
	"testing"

	"grid-fog-engine/fog"
	"grid-fog-engine/view"
)

// newWhiteMap is a 4x4 grid of 10px cells anchored at (10,10) on a 60x60
// white image, so fog outside the grid is visible against the image.
func newWhiteMap(t *testing.T) *fog.Map {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 60, 60))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	m, err := fog.NewMap(fog.Calibration{
		Columns: 4, Rows: 4,
		OffsetX: 10, OffsetY: 10,
		CellWidth: 10, CellHeight: 10,
	}, img)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func newPlainRenderer(t *testing.T) *Renderer {
	t.Helper()
	opts := DefaultOptions()
	opts.ShowGrid = false
	opts.ShowHUD = false
	r, err := NewRenderer(opts)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func testViewport(mode view.Mode) view.Viewport {
	return view.Viewport{ID: "v", Mode: mode, Width: 60, Height: 60, Zoom: 1}
}

func red(img *image.RGBA, x, y int) uint8 {
	return img.RGBAAt(x, y).R
}

func TestRenderPreviewIsTranslucent(t *testing.T) {
	m := newWhiteMap(t)
	m.SetCell(1, 1, fog.Revealed)
	frame := newPlainRenderer(t).Render(m, testViewport(view.Preview), nil, nil)

	if got := red(frame, 25, 25); got != 255 {
		t.Errorf("revealed cell: expected 255, got %d", got)
	}
	if got := red(frame, 15, 15); got < 100 || got > 160 {
		t.Errorf("hidden cell: expected translucent fog, got %d", got)
	}
	if got := red(frame, 5, 5); got < 100 || got > 160 {
		t.Errorf("outside grid: expected translucent fog, got %d", got)
	}
	if got := red(frame, 55, 30); got < 100 || got > 160 {
		t.Errorf("right of grid: expected translucent fog, got %d", got)
	}
}

func TestRenderLiveIsOpaque(t *testing.T) {
	m := newWhiteMap(t)
	m.SetCell(1, 1, fog.Revealed)
	frame := newPlainRenderer(t).Render(m, testViewport(view.Live), nil, nil)

	if got := red(frame, 25, 25); got != 255 {
		t.Errorf("revealed cell: expected 255, got %d", got)
	}
	for _, p := range []image.Point{{15, 15}, {5, 5}, {55, 55}, {30, 55}} {
		if got := red(frame, p.X, p.Y); got != 0 {
			t.Errorf("%v: expected opaque fog, got %d", p, got)
		}
	}
}

func TestRenderMarkersAreNotFogged(t *testing.T) {
	m := newWhiteMap(t)
	_ = m.MovePlayers(fog.Coord{Col: 0, Row: 0})
	_ = m.PlaceExit(fog.Coord{Col: 3, Row: 3})
	frame := newPlainRenderer(t).Render(m, testViewport(view.Live), nil, nil)

	if red(frame, 15, 15) != 255 || red(frame, 45, 45) != 255 {
		t.Error("marker cells should render like revealed cells")
	}
}

func TestRenderFollowsZoom(t *testing.T) {
	m := newWhiteMap(t)
	m.SetCell(1, 1, fog.Revealed)
	vp := testViewport(view.Live)
	vp.Zoom = 2

	frame := newPlainRenderer(t).Render(m, vp, nil, nil)

	// Cell 1|1 spans (40,40)-(60,60) at zoom 2.
	if got := red(frame, 50, 50); got != 255 {
		t.Errorf("expected revealed cell at zoom 2, got %d", got)
	}
	if got := red(frame, 35, 50); got != 0 {
		t.Errorf("expected fog left of the revealed cell, got %d", got)
	}
}

func TestRenderSelectionTint(t *testing.T) {
	r := newPlainRenderer(t)
	vp := testViewport(view.Preview)

	// 3 of 4 hidden: releasing would hide, tint darkens.
	m := newWhiteMap(t)
	m.SetCell(1, 1, fog.Revealed)
	var sel view.Selection
	sel.Begin(view.Point{X: 22, Y: 22})
	sel.Update(view.Point{X: 38, Y: 38})

	plain := r.Render(m, vp, nil, nil)
	hide := r.Render(m, vp, &sel, nil)
	if red(hide, 35, 35) >= red(plain, 35, 35) {
		t.Errorf("hide tint should darken: %d vs %d", red(hide, 35, 35), red(plain, 35, 35))
	}

	// 1 of 4 hidden: releasing would reveal, tint lightens.
	m.SetCell(2, 1, fog.Revealed)
	m.SetCell(1, 2, fog.Revealed)
	plain = r.Render(m, vp, nil, nil)
	reveal := r.Render(m, vp, &sel, nil)
	if red(reveal, 35, 35) <= red(plain, 35, 35) {
		t.Errorf("reveal tint should lighten: %d vs %d", red(reveal, 35, 35), red(plain, 35, 35))
	}

	if outline := reveal.RGBAAt(22, 30); outline.G != 255 || outline.R > 100 {
		t.Errorf("expected lime outline, got %+v", outline)
	}
}

func TestRenderDoesNotMutate(t *testing.T) {
	m := newWhiteMap(t)
	m.SetCell(2, 3, fog.Exit)
	before := m.Snapshot()

	var sel view.Selection
	sel.Begin(view.Point{X: 12, Y: 12})
	sel.Update(view.Point{X: 48, Y: 48})
	selBefore := sel

	r, err := NewRenderer(DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	r.Render(m, testViewport(view.Preview), &sel, nil)

	after := m.Snapshot()
	for col := range before.Cells {
		for row := range before.Cells[col] {
			if before.Cells[col][row] != after.Cells[col][row] {
				t.Fatalf("render changed cell %d|%d", col, row)
			}
		}
	}
	if sel != selBefore {
		t.Error("render changed the selection")
	}
}

func TestRenderHUD(t *testing.T) {
	m := newWhiteMap(t)
	opts := DefaultOptions()
	opts.ShowGrid = false
	r, err := NewRenderer(opts)
	if err != nil {
		t.Fatal(err)
	}
	vp := testViewport(view.Preview)
	vp.Width = 200

	frame := r.Render(m, vp, nil, nil)

	bright := 0
	for x := 6; x < 120; x++ {
		for y := 2; y < 16; y++ {
			if red(frame, x, y) > 200 {
				bright++
			}
		}
	}
	if bright == 0 {
		t.Error("expected HUD text in the top-left corner")
	}

	live := r.Render(m, testViewport(view.Live), nil, nil)
	for x := 6; x < 60; x++ {
		for y := 2; y < 16; y++ {
			if red(live, x, y) != 0 {
				t.Fatalf("live frames carry no HUD, found %d at %d,%d", red(live, x, y), x, y)
			}
		}
	}
}

func TestRenderGridLines(t *testing.T) {
	m := newWhiteMap(t)
	opts := DefaultOptions()
	opts.ShowHUD = false
	r, err := NewRenderer(opts)
	if err != nil {
		t.Fatal(err)
	}

	frame := r.Render(m, testViewport(view.Preview), nil, nil)

	c := frame.RGBAAt(20, 25)
	if c.R < 200 || c.G > 100 {
		t.Errorf("expected a red grid line at x=20, got %+v", c)
	}
}

func TestEncodePNG(t *testing.T) {
	m := newWhiteMap(t)
	frame := newPlainRenderer(t).Render(m, testViewport(view.Live), nil, nil)

	var buf bytes.Buffer
	if err := EncodePNG(&buf, frame); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != frame.Bounds() {
		t.Errorf("expected %v, got %v", frame.Bounds(), img.Bounds())
	}
}

func TestRenderHUDNamesHoveredCell(t *testing.T) {
	m := newWhiteMap(t)
	opts := DefaultOptions()
	opts.ShowGrid = false
	r, err := NewRenderer(opts)
	if err != nil {
		t.Fatal(err)
	}
	vp := testViewport(view.Preview)
	vp.Width = 300

	without := r.Render(m, vp, nil, nil)
	with := r.Render(m, vp, nil, &view.Point{X: 25, Y: 25})

	changed := false
	for x := 6; x < 300 && !changed; x++ {
		for y := 2; y < 16; y++ {
			if red(without, x, y) != red(with, x, y) {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Error("expected the hovered cell in the HUD text")
	}

	// Outside the HUD band the frames are identical.
	for x := 0; x < 60; x++ {
		for y := 20; y < 60; y++ {
			if without.RGBAAt(x, y) != with.RGBAAt(x, y) {
				t.Fatalf("pointer changed pixel %d,%d outside the HUD", x, y)
			}
		}
	}
}

func TestRenderSharedAcrossGoroutines(t *testing.T) {
	m := newWhiteMap(t)
	r, err := NewRenderer(DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vp := testViewport(view.Preview)
			vp.Zoom = float64(i + 1)
			r.Render(m, vp, nil, &view.Point{X: 15, Y: 15})
		}(i)
	}
	wg.Wait()
}
