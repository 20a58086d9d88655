// Package render composites the fog over a map's base image for one
// viewport. Rendering only reads its inputs.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"grid-fog-engine/fog"
	"grid-fog-engine/view"
)

// Options are the brushes and overlays of a render pass.
type Options struct {
	Background       color.RGBA
	PreviewFog       color.RGBA
	LiveFog          color.RGBA
	GridLine         color.RGBA
	HideTint         color.RGBA
	RevealTint       color.RGBA
	SelectionOutline color.RGBA

	// ShowGrid and ShowHUD only apply to preview viewports.
	ShowGrid bool
	ShowHUD  bool
}

func DefaultOptions() Options {
	return Options{
		Background:       color.RGBA{A: 255},
		PreviewFog:       color.RGBA{A: 128},
		LiveFog:          color.RGBA{A: 255},
		GridLine:         color.RGBA{R: 255, A: 255},
		HideTint:         color.RGBA{A: 64},
		RevealTint:       color.RGBA{R: 64, G: 64, B: 64, A: 64}, // premultiplied white at alpha 64
		SelectionOutline: color.RGBA{G: 255, A: 255},
		ShowGrid:         true,
		ShowHUD:          true,
	}
}

// Renderer is shared by every session of a manager. The HUD face caches
// glyphs, so drawing text takes faceMu.
type Renderer struct {
	opts Options

	faceMu sync.Mutex
	face   font.Face
}

func NewRenderer(opts Options) (*Renderer, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	return &Renderer{opts: opts, face: face}, nil
}

func (r *Renderer) Options() Options { return r.opts }

// FogColor is the brush for hidden cells and for everything outside the grid.
func (r *Renderer) FogColor(mode view.Mode) color.RGBA {
	if mode == view.Live {
		return r.opts.LiveFog
	}
	return r.opts.PreviewFog
}

// Render draws one frame of m as seen through vp. sel may be nil. pointer is
// the last known cursor position, nil when the cursor is not over the
// viewport; preview frames name the cell under it.
func (r *Renderer) Render(m *fog.Map, vp view.Viewport, sel *view.Selection, pointer *view.Point) *image.RGBA {
	w, h := max(vp.Width, 1), max(vp.Height, 1)
	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	geom := view.GeometryOf(m)
	tr := vp.Transform(geom)

	dc := gg.NewContextForRGBA(frame)
	dc.SetColor(r.opts.Background)
	dc.Clear()

	r.drawBaseImage(frame, m.Image(), tr.ImageToScreenRect())

	dc.SetColor(r.FogColor(vp.Mode))
	for col := 0; col < geom.Cols; col++ {
		for row := 0; row < geom.Rows; row++ {
			if m.CellAt(col, row).IsHidden() {
				fillRect(dc, tr.GridToScreenRect(col, row))
			}
		}
	}
	for _, band := range tr.OutsideGrid(vp.Bounds()) {
		fillRect(dc, band)
	}

	if vp.Mode == view.Preview {
		if r.opts.ShowGrid {
			r.drawGrid(dc, tr)
		}
		if r.opts.ShowHUD {
			r.drawHUD(dc, vp, tr, pointer)
		}
	}

	if sel != nil && sel.Active() {
		r.drawSelection(dc, m, tr, *sel)
	}
	return frame
}

func (r *Renderer) drawBaseImage(dst *image.RGBA, src image.Image, at view.Rect) {
	x0, y0, x1, y1 := snap(at)
	if x1 <= x0 || y1 <= y0 {
		return
	}
	dr := image.Rect(x0, y0, x1, y1)
	if !dr.Overlaps(dst.Bounds()) {
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, dr, src, src.Bounds(), xdraw.Over, nil)
}

func (r *Renderer) drawGrid(dc *gg.Context, tr view.Transform) {
	g := tr.GridScreenRect()
	cw := float64(tr.Grid.CellW) * tr.Zoom
	ch := float64(tr.Grid.CellH) * tr.Zoom
	w, h := float64(dc.Width()), float64(dc.Height())
	top, bottom := math.Max(g.Y, 0), math.Min(g.Y+g.H, h)
	left, right := math.Max(g.X, 0), math.Min(g.X+g.W, w)
	if bottom <= top || right <= left {
		return
	}

	dc.SetColor(r.opts.GridLine)
	dc.SetLineWidth(1)
	for col := 0; col <= tr.Grid.Cols; col++ {
		x := math.Round(g.X+cw*float64(col)) + 0.5
		if x < 0 || x > w {
			continue
		}
		dc.DrawLine(x, top, x, bottom)
	}
	for row := 0; row <= tr.Grid.Rows; row++ {
		y := math.Round(g.Y+ch*float64(row)) + 0.5
		if y < 0 || y > h {
			continue
		}
		dc.DrawLine(left, y, right, y)
	}
	dc.Stroke()
}

func (r *Renderer) drawHUD(dc *gg.Context, vp view.Viewport, tr view.Transform, pointer *view.Point) {
	text := fmt.Sprintf("%s  zoom: %.2fx", vp.Mode, vp.Zoom)
	if pointer != nil {
		text += fmt.Sprintf("  cell: %s", tr.ScreenToGrid(pointer.X, pointer.Y))
	}

	r.faceMu.Lock()
	defer r.faceMu.Unlock()
	dc.SetFontFace(r.face)
	dc.SetColor(color.White)
	dc.DrawString(text, 6, 14)
}

func (r *Renderer) drawSelection(dc *gg.Context, m *fog.Map, tr view.Transform, sel view.Selection) {
	box := sel.ScreenRect().Intersect(view.Rect{W: float64(dc.Width()), H: float64(dc.Height())})
	if box.Empty() {
		return
	}

	if cells, ok := sel.GridRect(tr); ok {
		tint := r.opts.RevealTint
		if m.Vote(cells) == fog.DecisionHide {
			tint = r.opts.HideTint
		}
		dc.SetColor(tint)
		dc.DrawRectangle(box.X, box.Y, box.W, box.H)
		dc.Fill()
	}

	dc.SetColor(r.opts.SelectionOutline)
	dc.SetLineWidth(1)
	dc.DrawRectangle(box.X+0.5, box.Y+0.5, box.W, box.H)
	dc.Stroke()
}

// fillRect fills r snapped to whole pixels and clipped to the frame, so
// neighbouring cells share edges exactly and translucent fog is never
// blended twice.
func fillRect(dc *gg.Context, r view.Rect) {
	x0, y0, x1, y1 := snap(r)
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, dc.Width()), min(y1, dc.Height())
	if x1 <= x0 || y1 <= y0 {
		return
	}
	dc.DrawRectangle(float64(x0), float64(y0), float64(x1-x0), float64(y1-y0))
	dc.Fill()
}

func snap(r view.Rect) (x0, y0, x1, y1 int) {
	end := r.Max()
	return clampInt(math.Round(r.X)), clampInt(math.Round(r.Y)),
		clampInt(math.Round(end.X)), clampInt(math.Round(end.Y))
}

// clampInt keeps far off-screen coordinates inside int range.
func clampInt(v float64) int {
	const limit = 1 << 30
	return int(math.Max(-limit, math.Min(limit, v)))
}

// EncodePNG writes a frame with fast compression; frames are regenerated on
// every redraw.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}
