package view

import "fmt"

// Mode selects how a viewport draws fog.
type Mode uint8

const (
	// Preview is the game master's editing surface: translucent fog.
	Preview Mode = iota
	// Live is the player-facing surface: opaque fog.
	Live
)

func (m Mode) String() string {
	if m == Live {
		return "live"
	}
	return "preview"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "preview", "":
		*m = Preview
	case "live":
		*m = Live
	default:
		return fmt.Errorf("unknown viewport mode %q", text)
	}
	return nil
}

// ZoomLimits bounds scroll zooming.
type ZoomLimits struct {
	Step float64
	Min  float64
	Max  float64
}

var DefaultZoomLimits = ZoomLimits{Step: 1.5, Min: 0.1, Max: 16}

// Viewport is the pan and zoom owned by one rendering surface. It is never
// shared between surfaces, even when they show the same map.
type Viewport struct {
	ID     string  `json:"id"`
	Mode   Mode    `json:"mode"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Offset Point   `json:"offset"`
	Zoom   float64 `json:"zoom"`
}

// NewViewport starts at zoom 1 with the base image centered.
func NewViewport(id string, mode Mode, width, height int, g Geometry) Viewport {
	return Viewport{
		ID:     id,
		Mode:   mode,
		Width:  width,
		Height: height,
		Offset: Point{
			X: float64((width - g.ImageW) / 2),
			Y: float64((height - g.ImageH) / 2),
		},
		Zoom: 1,
	}
}

func (v Viewport) Transform(g Geometry) Transform {
	return Transform{Offset: v.Offset, Zoom: v.Zoom, Grid: g}
}

func (v Viewport) Bounds() Rect {
	return Rect{W: float64(v.Width), H: float64(v.Height)}
}

func (v *Viewport) Pan(dx, dy float64) {
	v.Offset.X += dx
	v.Offset.Y += dy
}

func (v *Viewport) SetOffset(p Point) {
	v.Offset = p
}

func (v *Viewport) Resize(width, height int) {
	v.Width, v.Height = width, height
}

// ZoomAt zooms one step in (delta > 0) or out (delta < 0) keeping the image
// point under (ex,ey) fixed on screen. It reports whether the zoom changed.
func (v *Viewport) ZoomAt(ex, ey, delta float64, lim ZoomLimits) bool {
	if delta == 0 {
		return false
	}
	imageX := (ex - v.Offset.X) / v.Zoom
	imageY := (ey - v.Offset.Y) / v.Zoom

	zoom := v.Zoom
	if delta > 0 {
		zoom *= lim.Step
	} else {
		zoom /= lim.Step
	}
	zoom = min(max(zoom, lim.Min), lim.Max)
	if zoom == v.Zoom {
		return false
	}

	v.Zoom = zoom
	v.Offset = Point{X: ex - imageX*zoom, Y: ey - imageY*zoom}
	return true
}
