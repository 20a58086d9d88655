package session

import (
	"errors"
	"fmt"
	"image"
	"log"

	"grid-fog-engine/fog"
	"grid-fog-engine/view"
)

var (
	ErrUnbound       = errors.New("viewport is not bound")
	ErrNotEditor     = errors.New("markers can only be placed from a preview viewport")
	ErrInvalidMarker = errors.New("marker must be players or exit")
	ErrInvalidZoom   = errors.New("invalid zoom")
)

type Button uint8

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonRight
	ButtonMiddle
)

var buttonNames = map[Button]string{
	ButtonNone:   "none",
	ButtonLeft:   "left",
	ButtonRight:  "right",
	ButtonMiddle: "middle",
}

func (b Button) String() string {
	if n, ok := buttonNames[b]; ok {
		return n
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

func (b Button) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *Button) UnmarshalText(text []byte) error {
	for k, n := range buttonNames {
		if n == string(text) {
			*b = k
			return nil
		}
	}
	return fmt.Errorf("unknown button %q", text)
}

// Handle is one viewport bound to a Session. It owns the viewport's pan,
// zoom and drag state; the map itself belongs to the Session.
type Handle struct {
	session *Session

	vp      view.Viewport
	sel     view.Selection
	pressed Button
	press   view.Point
	panLast view.Point
	pointer view.Point
	hover   bool
	bound   bool
	done    chan struct{}
}

func (h *Handle) ID() string {
	return h.vp.ID
}

func (h *Handle) Session() *Session {
	return h.session
}

// Viewport returns a copy of the current pan/zoom state.
func (h *Handle) Viewport() view.Viewport {
	h.session.mu.Lock()
	defer h.session.mu.Unlock()
	return h.vp
}

// Observe replaces the redraw callback. nil removes it.
func (h *Handle) Observe(fn func(Redraw)) error {
	s := h.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if !h.bound {
		return ErrUnbound
	}
	s.hub.Subscribe(h.vp.ID, fn)
	if fn != nil {
		s.notify(h.vp.ID, ReasonBind)
	}
	return nil
}

// Unbind detaches the viewport and drops its observer. Calling it twice is
// harmless.
func (h *Handle) Unbind() {
	s := h.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if !h.bound {
		return
	}
	delete(s.viewports, h.vp.ID)
	s.hub.Unsubscribe(h.vp.ID)
	h.release()
	log.Printf("viewport %s unbound from map %s (%d bound)", h.vp.ID, s.ID, len(s.viewports))
}

// Done is closed once the viewport is unbound, by Unbind or by its map
// going away.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// release clears gesture state and closes done. Callers hold the session
// lock and only release a bound handle.
func (h *Handle) release() {
	h.sel.Cancel()
	h.pressed = ButtonNone
	h.bound = false
	close(h.done)
}

func (h *Handle) transform() view.Transform {
	return h.vp.Transform(view.GeometryOf(h.session.fogMap))
}

// track records the cursor position and reports whether it moved onto a
// different cell. Callers hold the session lock.
func (h *Handle) track(p view.Point) bool {
	tr := h.transform()
	before := fog.Invalid
	if h.hover {
		before = tr.ScreenToGrid(h.pointer.X, h.pointer.Y)
	}
	h.pointer, h.hover = p, true
	return tr.ScreenToGrid(p.X, p.Y) != before
}

// PointerLeave forgets the cursor position once it leaves the viewport.
func (h *Handle) PointerLeave() error {
	s := h.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if !h.bound {
		return ErrUnbound
	}
	if h.hover {
		h.hover = false
		if h.vp.Mode == view.Preview {
			s.notify(h.vp.ID, ReasonHover)
		}
	}
	return nil
}

// CellAt is the cell under a screen point of this viewport, or fog.Invalid.
func (h *Handle) CellAt(x, y float64) fog.Coord {
	h.session.mu.Lock()
	defer h.session.mu.Unlock()
	return h.transform().ScreenToGrid(x, y)
}

func (h *Handle) PointerDown(x, y float64, btn Button) error {
	s := h.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if !h.bound {
		return ErrUnbound
	}

	// A second press abandons whatever gesture was running.
	if h.sel.Active() {
		h.sel.Cancel()
		s.notify(h.vp.ID, ReasonSelection)
	}

	p := view.Point{X: x, Y: y}
	h.track(p)
	h.pressed = btn
	h.press = p
	switch btn {
	case ButtonLeft:
		if h.vp.Mode == view.Preview {
			h.sel.Begin(p)
		}
	case ButtonRight:
		h.panLast = p
	}
	return nil
}

func (h *Handle) PointerMove(x, y float64) error {
	s := h.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if !h.bound {
		return ErrUnbound
	}

	p := view.Point{X: x, Y: y}
	moved := h.track(p)
	switch h.pressed {
	case ButtonNone:
		if moved && h.vp.Mode == view.Preview {
			s.notify(h.vp.ID, ReasonHover)
		}
	case ButtonLeft:
		if h.sel.Active() {
			h.sel.Update(p)
			s.notify(h.vp.ID, ReasonSelection)
		}
	case ButtonRight:
		h.vp.Pan(p.X-h.panLast.X, p.Y-h.panLast.Y)
		h.panLast = p
		s.notify(h.vp.ID, ReasonView)
	}
	return nil
}

func (h *Handle) PointerUp(x, y float64, btn Button) error {
	s := h.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if !h.bound {
		return ErrUnbound
	}
	h.track(view.Point{X: x, Y: y})
	if btn != h.pressed || btn == ButtonNone {
		return nil
	}
	h.pressed = ButtonNone

	if btn != ButtonLeft {
		return nil
	}

	tr := h.transform()
	if h.vp.Mode == view.Live || !h.sel.Moved() {
		h.sel.Cancel()
		h.toggleClick(tr, view.Point{X: x, Y: y})
		return nil
	}

	h.sel.Update(view.Point{X: x, Y: y})
	cells, ok := h.sel.GridRect(tr)
	h.sel.Cancel()
	if !ok {
		// A corner left the grid: drop the gesture, only clear the overlay.
		s.notify(h.vp.ID, ReasonSelection)
		return nil
	}
	d := s.fogMap.ToggleRect(cells)
	log.Printf("map %s: %s %d cells from viewport %s", s.ID, d, cells.Count(), h.vp.ID)
	s.commit(h.vp.ID)
	return nil
}

// toggleClick flips the cell under a click when press and release land on
// the same cell.
func (h *Handle) toggleClick(tr view.Transform, release view.Point) {
	s := h.session
	at := tr.ScreenToGrid(h.press.X, h.press.Y)
	if !at.Valid() || at != tr.ScreenToGrid(release.X, release.Y) {
		return
	}
	s.fogMap.ToggleCell(at.Col, at.Row)
	s.commit(h.vp.ID)
}

// Scroll zooms by one step toward delta's sign, anchored at the cursor.
func (h *Handle) Scroll(x, y, delta float64) error {
	s := h.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if !h.bound {
		return ErrUnbound
	}
	h.track(view.Point{X: x, Y: y})
	if h.vp.ZoomAt(x, y, delta, s.zoom) {
		s.notify(h.vp.ID, ReasonView)
	}
	return nil
}

// Cancel abandons an in-progress gesture with no effect on the map.
func (h *Handle) Cancel() error {
	s := h.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if !h.bound {
		return ErrUnbound
	}
	h.pressed = ButtonNone
	if h.sel.Active() {
		h.sel.Cancel()
		s.notify(h.vp.ID, ReasonSelection)
	}
	return nil
}

// PlaceMarker puts the players or exit marker on the cell under (x,y).
func (h *Handle) PlaceMarker(x, y float64, marker fog.CellState) error {
	s := h.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if !h.bound {
		return ErrUnbound
	}
	if h.vp.Mode != view.Preview {
		return ErrNotEditor
	}

	at := h.transform().ScreenToGrid(x, y)
	var err error
	switch marker {
	case fog.Players:
		err = s.fogMap.MovePlayers(at)
	case fog.Exit:
		err = s.fogMap.PlaceExit(at)
	default:
		return fmt.Errorf("%w, got %s", ErrInvalidMarker, marker)
	}
	if err != nil {
		return err
	}
	s.commit(h.vp.ID)
	return nil
}

func (h *Handle) Resize(width, height int) error {
	s := h.session
	if err := s.checkSize(width, height); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !h.bound {
		return ErrUnbound
	}
	h.vp.Resize(width, height)
	s.notify(h.vp.ID, ReasonView)
	return nil
}

// SetView places the viewport at an explicit pan and zoom. The zoom must
// lie within the configured limits.
func (h *Handle) SetView(offset view.Point, zoom float64) error {
	s := h.session
	if !(zoom >= s.zoom.Min && zoom <= s.zoom.Max) {
		return fmt.Errorf("%w: %v outside [%v, %v]", ErrInvalidZoom, zoom, s.zoom.Min, s.zoom.Max)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !h.bound {
		return ErrUnbound
	}
	h.vp.SetOffset(offset)
	h.vp.Zoom = zoom
	s.notify(h.vp.ID, ReasonView)
	return nil
}

// Render composites the current frame for this viewport.
func (h *Handle) Render() (*image.RGBA, error) {
	s := h.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if !h.bound {
		return nil, ErrUnbound
	}
	return s.render(h), nil
}
