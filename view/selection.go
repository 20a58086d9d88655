package view

import "grid-fog-engine/fog"

// Selection is the in-progress rectangle of a left-button drag. The zero
// value is inactive.
type Selection struct {
	start, end Point
	active     bool
	moved      bool
}

func (s *Selection) Begin(p Point) {
	s.start, s.end = p, p
	s.active = true
	s.moved = false
}

// Update moves the live corner. It is a no-op when no drag is active.
func (s *Selection) Update(p Point) {
	if !s.active {
		return
	}
	s.end = p
	s.moved = true
}

// Cancel drops the gesture without any effect.
func (s *Selection) Cancel() {
	*s = Selection{}
}

func (s Selection) Active() bool { return s.active }
func (s Selection) Moved() bool  { return s.moved }

func (s Selection) Points() (start, end Point) {
	return s.start, s.end
}

func (s Selection) ScreenRect() Rect {
	return RectFromPoints(s.start, s.end)
}

// GridRect inverts both corners through t, the same transform used to draw
// the map. It is false when the gesture is inactive or either corner falls
// outside the grid.
func (s Selection) GridRect(t Transform) (fog.GridRect, bool) {
	if !s.active {
		return fog.GridRect{}, false
	}
	a := t.ScreenToGrid(s.start.X, s.start.Y)
	b := t.ScreenToGrid(s.end.X, s.end.Y)
	if !a.Valid() || !b.Valid() {
		return fog.GridRect{}, false
	}
	return fog.RectBetween(a, b), true
}
