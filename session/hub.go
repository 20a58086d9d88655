package session

// Redraw tells a viewport its frame is stale.
type Redraw struct {
	MapID   string `json:"mapId"`
	Origin  string `json:"origin"` // viewport whose input caused the redraw
	Version uint64 `json:"version"`
	Reason  string `json:"reason"`
}

const (
	ReasonBind      = "bind"
	ReasonCells     = "cells"
	ReasonView      = "view"
	ReasonSelection = "selection"
	ReasonHover     = "hover"
)

// Hub is the redraw observer registry of one Session. It is guarded by the
// Session lock; callbacks run with that lock held and must not block.
type Hub struct {
	observers map[string]func(Redraw)
}

func NewHub() *Hub {
	return &Hub{observers: make(map[string]func(Redraw))}
}

// Subscribe registers fn for viewport id, replacing any earlier callback.
func (h *Hub) Subscribe(id string, fn func(Redraw)) {
	if fn == nil {
		delete(h.observers, id)
		return
	}
	h.observers[id] = fn
}

func (h *Hub) Unsubscribe(id string) {
	delete(h.observers, id)
}

// Broadcast calls every registered observer once and returns how many were
// called.
func (h *Hub) Broadcast(r Redraw) int {
	for _, fn := range h.observers {
		fn(r)
	}
	return len(h.observers)
}

// Notify calls only the observer of viewport id.
func (h *Hub) Notify(id string, r Redraw) bool {
	fn, ok := h.observers[id]
	if ok {
		fn(r)
	}
	return ok
}

func (h *Hub) Len() int {
	return len(h.observers)
}
