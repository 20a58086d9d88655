package session

import "testing"

func TestHubBroadcastAndNotify(t *testing.T) {
	h := NewHub()
	var a, b int
	h.Subscribe("a", func(Redraw) { a++ })
	h.Subscribe("b", func(Redraw) { b++ })

	if n := h.Broadcast(Redraw{Reason: ReasonCells}); n != 2 {
		t.Errorf("expected 2 observers called, got %d", n)
	}
	if !h.Notify("a", Redraw{Reason: ReasonView}) {
		t.Error("expected Notify to find a")
	}
	if h.Notify("missing", Redraw{}) {
		t.Error("expected Notify to miss an unknown id")
	}
	if a != 2 || b != 1 {
		t.Errorf("expected a=2 b=1, got a=%d b=%d", a, b)
	}
}

func TestHubSubscribeReplacesAndRemoves(t *testing.T) {
	h := NewHub()
	var first, second int
	h.Subscribe("a", func(Redraw) { first++ })
	h.Subscribe("a", func(Redraw) { second++ })
	h.Broadcast(Redraw{})

	if first != 0 || second != 1 {
		t.Errorf("expected only the replacement to run, got %d/%d", first, second)
	}

	h.Subscribe("a", nil)
	if h.Len() != 0 {
		t.Errorf("expected nil subscribe to remove, %d left", h.Len())
	}

	h.Subscribe("b", func(Redraw) {})
	h.Unsubscribe("b")
	if h.Len() != 0 {
		t.Errorf("expected 0 observers, got %d", h.Len())
	}
}
