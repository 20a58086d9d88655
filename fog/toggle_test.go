package fog

import "testing"

func TestDecideMajority(t *testing.T) {
	cases := []struct {
		hidden int
		want   Decision
	}{
		{0, DecisionReveal},
		{4, DecisionReveal},
		{5, DecisionHide}, // tie hides
		{6, DecisionHide},
		{10, DecisionHide},
	}
	for _, tc := range cases {
		if got := Decide(10, tc.hidden); got != tc.want {
			t.Errorf("hidden=%d of 10: expected %s, got %s", tc.hidden, tc.want, got)
		}
	}
}

func TestVoteDoesNotMutate(t *testing.T) {
	m := newTestMap(t, 4, 4)
	m.SetCell(0, 0, Revealed)
	before := m.Snapshot()

	r := RectBetween(Coord{3, 3}, Coord{0, 0})
	for i := 0; i < 3; i++ {
		m.Vote(r)
	}

	after := m.Snapshot()
	for col := range before.Cells {
		for row := range before.Cells[col] {
			if before.Cells[col][row] != after.Cells[col][row] {
				t.Fatalf("vote changed cell %d|%d", col, row)
			}
		}
	}
}

func TestApplyRectLeavesNoMixedState(t *testing.T) {
	m := newTestMap(t, 5, 2)
	// 10 cells, 6 revealed and 4 hidden.
	for col := 0; col < 3; col++ {
		m.SetCell(col, 0, Revealed)
		m.SetCell(col, 1, Revealed)
	}
	r := RectBetween(Coord{0, 0}, Coord{4, 1})

	if d := m.Vote(r); d != DecisionReveal {
		t.Fatalf("expected reveal with 4 of 10 hidden, got %s", d)
	}
	if d := m.ToggleRect(r); d != DecisionReveal {
		t.Fatalf("expected reveal applied, got %s", d)
	}
	for col := 0; col < 5; col++ {
		for row := 0; row < 2; row++ {
			if m.CellAt(col, row) != Revealed {
				t.Errorf("cell %d|%d: expected revealed, got %s", col, row, m.CellAt(col, row))
			}
		}
	}

	// Half hidden again: the tie hides everything.
	for col := 0; col < 5; col++ {
		m.SetCell(col, 0, Hidden)
	}
	m.SetCell(0, 1, Exit)
	if d := m.ToggleRect(r); d != DecisionHide {
		t.Fatalf("expected hide on tie, got %s", d)
	}
	if n := m.CountHidden(r); n != 10 {
		t.Errorf("expected 10 hidden cells, got %d", n)
	}
}

func TestApplyRectClipsToGrid(t *testing.T) {
	m := newTestMap(t, 3, 3)

	n := m.ApplyRect(GridRect{Min: Coord{-5, 1}, Max: Coord{1, 9}}, DecisionReveal)

	if n != 4 {
		t.Errorf("expected 4 covered cells, got %d", n)
	}
	if m.CellAt(0, 0) != Hidden || m.CellAt(2, 2) != Hidden {
		t.Error("cells outside the clipped rect should be untouched")
	}
	if m.CellAt(1, 2) != Revealed {
		t.Error("expected 1|2 revealed")
	}
}

func TestGridRectClip(t *testing.T) {
	if _, ok := (GridRect{Min: Coord{5, 5}, Max: Coord{6, 6}}).Clip(3, 3); ok {
		t.Error("expected fully outside rect to clip away")
	}
	r, ok := RectBetween(Coord{2, 0}, Coord{0, 2}).Clip(3, 3)
	if !ok || r.Count() != 9 {
		t.Errorf("expected 9 cells, got %d (%v)", r.Count(), ok)
	}
	if !r.Contains(Coord{1, 1}) || r.Contains(Coord{3, 1}) {
		t.Error("unexpected Contains result")
	}
}
