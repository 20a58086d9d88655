package fog

// Decision is the outcome of the majority vote over a selection.
type Decision uint8

const (
	DecisionHide Decision = iota
	DecisionReveal
)

func (d Decision) String() string {
	if d == DecisionReveal {
		return "reveal"
	}
	return "hide"
}

// Target is the cell state a decision writes.
func (d Decision) Target() CellState {
	if d == DecisionReveal {
		return Revealed
	}
	return Hidden
}

// Decide reveals only when hidden cells are the strict minority of the
// selection. A tie hides.
func Decide(total, hidden int) Decision {
	if total-hidden > hidden {
		return DecisionReveal
	}
	return DecisionHide
}

// CountHidden counts Hidden cells inside r. r must already be clipped.
func (m *Map) CountHidden(r GridRect) int {
	n := 0
	for col := r.Min.Col; col <= r.Max.Col; col++ {
		for row := r.Min.Row; row <= r.Max.Row; row++ {
			if m.cells[col][row].IsHidden() {
				n++
			}
		}
	}
	return n
}

// Vote reports what releasing a selection over r would do. It never
// mutates the map, so it is safe to call on every redraw of a live drag.
func (m *Map) Vote(r GridRect) Decision {
	r, ok := r.Clip(m.cal.Columns, m.cal.Rows)
	if !ok {
		return DecisionHide
	}
	return Decide(r.Count(), m.CountHidden(r))
}

// ApplyRect writes the decision's target state into every cell of r and
// returns the number of cells covered.
func (m *Map) ApplyRect(r GridRect, d Decision) int {
	r, ok := r.Clip(m.cal.Columns, m.cal.Rows)
	if !ok {
		return 0
	}
	target := d.Target()
	for col := r.Min.Col; col <= r.Max.Col; col++ {
		for row := r.Min.Row; row <= r.Max.Row; row++ {
			m.cells[col][row] = target
		}
	}
	return r.Count()
}

// ToggleRect runs the vote over r and applies it.
func (m *Map) ToggleRect(r GridRect) Decision {
	d := m.Vote(r)
	m.ApplyRect(r, d)
	return d
}
