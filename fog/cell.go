package fog

import "fmt"

// CellState is the visibility marker stored for every cell.
type CellState uint8

const (
	Hidden CellState = iota
	Revealed
	Players
	Exit
)

var cellStateNames = [...]string{
	Hidden:   "hidden",
	Revealed: "revealed",
	Players:  "players",
	Exit:     "exit",
}

func (s CellState) String() string {
	if int(s) < len(cellStateNames) {
		return cellStateNames[s]
	}
	return fmt.Sprintf("CellState(%d)", uint8(s))
}

func (s CellState) IsHidden() bool {
	return s == Hidden
}

// Toggled flips Hidden to Revealed. Every other state, markers included,
// goes back to Hidden.
func (s CellState) Toggled() CellState {
	switch s {
	case Hidden:
		return Revealed
	case Revealed, Players, Exit:
		return Hidden
	}
	return Hidden
}

func (s CellState) MarshalText() ([]byte, error) {
	if int(s) >= len(cellStateNames) {
		return nil, fmt.Errorf("unknown cell state %d", uint8(s))
	}
	return []byte(cellStateNames[s]), nil
}

func (s *CellState) UnmarshalText(text []byte) error {
	state, err := ParseCellState(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

func ParseCellState(name string) (CellState, error) {
	for i, n := range cellStateNames {
		if n == name {
			return CellState(i), nil
		}
	}
	return Hidden, fmt.Errorf("unknown cell state %q", name)
}
