package fog

import (
	"errors"
	"fmt"
	"image"
)

var (
	// ErrConstruction is wrapped by every NewMap failure.
	ErrConstruction = errors.New("invalid map construction")
	ErrOutOfBounds  = errors.New("cell out of bounds")
)

// Calibration is the one-time grid fit produced for a base image.
type Calibration struct {
	ImagePath  string `json:"imagePath"`
	Columns    int    `json:"columns"`
	Rows       int    `json:"rows"`
	OffsetX    int    `json:"offsetX"`
	OffsetY    int    `json:"offsetY"`
	CellWidth  int    `json:"cellWidth"`
	CellHeight int    `json:"cellHeight"`
}

func (c Calibration) Validate() error {
	if c.Columns < 1 || c.Rows < 1 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrConstruction, c.Columns, c.Rows)
	}
	if c.CellWidth <= 0 || c.CellHeight <= 0 {
		return fmt.Errorf("%w: cell size must be positive, got %dx%d", ErrConstruction, c.CellWidth, c.CellHeight)
	}
	return nil
}

// Map is the shared fog state for one base image. Only cell states change
// after construction. A Map does no locking of its own.
type Map struct {
	cal   Calibration
	cells [][]CellState // [col][row]
	image image.Image
}

// NewMap builds a fully hidden map over img.
func NewMap(cal Calibration, img image.Image) (*Map, error) {
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: base image is required", ErrConstruction)
	}

	cells := make([][]CellState, cal.Columns)
	for col := range cells {
		cells[col] = make([]CellState, cal.Rows)
	}

	return &Map{cal: cal, cells: cells, image: img}, nil
}

func (m *Map) Calibration() Calibration { return m.cal }
func (m *Map) Columns() int             { return m.cal.Columns }
func (m *Map) Rows() int                { return m.cal.Rows }
func (m *Map) Image() image.Image       { return m.image }

// CellSize returns the calibrated pixel size of one cell in image space.
func (m *Map) CellSize() (w, h int) {
	return m.cal.CellWidth, m.cal.CellHeight
}

// GridOffset returns the top-left of the grid in image space.
func (m *Map) GridOffset() (x, y int) {
	return m.cal.OffsetX, m.cal.OffsetY
}

func (m *Map) IsValid(c Coord) bool {
	return c.Col >= 0 && c.Row >= 0 && c.Col < m.cal.Columns && c.Row < m.cal.Rows
}

// CellAt reads an in-bounds cell. Callers validate through IsValid or a
// transform first.
func (m *Map) CellAt(col, row int) CellState {
	return m.cells[col][row]
}

// Cell is the bounds-checked read.
func (m *Map) Cell(c Coord) (CellState, bool) {
	if !m.IsValid(c) {
		return Hidden, false
	}
	return m.cells[c.Col][c.Row], true
}

// SetCell writes an in-bounds cell. It does not notify anyone.
func (m *Map) SetCell(col, row int, state CellState) {
	m.cells[col][row] = state
}

func (m *Map) ToggleCell(col, row int) {
	m.cells[col][row] = m.cells[col][row].Toggled()
}

// Toggle is ToggleCell guarded by a bounds check.
func (m *Map) Toggle(c Coord) error {
	if !m.IsValid(c) {
		return fmt.Errorf("toggle %s: %w", c, ErrOutOfBounds)
	}
	m.ToggleCell(c.Col, c.Row)
	return nil
}

// MovePlayers places the single players marker at c. The cell that held it
// before becomes Revealed.
func (m *Map) MovePlayers(c Coord) error {
	if !m.IsValid(c) {
		return fmt.Errorf("move players to %s: %w", c, ErrOutOfBounds)
	}
	for col := range m.cells {
		for row, state := range m.cells[col] {
			if state == Players {
				m.cells[col][row] = Revealed
			}
		}
	}
	m.cells[c.Col][c.Row] = Players
	return nil
}

func (m *Map) PlaceExit(c Coord) error {
	if !m.IsValid(c) {
		return fmt.Errorf("place exit at %s: %w", c, ErrOutOfBounds)
	}
	m.cells[c.Col][c.Row] = Exit
	return nil
}

// Snapshot is a detached copy of the map state for serialization.
type Snapshot struct {
	Calibration Calibration   `json:"calibration"`
	ImageWidth  int           `json:"imageWidth"`
	ImageHeight int           `json:"imageHeight"`
	Cells       [][]CellState `json:"cells"`
}

func (m *Map) Snapshot() Snapshot {
	cells := make([][]CellState, len(m.cells))
	for col := range m.cells {
		cells[col] = append([]CellState(nil), m.cells[col]...)
	}
	b := m.image.Bounds()
	return Snapshot{
		Calibration: m.cal,
		ImageWidth:  b.Dx(),
		ImageHeight: b.Dy(),
		Cells:       cells,
	}
}
