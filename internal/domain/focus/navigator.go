package focus

import "fmt"

// PageSize is the number of rows PageUp and PageDown move by.
const PageSize = 10

// Position is a cell of the grid, zero-based.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Direction is a single-cell move.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// ParseDirection validates a direction name.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down, Left, Right:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Options configures a Navigator.
type Options struct {
	Rows       int
	Columns    int
	WrapAround bool
	// OnChange is called with the new position after every accepted change.
	OnChange func(Position)
}

// Navigator is the keyboard cursor of a rows x columns grid. The position is
// kept clamped to the bounds; an empty grid has no position and rejects every
// request. It is not safe for concurrent use.
type Navigator struct {
	rows     int
	cols     int
	wrap     bool
	onChange func(Position)
	pos      Position
	keys     keyMap
}

// NewNavigator creates a navigator focused on the top-left cell.
func NewNavigator(opts Options) *Navigator {
	return &Navigator{
		rows:     max(opts.Rows, 0),
		cols:     max(opts.Columns, 0),
		wrap:     opts.WrapAround,
		onChange: opts.OnChange,
		keys:     defaultKeyMap(),
	}
}

func (n *Navigator) empty() bool {
	return n.rows == 0 || n.cols == 0
}

// Position returns the focused cell, false when the grid is empty.
func (n *Navigator) Position() (Position, bool) {
	if n.empty() {
		return Position{}, false
	}
	return n.pos, true
}

// Bounds returns the grid dimensions.
func (n *Navigator) Bounds() (rows, cols int) {
	return n.rows, n.cols
}

// SetBounds resizes the grid and re-clamps the position without notifying.
func (n *Navigator) SetBounds(rows, cols int) {
	n.rows = max(rows, 0)
	n.cols = max(cols, 0)
	n.pos = n.clamp(n.pos)
}

// SetWrapAround toggles wrapping moves.
func (n *Navigator) SetWrapAround(wrap bool) {
	n.wrap = wrap
}

func (n *Navigator) clamp(p Position) Position {
	return Position{
		Row:    min(max(p.Row, 0), max(n.rows-1, 0)),
		Column: min(max(p.Column, 0), max(n.cols-1, 0)),
	}
}

// SetPosition clamps p into the grid and focuses it. It always notifies, even
// when the cell is unchanged.
func (n *Navigator) SetPosition(p Position) bool {
	if n.empty() {
		return false
	}
	n.pos = n.clamp(p)
	n.notify()
	return true
}

// Move focuses the neighbouring cell in dir. It returns false and leaves the
// position alone when the move is blocked by an edge.
func (n *Navigator) Move(dir Direction) bool {
	if n.empty() {
		return false
	}
	next := n.pos
	last := Position{Row: n.rows - 1, Column: n.cols - 1}

	switch dir {
	case Up:
		switch {
		case next.Row > 0:
			next.Row--
		case n.wrap:
			next.Row = last.Row
		}
	case Down:
		switch {
		case next.Row < last.Row:
			next.Row++
		case n.wrap:
			next.Row = 0
		}
	case Left:
		switch {
		case next.Column > 0:
			next.Column--
		case n.wrap && next.Row > 0:
			next.Row--
			next.Column = last.Column
		}
	case Right:
		switch {
		case next.Column < last.Column:
			next.Column++
		case n.wrap && next.Row < last.Row:
			next.Row++
			next.Column = 0
		}
	default:
		return false
	}
	return n.apply(next)
}

// MoveToRowStart focuses the first column of the current row.
func (n *Navigator) MoveToRowStart() bool {
	return n.apply(Position{Row: n.pos.Row, Column: 0})
}

// MoveToRowEnd focuses the last column of the current row.
func (n *Navigator) MoveToRowEnd() bool {
	return n.apply(Position{Row: n.pos.Row, Column: n.cols - 1})
}

// MoveToFirstRow focuses the first row, keeping the column.
func (n *Navigator) MoveToFirstRow() bool {
	return n.apply(Position{Row: 0, Column: n.pos.Column})
}

// MoveToLastRow focuses the last row, keeping the column.
func (n *Navigator) MoveToLastRow() bool {
	return n.apply(Position{Row: n.rows - 1, Column: n.pos.Column})
}

// PageUp moves PageSize rows up, stopping at the first row.
func (n *Navigator) PageUp() bool {
	return n.apply(n.clamp(Position{Row: n.pos.Row - PageSize, Column: n.pos.Column}))
}

// PageDown moves PageSize rows down, stopping at the last row.
func (n *Navigator) PageDown() bool {
	return n.apply(n.clamp(Position{Row: n.pos.Row + PageSize, Column: n.pos.Column}))
}

// apply commits next and notifies when it differs from the current position.
func (n *Navigator) apply(next Position) bool {
	if n.empty() || next == n.pos {
		return false
	}
	n.pos = next
	n.notify()
	return true
}

func (n *Navigator) notify() {
	if n.onChange != nil {
		n.onChange(n.pos)
	}
}

// IsFocused reports whether (row, column) is the focused cell.
func (n *Navigator) IsFocused(row, column int) bool {
	p, ok := n.Position()
	return ok && p.Row == row && p.Column == column
}

// CellID returns the stable element id of a cell.
func CellID(row, column int) string {
	return fmt.Sprintf("grid-cell-%d-%d", row, column)
}

// ActiveCellID returns the element id of the focused cell, "" when the grid
// is empty.
func (n *Navigator) ActiveCellID() string {
	p, ok := n.Position()
	if !ok {
		return ""
	}
	return CellID(p.Row, p.Column)
}
