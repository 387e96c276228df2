package focus

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/opencanoetiming/c123-scoring/internal/domain/keyboard"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	RowStart key.Binding
	RowEnd   key.Binding
	FirstRow key.Binding
	LastRow  key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Next     key.Binding
	Prev     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous competitor")),
		Down:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next competitor")),
		Left:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous gate")),
		Right:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next gate")),
		RowStart: key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first gate")),
		RowEnd:   key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last gate")),
		FirstRow: key.NewBinding(key.WithKeys("ctrl+home"), key.WithHelp("ctrl+home", "first competitor")),
		LastRow:  key.NewBinding(key.WithKeys("ctrl+end"), key.WithHelp("ctrl+end", "last competitor")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "10 competitors up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "10 competitors down")),
		Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next gate")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous gate")),
	}
}

func (k keyMap) bindings() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Left, k.Right,
		k.RowStart, k.RowEnd, k.FirstRow, k.LastRow,
		k.PageUp, k.PageDown, k.Next, k.Prev,
	}
}

// KeyBindings returns the navigation bindings for help output.
func (n *Navigator) KeyBindings() []key.Binding {
	return n.keys.bindings()
}

// HandleKey applies the navigation bound to ev. It returns whether the key was
// recognized; the caller should then suppress the key's default action. A
// recognized key that hits an edge still returns true. An empty grid
// recognizes nothing.
func (n *Navigator) HandleKey(ev keyboard.Event) bool {
	if n.empty() {
		return false
	}

	switch {
	case key.Matches(ev, n.keys.Up):
		n.Move(Up)
	case key.Matches(ev, n.keys.Down):
		n.Move(Down)
	case key.Matches(ev, n.keys.Left), key.Matches(ev, n.keys.Prev):
		n.Move(Left)
	case key.Matches(ev, n.keys.Right), key.Matches(ev, n.keys.Next):
		n.Move(Right)
	case key.Matches(ev, n.keys.RowStart):
		n.MoveToRowStart()
	case key.Matches(ev, n.keys.RowEnd):
		n.MoveToRowEnd()
	case key.Matches(ev, n.keys.FirstRow):
		n.MoveToFirstRow()
	case key.Matches(ev, n.keys.LastRow):
		n.MoveToLastRow()
	case key.Matches(ev, n.keys.PageUp):
		n.PageUp()
	case key.Matches(ev, n.keys.PageDown):
		n.PageDown()
	default:
		return false
	}
	return true
}
