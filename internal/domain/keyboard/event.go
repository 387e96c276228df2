package keyboard

import "strings"

// Event is a key press as delivered by a browser-style keyboard source: a DOM
// key name ("ArrowUp", "Home", "Tab", "3") plus modifier flags.
type Event struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Shift bool   `json:"shift,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Alt   bool   `json:"alt,omitempty"`
}

var domNames = map[string]string{
	"ArrowUp":    "up",
	"ArrowDown":  "down",
	"ArrowLeft":  "left",
	"ArrowRight": "right",
	"Home":       "home",
	"End":        "end",
	"PageUp":     "pgup",
	"PageDown":   "pgdown",
	"Tab":        "tab",
	"Enter":      "enter",
	"Escape":     "esc",
	"Backspace":  "backspace",
	"Delete":     "delete",
	" ":          "space",
}

// String returns the binding name of the event, e.g. "ctrl+home" or
// "shift+tab". Meta is folded into ctrl so Cmd+Home on macOS matches the same
// binding as Ctrl+Home. Shift is only spelled out for named keys; for
// printable characters it is already part of the character.
func (e Event) String() string {
	name, named := domNames[e.Key]
	if !named {
		name = strings.ToLower(e.Key)
	}

	var b strings.Builder
	if e.Ctrl || e.Meta {
		b.WriteString("ctrl+")
	}
	if e.Alt {
		b.WriteString("alt+")
	}
	if e.Shift && named {
		b.WriteString("shift+")
	}
	b.WriteString(name)
	return b.String()
}
