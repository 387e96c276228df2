package groups

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/opencanoetiming/c123-scoring/internal/domain/keyboard"
)

// maxShortcuts is the number of digit keys: 1-9 then 0.
const maxShortcuts = 10

type shortcut struct {
	binding key.Binding
	groupID string
}

// rebind maps digits to the first ten groups in display order.
func (r *Registry) rebind() {
	groups := r.Groups()
	n := min(len(groups), maxShortcuts)

	r.shortcuts = make([]shortcut, n)
	for i := 0; i < n; i++ {
		digit := strconv.Itoa((i + 1) % 10)
		b := key.NewBinding(
			key.WithKeys(digit),
			key.WithHelp(digit, groups[i].Name),
		)
		b.SetEnabled(r.shortcutsEnabled)
		r.shortcuts[i] = shortcut{binding: b, groupID: groups[i].ID}
	}
}

// SetShortcutsEnabled turns digit shortcuts on or off, e.g. while a group name
// is being typed.
func (r *Registry) SetShortcutsEnabled(enabled bool) {
	r.shortcutsEnabled = enabled
	for i := range r.shortcuts {
		r.shortcuts[i].binding.SetEnabled(enabled)
	}
}

// ShortcutsEnabled reports whether digit shortcuts are active.
func (r *Registry) ShortcutsEnabled() bool {
	return r.shortcutsEnabled
}

// HandleKey switches the active group when ev is a bound digit. It returns
// whether the key was consumed.
func (r *Registry) HandleKey(ctx context.Context, ev keyboard.Event) bool {
	for _, s := range r.shortcuts {
		if key.Matches(ev, s.binding) {
			r.SetActive(ctx, s.groupID)
			return true
		}
	}
	return false
}

// Shortcuts returns the digit bindings in display order.
func (r *Registry) Shortcuts() []key.Binding {
	out := make([]key.Binding, len(r.shortcuts))
	for i, s := range r.shortcuts {
		out[i] = s.binding
	}
	return out
}
