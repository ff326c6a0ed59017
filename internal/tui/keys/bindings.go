package keys

import "github.com/gdamore/tcell/v2"

// Action represents a keybinding action.
type Action struct {
	Key         tcell.Key
	Rune        rune
	Label       string
	Description string
	Handler     func()
	Visible     bool
	// Typing marks rune bindings that must not fire while a text field has
	// focus.
	Typing bool
}

// Matches returns true if the event matches this action.
func (a *Action) Matches(ev *tcell.EventKey) bool {
	if a.Key != tcell.KeyRune {
		return ev.Key() == a.Key
	}
	return ev.Key() == tcell.KeyRune && ev.Rune() == a.Rune
}

// Hint is a visible binding.
type Hint struct {
	Key         string
	Description string
}

type binding struct {
	name   string
	action *Action
}

// Registry holds keybindings organized by scope, in registration order.
type Registry struct {
	global []binding
	views  map[string][]binding
}

// NewRegistry creates a new keybinding registry.
func NewRegistry() *Registry {
	return &Registry{views: make(map[string][]binding)}
}

// AddGlobal registers a global keybinding. A later binding with the same
// name replaces the earlier one.
func (r *Registry) AddGlobal(name string, action *Action) {
	r.global = upsert(r.global, name, action)
}

// AddView registers a view-specific keybinding.
func (r *Registry) AddView(view, name string, action *Action) {
	r.views[view] = upsert(r.views[view], name, action)
}

func upsert(list []binding, name string, action *Action) []binding {
	for i := range list {
		if list[i].name == name {
			list[i].action = action
			return list
		}
	}
	return append(list, binding{name: name, action: action})
}

// Hints returns the visible bindings for view, view bindings first.
func (r *Registry) Hints(view string) []Hint {
	var hints []Hint
	for _, list := range [][]binding{r.views[view], r.global} {
		for _, b := range list {
			if b.action.Visible {
				hints = append(hints, Hint{Key: b.action.Label, Description: b.action.Description})
			}
		}
	}
	return hints
}

// HandleEvent dispatches ev to the first matching action for view. typing
// reports whether a text field has focus. Returns true if a handler ran.
func (r *Registry) HandleEvent(view string, ev *tcell.EventKey, typing bool) bool {
	for _, list := range [][]binding{r.views[view], r.global} {
		for _, b := range list {
			if typing && b.action.Typing {
				continue
			}
			if b.action.Matches(ev) {
				b.action.Handler()
				return true
			}
		}
	}
	return false
}
