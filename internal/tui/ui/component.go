package ui

import "github.com/rivo/tview"

// MenuHint describes a keyboard shortcut for display in the menu bar.
type MenuHint struct {
	Key         string
	Description string
}

// Component is a page that can be routed to.
type Component interface {
	tview.Primitive
	Name() string
	Hints() []MenuHint
	// Entry is the primitive that receives focus when the page is shown.
	Entry() tview.Primitive
}
