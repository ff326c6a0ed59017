package ui

import "github.com/rivo/tview"

// Pages is a stack-based router wrapping tview.Pages. Protected pages are
// only reachable while the guard reports a session; otherwise navigation is
// redirected to the fallback page.
type Pages struct {
	*tview.Pages
	stack     []string
	protected map[string]bool
	guard     func() bool
	fallback  string
	onChange  func(current string)
}

// NewPages creates an empty router.
func NewPages() *Pages {
	return &Pages{
		Pages:     tview.NewPages(),
		protected: make(map[string]bool),
		guard:     func() bool { return true },
	}
}

// AddRoute registers a page. It starts hidden.
func (p *Pages) AddRoute(name string, item tview.Primitive, protected bool) {
	p.AddPage(name, item, true, false)
	p.protected[name] = protected
}

// SetGuard sets the session check for protected routes and the page shown
// instead when it fails.
func (p *Pages) SetGuard(authed func() bool, fallback string) {
	p.guard = authed
	p.fallback = fallback
}

// SetOnChange sets a callback that fires with the page now on top.
func (p *Pages) SetOnChange(fn func(current string)) {
	p.onChange = fn
}

// Resolve returns the page that navigating to name actually shows.
func (p *Pages) Resolve(name string) string {
	if p.protected[name] && !p.guard() && p.fallback != "" {
		return p.fallback
	}
	return name
}

// Push shows a page on top of the stack and returns its resolved name.
func (p *Pages) Push(name string) string {
	name = p.Resolve(name)
	if cur := p.Current(); cur == name {
		return name
	} else if cur != "" {
		p.HidePage(cur)
	}
	p.stack = append(p.stack, name)
	p.show(name)
	return name
}

// Pop removes the top page and shows the previous one. The bottom page is
// never popped.
func (p *Pages) Pop() string {
	if len(p.stack) < 2 {
		return ""
	}
	top := p.stack[len(p.stack)-1]
	p.HidePage(top)
	p.stack = p.stack[:len(p.stack)-1]
	prev := p.Resolve(p.stack[len(p.stack)-1])
	p.stack[len(p.stack)-1] = prev
	p.show(prev)
	return top
}

// Reset clears the stack and shows only the given page.
func (p *Pages) Reset(name string) string {
	name = p.Resolve(name)
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = []string{name}
	p.show(name)
	return name
}

// Current returns the name of the top page.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// Depth returns the current stack depth.
func (p *Pages) Depth() int {
	return len(p.stack)
}

func (p *Pages) show(name string) {
	p.ShowPage(name)
	p.SendToFront(name)
	if p.onChange != nil {
		p.onChange(name)
	}
}
