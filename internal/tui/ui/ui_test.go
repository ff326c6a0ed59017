package ui

import (
	"reflect"
	"testing"
	"time"

	"github.com/rivo/tview"
)

func newRouter(authed *bool) *Pages {
	p := NewPages()
	p.AddRoute("signin", tview.NewBox(), false)
	p.AddRoute("help", tview.NewBox(), false)
	p.AddRoute("chat", tview.NewBox(), true)
	p.SetGuard(func() bool { return *authed }, "signin")
	return p
}

func TestPagesGuardRedirects(t *testing.T) {
	authed := false
	p := newRouter(&authed)

	if got := p.Reset("chat"); got != "signin" {
		t.Errorf("Reset(chat) signed out = %q, want signin", got)
	}

	authed = true
	if got := p.Reset("chat"); got != "chat" {
		t.Errorf("Reset(chat) signed in = %q, want chat", got)
	}
}

func TestPagesStack(t *testing.T) {
	authed := true
	p := newRouter(&authed)
	var seen []string
	p.SetOnChange(func(cur string) { seen = append(seen, cur) })

	p.Reset("chat")
	p.Push("help")
	p.Push("help")
	if p.Depth() != 2 || p.Current() != "help" {
		t.Fatalf("depth=%d current=%q", p.Depth(), p.Current())
	}

	authed = false
	if top := p.Pop(); top != "help" {
		t.Errorf("Pop() = %q", top)
	}
	if p.Current() != "signin" {
		t.Errorf("current after pop = %q, want signin once the session is gone", p.Current())
	}
	if p.Pop() != "" {
		t.Error("bottom page was popped")
	}

	want := []string{"chat", "help", "signin"}
	if !reflect.DeepEqual(seen, want) {
		t.Errorf("changes = %v, want %v", seen, want)
	}
}

func TestFlashExpires(t *testing.T) {
	f := NewFlashModel()
	now := time.Unix(1000, 0)
	f.now = func() time.Time { return now }

	if f.Current() != nil {
		t.Fatal("empty model has a message")
	}
	f.Success("saved")
	if m := f.Current(); m == nil || m.Text != "saved" || m.Level != FlashSuccess {
		t.Fatalf("Current() = %+v", m)
	}
	f.Err("boom")
	if m := f.Current(); m == nil || m.Text != "boom" {
		t.Fatalf("new message did not replace the old one: %+v", m)
	}

	now = now.Add(time.Minute)
	if f.Current() != nil {
		t.Error("message did not expire")
	}
	if got := len(f.Watch()); got != 2 {
		t.Errorf("watch queue = %d, want 2", got)
	}
}

func TestComplete(t *testing.T) {
	cmds := []string{"signin", "signup", "clear"}
	tests := []struct {
		text string
		want []string
	}{
		{"sig", []string{"signin", "signup"}},
		{"C", []string{"clear"}},
		{"clear", nil},
		{"clear x", nil},
		{"", nil},
	}
	for _, tt := range tests {
		if got := Complete(cmds, tt.text); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Complete(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
