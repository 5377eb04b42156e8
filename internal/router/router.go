// Package router tracks which of the three panels is visible.
package router

import (
	"fmt"
	"strings"
	"sync"
)

// Tab identifies a panel.
type Tab int

const (
	Chat Tab = iota
	Upload
	Settings
)

var tabs = []Tab{Chat, Upload, Settings}

// Tabs returns the tabs in display order.
func Tabs() []Tab {
	out := make([]Tab, len(tabs))
	copy(out, tabs)
	return out
}

func (t Tab) String() string {
	switch t {
	case Chat:
		return "chat"
	case Upload:
		return "upload"
	case Settings:
		return "settings"
	default:
		return fmt.Sprintf("tab(%d)", int(t))
	}
}

// Title is the label shown in the tab bar.
func (t Tab) Title() string {
	switch t {
	case Upload:
		return "Upload"
	case Settings:
		return "Settings"
	default:
		return "Chat"
	}
}

// Valid reports whether t is a known tab.
func (t Tab) Valid() bool { return t >= Chat && t <= Settings }

// ParseTab accepts a tab name in any case.
func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chat", "":
		return Chat, nil
	case "upload":
		return Upload, nil
	case "settings":
		return Settings, nil
	default:
		return Chat, fmt.Errorf("unknown tab %q (use chat, upload or settings)", s)
	}
}

// Router is safe for concurrent use.
type Router struct {
	mu     sync.Mutex
	active Tab
}

// New returns a router showing initial, or Chat when initial is unknown.
func New(initial Tab) *Router {
	if !initial.Valid() {
		initial = Chat
	}
	return &Router{active: initial}
}

// Active returns the visible tab.
func (r *Router) Active() Tab {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// SetActiveTab shows t. It returns true only when t was not already visible.
// Unknown tabs are ignored.
func (r *Router) SetActiveTab(t Tab) bool {
	if !t.Valid() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == t {
		return false
	}
	r.active = t
	return true
}

// Next activates the tab to the right, wrapping around.
func (r *Router) Next() Tab { return r.step(1) }

// Prev activates the tab to the left, wrapping around.
func (r *Router) Prev() Tab { return r.step(-1) }

func (r *Router) step(d int) Tab {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(tabs)
	r.active = tabs[(int(r.active)+d+n)%n]
	return r.active
}
