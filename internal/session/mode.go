package session

import (
	"fmt"
	"strings"
)

// Mode selects the endpoint a send goes to.
type Mode int

const (
	// ModeChat answers questions through /chat.
	ModeChat Mode = iota
	// ModeDraft produces documents through /draft.
	ModeDraft
)

func (m Mode) String() string {
	switch m {
	case ModeChat:
		return "chat"
	case ModeDraft:
		return "draft"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Label is the button text shown for the mode.
func (m Mode) Label() string {
	if m == ModeDraft {
		return "Draft"
	}
	return "Ask"
}

// Placeholder is the input hint shown for the mode.
func (m Mode) Placeholder() string {
	if m == ModeDraft {
		return "Describe the document to draft..."
	}
	return "Ask a legal question..."
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == ModeChat || m == ModeDraft }

// ParseMode accepts "chat", "ask" and "draft" in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chat", "ask":
		return ModeChat, nil
	case "draft":
		return ModeDraft, nil
	default:
		return ModeChat, fmt.Errorf("unknown mode %q (use ask or draft)", s)
	}
}
