package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/pandora/pkg/events"
)

// Sender is the part of *tea.Program the forwarder needs.
type Sender interface {
	Send(msg tea.Msg)
}

// ForwardFunc returns a bus handler that injects the events of one session
// into the bubbletea program as MessageAppendedMsg.
func ForwardFunc(p Sender, sessionID string) func(e events.Event) error {
	return func(e events.Event) error {
		if e.SessionID != sessionID || e.Type != events.EventTypeMessageAppended {
			return nil
		}
		p.Send(MessageAppendedMsg{Message: *e.Message})
		return nil
	}
}
