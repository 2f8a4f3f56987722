package events

import (
	"encoding/json"

	"github.com/go-go-golems/pandora/pkg/conversation"
	"github.com/pkg/errors"
)

// TopicMessages carries every message appended to any session's conversation.
const TopicMessages = "pandora.messages"

type EventType string

const (
	EventTypeMessageAppended EventType = "message.appended"
)

// Event is the JSON envelope published on the bus.
type Event struct {
	Type      EventType             `json:"type"`
	SessionID string                `json:"session_id"`
	Message   *conversation.Message `json:"message,omitempty"`
}

func NewMessageAppended(sessionID string, m conversation.Message) Event {
	return Event{
		Type:      EventTypeMessageAppended,
		SessionID: sessionID,
		Message:   &m,
	}
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// NewEventFromJSON decodes and validates an envelope.
func NewEventFromJSON(b []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		return Event{}, errors.Wrap(err, "could not decode event")
	}
	switch e.Type {
	case EventTypeMessageAppended:
		if e.Message == nil {
			return Event{}, errors.New("message.appended event without message")
		}
		if err := e.Message.Sender.Validate(); err != nil {
			return Event{}, err
		}
	default:
		return Event{}, errors.Errorf("unknown event type %q", e.Type)
	}
	return e, nil
}
