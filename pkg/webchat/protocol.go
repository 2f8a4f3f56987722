package webchat

import (
	"encoding/json"

	"github.com/go-go-golems/pandora/pkg/conversation"
	"github.com/pkg/errors"
)

// Client to server frame types.
const (
	FrameDraft  = "draft"
	FrameSubmit = "submit"
	FrameKey    = "key"
)

// Server to client frame types.
const (
	FrameSnapshot = "snapshot"
	FrameMessage  = "message"
	FrameAck      = "ack"
	FrameError    = "error"
)

type ClientFrame struct {
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
	Key   string `json:"key,omitempty"`
	Shift bool   `json:"shift,omitempty"`
}

type ServerFrame struct {
	Type      string                 `json:"type"`
	SessionID string                 `json:"session_id,omitempty"`
	Messages  []conversation.Message `json:"messages,omitempty"`
	Message   *conversation.Message  `json:"message,omitempty"`
	// Ack fields: which client frame this answers, whether the key was
	// consumed and whether a message was sent.
	Action    string `json:"action,omitempty"`
	Handled   bool   `json:"handled,omitempty"`
	Submitted bool   `json:"submitted,omitempty"`
	Error     string `json:"error,omitempty"`
}

func decodeClientFrame(b []byte) (ClientFrame, error) {
	var f ClientFrame
	if err := json.Unmarshal(b, &f); err != nil {
		return ClientFrame{}, errors.Wrap(err, "malformed frame")
	}
	switch f.Type {
	case FrameDraft, FrameSubmit, FrameKey:
		return f, nil
	default:
		return ClientFrame{}, errors.Errorf("unknown frame type %q", f.Type)
	}
}

func snapshotFrame(sessionID string, msgs []conversation.Message) ServerFrame {
	return ServerFrame{Type: FrameSnapshot, SessionID: sessionID, Messages: msgs}
}

func messageFrame(m conversation.Message) ServerFrame {
	return ServerFrame{Type: FrameMessage, Message: &m}
}

func ackFrame(action string, handled, submitted bool) ServerFrame {
	return ServerFrame{Type: FrameAck, Action: action, Handled: handled, Submitted: submitted}
}

func errorFrame(err error) ServerFrame {
	return ServerFrame{Type: FrameError, Error: err.Error()}
}
