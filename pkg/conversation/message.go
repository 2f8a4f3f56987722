package conversation

import (
	"time"

	"github.com/pkg/errors"
)

// Sender identifies who wrote a message. Only SenderUser and SenderAgent exist.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

var ErrInvalidSender = errors.New("invalid sender")

func (s Sender) Validate() error {
	switch s {
	case SenderUser, SenderAgent:
		return nil
	default:
		return errors.Wrapf(ErrInvalidSender, "%q", string(s))
	}
}

// Label is the display label used by the chat surfaces.
func (s Sender) Label() string {
	if s == SenderUser {
		return "PANDORA (YOU)"
	}
	return "OUR AGENT (DIANA)"
}

// Message is one entry of the conversation.
type Message struct {
	ID        string    `json:"id" yaml:"id"`
	Content   string    `json:"content" yaml:"content"`
	Sender    Sender    `json:"sender" yaml:"sender"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

func NewMessage(id string, sender Sender, content string, ts time.Time) Message {
	return Message{
		ID:        id,
		Content:   content,
		Sender:    sender,
		Timestamp: ts,
	}
}

func (m Message) IsUser() bool  { return m.Sender == SenderUser }
func (m Message) IsAgent() bool { return m.Sender == SenderAgent }
