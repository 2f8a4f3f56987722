package chat

import "github.com/go-go-golems/pandora/pkg/conversation"

// DefaultReply is the acknowledgment the simulated agent sends after every user message.
const DefaultReply = "Thank you for that context. Let me help you develop a strategy focused on acquiring new customers while maintaining your stable brand health..."

// Responder produces the agent's reply to a user message.
type Responder interface {
	Reply(userMessage conversation.Message) string
}

// CannedResponder always answers with the same text.
type CannedResponder struct {
	Text string
}

func (c CannedResponder) Reply(conversation.Message) string {
	if c.Text == "" {
		return DefaultReply
	}
	return c.Text
}
