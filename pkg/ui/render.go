package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/pandora/pkg/conversation"
	"github.com/rs/zerolog/log"
)

// messageRenderer turns the conversation into the text shown in the viewport.
type messageRenderer struct {
	width    int
	markdown *glamour.TermRenderer
}

func newMessageRenderer(width int, markdownStyle string) messageRenderer {
	r := messageRenderer{width: width}
	if markdownStyle == "" {
		return r
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(markdownStyle),
		glamour.WithWordWrap(bubbleWidth(width)-4),
	)
	if err != nil {
		log.Warn().Err(err).Str("component", "ui").Msg("markdown rendering disabled")
		return r
	}
	r.markdown = tr
	return r
}

// bubbleWidth caps a message bubble at 80% of the available width.
func bubbleWidth(width int) int {
	w := width * 4 / 5
	if w < 20 {
		w = 20
	}
	return w
}

func (r messageRenderer) content(m conversation.Message) string {
	if r.markdown == nil {
		return m.Content
	}
	out, err := r.markdown.Render(m.Content)
	if err != nil {
		return m.Content
	}
	return strings.Trim(out, "\n")
}

func (r messageRenderer) renderMessage(m conversation.Message) string {
	bw := bubbleWidth(r.width)
	style := agentBubbleStyle
	if m.IsUser() {
		style = userBubbleStyle
	}
	block := lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render(m.Sender.Label()),
		style.Width(bw).Render(r.content(m)),
	)
	align := lipgloss.Left
	if m.IsUser() {
		align = lipgloss.Right
	}
	return lipgloss.PlaceHorizontal(r.width, align, block)
}

func (r messageRenderer) render(msgs []conversation.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, r.renderMessage(m))
	}
	return strings.Join(parts, "\n\n")
}
