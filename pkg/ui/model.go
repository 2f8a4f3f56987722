package ui

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/pandora/pkg/chat"
	"github.com/go-go-golems/pandora/pkg/conversation"
	"github.com/rs/zerolog/log"
)

const (
	title       = "PANDORA"
	subtitle    = "Ask our Planning Agent anything"
	placeholder = "Ask me anything about Pandora Planning..."

	headerHeight = 3
	inputHeight  = 3
	// input border, status line and help line
	chromeHeight = 2 + 1 + 1
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

// MessageAppendedMsg tells the model that the conversation grew, typically
// because a deferred reply arrived through the in-process bus.
type MessageAppendedMsg struct {
	Message conversation.Message
}

type Options struct {
	// MarkdownStyle is a glamour standard style ("dark", "light", "notty").
	// Empty disables markdown rendering.
	MarkdownStyle string
}

// Model is the bubbletea chat view of one session.
type Model struct {
	session *chat.Session
	opts    Options

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	renderer messageRenderer

	width  int
	height int
	status string
	err    error

	confirm     *huh.Form
	confirmQuit *bool
}

func NewModel(session *chat.Session, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	m := Model{
		session:  session,
		opts:     opts,
		viewport: viewport.New(80, 10),
		input:    ta,
		spinner:  sp,
		help:     help.New(),
		keys:     defaultKeyMap(),
	}
	m.resize(80, 24)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width - 2)
	vh := height - headerHeight - inputHeight - chromeHeight
	if vh < 1 {
		vh = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vh
	m.renderer = newMessageRenderer(width, m.opts.MarkdownStyle)
	m.refresh()
}

// refresh re-renders the whole conversation and keeps the newest message in view.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderer.render(m.session.Messages()))
	m.viewport.GotoBottom()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		return m.updateConfirm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case MessageAppendedMsg:
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()

		case key.Matches(msg, m.keys.Send):
			m.session.SetDraft(m.input.Value())
			res := m.session.HandleKey(chat.KeyEvent{Key: chat.KeyEnter})
			if res.Submitted {
				m.input.Reset()
				m.status = ""
				m.refresh()
			}
			return m, nil

		case key.Matches(msg, m.keys.Newline):
			res := m.session.HandleKey(chat.KeyEvent{Key: chat.KeyEnter, Shift: true})
			if !res.Handled {
				m.input.InsertString("\n")
				m.session.SetDraft(m.input.Value())
			}
			return m, nil

		case key.Matches(msg, m.keys.Copy):
			m.copyLastReply()
			return m, nil

		case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SetDraft(m.input.Value())
	return m, cmd
}

func (m *Model) copyLastReply() {
	last, ok := m.session.Store().LastFrom(conversation.SenderAgent)
	if !ok {
		m.status = "nothing to copy"
		return
	}
	if err := writeClipboard(last.Content); err != nil {
		log.Warn().Err(err).Str("component", "ui").Msg("clipboard write failed")
		m.err = err
		return
	}
	m.err = nil
	m.status = "copied last reply"
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.session.Pending() == 0 {
		return m, tea.Quit
	}
	confirmed := new(bool)
	m.confirmQuit = confirmed
	m.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("A reply is still on its way. Quit anyway?").
				Affirmative("Quit").
				Negative("Stay").
				Value(confirmed),
		),
	).WithTheme(huh.ThemeCharm())
	return m, m.confirm.Init()
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	fm, cmd := m.confirm.Update(msg)
	if f, ok := fm.(*huh.Form); ok {
		m.confirm = f
	}
	switch m.confirm.State {
	case huh.StateCompleted:
		quit := m.confirmQuit != nil && *m.confirmQuit
		m.confirm = nil
		m.confirmQuit = nil
		if quit {
			return m, tea.Quit
		}
		return m, nil
	case huh.StateAborted:
		m.confirm = nil
		m.confirmQuit = nil
		return m, nil
	}
	return m, cmd
}

// Confirming reports whether the quit confirmation is showing.
func (m Model) Confirming() bool {
	return m.confirm != nil
}

func (m Model) View() string {
	header := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render(title),
		subtitleStyle.Render(subtitle),
	)
	header = lipgloss.PlaceHorizontal(m.width, lipgloss.Center, header) + "\n"

	if m.confirm != nil {
		return header + "\n" + m.confirm.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		inputStyle.Render(m.input.View()),
		m.statusLine(),
		m.help.View(m.keys),
	)
}

func (m Model) statusLine() string {
	if m.err != nil {
		return errorStyle.Render("Error: " + m.err.Error())
	}
	if n := m.session.Pending(); n > 0 {
		label := "Diana is typing"
		if n > 1 {
			label = fmt.Sprintf("Diana is typing (%d replies pending)", n)
		}
		return m.spinner.View() + " " + statusStyle.Render(label)
	}
	return statusStyle.Render(m.status)
}
