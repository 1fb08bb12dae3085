package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iishyfishyy/qabot/internal/bot"
	"github.com/iishyfishyy/qabot/internal/chat"
	"github.com/iishyfishyy/qabot/internal/config"
)

// Asker is the TUI-facing subset of the bot
type Asker interface {
	Ask(query string) bot.Reply
}

type line struct {
	fromBot bool
	text    string
	detail  string
}

// Model is the Bubble Tea model for the full-screen chat
type Model struct {
	bot        Asker
	messages   config.Messages
	summary    string
	input      textinput.Model
	viewport   viewport.Model
	transcript []line
	status     string
	ready      bool
	quitting   bool
}

// New creates a chat model; summary is shown under the title
func New(b Asker, messages config.Messages, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	m := Model{
		bot:      b,
		messages: messages,
		summary:  summary,
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   fmt.Sprintf("Type %q or press Ctrl+C to quit.", messages.ExitCommand),
	}
	m.transcript = append(m.transcript, line{fromBot: true, text: messages.Greeting})
	return m
}

// Init starts the cursor blink
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + ih + 1 // header and summary, status, input box
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			m.quitting = true
			return m, tea.Quit
		}
		if msg.String() == "enter" {
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	q := strings.TrimSpace(m.input.Value())
	if q == "" {
		return m, nil
	}
	m.input.Reset()
	m.transcript = append(m.transcript, line{text: q})

	if chat.IsExitCommand(q, m.messages.ExitCommand) {
		m.transcript = append(m.transcript, line{fromBot: true, text: m.messages.Farewell})
		m.quitting = true
		m.refresh()
		return m, tea.Quit
	}

	reply := m.bot.Ask(q)
	if reply.Matched {
		detail := fmt.Sprintf("%s (score %.2f)", reply.Question, reply.Score)
		if reply.Exact {
			detail = reply.Question + " (exact)"
		}
		m.transcript = append(m.transcript, line{fromBot: true, text: reply.Answer, detail: detail})
		m.status = "Matched: " + detail
	} else {
		m.transcript = append(m.transcript, line{fromBot: true, text: m.messages.Fallback})
		m.status = "No question was similar enough."
	}

	m.refresh()
	return m, nil
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// View renders the layout
func (m Model) View() string {
	if m.quitting {
		return strings.Join(m.Transcript(), "\n") + "\n"
	}
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("qabot")
	summary := mutedStyle.Render(m.summary)
	transcript := transcriptBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	var b strings.Builder
	for i, l := range m.transcript {
		if i > 0 {
			b.WriteString("\n")
		}
		if l.fromBot {
			b.WriteString(botStyle.Render(m.messages.BotPrefix))
			b.WriteString(l.text)
			if l.detail != "" {
				b.WriteString("\n  ")
				b.WriteString(mutedStyle.Render(l.detail))
			}
			continue
		}
		b.WriteString(userStyle.Render(m.messages.Prompt))
		b.WriteString(l.text)
	}
	return b.String()
}

// Transcript returns the conversation as plain text lines
func (m Model) Transcript() []string {
	out := make([]string, len(m.transcript))
	for i, l := range m.transcript {
		if l.fromBot {
			out[i] = m.messages.BotPrefix + l.text
		} else {
			out[i] = m.messages.Prompt + l.text
		}
	}
	return out
}

var (
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	botStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	mutedStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)
