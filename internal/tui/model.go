// Package tui is a terminal front end for a voice session: a scrolling
// transcript, a text input and the connection, microphone and speaking
// indicators.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	orchestration "github.com/vsurfcode/portfolio-voice/core"
	"github.com/vsurfcode/portfolio-voice/core/events"
)

// Controller is the part of a session the interface drives.
type Controller interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context)
	ToggleMic(ctx context.Context) error
	SendText(ctx context.Context, message string) error
	Snapshot() orchestration.SessionSnapshot
}

type actionDoneMsg struct{ err error }

type Model struct {
	ctx        context.Context
	controller Controller
	theme      theme

	input      textinput.Model
	transcript viewport.Model
	// follow keeps the transcript pinned to the newest entry until the user
	// scrolls up.
	follow bool

	width  int
	height int

	assistantName string
	state         orchestration.State
	listening     bool
	speaking      bool
	entries       []orchestration.TranscriptEntry
	err           error
}

func NewModel(ctx context.Context, controller Controller) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 2000
	input.Placeholder = "Ask anything about the portfolio..."
	input.Focus()

	snapshot := controller.Snapshot()

	return Model{
		ctx:           ctx,
		controller:    controller,
		theme:         newTheme(),
		input:         input,
		transcript:    viewport.New(0, 0),
		follow:        true,
		assistantName: snapshot.AssistantName,
		state:         snapshot.State,
		listening:     snapshot.Listening,
		speaking:      snapshot.Speaking,
		entries:       snapshot.Transcript,
		err:           snapshot.Err,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.controller.Disconnect(m.ctx)
			return m, tea.Quit
		case "ctrl+k":
			return m, m.toggleConnection()
		case "ctrl+t":
			return m, m.run(m.controller.ToggleMic)
		case "pgup", "pgdown":
			return m.scroll(msg)
		case "enter":
			text := m.input.Value()
			m.input.Reset()
			return m, m.run(func(ctx context.Context) error {
				return m.controller.SendText(ctx, text)
			})
		}

	case tea.MouseMsg:
		return m.scroll(msg)

	case transcriptMsg:
		m.entries = msg
	case stateMsg:
		m.state = orchestration.State(msg)
	case speakingMsg:
		m.speaking = bool(msg)
	case listeningMsg:
		m.listening = bool(msg)
	case errorMsg:
		m.err = msg.err
	case actionDoneMsg:
		m.err = msg.err
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.renderTranscript()
	return m, tea.Batch(cmds...)
}

func (m Model) scroll(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.transcript, cmd = m.transcript.Update(msg)
	m.follow = m.transcript.AtBottom()
	return m, cmd
}

func (m Model) toggleConnection() tea.Cmd {
	if m.state == orchestration.StateDisconnected {
		return m.run(m.controller.Connect)
	}
	return m.run(func(ctx context.Context) error {
		m.controller.Disconnect(ctx)
		return nil
	})
}

func (m Model) run(action func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{err: action(ctx)}
	}
}

func (m *Model) resize() {
	width := max(20, m.width-4)
	m.input.Width = max(10, width-4)
	m.transcript.Width = max(10, width-2)
	m.transcript.Height = max(3, m.height-9)
}

func (m *Model) renderTranscript() {
	m.transcript.SetContent(m.renderEntries())
	if m.follow {
		m.transcript.GotoBottom()
	}
}

func (m Model) renderEntries() string {
	if len(m.entries) == 0 {
		if m.state == orchestration.StateDisconnected {
			return m.theme.help.Render("Press ctrl+k to start a conversation.")
		}
		return m.theme.help.Render("Say hello or type a question.")
	}

	width := max(20, m.transcript.Width-2)
	var sb strings.Builder
	for _, entry := range m.entries {
		label, style := m.speaker(entry.Role)
		sb.WriteString(style.Render(label))
		sb.WriteString("\n")

		content := wordwrap.String(entry.Content, width)
		if entry.Live {
			content = m.theme.live.Render(content)
		}
		sb.WriteString(content)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

func (m Model) speaker(role events.Role) (string, lipgloss.Style) {
	if role == events.RoleUser {
		return "You", m.theme.user
	}

	name := m.assistantName
	if name == "" {
		name = "Assistant"
	}
	return name, m.theme.assistant
}

func (m Model) statusLine() string {
	parts := []string{m.state.String()}
	if m.state == orchestration.StateConnected {
		if m.listening {
			parts = append(parts, "mic on")
		} else {
			parts = append(parts, "mic muted")
		}
	}
	if m.speaking {
		parts = append(parts, "speaking")
	}
	return strings.Join(parts, " · ")
}

func (m Model) View() string {
	title := m.assistantName
	if title == "" {
		title = "Portfolio assistant"
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		m.theme.header.Render(title),
		m.theme.status.Render(m.statusLine()),
	)

	var footer string
	if message := orchestration.UserMessage(m.err); message != "" {
		footer = m.theme.errorLine.Render(message)
	} else {
		footer = m.theme.help.Render("enter send · ctrl+k connect/disconnect · ctrl+t mic · pgup/pgdown scroll · esc quit")
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s",
		header,
		m.theme.panel.Render(m.transcript.View()),
		m.theme.inputPanel.Render(m.input.View()),
		footer,
	)
}

// Run starts the interface and blocks until the user quits.
func Run(ctx context.Context, controller Controller, bridge *Bridge) error {
	program := tea.NewProgram(NewModel(ctx, controller),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	bridge.Attach(program)
	defer bridge.Attach(nil)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run terminal interface: %w", err)
	}
	return nil
}
