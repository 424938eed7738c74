// ============================================================================
// Props - Expression Language Front End
// ============================================================================
//
// Package:     repl
// Description: Bubbletea model for the interactive Props REPL
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	propslog "github.com/winterSteve25/props/pkg/core/log"
	"github.com/winterSteve25/props/pkg/core/version"
	"github.com/winterSteve25/props/pkg/props/diag"
	"github.com/winterSteve25/props/pkg/props/parser"
	"github.com/winterSteve25/props/pkg/props/pipeline"
)

const helpText = ":env  type environment | :source  buffer | :reset  clear | :quit  exit"

// Config holds REPL settings
type Config struct {
	Logger   *propslog.Logger
	Recovery parser.Recovery
	Color    bool
}

// Model is the Bubbletea model of the REPL
type Model struct {
	width   int
	height  int
	ready   bool
	loading bool

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	session  *Session
	renderer *diag.Renderer
	entries  []Entry
}

// New creates a REPL model with an empty session
func New(cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = propslog.Discard()
	}

	ta := textarea.New()
	ta.Placeholder = "x: I32 = 1"
	ta.Focus()
	ta.CharLimit = 4000
	ta.SetWidth(80)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = PromptStyle

	p := pipeline.New(pipeline.Options{Logger: logger, Recovery: cfg.Recovery})

	return Model{
		textarea: ta,
		spinner:  sp,
		session:  NewSession(p),
		renderer: diag.NewRenderer(cfg.Color),
	}
}

// Run starts the REPL on the terminal
func Run(cfg Config) error {
	_, err := tea.NewProgram(New(cfg), tea.WithAltScreen()).Run()
	return err
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Entries returns the transcript
func (m Model) Entries() []Entry {
	return m.entries
}

// Session returns the underlying session
func (m Model) Session() *Session {
	return m.session
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 2
		footerHeight := 6
		viewportHeight := msg.Height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = viewportHeight
		}
		m.textarea.SetWidth(msg.Width - 6)
		m.updateViewportContent()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case evalResultMsg:
		m.loading = false
		m.appendResult(msg)
		m.updateViewportContent()
	}

	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit handles the current input line
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimRight(m.textarea.Value(), " \t")
	if strings.TrimSpace(line) == "" || m.loading {
		return m, nil
	}
	m.textarea.Reset()
	m.entries = append(m.entries, Entry{Kind: EntryInput, Text: line})

	switch strings.TrimSpace(line) {
	case ":quit", ":q":
		return m, tea.Quit

	case ":reset":
		m.session.Reset()
		m.entries = append(m.entries, Entry{Kind: EntryInfo, Text: "session cleared"})

	case ":env":
		env := m.session.Env()
		if len(env) == 0 {
			m.entries = append(m.entries, Entry{Kind: EntryInfo, Text: "environment is empty"})
		} else {
			m.entries = append(m.entries, Entry{Kind: EntryEnv, Text: strings.Join(env, "\n")})
		}

	case ":source":
		lines := m.session.Lines()
		if len(lines) == 0 {
			m.entries = append(m.entries, Entry{Kind: EntryInfo, Text: "buffer is empty"})
		} else {
			m.entries = append(m.entries, Entry{Kind: EntryInfo, Text: strings.Join(lines, "\n")})
		}

	case ":help":
		m.entries = append(m.entries, Entry{Kind: EntryInfo, Text: helpText})

	default:
		if strings.HasPrefix(strings.TrimSpace(line), ":") {
			m.entries = append(m.entries, Entry{Kind: EntryError, Text: "unknown command " + strings.TrimSpace(line)})
			break
		}
		m.loading = true
		m.updateViewportContent()
		return m, tea.Batch(m.eval(line), m.spinner.Tick)
	}

	m.updateViewportContent()
	return m, nil
}

// eval runs line through the session off the update loop
func (m Model) eval(line string) tea.Cmd {
	session := m.session
	return func() tea.Msg {
		res, err := session.Submit(context.Background(), line)
		return evalResultMsg{result: res, err: err}
	}
}

func (m *Model) appendResult(msg evalResultMsg) {
	if msg.err != nil {
		m.entries = append(m.entries, Entry{Kind: EntryError, Text: "Error: " + msg.err.Error()})
		return
	}

	res := msg.result
	if res.Last != nil {
		m.entries = append(m.entries, Entry{Kind: EntryAST, Text: res.Last.String()})
	}
	for _, d := range res.Unit.Diagnostics {
		var sb strings.Builder
		_ = m.renderer.Render(&sb, d, res.Unit.Lines)
		m.entries = append(m.entries, Entry{Kind: EntryDiagnostic, Text: strings.Trim(sb.String(), "\n")})
	}
	if !res.Kept {
		m.entries = append(m.entries, Entry{Kind: EntryInfo, Text: "line discarded"})
	}
}

func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderEntries())
	m.viewport.GotoBottom()
}

func (m Model) renderEntries() string {
	var sb strings.Builder
	for _, e := range m.entries {
		switch e.Kind {
		case EntryInput:
			sb.WriteString(PromptStyle.Render("> ") + InputEchoStyle.Render(e.Text))
		case EntryAST:
			sb.WriteString(ASTStyle.Render(e.Text))
		case EntryDiagnostic:
			sb.WriteString(e.Text)
		case EntryEnv:
			sb.WriteString(EnvStyle.Render(e.Text))
		case EntryError:
			sb.WriteString(ErrorStyle.Render(e.Text))
		default:
			sb.WriteString(InfoStyle.Render(e.Text))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var sb strings.Builder
	sb.WriteString(LogoStyle.Render("props") + " " + SubHeaderStyle.Render("v"+version.REPL))
	sb.WriteString("\n\n")
	sb.WriteString(TranscriptStyle.Width(m.width - 2).Render(m.viewport.View()))
	sb.WriteString("\n")
	sb.WriteString(InputStyle.Width(m.width - 2).Render(m.textarea.View()))
	sb.WriteString("\n")

	status := fmt.Sprintf("%d lines in buffer", len(m.session.Lines()))
	if m.loading {
		status = m.spinner.View() + " evaluating"
	}
	sb.WriteString(StatusBarStyle.Render(status))
	sb.WriteString("\n")
	sb.WriteString(HelpStyle.Render(helpText + " | esc  quit"))

	return sb.String()
}
