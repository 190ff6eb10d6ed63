package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/helmcrest/dispatch"
)

type shellStyles struct {
	prompt     lipgloss.Style
	output     lipgloss.Style
	errorLine  lipgloss.Style
	suggestion lipgloss.Style
	banner     lipgloss.Style
}

func newShellStyles() shellStyles {
	return shellStyles{
		prompt:     lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		output:     lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		errorLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		suggestion: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		banner:     lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
	}
}

// Run builds the session and manager, then drives the interactive shell
// until the user exits.
func Run(cfg Config, store *Store, logger *log.Logger) error {
	session := NewSession(cfg.Actor, store, logger)

	manager, err := NewManager(store, logger)
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	ti := textinput.New()
	ti.Prompt = cfg.Actor + "> "
	ti.Placeholder = "type a command, tab completes"
	ti.CharLimit = 512
	ti.Focus()

	m := shellModel{
		manager:      manager,
		session:      session,
		store:        store,
		logger:       logger,
		input:        ti,
		styles:       newShellStyles(),
		historyLimit: cfg.HistoryLimit,
	}

	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}

type shellModel struct {
	manager *dispatch.Manager[*Session]
	session *Session
	store   *Store
	logger  *log.Logger

	input        textinput.Model
	lines        []string
	suggestions  []dispatch.Suggestion
	historyLimit int
	width        int
	styles       shellStyles
}

func (m shellModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(m.input.Prompt) - 2
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit

		case tea.KeyTab:
			m.complete()
			return m, nil

		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			m.suggestions = nil
			if line == "" {
				return m, nil
			}
			m.runLine(line)
			if m.session.QuitRequested() {
				return m, tea.Quit
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.suggestions = nil
	return m, cmd
}

// complete asks the manager for completions of the current line and applies
// the sole candidate directly, or shows the alternatives.
func (m *shellModel) complete() {
	line := m.input.Value()
	suggestions := m.manager.Suggest(context.Background(), m.session, line)
	if len(suggestions) == 0 {
		return
	}
	if len(suggestions) == 1 {
		m.input.SetValue(replaceLastToken(line, suggestions[0].Text))
		m.input.CursorEnd()
		m.suggestions = nil
		return
	}
	m.suggestions = suggestions
}

// replaceLastToken swaps the token under the cursor for the completion. A
// trailing space means the completion starts a fresh token.
func replaceLastToken(line, completion string) string {
	idx := strings.LastIndexByte(line, ' ')
	return line[:idx+1] + completion
}

func (m *shellModel) runLine(line string) {
	m.pushLine(m.styles.prompt.Render(m.input.Prompt) + line)

	var buf bytes.Buffer
	m.session.Out = &buf
	res := m.manager.Execute(context.Background(), m.session, line)

	outcome := "ok"
	if res.Err != nil {
		outcome = res.Err.Error()
		m.pushLine(m.styles.errorLine.Render(renderError(res.Err)))
	}
	for _, out := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if out != "" {
			m.pushLine(m.styles.output.Render(out))
		}
	}

	if err := m.store.Record(m.session.Actor, line, outcome); err != nil {
		m.logger.Error("audit write failed", "err", err)
	}
}

func (m *shellModel) pushLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > m.historyLimit {
		m.lines = m.lines[len(m.lines)-m.historyLimit:]
	}
}

// renderError strips the library prefix and surfaces the most useful detail
// for each failure shape.
func renderError(err error) string {
	var (
		noSuchCommand *dispatch.NoSuchCommandError
		invalidSyntax *dispatch.InvalidSyntaxError
		noPermission  *dispatch.NoPermissionError
		badArgument   *dispatch.ArgumentParseError
	)
	switch {
	case errors.As(err, &noSuchCommand):
		if len(noSuchCommand.Suggestions) > 0 {
			return fmt.Sprintf("unknown command %q, did you mean %s?",
				noSuchCommand.Token, strings.Join(noSuchCommand.Suggestions, ", "))
		}
		return fmt.Sprintf("unknown command %q, try help", noSuchCommand.Token)
	case errors.As(err, &invalidSyntax):
		return "usage: " + invalidSyntax.Syntax
	case errors.As(err, &noPermission):
		return "you may not run " + noPermission.Syntax
	case errors.As(err, &badArgument):
		return fmt.Sprintf("bad value for %s: %v", badArgument.Component, badArgument.Cause)
	default:
		return err.Error()
	}
}

func (m shellModel) View() string {
	var b strings.Builder

	if len(m.lines) == 0 {
		b.WriteString(m.styles.banner.Render("ordersh " + Version))
		b.WriteString(m.styles.suggestion.Render("  type help to list commands"))
		b.WriteString("\n")
	}
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")

	if len(m.suggestions) > 0 {
		var texts []string
		for _, s := range m.suggestions {
			if s.Tooltip != "" {
				texts = append(texts, s.Text+" ("+s.Tooltip+")")
			} else {
				texts = append(texts, s.Text)
			}
		}
		b.WriteString(m.styles.suggestion.Render(strings.Join(texts, "  ")))
		b.WriteString("\n")
	}

	return b.String()
}
