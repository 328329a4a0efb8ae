package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Term is the terminal Surface implementation.
type Term struct {
	out io.Writer
}

// NewTerm creates a terminal surface writing to stdout.
func NewTerm() *Term {
	return &Term{out: os.Stdout}
}

// Input prompts for one line of text.
func (t *Term) Input(prompt string, masked bool) (string, error) {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt + ": ")
	ti.CharLimit = 512
	if masked {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
	}
	ti.Focus()

	p := tea.NewProgram(inputModel{input: ti}, tea.WithOutput(t.out))
	res, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("run input prompt: %w", err)
	}

	m := res.(inputModel)
	value := strings.TrimSpace(m.input.Value())
	if m.abandoned || value == "" {
		return "", ErrAbandoned
	}
	return value, nil
}

// Pick shows a cursor list and returns the chosen option's index.
func (t *Term) Pick(title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, ErrAbandoned
	}

	p := tea.NewProgram(pickModel{title: title, options: options}, tea.WithOutput(t.out))
	res, err := p.Run()
	if err != nil {
		return 0, fmt.Errorf("run pick list: %w", err)
	}

	m := res.(pickModel)
	if m.abandoned {
		return 0, ErrAbandoned
	}
	return m.cursor, nil
}

func (t *Term) Info(msg string) {
	fmt.Fprintln(t.out, infoStyle.Render("✓ "+msg))
}

func (t *Term) Warn(msg string) {
	fmt.Fprintln(t.out, warnStyle.Render("! "+msg))
}

func (t *Term) Error(msg string) {
	fmt.Fprintln(t.out, errStyle.Render("✗ "+msg))
}

// inputModel drives one text prompt.
type inputModel struct {
	input     textinput.Model
	done      bool
	abandoned bool
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			m.done = true
			return m, tea.Quit
		case "esc", "ctrl+c":
			m.abandoned = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done || m.abandoned {
		return ""
	}
	return m.input.View()
}

// pickModel drives one single-choice list.
type pickModel struct {
	title     string
	options   []string
	cursor    int
	done      bool
	abandoned bool
}

func (m pickModel) Init() tea.Cmd {
	return nil
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter":
			m.done = true
			return m, tea.Quit
		case "esc", "q", "ctrl+c":
			m.abandoned = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickModel) View() string {
	if m.done || m.abandoned {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	for i, opt := range m.options {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + opt))
		} else {
			b.WriteString("  " + opt)
		}
		b.WriteString("\n")
	}
	return b.String()
}
