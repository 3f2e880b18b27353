package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/remux/pkg/naming"
	"github.com/grovetools/remux/tui/theme"
	"github.com/mattn/go-isatty"
)

// Choice is one option of a prompt.
type Choice struct {
	Label string
	Key   string
	Help  string
}

// Prompter asks the user to pick among choices or confirm an action.
type Prompter struct {
	in          io.Reader
	out         io.Writer
	interactive bool
	reader      *bufio.Reader
}

// NewPrompter creates a Prompter on stdin/stderr. The bubbletea chooser is
// used only when both are terminals.
func NewPrompter() *Prompter {
	interactive := isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stderr.Fd())
	return &Prompter{in: os.Stdin, out: os.Stderr, interactive: interactive}
}

// NewLinePrompter creates a Prompter that always reads answers line by line.
func NewLinePrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Choose returns the index of the selected choice, or -1 when cancelled.
func (p *Prompter) Choose(question string, choices []Choice) (int, error) {
	if p.interactive {
		m := newChoiceModel(question, choices)
		final, err := tea.NewProgram(m, tea.WithInput(p.in), tea.WithOutput(p.out)).Run()
		if err != nil {
			return -1, err
		}
		return final.(choiceModel).chosen, nil
	}
	return p.chooseLine(question, choices)
}

// Confirm asks a yes/no question. Anything but y/yes is a no.
func (p *Prompter) Confirm(question string) (bool, error) {
	if p.interactive {
		idx, err := p.Choose(question, []Choice{
			{Label: "yes", Key: "y"},
			{Label: "no", Key: "n"},
		})
		return idx == 0, err
	}
	fmt.Fprintf(p.out, "%s [y/N] ", question)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// CollisionChoices are the answers offered when an init name is taken.
var CollisionChoices = []Choice{
	{Label: "reuse", Key: "r", Help: "attach to the existing session"},
	{Label: "suffix", Key: "s", Help: "create a new session with a numbered name"},
	{Label: "abort", Key: "a", Help: "leave everything as it is"},
}

var collisionDecisions = []naming.Decision{naming.Reuse, naming.Suffix, naming.Abort}

// DecideCollision prompts for a naming.Decision. Errors and cancellation
// both abort.
func (p *Prompter) DecideCollision(res naming.Resolution) naming.Decision {
	var state []string
	if res.IsLive {
		state = append(state, "a running session")
	}
	if res.HasRecord {
		state = append(state, "a saved record")
	}
	question := fmt.Sprintf("Session '%s' already exists (%s). What now?", res.Name, strings.Join(state, " and "))
	idx, err := p.Choose(question, CollisionChoices)
	if err != nil || idx < 0 || idx >= len(collisionDecisions) {
		return naming.Abort
	}
	return collisionDecisions[idx]
}

// ConfirmStop asks before tearing a session down.
func (p *Prompter) ConfirmStop(name string) bool {
	ok, err := p.Confirm(fmt.Sprintf("Stop session '%s' and delete its record?", name))
	return err == nil && ok
}

func (p *Prompter) chooseLine(question string, choices []Choice) (int, error) {
	fmt.Fprintln(p.out, question)
	for i, c := range choices {
		line := fmt.Sprintf("  %d) %s", i+1, c.Label)
		if c.Help != "" {
			line += " - " + c.Help
		}
		fmt.Fprintln(p.out, line)
	}
	fmt.Fprint(p.out, "> ")

	answer, err := p.readLine()
	if err != nil {
		return -1, err
	}
	answer = strings.ToLower(answer)
	for i, c := range choices {
		if answer == c.Label || (c.Key != "" && answer == c.Key) || answer == fmt.Sprint(i+1) {
			return i, nil
		}
	}
	return -1, nil
}

func (p *Prompter) readLine() (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.in)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

type choiceKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

var choiceKeys = choiceKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k", "shift+tab"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j", "tab"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Cancel: key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc", "cancel")),
}

// choiceModel is the bubbletea model behind Choose.
type choiceModel struct {
	question string
	choices  []Choice
	cursor   int
	chosen   int
	done     bool
}

func newChoiceModel(question string, choices []Choice) choiceModel {
	return choiceModel{question: question, choices: choices, chosen: -1}
}

func (m choiceModel) Init() tea.Cmd {
	return nil
}

func (m choiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, choiceKeys.Cancel):
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, choiceKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, choiceKeys.Down):
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, choiceKeys.Select):
		m.chosen = m.cursor
		m.done = true
		return m, tea.Quit
	default:
		for i, c := range m.choices {
			if c.Key != "" && keyMsg.String() == c.Key {
				m.chosen = i
				m.done = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m choiceModel) View() string {
	if m.done {
		return ""
	}
	t := theme.DefaultTheme
	var b strings.Builder
	b.WriteString(t.Bold.Render(m.question))
	b.WriteString("\n\n")
	for i, c := range m.choices {
		cursor := "  "
		label := c.Label
		if i == m.cursor {
			cursor = t.Cursor.Render(theme.IconArrow + " ")
			label = t.Selected.Render(label)
		}
		if c.Key != "" {
			label += t.Key.Render(" (" + c.Key + ")")
		}
		b.WriteString(cursor + label)
		if c.Help != "" {
			b.WriteString("  " + t.Muted.Render(c.Help))
		}
		b.WriteString("\n")
	}
	help := []string{}
	for _, binding := range []key.Binding{choiceKeys.Up, choiceKeys.Down, choiceKeys.Select, choiceKeys.Cancel} {
		h := binding.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString("\n" + t.Key.Render(strings.Join(help, " • ")) + "\n")
	return b.String()
}
