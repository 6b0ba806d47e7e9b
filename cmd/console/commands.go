package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/casefile/internal/game"
	"github.com/jwebster45206/casefile/pkg/gate"
	"github.com/jwebster45206/casefile/pkg/lookup"
)

const opTimeout = 5 * time.Second

// viewMsg carries the result of an engine call back to the UI.
type viewMsg struct {
	view    *game.View
	status  string
	isError bool
}

type errMsg struct {
	err error
}

type clipboardMsg struct {
	count int
	err   error
}

// command is one parsed line of input. Lines that do not start with ':' are searches.
type command struct {
	name string
	args []string
}

func parseCommand(input string) command {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, ":") {
		return command{name: "search", args: []string{input}}
	}
	fields := strings.Fields(strings.TrimPrefix(input, ":"))
	if len(fields) == 0 {
		return command{name: "help"}
	}
	return command{name: strings.ToLower(fields[0]), args: fields[1:]}
}

// caseFromArg accepts "3", "03" or "Case03".
func caseFromArg(arg string) string {
	if n, err := strconv.Atoi(arg); err == nil {
		return fmt.Sprintf("Case%02d", n)
	}
	if strings.HasPrefix(strings.ToLower(arg), "case") {
		if n, err := strconv.Atoi(arg[len("case"):]); err == nil {
			return fmt.Sprintf("Case%02d", n)
		}
	}
	return arg
}

// userMessage turns an engine error into status-line text.
func userMessage(err error) string {
	switch {
	case errors.Is(err, lookup.ErrInvalidFormat):
		return "Invalid format. Use Number then Letters (e.g., 237NW)."
	case errors.Is(err, game.ErrNoCaseSelected):
		return "Please select a case first. (:case N)"
	default:
		return err.Error()
	}
}

var commandArgs = map[string]int{
	"letter": 1, "cross": 1, "restore": 1, "req": 2, "unreq": 2, "open": 1, "case": 1, "go": 1,
}

var commandUsage = map[string]string{
	"letter":  ":letter X",
	"cross":   ":cross X",
	"restore": ":restore X",
	"req":     ":req LEAD X",
	"unreq":   ":unreq LEAD X",
	"open":    ":open N",
	"case":    ":case N",
	"go":      ":go LEAD",
}

// dispatch turns a command into the tea.Cmd that runs it. A nil Cmd with a non-empty status
// means the command was rejected before reaching the engine.
func (m ConsoleUI) dispatch(c command) (tea.Cmd, string) {
	if n, ok := commandArgs[c.name]; ok && len(c.args) != n {
		return nil, "Usage: " + commandUsage[c.name]
	}

	switch c.name {
	case "search", "go":
		return m.searchCmd(c.args[0]), ""
	case "letter":
		return m.viewCmd(func(ctx context.Context) (*game.View, error) {
			return m.engine.AddLetter(ctx, m.sessionID, c.args[0])
		}), ""
	case "cross":
		return m.viewCmd(func(ctx context.Context) (*game.View, error) {
			return m.engine.CrossOutLetter(ctx, m.sessionID, c.args[0])
		}), ""
	case "restore":
		return m.viewCmd(func(ctx context.Context) (*game.View, error) {
			return m.engine.RestoreLetter(ctx, m.sessionID, c.args[0])
		}), ""
	case "req":
		return m.viewCmd(func(ctx context.Context) (*game.View, error) {
			return m.engine.AddRequirement(ctx, m.sessionID, c.args[0], c.args[1])
		}), ""
	case "unreq":
		return m.viewCmd(func(ctx context.Context) (*game.View, error) {
			return m.engine.RemoveRequirement(ctx, m.sessionID, c.args[0], c.args[1])
		}), ""
	case "case":
		caseID := caseFromArg(c.args[0])
		return m.viewCmd(func(ctx context.Context) (*game.View, error) {
			return m.engine.SelectCase(ctx, m.sessionID, caseID)
		}), ""
	case "open":
		n, err := strconv.Atoi(c.args[0])
		if err != nil || m.view == nil || n < 1 || n > len(m.view.Evidence) {
			return nil, "No evidence with that number."
		}
		return m.openCmd(m.view.Evidence[n-1].Filename), ""
	case "copy":
		return m.copyCmd(), ""
	default:
		return nil, "Unknown command. Type :help for commands."
	}
}

func (m ConsoleUI) viewCmd(op func(context.Context) (*game.View, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		v, err := op(ctx)
		if err != nil {
			return errMsg{err}
		}
		return viewMsg{view: v, status: v.Message}
	}
}

func (m ConsoleUI) searchCmd(query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		res, err := m.engine.Search(ctx, m.sessionID, query)
		if err != nil {
			return errMsg{err}
		}
		return viewMsg{view: res.View, status: res.Message, isError: !res.Found}
	}
}

func (m ConsoleUI) openCmd(filename string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		res, err := m.engine.OpenGate(ctx, m.sessionID, filename)
		if err != nil {
			return errMsg{err}
		}
		if res.Outcome == gate.OutcomeRequirementNotMet {
			return viewMsg{view: res.View, status: res.Message, isError: true}
		}
		return viewMsg{view: res.View, status: "Opened " + filename}
	}
}

func (m ConsoleUI) resetCmd() tea.Cmd {
	return m.viewCmd(func(ctx context.Context) (*game.View, error) {
		return m.engine.Reset(ctx, m.sessionID)
	})
}

func (m ConsoleUI) copyCmd() tea.Cmd {
	text := leadsText(m.view)
	count := 0
	if m.view != nil {
		count = len(m.view.Leads)
	}
	return func() tea.Msg {
		return clipboardMsg{count: count, err: clipboard.WriteAll(text)}
	}
}

// leadsText is the found-lead list as copied to the clipboard, one lead per line.
func leadsText(v *game.View) string {
	if v == nil {
		return ""
	}
	var b strings.Builder
	for _, lead := range v.Leads {
		b.WriteString(lead)
		if reqs := v.Requirements[lead]; len(reqs) > 0 {
			b.WriteString(" (requires " + strings.Join(reqs, ", ") + ")")
		}
		b.WriteString("\n")
	}
	return b.String()
}
