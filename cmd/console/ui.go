package main

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/jwebster45206/casefile/internal/game"
)

const PlaceHolderText = "Location (e.g. 237NW) or :help"

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	engine    *game.Engine
	sessionID uuid.UUID
	casesDir  string
	view      *game.View

	evidenceViewport viewport.Model
	metaViewport     viewport.Model
	input            textinput.Model
	ready            bool
	width            int
	height           int
	busy             bool

	status    string
	statusErr bool
	showHelp  bool

	showResetModal bool
	showQuitModal  bool
}

var (
	evidencePanelStyle = lipgloss.NewStyle().
				PaddingTop(1).
				PaddingLeft(2).
				PaddingRight(1)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	openStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	lockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	removedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(engine *game.Engine, view *game.View, casesDir string) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = PlaceHolderText
	ti.Focus()
	ti.Prompt = promptStyle.Render(":: ")
	ti.CharLimit = 64
	ti.Width = 40

	evidenceVp := viewport.New(50, 20)
	evidenceVp.MouseWheelEnabled = true

	metaVp := viewport.New(30, 20)

	m := ConsoleUI{
		engine:           engine,
		casesDir:         casesDir,
		view:             view,
		input:            ti,
		evidenceViewport: evidenceVp,
		metaViewport:     metaVp,
	}
	if view != nil {
		m.sessionID = view.SessionID
		m.status = view.Message
	}
	return m
}

func (m ConsoleUI) Init() tea.Cmd {
	return textinput.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showResetModal {
		return m.updateResetModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.evidenceViewport, vpCmd = m.evidenceViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			input := strings.TrimSpace(m.input.Value())
			if input == "" {
				return m, nil
			}
			m.input.Reset()
			return m.handleInput(input)
		}

	case viewMsg:
		m.busy = false
		m.view = msg.view
		m.setStatus(msg.status, msg.isError)
		m.showHelp = false
		m.refresh()
		m.evidenceViewport.GotoTop()
		return m, nil

	case errMsg:
		m.busy = false
		m.setStatus(userMessage(msg.err), true)
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.setStatus("Could not copy to clipboard: "+msg.err.Error(), true)
		} else {
			m.setStatus(pluralLeads(msg.count)+" copied to clipboard.", false)
		}
		return m, nil
	}

	m.input, tiCmd = m.input.Update(msg)
	m.evidenceViewport, vpCmd = m.evidenceViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) handleInput(input string) (tea.Model, tea.Cmd) {
	c := parseCommand(input)

	switch c.name {
	case "help":
		m.showHelp = !m.showHelp
		m.refresh()
		return m, nil
	case "quit", "q":
		m.showQuitModal = true
		return m, nil
	case "reset":
		m.showResetModal = true
		return m, nil
	}

	cmd, status := m.dispatch(c)
	if cmd == nil {
		m.setStatus(status, true)
		return m, nil
	}
	m.busy = true
	return m, cmd
}

func (m *ConsoleUI) setStatus(status string, isError bool) {
	m.status = status
	m.statusErr = isError
}

func (m *ConsoleUI) resize() {
	evidenceWidth, metaWidth := m.panelWidths()
	m.evidenceViewport.Width = evidenceWidth - 3
	m.evidenceViewport.Height = max(m.height-6, 3)
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = max(m.height-2, 3)
	m.input.Width = max(evidenceWidth-8, 10)
}

func (m ConsoleUI) panelWidths() (int, int) {
	evidenceWidth := int(float64(m.width)*0.65) - 2
	return evidenceWidth, m.width - evidenceWidth - 2
}

// refresh re-renders both panels for the current width.
func (m *ConsoleUI) refresh() {
	if m.showHelp {
		m.evidenceViewport.SetContent(renderHelp())
	} else {
		m.evidenceViewport.SetContent(renderEvidence(m.view, m.casesDir, m.evidenceViewport.Width))
	}
	m.metaViewport.SetContent(renderMeta(m.view, m.metaViewport.Width))
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.input.Focus()
				return m, textinput.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateResetModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y":
			m.showResetModal = false
			m.busy = true
			return m, m.resetCmd()
		case "n", "N", "esc", "ctrl+c":
			m.showResetModal = false
			m.setStatus("Reset cancelled.", false)
			return m, nil
		}
	}

	return m, nil
}

func (m ConsoleUI) renderModal(title, body string) string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render(title))
	content.WriteString("\n\n")
	content.WriteString(body)
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to confirm or N to go back"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderModal("Quit?", "Your progress is saved. Leave the case file?")
	}
	if m.showResetModal {
		return m.renderModal("Delete all progress?", "Leads, letters and notes for every case will be cleared.")
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	evidenceWidth, metaWidth := m.panelWidths()

	status := statusStyle.Render(m.status)
	if m.statusErr {
		status = errorStyle.Render(m.status)
	}

	evidencePanel := evidencePanelStyle.Width(evidenceWidth).Height(m.height - 1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.evidenceViewport.View(),
			separatorStyle.Render(strings.Repeat("─", max(evidenceWidth-4, 1))),
			status,
			m.input.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 1).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, evidencePanel, metaPanel)
}
