// Package tui provides a terminal user interface for sq80extract
package tui

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/sq80extract/pkg/converter"
	"github.com/james-see/sq80extract/pkg/converter/devices"
	"github.com/james-see/sq80extract/pkg/disk"
	"github.com/james-see/sq80extract/pkg/extract"
)

// Color scheme after the SQ-80's amber display on a dark panel
var (
	lcdAmber   = lipgloss.Color("#FFB000")
	lcdGreen   = lipgloss.Color("#9ACD32")
	panelGray  = lipgloss.Color("#B0B0B0")
	panelBlack = lipgloss.Color("#222222")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lcdAmber).
			Background(panelBlack).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(panelGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lcdAmber).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(lcdGreen).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lcdAmber).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lcdAmber).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateWorking
	StateResult
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Mode        extract.Mode
	Format      converter.Format // empty lists only
}

var menuItems = []MenuItem{
	{Title: "List programs", Description: "Show the single programs saved on the disk", Mode: extract.ModeProgram},
	{Title: "List banks", Description: "Show the program banks and their contents", Mode: extract.ModeBank},
	{Title: "List virtual banks", Description: "Show single programs grouped into banks of 40", Mode: extract.ModeVirtualBank},
	{Title: "Programs → SYX", Description: "Dump every single program as a SysEx file", Mode: extract.ModeProgram, Format: converter.FormatSyx},
	{Title: "Banks → SYX", Description: "Dump every bank as a SysEx file", Mode: extract.ModeBank, Format: converter.FormatSyx},
	{Title: "Virtual banks → SYX", Description: "Dump the virtual banks as SysEx files", Mode: extract.ModeVirtualBank, Format: converter.FormatSyx},
	{Title: "Banks → BIN", Description: "Dump every bank as raw binary", Mode: extract.ModeBank, Format: converter.FormatBin},
	{Title: "Exit", Description: "Exit the application"},
}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	action       MenuItem
	report       string
	written      []string
	err          error
	width        int
	height       int
}

// extractDoneMsg signals extraction completion
type extractDoneMsg struct {
	report  string
	written []string
	err     error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New() Model {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lcdAmber)

	return Model{
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle file picker state first - it needs to receive all messages
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, m.performExtraction())
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case extractDoneMsg:
		m.state = StateResult
		m.report = msg.report
		m.written = msg.written
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		if m.menuIndex == len(menuItems)-1 {
			return m, tea.Quit
		}
		m.action = menuItems[m.menuIndex]
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.selectedFile = ""
		m.report = ""
		m.written = nil
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performExtraction() tea.Cmd {
	path := m.selectedFile
	action := m.action
	return func() tea.Msg {
		return runAction(path, action)
	}
}

// runAction lists or dumps from the image at path. Dumped files go next to
// the image.
func runAction(path string, action MenuItem) extractDoneMsg {
	img, err := disk.Open(path)
	if err != nil {
		return extractDoneMsg{err: err}
	}
	defer func() { _ = img.Close() }()

	opts := extract.Options{
		Format: action.Format,
		List:   action.Format == "",
	}
	if opts.Dumping() {
		opts.Prefix = filepath.Join(filepath.Dir(path), extract.DefaultPrefix(action.Mode))
	}

	var report bytes.Buffer
	e := extract.New(img, converter.New(devices.NewSQ80()), &report, opts)
	err = e.Run(action.Mode)
	return extractDoneMsg{report: report.String(), written: e.Written(), err: err}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(logo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateWorking:
		s.WriteString(m.viewWorking())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT ACTION "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(lcdGreen).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT SQ80 DISK IMAGE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewWorking() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" READING DISK "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Reading %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  %s", m.action.Title)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s failed: %s", m.action.Title, m.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(" DONE "))
		s.WriteString("\n\n")
		s.WriteString(m.report)
		if len(m.written) > 0 {
			s.WriteString("\n")
			s.WriteString(successStyle.Render(fmt.Sprintf("✓ %d file(s) written", len(m.written))))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func logo() string {
	logo := `
   ____   ___    ___   ___    _____ __  __ _____ ____      _    ____ _____
  / ___| / _ \  ( _ ) / _ \  | ____|\ \/ /|_   _|  _ \    / \  / ___|_   _|
  \___ \| | | | / _ \| | | | |  _|   \  /   | | | |_) |  / _ \| |     | |
   ___) | |_| || (_) | |_| | | |___  /  \   | | |  _ <  / ___ \ |___  | |
  |____/ \__\_\ \___/ \___/  |_____|/_/\_\  |_| |_| \_\/_/   \_\____| |_|
`
	return lipgloss.NewStyle().Foreground(lcdAmber).Render(logo)
}

// Run starts the TUI application
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
