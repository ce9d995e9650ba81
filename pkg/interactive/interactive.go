// Package interactive provides a terminal user interface for driving
// runtime topology edits against a live spanning-tree simulation and
// watching it reconverge (spec.md §6.2).
package interactive

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/krisarmstrong/stpsim/internal/stpcore"
	"github.com/krisarmstrong/stpsim/pkg/errors"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	bridgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	menuStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true)

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246"))
)

// command identifies one of spec.md §6.2's five single-digit choices.
type command int

const (
	cmdNone command = iota
	cmdAddLink
	cmdAddNode
	cmdDeleteLink
	cmdDeleteNode
	cmdExit
)

// fieldSpec describes one prompt in a multi-step command's input sequence.
type fieldSpec struct {
	prompt string
}

var commandFields = map[command][]fieldSpec{
	cmdAddLink: {
		{"Bridge A MAC: "},
		{"Port A: "},
		{"Bridge B MAC: "},
		{"Port B: "},
	},
	cmdAddNode: {
		{"New bridge MAC: "},
	},
	cmdDeleteLink: {
		{"Bridge MAC: "},
		{"Port: "},
	},
	cmdDeleteNode: {
		{"Bridge MAC: "},
	},
}

var menuItems = []string{
	"1. Add link",
	"2. Add node",
	"3. Delete link",
	"4. Delete node",
	"5. Exit",
}

type model struct {
	top     *stpcore.Topology
	faults  *errors.StateManager
	srcFile string

	// Menu state
	menuVisible  bool
	selectedItem int

	// Multi-field input collection for the active command
	pending     command
	fields      []string
	fieldIdx    int
	inputBuffer string

	// Last reconvergence result
	lastTicks     int
	lastConverged bool

	// View toggles
	showHelp bool
	showLogs bool

	debugLogs []string

	statusMessage string
	statusIsError bool

	startTime time.Time
	uptime    time.Duration

	quitting bool
}

type tickMsg time.Time

// Run starts the interactive shell against a live topology built from
// srcFile (shown in the title bar), with
// faults wired in so fault-injection state stays visible alongside
// ordinary topology edits.
func Run(top *stpcore.Topology, srcFile string, faults *errors.StateManager) error {
	if top == nil {
		return fmt.Errorf("interactive: topology is required")
	}
	if faults == nil {
		faults = errors.NewStateManager()
	}
	m := model{
		top:         top,
		faults:      faults,
		srcFile:     srcFile,
		menuVisible: true,
		startTime:   time.Now(),
	}
	m.lastTicks = top.Run()
	m.lastConverged = top.AllConverged()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.EnterAltScreen)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.pending != cmdNone {
			return m.handleFieldInput(msg)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "h", "?":
			m.showHelp = !m.showHelp
			m.showLogs = false
			return m, nil

		case "l":
			m.showLogs = !m.showLogs
			m.showHelp = false
			return m, nil

		case "1":
			m.beginCommand(cmdAddLink)
			return m, nil
		case "2":
			m.beginCommand(cmdAddNode)
			return m, nil
		case "3":
			m.beginCommand(cmdDeleteLink)
			return m, nil
		case "4":
			m.beginCommand(cmdDeleteNode)
			return m, nil
		case "5":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		m.uptime = time.Since(m.startTime)
		return m, tickCmd()
	}

	return m, nil
}

func (m *model) beginCommand(c command) {
	m.pending = c
	m.fields = nil
	m.fieldIdx = 0
	m.inputBuffer = ""
	m.menuVisible = false
}

func (m model) handleFieldInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.fields = append(m.fields, strings.TrimSpace(m.inputBuffer))
		m.inputBuffer = ""
		m.fieldIdx++

		spec := commandFields[m.pending]
		if m.fieldIdx >= len(spec) {
			m.applyCommand()
			m.pending = cmdNone
			m.fields = nil
			m.fieldIdx = 0
			m.menuVisible = true
		}
		return m, nil

	case "esc":
		m.pending = cmdNone
		m.fields = nil
		m.fieldIdx = 0
		m.inputBuffer = ""
		m.menuVisible = true
		m.statusMessage = "Edit cancelled"
		m.statusIsError = false
		return m, nil

	case "backspace":
		if len(m.inputBuffer) > 0 {
			m.inputBuffer = m.inputBuffer[:len(m.inputBuffer)-1]
		}
		return m, nil

	default:
		if len(msg.String()) == 1 {
			m.inputBuffer += msg.String()
		}
		return m, nil
	}
}

// applyCommand runs the fully-collected command against the topology and
// re-runs to convergence, matching spec.md §6.2's "on each edit the
// simulation is re-run until convergence".
func (m *model) applyCommand() {
	var err error
	switch m.pending {
	case cmdAddLink:
		portA, perr := strconv.Atoi(m.fields[1])
		portB, perr2 := strconv.Atoi(m.fields[3])
		if perr != nil || perr2 != nil {
			err = fmt.Errorf("port indexes must be integers")
		} else {
			err = m.top.AddLink(m.fields[0], portA, m.fields[2], portB, 0)
		}
	case cmdAddNode:
		m.top.AddBridge(m.fields[0], 0)
	case cmdDeleteLink:
		port, perr := strconv.Atoi(m.fields[1])
		if perr != nil {
			err = fmt.Errorf("port index must be an integer")
		} else {
			err = m.top.DeleteLink(m.fields[0], port)
		}
	case cmdDeleteNode:
		err = m.top.DeleteBridge(m.fields[0])
	}

	if err != nil {
		m.statusMessage = errorStyle.Render(fmt.Sprintf("✗ %v", err))
		m.statusIsError = true
		m.addDebugLog(fmt.Sprintf("edit rejected: %v", err))
		return
	}

	m.lastTicks = m.top.Run()
	m.lastConverged = m.top.AllConverged()
	m.statusMessage = successStyle.Render(fmt.Sprintf("✓ reconverged in %d ticks", m.lastTicks))
	m.statusIsError = false
	m.addDebugLog(fmt.Sprintf("applied %s, reconverged in %d ticks", commandName(m.pending), m.lastTicks))
}

func commandName(c command) string {
	switch c {
	case cmdAddLink:
		return "add link"
	case cmdAddNode:
		return "add node"
	case cmdDeleteLink:
		return "delete link"
	case cmdDeleteNode:
		return "delete node"
	default:
		return "command"
	}
}

const maxDebugLogs = 50

func (m *model) addDebugLog(s string) {
	m.debugLogs = append(m.debugLogs, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), s))
	if len(m.debugLogs) > maxDebugLogs {
		m.debugLogs = m.debugLogs[len(m.debugLogs)-maxDebugLogs:]
	}
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" stpsim Interactive Mode - %s ", m.srcFile)))
	s.WriteString("\n\n")

	root := "unknown"
	for _, b := range m.top.Bridges() {
		if b.IsRoot() {
			root = b.MAC
			break
		}
	}
	stats := fmt.Sprintf("Uptime: %s  |  Bridges: %d  |  Root: %s  |  Converged: %v  |  Last run: %d ticks",
		formatDuration(m.uptime), len(m.top.Bridges()), root, m.lastConverged, m.lastTicks)
	s.WriteString(statsStyle.Render(stats))
	s.WriteString("\n\n")

	s.WriteString(bridgeStyle.Render("Bridges:"))
	s.WriteString("\n")
	for _, snap := range m.top.Snapshot() {
		s.WriteString(indent(snap.String()))
	}
	s.WriteString("\n")

	if active := m.faults.GetAllStates(); len(active) > 0 {
		s.WriteString(errorStyle.Render("Active fault injections:"))
		s.WriteString("\n")
		for _, f := range active {
			s.WriteString(fmt.Sprintf("  - %s on %s:%d (%d)\n", f.FaultType, f.BridgeMAC, f.Port, f.Value))
		}
		s.WriteString("\n")
	}

	if m.statusMessage != "" {
		if m.statusIsError {
			s.WriteString(errorStyle.Render(m.statusMessage))
		} else {
			s.WriteString(m.statusMessage)
		}
		s.WriteString("\n\n")
	}

	if m.pending != cmdNone {
		s.WriteString(m.renderFieldPrompt())
		s.WriteString("\n")
	}

	if m.menuVisible && m.pending == cmdNone {
		s.WriteString(m.renderMenu())
		s.WriteString("\n")
	}

	if m.showHelp {
		s.WriteString(m.renderHelp())
		s.WriteString("\n")
	}

	if m.showLogs {
		s.WriteString(m.renderLogs())
		s.WriteString("\n")
	}

	s.WriteString("Controls: ")
	s.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Render("[1-4]"))
	s.WriteString(" Edit  ")
	s.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Render("[h]"))
	s.WriteString(" Help  ")
	s.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Render("[l]"))
	s.WriteString(" Logs  ")
	s.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("[5/q]"))
	s.WriteString(" Exit")

	return s.String()
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	var b strings.Builder
	for _, l := range lines {
		b.WriteString("  ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) renderFieldPrompt() string {
	spec := commandFields[m.pending]
	var b strings.Builder
	b.WriteString("╔══════════════════════════════════════════════════════════════════╗\n")
	fmt.Fprintf(&b, "║ %-68s ║\n", commandName(m.pending))
	b.WriteString("╠══════════════════════════════════════════════════════════════════╣\n")
	for i, f := range spec {
		if i < m.fieldIdx {
			fmt.Fprintf(&b, "║ %-68s ║\n", f.prompt+m.fields[i])
		}
	}
	if m.fieldIdx < len(spec) {
		display := m.inputBuffer
		if display == "" {
			display = "_"
		}
		fmt.Fprintf(&b, "║ %-68s ║\n", spec[m.fieldIdx].prompt+display)
	}
	b.WriteString("║ Press [Enter] to confirm field, [Esc] to cancel                   ║\n")
	b.WriteString("╚══════════════════════════════════════════════════════════════════╝")
	return b.String()
}

func (m model) renderMenu() string {
	var b strings.Builder
	b.WriteString("╔══════════════════════════════════════════════════════════════════╗\n")
	b.WriteString("║                     Topology Edit Menu                            ║\n")
	b.WriteString("╠══════════════════════════════════════════════════════════════════╣\n")
	for i, item := range menuItems {
		if i == m.selectedItem {
			b.WriteString("║ " + selectedStyle.Render("→ "+item))
		} else {
			b.WriteString("║   " + item)
		}
		padding := 64 - len(item) - 3
		if padding > 0 {
			b.WriteString(strings.Repeat(" ", padding))
		}
		b.WriteString("║\n")
	}
	b.WriteString("╚══════════════════════════════════════════════════════════════════╝")
	return b.String()
}

func (m model) renderHelp() string {
	return menuStyle.Render(strings.Join([]string{
		"stpsim interactive commands:",
		"  1  add link    (bridge A, port A, bridge B, port B)",
		"  2  add node    (bridge MAC)",
		"  3  delete link (bridge MAC, port)",
		"  4  delete node (bridge MAC)",
		"  5  exit",
		"  h  toggle this help",
		"  l  toggle debug log",
	}, "\n"))
}

func (m model) renderLogs() string {
	if len(m.debugLogs) == 0 {
		return menuStyle.Render("No log entries yet")
	}
	return menuStyle.Render("Recent edits:\n" + strings.Join(m.debugLogs, "\n"))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	mnt := d / time.Minute
	d -= mnt * time.Minute
	sec := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, mnt, sec)
}
