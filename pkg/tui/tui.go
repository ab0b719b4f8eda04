// Package tui provides a terminal user interface for midiroll
package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/midiroll/pkg/midifile"
	"github.com/james-see/midiroll/pkg/sequence"
	"github.com/james-see/midiroll/pkg/wavenc"
)

var (
	ivory    = lipgloss.Color("#FFFFF0")
	keyGreen = lipgloss.Color("#00CC66")
	amber    = lipgloss.Color("#FFBF00")
	darkGray = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(keyGreen).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(ivory).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(keyGreen).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(amber).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(amber)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(keyGreen).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateAnalyzing
	StateResult
)

// Analysis identifies the analysis a menu item runs.
type Analysis int

const (
	AnalysisSummary Analysis = iota
	AnalysisTempo
	AnalysisOnsets
	AnalysisSynth
	AnalysisExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Analysis    Analysis
}

var menuItems = []MenuItem{
	{Title: "Summary", Description: "Instruments, note counts and duration", Analysis: AnalysisSummary},
	{Title: "Tempo map", Description: "Tempo changes with their times", Analysis: AnalysisTempo},
	{Title: "Onsets", Description: "Sorted note onset times", Analysis: AnalysisOnsets},
	{Title: "Synthesize", Description: "Render the file to a WAV next to it", Analysis: AnalysisSynth},
	{Title: "Exit", Description: "Exit the application", Analysis: AnalysisExit},
}

// Model represents the TUI model
type Model struct {
	state        State
	menuIndex    int
	filePicker   filepicker.Model
	spinner      spinner.Model
	selectedFile string
	analysis     MenuItem
	output       string
	err          error
	width        int
	height       int
}

// analysisDoneMsg signals analysis completion
type analysisDoneMsg struct {
	output string
	err    error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New() Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi"}
	fp.CurrentDirectory, _ = filepath.Abs(".")

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(keyGreen)

	return Model{
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The file picker needs to receive all messages while active.
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
			m.state = StateAnalyzing
			return m, tea.Batch(m.spinner.Tick, m.performAnalysis())
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

	case analysisDoneMsg:
		m.state = StateResult
		m.output = msg.output
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
		if menuItems[m.menuIndex].Analysis == AnalysisExit {
			return m, tea.Quit
		}
		m.analysis = menuItems[m.menuIndex]
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
		m.output = ""
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) performAnalysis() tea.Cmd {
	return func() tea.Msg {
		resolution, tracks, err := midifile.LoadFile(m.selectedFile)
		if err != nil {
			return analysisDoneMsg{err: err}
		}

		seq, err := sequence.New(resolution, tracks)
		if err != nil {
			return analysisDoneMsg{err: err}
		}

		switch m.analysis.Analysis {
		case AnalysisSummary:
			return analysisDoneMsg{output: renderSummary(seq)}
		case AnalysisTempo:
			return analysisDoneMsg{output: renderTempo(seq)}
		case AnalysisOnsets:
			return analysisDoneMsg{output: renderOnsets(seq)}
		case AnalysisSynth:
			out := strings.TrimSuffix(m.selectedFile, filepath.Ext(m.selectedFile)) + ".wav"
			samples := seq.Synthesize(44100, sequence.SineWave)
			if err := wavenc.WriteFile(out, samples, 44100); err != nil {
				return analysisDoneMsg{err: err}
			}
			return analysisDoneMsg{output: fmt.Sprintf("Wrote %s (%d samples)", out, len(samples))}
		}
		return analysisDoneMsg{err: fmt.Errorf("unknown analysis")}
	}
}

func renderSummary(seq *sequence.Sequence) string {
	var s strings.Builder
	fmt.Fprintf(&s, "Resolution: %d ticks/quarter\n", seq.Resolution())
	fmt.Fprintf(&s, "Duration:   %.2f s\n", seq.Duration())
	fmt.Fprintf(&s, "Notes:      %d\n\n", len(seq.Onsets()))
	for _, inst := range seq.Instruments {
		fmt.Fprintf(&s, "  %-28s %4d notes, %d bends\n", inst.Name(), len(inst.Notes), len(inst.PitchBends))
	}
	for _, w := range seq.Warnings() {
		s.WriteString("\n")
		s.WriteString(warnStyle.Render("warning: " + w))
	}
	return s.String()
}

func renderTempo(seq *sequence.Sequence) string {
	times, bpms := seq.TempoChanges()
	var s strings.Builder
	for i := range times {
		fmt.Fprintf(&s, "%10.3f s  %8.2f BPM\n", times[i], bpms[i])
	}
	return s.String()
}

func renderOnsets(seq *sequence.Sequence) string {
	onsets := seq.Onsets()
	var s strings.Builder
	fmt.Fprintf(&s, "%d onsets\n\n", len(onsets))
	limit := len(onsets)
	if limit > 30 {
		limit = 30
	}
	for _, t := range onsets[:limit] {
		fmt.Fprintf(&s, "%10.3f\n", t)
	}
	if limit < len(onsets) {
		fmt.Fprintf(&s, "... and %d more\n", len(onsets)-limit)
	}
	return s.String()
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateAnalyzing:
		s.WriteString(m.viewAnalyzing())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT ANALYSIS "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(amber).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT MIDI FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewAnalyzing() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" ANALYZING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Analyzing %s...\n", m.spinner.View(), filepath.Base(m.selectedFile)))
	s.WriteString(statusStyle.Render(fmt.Sprintf("  %s", m.analysis.Title)))

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	if m.err != nil {
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ Analysis failed: %s", m.err.Error())))
	} else {
		s.WriteString(titleStyle.Render(fmt.Sprintf(" %s - %s ", strings.ToUpper(m.analysis.Title), filepath.Base(m.selectedFile))))
		s.WriteString("\n\n")
		s.WriteString(m.output)
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
   __  __ ___ ____ ___ ____   ___  _     _
  |  \/  |_ _|  _ \_ _|  _ \ / _ \| |   | |
  | |\/| || || | | | || |_) | | | | |   | |
  | |  | || || |_| | ||  _ <| |_| | |___| |___
  |_|  |_|___|____/___|_| \_\\___/|_____|_____|
`
	return lipgloss.NewStyle().Foreground(keyGreen).Render(logo)
}

// Run starts the TUI application
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
