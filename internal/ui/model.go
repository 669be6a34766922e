// ABOUTME: Bubbletea model for the chipplay TUI
// ABOUTME: Defines playback status state and update logic
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Model represents the TUI state
type Model struct {
	// Chip
	chipName   string
	clock      uint32
	sampleRate int

	// Playback
	state        string
	totalFrames  uint64
	playedFrames uint64
	volume       int
	muted        bool

	// Dimensions
	width  int
	height int

	volumeCtrl *VolumeControl
}

// StatusMsg carries playback status updates into the model. Pointer
// fields are applied only when non-nil.
type StatusMsg struct {
	ChipName   string
	Clock      uint32
	SampleRate int
	State      string
	Played     *uint64
	Total      *uint64
	Volume     *int
	Muted      *bool
}

// VolumeChangeMsg asks the player to change volume
type VolumeChangeMsg struct {
	Volume int
	Muted  bool
}

// QuitMsg asks the player to stop
type QuitMsg struct{}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.volumeCtrl != nil {
			select {
			case m.volumeCtrl.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "up", "+":
		m.volume = clampVolume(m.volume + 5)
		m.sendVolume()
	case "down", "-":
		m.volume = clampVolume(m.volume - 5)
		m.sendVolume()
	case "m":
		m.muted = !m.muted
		m.sendVolume()
	}
	return m, nil
}

func (m *Model) sendVolume() {
	if m.volumeCtrl == nil {
		return
	}
	select {
	case m.volumeCtrl.Changes <- VolumeChangeMsg{Volume: m.volume, Muted: m.muted}:
	default:
	}
}

func (m *Model) applyStatus(msg StatusMsg) {
	if msg.ChipName != "" {
		m.chipName = msg.ChipName
	}
	if msg.Clock != 0 {
		m.clock = msg.Clock
	}
	if msg.SampleRate != 0 {
		m.sampleRate = msg.SampleRate
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.Played != nil {
		m.playedFrames = *msg.Played
	}
	if msg.Total != nil {
		m.totalFrames = *msg.Total
	}
	if msg.Volume != nil {
		m.volume = *msg.Volume
	}
	if msg.Muted != nil {
		m.muted = *msg.Muted
	}
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderProgress()
	s += m.renderControls()
	s += m.renderHelp()

	return s
}

func (m Model) renderHeader() string {
	return fmt.Sprintf(`┌─ Chipsynth Player ───────────────────────────────────┐
│ Chip:   %-45s │
│ Clock:  %-10d Rate: %-8dHz State: %-10s │
├──────────────────────────────────────────────────────┤
`, m.chipName, m.clock, m.sampleRate, m.state)
}

func (m Model) renderProgress() string {
	var pct float64
	if m.totalFrames > 0 {
		pct = 100 * float64(m.playedFrames) / float64(m.totalFrames)
	}
	secs := 0.0
	if m.sampleRate > 0 {
		secs = float64(m.playedFrames) / float64(m.sampleRate)
	}
	return fmt.Sprintf("│ Frames: %d/%d (%.0f%%)  %.1fs\n", m.playedFrames, m.totalFrames, pct, secs)
}

func (m Model) renderControls() string {
	muteText := ""
	if m.muted {
		muteText = " [MUTED]"
	}
	return fmt.Sprintf("│ Volume: %d%%%s\n", m.volume, muteText)
}

func (m Model) renderHelp() string {
	return `├──────────────────────────────────────────────────────┤
│ ↑/↓ volume   m mute   q quit                         │
└──────────────────────────────────────────────────────┘
`
}
