// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, key handling, and volume clamping
package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModel(t *testing.T) {
	model := NewModel(nil) // VolumeControl is optional for testing

	if model.volume != 100 {
		t.Errorf("expected default volume 100, got %d", model.volume)
	}
	if model.muted {
		t.Error("expected muted to be false initially")
	}
	if model.state != "idle" {
		t.Errorf("expected initial state idle, got %q", model.state)
	}
}

func TestStatusMsgChipInfo(t *testing.T) {
	model := NewModel(nil)

	model.applyStatus(StatusMsg{
		ChipName:   "ssg",
		Clock:      2000000,
		SampleRate: 125000,
		State:      "playing",
	})

	if model.chipName != "ssg" {
		t.Errorf("expected chipName ssg, got %q", model.chipName)
	}
	if model.clock != 2000000 {
		t.Errorf("expected clock 2000000, got %d", model.clock)
	}
	if model.state != "playing" {
		t.Errorf("expected state playing, got %q", model.state)
	}
}

func TestStatusMsgProgress(t *testing.T) {
	model := NewModel(nil)

	played := uint64(500)
	total := uint64(1000)
	model.applyStatus(StatusMsg{Played: &played, Total: &total})

	if model.playedFrames != 500 || model.totalFrames != 1000 {
		t.Errorf("expected progress 500/1000, got %d/%d", model.playedFrames, model.totalFrames)
	}

	// Fields left nil are untouched.
	model.applyStatus(StatusMsg{State: "done"})
	if model.playedFrames != 500 {
		t.Errorf("expected played frames preserved, got %d", model.playedFrames)
	}
}

func TestVolumeKeys(t *testing.T) {
	ctrl := NewVolumeControl()
	model := NewModel(ctrl)

	next, _ := model.Update(tea.KeyMsg{Type: tea.KeyUp})
	m := next.(Model)
	if m.volume != 100 {
		t.Errorf("expected volume clamped at 100, got %d", m.volume)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	if m.volume != 95 {
		t.Errorf("expected volume 95, got %d", m.volume)
	}

	select {
	case msg := <-ctrl.Changes:
		if msg.Volume != 100 {
			t.Errorf("expected first change at 100, got %d", msg.Volume)
		}
	default:
		t.Error("expected a volume change message")
	}
}

func TestMuteKey(t *testing.T) {
	model := NewModel(nil)

	next, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	m := next.(Model)
	if !m.muted {
		t.Error("expected mute toggle on")
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	m = next.(Model)
	if m.muted {
		t.Error("expected mute toggle off")
	}
}

func TestQuitKeySignalsPlayer(t *testing.T) {
	ctrl := NewVolumeControl()
	model := NewModel(ctrl)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	select {
	case <-ctrl.Quit:
	default:
		t.Error("expected quit message for the player")
	}
}

func TestViewBeforeSize(t *testing.T) {
	model := NewModel(nil)
	if model.View() != "Loading..." {
		t.Errorf("expected loading placeholder, got %q", model.View())
	}
}

func TestViewShowsStatus(t *testing.T) {
	model := NewModel(nil)
	next, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m := next.(Model)
	m.applyStatus(StatusMsg{ChipName: "fm", State: "playing"})

	view := m.View()
	if !strings.Contains(view, "fm") {
		t.Error("expected view to show the chip name")
	}
	if !strings.Contains(view, "playing") {
		t.Error("expected view to show the state")
	}
}

func TestClampVolume(t *testing.T) {
	if clampVolume(-5) != 0 {
		t.Error("expected clamp to 0")
	}
	if clampVolume(105) != 100 {
		t.Error("expected clamp to 100")
	}
	if clampVolume(42) != 42 {
		t.Error("expected 42 unchanged")
	}
}
