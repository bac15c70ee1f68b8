package main

import (
	"strings"
	"testing"
	"time"

	"github.com/Seednode/simonsays/games/simon"
	tea "github.com/charmbracelet/bubbletea"
)

// stepScheduler queues callbacks until the test flushes them.
type stepScheduler struct {
	queue []*stepTask
}

type stepTask struct {
	fn        func()
	cancelled bool
}

func (s *stepScheduler) After(_ time.Duration, fn func()) simon.Cancel {
	task := &stepTask{fn: fn}
	s.queue = append(s.queue, task)
	return func() { task.cancelled = true }
}

// flush delivers queued callbacks through Update, as the program would.
func (s *stepScheduler) flush(m *tuiModel) {
	for len(s.queue) > 0 {
		task := s.queue[0]
		s.queue = s.queue[1:]
		if !task.cancelled {
			m.Update(timerMsg(task.fn))
		}
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyFor(p simon.Pad) string {
	for k, pad := range padKeys {
		if pad == p {
			return k
		}
	}
	return ""
}

func TestTerminalGame(t *testing.T) {
	sched := &stepScheduler{}
	m := newTUIModel(testConfig(), sched)

	m.Update(key("2"))
	if m.level != 2 {
		t.Fatalf("level = %d, want 2", m.level)
	}

	m.Update(key("s"))
	if m.heading != "Round 1 of 14" {
		t.Fatalf("heading = %q", m.heading)
	}
	if m.startVisible || m.input {
		t.Fatalf("start visible %t, input %t during playback", m.startVisible, m.input)
	}

	m.Update(key("3"))
	if m.level != 2 {
		t.Fatalf("level changed mid-game to %d", m.level)
	}

	sched.flush(m)
	if !m.input || m.game.State() != simon.PlayerTurn {
		t.Fatalf("input %t, state %s after playback", m.input, m.game.State())
	}

	first := m.game.Snapshot().Target[0]
	m.Update(key(keyFor(first)))
	if _, lit := m.lit[first]; !lit {
		t.Fatalf("pressed pad %s not lit", first)
	}

	sched.flush(m)
	if m.heading != "Round 2 of 14" {
		t.Fatalf("heading = %q, want round 2", m.heading)
	}
	if len(m.lit) != 0 {
		t.Fatalf("pads still lit after flush: %v", m.lit)
	}

	target := m.game.Snapshot().Target
	wrong := simon.Red
	for _, p := range simon.Pads {
		if p != target[0] {
			wrong = p
			break
		}
	}
	m.Update(key(keyFor(wrong)))

	if m.message != "You made a mistake. Game Over!" {
		t.Fatalf("message = %q", m.message)
	}
	if m.heading != "Simon Says" || !m.startVisible {
		t.Fatalf("heading %q, start visible %t after loss", m.heading, m.startVisible)
	}
	if !strings.Contains(m.View(), "You made a mistake") {
		t.Fatalf("view does not show the result")
	}
}

func TestTerminalQuit(t *testing.T) {
	m := newTUIModel(testConfig(), &stepScheduler{})
	m.Update(key("s"))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("ctrl+c did not quit")
	}
	if m.game.State() != simon.Idle {
		t.Fatalf("game still running after quit: %s", m.game.State())
	}
}
