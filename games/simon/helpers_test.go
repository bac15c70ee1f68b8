package simon

import (
	"fmt"
	"sort"
	"time"
)

type recordingPresenter struct {
	events []string
	input  bool
}

func (p *recordingPresenter) ShowStatus(text string) {
	p.events = append(p.events, "status:"+text)
}

func (p *recordingPresenter) ShowRoundLabel(round, max int) {
	p.events = append(p.events, fmt.Sprintf("round:%d/%d", round, max))
}

func (p *recordingPresenter) HighlightPad(pad Pad, d time.Duration) {
	p.events = append(p.events, "highlight:"+string(pad))
}

func (p *recordingPresenter) SetInputEnabled(enabled bool) {
	p.input = enabled
	p.events = append(p.events, fmt.Sprintf("input:%t", enabled))
}

func (p *recordingPresenter) AnnounceEndOfGame(message string) {
	p.events = append(p.events, "end:"+message)
}

func (p *recordingPresenter) ShowStartControl(visible bool) {
	p.events = append(p.events, fmt.Sprintf("start:%t", visible))
}

func (p *recordingPresenter) count(prefix string) int {
	n := 0
	for _, e := range p.events {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (p *recordingPresenter) last(prefix string) string {
	for i := len(p.events) - 1; i >= 0; i-- {
		e := p.events[i]
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			return e
		}
	}
	return ""
}

type task struct {
	at        time.Duration
	seq       int
	fn        func()
	cancelled bool
}

// manualScheduler runs callbacks only when the test advances its clock.
type manualScheduler struct {
	now       time.Duration
	seq       int
	tasks     []*task
	keepAlive bool // ignore Cancel, leaving stale callbacks to fire
	fired     []time.Duration
}

func (s *manualScheduler) After(d time.Duration, fn func()) Cancel {
	s.seq++
	t := &task{at: s.now + d, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return func() {
		if !s.keepAlive {
			t.cancelled = true
		}
	}
}

func (s *manualScheduler) Advance(d time.Duration) {
	until := s.now + d
	for {
		next := s.nextDue(until)
		if next == nil {
			break
		}
		s.now = next.at
		s.fired = append(s.fired, next.at)
		next.fn()
	}
	s.now = until
}

func (s *manualScheduler) nextDue(until time.Duration) *task {
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].at != s.tasks[j].at {
			return s.tasks[i].at < s.tasks[j].at
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})

	for i, t := range s.tasks {
		if t.at > until {
			return nil
		}
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
		if t.cancelled {
			return s.nextDue(until)
		}
		return t
	}
	return nil
}

func (s *manualScheduler) pendingCount() int {
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// scriptedPads replays pads in order, then repeats the last one.
func scriptedPads(pads ...Pad) Randomizer {
	i := 0
	return RandomizerFunc(func() Pad {
		p := pads[min(i, len(pads)-1)]
		i++
		return p
	})
}

type harness struct {
	c           *Controller
	p           *recordingPresenter
	s           *manualScheduler
	transitions []State
}

var testTiming = Timing{
	Highlight:  50 * time.Millisecond,
	Interval:   100 * time.Millisecond,
	TurnDelay:  200 * time.Millisecond,
	RoundPause: 300 * time.Millisecond,
}

func newHarness(r Randomizer) *harness {
	h := &harness{
		p: &recordingPresenter{},
		s: &manualScheduler{},
	}
	h.c = NewController(h.p, h.s, Options{
		Timing:     testTiming,
		Randomizer: r,
		OnTransition: func(_, to State) {
			h.transitions = append(h.transitions, to)
		},
	})
	return h
}

// finishPlayback advances until the player may press.
func (h *harness) finishPlayback() {
	h.s.Advance(testTiming.PlaybackDuration(len(h.c.target)))
}

func (h *harness) sawState(s State) bool {
	for _, t := range h.transitions {
		if t == s {
			return true
		}
	}
	return false
}
