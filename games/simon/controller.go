package simon

import (
	"fmt"
	"time"
)

type State int

const (
	Idle State = iota
	ComputerTurn
	PlayerTurn
	RoundComplete
	GameWon
	GameLost
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ComputerTurn:
		return "computer_turn"
	case PlayerTurn:
		return "player_turn"
	case RoundComplete:
		return "round_complete"
	case GameWon:
		return "game_won"
	case GameLost:
		return "game_lost"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Outcome is the result of the most recently finished game.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWon
	OutcomeLost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	}
	return "none"
}

const (
	statusComputerTurn = "The computer's turn!!"
	statusRoundDone    = "Nice! Keep goin!"
	messageLost        = "You made a mistake. Game Over!"
	messageWon         = "Congratulations! You've won!"
)

type Options struct {
	Timing     Timing
	Randomizer Randomizer

	// OnTransition, if set, is called after every state change.
	OnTransition func(from, to State)
}

// Snapshot is a copy of the controller state at a point in time.
type Snapshot struct {
	State     State
	Level     int
	Round     int
	MaxLength int
	Target    []Pad
	Player    []Pad
	Outcome   Outcome
}

// Controller owns the sequences and round counter of one game and moves it
// through its states in response to Start, Press and scheduled callbacks.
type Controller struct {
	presenter    Presenter
	scheduler    Scheduler
	random       Randomizer
	timing       Timing
	onTransition func(from, to State)

	state     State
	level     int
	maxLength int
	round     int
	target    []Pad
	player    []Pad
	outcome   Outcome

	// session is bumped whenever pending callbacks must be discarded.
	session uint64
	pending []Cancel
}

func NewController(p Presenter, s Scheduler, opts Options) *Controller {
	if opts.Timing == (Timing{}) {
		opts.Timing = DefaultTiming()
	}
	if opts.Randomizer == nil {
		opts.Randomizer = NewRandomizer(0)
	}

	return &Controller{
		presenter:    p,
		scheduler:    s,
		random:       opts.Randomizer,
		timing:       opts.Timing,
		onTransition: opts.OnTransition,
	}
}

func (c *Controller) State() State { return c.state }

// Outcome reports how the last finished game ended.
func (c *Controller) Outcome() Outcome { return c.outcome }

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		State:     c.state,
		Level:     c.level,
		Round:     c.round,
		MaxLength: c.maxLength,
		Target:    append([]Pad(nil), c.target...),
		Player:    append([]Pad(nil), c.player...),
		Outcome:   c.outcome,
	}
}

// Start begins a new game at level. Any game in progress is abandoned and its
// pending callbacks are discarded. An unsupported level leaves the controller
// untouched and returns an error wrapping ErrInvalidLevel.
func (c *Controller) Start(level int) error {
	maxLength, err := MaxLength(level)
	if err != nil {
		return err
	}

	c.invalidate()
	c.reset()

	c.level = level
	c.maxLength = maxLength
	c.round = 1
	c.outcome = OutcomeNone

	c.presenter.ShowStartControl(false)
	c.beginComputerTurn()

	return nil
}

// Press records a pad press from the player. Presses outside the player's
// turn and unknown pads are ignored.
func (c *Controller) Press(pad Pad) {
	if c.state != PlayerTurn || !pad.Valid() {
		return
	}

	c.presenter.HighlightPad(pad, c.timing.Highlight)

	c.player = append(c.player, pad)
	i := len(c.player) - 1
	if c.player[i] != c.target[i] {
		c.endGame(OutcomeLost, messageLost)
		return
	}

	left := len(c.target) - len(c.player)
	c.presenter.ShowStatus(pressesLeft(left))
	if left > 0 {
		return
	}

	c.presenter.SetInputEnabled(false)
	c.transition(RoundComplete)
	c.after(c.timing.RoundPause, c.completeRound)
}

// PressName is Press for pad names arriving from a transport.
func (c *Controller) PressName(name string) {
	pad, ok := ParsePad(name)
	if !ok {
		return
	}
	c.Press(pad)
}

// Abort stops a running game without declaring an outcome.
func (c *Controller) Abort() {
	if c.state == Idle {
		return
	}

	c.invalidate()
	c.reset()
	c.outcome = OutcomeNone

	c.presenter.SetInputEnabled(false)
	c.presenter.ShowRoundLabel(0, 0)
	c.presenter.ShowStartControl(true)
	c.transition(Idle)
}

func (c *Controller) beginComputerTurn() {
	// Every callback of the previous turn has fired by now.
	c.pending = c.pending[:0]

	c.transition(ComputerTurn)
	c.presenter.SetInputEnabled(false)
	c.presenter.ShowStatus(statusComputerTurn)
	c.presenter.ShowRoundLabel(c.round, c.maxLength)

	c.target = append(c.target, c.random.PickPad())
	c.player = c.player[:0]

	for i, pad := range c.target {
		c.after(time.Duration(i)*c.timing.Interval, func() {
			c.presenter.HighlightPad(pad, c.timing.Highlight)
		})
	}
	c.after(c.timing.PlaybackDuration(len(c.target)), c.beginPlayerTurn)
}

func (c *Controller) beginPlayerTurn() {
	c.transition(PlayerTurn)
	c.presenter.SetInputEnabled(true)
	c.presenter.ShowStatus(pressesLeft(len(c.target) - len(c.player)))
}

func (c *Controller) completeRound() {
	if len(c.target) >= c.maxLength {
		c.endGame(OutcomeWon, messageWon)
		return
	}

	c.round++
	c.player = c.player[:0]
	c.presenter.ShowStatus(statusRoundDone)
	c.after(c.timing.RoundPause, c.beginComputerTurn)
}

func (c *Controller) endGame(outcome Outcome, message string) {
	final := GameLost
	if outcome == OutcomeWon {
		final = GameWon
	}
	c.transition(final)

	c.invalidate()
	c.outcome = outcome

	c.presenter.SetInputEnabled(false)
	c.presenter.AnnounceEndOfGame(message)
	c.presenter.ShowRoundLabel(0, 0)
	c.presenter.ShowStartControl(true)

	c.reset()
	c.transition(Idle)
}

// after schedules fn for the current session only.
func (c *Controller) after(d time.Duration, fn func()) {
	session := c.session
	cancel := c.scheduler.After(d, func() {
		if session != c.session {
			return
		}
		fn()
	})
	c.pending = append(c.pending, cancel)
}

func (c *Controller) invalidate() {
	c.session++
	for _, cancel := range c.pending {
		if cancel != nil {
			cancel()
		}
	}
	c.pending = nil
}

func (c *Controller) reset() {
	c.target = nil
	c.player = nil
	c.round = 0
	c.maxLength = 0
	c.level = 0
}

func (c *Controller) transition(to State) {
	from := c.state
	c.state = to
	if c.onTransition != nil {
		c.onTransition(from, to)
	}
}

func pressesLeft(n int) string {
	if n == 1 {
		return "Your turn: 1 press left"
	}
	return fmt.Sprintf("Your turn: %d presses left", n)
}
