// Package simon implements the round and turn state machine of a Simon Says
// memory game.
//
// The computer plays an ever longer sequence of pad activations and the player
// repeats it. A game is won once the sequence reaches the length of the chosen
// level, and lost on the first wrong press.
//
// A Controller is not safe for concurrent use. Every entry point, including
// callbacks handed to its Scheduler, must run on a single event loop owned by
// the front end (a websocket hub goroutine, a terminal UI update loop, ...).
package simon

import "time"

// Presenter renders game state for a player.
type Presenter interface {
	// ShowStatus replaces the status line.
	ShowStatus(text string)

	// ShowRoundLabel updates the heading. A round of 0 restores the title.
	ShowRoundLabel(round, max int)

	// HighlightPad lights pad and plays its tone for d.
	HighlightPad(pad Pad, d time.Duration)

	// SetInputEnabled toggles whether pads can be pressed.
	SetInputEnabled(enabled bool)

	// AnnounceEndOfGame surfaces the final message of a game.
	AnnounceEndOfGame(message string)

	// ShowStartControl toggles the start button.
	ShowStartControl(visible bool)
}

// Cancel stops a scheduled callback if it has not fired yet.
type Cancel func()

// Scheduler runs fn once after d has elapsed, on the same loop that drives
// the Controller.
type Scheduler interface {
	After(d time.Duration, fn func()) Cancel
}

// Timing holds the delays used during playback and between turns.
type Timing struct {
	// Highlight is how long each pad stays lit.
	Highlight time.Duration

	// Interval separates the start of consecutive pads during playback.
	Interval time.Duration

	// TurnDelay is added after playback before the player may press.
	TurnDelay time.Duration

	// RoundPause separates a completed round from the next computer turn.
	RoundPause time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		Highlight:  500 * time.Millisecond,
		Interval:   600 * time.Millisecond,
		TurnDelay:  time.Second,
		RoundPause: time.Second,
	}
}

// PlaybackDuration is how long the computer turn lasts for a sequence of n
// pads, from the first highlight until input is enabled.
func (t Timing) PlaybackDuration(n int) time.Duration {
	return time.Duration(n)*t.Interval + t.TurnDelay
}
