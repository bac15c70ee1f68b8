package main

import (
	"time"

	"github.com/Seednode/simonsays/games/simon"
)

// Messages coming from clients
type ClientMessage struct {
	Type  string `json:"type"`            // "start", "press"
	Level int    `json:"level,omitempty"` // start
	Pad   string `json:"pad,omitempty"`   // press
}

// SessionInfoMessage is sent on connect and whenever the pads change hands.
type SessionInfoMessage struct {
	Type     string `json:"type"` // "session_info"
	GameID   string `json:"game_id"`
	IsPlayer bool   `json:"is_player"`
	Levels   []int  `json:"levels"`
	Level    int    `json:"level"` // default level for the selector
}

type StatusMessage struct {
	Type string `json:"type"` // "status"
	Text string `json:"text"`
}

// RoundMessage updates the heading. Round 0 restores the title.
type RoundMessage struct {
	Type  string `json:"type"` // "round"
	Round int    `json:"round"`
	Max   int    `json:"max"`
}

type HighlightMessage struct {
	Type       string `json:"type"` // "highlight"
	Pad        string `json:"pad"`
	DurationMS int64  `json:"duration_ms"`
}

type InputMessage struct {
	Type    string `json:"type"` // "input"
	Enabled bool   `json:"enabled"`
}

type GameOverMessage struct {
	Type    string `json:"type"` // "game_over"
	Message string `json:"message"`
	Outcome string `json:"outcome"`
}

type StartControlMessage struct {
	Type    string `json:"type"` // "start_control"
	Visible bool   `json:"visible"`
}

// ErrorMessage is sent only to the client whose command failed.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// SnapshotMessage brings a newly connected client up to date. It never
// includes the target sequence.
type SnapshotMessage struct {
	Type         string `json:"type"` // "snapshot"
	State        string `json:"state"`
	Round        int    `json:"round"`
	Max          int    `json:"max"`
	TargetLength int    `json:"target_length"`
	PlayerLength int    `json:"player_length"`
	Status       string `json:"status"`
	Input        bool   `json:"input"`
	StartVisible bool   `json:"start_visible"`
}

// webPresenter turns presenter calls into broadcast messages, remembering
// what it last showed so late joiners can be caught up.
type webPresenter struct {
	broadcast func(msg any)

	// outcome reports how the game that just ended finished.
	outcome func() simon.Outcome

	status       string
	input        bool
	startVisible bool
}

func newWebPresenter(broadcast func(msg any)) *webPresenter {
	return &webPresenter{
		broadcast:    broadcast,
		status:       "Press start to play.",
		startVisible: true,
	}
}

func (p *webPresenter) ShowStatus(text string) {
	p.status = text
	p.broadcast(StatusMessage{
		Type: "status",
		Text: text,
	})
}

func (p *webPresenter) ShowRoundLabel(round, max int) {
	p.broadcast(RoundMessage{
		Type:  "round",
		Round: round,
		Max:   max,
	})
}

func (p *webPresenter) HighlightPad(pad simon.Pad, d time.Duration) {
	p.broadcast(HighlightMessage{
		Type:       "highlight",
		Pad:        pad.String(),
		DurationMS: d.Milliseconds(),
	})
}

func (p *webPresenter) SetInputEnabled(enabled bool) {
	p.input = enabled
	p.broadcast(InputMessage{
		Type:    "input",
		Enabled: enabled,
	})
}

func (p *webPresenter) AnnounceEndOfGame(message string) {
	outcome := simon.OutcomeNone
	if p.outcome != nil {
		outcome = p.outcome()
	}

	p.status = message
	p.broadcast(GameOverMessage{
		Type:    "game_over",
		Message: message,
		Outcome: outcome.String(),
	})
}

func (p *webPresenter) ShowStartControl(visible bool) {
	p.startVisible = visible
	p.broadcast(StartControlMessage{
		Type:    "start_control",
		Visible: visible,
	})
}

func (p *webPresenter) snapshot(s simon.Snapshot) SnapshotMessage {
	return SnapshotMessage{
		Type:         "snapshot",
		State:        s.State.String(),
		Round:        s.Round,
		Max:          s.MaxLength,
		TargetLength: len(s.Target),
		PlayerLength: len(s.Player),
		Status:       p.status,
		Input:        p.input,
		StartVisible: p.startVisible,
	}
}
