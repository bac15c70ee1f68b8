package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/simonsays/games/simon"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// timerMsg carries a scheduled callback back into the update loop.
type timerMsg func()

// teaScheduler delivers callbacks as messages, so the controller only ever
// runs inside Update.
type teaScheduler struct {
	send func(tea.Msg)
}

func (s teaScheduler) After(d time.Duration, fn func()) simon.Cancel {
	t := time.AfterFunc(d, func() { s.send(timerMsg(fn)) })
	return func() { t.Stop() }
}

var padKeys = map[string]simon.Pad{
	"r": simon.Red,
	"g": simon.Green,
	"b": simon.Blue,
	"y": simon.Yellow,
}

var padColors = map[simon.Pad][2]lipgloss.Color{
	// dim, lit
	simon.Red:    {"#5c1512", "#ff4136"},
	simon.Green:  {"#0f4a20", "#2ecc40"},
	simon.Blue:   {"#12305c", "#4d94ff"},
	simon.Yellow: {"#5c4b0a", "#ffdc00"},
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	statusStyle  = lipgloss.NewStyle().MarginTop(1)
	messageStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffdc00"))
	helpStyle    = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

// tuiModel is both the bubbletea model and the game's Presenter.
type tuiModel struct {
	cfg   *Config
	game  *simon.Controller
	sched simon.Scheduler

	level        int
	heading      string
	status       string
	message      string
	input        bool
	startVisible bool

	lit    map[simon.Pad]int
	litSeq int
}

func newTUIModel(cfg *Config, sched simon.Scheduler) *tuiModel {
	m := &tuiModel{
		cfg:          cfg,
		sched:        sched,
		level:        cfg.level,
		heading:      "Simon Says",
		status:       "Press s to start.",
		startVisible: true,
		lit:          make(map[simon.Pad]int),
	}

	m.game = simon.NewController(m, sched, simon.Options{
		Timing:     cfg.timing(),
		Randomizer: simon.NewRandomizer(cfg.seed),
		OnTransition: func(from, to simon.State) {
			cfg.log.Debug().Str("component", "GAMES").Str("from", from.String()).Str("to", to.String()).Msg("transition")
		},
	})

	return m
}

func (m *tuiModel) ShowStatus(text string) { m.status = text }

func (m *tuiModel) ShowRoundLabel(round, max int) {
	if round == 0 {
		m.heading = "Simon Says"
		return
	}
	m.heading = fmt.Sprintf("Round %d of %d", round, max)
}

func (m *tuiModel) HighlightPad(pad simon.Pad, d time.Duration) {
	m.litSeq++
	seq := m.litSeq
	m.lit[pad] = seq

	m.sched.After(d, func() {
		if m.lit[pad] == seq {
			delete(m.lit, pad)
		}
	})
}

func (m *tuiModel) SetInputEnabled(enabled bool) { m.input = enabled }

func (m *tuiModel) AnnounceEndOfGame(message string) {
	m.message = message
	m.status = "Press s to play again."
}

func (m *tuiModel) ShowStartControl(visible bool) { m.startVisible = visible }

func (m *tuiModel) Init() tea.Cmd { return nil }

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerMsg:
		msg()

	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			m.game.Abort()
			return m, tea.Quit

		case "1", "2", "3", "4":
			if m.startVisible {
				m.level = int(key[0] - '0')
			}

		case "s", "enter":
			if !m.startVisible {
				break
			}
			m.message = ""
			if err := m.game.Start(m.level); err != nil {
				m.status = err.Error()
			}

		default:
			if pad, ok := padKeys[key]; ok {
				m.game.Press(pad)
			}
		}
	}

	return m, nil
}

func (m *tuiModel) renderPad(pad simon.Pad) string {
	colors := padColors[pad]
	bg := colors[0]
	if _, ok := m.lit[pad]; ok {
		bg = colors[1]
	}

	label := strings.ToUpper(string(pad[:1]))
	return lipgloss.NewStyle().
		Width(12).
		Height(5).
		Margin(0, 1, 1, 0).
		Align(lipgloss.Center, lipgloss.Center).
		Background(bg).
		Foreground(lipgloss.Color("#111111")).
		Render(label)
}

func (m *tuiModel) View() string {
	var b strings.Builder

	b.WriteString(headingStyle.Render(m.heading))
	b.WriteString("\n")

	top := lipgloss.JoinHorizontal(lipgloss.Top, m.renderPad(simon.Red), m.renderPad(simon.Green))
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, m.renderPad(simon.Blue), m.renderPad(simon.Yellow))
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, top, bottom))

	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString(messageStyle.Render(m.message))
		b.WriteString("\n")
	}

	help := "r g b y: press pads   q: quit"
	if m.startVisible {
		help = fmt.Sprintf("level %d (1-4 to change)   s: start   q: quit", m.level)
	} else if !m.input {
		help = "watch the pads...   q: quit"
	}
	b.WriteString(helpStyle.Render(help))
	b.WriteString("\n")

	return b.String()
}

func runTUI(cfg *Config) error {
	var prog *tea.Program

	sched := teaScheduler{send: func(msg tea.Msg) { prog.Send(msg) }}
	prog = tea.NewProgram(newTUIModel(cfg, sched), tea.WithAltScreen())

	cfg.log.Info().Str("component", "START").Msgf("simonsays v%s (terminal)", releaseVersion)

	_, err := prog.Run()
	return err
}
