package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Seednode/simonsays/games/simon"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	playerTimeout  time.Duration
	port           int
	prefix         string
	profile        bool
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool

	level      int
	seed       uint64
	highlight  time.Duration
	interval   time.Duration
	turnDelay  time.Duration
	roundPause time.Duration

	log zerolog.Logger
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	return c.validateGame()
}

func (c *Config) validateGame() error {
	if _, err := simon.MaxLength(c.level); err != nil {
		return fmt.Errorf("invalid --level: %w", err)
	}
	for name, d := range map[string]time.Duration{
		"highlight":   c.highlight,
		"interval":    c.interval,
		"turn-delay":  c.turnDelay,
		"round-pause": c.roundPause,
	} {
		if d <= 0 {
			return fmt.Errorf("invalid --%s (must be greater than zero): %s", name, d)
		}
	}
	if c.highlight > c.interval {
		return fmt.Errorf("--highlight (%s) must not exceed --interval (%s)", c.highlight, c.interval)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) timing() simon.Timing {
	return simon.Timing{
		Highlight:  c.highlight,
		Interval:   c.interval,
		TurnDelay:  c.turnDelay,
		RoundPause: c.roundPause,
	}
}

func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SIMONSAYS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "simonsays",
		Short:         "The Simon Says memory game, served to the browser.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			cfg.log = newLogger(cfg.verbose, os.Stderr)
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.IntVarP(&cfg.level, "level", "l", 1, "default difficulty level, 1-4 (env: SIMONSAYS_LEVEL)")
	pfs.Uint64Var(&cfg.seed, "seed", 0, "seed for pad selection, 0 for random (env: SIMONSAYS_SEED)")
	pfs.DurationVar(&cfg.highlight, "highlight", 500*time.Millisecond, "how long each pad stays lit (env: SIMONSAYS_HIGHLIGHT)")
	pfs.DurationVar(&cfg.interval, "interval", 600*time.Millisecond, "time between pads during playback (env: SIMONSAYS_INTERVAL)")
	pfs.DurationVar(&cfg.turnDelay, "turn-delay", time.Second, "pause after playback before the player's turn (env: SIMONSAYS_TURN_DELAY)")
	pfs.DurationVar(&cfg.roundPause, "round-pause", time.Second, "pause between rounds (env: SIMONSAYS_ROUND_PAUSE)")
	pfs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: SIMONSAYS_VERBOSE)")

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: SIMONSAYS_BIND)")
	fs.DurationVar(&cfg.playerTimeout, "player-timeout", 30*time.Second, "time before a disconnected player hands the pads to a spectator (env: SIMONSAYS_PLAYER_TIMEOUT)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SIMONSAYS_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: SIMONSAYS_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: SIMONSAYS_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game sessions are ended (env: SIMONSAYS_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: SIMONSAYS_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: SIMONSAYS_TLS_KEY)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: SIMONSAYS_VERSION)")

	bindEnv(v, pfs)
	bindEnv(v, fs)

	cmd.AddCommand(newPlayCmd(cfg))

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("simonsays v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newPlayCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateGame(); err != nil {
				return err
			}

			logger, closeLog, err := newDebugLogger(cfg.verbose)
			if err != nil {
				return err
			}
			defer closeLog()
			cfg.log = logger

			return runTUI(cfg)
		},
	}
}
