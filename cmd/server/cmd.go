package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kira8ke/GloHub/internal/config"
)

type flags struct {
	bind        string
	port        int
	autoMigrate bool
	verbose     bool
}

func (f *flags) validate() error {
	if f.port < 1 || f.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", f.port)
	}
	return nil
}

func newCmd() *cobra.Command {
	opts := &flags{}
	v := config.NewViper()
	def := config.Default()

	cmd := &cobra.Command{
		Use:   "charades",
		Short: "Real-time charades session coordinator.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), opts, config.FromViper(v))
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&opts.bind, "bind", "b", "0.0.0.0", "address to bind to (env: CHARADES_BIND)")
	fs.IntVarP(&opts.port, "port", "p", 8080, "port to listen on (env: CHARADES_PORT)")
	fs.BoolVar(&opts.autoMigrate, "auto-migrate", false, "run schema auto-migration on startup (env: CHARADES_AUTO_MIGRATE)")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level (env: CHARADES_VERBOSE)")
	fs.String("database-url", "", "postgres connection string; empty keeps games in memory (env: DATABASE_URL)")
	fs.Duration("play-duration", def.PlayDuration, "acting time per round (env: CHARADES_PLAY_DURATION)")
	fs.Duration("action-cooldown", def.ActionCooldown, "minimum gap between scored actions (env: CHARADES_ACTION_COOLDOWN)")
	fs.Duration("timer-tick", def.TimerTick, "interval of timer tick broadcasts, 0 disables (env: CHARADES_TIMER_TICK)")
	fs.Int("finish-after-turns", def.FinishAfterTurns, "end the game after this many turns, 0 waits for every player (env: CHARADES_FINISH_AFTER_TURNS)")
	fs.Duration("reconcile-interval", def.ReconcileInterval, "how often failed writes are retried (env: CHARADES_RECONCILE_INTERVAL)")
	fs.Duration("finished-retention", def.FinishedRetention, "how long finished games stay in memory (env: CHARADES_FINISHED_RETENTION)")
	fs.String("allowed-origins", strings.Join(def.AllowedOrigins, ","), "comma separated CORS origins (env: CHARADES_ALLOWED_ORIGINS)")
	fs.String("log-level", def.LogLevel, "log level (env: CHARADES_LOG_LEVEL)")
	fs.String("log-format", def.LogFormat, "console or json (env: CHARADES_LOG_FORMAT)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

const shutdownTimeout = 10 * time.Second
