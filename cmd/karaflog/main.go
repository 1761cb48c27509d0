package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/karaflog/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "karaflog: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var opts app.Options

	cmd := &cobra.Command{
		Use:   "karaflog [path|glob ...]",
		Short: "Follow Apache Karaf logs in the terminal",
		Long: `karaflog tails one or more Karaf log files, groups stack traces with the
record they belong to and lets you filter, search and color them by level.

Without arguments a file picker opens in the last used directory.

Examples:
  karaflog /opt/karaf/data/log/karaf.log
  karaflog "/opt/karaf/data/log/*.log" --level warn
  karaflog karaf.log --filter 'org\.apache\.camel'`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePoll(opts.PollEvery); err != nil {
				return err
			}
			opts.Paths = args
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/karaflog/config.toml)")
	flags.StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/karaflog/prefs.toml)")
	flags.DurationVar(&opts.PollEvery, "poll", 0, "file check interval, e.g. 500ms (default from config)")
	flags.StringVar(&opts.Level, "level", "", "lowest level shown: trace, debug, info, warn, error")
	flags.StringVar(&opts.Filter, "filter", "", "only show records matching this regular expression")
	flags.StringVar(&opts.LogFile, "log-file", "", "write karaflog's own log to this file")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newCatCmd())
	return cmd
}

// validatePoll rejects intervals too short to be useful.
func validatePoll(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("--poll must not be negative, got %s", d)
	}
	if d > 0 && d < 10*time.Millisecond {
		return fmt.Errorf("--poll must be at least 10ms, got %s", d)
	}
	return nil
}
