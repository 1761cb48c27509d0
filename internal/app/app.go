package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/karaflog/internal/config"
	"github.com/five82/karaflog/internal/logtail"
	"github.com/five82/karaflog/internal/prefs"
	"github.com/five82/karaflog/internal/state"
	"github.com/five82/karaflog/internal/ui"
)

// Options configure the karaflog application. Non-zero values override the
// config file.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/karaflog/prefs.toml
	Paths      []string
	PollEvery  time.Duration
	Level      string
	Filter     string
	LogFile    string
	Debug      bool
}

// Run boots the karaflog TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg, err = applyOverrides(cfg, opts)
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	spec, err := buildSpec(cfg.Level, opts.Filter, "")
	if err != nil {
		return err
	}

	paths, err := ExpandPaths(opts.Paths)
	if err != nil {
		return err
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	store := &state.Store{}
	events := make(chan logtail.Event, eventBuffer)

	g.Go(func() error { return Ingest(ctx, store, events, logger) })

	session := NewSession(ctx, g, store, events, logtail.Options{
		PollInterval: cfg.PollInterval,
		FlushDelay:   cfg.FlushDelay,
		RetryBase:    cfg.RetryBase,
		RetryMax:     cfg.RetryMax,
		Logger:       logger,
	}, logger)

	for _, path := range paths {
		if _, err := session.Open(path); err != nil {
			cancel()
			_ = g.Wait()
			return err
		}
		userPrefs.AddRecent(path)
	}
	if len(paths) > 0 {
		if err := prefs.Save(opts.PrefsPath, userPrefs); err != nil {
			logger.Warn().Err(err).Msg("save prefs")
		}
	}

	logger.Info().Strs("paths", paths).Dur("poll", cfg.PollInterval).Msg("starting")

	g.Go(func() error {
		defer cancel()
		return ui.Run(ui.Options{
			Context:   ctx,
			Store:     store,
			Sessions:  session,
			Config:    cfg,
			Spec:      spec,
			Prefs:     userPrefs,
			PrefsPath: opts.PrefsPath,
			Logger:    logger,
		})
	})
	return g.Wait()
}

func applyOverrides(cfg config.Config, opts Options) (config.Config, error) {
	if opts.PollEvery > 0 {
		cfg.PollInterval = opts.PollEvery
	}
	if opts.Level != "" {
		cfg.Level = opts.Level
	}
	if opts.LogFile != "" {
		path, err := config.ExpandPath(opts.LogFile)
		if err != nil {
			return cfg, fmt.Errorf("log file: %w", err)
		}
		cfg.LogFile = path
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
		if cfg.LogFile == "" {
			cfg.LogFile = defaultLogPath()
		}
	}
	return cfg, nil
}
