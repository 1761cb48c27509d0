package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds karaflog's runtime settings.
type Config struct {
	PollInterval time.Duration
	FlushDelay   time.Duration
	RetryBase    time.Duration
	RetryMax     time.Duration
	// Level is the initial level threshold name; empty shows everything.
	Level    string
	Follow   bool
	Wrap     bool
	LogFile  string
	LogLevel string
}

const (
	defaultConfigPath   = "~/.config/karaflog/config.toml"
	defaultPollInterval = time.Second
	defaultFlushDelay   = 300 * time.Millisecond
	defaultRetryBase    = time.Second
	defaultRetryMax     = 30 * time.Second
	defaultLogLevel     = "info"
)

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		PollInterval: defaultPollInterval,
		FlushDelay:   defaultFlushDelay,
		RetryBase:    defaultRetryBase,
		RetryMax:     defaultRetryMax,
		Follow:       true,
		LogLevel:     defaultLogLevel,
	}
}

// Load reads the config file at path (or the default location when empty),
// falling back to defaults when it is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		PollIntervalMS *int    `toml:"poll_interval_ms"`
		FlushDelayMS   *int    `toml:"flush_delay_ms"`
		RetryBaseMS    *int    `toml:"retry_base_ms"`
		RetryMaxMS     *int    `toml:"retry_max_ms"`
		Level          string  `toml:"level"`
		Follow         *bool   `toml:"follow"`
		Wrap           *bool   `toml:"wrap"`
		LogFile        string  `toml:"log_file"`
		LogLevel       *string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	setMillis(&cfg.PollInterval, raw.PollIntervalMS)
	setMillis(&cfg.FlushDelay, raw.FlushDelayMS)
	setMillis(&cfg.RetryBase, raw.RetryBaseMS)
	setMillis(&cfg.RetryMax, raw.RetryMaxMS)
	if cfg.RetryMax < cfg.RetryBase {
		cfg.RetryMax = cfg.RetryBase
	}

	cfg.Level = strings.TrimSpace(raw.Level)
	if raw.Follow != nil {
		cfg.Follow = *raw.Follow
	}
	if raw.Wrap != nil {
		cfg.Wrap = *raw.Wrap
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}
	if raw.LogLevel != nil && strings.TrimSpace(*raw.LogLevel) != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}

	return cfg, nil
}

// DefaultPath returns the config location used when none is given.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

// ExpandPath resolves ~ and relative paths to an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// setMillis overwrites dst with a positive millisecond value; missing or
// non-positive values keep the default.
func setMillis(dst *time.Duration, ms *int) {
	if ms == nil || *ms <= 0 {
		return
	}
	*dst = time.Duration(*ms) * time.Millisecond
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
