package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/karaflog/internal/config"
	"github.com/five82/karaflog/internal/logparse"
)

func TestApplyOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := applyOverrides(config.Default(), Options{
		PollEvery: 250 * time.Millisecond,
		Level:     "error",
		LogFile:   "~/karaflog.log",
	})
	if err != nil {
		t.Fatalf("applyOverrides returned error: %v", err)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Fatalf("PollInterval = %v, want 250ms", cfg.PollInterval)
	}
	if cfg.Level != "error" {
		t.Fatalf("Level = %q, want error", cfg.Level)
	}
	if cfg.LogFile != filepath.Join(home, "karaflog.log") {
		t.Fatalf("LogFile = %q, want it under HOME", cfg.LogFile)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestApplyOverrides_DebugEnablesLogFile(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cfg, err := applyOverrides(config.Default(), Options{Debug: true})
	if err != nil {
		t.Fatalf("applyOverrides returned error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if !strings.HasSuffix(cfg.LogFile, filepath.Join("karaflog", logFileName)) {
		t.Fatalf("LogFile = %q, want the default cache location", cfg.LogFile)
	}
}

func TestBuildSpec(t *testing.T) {
	spec, err := buildSpec(" warn ", "timeout|refused", "Database")
	if err != nil {
		t.Fatalf("buildSpec returned error: %v", err)
	}
	if spec.MinLevel != logparse.LevelWarn {
		t.Fatalf("MinLevel = %v, want WARN", spec.MinLevel)
	}
	if !spec.Pattern.IsRegex() || spec.Term.IsRegex() {
		t.Fatalf("pattern/term regex = %v/%v, want true/false", spec.Pattern.IsRegex(), spec.Term.IsRegex())
	}

	empty, err := buildSpec("", "", "")
	if err != nil {
		t.Fatalf("buildSpec returned error: %v", err)
	}
	if empty.Active() {
		t.Fatalf("empty spec is active: %q", empty.Summary())
	}
}

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "karaflog.log")
	logger, closer, err := newLogger(path, "debug")
	if err != nil {
		t.Fatalf("newLogger returned error: %v", err)
	}
	logger.Debug().Str("path", "/var/log/karaf.log").Msg("opened")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `"message":"opened"`) {
		t.Fatalf("log file = %q, want the debug message", data)
	}
}

func TestNewLogger_EmptyPathDiscards(t *testing.T) {
	logger, closer, err := newLogger("  ", "info")
	if err != nil {
		t.Fatalf("newLogger returned error: %v", err)
	}
	logger.Info().Msg("nowhere")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
