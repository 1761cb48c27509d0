package logparse

import (
	"strings"
	"time"
)

// Level is a log severity. The zero value is LevelUnknown, used for content
// that did not come from a recognizable header line.
type Level int

const (
	LevelUnknown Level = iota
	LevelTrace
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"UNKNOWN", "TRACE", "DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelUnknown || l > LevelError {
		return levelNames[LevelUnknown]
	}
	return levelNames[l]
}

// Levels returns the real severities in ascending order.
func Levels() []Level {
	return []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}
}

// parseLevelToken maps a level token exactly as Karaf prints it.
func parseLevelToken(token string) (Level, bool) {
	switch token {
	case "TRACE":
		return LevelTrace, true
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR", "FATAL":
		return LevelError, true
	}
	return LevelUnknown, false
}

// LevelFromName parses a user supplied level name such as "warn" or "ERROR".
// The empty string yields LevelUnknown, which means "no threshold".
func LevelFromName(name string) (Level, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" || name == "OFF" || name == "ALL" {
		return LevelUnknown, true
	}
	return parseLevelToken(name)
}

// SourceID identifies the watched file a record was read from.
type SourceID string

// Record is one parsed log event. Records are plain values: once the parser
// emits one, nothing rewrites it.
type Record struct {
	Seq     uint64
	Source  SourceID
	Time    time.Time
	Level   Level
	Thread  string
	Logger  string
	Bundle  string
	Message string
	Raw     string
}

// Lines returns the raw text split into display lines.
func (r Record) Lines() []string {
	return strings.Split(r.Raw, "\n")
}

// Unparsed reports whether the record holds content without a Karaf header.
func (r Record) Unparsed() bool {
	return r.Level == LevelUnknown
}
