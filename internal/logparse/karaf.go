package logparse

import (
	"regexp"
	"strings"
	"time"
)

// Parser groups raw log lines into records. Implementations keep state
// between calls and are not safe for concurrent use.
type Parser interface {
	// Feed consumes one line without its terminator. It returns the record
	// that the line completed, if any.
	Feed(line string) (Record, bool)
	// Flush finalizes the open record.
	Flush() (Record, bool)
	// Peek returns the open record as it stands without closing it. Lines
	// fed afterwards still join it.
	Peek() (Record, bool)
	// Pending reports whether a record is open.
	Pending() bool
	// Reset discards the open record.
	Reset()
}

var (
	headerPattern = regexp.MustCompile(
		`^(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}(?:[.,]\d{1,9})?(?:Z|[+-]\d{2}:?\d{2})?)\s*\|\s*([A-Z]+)\s*\|(.*)$`)
	bundlePattern = regexp.MustCompile(`^\s*\d*\s*-.*-\s*\S*\s*$`)
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02T15:04:05Z0700",
}

// Karaf parses the pipe separated layout written by Apache Karaf's default
// log4j configuration:
//
//	2024-01-01 10:00:00,123 | INFO  | FelixStartLevel | org.foo.Bar | 12 - org.foo - 1.0 | message
//
// The shorter "timestamp | level | logger | message" form is accepted too.
// Lines that are not headers continue the open record.
type Karaf struct {
	loc   *time.Location
	open  bool
	cur   Record
	lines []string
}

var _ Parser = (*Karaf)(nil)

// NewKaraf returns a parser that reads zoneless timestamps in loc. A nil loc
// means local time.
func NewKaraf(loc *time.Location) *Karaf {
	if loc == nil {
		loc = time.Local
	}
	return &Karaf{loc: loc}
}

// Feed implements Parser. Empty lines are dropped.
func (k *Karaf) Feed(line string) (Record, bool) {
	if strings.TrimSpace(line) == "" {
		return Record{}, false
	}

	if header, ok := k.parseHeader(line); ok {
		done, emitted := k.finish()
		k.cur = header
		k.open = true
		k.lines = append(k.lines[:0], line)
		return done, emitted
	}

	if !k.open {
		k.cur = Record{Level: LevelUnknown}
		k.open = true
		k.lines = k.lines[:0]
	}
	k.lines = append(k.lines, line)
	return Record{}, false
}

// Flush implements Parser.
func (k *Karaf) Flush() (Record, bool) {
	return k.finish()
}

// Peek implements Parser.
func (k *Karaf) Peek() (Record, bool) {
	if !k.open {
		return Record{}, false
	}
	return k.build(), true
}

// Pending implements Parser.
func (k *Karaf) Pending() bool {
	return k.open
}

// Reset implements Parser.
func (k *Karaf) Reset() {
	k.open = false
	k.cur = Record{}
	k.lines = k.lines[:0]
}

func (k *Karaf) finish() (Record, bool) {
	if !k.open {
		return Record{}, false
	}
	rec := k.build()
	k.Reset()
	return rec, true
}

func (k *Karaf) build() Record {
	rec := k.cur
	rec.Raw = strings.Join(k.lines, "\n")
	if rec.Level == LevelUnknown {
		rec.Message = rec.Raw
	} else if len(k.lines) > 1 {
		rec.Message = rec.Message + "\n" + strings.Join(k.lines[1:], "\n")
	}
	return rec
}

func (k *Karaf) parseHeader(line string) (Record, bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return Record{}, false
	}
	level, ok := parseLevelToken(m[2])
	if !ok {
		return Record{}, false
	}
	ts, ok := parseTimestamp(m[1], k.loc)
	if !ok {
		return Record{}, false
	}

	rec := Record{Time: ts, Level: level}
	rest := m[3]
	if parts := strings.SplitN(rest, "|", 4); len(parts) == 4 && bundlePattern.MatchString(parts[2]) {
		rec.Thread = strings.TrimSpace(parts[0])
		rec.Logger = strings.TrimSpace(parts[1])
		rec.Bundle = strings.TrimSpace(parts[2])
		rec.Message = strings.TrimSpace(parts[3])
		return rec, true
	}
	if logger, msg, found := strings.Cut(rest, "|"); found {
		rec.Logger = strings.TrimSpace(logger)
		rec.Message = strings.TrimSpace(msg)
	} else {
		rec.Message = strings.TrimSpace(rest)
	}
	return rec, true
}

func parseTimestamp(value string, loc *time.Location) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
