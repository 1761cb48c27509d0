package logtail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/five82/karaflog/internal/logparse"
)

const (
	defaultPollInterval = time.Second
	defaultFlushDelay   = 300 * time.Millisecond
	defaultRetryBase    = time.Second
	readBufferSize      = 64 * 1024
)

// EventKind says what a watcher observed.
type EventKind int

const (
	// EventRecords carries newly parsed records.
	EventRecords EventKind = iota
	// EventReset means the file was rotated or truncated; earlier records
	// of the source no longer describe the file.
	EventReset
	// EventError means the file could not be read; Status holds the error
	// and the next retry time.
	EventError
	// EventRecovered follows an error once the file is readable again.
	EventRecovered
	// EventPending carries the record still open after the file went idle.
	// It is provisional: the next EventRecords of the source starts with its
	// final form, which may have gained continuation lines.
	EventPending
)

func (k EventKind) String() string {
	switch k {
	case EventRecords:
		return "records"
	case EventReset:
		return "reset"
	case EventError:
		return "error"
	case EventRecovered:
		return "recovered"
	case EventPending:
		return "pending"
	}
	return "unknown"
}

// Status describes the watcher's view of its file.
type Status struct {
	Path      string
	Size      int64
	Offset    int64
	LastRead  time.Time
	Err       error
	Failures  int
	NextRetry time.Time
	Rotations int
}

// Event is sent by a watcher for each observation. Status is a copy taken
// when the event was created.
type Event struct {
	Source  logparse.SourceID
	Kind    EventKind
	Records []logparse.Record
	Status  Status
}

// Options tune a Watcher. Zero values pick defaults.
type Options struct {
	PollInterval time.Duration
	FlushDelay   time.Duration
	RetryBase    time.Duration
	RetryMax     time.Duration
	// Polling disables filesystem notifications.
	Polling bool
	// NewParser builds the parser; nil means a Karaf parser in local time.
	NewParser func() logparse.Parser
	Logger    zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.FlushDelay <= 0 {
		o.FlushDelay = defaultFlushDelay
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.RetryMax <= 0 {
		o.RetryMax = maxBackoff
	}
	if o.NewParser == nil {
		o.NewParser = func() logparse.Parser { return logparse.NewKaraf(nil) }
	}
	return o
}

// Watcher follows one file and publishes what it reads. All reading and
// parsing happens on the goroutine that calls Run.
type Watcher struct {
	id     logparse.SourceID
	opts   Options
	out    chan<- Event
	log    zerolog.Logger
	parser logparse.Parser
	cursor Cursor
	split  lineSplitter
	status Status
	buf    []byte
}

// New returns a watcher for path that sends events tagged with id to out.
func New(id logparse.SourceID, path string, out chan<- Event, opts Options) *Watcher {
	opts = opts.withDefaults()
	path = filepath.Clean(path)
	return &Watcher{
		id:     id,
		opts:   opts,
		out:    out,
		log:    opts.Logger.With().Str("component", "watcher").Str("path", path).Logger(),
		parser: opts.NewParser(),
		cursor: Cursor{Path: path},
		status: Status{Path: path},
		buf:    make([]byte, readBufferSize),
	}
}

// Run watches until ctx is cancelled. Once ctx is done no further event is
// sent; a read already in progress completes and its result is discarded.
func (w *Watcher) Run(ctx context.Context) error {
	notify, stop := w.notifications(ctx)
	defer stop()

	poll := time.NewTicker(w.opts.PollInterval)
	defer poll.Stop()

	flush := time.NewTimer(w.opts.FlushDelay)
	flush.Stop()
	defer flush.Stop()

	if !w.check(ctx, flush) {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-flush.C:
			if !w.publishPending(ctx) {
				return nil
			}
			continue
		case <-notify:
		case <-poll.C:
		}

		if w.status.Err != nil && time.Now().Before(w.status.NextRetry) {
			continue
		}
		if !w.check(ctx, flush) {
			return nil
		}
	}
}

// check reads whatever was appended since the last call. It returns false
// when ctx ended while an event was being delivered.
func (w *Watcher) check(ctx context.Context, flush *time.Timer) bool {
	info, err := os.Stat(w.cursor.Path)
	if err != nil {
		return w.fail(ctx, fmt.Errorf("stat log: %w", err))
	}
	if info.IsDir() {
		return w.fail(ctx, fmt.Errorf("stat log: %s is a directory", w.cursor.Path))
	}

	f, err := os.Open(w.cursor.Path)
	if err != nil {
		return w.fail(ctx, fmt.Errorf("open log: %w", err))
	}
	defer f.Close()

	id := fileID(info)
	rotated := w.cursor.Rotated(info.Size(), id)
	if !rotated {
		if rotated, err = w.cursor.Rewritten(f); err != nil {
			return w.fail(ctx, fmt.Errorf("read log: %w", err))
		}
	}
	if rotated {
		w.log.Info().
			Int64("offset", w.cursor.Offset).
			Int64("size", info.Size()).
			Msg("log rotated, reading from start")
		w.cursor.rewind(id)
		w.split.reset()
		w.parser.Reset()
		flush.Stop()
		w.status.Rotations++
		w.status.Offset = 0
		if !w.emit(ctx, Event{Kind: EventReset}) {
			return false
		}
	}
	w.cursor.ID = id

	records, fed, err := w.read(f, info.Size())
	if len(records) > 0 {
		if !w.emit(ctx, Event{Kind: EventRecords, Records: records}) {
			return false
		}
	}
	if err != nil {
		return w.fail(ctx, err)
	}

	recovered := w.status.Err != nil
	w.status.Err = nil
	w.status.Failures = 0
	w.status.NextRetry = time.Time{}
	w.status.Size = info.Size()
	if recovered {
		w.log.Info().Msg("log readable again")
		if !w.emit(ctx, Event{Kind: EventRecovered}) {
			return false
		}
	}
	if fed && w.parser.Pending() {
		flush.Reset(w.opts.FlushDelay)
	}
	return true
}

// read consumes f from the cursor up to size. It reports whether any
// complete line reached the parser.
func (w *Watcher) read(f *os.File, size int64) ([]logparse.Record, bool, error) {
	if size <= w.cursor.Offset {
		return nil, false, nil
	}
	if _, err := f.Seek(w.cursor.Offset, io.SeekStart); err != nil {
		return nil, false, fmt.Errorf("seek log: %w", err)
	}

	var (
		records []logparse.Record
		fed     bool
	)
	r := io.LimitReader(f, size-w.cursor.Offset)
	for {
		n, err := r.Read(w.buf)
		if n > 0 {
			w.cursor.advance(w.buf[:n])
			for _, line := range w.split.push(w.buf[:n]) {
				fed = true
				if rec, ok := w.parser.Feed(line); ok {
					records = append(records, w.stamp(rec))
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return records, fed, fmt.Errorf("read log: %w", err)
		}
	}
	w.status.Offset = w.cursor.Offset
	w.status.LastRead = time.Now()
	return records, fed, nil
}

// publishPending shows the open record without closing it, so lines that
// arrive later still join it.
func (w *Watcher) publishPending(ctx context.Context) bool {
	rec, ok := w.parser.Peek()
	if !ok {
		return true
	}
	return w.emit(ctx, Event{Kind: EventPending, Records: []logparse.Record{w.stamp(rec)}})
}

func (w *Watcher) fail(ctx context.Context, err error) bool {
	w.status.Failures++
	delay := calculateBackoff(w.status.Failures-1, w.opts.RetryBase, w.opts.RetryMax)
	w.status.Err = err
	w.status.NextRetry = time.Now().Add(delay)

	ev := w.log.Warn()
	if w.status.Failures > 1 {
		ev = w.log.Debug()
	}
	ev.Err(err).
		Int("failures", w.status.Failures).
		Dur("retry_in", delay).
		Msg("log unreadable")
	return w.emit(ctx, Event{Kind: EventError})
}

func (w *Watcher) stamp(rec logparse.Record) logparse.Record {
	rec.Source = w.id
	return rec
}

func (w *Watcher) emit(ctx context.Context, ev Event) bool {
	if ctx.Err() != nil {
		return false
	}
	ev.Source = w.id
	ev.Status = w.status
	select {
	case w.out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// notifications watches the file's directory so that writes, renames and
// re-creations trigger a check before the next poll. The returned channel is
// nil when notifications are unavailable.
func (w *Watcher) notifications(ctx context.Context) (<-chan struct{}, func()) {
	if w.opts.Polling {
		return nil, func() {}
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.log.Warn().Err(err).Msg("file notifications unavailable, polling only")
		return nil, func() {}
	}
	dir := filepath.Dir(w.cursor.Path)
	if err := fw.Add(dir); err != nil {
		w.log.Warn().Err(err).Str("dir", dir).Msg("cannot watch directory, polling only")
		fw.Close()
		return nil, func() {}
	}

	wake := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.cursor.Path {
					continue
				}
				select {
				case wake <- struct{}{}:
				default:
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.log.Debug().Err(err).Msg("notification error")
			}
		}
	}()
	return wake, func() { fw.Close() }
}
