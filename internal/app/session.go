package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/five82/karaflog/internal/logparse"
	"github.com/five82/karaflog/internal/logtail"
	"github.com/five82/karaflog/internal/state"
)

// ErrUnknownSource is returned for ids that are not open.
var ErrUnknownSource = errors.New("unknown source")

// Session starts and stops one watcher per open file. Watchers run in the
// application's errgroup and send to the shared ingest channel.
type Session struct {
	ctx    context.Context
	group  *errgroup.Group
	store  *state.Store
	events chan<- logtail.Event
	opts   logtail.Options
	log    zerolog.Logger
	newID  func() logparse.SourceID

	mu      sync.Mutex
	running map[logparse.SourceID]*watch
}

type watch struct {
	path   string
	cancel context.CancelFunc
}

// NewSession returns a session whose watchers live until ctx ends or their
// source is closed.
func NewSession(ctx context.Context, group *errgroup.Group, store *state.Store, events chan<- logtail.Event, opts logtail.Options, log zerolog.Logger) *Session {
	return &Session{
		ctx:     ctx,
		group:   group,
		store:   store,
		events:  events,
		opts:    opts,
		log:     log.With().Str("component", "session").Logger(),
		newID:   func() logparse.SourceID { return logparse.SourceID(uuid.NewString()) },
		running: make(map[logparse.SourceID]*watch),
	}
}

// Open starts watching path. A file that does not exist yet is watched
// anyway and reported as unreadable until it appears. Opening a path that is
// already open returns the existing id.
func (s *Session) Open(path string) (logparse.SourceID, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return "", fmt.Errorf("open %s: is a directory", abs)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, w := range s.running {
		if w.path == abs {
			return id, nil
		}
	}

	id := s.newID()
	s.store.Register(id, abs)
	s.startLocked(id, abs)
	s.log.Info().Str("source", string(id)).Str("path", abs).Msg("opened")
	return id, nil
}

// Close stops the watcher of id and forgets its records.
func (s *Session) Close(id logparse.SourceID) error {
	s.mu.Lock()
	w, ok := s.running[id]
	if ok {
		w.cancel()
		delete(s.running, id)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("close %s: %w", id, ErrUnknownSource)
	}
	s.store.Remove(id)
	s.log.Info().Str("source", string(id)).Str("path", w.path).Msg("closed")
	return nil
}

// Reload restarts the watcher of id from the start of the file. The source
// gets a new id so events still in flight from the old watcher are
// discarded.
func (s *Session) Reload(id logparse.SourceID) (logparse.SourceID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.running[id]
	if !ok {
		return "", fmt.Errorf("reload %s: %w", id, ErrUnknownSource)
	}
	w.cancel()
	delete(s.running, id)

	next := s.newID()
	if !s.store.Replace(id, next, w.path) {
		s.store.Register(next, w.path)
	}
	s.startLocked(next, w.path)
	s.log.Info().Str("source", string(next)).Str("path", w.path).Msg("reloaded")
	return next, nil
}

// Clear drops the records read so far for id. Watching continues.
func (s *Session) Clear(id logparse.SourceID) int {
	return s.store.Clear(id)
}

// Paths returns the paths of the open sources.
func (s *Session) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.running))
	for _, w := range s.running {
		paths = append(paths, w.path)
	}
	return paths
}

func (s *Session) startLocked(id logparse.SourceID, path string) {
	ctx, cancel := context.WithCancel(s.ctx)
	s.running[id] = &watch{path: path, cancel: cancel}

	watcher := logtail.New(id, path, s.events, s.opts)
	s.group.Go(func() error {
		defer cancel()
		if err := watcher.Run(ctx); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}
