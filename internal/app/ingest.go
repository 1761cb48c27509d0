package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/five82/karaflog/internal/logtail"
	"github.com/five82/karaflog/internal/state"
)

// eventBuffer bounds how far watchers can run ahead of the store.
const eventBuffer = 256

// Ingest applies watcher events to the store until ctx ends or events is
// closed. It is the only goroutine that applies watcher output, so each
// event lands as one change.
func Ingest(ctx context.Context, store *state.Store, events <-chan logtail.Event, log zerolog.Logger) error {
	log = log.With().Str("component", "ingest").Logger()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !store.Apply(ev) {
				log.Debug().Str("source", string(ev.Source)).Stringer("kind", ev.Kind).Msg("dropped event for closed source")
				continue
			}
			logEvent(log, ev)
		}
	}
}

func logEvent(log zerolog.Logger, ev logtail.Event) {
	switch ev.Kind {
	case logtail.EventReset:
		log.Info().Str("path", ev.Status.Path).Int("rotations", ev.Status.Rotations).Msg("file rotated")
	case logtail.EventError:
		log.Warn().Err(ev.Status.Err).
			Str("path", ev.Status.Path).
			Int("failures", ev.Status.Failures).
			Time("next_retry", ev.Status.NextRetry).
			Msg("file unreadable")
	case logtail.EventRecovered:
		log.Info().Str("path", ev.Status.Path).Msg("file readable again")
	case logtail.EventRecords:
		log.Trace().Str("path", ev.Status.Path).Int("records", len(ev.Records)).Msg("records")
	case logtail.EventPending:
		log.Trace().Str("path", ev.Status.Path).Msg("open record published")
	}
}
