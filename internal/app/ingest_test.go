package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/karaflog/internal/filter"
	"github.com/five82/karaflog/internal/logparse"
	"github.com/five82/karaflog/internal/logtail"
	"github.com/five82/karaflog/internal/state"
)

func rec(msg string) logparse.Record {
	return logparse.Record{Source: "a", Level: logparse.LevelInfo, Message: msg, Raw: msg}
}

func TestIngest_AppliesEventsInOrder(t *testing.T) {
	store := &state.Store{}
	store.Register("a", "/logs/a.log")

	events := make(chan logtail.Event, 8)
	events <- logtail.Event{Source: "a", Kind: logtail.EventRecords, Records: []logparse.Record{rec("one"), rec("two")}}
	events <- logtail.Event{Source: "a", Kind: logtail.EventReset, Status: logtail.Status{Rotations: 1}}
	events <- logtail.Event{Source: "a", Kind: logtail.EventRecords, Records: []logparse.Record{rec("three")}}
	events <- logtail.Event{Source: "gone", Kind: logtail.EventRecords, Records: []logparse.Record{rec("late")}}
	events <- logtail.Event{Source: "a", Kind: logtail.EventError, Status: logtail.Status{Err: errors.New("denied"), Failures: 1}}
	close(events)

	if err := Ingest(context.Background(), store, events, zerolog.Nop()); err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	var got []string
	for r := range store.Query(filter.Spec{}) {
		got = append(got, r.Message)
	}
	if len(got) != 1 || got[0] != "three" {
		t.Fatalf("records = %q, want [three]", got)
	}

	src, ok := store.Source("a")
	if !ok {
		t.Fatalf("source a missing")
	}
	if !src.Failing() || src.Failures != 1 {
		t.Fatalf("status = %+v, want one failure", src.Status)
	}
}

func TestIngest_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Ingest(ctx, &state.Store{}, make(chan logtail.Event), zerolog.Nop())
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Ingest returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Ingest did not return after cancel")
	}
}
