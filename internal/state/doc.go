// Package state holds the records read so far and the status of every
// watched file.
//
// # Overview
//
// The Store is where watcher output meets the UI. Watcher events are
// applied by a single ingest goroutine; the UI reads on its own goroutine:
//
//	Watchers ──events──→ ingest ──Apply──→ Store ──notify──→ UI
//	                                        ↑                  │
//	                                        └──────Query───────┘
//
// # Concurrency
//
// A sync.RWMutex guards everything. Apply takes the write lock once per
// event, so a reader never sees half of a batch or a reset without the
// records that followed it. Query copies the slice header under the read
// lock and evaluates its predicates lazily afterwards; appends never touch
// the elements an earlier Query can see, and Clear builds a new slice.
//
// # Notifications
//
// Subscribe hands out a channel with a buffer of one. Every change tries a
// non-blocking send, so bursts collapse into a single wake-up and a slow
// reader can never stall ingestion. Readers compare Version to decide
// whether anything changed.
//
// # Sources
//
// Records are only accepted for registered sources. Removing a source (or
// replacing it on reload) makes any event still in flight from its old
// watcher a no-op.
//
// The zero Store is ready to use.
package state
