// Package app wires karaflog together.
//
// Run loads the config and preferences, expands the command line paths and
// starts three kinds of goroutines under one errgroup:
//
//	watcher (one per file) ──events──→ Ingest ──Apply──→ state.Store
//	                                                        │
//	ui.Run (Bubble Tea) ←────────── change notifications ───┘
//
// Session owns the watchers. Opening a file registers a source in the
// store and starts a logtail.Watcher for it; closing cancels the watcher's
// context and removes the source. Reload gives the file a new source id so
// any event still queued from the previous watcher is dropped by the store.
//
// When the UI exits the shared context is cancelled, every watcher and the
// ingest loop return, and Run returns the first error any of them reported.
//
// Cat is the non-interactive path used by `karaflog cat`: it parses a whole
// file with the same parser, store and view controller and prints the
// visible records.
package app
