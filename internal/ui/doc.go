// Package ui is the interactive terminal viewer built on Bubble Tea.
//
// The Model renders one open file at a time as a tab: a header with the
// file tabs and watch status, a command bar, the log pane and a status
// line. Records come from a state.Store through a view.Controller; the
// model subscribes to the store and re-queries when it changes, unless the
// pane is paused.
//
// Overlays take the keyboard first, in this order: help, filters modal,
// file picker, search input. Everything else goes to the global bindings
// and then to the log pane.
//
// Opening, closing and reloading files is delegated to a Sessions
// implementation, which owns the watchers.
package ui
