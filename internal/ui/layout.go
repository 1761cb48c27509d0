package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100
)

// Log pane geometry.
const (
	// logChromeHeight is the number of rows around the log viewport: header,
	// command bar, the box borders and the status bar.
	logChromeHeight = 5

	// badgeWidth fits the longest level name.
	badgeWidth = 5

	// gutterWidth is the badge plus the " │ " separator.
	gutterWidth = badgeWidth + 3
)

// Timing constants.
const (
	// uiTick refreshes relative times and retry countdowns.
	uiTick = time.Second

	// noticeDuration is how long a status bar notice stays.
	noticeDuration = 3 * time.Second
)
