package tui

import "time"

// UI Layout Constants

const (
	// Header bar, status line, template tabs, key input
	HeaderLines = 4

	// Footer line plus the blank line above it
	FooterLines = 2

	// Width consumed by a rounded border with horizontal padding 1
	PaneChromeWidth = 4

	// Height consumed by a rounded border and the pane title
	PaneChromeHeight = 3

	// Share of the body width given to the draft editor
	DraftWidthRatio = 0.45

	// Minimum pane sizes before the layout stops shrinking
	MinPaneWidth  = 20
	MinPaneHeight = 3

	// Buffer size for the socket event channel
	EventBuffer = 100

	// Footer status messages clear after this long
	StatusMessageTimeout = 4 * time.Second
)
