package tui

import "time"

// UI Layout Constants
// These constants define spacing, margins, and dimensions for the TUI layout

const (
	// Modal Dimensions - Standard margins for modal dialogs
	ModalWidthMargin  = 6 // Standard horizontal margin (m.width - 6)
	ModalHeightMargin = 3 // Standard vertical margin (m.height - 3)

	// Viewport Padding and Borders
	ViewportBorderWidth       = 2 // Width consumed by borders
	ViewportPaddingHorizontal = 4 // Horizontal padding (left + right)

	// Content Area Offsets
	HeaderLines      = 4 // Title, api base, input row, blank line
	StatusBarLines   = 1
	HistoryListRatio = 0.45 // Share of the modal width used by the entry list

	// Layout Margins
	MinimalBorderMargin = 2 // m.width - 2 for minimal borders
	ButtonGap           = 2 // Space between the input and the submit button

	// Messages
	StatusMaxLength = 100             // Footer messages are truncated to this many runes
	MessageTimeout  = 5 * time.Second // Status and app errors clear after this
)

// historyLimit caps how many entries the history modal loads
const historyLimit = 500
