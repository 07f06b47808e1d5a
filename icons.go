package main

// Icons used by the viewer chrome. Block headers draw their own glyphs.
const (
	IconSelected = "│" // Cursor gutter
	IconDot      = "·" // Separator dot
	IconLive     = "●" // Tailing indicator
	IconFollow   = "↓" // Auto-follow enabled
	IconPaused   = "‖" // Auto-follow paused
)
