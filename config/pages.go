package config

// Page identifies the view rendered below the global header
type Page int

const (
	PageToken Page = iota
	PageFarms
	PageSettings
	PageReceive
)

// ClickableArea represents a clickable region for mouse support
type ClickableArea struct {
	X, Y          int
	Width, Height int
	Address       string
}
