package main

// Default limits for CLI commands.
const (
	DefaultHistoryLimit = 20
	MaxCellWidth        = 60
)

// Valid export formats.
var validFormats = []string{"json", "csv", "markdown"}
