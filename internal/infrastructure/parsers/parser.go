// Package parsers provides parsers for importing collection records from
// various formats.
package parsers

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
)

// ListSeparator separates list values inside a single CSV cell.
const ListSeparator = ";"

// ListFields are the fields whose CSV cells hold ListSeparator-joined values.
var ListFields = map[string]bool{
	"specialties": true,
	"awards":      true,
	"roles":       true,
	"tags":        true,
}

// RawRecord is a record parsed from an external source before validation.
type RawRecord struct {
	Record  entities.Record
	LineNum int // Line number in source file (set by parser)
}

// Parser defines the interface for parsing records from various formats.
type Parser interface {
	Parse(r io.Reader) ([]RawRecord, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "csv".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "csv":
		return &CSVParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &JSONParser{}
	case ".csv":
		return &CSVParser{}
	default:
		return nil
	}
}
