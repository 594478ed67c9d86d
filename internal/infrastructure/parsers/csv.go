package parsers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
)

// CSVParser parses records from CSV. The header row names the fields.
// List fields are split on ListSeparator, "featured" is parsed as a boolean,
// "order" and "year" as integers, and cells holding a JSON object or array
// are kept as JSON. Everything else is a string. Empty cells are omitted.
type CSVParser struct{}

// Parse reads CSV from the reader and returns parsed records.
func (p *CSVParser) Parse(r io.Reader) ([]RawRecord, error) {
	reader := csv.NewReader(r)

	header, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	return p.readRecords(reader, header)
}

// readHeader reads and validates the CSV header row.
func (p *CSVParser) readHeader(reader *csv.Reader) ([]string, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	seen := make(map[string]bool, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		if col == "" {
			return nil, fmt.Errorf("empty column name at position %d", i+1)
		}
		if seen[col] {
			return nil, fmt.Errorf("duplicate column: %s", col)
		}
		seen[col] = true
		header[i] = col
	}

	return header, nil
}

// readRecords reads all data rows and converts them to RawRecords.
func (p *CSVParser) readRecords(reader *csv.Reader, header []string) ([]RawRecord, error) {
	var records []RawRecord
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		rec, err := p.parseRow(row, header, lineNum)
		if err != nil {
			return nil, err
		}
		records = append(records, RawRecord{Record: rec, LineNum: lineNum})
	}

	return records, nil
}

// parseRow converts a CSV row to a record.
func (p *CSVParser) parseRow(row, header []string, lineNum int) (entities.Record, error) {
	rec := make(entities.Record, len(header))
	for i, col := range header {
		if i >= len(row) {
			break
		}
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		value, err := cellValue(col, cell)
		if err != nil {
			return nil, fmt.Errorf("line %d: column %s: %w", lineNum, col, err)
		}
		if err := rec.Set(col, value); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	return rec, nil
}

func cellValue(col, cell string) (any, error) {
	switch {
	case ListFields[col] && !(strings.HasPrefix(cell, "[") && json.Valid([]byte(cell))):
		return SplitList(cell), nil
	case col == "featured":
		b, err := strconv.ParseBool(cell)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q", cell)
		}
		return b, nil
	case col == "order" || col == "year":
		n, err := strconv.Atoi(cell)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", cell)
		}
		return n, nil
	case (strings.HasPrefix(cell, "{") || strings.HasPrefix(cell, "[")) && json.Valid([]byte(cell)):
		return json.RawMessage(cell), nil
	default:
		return cell, nil
	}
}

// SplitList splits a ListSeparator-joined cell, trimming values and dropping
// empty ones.
func SplitList(cell string) []string {
	parts := strings.Split(cell, ListSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
