package parsers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/caspermolin/website-sub000/internal/domain/entities"
)

// JSONParser parses records from a JSON array of objects.
type JSONParser struct{}

// Parse reads JSON from the reader and returns parsed records.
func (p *JSONParser) Parse(r io.Reader) ([]RawRecord, error) {
	var items []entities.Record

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	// Line numbers are array index + 1
	records := make([]RawRecord, 0, len(items))
	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("parsing JSON: item %d is not an object", i+1)
		}
		records = append(records, RawRecord{Record: item, LineNum: i + 1})
	}

	return records, nil
}
