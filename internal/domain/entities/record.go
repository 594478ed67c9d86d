// Package entities contains core domain data structures.
package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is a single collection item. Fields are kept as raw JSON so that
// values the pipeline does not own survive a read/write round trip.
type Record map[string]json.RawMessage

// RecordFrom converts any JSON-encodable object into a Record.
func RecordFrom(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("record must be a JSON object")
	}
	return rec, nil
}

// ID returns the record identifier. Numeric ids from legacy data are returned
// in their literal form.
func (r Record) ID() string {
	raw, ok := r["id"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// String returns a string field, or "" when the field is missing or not a string.
func (r Record) String(key string) string {
	raw, ok := r[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Label returns a human readable identifier for log lines: name, then title, then id.
func (r Record) Label() string {
	for _, key := range []string{"name", "title"} {
		if v := strings.TrimSpace(r.String(key)); v != "" {
			return v
		}
	}
	return r.ID()
}

// Set encodes v and stores it under key.
func (r Record) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding field %s: %w", key, err)
	}
	r[key] = data
	return nil
}

// Decode unmarshals the whole record into v.
func (r Record) Decode(v any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	return json.Unmarshal(data, v)
}

// Clone returns a shallow copy. Raw values are never mutated in place, so
// sharing them is safe.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge returns a copy of r with every field of patch applied on top.
func (r Record) Merge(patch Record) Record {
	out := r.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Equal reports whether two records hold the same fields with byte-identical
// compacted values.
func (r Record) Equal(other Record) bool {
	if len(r) != len(other) {
		return false
	}
	for k, v := range r {
		ov, ok := other[k]
		if !ok || !rawEqual(v, ov) {
			return false
		}
	}
	return true
}

func rawEqual(a, b json.RawMessage) bool {
	var ca, cb bytes.Buffer
	if json.Compact(&ca, a) != nil || json.Compact(&cb, b) != nil {
		return bytes.Equal(a, b)
	}
	return bytes.Equal(ca.Bytes(), cb.Bytes())
}
