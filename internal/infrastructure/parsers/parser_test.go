package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONParser_Parse_ValidInput(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
	}{
		{name: "single record", input: `[{"id": "1", "name": "Dana"}]`, wantCount: 1},
		{name: "empty array", input: "[]", wantCount: 0},
		{name: "two records", input: `[{"name": "A"}, {"title": "B", "credits": {"adr": ["C"]}}]`, wantCount: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &JSONParser{}
			result, err := parser.Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Len(t, result, tt.wantCount)
			for i, r := range result {
				assert.Equal(t, i+1, r.LineNum)
			}
		})
	}
}

func TestJSONParser_Parse_KeepsNestedValues(t *testing.T) {
	parser := &JSONParser{}
	result, err := parser.Parse(strings.NewReader(`[{"id":"p1","credits":{"adr":["A"]},"year":2021}]`))

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "p1", result[0].Record.ID())
	assert.JSONEq(t, `{"adr":["A"]}`, string(result[0].Record["credits"]))
	assert.JSONEq(t, `2021`, string(result[0].Record["year"]))
}

func TestJSONParser_Parse_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "invalid JSON", input: `{not valid}`},
		{name: "object instead of array", input: `{"name": "A"}`},
		{name: "array of strings", input: `["A"]`},
		{name: "null item", input: `[null]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &JSONParser{}
			_, err := parser.Parse(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestCSVParser_Parse(t *testing.T) {
	input := `id,name,specialties,featured,order,email,credits
1,Dana Kim,Sound Design; Foley ;,true,3,,
2,Lee,,false,4,lee@example.com,"{""adr"":[""X""]}"`

	parser := &CSVParser{}
	result, err := parser.Parse(strings.NewReader(input))

	require.NoError(t, err)
	require.Len(t, result, 2)

	first := result[0]
	assert.Equal(t, 2, first.LineNum)
	assert.Equal(t, "1", first.Record.ID())
	assert.Equal(t, "Dana Kim", first.Record.String("name"))
	assert.JSONEq(t, `["Sound Design","Foley"]`, string(first.Record["specialties"]))
	assert.JSONEq(t, `true`, string(first.Record["featured"]))
	assert.JSONEq(t, `3`, string(first.Record["order"]))
	_, hasEmail := first.Record["email"]
	assert.False(t, hasEmail)

	second := result[1]
	assert.Equal(t, 3, second.LineNum)
	assert.Equal(t, "lee@example.com", second.Record.String("email"))
	assert.JSONEq(t, `{"adr":["X"]}`, string(second.Record["credits"]))
}

func TestCSVParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty input", input: "", wantErr: "reading CSV header"},
		{name: "duplicate column", input: "name,name\nA,B", wantErr: "duplicate column"},
		{name: "blank column", input: "name, \nA,B", wantErr: "empty column name"},
		{name: "bad boolean", input: "name,featured\nA,maybe", wantErr: "line 2"},
		{name: "bad order", input: "name,order\nA,first", wantErr: "invalid integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &CSVParser{}
			_, err := parser.Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestForFormat(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFormat("JSON"))
	assert.IsType(t, &CSVParser{}, ForFormat("csv"))
	assert.Nil(t, ForFormat("xml"))
}

func TestForFile(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFile("people.json"))
	assert.IsType(t, &CSVParser{}, ForFile("people.CSV"))
	assert.Nil(t, ForFile("people.txt"))
}
