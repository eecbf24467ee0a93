package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// rowsSchema accepts one object or a non-empty array of objects.
const rowsSchema = `{
  "$defs": {"row": {"type": "object"}},
  "oneOf": [
    {"$ref": "#/$defs/row"},
    {"type": "array", "minItems": 1, "items": {"$ref": "#/$defs/row"}}
  ]
}`

var compiledRows = jsonschema.MustCompileString("rows.json", rowsSchema)

// Table is a header plus string rows, the common shape behind every export format.
type Table struct {
	Header []string
	Rows   [][]string
}

type orderedRow struct {
	keys   []string
	values map[string]json.RawMessage
}

// tableFromJSON flattens an object or array of objects into a Table. Columns follow
// the order in which keys first appear in the document.
func tableFromJSON(data []byte) (Table, error) {
	if !json.Valid(data) {
		return Table{}, ErrInvalidJSON
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := compiledRows.Validate(doc); err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrConversion, err)
	}

	rows, err := decodeRows(data)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrConversion, err)
	}

	var t Table
	seen := make(map[string]bool)
	for _, r := range rows {
		for _, k := range r.keys {
			if !seen[k] {
				seen[k] = true
				t.Header = append(t.Header, k)
			}
		}
	}
	for _, r := range rows {
		line := make([]string, len(t.Header))
		for i, k := range t.Header {
			cell, err := cellText(r.values[k])
			if err != nil {
				return Table{}, fmt.Errorf("%w: column %q: %v", ErrConversion, k, err)
			}
			line[i] = cell
		}
		t.Rows = append(t.Rows, line)
	}
	return t, nil
}

func decodeRows(data []byte) ([]orderedRow, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch tok {
	case json.Delim('{'):
		r, err := decodeObject(dec)
		if err != nil {
			return nil, err
		}
		return []orderedRow{r}, nil
	case json.Delim('['):
		var rows []orderedRow
		for dec.More() {
			t, err := dec.Token()
			if err != nil {
				return nil, err
			}
			if t != json.Delim('{') {
				return nil, fmt.Errorf("array item is not an object")
			}
			r, err := decodeObject(dec)
			if err != nil {
				return nil, err
			}
			rows = append(rows, r)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unexpected top-level value %v", tok)
	}
}

// decodeObject reads the members of an object whose opening brace was consumed.
func decodeObject(dec *json.Decoder) (orderedRow, error) {
	r := orderedRow{values: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return r, err
		}
		key, ok := tok.(string)
		if !ok {
			return r, fmt.Errorf("object key is %T", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return r, err
		}
		if _, dup := r.values[key]; !dup {
			r.keys = append(r.keys, key)
		}
		r.values[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return r, err
	}
	return r, nil
}

// cellText renders one JSON value: strings unquoted, null and missing as empty,
// numbers verbatim, nested values as compact JSON.
func cellText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}
	switch raw[0] {
	case 'n':
		return "", nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return string(raw), nil
	}
}

// tableFromCSV reads already-CSV content, for formats other than CSV itself.
func tableFromCSV(data []byte) (Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	var t Table
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("%w: %v", ErrConversion, err)
		}
		if t.Header == nil {
			t.Header = rec
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	if t.Header == nil {
		return Table{}, fmt.Errorf("%w: empty csv", ErrConversion)
	}
	return t, nil
}

// writeCSV encodes t with RFC 4180 quoting.
func writeCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}
	return buf.Bytes(), nil
}
