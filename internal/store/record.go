package store

import (
	"bytes"
	"encoding/json"
	"reflect"
)

var recordType = reflect.TypeOf(Record{})

// Field is one column/value pair of a Record.
type Field struct {
	Column string
	Value  any
}

// Record is an ordered set of column values. A nil Value means the field is
// absent: it is dropped before SQL is generated instead of written as NULL.
type Record []Field

// Set assigns value to column, keeping the column's original position when
// it already exists.
func (r *Record) Set(column string, value any) {
	for i := range *r {
		if (*r)[i].Column == column {
			(*r)[i].Value = value
			return
		}
	}
	*r = append(*r, Field{Column: column, Value: value})
}

// Get returns the value of column and whether the column is present with a
// non-nil value.
func (r Record) Get(column string) (any, bool) {
	for _, f := range r {
		if f.Column == column {
			return f.Value, f.Value != nil
		}
	}
	return nil, false
}

// Text returns the value of column as a string. Non-string values are
// formatted with their JSON form; absent columns yield "".
func (r Record) Text(column string) string {
	v, ok := r.Get(column)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(bytes.Trim(b, `"`))
	}
}

// Defined returns the fields with non-nil values, in their original order.
func (r Record) Defined() Record {
	out := make(Record, 0, len(r))
	for _, f := range r {
		if f.Value != nil {
			out = append(out, f)
		}
	}
	return out
}

// Without returns r minus the named columns.
func (r Record) Without(columns ...string) Record {
	out := make(Record, 0, len(r))
next:
	for _, f := range r {
		for _, c := range columns {
			if f.Column == c {
				continue next
			}
		}
		out = append(out, f)
	}
	return out
}

// Columns returns the column names in order.
func (r Record) Columns() []string {
	cols := make([]string, len(r))
	for i, f := range r {
		cols[i] = f.Column
	}
	return cols
}

// Values returns the values in column order.
func (r Record) Values() []any {
	vals := make([]any, len(r))
	for i, f := range r {
		vals[i] = f.Value
	}
	return vals
}

// MarshalJSON encodes the record as a JSON object preserving column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Column)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the record in document order.
// JSON null values are kept as absent fields.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return &json.UnmarshalTypeError{Value: "non-object", Type: recordType}
	}

	out := Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		out.Set(key, decodeValue(raw))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = out
	return nil
}

// decodeValue turns a raw JSON value into the Go value bound as a SQL
// parameter. Numbers become int64 when integral, float64 otherwise.
// Objects and arrays are stored as their JSON text.
func decodeValue(raw json.RawMessage) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err == nil {
			return b
		}
	case '{', '[':
		return string(trimmed)
	default:
		n := json.Number(trimmed)
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return string(trimmed)
}
