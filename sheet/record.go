package sheet

import (
	"bytes"
	"encoding/json"
)

// Columns is an ordered header -> value mapping.
// Values are kept per header position; lookups by name are last-write-wins
// when two headers share a name, and the JSON form keeps the first position
// of a duplicated key with the last written value.
type Columns struct {
	headers []string
	values  []Value
	index   map[string]int // name -> last position written
}

func newColumns(headers []string) *Columns {
	return &Columns{
		headers: headers,
		values:  make([]Value, len(headers)),
		index:   make(map[string]int, len(headers)),
	}
}

func (c *Columns) set(pos int, v Value) {
	c.values[pos] = v
	c.index[c.headers[pos]] = pos
}

// Len is the number of header positions, always len(headers).
func (c *Columns) Len() int {
	if c == nil {
		return 0
	}
	return len(c.values)
}

// At returns the value stored at header position i.
func (c *Columns) At(i int) Value { return c.values[i] }

// Get looks a value up by header name.
func (c *Columns) Get(name string) (Value, bool) {
	if c == nil {
		return Null(), false
	}
	pos, ok := c.index[name]
	if !ok {
		return Null(), false
	}
	return c.values[pos], true
}

func (c *Columns) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	seen := make(map[string]bool, len(c.headers))
	for _, name := range c.headers {
		if seen[name] {
			continue
		}
		seen[name] = true
		if len(seen) > 1 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		v, _ := c.Get(name)
		val, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RowRecord is one data row; RowNumber starts at 1 for the first row after the header.
type RowRecord struct {
	RowNumber int      `json:"rowNumber"`
	Columns   *Columns `json:"columns"`
}

// NewRowRecord pairs values with headers by position. Headers without a
// value hold Null; extra values are dropped.
func NewRowRecord(rowNumber int, headers []string, values ...Value) RowRecord {
	cols := newColumns(headers)
	for i := range headers {
		v := Null()
		if i < len(values) {
			v = values[i]
		}
		cols.set(i, v)
	}
	return RowRecord{RowNumber: rowNumber, Columns: cols}
}

// Table is the extracted first sheet.
type Table struct {
	SheetName string      `json:"-"`
	Headers   []string    `json:"headers"`
	Rows      []RowRecord `json:"rows"`
}
