package sheet

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const DateLayout = "2006-01-02"

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindText
	KindWholeNumber
	KindDecimal
	KindBoolean
	KindDate
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindWholeNumber:
		return "whole_number"
	case KindDecimal:
		return "decimal"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Value is a coerced cell value. Exactly one variant is set; the zero Value is Null.
type Value struct {
	kind    ValueKind
	text    string // Text content or formatted Date
	whole   int64
	decimal float64
	boolean bool
}

func Null() Value { return Value{} }
func Text(s string) Value { return Value{kind: KindText, text: s} }
func WholeNumber(n int64) Value { return Value{kind: KindWholeNumber, whole: n} }
func Decimal(f float64) Value { return Value{kind: KindDecimal, decimal: f} }
func Boolean(b bool) Value { return Value{kind: KindBoolean, boolean: b} }
func Date(t time.Time) Value { return Value{kind: KindDate, text: t.Format(DateLayout)} }
func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) TextValue() string { return v.text }
func (v Value) Whole() int64 { return v.whole }
func (v Value) Float() float64 { return v.decimal }
func (v Value) Bool() bool { return v.boolean }

// Time parses a Date value back to midnight UTC of its day.
func (v Value) Time() (time.Time, error) {
	if v.kind != KindDate {
		return time.Time{}, fmt.Errorf("sheet: %v value is not a date", v.kind)
	}
	return time.Parse(DateLayout, v.text)
}

// String renders the value the way it is shown in a table cell.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindText, KindDate:
		return v.text
	case KindWholeNumber:
		return strconv.FormatInt(v.whole, 10)
	case KindDecimal:
		return FormatNumber(v.decimal)
	case KindBoolean:
		return strconv.FormatBool(v.boolean)
	}
	panic(fmt.Sprintf("sheet: unhandled value kind %v", v.kind))
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindText, KindDate:
		return json.Marshal(v.text)
	case KindWholeNumber:
		return []byte(strconv.FormatInt(v.whole, 10)), nil
	case KindDecimal:
		return json.Marshal(v.decimal)
	case KindBoolean:
		return json.Marshal(v.boolean)
	}
	return nil, fmt.Errorf("sheet: unhandled value kind %v", v.kind)
}
