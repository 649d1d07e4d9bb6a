package sheet

import (
	"time"

	"github.com/soderasen-au/go-common/util"
)

// CellKind is the raw type tag a spreadsheet cell reports.
type CellKind int

const (
	CellAbsent CellKind = iota
	CellBlank
	CellText
	CellNumeric
	CellBoolean
	CellFormula
	CellOther
)

func (k CellKind) String() string {
	switch k {
	case CellAbsent:
		return "absent"
	case CellBlank:
		return "blank"
	case CellText:
		return "text"
	case CellNumeric:
		return "numeric"
	case CellBoolean:
		return "boolean"
	case CellFormula:
		return "formula"
	default:
		return "other"
	}
}

// EvaluateFunc computes a formula cell's result as a non-formula cell.
type EvaluateFunc func() (RawCell, *util.Result)

// RawCell is one cell as read from a workbook, before coercion.
//
//   - CellText: Text holds the content.
//   - CellNumeric: Number holds the value; DateFormatted cells also carry Date.
//   - CellBoolean: Bool holds the value.
//   - CellFormula: Text holds the formula source, Evaluate computes the result.
//   - CellOther: Text holds the cell's default textual form.
type RawCell struct {
	Kind          CellKind
	Text          string
	Number        float64
	DateFormatted bool
	Date          time.Time
	Bool          bool
	Evaluate      EvaluateFunc
}

func BlankCell() RawCell { return RawCell{Kind: CellBlank} }

func TextCell(s string) RawCell { return RawCell{Kind: CellText, Text: s} }

func NumberCell(n float64) RawCell { return RawCell{Kind: CellNumeric, Number: n} }

func DateCell(serial float64, t time.Time) RawCell {
	return RawCell{Kind: CellNumeric, Number: serial, DateFormatted: true, Date: t}
}

func BoolCell(b bool) RawCell { return RawCell{Kind: CellBoolean, Bool: b} }

func FormulaCell(formula string, eval EvaluateFunc) RawCell {
	return RawCell{Kind: CellFormula, Text: formula, Evaluate: eval}
}
