package sheet

import (
	"math"
	"strconv"

	"github.com/soderasen-au/go-common/util"
)

// Coerce maps a raw cell to its typed value. It never fails: a formula that
// cannot be evaluated falls back to its source text.
func Coerce(c RawCell) Value {
	switch c.Kind {
	case CellAbsent, CellBlank:
		return Null()
	case CellText:
		return Text(c.Text)
	case CellNumeric:
		if c.DateFormatted {
			return Date(c.Date)
		}
		if isWhole(c.Number) {
			return WholeNumber(int64(c.Number))
		}
		return Decimal(c.Number)
	case CellBoolean:
		return Boolean(c.Bool)
	case CellFormula:
		result, res := evaluate(c)
		if res != nil {
			return Text(c.Text)
		}
		return Coerce(result)
	default:
		return Text(c.Text)
	}
}

// CoerceToDisplayString is the string form of Coerce. Numeric, non-date
// cells render the raw float without the whole/decimal split.
func CoerceToDisplayString(c RawCell) string {
	switch c.Kind {
	case CellAbsent, CellBlank:
		return ""
	case CellText:
		return c.Text
	case CellNumeric:
		if c.DateFormatted {
			return c.Date.Format(DateLayout)
		}
		return FormatNumber(c.Number)
	case CellBoolean:
		return strconv.FormatBool(c.Bool)
	case CellFormula:
		result, res := evaluate(c)
		if res != nil {
			return c.Text
		}
		return CoerceToDisplayString(result)
	default:
		return c.Text
	}
}

// evaluate runs the formula and accepts only numeric, text or boolean results.
func evaluate(c RawCell) (result RawCell, res *util.Result) {
	if c.Evaluate == nil {
		return RawCell{}, util.MsgError("Evaluate", "no evaluator for formula")
	}
	defer func() {
		if r := recover(); r != nil {
			result, res = RawCell{}, util.MsgError("Evaluate", "evaluator panic")
		}
	}()

	result, res = c.Evaluate()
	if res != nil {
		return RawCell{}, res.With("Evaluate")
	}
	switch result.Kind {
	case CellNumeric, CellText, CellBoolean:
		return result, nil
	default:
		return RawCell{}, util.MsgError("Evaluate", "formula evaluated to "+result.Kind.String())
	}
}

func isWhole(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return f == math.Floor(f) && math.Abs(f) < 1<<63
}
