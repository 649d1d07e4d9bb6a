package sheet

import (
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/util"
	"github.com/xuri/excelize/v2"
)

// xlsxSheet reads the first worksheet of an Office Open XML workbook.
type xlsxSheet struct {
	f        *excelize.File
	name     string
	rows     [][]string // raw values, trailing empty cells and rows trimmed
	date1904 bool
	dateFmt  map[int]bool // style id -> date formatted
	logger   *zerolog.Logger
}

func openXLSX(r io.Reader, logger *zerolog.Logger) (*xlsxSheet, *util.Result) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, util.Error("OpenReader", err)
	}

	s := &xlsxSheet{f: f, dateFmt: make(map[int]bool), logger: logger}
	s.name = f.GetSheetName(0)
	if s.name == "" {
		f.Close()
		return nil, util.MsgError("GetSheetName", "workbook has no worksheet")
	}

	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		s.date1904 = *props.Date1904
	}

	s.rows, err = f.GetRows(s.name, excelize.Options{RawCellValue: true})
	if err != nil {
		f.Close()
		return nil, util.Error("GetRows", err)
	}
	logger.Debug().Msgf("xlsx sheet [%s]: %d rows, date1904=%v", s.name, len(s.rows), s.date1904)
	return s, nil
}

func (s *xlsxSheet) Name() string { return s.name }

func (s *xlsxSheet) RowCount() int { return len(s.rows) }

func (s *xlsxSheet) ColumnCount(row int) int {
	if row < 0 || row >= len(s.rows) {
		return 0
	}
	return len(s.rows[row])
}

func (s *xlsxSheet) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

func (s *xlsxSheet) raw(row, col int) (string, bool) {
	if row < 0 || row >= len(s.rows) || col < 0 || col >= len(s.rows[row]) {
		return "", false
	}
	return s.rows[row][col], true
}

func (s *xlsxSheet) Cell(row, col int) RawCell {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return RawCell{Kind: CellAbsent}
	}
	value, present := s.raw(row, col)

	if formula, err := s.f.GetCellFormula(s.name, axis); err == nil && formula != "" {
		return FormulaCell(formula, func() (RawCell, *util.Result) {
			return s.evaluate(axis)
		})
	}

	if !present {
		return RawCell{Kind: CellAbsent}
	}
	if value == "" {
		return BlankCell()
	}

	typ, err := s.f.GetCellType(s.name, axis)
	if err != nil {
		s.logger.Debug().Err(err).Msgf("GetCellType %s", axis)
		return RawCell{Kind: CellOther, Text: value}
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return TextCell(value)
	case excelize.CellTypeBool:
		return BoolCell(value == "1" || strings.EqualFold(value, "true"))
	case excelize.CellTypeDate:
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			if t, err = time.Parse("2006-01-02T15:04:05", value); err != nil {
				return RawCell{Kind: CellOther, Text: value}
			}
		}
		return DateCell(0, t)
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		return s.numberCell(axis, value)
	default:
		// error literals such as #N/A
		return RawCell{Kind: CellOther, Text: value}
	}
}

func (s *xlsxSheet) numberCell(axis, value string) RawCell {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return TextCell(value)
	}
	// NaN and infinities have no JSON number form
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return RawCell{Kind: CellOther, Text: value}
	}
	if s.isDateFormatted(axis) {
		return DateCell(n, ParseExcelDateTime(n, s.date1904))
	}
	return NumberCell(n)
}

func (s *xlsxSheet) isDateFormatted(axis string) bool {
	styleID, err := s.f.GetCellStyle(s.name, axis)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := s.dateFmt[styleID]; ok {
		return isDate
	}

	isDate := false
	style, err := s.f.GetStyle(styleID)
	if err == nil && style != nil {
		isDate = IsDateFormat(style.NumFmt, util.MaybeNil(style.CustomNumFmt))
	}
	s.dateFmt[styleID] = isDate
	return isDate
}

var formulaErrors = map[string]bool{
	"#NULL!": true, "#DIV/0!": true, "#VALUE!": true, "#REF!": true,
	"#NAME?": true, "#NUM!": true, "#N/A": true, "#GETTING_DATA": true,
}

func (s *xlsxSheet) evaluate(axis string) (RawCell, *util.Result) {
	value, err := s.f.CalcCellValue(s.name, axis, excelize.Options{RawCellValue: true})
	if err != nil {
		return RawCell{}, util.Error("CalcCellValue", err)
	}
	if formulaErrors[value] {
		return RawCell{}, util.MsgError("CalcCellValue", value)
	}

	switch strings.ToUpper(value) {
	case "TRUE":
		return BoolCell(true), nil
	case "FALSE":
		return BoolCell(false), nil
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return s.numberCell(axis, value), nil
	}
	return TextCell(value), nil
}
