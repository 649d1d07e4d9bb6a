package sheet

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/util"
	"github.com/yamitzky/xlrd-go/xlrd"
)

// xlsSheet reads the first worksheet of a BIFF workbook. BIFF keeps only the
// cached result of a formula, so formula cells surface as that result; error
// results become formula cells that fail to evaluate and fall back to the
// error literal.
type xlsSheet struct {
	bk   *xlrd.Book
	ws   *xlrd.Sheet
	rows int
}

func openXLS(data []byte, logger *zerolog.Logger) (s *xlsSheet, res *util.Result) {
	defer func() {
		if r := recover(); r != nil {
			s, res = nil, util.MsgError("xls", fmt.Sprintf("decoder panic: %v", r))
		}
	}()

	bk, err := xlrd.OpenWorkbook("", &xlrd.OpenWorkbookOptions{FileContents: data, Logfile: io.Discard})
	if err != nil {
		return nil, util.Error("OpenWorkbook", err)
	}
	ws, err := bk.SheetByIndex(0)
	if err != nil || ws == nil {
		bk.ReleaseResources()
		return nil, util.MsgError("SheetByIndex", "workbook has no worksheet")
	}

	s = &xlsSheet{bk: bk, ws: ws}
	// DIMENSION may claim more rows than hold cells
	s.rows = ws.NRows
	for s.rows > 0 && ws.RowLen(s.rows-1) == 0 {
		s.rows--
	}
	logger.Debug().Msgf("xls sheet [%s]: %d rows, biff %d, datemode %d", ws.Name, s.rows, bk.BiffVersion, bk.Datemode)
	return s, nil
}

func (s *xlsSheet) Name() string {
	if s.ws == nil {
		return ""
	}
	return s.ws.Name
}

func (s *xlsSheet) RowCount() int { return s.rows }

func (s *xlsSheet) ColumnCount(row int) int {
	if s.ws == nil || row < 0 || row >= s.rows {
		return 0
	}
	return s.ws.RowLen(row)
}

func (s *xlsSheet) Close() error {
	if s.bk != nil {
		s.bk.ReleaseResources()
	}
	s.bk, s.ws, s.rows = nil, nil, 0
	return nil
}

func (s *xlsSheet) Cell(row, col int) RawCell {
	if s.ws == nil || row < 0 || row >= s.rows || col < 0 || col >= s.ws.RowLen(row) {
		return RawCell{Kind: CellAbsent}
	}

	value := s.ws.RawCellValue(row, col)
	switch s.ws.RawCellType(row, col) {
	case xlrd.XL_CELL_EMPTY:
		return RawCell{Kind: CellAbsent}
	case xlrd.XL_CELL_BLANK:
		return BlankCell()
	case xlrd.XL_CELL_TEXT:
		text, _ := value.(string)
		if text == "" {
			return BlankCell()
		}
		return TextCell(text)
	case xlrd.XL_CELL_NUMBER, xlrd.XL_CELL_DATE:
		n, ok := value.(float64)
		if !ok {
			return RawCell{Kind: CellOther, Text: fmt.Sprint(value)}
		}
		return s.numberCell(row, col, n)
	case xlrd.XL_CELL_BOOLEAN:
		b, _ := value.(int)
		return BoolCell(b != 0)
	case xlrd.XL_CELL_ERROR:
		code, _ := value.(int)
		literal, ok := xlrd.ErrorTextFromCode[byte(code)]
		if !ok {
			literal = fmt.Sprintf("#ERR%d", code)
		}
		return FormulaCell(literal, func() (RawCell, *util.Result) {
			return RawCell{}, util.MsgError("Evaluate", "cached result "+literal)
		})
	default:
		return RawCell{Kind: CellOther, Text: fmt.Sprint(value)}
	}
}

func (s *xlsSheet) numberCell(row, col int, n float64) RawCell {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return RawCell{Kind: CellOther, Text: strconv.FormatFloat(n, 'g', -1, 64)}
	}
	if s.isDateFormatted(row, col) {
		return DateCell(n, ParseExcelDateTime(n, s.bk.Datemode == 1))
	}
	return NumberCell(n)
}

func (s *xlsSheet) isDateFormatted(row, col int) bool {
	xfx := s.ws.RawCellXFIndex(row, col)
	if xfx < 0 || xfx >= len(s.bk.XFList) || s.bk.XFList[xfx] == nil {
		return false
	}
	key := s.bk.XFList[xfx].FormatKey
	custom := ""
	// keys below 164 are built in and decided by id
	if f, ok := s.bk.FormatMap[key]; ok && f != nil && key >= 164 {
		custom = f.FormatString
	}
	return IsDateFormat(key, custom)
}
