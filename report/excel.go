package report

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/util"
	"github.com/xuri/excelize/v2"

	"github.com/soderasen-au/go-sheetpdf/sheet"
)

const (
	ROW_LIMIT_PER_SHEET int = 1048576
	DEFAULT_SHEET_NAME      = "Sheet1"
	DATE_NUM_FMT            = "yyyy-mm-dd"
)

// WriteExcel writes the table as a single typed worksheet: the header row
// bold on the header fill, dates as date-formatted serials, numbers as numbers.
func WriteExcel(table *sheet.Table, w io.Writer, fill RGBColor, logger *zerolog.Logger) *util.Result {
	if len(table.Rows)+1 > ROW_LIMIT_PER_SHEET {
		return util.MsgError("ValidateRows", "rows exceed the worksheet limit")
	}

	sheetName := table.SheetName
	if sheetName == "" {
		sheetName = DEFAULT_SHEET_NAME
	}

	f := excelize.NewFile()
	defer f.Close()
	if sheetName != DEFAULT_SHEET_NAME {
		if err := f.SetSheetName(DEFAULT_SHEET_NAME, sheetName); err != nil {
			return util.Error("SetSheetName", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill.Hex()}},
	})
	if err != nil {
		return util.Error("NewStyle(header)", err)
	}
	dateFmt := DATE_NUM_FMT
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return util.Error("NewStyle(date)", err)
	}

	for ci, h := range table.Headers {
		cellName, err := excelize.CoordinatesToCellName(ci+1, 1)
		if err != nil {
			return util.Error("CoordinatesToCellName", err)
		}
		if err := f.SetCellStr(sheetName, cellName, h); err != nil {
			return util.Error("SetCellStr", err)
		}
		if err := f.SetCellStyle(sheetName, cellName, cellName, headerStyle); err != nil {
			return util.Error("SetCellStyle", err)
		}
	}

	for ri, row := range table.Rows {
		for ci := range table.Headers {
			cellName, err := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err != nil {
				return util.Error("CoordinatesToCellName", err)
			}
			if res := printCell(f, sheetName, cellName, row.Columns.At(ci), dateStyle); res != nil {
				logger.Err(res).Msgf("print cell %s", cellName)
				return res.With(cellName)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return util.Error("Write", err)
	}
	return nil
}

func printCell(f *excelize.File, sheetName, cellName string, v sheet.Value, dateStyle int) *util.Result {
	var err error
	switch v.Kind() {
	case sheet.KindNull:
		return nil
	case sheet.KindText:
		err = f.SetCellStr(sheetName, cellName, v.TextValue())
	case sheet.KindWholeNumber:
		err = f.SetCellInt(sheetName, cellName, int(v.Whole()))
	case sheet.KindDecimal:
		err = f.SetCellFloat(sheetName, cellName, v.Float(), -1, 64)
	case sheet.KindBoolean:
		err = f.SetCellBool(sheetName, cellName, v.Bool())
	case sheet.KindDate:
		t, perr := v.Time()
		if perr != nil {
			return util.Error("ParseDate", perr)
		}
		if err = f.SetCellValue(sheetName, cellName, t); err == nil {
			err = f.SetCellStyle(sheetName, cellName, cellName, dateStyle)
		}
	default:
		return util.MsgError("printCell", "unhandled value kind "+v.Kind().String())
	}
	if err != nil {
		return util.Error("SetCell", err)
	}
	return nil
}

func writeExcelReport(r Report, table *sheet.Table, w io.Writer, logger *zerolog.Logger) (int, *util.Result) {
	if res := WriteExcel(table, w, r.Layout.HeaderFillColor(), logger); res != nil {
		return 0, res.With("WriteExcel")
	}
	return 0, nil
}
