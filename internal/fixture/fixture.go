// Package fixture builds small workbooks for tests.
package fixture

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// Workbook writes cells (axis -> value) into the first sheet of a new xlsx
// workbook. String values starting with "=" are set as formulas.
func Workbook(cells map[string]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	for axis, v := range cells {
		if s, ok := v.(string); ok && strings.HasPrefix(s, "=") {
			if err := f.SetCellFormula("Sheet1", axis, s[1:]); err != nil {
				return nil, err
			}
			continue
		}
		if err := f.SetCellValue("Sheet1", axis, v); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NameScore is a header row Name/Score followed by Ann 10 and Bo 7.5.
func NameScore() ([]byte, error) {
	return Workbook(map[string]interface{}{
		"A1": "Name", "B1": "Score",
		"A2": "Ann", "B2": 10,
		"A3": "Bo", "B3": 7.5,
	})
}

// Numbered has a header Id/Value and n data rows.
func Numbered(n int) ([]byte, error) {
	cells := map[string]interface{}{"A1": "Id", "B1": "Value"}
	for i := 1; i <= n; i++ {
		a, _ := excelize.CoordinatesToCellName(1, i+1)
		b, _ := excelize.CoordinatesToCellName(2, i+1)
		cells[a] = i
		cells[b] = float64(i) / 4
	}
	return Workbook(cells)
}
