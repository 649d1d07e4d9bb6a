package report

import (
	"unicode/utf8"

	"github.com/soderasen-au/go-sheetpdf/sheet"
)

// fixedMetrics gives every rune half the font size; bold runes are 10% wider.
type fixedMetrics struct{}

func (fixedMetrics) StringWidth(text string, style FontStyle, size float64) float64 {
	w := float64(utf8.RuneCountInString(text)) * size * 0.5
	if style == FONT_BOLD {
		w *= 1.1
	}
	return w
}

func fixedMeasure(text string, size float64) float64 {
	return fixedMetrics{}.StringWidth(text, FONT_REGULAR, size)
}

func nameScoreRows() ([]string, []sheet.RowRecord) {
	headers := []string{"Name", "Score"}
	return headers, []sheet.RowRecord{
		sheet.NewRowRecord(1, headers, sheet.Text("Ann"), sheet.WholeNumber(10)),
		sheet.NewRowRecord(2, headers, sheet.Text("Bo"), sheet.Decimal(7.5)),
	}
}

func numberedRows(headers []string, n int) []sheet.RowRecord {
	rows := make([]sheet.RowRecord, n)
	for i := range rows {
		values := make([]sheet.Value, len(headers))
		for c := range values {
			values[c] = sheet.WholeNumber(int64(i*len(headers) + c))
		}
		rows[i] = sheet.NewRowRecord(i+1, headers, values...)
	}
	return rows
}
