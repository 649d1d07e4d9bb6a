package report

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/soderasen-au/go-sheetpdf/sheet"
)

const epsilon = 1e-9

func TestPlanColumnsNameScore(t *testing.T) {
	headers, rows := nameScoreRows()
	cfg := DefaultLayoutConfig()
	layout := PlanColumns(headers, rows, fixedMeasure, cfg.PlanParams(cfg.TableWidth()))

	if len(layout.Widths) != 2 {
		t.Fatalf("widths = %v", layout.Widths)
	}
	for i, w := range layout.Widths {
		if w != DEFAULT_MIN_COLUMN_WIDTH {
			t.Errorf("width[%d] = %v, want minimum %v", i, w, DEFAULT_MIN_COLUMN_WIDTH)
		}
	}
	if layout.Scale != 1 {
		t.Errorf("scale = %v, want 1", layout.Scale)
	}
	if w, ok := layout.Width("Score"); !ok || w != DEFAULT_MIN_COLUMN_WIDTH {
		t.Errorf("Width(Score) = %v, %v", w, ok)
	}
}

func TestPlanColumnsWidestContent(t *testing.T) {
	headers := []string{"A", "B"}
	long := "a very long value here" // 22 runes
	rows := []sheet.RowRecord{
		sheet.NewRowRecord(1, headers, sheet.Text("x"), sheet.Text(long)),
		sheet.NewRowRecord(2, headers, sheet.Null(), sheet.Text("short")),
	}
	p := PlanParams{TableWidth: 1000, MinColumnWidth: 60, Padding: 5, HeaderFontSize: 10, CellFontSize: 9}
	layout := PlanColumns(headers, rows, fixedMeasure, p)

	want := fixedMeasure(long, 9) + 10
	if layout.Widths[0] != 60 {
		t.Errorf("width[0] = %v, want 60", layout.Widths[0])
	}
	if layout.Widths[1] != want {
		t.Errorf("width[1] = %v, want %v", layout.Widths[1], want)
	}
}

func TestPlanColumnsHeaderWiderThanMinimum(t *testing.T) {
	headers := []string{strings.Repeat("H", 20)}
	p := PlanParams{TableWidth: 1000, MinColumnWidth: 60, Padding: 5, HeaderFontSize: 10, CellFontSize: 9}
	layout := PlanColumns(headers, numberedRows(headers, 1), fixedMeasure, p)
	if want := 20*5.0 + 10; layout.Widths[0] != want {
		t.Errorf("width = %v, want %v", layout.Widths[0], want)
	}
}

func TestPlanColumnsScalesUniformly(t *testing.T) {
	headers := make([]string, 20)
	for i := range headers {
		headers[i] = fmt.Sprintf("ColumnHeader%02d", i)
	}
	headers[3] = strings.Repeat("W", 40)
	rows := numberedRows(headers, 3)
	cfg := DefaultLayoutConfig()
	tableWidth := cfg.TableWidth()

	natural := PlanColumns(headers, rows, fixedMeasure, cfg.PlanParams(math.Inf(1)))
	layout := PlanColumns(headers, rows, fixedMeasure, cfg.PlanParams(tableWidth))

	if natural.Total() <= tableWidth {
		t.Fatalf("fixture does not overflow: %v <= %v", natural.Total(), tableWidth)
	}
	if math.Abs(layout.Total()-tableWidth) > 1e-6 {
		t.Errorf("total = %v, want %v", layout.Total(), tableWidth)
	}
	scale := tableWidth / natural.Total()
	for i := range headers {
		if math.Abs(layout.Widths[i]-natural.Widths[i]*scale) > epsilon {
			t.Errorf("width[%d] = %v, want %v", i, layout.Widths[i], natural.Widths[i]*scale)
		}
		// relative share unchanged
		if math.Abs(layout.Widths[i]/layout.Total()-natural.Widths[i]/natural.Total()) > 1e-9 {
			t.Errorf("share of column %d changed", i)
		}
	}
}

func TestPlanColumnsWidthInvariant(t *testing.T) {
	cfg := DefaultLayoutConfig()
	for cols := 1; cols <= 30; cols += 3 {
		for _, textLen := range []int{0, 5, 40, 120} {
			headers := make([]string, cols)
			values := make([]sheet.Value, cols)
			for i := range headers {
				headers[i] = fmt.Sprintf("H%d", i)
				values[i] = sheet.Text(strings.Repeat("x", textLen+i))
			}
			rows := []sheet.RowRecord{sheet.NewRowRecord(1, headers, values...)}

			tableWidth := cfg.TableWidth()
			natural := PlanColumns(headers, rows, fixedMeasure, cfg.PlanParams(math.Inf(1)))
			layout := PlanColumns(headers, rows, fixedMeasure, cfg.PlanParams(tableWidth))

			name := fmt.Sprintf("cols=%d,len=%d", cols, textLen)
			if layout.Total() > tableWidth+1e-6 {
				t.Errorf("%s: total %v exceeds %v", name, layout.Total(), tableWidth)
			}
			if natural.Total() <= tableWidth {
				for i := range layout.Widths {
					if layout.Widths[i] != natural.Widths[i] {
						t.Errorf("%s: width[%d] = %v, want unscaled %v", name, i, layout.Widths[i], natural.Widths[i])
					}
					if layout.Widths[i] < cfg.MinColumnWidth {
						t.Errorf("%s: width[%d] = %v below minimum", name, i, layout.Widths[i])
					}
				}
			}
		}
	}
}

func TestPlanColumnsNonPositiveWidth(t *testing.T) {
	headers := []string{"Name", strings.Repeat("W", 40)}
	rows := numberedRows(headers, 2)
	p := PlanParams{MinColumnWidth: 60, Padding: 5, HeaderFontSize: 10, CellFontSize: 9}
	p.TableWidth = math.Inf(1)
	natural := PlanColumns(headers, rows, fixedMeasure, p)

	for _, width := range []float64{0, -100, math.NaN()} {
		p.TableWidth = width
		layout := PlanColumns(headers, rows, fixedMeasure, p)
		if layout.Scale != 1 {
			t.Errorf("width %v: scale = %v, want 1", width, layout.Scale)
		}
		for i, w := range layout.Widths {
			if w != natural.Widths[i] || w <= 0 {
				t.Errorf("width %v: width[%d] = %v, want %v", width, i, w, natural.Widths[i])
			}
		}
	}
}

func TestPlanColumnsDuplicateHeaders(t *testing.T) {
	headers := []string{"X", "X", "Y"}
	rows := []sheet.RowRecord{sheet.NewRowRecord(1, headers, sheet.Text("a"), sheet.Text(strings.Repeat("b", 30)), sheet.Null())}
	p := PlanParams{TableWidth: 1000, MinColumnWidth: 60, Padding: 5, HeaderFontSize: 10, CellFontSize: 9}
	layout := PlanColumns(headers, rows, fixedMeasure, p)

	if len(layout.Widths) != 3 {
		t.Fatalf("widths = %v, want one per header position", layout.Widths)
	}
	// both X positions read the last written value
	if layout.Widths[0] != layout.Widths[1] {
		t.Errorf("duplicate widths differ: %v", layout.Widths)
	}
}
