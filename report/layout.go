package report

import (
	"github.com/soderasen-au/go-sheetpdf/sheet"
)

// MeasureFunc returns the rendered width of text at fontSize, in points.
type MeasureFunc func(text string, fontSize float64) float64

// ColumnLayout holds one width per header position. Width looks a column up
// by name; duplicated names resolve to the last position.
type ColumnLayout struct {
	Headers []string
	Widths  []float64
	Scale   float64 // 1 when the natural widths fit
	index   map[string]int
}

func newColumnLayout(headers []string, widths []float64, scale float64) ColumnLayout {
	l := ColumnLayout{Headers: headers, Widths: widths, Scale: scale, index: make(map[string]int, len(headers))}
	for i, h := range headers {
		l.index[h] = i
	}
	return l
}

func (l ColumnLayout) Width(name string) (float64, bool) {
	i, ok := l.index[name]
	if !ok {
		return 0, false
	}
	return l.Widths[i], true
}

// Total is the table width the layout occupies.
func (l ColumnLayout) Total() float64 {
	sum := 0.0
	for _, w := range l.Widths {
		sum += w
	}
	return sum
}

// PlanParams are the sizes the planner works with.
type PlanParams struct {
	TableWidth     float64
	MinColumnWidth float64
	Padding        float64
	HeaderFontSize float64
	CellFontSize   float64
}

func (c LayoutConfig) PlanParams(tableWidth float64) PlanParams {
	return PlanParams{
		TableWidth:     tableWidth,
		MinColumnWidth: c.MinColumnWidth,
		Padding:        c.CellPadding,
		HeaderFontSize: c.HeaderFontSize,
		CellFontSize:   c.CellFontSize,
	}
}

// PlanColumns sizes every column to its widest content, header included,
// never below the minimum width. When the natural widths overflow the table
// width they are all scaled by the same factor. A table width that is not
// positive gives no bound to fit to, so the natural widths are kept.
func PlanColumns(headers []string, rows []sheet.RowRecord, measure MeasureFunc, p PlanParams) ColumnLayout {
	widths := make([]float64, len(headers))
	for i, h := range headers {
		widths[i] = max(p.MinColumnWidth, measure(h, p.HeaderFontSize)+2*p.Padding)
	}

	for _, row := range rows {
		for i, h := range headers {
			v, _ := row.Columns.Get(h)
			widths[i] = max(widths[i], measure(v.String(), p.CellFontSize)+2*p.Padding)
		}
	}

	sum := 0.0
	for _, w := range widths {
		sum += w
	}
	scale := 1.0
	if p.TableWidth > 0 && sum > p.TableWidth {
		scale = p.TableWidth / sum
		for i := range widths {
			widths[i] *= scale
		}
	}
	return newColumnLayout(headers, widths, scale)
}
