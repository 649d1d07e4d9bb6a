package report

import (
	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/loggers"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-sheetpdf/sheet"
)

// FontMetrics measures text set in the renderer's font family.
type FontMetrics interface {
	StringWidth(text string, style FontStyle, size float64) float64
}

func measureWith(m FontMetrics, style FontStyle) MeasureFunc {
	return func(text string, fontSize float64) float64 {
		return m.StringWidth(text, style, fontSize)
	}
}

// RenderCursor is the drawing position: the page being filled and the
// distance of the next band's top edge from the page's top edge.
type RenderCursor struct {
	PageIndex int
	Y         float64
}

// TableRenderer lays a table out on fixed-size pages, repeating the header
// band at the top of every page after the first.
type TableRenderer struct {
	Config  LayoutConfig
	Metrics FontMetrics
	Logger  *zerolog.Logger

	regular MeasureFunc
	bold    MeasureFunc
}

func NewTableRenderer(cfg LayoutConfig, metrics FontMetrics, logger *zerolog.Logger) (*TableRenderer, *util.Result) {
	if metrics == nil {
		return nil, util.MsgError("NewTableRenderer", "nil font metrics")
	}
	if logger == nil {
		logger = loggers.NullLogger
	}
	if res := cfg.Validate(); res != nil {
		return nil, res.With("Validate")
	}
	return &TableRenderer{
		Config:  cfg,
		Metrics: metrics,
		Logger:  logger,
		regular: measureWith(metrics, FONT_REGULAR),
		bold:    measureWith(metrics, FONT_BOLD),
	}, nil
}

// Plan computes the column layout for a table of the given width.
func (r *TableRenderer) Plan(headers []string, rows []sheet.RowRecord, tableWidth float64) ColumnLayout {
	return PlanColumns(headers, rows, r.regular, r.Config.PlanParams(tableWidth))
}

// Render draws the title, the header band and every row, and returns the
// sealed pages. At least one row is required.
func (r *TableRenderer) Render(title string, headers []string, rows []sheet.RowRecord, pageSize PageSize, tableWidth float64) ([]*Page, error) {
	if len(rows) == 0 {
		return nil, sheet.EmptyDatasetError("No data provided for PDF generation")
	}

	layout := r.Plan(headers, rows, tableWidth)
	r.Logger.Debug().Msgf("layout: %d columns, total width %.2f, scale %.4f", len(layout.Widths), layout.Total(), layout.Scale)
	return r.RenderLayout(title, layout, rows, pageSize), nil
}

// RenderLayout runs the pagination state machine over an already planned layout.
func (r *TableRenderer) RenderLayout(title string, layout ColumnLayout, rows []sheet.RowRecord, pageSize PageSize) []*Page {
	pages := []*Page{newPage(1, pageSize)}
	cur := RenderCursor{PageIndex: 0, Y: r.Config.Margin}

	cur = r.drawTitle(pages[cur.PageIndex], title, cur)
	cur = r.drawHeaderBand(pages[cur.PageIndex], layout, cur)

	for _, row := range rows {
		if r.needsBreak(cur, pageSize) {
			pages, cur = r.pageBreak(pages, cur, pageSize)
			cur = r.drawHeaderBand(pages[cur.PageIndex], layout, cur)
		}
		cur = r.drawRow(pages[cur.PageIndex], layout, row, cur)
	}

	pages[cur.PageIndex].Seal()
	r.Logger.Info().Msgf("rendered %d rows on %d pages", len(rows), len(pages))
	return pages
}

func (r *TableRenderer) needsBreak(cur RenderCursor, size PageSize) bool {
	return size.Height-cur.Y < r.Config.RowHeight+r.Config.Margin
}

func (r *TableRenderer) pageBreak(pages []*Page, cur RenderCursor, size PageSize) ([]*Page, RenderCursor) {
	pages[cur.PageIndex].Seal()
	next := newPage(len(pages)+1, size)
	pages = append(pages, next)
	r.Logger.Debug().Msgf("page break: page %d", next.Number)
	return pages, RenderCursor{PageIndex: cur.PageIndex + 1, Y: r.Config.Margin}
}

// drawTitle centers the title with its baseline on the cursor.
func (r *TableRenderer) drawTitle(page *Page, title string, cur RenderCursor) RenderCursor {
	c := r.Config
	width := r.bold(title, c.TitleFontSize)
	page.mark(Band{Kind: BAND_TITLE, Top: cur.Y})
	page.add(TextRun{
		X:     (page.Size.Width - width) / 2,
		Y:     cur.Y,
		Text:  title,
		Style: FONT_BOLD,
		Size:  c.TitleFontSize,
		Color: Black,
	})
	cur.Y += c.TitleFontSize + c.TitleSpacing + c.TitleGap
	return cur
}

func (r *TableRenderer) drawHeaderBand(page *Page, layout ColumnLayout, cur RenderCursor) RenderCursor {
	c := r.Config
	page.mark(Band{Kind: BAND_HEADER, Top: cur.Y})
	page.add(FilledRect{X: c.Margin, Y: cur.Y, W: layout.Total(), H: c.RowHeight, Fill: c.HeaderFillColor()})
	r.drawBorders(page, layout, cur.Y)

	x := c.Margin
	for i, h := range layout.Headers {
		w := layout.Widths[i]
		text := FitText(h, w-2*c.CellPadding, c.HeaderFontSize, r.bold, c.Ellipsis)
		r.drawText(page, x+c.CellPadding, cur.Y+c.BaselineOffset, text, FONT_BOLD, c.HeaderFontSize)
		x += w
	}
	cur.Y += c.RowHeight
	return cur
}

func (r *TableRenderer) drawRow(page *Page, layout ColumnLayout, row sheet.RowRecord, cur RenderCursor) RenderCursor {
	c := r.Config
	page.mark(Band{Kind: BAND_ROW, Top: cur.Y, RowNumber: row.RowNumber})
	r.drawBorders(page, layout, cur.Y)

	x := c.Margin
	for i, h := range layout.Headers {
		w := layout.Widths[i]
		v, _ := row.Columns.Get(h)
		text := FitText(v.String(), w-2*c.CellPadding, c.CellFontSize, r.regular, c.Ellipsis)
		r.drawText(page, x+c.CellPadding, cur.Y+c.BaselineOffset, text, FONT_REGULAR, c.CellFontSize)
		x += w
	}
	cur.Y += c.RowHeight
	return cur
}

// drawBorders draws the top and bottom edges of a band and one vertical
// line before the first column and after every column.
func (r *TableRenderer) drawBorders(page *Page, layout ColumnLayout, top float64) {
	c := r.Config
	left, right, bottom := c.Margin, c.Margin+layout.Total(), top+c.RowHeight
	page.add(Line{X1: left, Y1: top, X2: right, Y2: top, Color: Black})
	page.add(Line{X1: left, Y1: bottom, X2: right, Y2: bottom, Color: Black})

	x := left
	page.add(Line{X1: x, Y1: top, X2: x, Y2: bottom, Color: Black})
	for _, w := range layout.Widths {
		x += w
		page.add(Line{X1: x, Y1: top, X2: x, Y2: bottom, Color: Black})
	}
}

func (r *TableRenderer) drawText(page *Page, x, y float64, text string, style FontStyle, size float64) {
	if text == "" {
		return
	}
	page.add(TextRun{X: x, Y: y, Text: text, Style: style, Size: size, Color: Black})
}
