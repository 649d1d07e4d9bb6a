package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/loggers"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-sheetpdf/sheet"
)

const (
	PDF_FONT_FAMILY = "Helvetica"
	PDF_UNIT        = "pt"
	PDF_CREATOR     = "go-sheetpdf"
)

// PdfMetrics measures text with gofpdf's core font metrics. Text is
// translated to cp1252 first, as it is when written.
// Not safe for concurrent use.
type PdfMetrics struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func NewPdfMetrics() *PdfMetrics {
	pdf := gofpdf.New("P", PDF_UNIT, "A4", "")
	return &PdfMetrics{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (m *PdfMetrics) StringWidth(text string, style FontStyle, size float64) float64 {
	m.pdf.SetFont(PDF_FONT_FAMILY, string(style), size)
	return m.pdf.GetStringWidth(m.tr(text))
}

func (m *PdfMetrics) Err() error {
	return m.pdf.Error()
}

type DocumentInfo struct {
	Title     string
	Creator   string
	CreatedAt time.Time
}

// WritePDF replays sealed pages onto a gofpdf document and writes it to w.
func WritePDF(pages []*Page, info DocumentInfo, w io.Writer) *util.Result {
	if len(pages) == 0 {
		return util.MsgError("WritePDF", "no pages")
	}

	pdf := gofpdf.New("P", PDF_UNIT, "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetTitle(info.Title, true)
	pdf.SetCreator(info.Creator, true)
	if !info.CreatedAt.IsZero() {
		pdf.SetCreationDate(info.CreatedAt)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range pages {
		if !page.Sealed() {
			return util.MsgError("WritePDF", fmt.Sprintf("page %d is not sealed", page.Number))
		}
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: page.Size.Width, Ht: page.Size.Height})
		for _, e := range page.elements {
			switch e := e.(type) {
			case TextRun:
				pdf.SetFont(PDF_FONT_FAMILY, string(e.Style), e.Size)
				pdf.SetTextColor(e.Color.R, e.Color.G, e.Color.B)
				pdf.Text(e.X, e.Y, tr(e.Text))
			case FilledRect:
				pdf.SetFillColor(e.Fill.R, e.Fill.G, e.Fill.B)
				pdf.Rect(e.X, e.Y, e.W, e.H, "F")
			case Line:
				pdf.SetDrawColor(e.Color.R, e.Color.G, e.Color.B)
				pdf.Line(e.X1, e.Y1, e.X2, e.Y2)
			default:
				return util.MsgError("WritePDF", fmt.Sprintf("unknown element %T", e))
			}
		}
		if err := pdf.Error(); err != nil {
			return util.Error(fmt.Sprintf("page %d", page.Number), err)
		}
	}

	if err := pdf.Output(w); err != nil {
		return util.Error("Output", err)
	}
	return nil
}

// PdfGenerator turns an extracted table into a PDF document.
type PdfGenerator struct {
	Config LayoutConfig
	Logger *zerolog.Logger
	// Now stamps the document; time.Now when nil.
	Now func() time.Time
}

func NewPdfGenerator(cfg LayoutConfig, logger *zerolog.Logger) (*PdfGenerator, *util.Result) {
	if logger == nil {
		logger = loggers.NullLogger
	}
	if res := cfg.Validate(); res != nil {
		return nil, res.With("Validate")
	}
	return &PdfGenerator{Config: cfg, Logger: logger}, nil
}

// Generate lays the table out on the configured page and returns the PDF bytes.
// An empty table fails with an empty dataset error.
func (g *PdfGenerator) Generate(title string, table *sheet.Table) ([]byte, int, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, 0, sheet.EmptyDatasetError("No data provided for PDF generation")
	}

	metrics := NewPdfMetrics()
	renderer, res := NewTableRenderer(g.Config, metrics, g.Logger)
	if res != nil {
		return nil, 0, generationError(res.With("NewTableRenderer"))
	}

	pages, err := renderer.Render(title, table.Headers, table.Rows, g.Config.Page(), g.Config.TableWidth())
	if err != nil {
		return nil, 0, err
	}
	if err := metrics.Err(); err != nil {
		return nil, 0, generationError(util.Error("FontMetrics", err))
	}

	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	var buf bytes.Buffer
	info := DocumentInfo{Title: title, Creator: PDF_CREATOR, CreatedAt: now()}
	if res := WritePDF(pages, info, &buf); res != nil {
		return nil, 0, generationError(res.With("WritePDF"))
	}

	g.Logger.Info().Msgf("pdf [%s]: %d rows, %d pages, %d bytes", title, len(table.Rows), len(pages), buf.Len())
	return buf.Bytes(), len(pages), nil
}

func generationError(res *util.Result) error {
	return &sheet.Error{Kind: sheet.KindInternal, Msg: "Error generating PDF", Err: res}
}
