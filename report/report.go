package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/loggers"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-sheetpdf/sheet"
)

type ReportFormat string

const (
	REPORT_FORMAT_PDF  ReportFormat = "pdf"
	REPORT_FORMAT_XLSX ReportFormat = "xlsx"
	REPORT_FORMAT_CSV  ReportFormat = "csv"
	REPORT_FORMAT_TSV  ReportFormat = "tsv"
	REPORT_FORMAT_JSON ReportFormat = "json"
)

func (f ReportFormat) IsExcel() bool {
	return f == REPORT_FORMAT_XLSX
}

func (f ReportFormat) IsCsv() bool {
	return f == REPORT_FORMAT_CSV || f == REPORT_FORMAT_TSV
}

func (f ReportFormat) IsTsv() bool {
	return f == REPORT_FORMAT_TSV
}

func (f ReportFormat) IsPdf() bool {
	return f == REPORT_FORMAT_PDF
}

func (f ReportFormat) IsJson() bool {
	return f == REPORT_FORMAT_JSON
}

func (f ReportFormat) IsValid() bool {
	return f.IsExcel() || f.IsCsv() || f.IsPdf() || f.IsJson()
}

func (f *ReportFormat) MaybeDefault() {
	if !f.IsValid() {
		*f = REPORT_FORMAT_PDF
	}
}

func (f ReportFormat) ContentType() string {
	switch f {
	case REPORT_FORMAT_PDF:
		return "application/pdf"
	case REPORT_FORMAT_XLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case REPORT_FORMAT_CSV:
		return "text/csv"
	case REPORT_FORMAT_TSV:
		return "text/tab-separated-values"
	case REPORT_FORMAT_JSON:
		return "application/json"
	}
	return "application/octet-stream"
}

// Report describes one conversion of an extracted table to a file.
type Report struct {
	ID           *string       `json:"id,omitempty" yaml:"id,omitempty"`
	Name         *string       `json:"name,omitempty" yaml:"name,omitempty"`
	Title        string        `json:"title,omitempty" yaml:"title,omitempty"`
	OutputFormat *ReportFormat `json:"output_format,omitempty" yaml:"output_format,omitempty"`
	OutputFolder *string       `json:"output_folder,omitempty" yaml:"output_folder,omitempty"`
	Layout       LayoutConfig  `json:"layout,omitempty" yaml:"layout,omitempty"`

	// logging
	LogFolder *string         `json:"log_folder,omitempty" yaml:"log_folder,omitempty"`
	Logger    *zerolog.Logger `json:"-" yaml:"-"`
}

func (r *Report) Validate() *util.Result {
	if r.ID == nil {
		r.ID = util.Ptr(fmt.Sprintf("report-%s", time.Now().Format("20060102150405")))
	}

	if r.OutputFormat == nil {
		r.OutputFormat = new(ReportFormat)
	}
	r.OutputFormat.MaybeDefault()

	if r.OutputFolder == nil {
		r.OutputFolder = new(string)
	}
	if r.LogFolder == nil {
		r.LogFolder = new(string)
	}

	if res := r.Layout.Validate(); res != nil {
		return res.With("Layout")
	}
	return nil
}

type ReportResult struct {
	ID          string          `json:"id,omitempty" yaml:"id,omitempty"`
	Result      *util.Result    `json:"result,omitempty" yaml:"result,omitempty"`
	ReportFile  *string         `json:"report_file,omitempty" yaml:"report_file,omitempty"`
	LogFile     *string         `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	Logger      *zerolog.Logger `json:"-" yaml:"-"`
	PrintedRows int             `json:"printed_rows,omitempty" yaml:"printed_rows,omitempty"`
	Pages       int             `json:"pages,omitempty" yaml:"pages,omitempty"`
	Bytes       int64           `json:"bytes,omitempty" yaml:"bytes,omitempty"`
}

// NewReportResult resolves the output file and the report's logger.
// The report must have been validated.
func NewReportResult(r Report) (*ReportResult, *util.Result) {
	if r.ID == nil || r.OutputFormat == nil || r.OutputFolder == nil || r.LogFolder == nil {
		return nil, util.MsgError("Check", "invalid report")
	}

	rr := ReportResult{ID: *r.ID}

	var rf string
	if r.Name != nil && len(*r.Name) > 0 {
		rn := strings.ReplaceAll(*r.Name, "/", "_")
		rn = strings.ReplaceAll(rn, "\\", "_")
		rf = filepath.Join(*r.OutputFolder, fmt.Sprintf("%s.%s", rn, *r.OutputFormat))
	} else {
		rf = filepath.Join(*r.OutputFolder, fmt.Sprintf("%s.%s", *r.ID, *r.OutputFormat))
	}
	rr.ReportFile = &rf

	if r.Logger != nil {
		rr.Logger = r.Logger
	} else {
		lf := filepath.Join(*r.LogFolder, fmt.Sprintf("log-%s.%s", *r.ID, "log"))
		rr.LogFile = &lf
		logger, err := loggers.GetLogger(lf)
		if err != nil {
			return nil, util.Error("GetLogger", err)
		}
		rr.Logger = logger
	}

	return &rr, nil
}

type IReportPrinter interface {
	Print(r Report, table *sheet.Table) *util.Result
	GetReportResult(id string) (*ReportResult, *util.Result)
}

type ReportPrinterBase struct {
	ReportResults map[string]*ReportResult //report-id -> report-results
}

func (p ReportPrinterBase) GetReportResult(id string) (*ReportResult, *util.Result) {
	result, ok := p.ReportResults[id]
	if !ok {
		return nil, util.MsgError("ReportFiles", "report id doesn't exist")
	}
	return result, nil
}

// writeFunc renders the table to w and reports the number of pages written.
type writeFunc func(r Report, table *sheet.Table, w io.Writer, logger *zerolog.Logger) (int, *util.Result)

// ReportPrinter writes a table to the report's output file in one format.
type ReportPrinter struct {
	ReportPrinterBase
	Format ReportFormat
	write  writeFunc
}

func NewReportPrinter(format ReportFormat) (*ReportPrinter, *util.Result) {
	p := &ReportPrinter{Format: format}
	p.ReportResults = make(map[string]*ReportResult)
	switch {
	case format.IsPdf():
		p.write = writePdfReport
	case format.IsExcel():
		p.write = writeExcelReport
	case format.IsCsv():
		p.write = writeCsvReport
	case format.IsJson():
		p.write = writeJsonReport
	default:
		return nil, util.MsgError("NewReportPrinter", fmt.Sprintf("unsupported format `%s`", format))
	}
	return p, nil
}

func (p *ReportPrinter) Print(r Report, table *sheet.Table) *util.Result {
	if table == nil {
		return util.MsgError("Print", "nil table")
	}
	r.OutputFormat = &p.Format
	if res := r.Validate(); res != nil {
		return res.With("Validate")
	}

	rResult, res := NewReportResult(r)
	if res != nil {
		return res.With("NewReportResult")
	}
	p.ReportResults[rResult.ID] = rResult
	logger := rResult.Logger.With().Str("report", rResult.ID).Logger()

	f, err := os.Create(*rResult.ReportFile)
	if err != nil {
		rResult.Result = util.Error("CreateReportFile", err)
		logger.Err(rResult.Result).Msg("create report file")
		return rResult.Result
	}
	defer f.Close()

	pages, res := p.write(r, table, f, &logger)
	if res != nil {
		rResult.Result = res.With("Write")
		logger.Err(rResult.Result).Msg("print failed")
		return rResult.Result
	}

	if info, err := f.Stat(); err == nil {
		rResult.Bytes = info.Size()
	}
	rResult.PrintedRows = len(table.Rows)
	rResult.Pages = pages
	logger.Info().Msgf("report saved to %s (%d rows, %d bytes)", *rResult.ReportFile, rResult.PrintedRows, rResult.Bytes)
	return nil
}

func writePdfReport(r Report, table *sheet.Table, w io.Writer, logger *zerolog.Logger) (int, *util.Result) {
	g, res := NewPdfGenerator(r.Layout, logger)
	if res != nil {
		return 0, res.With("NewPdfGenerator")
	}
	data, pages, err := g.Generate(r.Title, table)
	if err != nil {
		return 0, util.Error("Generate", err)
	}
	if _, err := w.Write(data); err != nil {
		return 0, util.Error("Write", err)
	}
	return pages, nil
}
