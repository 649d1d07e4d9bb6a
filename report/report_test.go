package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soderasen-au/go-common/loggers"
	"github.com/soderasen-au/go-common/util"
	"github.com/xuri/excelize/v2"

	"github.com/soderasen-au/go-sheetpdf/sheet"
)

func mixedTable() *sheet.Table {
	headers := []string{"Name", "Score", "Ratio", "Passed", "When", "Note"}
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	return &sheet.Table{
		SheetName: "Results",
		Headers:   headers,
		Rows: []sheet.RowRecord{
			sheet.NewRowRecord(1, headers, sheet.Text("Ann"), sheet.WholeNumber(10), sheet.Decimal(0.25), sheet.Boolean(true), sheet.Date(day), sheet.Text("a,b")),
			sheet.NewRowRecord(2, headers, sheet.Text("Bo")),
		},
	}
}

func printReport(t *testing.T, format ReportFormat) (*ReportPrinter, *ReportResult) {
	t.Helper()
	p, res := NewReportPrinter(format)
	if res != nil {
		t.Fatalf("NewReportPrinter(%s) failed: %v", format, res)
	}
	r := Report{
		ID:           util.Ptr("r1"),
		Name:         util.Ptr("results/2024"),
		Title:        "Results",
		OutputFolder: util.Ptr(t.TempDir()),
		Logger:       loggers.CoreDebugLogger,
	}
	if res := p.Print(r, mixedTable()); res != nil {
		t.Fatalf("Print(%s) failed: %v", format, res)
	}
	rr, res := p.GetReportResult("r1")
	if res != nil {
		t.Fatalf("GetReportResult failed: %v", res)
	}
	return p, rr
}

func TestReportFormat(t *testing.T) {
	var f ReportFormat = "docx"
	if f.IsValid() {
		t.Error("docx is valid")
	}
	f.MaybeDefault()
	if f != REPORT_FORMAT_PDF {
		t.Errorf("default format = %s", f)
	}
	if REPORT_FORMAT_TSV.IsCsv() != true || REPORT_FORMAT_CSV.IsTsv() {
		t.Error("csv/tsv classification")
	}
	if ct := REPORT_FORMAT_PDF.ContentType(); ct != "application/pdf" {
		t.Errorf("pdf content type = %s", ct)
	}
	if _, res := NewReportPrinter("docx"); res == nil {
		t.Error("NewReportPrinter(docx) succeeded")
	}
}

func TestPrintCsv(t *testing.T) {
	_, rr := printReport(t, REPORT_FORMAT_CSV)
	if filepath.Base(*rr.ReportFile) != "results_2024.csv" {
		t.Errorf("report file = %s", *rr.ReportFile)
	}
	data, err := os.ReadFile(*rr.ReportFile)
	if err != nil {
		t.Fatal(err)
	}
	lines, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := [][]string{
		{"Name", "Score", "Ratio", "Passed", "When", "Note"},
		{"Ann", "10", "0.25", "true", "2024-03-05", "a,b"},
		{"Bo", "", "", "", "", ""},
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if strings.Join(lines[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("line %d = %v, want %v", i, lines[i], want[i])
		}
	}
	if rr.PrintedRows != 2 || rr.Bytes != int64(len(data)) {
		t.Errorf("result rows=%d bytes=%d", rr.PrintedRows, rr.Bytes)
	}
}

func TestPrintTsv(t *testing.T) {
	_, rr := printReport(t, REPORT_FORMAT_TSV)
	data, err := os.ReadFile(*rr.ReportFile)
	if err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(string(data), "\n", 2)[0]
	if first != "Name\tScore\tRatio\tPassed\tWhen\tNote" {
		t.Errorf("header line = %q", first)
	}
}

func TestPrintJson(t *testing.T) {
	_, rr := printReport(t, REPORT_FORMAT_JSON)
	data, err := os.ReadFile(*rr.ReportFile)
	if err != nil {
		t.Fatal(err)
	}
	var payload struct {
		Sheet     string                   `json:"sheet"`
		TotalRows int                      `json:"totalRows"`
		Data      []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Sheet != "Results" || payload.TotalRows != 2 || len(payload.Data) != 2 {
		t.Fatalf("payload = %+v", payload)
	}
	cols := payload.Data[0]["columns"].(map[string]interface{})
	if cols["Score"] != float64(10) || cols["When"] != "2024-03-05" || cols["Passed"] != true {
		t.Errorf("columns = %v", cols)
	}
	if v, ok := payload.Data[1]["columns"].(map[string]interface{})["Score"]; !ok || v != nil {
		t.Errorf("missing score = %v, %v", v, ok)
	}
}

func TestPrintExcel(t *testing.T) {
	_, rr := printReport(t, REPORT_FORMAT_XLSX)
	f, err := excelize.OpenFile(*rr.ReportFile)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	if name := f.GetSheetName(0); name != "Results" {
		t.Errorf("sheet name = %s", name)
	}
	cases := map[string]string{"A1": "Name", "F1": "Note", "A2": "Ann", "B2": "10", "C2": "0.25", "D2": "TRUE", "E2": "2024-03-05", "A3": "Bo", "B3": ""}
	for cell, want := range cases {
		got, err := f.GetCellValue("Results", cell)
		if err != nil {
			t.Errorf("GetCellValue(%s): %v", cell, err)
			continue
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
	if typ, _ := f.GetCellType("Results", "B2"); typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
		t.Errorf("B2 stored as text")
	}
}

func TestPrintPdf(t *testing.T) {
	_, rr := printReport(t, REPORT_FORMAT_PDF)
	data, err := os.ReadFile(*rr.ReportFile)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("not a pdf")
	}
	if rr.Pages != 1 {
		t.Errorf("pages = %d", rr.Pages)
	}
}

func TestPrintPdfEmptyTable(t *testing.T) {
	p, _ := NewReportPrinter(REPORT_FORMAT_PDF)
	r := Report{ID: util.Ptr("empty"), OutputFolder: util.Ptr(t.TempDir()), Logger: loggers.NullLogger}
	if res := p.Print(r, &sheet.Table{Headers: []string{"A"}}); res == nil {
		t.Fatal("Print succeeded on an empty table")
	}
	rr, res := p.GetReportResult("empty")
	if res != nil || rr.Result == nil {
		t.Errorf("result not recorded: %v, %v", rr, res)
	}
	if _, res := p.GetReportResult("missing"); res == nil {
		t.Error("GetReportResult(missing) succeeded")
	}
}

func TestNewReportResultLogFile(t *testing.T) {
	dir := t.TempDir()
	r := Report{ID: util.Ptr("logged"), OutputFolder: util.Ptr(dir), LogFolder: util.Ptr(dir)}
	if res := r.Validate(); res != nil {
		t.Fatalf("Validate: %v", res)
	}
	rr, res := NewReportResult(r)
	if res != nil {
		t.Fatalf("NewReportResult: %v", res)
	}
	if rr.LogFile == nil || filepath.Base(*rr.LogFile) != "log-logged.log" {
		t.Errorf("log file = %v", rr.LogFile)
	}
	if filepath.Base(*rr.ReportFile) != "logged.pdf" {
		t.Errorf("report file = %s", *rr.ReportFile)
	}
	if rr.Logger == nil {
		t.Error("no logger")
	}
}
