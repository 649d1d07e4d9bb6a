package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/soderasen-au/go-common/loggers"

	"github.com/soderasen-au/go-sheetpdf/config"
	"github.com/soderasen-au/go-sheetpdf/internal/fixture"
	"github.com/soderasen-au/go-sheetpdf/report"
	"github.com/soderasen-au/go-sheetpdf/service"
)

func newTestServer(t *testing.T, cfg config.ServerConfig, audit *report.AuditLog) http.Handler {
	t.Helper()
	svc, res := service.New(service.Options{MaxUploadSize: cfg.MaxUploadSize, MaxConcurrent: 2}, loggers.CoreDebugLogger)
	if res != nil {
		t.Fatalf("service.New failed: %v", res)
	}
	svc.StartUp(context.Background())
	t.Cleanup(func() { svc.Shutdown(context.Background()) })
	return New(cfg, svc, audit, loggers.CoreDebugLogger).Handler()
}

func multipartRequest(t *testing.T, route, fileName string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "-" {
		fw, err := mw.CreateFormFile(FORM_FIELD_FILE, fileName)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, route, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rr.Body.String(), err)
	}
	return resp
}

func TestUploadNameScore(t *testing.T) {
	h := newTestServer(t, config.ServerConfig{MaxUploadSize: 1 << 20}, nil)
	data, err := fixture.NameScore()
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, multipartRequest(t, ROUTE_EXCEL_UPLOAD, "scores.xlsx", data))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get(HEADER_REQUEST_ID) == "" {
		t.Error("no request id header")
	}

	var resp struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		TotalRows int    `json:"totalRows"`
		Data      []struct {
			RowNumber int                    `json:"rowNumber"`
			Columns   map[string]interface{} `json:"columns"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Message != service.MSG_PARSED || resp.TotalRows != 2 || len(resp.Data) != 2 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Data[0].RowNumber != 1 || resp.Data[0].Columns["Name"] != "Ann" || resp.Data[0].Columns["Score"] != float64(10) {
		t.Errorf("row 1 = %+v", resp.Data[0])
	}
	if resp.Data[1].RowNumber != 2 || resp.Data[1].Columns["Score"] != 7.5 {
		t.Errorf("row 2 = %+v", resp.Data[1])
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"columns":{"Name":"Ann","Score":10}`)) {
		t.Errorf("columns not in header order: %s", rr.Body.String())
	}
}

func TestUploadRejections(t *testing.T) {
	h := newTestServer(t, config.ServerConfig{MaxUploadSize: 64 << 10}, nil)
	data, _ := fixture.NameScore()

	tests := []struct {
		name     string
		route    string
		fileName string
		data     []byte
		status   int
		msg      string
	}{
		{"ZeroBytes", ROUTE_EXCEL_UPLOAD, "empty.xlsx", nil, http.StatusBadRequest, service.MSG_FILE_EMPTY},
		{"ZeroBytesCsv", ROUTE_PDF_GENERATE, "empty.csv", nil, http.StatusBadRequest, service.MSG_FILE_EMPTY},
		{"Csv", ROUTE_EXCEL_UPLOAD, "scores.csv", data, http.StatusBadRequest, service.MSG_INVALID_FORMAT},
		{"CsvPdf", ROUTE_PDF_GENERATE, "scores.csv", data, http.StatusBadRequest, service.MSG_INVALID_FORMAT},
		{"NoFile", ROUTE_EXCEL_UPLOAD, "-", nil, http.StatusBadRequest, service.MSG_FILE_EMPTY},
		{"NotAWorkbook", ROUTE_EXCEL_UPLOAD, "text.xlsx", []byte("just text"), http.StatusBadRequest, "Unsupported file format"},
		{"BrokenZip", ROUTE_EXCEL_UPLOAD, "broken.xlsx", []byte("PK\x03\x04broken"), http.StatusInternalServerError, "Error parsing Excel file"},
		{"TooLarge", ROUTE_EXCEL_UPLOAD, "big.xlsx", make([]byte, 2<<20), http.StatusBadRequest, service.MSG_FILE_TOO_LARGE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, multipartRequest(t, tt.route, tt.fileName, tt.data))
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d, body %s", rr.Code, tt.status, rr.Body.String())
			}
			resp := decodeError(t, rr)
			if resp.Success || resp.Message != tt.msg {
				t.Errorf("response = %+v, want message %q", resp, tt.msg)
			}
			if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
				t.Errorf("timestamp %q: %v", resp.Timestamp, err)
			}
		})
	}
}

func TestGeneratePdf(t *testing.T) {
	h := newTestServer(t, config.ServerConfig{MaxUploadSize: 1 << 20}, nil)
	data, _ := fixture.NameScore()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, multipartRequest(t, ROUTE_PDF_GENERATE, "team_scores.xlsx", data))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %s", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="team_scores.pdf"` {
		t.Errorf("content disposition = %s", cd)
	}
	if cl := rr.Header().Get("Content-Length"); cl != strconv.Itoa(rr.Body.Len()) {
		t.Errorf("content length = %s, body %d", cl, rr.Body.Len())
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")) {
		t.Error("body is not a pdf")
	}
}

func TestGeneratePdfHeaderOnly(t *testing.T) {
	h := newTestServer(t, config.ServerConfig{}, nil)
	data, _ := fixture.Workbook(map[string]interface{}{"A1": "Name", "B1": "Score"})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, multipartRequest(t, ROUTE_PDF_GENERATE, "header.xlsx", data))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if resp := decodeError(t, rr); resp.Message != "No data provided for PDF generation" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestRoutes(t *testing.T) {
	h := newTestServer(t, config.ServerConfig{}, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, ROUTE_HEALTHZ, nil))
	if rr.Code != http.StatusOK || !bytes.Contains(rr.Body.Bytes(), []byte(`"status":"ok"`)) {
		t.Errorf("healthz = %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, ROUTE_EXCEL_UPLOAD, nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET upload = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/unknown", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown route = %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, ROUTE_HEALTHZ, nil)
	req.Header.Set(HEADER_REQUEST_ID, "given-id")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if id := rr.Header().Get(HEADER_REQUEST_ID); id != "given-id" {
		t.Errorf("request id = %s", id)
	}
}

func TestBearerAuth(t *testing.T) {
	secret := "s3cret"
	h := newTestServer(t, config.ServerConfig{JwtSecret: secret, JwtIssuer: "sheetpdf"}, nil)
	data, _ := fixture.NameScore()

	good, res := NewClaims("sheetpdf", "alice", "Alice", time.Hour).Sign([]byte(secret))
	if res != nil {
		t.Fatalf("Sign failed: %v", res)
	}
	wrongKey, _ := NewClaims("sheetpdf", "alice", "Alice", time.Hour).Sign([]byte("other"))
	wrongIssuer, _ := NewClaims("someone", "alice", "Alice", time.Hour).Sign([]byte(secret))
	expired, _ := NewClaims("sheetpdf", "alice", "Alice", -time.Hour).Sign([]byte(secret))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"Valid", "Bearer " + good, http.StatusOK},
		{"LowerCaseScheme", "bearer " + good, http.StatusOK},
		{"Missing", "", http.StatusUnauthorized},
		{"WrongKey", "Bearer " + wrongKey, http.StatusUnauthorized},
		{"WrongIssuer", "Bearer " + wrongIssuer, http.StatusUnauthorized},
		{"Expired", "Bearer " + expired, http.StatusUnauthorized},
		{"Basic", "Basic YTpi", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartRequest(t, ROUTE_EXCEL_UPLOAD, "scores.xlsx", data)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Errorf("status = %d, want %d, body %s", rr.Code, tt.status, rr.Body.String())
			}
			if tt.status == http.StatusUnauthorized && decodeError(t, rr).Message != MSG_UNAUTHORIZED {
				t.Errorf("body = %s", rr.Body.String())
			}
		})
	}

	// health stays open
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, ROUTE_HEALTHZ, nil))
	if rr.Code != http.StatusOK {
		t.Errorf("healthz = %d", rr.Code)
	}
}

func TestClaimsRoundTrip(t *testing.T) {
	claims := NewClaims("iss", "bob", "Bob", time.Minute)
	header, res := claims.GetHeader([]byte("k"))
	if res != nil {
		t.Fatalf("GetHeader failed: %v", res)
	}
	token := header["Authorization"][len("Bearer "):]
	parsed, res := ParseToken(token, []byte("k"), "iss")
	if res != nil {
		t.Fatalf("ParseToken failed: %v", res)
	}
	if parsed.Subject != "bob" || parsed.Name != "Bob" || parsed.ID != claims.ID {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestAuditTrail(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "audit.csv")
	audit, res := report.NewAuditLog(fn)
	if res != nil {
		t.Fatalf("NewAuditLog failed: %v", res)
	}
	h := newTestServer(t, config.ServerConfig{}, audit)
	data, _ := fixture.NameScore()

	h.ServeHTTP(httptest.NewRecorder(), multipartRequest(t, ROUTE_EXCEL_UPLOAD, "scores.xlsx", data))
	h.ServeHTTP(httptest.NewRecorder(), multipartRequest(t, ROUTE_PDF_GENERATE, "scores.csv", data))
	audit.Close()

	f, err := os.Open(fn)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, res := report.ReadAuditRecords(f)
	if res != nil {
		t.Fatalf("ReadAuditRecords failed: %v", res)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records", len(records))
	}
	if r := records[0]; r.Cmd != report.AUDIT_CMD_PARSE || r.FileName != "scores.xlsx" || r.TotalRows != 2 || r.Result != report.AUDIT_RESULT_OK || r.RequestID == "" {
		t.Errorf("record 0 = %+v", r)
	}
	if r := records[1]; r.Cmd != report.AUDIT_CMD_GENERATE || r.Result != report.AUDIT_RESULT_ERROR || r.Message != service.MSG_INVALID_FORMAT {
		t.Errorf("record 1 = %+v", r)
	}
}

func TestStatusOf(t *testing.T) {
	if status, msg := StatusOf(context.Canceled); status != http.StatusInternalServerError || msg != service.MSG_UNEXPECTED {
		t.Errorf("StatusOf(other) = %d %q", status, msg)
	}
}

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name   string
		status int
		v      interface{}
		want   int
	}{
		{"Encodable", http.StatusOK, map[string]string{"status": "ok"}, http.StatusOK},
		{"NaN", http.StatusOK, math.NaN(), http.StatusInternalServerError},
		{"Channel", http.StatusCreated, make(chan int), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			if got := writeJSON(rr, tt.status, tt.v, loggers.CoreDebugLogger); got != tt.want {
				t.Errorf("writeJSON() = %d, want %d", got, tt.want)
			}
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
			if !json.Valid(rr.Body.Bytes()) {
				t.Errorf("body is not JSON: %q", rr.Body.String())
			}
			if tt.want == http.StatusInternalServerError {
				if resp := decodeError(t, rr); resp.Success || resp.Message != service.MSG_UNEXPECTED {
					t.Errorf("error body = %+v", resp)
				}
			}
		})
	}
}

func TestUploadNonFiniteNumber(t *testing.T) {
	h := newTestServer(t, config.ServerConfig{MaxUploadSize: 1 << 20}, nil)
	data, err := fixture.Workbook(map[string]interface{}{
		"A1": "Name", "B1": "Score",
		"A2": "Ann", "B2": math.NaN(),
	})
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, multipartRequest(t, ROUTE_EXCEL_UPLOAD, "scores.xlsx", data))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"columns":{"Name":"Ann","Score":"NaN"}`)) {
		t.Errorf("body = %s", rr.Body.String())
	}
}
