package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/loggers"

	"github.com/soderasen-au/go-sheetpdf/config"
	"github.com/soderasen-au/go-sheetpdf/report"
	"github.com/soderasen-au/go-sheetpdf/service"
	"github.com/soderasen-au/go-sheetpdf/sheet"
)

const (
	ROUTE_EXCEL_UPLOAD = "/api/v1/excel/upload"
	ROUTE_PDF_GENERATE = "/api/v1/pdf/generate-from-excel"
	ROUTE_HEALTHZ      = "/healthz"

	FORM_FIELD_FILE   = "file"
	HEADER_REQUEST_ID = "X-Request-ID"

	// multipart headers and boundaries on top of the file itself
	MULTIPART_OVERHEAD = 1 << 20
	MULTIPART_MEMORY   = 8 << 20
	SHUTDOWN_TIMEOUT   = 10 * time.Second
)

type ctxRequestIDKey struct{}

// Server exposes the conversion service over HTTP.
type Server struct {
	Config  config.ServerConfig
	Service *service.Service
	// Audit is optional.
	Audit  *report.AuditLog
	Logger *zerolog.Logger
}

func New(cfg config.ServerConfig, svc *service.Service, audit *report.AuditLog, logger *zerolog.Logger) *Server {
	if logger == nil {
		logger = loggers.NullLogger
	}
	return &Server{Config: cfg, Service: svc, Audit: audit, Logger: logger}
}

func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST "+ROUTE_EXCEL_UPLOAD, s.handleUpload)
	api.HandleFunc("POST "+ROUTE_PDF_GENERATE, s.handleGeneratePdf)

	var protected http.Handler = api
	if s.Config.JwtSecret != "" {
		protected = s.requireBearer(api)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+ROUTE_HEALTHZ, s.handleHealthz)
	mux.Handle("/api/", protected)
	return s.withRequestLogger(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	idle := make(chan struct{})
	go func() {
		defer close(idle)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.Logger.Warn().Err(err).Msg("http shutdown")
		}
	}()

	s.Logger.Info().Msgf("listening on %s", s.Config.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-idle
	s.Logger.Info().Msg("http server stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestLogger gives every request an id and a child logger carrying it.
func (s *Server) withRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HEADER_REQUEST_ID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HEADER_REQUEST_ID, id)

		logger := s.Logger.With().Str("request_id", id).Logger()
		ctx := context.WithValue(r.Context(), ctxRequestIDKey{}, id)
		ctx = service.WithLogger(ctx, &logger)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))
		logger.Info().Int("status", rec.status).Dur("elapsed", time.Since(start)).Msgf("%s %s", r.Method, r.URL.Path)
	})
}

func (s *Server) requestLogger(r *http.Request) *zerolog.Logger {
	return service.LoggerFrom(r.Context(), s.Logger)
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(ctxRequestIDKey{}).(string)
	return id
}

func (s *Server) unauthorized(w http.ResponseWriter, logger *zerolog.Logger) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeJSON(w, http.StatusUnauthorized, NewErrorResponse(MSG_UNAUTHORIZED), logger)
}

// readUpload pulls the multipart file field out of r. The returned cleanup
// releases the file and any temporary parts.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (service.Upload, func(), error) {
	if s.Config.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.Config.MaxUploadSize+MULTIPART_OVERHEAD)
	}
	if err := r.ParseMultipartForm(MULTIPART_MEMORY); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.Upload{}, nil, sheet.InvalidInputError(service.MSG_FILE_TOO_LARGE)
		}
		return service.Upload{}, nil, sheet.InvalidInputError(service.MSG_FILE_EMPTY)
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}

	file, header, err := r.FormFile(FORM_FIELD_FILE)
	if err != nil {
		cleanup()
		return service.Upload{}, nil, sheet.InvalidInputError(service.MSG_FILE_EMPTY)
	}
	return service.Upload{FileName: header.Filename, Size: header.Size, Content: file}, func() {
		file.Close()
		cleanup()
	}, nil
}

func (s *Server) record(rec *report.AuditRecord) {
	if s.Audit == nil {
		return
	}
	if res := s.Audit.Record(*rec); res != nil {
		s.Logger.Warn().Err(res).Msg("audit record")
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLogger(r)
	rec := report.NewAuditRecord(report.AUDIT_CMD_PARSE, requestID(r), r.RemoteAddr, "", 0)
	defer s.record(&rec)

	u, cleanup, err := s.readUpload(w, r)
	if err != nil {
		_, msg := writeError(w, err, logger)
		rec.Fail(msg)
		return
	}
	defer cleanup()
	rec.FileName, rec.FileSize = u.FileName, u.Size

	result, err := s.Service.Parse(r.Context(), u)
	if err != nil {
		_, msg := writeError(w, err, logger)
		rec.Fail(msg)
		return
	}
	rec.TotalRows = result.TotalRows()
	status := writeJSON(w, http.StatusOK, UploadResponse{
		Success:   true,
		Message:   result.Message,
		TotalRows: result.TotalRows(),
		Data:      result.Table.Rows,
	}, logger)
	if status != http.StatusOK {
		rec.Fail(service.MSG_UNEXPECTED)
	}
}

func contentDisposition(fileName string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(fileName)
	return fmt.Sprintf(`attachment; filename="%s"`, escaped)
}

func (s *Server) handleGeneratePdf(w http.ResponseWriter, r *http.Request) {
	logger := s.requestLogger(r)
	rec := report.NewAuditRecord(report.AUDIT_CMD_GENERATE, requestID(r), r.RemoteAddr, "", 0)
	defer s.record(&rec)

	u, cleanup, err := s.readUpload(w, r)
	if err != nil {
		_, msg := writeError(w, err, logger)
		rec.Fail(msg)
		return
	}
	defer cleanup()
	rec.FileName, rec.FileSize = u.FileName, u.Size

	result, err := s.Service.GeneratePdf(r.Context(), u)
	if err != nil {
		_, msg := writeError(w, err, logger)
		rec.Fail(msg)
		return
	}
	rec.TotalRows, rec.OutputBytes = result.TotalRows, len(result.Data)

	w.Header().Set("Content-Type", report.REPORT_FORMAT_PDF.ContentType())
	w.Header().Set("Content-Disposition", contentDisposition(result.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		logger.Warn().Err(err).Msg("write pdf")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.requestLogger(r))
}
