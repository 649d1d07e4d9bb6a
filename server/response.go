package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/soderasen-au/go-sheetpdf/service"
	"github.com/soderasen-au/go-sheetpdf/sheet"
)

type UploadResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	TotalRows int               `json:"totalRows"`
	Data      []sheet.RowRecord `json:"data"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func NewErrorResponse(msg string) ErrorResponse {
	return ErrorResponse{Success: false, Message: msg, Timestamp: time.Now().Format(time.RFC3339)}
}

// StatusOf maps an error to the HTTP status and the message shown to the
// client. Validation and format failures are the client's; decoding and
// empty-dataset failures keep their message; anything else is opaque.
func StatusOf(err error) (int, string) {
	var e *sheet.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, service.MSG_UNEXPECTED
	}
	switch e.Kind {
	case sheet.KindInvalidInput, sheet.KindUnsupportedFormat:
		return http.StatusBadRequest, e.Msg
	case sheet.KindMalformedInput, sheet.KindEmptyDataset:
		return http.StatusInternalServerError, e.Msg
	default:
		return http.StatusInternalServerError, service.MSG_UNEXPECTED
	}
}

// writeJSON encodes v before committing status, so a value that cannot be
// encoded is answered with the generic 500 instead of a truncated body.
// It returns the status actually written.
func writeJSON(w http.ResponseWriter, status int, v interface{}, logger *zerolog.Logger) int {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error().Err(err).Int("status", status).Msg("encode response")
		status = http.StatusInternalServerError
		body, _ = json.Marshal(NewErrorResponse(service.MSG_UNEXPECTED))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logger.Warn().Err(err).Msg("write response")
	}
	return status
}

func writeError(w http.ResponseWriter, err error, logger *zerolog.Logger) (int, string) {
	status, msg := StatusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Int("status", status).Msg(msg)
	} else {
		logger.Info().Int("status", status).Msg(msg)
	}
	writeJSON(w, status, NewErrorResponse(msg), logger)
	return status, msg
}
