package service

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-sheetpdf/sheet"
)

const (
	DEFAULT_TITLE        = "Excel Data Report"
	DEFAULT_PDF_FILENAME = "document.pdf"
	DEFAULT_MAX_UPLOAD   = 10 << 20

	MSG_FILE_EMPTY     = "File is empty"
	MSG_INVALID_FORMAT = "Invalid file format. Only .xlsx and .xls files are supported"
	MSG_ZERO_BYTES     = "File size is 0 bytes"
	MSG_FILE_TOO_LARGE = "File size exceeds the maximum allowed size"
	MSG_PARSED         = "File parsed successfully"
	MSG_UNEXPECTED     = "An unexpected error occurred"
	MSG_FAILED_READ    = "Failed to read file"
)

var excelExt = regexp.MustCompile(`(?i)\.(xlsx|xls)$`)

// Upload is one received spreadsheet. Size is what the client declared;
// Content is read at most once.
type Upload struct {
	FileName string
	Size     int64
	Content  io.Reader
}

// HasExcelExtension reports whether name ends in .xlsx or .xls, ignoring case.
func HasExcelExtension(name string) bool {
	return excelExt.MatchString(name)
}

// Validate checks the preconditions that hold before any decoding:
// a non-empty upload with an Excel file name.
func (u Upload) Validate() error {
	if u.Content == nil || u.Size == 0 {
		return sheet.InvalidInputError(MSG_FILE_EMPTY)
	}
	if !HasExcelExtension(u.FileName) {
		return sheet.InvalidInputError(MSG_INVALID_FORMAT)
	}
	return nil
}

// ReadAll validates u and buffers its content, rejecting anything larger
// than maxSize bytes. maxSize <= 0 disables the limit.
func (u Upload) ReadAll(maxSize int64) ([]byte, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if maxSize > 0 && u.Size > maxSize {
		return nil, sheet.InvalidInputError(MSG_FILE_TOO_LARGE)
	}

	r := u.Content
	if maxSize > 0 {
		r = io.LimitReader(r, maxSize+1)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, sheet.MalformedInputError(MSG_FAILED_READ, util.Error("ReadFrom", err))
	}
	if buf.Len() == 0 {
		return nil, sheet.InvalidInputError(MSG_ZERO_BYTES)
	}
	if maxSize > 0 && int64(buf.Len()) > maxSize {
		return nil, sheet.InvalidInputError(MSG_FILE_TOO_LARGE)
	}
	return buf.Bytes(), nil
}

// DeriveTitle turns an upload name into a document title:
// "sales_q1-2024.xlsx" -> "Sales q1 2024".
func DeriveTitle(fileName string) string {
	title := excelExt.ReplaceAllString(fileName, "")
	title = strings.NewReplacer("_", " ", "-", " ").Replace(title)
	if strings.TrimSpace(title) == "" {
		return DEFAULT_TITLE
	}
	r, n := utf8.DecodeRuneInString(title)
	return string(unicode.ToUpper(r)) + title[n:]
}

// DerivePdfFilename swaps the Excel extension of an upload name for .pdf.
func DerivePdfFilename(fileName string) string {
	if fileName == "" {
		return DEFAULT_PDF_FILENAME
	}
	name := excelExt.ReplaceAllString(fileName, "")
	if name == "" {
		return DEFAULT_PDF_FILENAME
	}
	return name + ".pdf"
}
