package sheet

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format is a recognized workbook container.
type Format int

const (
	FormatUnknown Format = iota
	FormatXLSX
	FormatXLS
)

func (f Format) String() string {
	switch f {
	case FormatXLSX:
		return "xlsx"
	case FormatXLS:
		return "xls"
	default:
		return "unknown"
	}
}

var (
	zipMagic  = []byte{0x50, 0x4B, 0x03, 0x04}
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFromMagic identifies the container from its leading bytes.
// Office Open XML workbooks are ZIP archives, BIFF8 workbooks are OLE2 compound files.
func DetectFromMagic(data []byte) Format {
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	if bytes.HasPrefix(data, ole2Magic) {
		return FormatXLS
	}
	return FormatUnknown
}

// DetectFromName maps a file name extension, case-insensitive.
func DetectFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return FormatXLSX
	case ".xls":
		return FormatXLS
	default:
		return FormatUnknown
	}
}
