package sheet

import (
	"bytes"
	"io"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/loggers"
	"github.com/soderasen-au/go-common/util"
)

// Sheet is read access to the first worksheet of a workbook.
// Rows and columns are zero based; row 0 is the header row.
type Sheet interface {
	Name() string
	// RowCount is the sheet's row extent: last populated row + 1.
	RowCount() int
	// ColumnCount is the number of physical cells in a row.
	ColumnCount(row int) int
	// Cell returns CellAbsent for coordinates outside the stored cells.
	Cell(row, col int) RawCell
	Close() error
}

// Open buffers r and decodes it according to its leading bytes.
// The caller owns the returned Sheet and must Close it.
func Open(r io.Reader, logger *zerolog.Logger) (Sheet, error) {
	if logger == nil {
		logger = loggers.NullLogger
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, MalformedInputError("Failed to read file", util.Error("ReadAll", err))
	}
	return OpenBytes(data, logger)
}

func OpenBytes(data []byte, logger *zerolog.Logger) (Sheet, error) {
	if logger == nil {
		logger = loggers.NullLogger
	}

	format := DetectFromMagic(data)
	logger.Debug().Msgf("workbook: %d bytes, format %s", len(data), format)
	switch format {
	case FormatXLSX:
		s, res := openXLSX(bytes.NewReader(data), logger)
		if res != nil {
			return nil, MalformedInputError("Error parsing Excel file", res.With("openXLSX"))
		}
		return s, nil
	case FormatXLS:
		s, res := openXLS(data, logger)
		if res != nil {
			return nil, MalformedInputError("Error parsing Excel file", res.With("openXLS"))
		}
		return s, nil
	default:
		return nil, UnsupportedFormatError("Unsupported file format")
	}
}
