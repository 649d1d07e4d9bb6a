package sheet

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/loggers"
)

// Extractor turns the first worksheet into a header and typed row records.
type Extractor struct {
	Logger *zerolog.Logger
}

func NewExtractor(logger *zerolog.Logger) *Extractor {
	if logger == nil {
		logger = loggers.NullLogger
	}
	return &Extractor{Logger: logger}
}

// ExtractFrom decodes r and extracts its first sheet. The workbook is
// released before returning on every path.
func (e *Extractor) ExtractFrom(r io.Reader) (*Table, error) {
	s, err := Open(r, e.Logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.Close(); err != nil {
			e.Logger.Warn().Err(err).Msg("close workbook")
		}
	}()
	return e.Extract(s)
}

// Extract reads row 0 as the header and every following row up to the
// sheet's extent as a record. A row with no stored cells is still emitted,
// as a record whose columns are all Null; RowNumber is always the row's
// position in the sheet, so gaps never shift the numbering.
func (e *Extractor) Extract(s Sheet) (*Table, error) {
	if e.Logger == nil {
		e.Logger = loggers.NullLogger
	}

	table := &Table{SheetName: s.Name(), Headers: make([]string, 0), Rows: make([]RowRecord, 0)}
	rowCount := s.RowCount()
	if rowCount == 0 {
		e.Logger.Info().Msgf("sheet [%s] is empty", s.Name())
		return table, nil
	}

	table.Headers = Headers(s)
	for r := 1; r < rowCount; r++ {
		cols := newColumns(table.Headers)
		for c := range table.Headers {
			cols.set(c, Coerce(s.Cell(r, c)))
		}
		table.Rows = append(table.Rows, RowRecord{RowNumber: r, Columns: cols})
	}

	e.Logger.Info().Msgf("sheet [%s]: %d columns, %d rows", s.Name(), len(table.Headers), len(table.Rows))
	return table, nil
}

// Headers builds one name per physical cell of row 0; blank cells become Column_<index>.
func Headers(s Sheet) []string {
	n := s.ColumnCount(0)
	headers := make([]string, n)
	for c := 0; c < n; c++ {
		name := CoerceToDisplayString(s.Cell(0, c))
		if name == "" {
			name = fmt.Sprintf("Column_%d", c)
		}
		headers[c] = name
	}
	return headers
}
