package report

import (
	"encoding/csv"
	"io"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-sheetpdf/sheet"
)

// WriteCsv writes the header and every row's display strings.
// Columns follow header positions.
func WriteCsv(table *sheet.Table, w io.Writer, comma rune) *util.Result {
	writer := csv.NewWriter(w)
	writer.Comma = comma

	if err := writer.Write(table.Headers); err != nil {
		return util.Error("WriteHeader", err)
	}
	record := make([]string, len(table.Headers))
	for _, row := range table.Rows {
		for ci := range table.Headers {
			record[ci] = row.Columns.At(ci).String()
		}
		if err := writer.Write(record); err != nil {
			return util.Error("WriteRecord", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return util.Error("Flush", err)
	}
	return nil
}

func writeCsvReport(r Report, table *sheet.Table, w io.Writer, logger *zerolog.Logger) (int, *util.Result) {
	comma := ','
	if r.OutputFormat != nil && r.OutputFormat.IsTsv() {
		comma = '\t'
	}
	logger.Debug().Msgf("csv: %d columns, delimiter %q", len(table.Headers), comma)
	if res := WriteCsv(table, w, comma); res != nil {
		return 0, res.With("WriteCsv")
	}
	return 0, nil
}
