package report

import (
	"encoding/json"
	"io"

	"github.com/rs/zerolog"
	"github.com/soderasen-au/go-common/util"

	"github.com/soderasen-au/go-sheetpdf/sheet"
)

// TablePayload is the JSON form of an extracted sheet.
type TablePayload struct {
	Sheet     string            `json:"sheet,omitempty"`
	Headers   []string          `json:"headers"`
	TotalRows int               `json:"totalRows"`
	Data      []sheet.RowRecord `json:"data"`
}

func NewTablePayload(table *sheet.Table) TablePayload {
	return TablePayload{Sheet: table.SheetName, Headers: table.Headers, TotalRows: len(table.Rows), Data: table.Rows}
}

func writeJsonReport(r Report, table *sheet.Table, w io.Writer, logger *zerolog.Logger) (int, *util.Result) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewTablePayload(table)); err != nil {
		return 0, util.Error("Encode", err)
	}
	logger.Debug().Msgf("json: %d rows", len(table.Rows))
	return 0, nil
}
