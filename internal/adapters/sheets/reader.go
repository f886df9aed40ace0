package sheets

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"route-assignment-service/internal/platform/obs"
)

// xlsx workbooks are zip archives.
var zipMagic = []byte("PK\x03\x04")

// Reader turns an uploaded spreadsheet into a grid of cell strings.
// Workbooks are read from their first sheet; anything else is parsed as CSV.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

func (Reader) ReadRows(ctx context.Context, name string, data []byte) (_ [][]string, err error) {
	defer obs.Time(ctx, "sheets.ReadRows")(&err)

	if len(data) == 0 {
		return nil, fmt.Errorf("read rows %s: file is empty", name)
	}

	if bytes.HasPrefix(data, zipMagic) {
		return readWorkbook(name, data)
	}
	return readCSV(name, data)
}

func readWorkbook(name string, data []byte) (_ [][]string, err error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read rows %s: open workbook: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("read rows %s: close workbook: %w", name, cerr)
		}
	}()

	sheetNames := f.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("read rows %s: workbook has no sheets", name)
	}

	rows, err := f.GetRows(sheetNames[0])
	if err != nil {
		return nil, fmt.Errorf("read rows %s: sheet %q: %w", name, sheetNames[0], err)
	}
	return rows, nil
}

func readCSV(name string, data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("read rows %s: line %d: %w", name, perr.Line, perr.Err)
		}
		return nil, fmt.Errorf("read rows %s: %w", name, err)
	}

	for _, row := range rows {
		for i, cell := range row {
			row[i] = strings.TrimSpace(cell)
		}
	}
	return rows, nil
}
