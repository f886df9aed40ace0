package ports

import "context"

// Port: a boundary for turning an uploaded spreadsheet into raw cell rows.
type SheetReader interface {
	// Read the first sheet of a workbook. name is only used to pick a format hint.
	ReadRows(ctx context.Context, name string, data []byte) ([][]string, error)
}
