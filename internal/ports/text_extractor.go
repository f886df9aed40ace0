package ports

import "context"

// Port: a boundary for extracting plain text from a load manifest document.
type TextExtractor interface {
	// Return the document's text with one line per printed line.
	ExtractText(ctx context.Context, name string, data []byte) (string, error)
}
