package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"route-assignment-service/internal/platform/obs"
)

var pdfMagic = []byte("%PDF")

// Extractor pulls plain text out of load manifest uploads. PDFs are decoded
// page by page; any other upload must already be UTF-8 text.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (Extractor) ExtractText(ctx context.Context, name string, data []byte) (_ string, err error) {
	defer obs.Time(ctx, "pdftext.ExtractText")(&err)

	if len(data) == 0 {
		return "", fmt.Errorf("extract text %s: file is empty", name)
	}

	if !bytes.HasPrefix(data, pdfMagic) {
		if !utf8.Valid(data) {
			return "", fmt.Errorf("extract text %s: not a PDF or UTF-8 text", name)
		}
		return string(data), nil
	}
	return extractPDF(name, data)
}

func extractPDF(name string, data []byte) (_ string, err error) {
	// The decoder panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract text %s: malformed pdf: %v", name, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract text %s: open pdf: %w", name, err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, line := range pageLines(page) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

// textLine collects the glyphs sharing one baseline, in content stream order.
type textLine struct {
	y    float64
	sb   strings.Builder
	last pdf.Text
	n    int
}

func (ln *textLine) add(t pdf.Text) {
	if ln.n > 0 && separated(ln.last, t) {
		ln.sb.WriteByte(' ')
	}
	ln.sb.WriteString(t.S)
	ln.last = t
	ln.n++
}

// pageLines rebuilds the page's text lines top to bottom. Glyph positions come
// from the full text state (Td, TD, T*, Tm), so lines placed without T* still
// break.
func pageLines(page pdf.Page) []string {
	var lines []*textLine
	for _, t := range page.Content().Text {
		// TJ arrays end with a synthetic newline glyph.
		if t.S == "\n" {
			continue
		}
		ln := lineAt(lines, t)
		if ln == nil {
			ln = &textLine{y: t.Y}
			lines = append(lines, ln)
		}
		ln.add(t)
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		if text := strings.TrimSpace(ln.sb.String()); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func lineAt(lines []*textLine, t pdf.Text) *textLine {
	tol := math.Max(1, t.FontSize*0.3)
	for _, ln := range lines {
		if math.Abs(ln.y-t.Y) <= tol {
			return ln
		}
	}
	return nil
}

// separated reports whether two glyphs on one line are far enough apart to be
// separate words. Fonts without a Widths array report zero width, so a run
// drawn by one Tj shares a single X.
func separated(prev, next pdf.Text) bool {
	if strings.TrimSpace(prev.S) == "" || strings.TrimSpace(next.S) == "" {
		return false
	}
	gap := next.X - (prev.X + prev.W)
	return math.Abs(gap) > 0.2*math.Max(prev.FontSize, 1)
}
