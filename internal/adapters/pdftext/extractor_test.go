package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-assignment-service/internal/domain"
	"route-assignment-service/internal/ingest"
	"route-assignment-service/internal/normalize"
)

// singlePagePDF wraps a content stream in a one-page document using the
// standard Helvetica font, with a byte-accurate xref table.
func singlePagePDF(t *testing.T, content string) []byte {
	t.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractTextPassesThroughPlainText(t *testing.T) {
	in := "STG.Q12.1\nCX105 NDAY • 4WD P31\n1 B-7.3B Navy 4564 3\nA-29.7T 2\n"

	got, err := NewExtractor().ExtractText(context.Background(), "cx105.txt", []byte(in))
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestExtractTextSplitsPositionedLines(t *testing.T) {
	// Each line is placed with Td, the way most producers lay out a route sheet.
	// The bag line is drawn as two runs on the same baseline.
	content := strings.Join([]string{
		"BT",
		"/F1 12 Tf",
		"72 720 Td",
		"(STG.Q12.1) Tj",
		"0 -14 Td",
		"(CX105 NDAY - 4WD P31) Tj",
		"0 -14 Td",
		"(1 B-7.3B Navy) Tj",
		"150 0 Td",
		"(4564 3) Tj",
		"-150 -14 Td",
		"(A-16.1T 4) Tj",
		"ET",
	}, "\n")

	text, err := NewExtractor().ExtractText(context.Background(), "cx105.pdf", singlePagePDF(t, content))
	require.NoError(t, err)
	assert.Equal(t, "STG.Q12.1\nCX105 NDAY - 4WD P31\n1 B-7.3B Navy 4564 3\nA-16.1T 4\n", text)

	res, err := ingest.ParseLoadManifestText(text, ingest.Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	require.Len(t, res.Records, 1)

	m := res.Records[0]
	assert.Equal(t, "CX105", m.RouteCode)
	assert.Equal(t, "STG.Q12.1", m.StagingLocation)
	assert.Equal(t, normalize.P31DeliveryTruck, m.ServiceType)
	assert.Equal(t, []domain.BagEntry{{Zone: "B-7.3B", Code: "4564", Color: "NAV", Count: 3}}, m.Bags)
	assert.Equal(t, []domain.OverflowEntry{{Zone: "A-16.1T", Code: "A-16.1T", Count: 4}}, m.Overflow)
}

func TestExtractTextRejects(t *testing.T) {
	ctx := context.Background()
	e := NewExtractor()

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, "file is empty"},
		{"binary", []byte{0xff, 0xfe, 0x00, 0x81}, "not a PDF or UTF-8 text"},
		{"truncated pdf", []byte("%PDF-1.4\n%broken"), "extract text truncated pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ExtractText(ctx, tt.name, tt.data)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
