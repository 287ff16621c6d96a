package analysis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DocumentTextExtractor pulls plain text out of an uploaded document. An
// empty string with a nil error means the document carries no readable text.
type DocumentTextExtractor interface {
	ExtractText(ctx context.Context, filename string, data []byte) (string, error)
}

var pdfMagic = []byte("%PDF-")

// PDFExtractor reads the text layer of PDF files. Other formats, images
// included, yield no text.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor { return &PDFExtractor{} }

func (e *PDFExtractor) ExtractText(ctx context.Context, filename string, data []byte) (string, error) {
	if !IsPDF(filename, data) {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf %s: %w", filename, err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text %s: %w", filename, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read pdf text %s: %w", filename, err)
	}
	return buf.String(), nil
}

// IsPDF reports whether the upload looks like a PDF by content or extension.
func IsPDF(filename string, data []byte) bool {
	if bytes.HasPrefix(data, pdfMagic) {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}
