package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// FallbackPDFTextExtractor walks the PDF page tree directly. It is
// slower and cruder than the primary extractor but survives documents
// with broken metadata.
type FallbackPDFTextExtractor struct{}

// NewFallbackPDFTextExtractor creates the fallback extractor.
func NewFallbackPDFTextExtractor() *FallbackPDFTextExtractor {
	return &FallbackPDFTextExtractor{}
}

// Name implements TextExtractor.
func (f *FallbackPDFTextExtractor) Name() string {
	return "ledongthuc_pdf"
}

// ExtractFromBytes implements TextExtractor.
func (f *FallbackPDFTextExtractor) ExtractFromBytes(ctx context.Context, data []byte, uri string) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading PDF %s: %w", uri, err)
	}

	var textBuilder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	return textBuilder.String(), nil
}
