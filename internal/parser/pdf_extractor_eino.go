package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

// EinoPDFTextExtractor extracts text through the Eino PDF parser. It
// is the primary extractor in the chain.
type EinoPDFTextExtractor struct {
	parser *pdf.PDFParser
	logger *log.Logger
}

// EinoPDFOption configures the extractor.
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoLogger installs a custom logger.
func WithEinoLogger(logger *log.Logger) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.logger = logger
	}
}

// NewEinoPDFTextExtractor initializes the Eino PDF text extractor.
// ToPages is off so the whole document comes back as one string.
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Eino PDF parser: %w", err)
	}

	extractor := &EinoPDFTextExtractor{
		parser: p,
		logger: log.New(os.Stderr, "[pdf] ", log.LstdFlags),
	}

	for _, option := range options {
		option(extractor)
	}

	return extractor, nil
}

// Name implements TextExtractor.
func (e *EinoPDFTextExtractor) Name() string {
	return "eino_pdf"
}

// ExtractFromBytes implements TextExtractor.
func (e *EinoPDFTextExtractor) ExtractFromBytes(ctx context.Context, data []byte, uri string) (string, error) {
	return e.extractFromReader(ctx, bytes.NewReader(data), uri)
}

func (e *EinoPDFTextExtractor) extractFromReader(ctx context.Context, reader io.Reader, uri string) (string, error) {
	docs, err := e.parser.Parse(ctx, reader,
		einoParser.WithURI(uri),
	)
	if err != nil {
		return "", fmt.Errorf("eino PDF parser failed for %s: %w", uri, err)
	}

	if len(docs) == 0 {
		return "", fmt.Errorf("eino PDF parser returned no documents for %s", uri)
	}

	if len(docs) > 1 {
		e.logger.Printf("parser returned %d documents for %s, concatenating", len(docs), uri)
	}

	var sb bytes.Buffer
	for i, doc := range docs {
		sb.WriteString(doc.Content)
		if i < len(docs)-1 {
			sb.WriteString("\n\n")
		}
	}

	return sb.String(), nil
}
