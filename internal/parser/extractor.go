package parser

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"talentscope/internal/types"
)

// minUsableTextLength is the shortest extraction we accept before
// moving on to the next extractor.
const minUsableTextLength = 30

// TextExtractor pulls plain text out of one resume file format.
type TextExtractor interface {
	// Name identifies the extractor in logs and result metadata.
	Name() string

	// ExtractFromBytes returns the plain text of the document.
	ExtractFromBytes(ctx context.Context, data []byte, uri string) (string, error)
}

// ExtractorChain runs extractors in order until one produces usable
// text. The primary extractor handles well-formed files; the fallback
// copes with the malformed PDFs real applicants upload.
type ExtractorChain struct {
	extractors []TextExtractor
	timeout    time.Duration
	logger     *log.Logger
}

// NewExtractorChain builds a chain over the given extractors.
func NewExtractorChain(timeout time.Duration, logger *log.Logger, extractors ...TextExtractor) *ExtractorChain {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ExtractorChain{
		extractors: extractors,
		timeout:    timeout,
		logger:     logger,
	}
}

// Extract tries each extractor with its own deadline and returns the
// first usable result. All failures are joined into the final error.
func (c *ExtractorChain) Extract(ctx context.Context, data []byte, uri string) (*types.ResumeExtraction, error) {
	if len(c.extractors) == 0 {
		return nil, fmt.Errorf("no text extractors configured")
	}

	var failures []string
	for _, extractor := range c.extractors {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		text, err := extractor.ExtractFromBytes(attemptCtx, data, uri)
		cancel()

		if err != nil {
			c.logger.Printf("[extract] %s failed for %s: %v", extractor.Name(), uri, err)
			failures = append(failures, fmt.Sprintf("%s: %v", extractor.Name(), err))
			continue
		}

		text = strings.TrimSpace(text)
		if len(text) < minUsableTextLength {
			c.logger.Printf("[extract] %s produced only %d chars for %s, trying next", extractor.Name(), len(text), uri)
			failures = append(failures, fmt.Sprintf("%s: text too short (%d chars)", extractor.Name(), len(text)))
			continue
		}

		return &types.ResumeExtraction{
			Text:      text,
			Extractor: extractor.Name(),
		}, nil
	}

	return nil, fmt.Errorf("all extractors failed for %s: %s", uri, strings.Join(failures, "; "))
}
