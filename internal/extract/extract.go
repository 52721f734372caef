// Package extract produces full text from a PDF, choosing between in-process
// parsing and an async OCR service based on page count, per spec.md §4.1.
package extract

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/textract"
)

// OCRPageThreshold is the page count above which the Extractor prefers the
// async OCR path over in-process parsing.
const OCRPageThreshold = 50

// Extractor produces full text from a downloaded PDF object.
type Extractor struct {
	textract *textract.Client
	ocrCfg   OCRConfig
}

// New constructs an Extractor. textractClient may be nil if only small
// (local-path) documents are expected to be processed — calling Extract on a
// large document in that configuration returns an error rather than panicking.
func New(textractClient *textract.Client, ocrCfg OCRConfig) *Extractor {
	if ocrCfg.MaxAttempts == 0 {
		ocrCfg = DefaultOCRConfig
	}
	return &Extractor{textract: textractClient, ocrCfg: ocrCfg}
}

// Extract measures the page count of the PDF at localPath and, per the
// spec's decision rule, either concatenates its per-page text locally
// (N ≤ 50) or submits and polls an OCR job against bucket/key (N > 50).
// Returns the full text and the measured page count (0 on measurement
// failure, which also selects the local path).
func (e *Extractor) Extract(ctx context.Context, localPath, bucket, key string) (string, int, error) {
	pageCount := PageCount(localPath)

	if pageCount <= OCRPageThreshold {
		text, err := ExtractLocal(localPath)
		if err != nil {
			return "", pageCount, err
		}
		return text, pageCount, nil
	}

	if e.textract == nil {
		return "", pageCount, fmt.Errorf("extract: document has %d pages (> %d) but no OCR client is configured", pageCount, OCRPageThreshold)
	}

	text, err := e.extractOCR(ctx, bucket, key)
	if err != nil {
		return "", pageCount, err
	}
	return text, pageCount, nil
}
