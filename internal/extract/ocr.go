package extract

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/vicoftech/rag-core-go/internal/ragerr"
)

// OCRConfig bounds the asynchronous OCR polling loop. spec.md §9 redesigns
// the source's unbounded fixed-1s sleep loop into a bounded exponential
// backoff with an explicit wall-clock deadline.
type OCRConfig struct {
	// MaxAttempts is the maximum number of polls before giving up.
	MaxAttempts int
	// BaseInterval is the backoff base; attempt n sleeps BaseInterval*2^n.
	BaseInterval time.Duration
}

// DefaultOCRConfig mirrors the source's polling cadence closely enough for a
// small job to resolve on the first few attempts, while bounding runaway
// jobs with a deadline instead of polling forever.
var DefaultOCRConfig = OCRConfig{
	MaxAttempts:  30,
	BaseInterval: 1 * time.Second,
}

// extractOCR submits an asynchronous document-text-detection job for the
// object at bucket/key, polls until a terminal state with bounded
// exponential backoff, then pages through the result grouping LINE blocks by
// page number and emitting pages in ascending order joined by blank lines.
func (e *Extractor) extractOCR(ctx context.Context, bucket, key string) (string, error) {
	start, err := e.textract.StartDocumentTextDetection(ctx, &textract.StartDocumentTextDetectionInput{
		DocumentLocation: &types.DocumentLocation{
			S3Object: &types.S3Object{
				Bucket: &bucket,
				Name:   &key,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("extract: start ocr job: %w: %w", ragerr.OCRFailed, err)
	}
	jobID := start.JobId

	status, err := e.pollUntilTerminal(ctx, *jobID)
	if err != nil {
		return "", err
	}
	if status != types.JobStatusSucceeded {
		return "", fmt.Errorf("extract: ocr job %s ended with status %s: %w", *jobID, status, ragerr.OCRFailed)
	}

	return e.collectPages(ctx, *jobID)
}

// pollUntilTerminal polls GetDocumentTextDetection with bounded exponential
// backoff until the job reaches SUCCEEDED or FAILED, or the attempt budget is
// exhausted.
func (e *Extractor) pollUntilTerminal(ctx context.Context, jobID string) (types.JobStatus, error) {
	var lastStatus types.JobStatus

	for attempt := 0; attempt < e.ocrCfg.MaxAttempts; attempt++ {
		out, err := e.textract.GetDocumentTextDetection(ctx, &textract.GetDocumentTextDetectionInput{
			JobId: &jobID,
		})
		if err != nil {
			return "", fmt.Errorf("extract: poll ocr job %s: %w: %w", jobID, ragerr.OCRFailed, err)
		}

		lastStatus = out.JobStatus
		if lastStatus == types.JobStatusSucceeded || lastStatus == types.JobStatusFailed {
			return lastStatus, nil
		}

		backoff := e.ocrCfg.BaseInterval * time.Duration(1<<uint(attempt))
		if maxBackoff := 30 * time.Second; backoff > maxBackoff {
			backoff = maxBackoff
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("extract: ocr job %s: %w: %w", jobID, ragerr.OCRFailed, ctx.Err())
		case <-time.After(backoff):
		}
	}

	return "", fmt.Errorf("extract: ocr job %s did not reach a terminal state within %d attempts: %w",
		jobID, e.ocrCfg.MaxAttempts, ragerr.OCRFailed)
}

// pageLine is one LINE block, kept with its page number for grouping.
type pageLine struct {
	page int32
	text string
}

// collectPages pages through the completed job's results via NextToken,
// grouping LINE blocks by page, and returns the pages joined ascending by
// page number, blank-line separated.
func (e *Extractor) collectPages(ctx context.Context, jobID string) (string, error) {
	var lines []pageLine
	var nextToken *string

	for {
		out, err := e.textract.GetDocumentTextDetection(ctx, &textract.GetDocumentTextDetectionInput{
			JobId:     &jobID,
			NextToken: nextToken,
		})
		if err != nil {
			return "", fmt.Errorf("extract: page ocr result for job %s: %w: %w", jobID, ragerr.OCRFailed, err)
		}

		for _, block := range out.Blocks {
			if block.BlockType != types.BlockTypeLine || block.Text == nil {
				continue
			}
			page := int32(1)
			if block.Page != nil {
				page = *block.Page
			}
			lines = append(lines, pageLine{page: page, text: *block.Text})
		}

		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	return joinByPage(lines), nil
}

// joinByPage groups lines by page number, joins lines within a page with
// newlines, and joins pages in ascending order with blank lines.
func joinByPage(lines []pageLine) string {
	byPage := make(map[int32][]string)
	var pages []int32
	for _, l := range lines {
		if _, ok := byPage[l.page]; !ok {
			pages = append(pages, l.page)
		}
		byPage[l.page] = append(byPage[l.page], l.text)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i] < pages[j] })

	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, joinLines(byPage[p]))
	}
	return joinBlank(out)
}

func joinLines(lines []string) string {
	s := ""
	for i, l := range lines {
		if i > 0 {
			s += "\n"
		}
		s += l
	}
	return s
}

func joinBlank(pages []string) string {
	s := ""
	for i, p := range pages {
		if i > 0 {
			s += "\n\n"
		}
		s += p
	}
	return s
}
