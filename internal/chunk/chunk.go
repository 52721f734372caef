// Package chunk implements the adaptive, structure-aware text segmenter used
// by the ingestion pipeline. Configuration (target chunk size and overlap) is
// keyed by page count — a proxy for extraction cost already paid by the
// Extractor — and the splitter honors detected section/title boundaries
// before falling back to a fixed punctuation hierarchy.
package chunk

import "strings"

// MinChunkChars is the minimum length, after trimming, a chunk must have to
// be retained. Shorter fragments (stray headers, page footers) are dropped.
const MinChunkChars = 50

// sizeConfig holds the target chunk size and overlap for a page-count bucket.
type sizeConfig struct {
	targetSize int
	overlap    int
}

// configForPageCount returns the adaptive chunk size/overlap for pageCount,
// per the table in spec.md §4.2.
func configForPageCount(pageCount int) sizeConfig {
	switch {
	case pageCount <= 10:
		return sizeConfig{targetSize: 800, overlap: 150}
	case pageCount <= 50:
		return sizeConfig{targetSize: 1200, overlap: 150}
	case pageCount <= 150:
		return sizeConfig{targetSize: 1800, overlap: 100}
	default:
		return sizeConfig{targetSize: 2500, overlap: 80}
	}
}

// Chunk splits fullText into size-bounded, overlap-bounded fragments,
// honoring detected section/title boundaries ahead of the fixed punctuation
// hierarchy. pageCount selects the adaptive target size/overlap. Returns an
// empty slice for empty input; never panics on malformed Unicode.
func Chunk(fullText string, pageCount int) []string {
	if strings.TrimSpace(fullText) == "" {
		return nil
	}

	cfg := configForPageCount(pageCount)
	titleLines := detectTitleSeparators(fullText)
	separators := buildSeparators(titleLines)

	fragments := recursiveSplit(fullText, separators, cfg.targetSize)
	merged := mergeWithOverlap(fragments, cfg.targetSize, cfg.overlap)

	out := make([]string, 0, len(merged))
	for _, c := range merged {
		trimmed := strings.TrimSpace(c)
		if len(trimmed) < MinChunkChars {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
