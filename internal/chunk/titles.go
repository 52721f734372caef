package chunk

import (
	"regexp"
	"sort"
	"strings"
)

// titlePatterns are the section/heading detectors scanned line-by-line over
// the extracted text. Each is tried in order against the trimmed line; a
// match marks that line as a section boundary. Ported directly from the
// original Python source's TITLE_PATTERNS.
var titlePatterns = []*regexp.Regexp{
	// Markdown heading: "#" through "######" followed by text.
	regexp.MustCompile(`^#{1,6}\s+.+$`),
	// Decimal section numbering followed by a capitalized word: "1.", "1.2", "1.2.3 Foo".
	regexp.MustCompile(`^\d+\.[\d.]*\s+[A-ZÁÉÍÓÚÑ].*$`),
	// Roman numeral heading: "I. Foo", "IV. Bar".
	regexp.MustCompile(`^[IVXLCDM]+\.\s+.+$`),
	// ALL-CAPS line of at least 4 characters.
	regexp.MustCompile(`^[A-Z][A-Z\s]{3,}$`),
	// Spanish keyword headings, optionally numbered.
	regexp.MustCompile(`^(?:Capítulo|Sección|Artículo|Anexo)\s+\d*.*$`),
	// English keyword headings, optionally numbered.
	regexp.MustCompile(`^(?:Chapter|Section|Article|Annex)\s+\d*.*$`),
}

// minTitleSeparatorLen is the length (after trimming) a detected title line
// must exceed to be used as a splitter separator.
const minTitleSeparatorLen = 3

// detectTitleSeparators scans text line by line and returns the distinct
// trimmed lines that match a title pattern, in order of first appearance.
// It only detects and dedupes: wrapping each line as a literal separator
// ("\n" + line + "\n") and sorting longest first happen in buildSeparators.
func detectTitleSeparators(text string) []string {
	seen := make(map[string]bool)
	var lines []string

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if len(line) <= minTitleSeparatorLen {
			continue
		}
		if !matchesAnyTitlePattern(line) {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		lines = append(lines, line)
	}

	return lines
}

// matchesAnyTitlePattern reports whether line matches any registered title pattern.
func matchesAnyTitlePattern(line string) bool {
	for _, p := range titlePatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// baseSeparators are the fixed structural separators tried after title
// separators, in descending priority order.
var baseSeparators = []string{"\n\n\n", "\n\n", "\n", ". ", "? ", "! ", "; ", ", ", " "}

// buildSeparators combines detected title lines (as literal separators,
// sorted longest-first so more specific titles bind tighter) with the fixed
// structural separator list.
func buildSeparators(titleLines []string) []string {
	sorted := make([]string, len(titleLines))
	copy(sorted, titleLines)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	seps := make([]string, 0, len(sorted)+len(baseSeparators))
	for _, line := range sorted {
		seps = append(seps, "\n"+line+"\n")
	}
	seps = append(seps, baseSeparators...)
	return seps
}
