package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageCount returns the page count of the PDF at path, measured by the
// in-process parser. Per spec.md §4.1, a measurement failure is treated as 0
// (the "small document" case), deferring the real failure to the local
// extraction call that follows.
func PageCount(path string) int {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()
	return r.NumPage()
}

// ExtractLocal concatenates the per-page text of the PDF at path, separated
// by blank lines, using the in-process parser. This is the fast/free path
// chosen when the page count is at or below the OCR threshold.
func ExtractLocal(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("extract: open %s: %w", path, err)
	}
	defer f.Close()

	var pages []string
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract: page %d of %s: %w", i, path, err)
		}
		pages = append(pages, text)
	}

	return strings.Join(pages, "\n\n"), nil
}
