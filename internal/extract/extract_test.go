package extract

import "testing"

func TestJoinByPage_OrdersAscendingAndJoinsBlank(t *testing.T) {
	t.Parallel()

	lines := []pageLine{
		{page: 2, text: "second page line one"},
		{page: 1, text: "first page line one"},
		{page: 1, text: "first page line two"},
		{page: 2, text: "second page line two"},
	}

	got := joinByPage(lines)
	want := "first page line one\nfirst page line two\n\nsecond page line one\nsecond page line two"
	if got != want {
		t.Errorf("joinByPage() = %q, want %q", got, want)
	}
}

func TestJoinByPage_Empty(t *testing.T) {
	t.Parallel()
	if got := joinByPage(nil); got != "" {
		t.Errorf("joinByPage(nil) = %q, want empty", got)
	}
}

func TestPageCount_MissingFile(t *testing.T) {
	t.Parallel()
	// spec.md §4.1: page-count detection failure is treated as 0, selecting
	// the local-parser path (which itself will fail later if the copy is
	// absent).
	if got := PageCount("/nonexistent/path/does-not-exist.pdf"); got != 0 {
		t.Errorf("PageCount() for missing file = %d, want 0", got)
	}
}

func TestOCRPageThreshold(t *testing.T) {
	t.Parallel()
	if OCRPageThreshold != 50 {
		t.Errorf("OCRPageThreshold = %d, want 50", OCRPageThreshold)
	}
}
