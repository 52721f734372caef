package vectorstore

import "testing"

func TestValidIdentifier(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"alnum", "acme123", true},
		{"underscore", "acme_corp", true},
		{"hyphen", "acme-corp", true},
		{"empty", "", false},
		{"sql injection attempt", "acme; DROP SCHEMA public CASCADE;--", false},
		{"quote", "acme'corp", false},
		{"whitespace", "acme corp", false},
		{"dot traversal", "acme.public", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := validIdentifier(tc.in); got != tc.want {
				t.Errorf("validIdentifier(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizedIndexPrefix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"acme-corp", "acme_corp"},
		{"acme_corp", "acme_corp"},
		{"acme", "acme"},
	}

	for _, tc := range cases {
		if got := sanitizedIndexPrefix(tc.in); got != tc.want {
			t.Errorf("sanitizedIndexPrefix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEmbeddingDimension_MatchesSpec(t *testing.T) {
	t.Parallel()
	if EmbeddingDimension != 1536 {
		t.Errorf("EmbeddingDimension = %d, want 1536", EmbeddingDimension)
	}
}

func TestIVFFlatLists_MatchesSpec(t *testing.T) {
	t.Parallel()
	if IVFFlatLists != 100 {
		t.Errorf("IVFFlatLists = %d, want 100", IVFFlatLists)
	}
}
