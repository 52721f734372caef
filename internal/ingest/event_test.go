package ingest

import (
	"testing"

	"github.com/google/uuid"
)

func TestParseKey_Valid(t *testing.T) {
	t.Parallel()

	agentID := uuid.New().String()
	key := "acme-corp/" + agentID + "/2026/q1/report.pdf"

	got, err := parseKey(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TenantID != "acme-corp" {
		t.Errorf("TenantID = %q, want %q", got.TenantID, "acme-corp")
	}
	if got.AgentID != agentID {
		t.Errorf("AgentID = %q, want %q", got.AgentID, agentID)
	}
	if got.FileName != "report.pdf" {
		t.Errorf("FileName = %q, want %q", got.FileName, "report.pdf")
	}
	if got.DocumentID == uuid.Nil {
		t.Error("DocumentID was not minted")
	}
}

func TestParseKey_URLEncoded(t *testing.T) {
	t.Parallel()

	agentID := uuid.New().String()
	key := "acme-corp/" + agentID + "/My%20Report.pdf"

	got, err := parseKey(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FileName != "My Report.pdf" {
		t.Errorf("FileName = %q, want %q", got.FileName, "My Report.pdf")
	}
}

func TestParseKey_LeadingSlashStripped(t *testing.T) {
	t.Parallel()

	agentID := uuid.New().String()
	key := "/acme-corp/" + agentID + "/report.pdf"

	got, err := parseKey(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TenantID != "acme-corp" {
		t.Errorf("TenantID = %q, want %q", got.TenantID, "acme-corp")
	}
}

func TestParseKey_TwoDistinctCallsMintDistinctDocumentIDs(t *testing.T) {
	t.Parallel()

	agentID := uuid.New().String()
	key := "acme-corp/" + agentID + "/report.pdf"

	a, err := parseKey(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := parseKey(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.DocumentID == b.DocumentID {
		t.Error("reprocessing the same key produced the same document_id, want distinct")
	}
}

func TestParseKey_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		key  string
	}{
		{"too few segments", "only-one-segment"},
		{"invalid tenant id", "acme corp/" + uuid.New().String() + "/report.pdf"},
		{"agent id not a uuid", "acme-corp/not-a-uuid/report.pdf"},
		{"empty file name", "acme-corp/" + uuid.New().String() + "/"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := parseKey(tc.key); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}
