// Package ingest orchestrates one ingestion event end to end: decode the
// trigger, download the object, extract and chunk its text, provision the
// tenant schema, embed every chunk, and persist them in one transaction, per
// spec.md §4.5.
package ingest

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/vicoftech/rag-core-go/internal/ragerr"
)

// ObjectCreatedEvent is the ingestion trigger: an object-created notification
// naming a bucket and key, per spec.md §6.
type ObjectCreatedEvent struct {
	Bucket string
	Key    string
}

// ParsedKey is an ObjectCreatedEvent's key after URL-decoding and routing.
type ParsedKey struct {
	TenantID   string
	AgentID    string
	FileName   string
	DocumentID uuid.UUID
}

var tenantIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// parseKey URL-decodes key, strips a leading slash, and splits it into
// tenant_id/agent_id/.../file_name. tenant_id must match
// ^[A-Za-z0-9_-]+$; agent_id must parse as a UUID. A fresh document_id is
// minted for every call, so reprocessing the same key yields distinct chunks
// (spec.md §4.5's "de-duplication is not a goal" clause).
func parseKey(key string) (ParsedKey, error) {
	decoded, err := url.QueryUnescape(key)
	if err != nil {
		return ParsedKey{}, fmt.Errorf("ingest: url-decode key %q: %w: %w", key, ragerr.BadRequest, err)
	}
	decoded = strings.TrimPrefix(decoded, "/")

	parts := strings.Split(decoded, "/")
	if len(parts) < 3 {
		return ParsedKey{}, fmt.Errorf("ingest: key %q has too few path segments: %w", key, ragerr.BadRequest)
	}

	tenantID := parts[0]
	agentID := parts[1]
	fileName := parts[len(parts)-1]

	if !tenantIDPattern.MatchString(tenantID) {
		return ParsedKey{}, fmt.Errorf("ingest: invalid tenant_id %q: %w", tenantID, ragerr.BadRequest)
	}
	if _, err := uuid.Parse(agentID); err != nil {
		return ParsedKey{}, fmt.Errorf("ingest: agent_id %q is not a UUID: %w: %w", agentID, ragerr.BadRequest, err)
	}
	if fileName == "" {
		return ParsedKey{}, fmt.Errorf("ingest: key %q has an empty file name: %w", key, ragerr.BadRequest)
	}

	return ParsedKey{
		TenantID:   tenantID,
		AgentID:    agentID,
		FileName:   fileName,
		DocumentID: uuid.New(),
	}, nil
}
