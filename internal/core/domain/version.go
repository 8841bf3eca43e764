package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// VersionType identifies the processing stage that produced a version.
// The set is open: the core types below are always valid, and callers may
// register additional types at runtime (e.g. "ai_regen_v2").
type VersionType string

// Core version types produced by the standard pipeline.
const (
	VersionOriginal   VersionType = "original"
	VersionAISpun     VersionType = "ai_spun"
	VersionAIReviewed VersionType = "ai_reviewed"
	VersionAIEdited   VersionType = "ai_edited"
	VersionManualEdit VersionType = "manual_edit"
)

// coreVersionTypes is the always-valid set.
var coreVersionTypes = map[VersionType]bool{
	VersionOriginal:   true,
	VersionAISpun:     true,
	VersionAIReviewed: true,
	VersionAIEdited:   true,
	VersionManualEdit: true,
}

// Valid reports whether the version type is a core type or a well-formed
// extension. Extensions must be non-empty lowercase identifiers so that
// typos like "Original " are caught at the store boundary without freezing
// the vocabulary.
func (t VersionType) Valid() bool {
	if coreVersionTypes[t] {
		return true
	}
	s := string(t)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			continue
		}
		return false
	}
	return true
}

// DocumentVersion is one immutable snapshot of content for a URL at a
// given processing stage. A content change always produces a new version
// with a new ID; rows are never mutated in place.
type DocumentVersion struct {
	// ID is derived deterministically from (URL, Type, Content) so that
	// saving identical content is idempotent.
	ID string

	// URL is the source locator. Treated as an opaque string.
	URL string

	// Content is the full text body.
	Content string

	// Type is the processing stage that produced this version.
	Type VersionType

	// Embedding is computed once at save time and never recomputed.
	Embedding []float32

	// Active marks whether the version participates in retrieval.
	// Inactive versions are retained for audit and revert.
	Active bool

	// Metadata holds scalar annotations (quality tags, counts, etc).
	Metadata map[string]any

	// CreatedAt is when the version was saved.
	CreatedAt time.Time
}

// WordCount returns the number of whitespace-separated words in the content.
func (v *DocumentVersion) WordCount() int {
	return len(strings.Fields(v.Content))
}

// CharCount returns the content length in bytes.
func (v *DocumentVersion) CharCount() int {
	return len(v.Content)
}

// VersionID computes the deterministic identifier for a (url, type, content)
// triple. Identical triples always map to the same ID, which is what makes
// saves idempotent without comparing embeddings.
func VersionID(url string, t VersionType, content string) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte{0})
	h.Write([]byte(t))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))[:24]
}
