package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Source kinds.
const (
	SourceText = "text"
	SourceURL  = "url"
)

// Metadata describes where an analyzed posting came from.
type Metadata struct {
	Source     string    `json:"source"`
	URL        string    `json:"url,omitempty"`
	Platform   string    `json:"platform,omitempty"`
	Hash       string    `json:"hash"`
	Chars      int       `json:"chars"`
	IngestedAt time.Time `json:"ingested_at"`
	FromCache  bool      `json:"from_cache"`
}

// NewMetadata describes normalized posting text. A non-empty url marks the
// posting as fetched.
func NewMetadata(normalized string, url string) *Metadata {
	source := SourceText
	if url != "" {
		source = SourceURL
	}
	return &Metadata{
		Source:     source,
		URL:        url,
		Hash:       ContentHash(normalized),
		Chars:      len([]rune(normalized)),
		IngestedAt: time.Now().UTC(),
	}
}

// ContentHash is the hex SHA-256 of s. Identical postings hash identically
// whichever way they were submitted.
func ContentHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
