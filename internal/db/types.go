package db

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// FetchedPage is a cached copy of a posting's extracted text.
type FetchedPage struct {
	ID          uuid.UUID  `json:"id"`
	URL         string     `json:"url"`
	ParsedText  string     `json:"parsed_text"`
	ContentHash string     `json:"content_hash"`
	Platform    string     `json:"platform"`
	FetchedAt   time.Time  `json:"fetched_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	HitCount    int        `json:"hit_count"`
	LastHitAt   *time.Time `json:"last_hit_at,omitempty"`
}

// IsFresh reports whether the page has not expired at now.
func (p *FetchedPage) IsFresh(now time.Time) bool {
	return now.Before(p.ExpiresAt)
}

// HashContent computes SHA256 hash of content
func HashContent(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
