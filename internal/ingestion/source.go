package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/job-intel/internal/fetch"
)

var (
	// ErrEmptyContent is returned when a posting has no usable text
	ErrEmptyContent = errors.New("posting content is empty")
	// ErrFetchFailed is returned when the posting URL could not be fetched
	ErrFetchFailed = errors.New("failed to fetch posting")
)

// Fetcher retrieves the visible text of a remote posting.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Page, error)
}

// Document is a posting ready for analysis.
type Document struct {
	// Raw keeps line structure; title and section detection need it.
	Raw        string
	Normalized string
	Metadata   *Metadata
}

// FromText builds a Document from directly supplied posting text.
func FromText(text string) (*Document, error) {
	normalized := Normalize(text)
	if normalized == "" {
		return nil, ErrEmptyContent
	}
	return &Document{
		Raw:        text,
		Normalized: normalized,
		Metadata:   NewMetadata(normalized, ""),
	}, nil
}

// FromURL fetches a posting and builds a Document from its visible text.
// Fetch failures are never replaced by empty text.
func FromURL(ctx context.Context, f Fetcher, urlStr string) (*Document, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: no fetcher configured", ErrFetchFailed)
	}
	urlStr = strings.TrimSpace(urlStr)

	page, err := f.Fetch(ctx, urlStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	normalized := Normalize(page.Text)
	if normalized == "" {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, ErrEmptyContent)
	}

	metadata := NewMetadata(normalized, urlStr)
	metadata.Platform = string(page.Platform)
	metadata.FromCache = page.FromCache
	return &Document{
		Raw:        page.Text,
		Normalized: normalized,
		Metadata:   metadata,
	}, nil
}
