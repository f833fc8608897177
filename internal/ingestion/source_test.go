package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-intel/internal/fetch"
)

type stubFetcher struct {
	page *fetch.Page
	err  error
	urls []string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) (*fetch.Page, error) {
	s.urls = append(s.urls, url)
	return s.page, s.err
}

func TestFromText(t *testing.T) {
	doc, err := FromText("  Senior Go Engineer\n\nRemote  ")
	require.NoError(t, err)

	assert.Equal(t, "Senior Go Engineer Remote", doc.Normalized)
	assert.Equal(t, "  Senior Go Engineer\n\nRemote  ", doc.Raw)
	assert.Equal(t, SourceText, doc.Metadata.Source)
	assert.Equal(t, ContentHash(doc.Normalized), doc.Metadata.Hash)
}

func TestFromText_Empty(t *testing.T) {
	_, err := FromText(" \n\t ")
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestFromURL(t *testing.T) {
	f := &stubFetcher{page: &fetch.Page{
		URL:       "https://jobs.lever.co/acme/1",
		Text:      "Backend Engineer\nWe use Go and PostgreSQL.",
		Platform:  fetch.PlatformLever,
		FromCache: true,
	}}

	doc, err := FromURL(context.Background(), f, " https://jobs.lever.co/acme/1 ")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://jobs.lever.co/acme/1"}, f.urls)
	assert.Equal(t, "Backend Engineer We use Go and PostgreSQL.", doc.Normalized)
	assert.Equal(t, SourceURL, doc.Metadata.Source)
	assert.Equal(t, "lever", doc.Metadata.Platform)
	assert.True(t, doc.Metadata.FromCache)
}

func TestFromURL_FetchErrorPropagates(t *testing.T) {
	cause := &fetch.Error{URL: "http://127.0.0.1/", Kind: fetch.KindUnsafeURL, Message: "blocked"}
	f := &stubFetcher{err: cause}

	_, err := FromURL(context.Background(), f, "http://127.0.0.1/")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)

	var fetchErr *fetch.Error
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, fetch.KindUnsafeURL, fetchErr.Kind)
}

func TestFromURL_EmptyPage(t *testing.T) {
	f := &stubFetcher{page: &fetch.Page{URL: "https://example.com", Text: "   "}}

	_, err := FromURL(context.Background(), f, "https://example.com")
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestFromURL_NoFetcher(t *testing.T) {
	_, err := FromURL(context.Background(), nil, "https://example.com")
	assert.ErrorIs(t, err, ErrFetchFailed)
}
