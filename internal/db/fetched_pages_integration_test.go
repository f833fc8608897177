//go:build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests require a running PostgreSQL database.
// Set TEST_DATABASE_URL environment variable to run them.

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(ctx))

	_, _ = db.pool.Exec(ctx, "DELETE FROM fetched_pages WHERE url LIKE '%test.example.com%'")
	t.Cleanup(db.Close)
	return db
}

func TestIntegration_UpsertAndGetFetchedPage(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()

	page := &FetchedPage{
		URL:        "https://test.example.com/jobs/1",
		ParsedText: "Backend Engineer. Go, PostgreSQL.",
		Platform:   "unknown",
	}
	require.NoError(t, db.UpsertFetchedPage(ctx, page, time.Hour))

	got, err := db.GetFreshFetchedPage(ctx, page.URL)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, page.ID, got.ID)
	assert.Equal(t, page.ParsedText, got.ParsedText)
	assert.Equal(t, HashContent(page.ParsedText), got.ContentHash)

	page.ParsedText = "Updated text"
	require.NoError(t, db.UpsertFetchedPage(ctx, page, time.Hour))

	got, err = db.GetFetchedPageByURL(ctx, page.URL)
	require.NoError(t, err)
	assert.Equal(t, "Updated text", got.ParsedText)
	assert.Equal(t, 1, got.HitCount)
}

func TestIntegration_GetFreshFetchedPage_Expired(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()

	page := &FetchedPage{URL: "https://test.example.com/jobs/expired", ParsedText: "old"}
	require.NoError(t, db.UpsertFetchedPage(ctx, page, time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	got, err := db.GetFreshFetchedPage(ctx, page.URL)
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := db.DeleteExpiredPages(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
}

func TestIntegration_TrimFetchedPages(t *testing.T) {
	db := getTestDB(t)
	ctx := context.Background()
	_, _ = db.pool.Exec(ctx, "DELETE FROM fetched_pages")

	base := time.Now().UTC().Add(-time.Hour)
	for i, path := range []string{"oldest", "middle", "newest"} {
		page := &FetchedPage{
			URL:        "https://test.example.com/trim/" + path,
			ParsedText: path,
			FetchedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.UpsertFetchedPage(ctx, page, time.Hour))
	}

	// A hit makes the oldest page the most recently used.
	_, err := db.GetFreshFetchedPage(ctx, "https://test.example.com/trim/oldest")
	require.NoError(t, err)

	n, err := db.TrimFetchedPages(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	gone, err := db.GetFetchedPageByURL(ctx, "https://test.example.com/trim/middle")
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := db.GetFetchedPageByURL(ctx, "https://test.example.com/trim/oldest")
	require.NoError(t, err)
	assert.NotNil(t, kept)

	n, err = db.TrimFetchedPages(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIntegration_GetFetchedPageByURL_NotFound(t *testing.T) {
	db := getTestDB(t)

	got, err := db.GetFetchedPageByURL(context.Background(), "https://test.example.com/none")
	require.NoError(t, err)
	assert.Nil(t, got)
}
