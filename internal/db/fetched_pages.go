package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DefaultPageCacheTTL is how long a fetched page stays usable when no TTL is given.
const DefaultPageCacheTTL = time.Hour

// GetFetchedPageByURL retrieves a cached page by URL, fresh or not.
// Returns nil, nil when the URL has never been stored.
func (db *DB) GetFetchedPageByURL(ctx context.Context, pageURL string) (*FetchedPage, error) {
	var p FetchedPage
	err := db.pool.QueryRow(ctx,
		`SELECT id, url, parsed_text, content_hash, platform, fetched_at, expires_at, hit_count, last_hit_at
		 FROM fetched_pages WHERE url = $1`,
		pageURL,
	).Scan(&p.ID, &p.URL, &p.ParsedText, &p.ContentHash, &p.Platform,
		&p.FetchedAt, &p.ExpiresAt, &p.HitCount, &p.LastHitAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fetched page: %w", err)
	}
	return &p, nil
}

// GetFreshFetchedPage retrieves a page only if it has not expired, recording the hit.
func (db *DB) GetFreshFetchedPage(ctx context.Context, pageURL string) (*FetchedPage, error) {
	page, err := db.GetFetchedPageByURL(ctx, pageURL)
	if err != nil || page == nil {
		return nil, err
	}
	if !page.IsFresh(time.Now()) {
		return nil, nil
	}

	_, _ = db.pool.Exec(ctx,
		`UPDATE fetched_pages SET hit_count = hit_count + 1, last_hit_at = NOW() WHERE id = $1`,
		page.ID)
	return page, nil
}

// UpsertFetchedPage stores a page, replacing any previous copy of the same URL.
func (db *DB) UpsertFetchedPage(ctx context.Context, page *FetchedPage, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultPageCacheTTL
	}
	if page.ID == uuid.Nil {
		page.ID = uuid.New()
	}
	if page.FetchedAt.IsZero() {
		page.FetchedAt = time.Now().UTC()
	}
	if page.Platform == "" {
		page.Platform = "unknown"
	}
	page.ContentHash = HashContent(page.ParsedText)
	page.ExpiresAt = time.Now().UTC().Add(ttl)

	err := db.pool.QueryRow(ctx,
		`INSERT INTO fetched_pages (id, url, parsed_text, content_hash, platform, fetched_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (url) DO UPDATE SET
		     parsed_text = $3,
		     content_hash = $4,
		     platform = $5,
		     fetched_at = $6,
		     expires_at = $7
		 RETURNING id`,
		page.ID, page.URL, page.ParsedText, page.ContentHash, page.Platform, page.FetchedAt, page.ExpiresAt,
	).Scan(&page.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert fetched page: %w", err)
	}
	return nil
}

// DeleteExpiredPages removes expired rows and returns how many were deleted.
func (db *DB) DeleteExpiredPages(ctx context.Context) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM fetched_pages WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired pages: %w", err)
	}
	return tag.RowsAffected(), nil
}

// TrimFetchedPages keeps the maxRows most recently used pages and deletes the
// rest. A page's last use is its last hit, or its fetch when never hit.
func (db *DB) TrimFetchedPages(ctx context.Context, maxRows int) (int64, error) {
	if maxRows <= 0 {
		return 0, nil
	}
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM fetched_pages WHERE id IN (
		     SELECT id FROM fetched_pages
		     ORDER BY COALESCE(last_hit_at, fetched_at) DESC
		     OFFSET $1)`,
		maxRows)
	if err != nil {
		return 0, fmt.Errorf("failed to trim fetched pages: %w", err)
	}
	return tag.RowsAffected(), nil
}
