package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jonathan/job-intel/internal/db"
)

// Store is a shared, persistent second cache level behind the in-memory LRU.
type Store interface {
	Get(ctx context.Context, key string) (*Page, bool, error)
	Put(ctx context.Context, key string, page *Page, ttl time.Duration) error
	Close() error
}

// DefaultPurgeInterval is how often a postgres store drops expired and
// surplus rows.
const DefaultPurgeInterval = 10 * time.Minute

// StoreOptions bounds a persistent store. Redis expires keys itself, so the
// options only apply to postgres.
type StoreOptions struct {
	// MaxEntries caps stored pages, least recently used first out. Zero
	// keeps every unexpired page.
	MaxEntries    int
	PurgeInterval time.Duration
	Logger        *zap.Logger
}

// OpenStore connects to the store named by storeURL. postgres:// URLs use
// the fetched_pages table; redis:// URLs use Redis keys with TTLs. An empty
// URL returns a nil Store.
func OpenStore(ctx context.Context, storeURL string, opts StoreOptions) (Store, error) {
	if storeURL == "" {
		return nil, nil
	}
	u, err := url.Parse(storeURL)
	if err != nil {
		return nil, fmt.Errorf("invalid cache store URL: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
		database, err := db.Connect(ctx, storeURL)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, err
		}
		return NewPostgresStore(ctx, database, opts), nil
	case "redis", "rediss":
		store, err := NewRedisStore(ctx, storeURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported cache store scheme %q", u.Scheme)
	}
}

// pageTable is the part of *db.DB a PostgresStore uses.
type pageTable interface {
	GetFreshFetchedPage(ctx context.Context, pageURL string) (*db.FetchedPage, error)
	UpsertFetchedPage(ctx context.Context, page *db.FetchedPage, ttl time.Duration) error
	DeleteExpiredPages(ctx context.Context) (int64, error)
	TrimFetchedPages(ctx context.Context, maxRows int) (int64, error)
	Close()
}

// PostgresStore keeps pages in the fetched_pages table. Expired and surplus
// rows are purged on open and then every PurgeInterval until Close.
type PostgresStore struct {
	table      pageTable
	maxEntries int
	logger     *zap.Logger

	purgeStop chan struct{}
	purgeDone chan struct{}
	stopOnce  sync.Once
}

// NewPostgresStore wraps an open database, purges it once and starts the
// periodic purge.
func NewPostgresStore(ctx context.Context, database *db.DB, opts StoreOptions) *PostgresStore {
	return newPostgresStore(ctx, database, opts)
}

func newPostgresStore(ctx context.Context, table pageTable, opts StoreOptions) *PostgresStore {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PurgeInterval <= 0 {
		opts.PurgeInterval = DefaultPurgeInterval
	}
	s := &PostgresStore{
		table:      table,
		maxEntries: opts.MaxEntries,
		logger:     opts.Logger,
		purgeStop:  make(chan struct{}),
		purgeDone:  make(chan struct{}),
	}
	s.purgeAndLog(ctx)
	go s.purgeLoop(opts.PurgeInterval)
	return s
}

// Purge deletes expired pages, then trims to MaxEntries. It returns the
// number of rows removed.
func (s *PostgresStore) Purge(ctx context.Context) (int64, error) {
	expired, err := s.table.DeleteExpiredPages(ctx)
	if err != nil {
		return 0, err
	}
	trimmed, err := s.table.TrimFetchedPages(ctx, s.maxEntries)
	if err != nil {
		return expired, err
	}
	return expired + trimmed, nil
}

func (s *PostgresStore) purgeAndLog(ctx context.Context) {
	n, err := s.Purge(ctx)
	if err != nil {
		s.logger.Warn("fetch cache store purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Debug("fetch cache store purged", zap.Int64("rows", n))
	}
}

func (s *PostgresStore) purgeLoop(interval time.Duration) {
	defer close(s.purgeDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			s.purgeAndLog(ctx)
			cancel()
		case <-s.purgeStop:
			return
		}
	}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (*Page, bool, error) {
	row, err := s.table.GetFreshFetchedPage(ctx, key)
	if err != nil || row == nil {
		return nil, false, err
	}
	return &Page{
		URL:       row.URL,
		Text:      row.ParsedText,
		Platform:  Platform(row.Platform),
		FetchedAt: row.FetchedAt,
	}, true, nil
}

func (s *PostgresStore) Put(ctx context.Context, key string, page *Page, ttl time.Duration) error {
	return s.table.UpsertFetchedPage(ctx, &db.FetchedPage{
		URL:        key,
		ParsedText: page.Text,
		Platform:   string(page.Platform),
		FetchedAt:  page.FetchedAt,
	}, ttl)
}

// Close stops the purge loop and closes the database. It is safe to call
// more than once.
func (s *PostgresStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.purgeStop)
		<-s.purgeDone
		s.table.Close()
	})
	return nil
}

// RedisStore keeps pages as JSON values with a Redis TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisStoreFromClient(client), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "jobintel:page:"}
}

func (s *RedisStore) key(k string) string {
	sum := sha256.Sum256([]byte(k))
	return fmt.Sprintf("%s%x", s.prefix, sum[:16])
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Page, bool, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, false, fmt.Errorf("decode cached page: %w", err)
	}
	return &page, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, page *Page, ttl time.Duration) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encode cached page: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
