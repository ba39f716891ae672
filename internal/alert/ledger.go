package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/yourusername/arb-scanner/internal/config"
	"github.com/yourusername/arb-scanner/internal/repository"
)

// Ledger remembers which opportunity fingerprints have already been alerted
type Ledger interface {
	IsSent(ctx context.Context, fingerprint string) (bool, error)
	MarkSent(ctx context.Context, fingerprint string) error
}

// Pruner is implemented by ledgers that expire entries explicitly
type Pruner interface {
	Prune(ctx context.Context) (int64, error)
}

// MemoryLedger keeps fingerprints in process memory with a TTL
type MemoryLedger struct {
	cache *cache.Cache
}

// NewMemoryLedger creates an in-memory ledger
func NewMemoryLedger(ttl time.Duration) *MemoryLedger {
	cleanup := ttl
	if cleanup <= 0 || cleanup > 10*time.Minute {
		cleanup = 10 * time.Minute
	}
	return &MemoryLedger{cache: cache.New(ttl, cleanup)}
}

// IsSent reports whether the fingerprint is present and unexpired
func (l *MemoryLedger) IsSent(_ context.Context, fingerprint string) (bool, error) {
	_, found := l.cache.Get(fingerprint)
	return found, nil
}

// MarkSent records the fingerprint with the ledger's default TTL
func (l *MemoryLedger) MarkSent(_ context.Context, fingerprint string) error {
	l.cache.Set(fingerprint, time.Now().UTC(), cache.DefaultExpiration)
	return nil
}

// PostgresLedger stores fingerprints in the alerts_sent table
type PostgresLedger struct {
	repo repository.AlertRepository
	ttl  time.Duration
}

// NewPostgresLedger creates a ledger backed by the alert repository
func NewPostgresLedger(repo repository.AlertRepository, ttl time.Duration) *PostgresLedger {
	return &PostgresLedger{repo: repo, ttl: ttl}
}

// IsSent reports whether the fingerprint has a ledger row
func (l *PostgresLedger) IsSent(ctx context.Context, fingerprint string) (bool, error) {
	return l.repo.IsSent(ctx, fingerprint)
}

// MarkSent inserts the fingerprint; duplicates are ignored
func (l *PostgresLedger) MarkSent(ctx context.Context, fingerprint string) error {
	return l.repo.MarkSent(ctx, fingerprint)
}

// Prune deletes rows older than the TTL. A zero TTL keeps everything.
func (l *PostgresLedger) Prune(ctx context.Context) (int64, error) {
	if l.ttl <= 0 {
		return 0, nil
	}
	return l.repo.DeleteOlderThan(ctx, time.Now().Add(-l.ttl))
}

// RedisLedger stores fingerprints as expiring Redis keys
type RedisLedger struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisLedger creates a Redis-backed ledger
func NewRedisLedger(client redis.UniversalClient, ttl time.Duration) *RedisLedger {
	return &RedisLedger{client: client, ttl: ttl}
}

// RedisKey returns the key used for a fingerprint
func RedisKey(fingerprint string) string {
	return "arb:alerted:" + fingerprint
}

// IsSent reports whether the fingerprint key exists
func (l *RedisLedger) IsSent(ctx context.Context, fingerprint string) (bool, error) {
	n, err := l.client.Exists(ctx, RedisKey(fingerprint)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check redis ledger: %w", err)
	}
	return n > 0, nil
}

// MarkSent sets the fingerprint key with the ledger TTL
func (l *RedisLedger) MarkSent(ctx context.Context, fingerprint string) error {
	sentAt := time.Now().UTC().Format(time.RFC3339)
	if err := l.client.Set(ctx, RedisKey(fingerprint), sentAt, l.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark redis ledger: %w", err)
	}
	return nil
}

// NewLedger builds the ledger selected by alerts.dedup_backend
func NewLedger(cfg *config.Config, alerts repository.AlertRepository, client redis.UniversalClient) (Ledger, error) {
	switch cfg.Alerts.DedupBackend {
	case config.DedupBackendMemory:
		return NewMemoryLedger(cfg.DedupTTL()), nil
	case config.DedupBackendRedis:
		if client == nil {
			return nil, fmt.Errorf("redis dedup backend requires a redis client")
		}
		return NewRedisLedger(client, cfg.DedupTTL()), nil
	case config.DedupBackendPostgres, "":
		if alerts == nil {
			return nil, fmt.Errorf("postgres dedup backend requires an alert repository")
		}
		return NewPostgresLedger(alerts, cfg.DedupTTL()), nil
	default:
		return nil, fmt.Errorf("unknown dedup backend: %s", cfg.Alerts.DedupBackend)
	}
}

// NewRedisClient parses a redis:// URL into a client
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}
