package dedup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"tendertriage/types"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by single-record lookups when no tier matches.
var ErrNotFound = errors.New("no record found for keys")

// RecordStore is the narrow persistence interface the triage core consumes.
// The core never manages the store's connection lifecycle; it is injected at
// construction.
type RecordStore interface {
	// BulkReadAnalyzed returns every persisted, already-analyzed notice in one
	// read. A failed read must surface as an error — silently returning an
	// empty slice would cause every prior notice to be re-created.
	BulkReadAnalyzed(ctx context.Context) ([]types.StoredRecord, error)

	// FindByCompositeOrSecondaryKey is the single-record (non-batch) lookup
	// path. It probes the composite key first, then the secondary key, and
	// returns ErrNotFound when neither hits.
	FindByCompositeOrSecondaryKey(ctx context.Context, keys types.DedupKeys) (*types.StoredRecord, types.MatchStrategy, error)
}

const (
	recordKeyPrefix   = "notice:"
	compositeIndexKey = "notice:idx:composite"
	secondaryIndexKey = "notice:idx:secondary"
	uuidIndexKey      = "notice:idx:uuid"

	storeOpTimeout = 5 * time.Second
	scanBatchSize  = 500
)

// RedisConfig configures the Redis-backed record store.
type RedisConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
}

// RedisStore persists triaged notices as JSON values under notice:<id>, with
// hash indexes per key tier for the single-record lookup path.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis store and verifies connectivity.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Ping to verify
	ctx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &RedisStore{client: client}, nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// BulkReadAnalyzed scans all notice:<id> values in one pass. Malformed values
// are logged and skipped; scan or fetch failures propagate so the caller can
// abort instead of triaging against an empty index.
func (s *RedisStore) BulkReadAnalyzed(ctx context.Context) ([]types.StoredRecord, error) {
	var records []types.StoredRecord
	var cursor uint64

	for {
		keys, next, err := s.client.Scan(ctx, cursor, recordKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan notices: %w", err)
		}

		// The index hashes share the notice: prefix; skip them.
		dataKeys := keys[:0]
		for _, k := range keys {
			if k != compositeIndexKey && k != secondaryIndexKey && k != uuidIndexKey {
				dataKeys = append(dataKeys, k)
			}
		}

		if len(dataKeys) > 0 {
			values, err := s.client.MGet(ctx, dataKeys...).Result()
			if err != nil {
				return nil, fmt.Errorf("failed to read notices: %w", err)
			}
			for i, v := range values {
				raw, ok := v.(string)
				if !ok || raw == "" {
					continue
				}
				var rec types.StoredRecord
				if err := json.Unmarshal([]byte(raw), &rec); err != nil {
					log.Printf("Warning: skipping malformed stored notice %s: %v", dataKeys[i], err)
					continue
				}
				records = append(records, rec)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return records, nil
}

// FindByCompositeOrSecondaryKey probes the composite index, then the
// secondary index, returning the stored record for the first tier that hits.
func (s *RedisStore) FindByCompositeOrSecondaryKey(ctx context.Context, keys types.DedupKeys) (*types.StoredRecord, types.MatchStrategy, error) {
	if keys.CompositeKey != "" {
		rec, err := s.findByIndex(ctx, compositeIndexKey, keys.CompositeKey)
		if err == nil {
			return rec, types.MatchComposite, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, "", err
		}
	}

	if keys.SecondaryKey != "" {
		rec, err := s.findByIndex(ctx, secondaryIndexKey, keys.SecondaryKey)
		if err == nil {
			return rec, types.MatchSecondary, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, "", err
		}
	}

	return nil, "", ErrNotFound
}

// SaveAnalyzed persists a triaged notice and its key index entries. Used by
// the orchestration layer after a CREATE or RECTIFY verdict.
func (s *RedisStore) SaveAnalyzed(ctx context.Context, rec types.StoredRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("stored record must have an id")
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal notice %s: %w", rec.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, recordKeyPrefix+rec.ID, b, 0)
	if rec.UUIDKey != "" {
		pipe.HSet(ctx, uuidIndexKey, rec.UUIDKey, rec.ID)
	}
	if rec.CompositeKey != "" {
		pipe.HSet(ctx, compositeIndexKey, rec.CompositeKey, rec.ID)
	}
	if rec.SecondaryKey != "" {
		pipe.HSet(ctx, secondaryIndexKey, rec.SecondaryKey, rec.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to persist notice %s: %w", rec.ID, err)
	}
	return nil
}

// Delete removes a notice and its index entries, e.g. after a CANCEL verdict.
func (s *RedisStore) Delete(ctx context.Context, rec types.StoredRecord) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, recordKeyPrefix+rec.ID)
	if rec.UUIDKey != "" {
		pipe.HDel(ctx, uuidIndexKey, rec.UUIDKey)
	}
	if rec.CompositeKey != "" {
		pipe.HDel(ctx, compositeIndexKey, rec.CompositeKey)
	}
	if rec.SecondaryKey != "" {
		pipe.HDel(ctx, secondaryIndexKey, rec.SecondaryKey)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Get fetches one stored notice by id.
func (s *RedisStore) Get(ctx context.Context, id string) (*types.StoredRecord, error) {
	raw, err := s.client.Get(ctx, recordKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec types.StoredRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("malformed stored notice %s: %w", id, err)
	}
	return &rec, nil
}

func (s *RedisStore) findByIndex(ctx context.Context, indexKey, key string) (*types.StoredRecord, error) {
	id, err := s.client.HGet(ctx, indexKey, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
