package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/aleister1102/certwatch/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// DefaultRedisKey is the hash holding one JSON-encoded OwnerEntry per owner.
	DefaultRedisKey = "certwatch:registry"

	maxUpdateAttempts = 5
)

// RedisStore keeps the registry in a Redis hash, field = owner, value = OwnerEntry JSON.
// Update uses WATCH plus a MULTI/EXEC pipeline so concurrent writers from other
// processes never lose each other's changes.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	logger zerolog.Logger
	mutex  sync.Mutex
}

// NewRedisStore creates a store on client under key (DefaultRedisKey when empty).
func NewRedisStore(client redis.UniversalClient, key string, logger zerolog.Logger) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{
		client: client,
		key:    key,
		logger: logger.With().Str("component", "RedisRegistryStore").Str("key", key).Logger(),
	}
}

// Load reads every owner entry of the hash.
func (s *RedisStore) Load(ctx context.Context) (models.Registry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.read(ctx, s.client)
}

// Save replaces the hash contents in one transaction.
func (s *RedisStore) Save(ctx context.Context, reg models.Registry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	fields, err := encodeFields(reg)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(fields) > 0 {
			pipe.HSet(ctx, s.key, fields)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save registry to redis: %w", err)
	}
	return nil
}

// Update applies fn under optimistic locking, retrying when another writer races us.
func (s *RedisStore) Update(ctx context.Context, fn func(reg models.Registry) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	txf := func(tx *redis.Tx) error {
		reg, err := s.read(ctx, tx)
		if err != nil {
			return err
		}
		if err := fn(reg); err != nil {
			return err
		}
		fields, err := encodeFields(reg)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.key)
			if len(fields) > 0 {
				pipe.HSet(ctx, s.key, fields)
			}
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, s.key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		s.logger.Debug().Int("attempt", attempt).Msg("Registry changed concurrently, retrying update")
	}
	return fmt.Errorf("registry update aborted after %d conflicting attempts", maxUpdateAttempts)
}

// hashReader is satisfied by both the client and a WATCH transaction.
type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func (s *RedisStore) read(ctx context.Context, c hashReader) (models.Registry, error) {
	raw, err := c.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read registry from redis: %w", err)
	}

	reg := make(models.Registry, len(raw))
	for owner, value := range raw {
		var entry models.OwnerEntry
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode registry entry for owner %s: %w", owner, err)
		}
		reg[models.Owner(owner)] = &entry
	}
	return reg, nil
}

func encodeFields(reg models.Registry) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(reg))
	for owner, entry := range reg {
		if entry == nil {
			entry = &models.OwnerEntry{Targets: []models.Target{}}
		}
		if entry.Targets == nil {
			entry.Targets = []models.Target{}
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("failed to encode registry entry for owner %s: %w", owner, err)
		}
		fields[owner.String()] = string(data)
	}
	return fields, nil
}
