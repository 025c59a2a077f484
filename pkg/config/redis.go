package config

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps store scoped overrides in a redis hash and serves reads from
// memory. Defaults are kept locally and never written to redis.
type RedisStore struct {
	StoreCode string
	Notifier  ChangeNotifier
	client    *redis.Client
	mu        sync.RWMutex
	defaults  map[string]string
	values    map[string]string
}

func NewRedisStore(addr, password string, db int, storeCode string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreWithClient(rdb, storeCode)
}

func NewRedisStoreWithClient(client *redis.Client, storeCode string) *RedisStore {
	return &RedisStore{
		StoreCode: storeCode,
		client:    client,
		defaults:  make(map[string]string),
		values:    make(map[string]string),
	}
}

func (s *RedisStore) key() string {
	return fmt.Sprintf("seo:config:%s", s.StoreCode)
}

func (s *RedisStore) Value(path string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[path]; ok {
		return v
	}
	return s.defaults[path]
}

func (s *RedisStore) SetDefault(path, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.defaults[path]; !ok {
		s.defaults[path] = value
	}
}

// Reload replaces the cached overrides with the content of the redis hash.
func (s *RedisStore) Reload(ctx context.Context) error {
	values, err := s.client.HGetAll(ctx, s.key()).Result()
	if err != nil {
		return fmt.Errorf("load config for store %s: %w", s.StoreCode, err)
	}
	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

func (s *RedisStore) Set(ctx context.Context, path, value string) error {
	if !IsKnownPath(path) {
		return fmt.Errorf("%w: %s", ErrUnknownPath, path)
	}
	if err := s.client.HSet(ctx, s.key(), path, value).Err(); err != nil {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	s.mu.Lock()
	s.values[path] = value
	s.mu.Unlock()
	s.notify(Change{StoreCode: s.StoreCode, Path: path, Value: value})
	return nil
}

// notify tells other nodes about a saved change. The change is already stored,
// so a failed notification is logged and the other nodes pick it up on reload.
func (s *RedisStore) notify(change Change) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.ConfigChanged(change); err != nil {
		zap.L().Warn("failed to notify config change",
			zap.String("store", change.StoreCode),
			zap.String("path", change.Path),
			zap.Error(err))
	}
}

// Reset removes the override for path so the default applies again.
func (s *RedisStore) Reset(ctx context.Context, path string) error {
	if err := s.client.HDel(ctx, s.key(), path).Err(); err != nil {
		return fmt.Errorf("reset config %s: %w", path, err)
	}
	s.mu.Lock()
	delete(s.values, path)
	value := s.defaults[path]
	s.mu.Unlock()
	s.notify(Change{StoreCode: s.StoreCode, Path: path, Value: value})
	return nil
}

// All returns the effective configuration, overrides applied on top of defaults.
func (s *RedisStore) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := maps.Clone(s.defaults)
	maps.Copy(result, s.values)
	return result
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
