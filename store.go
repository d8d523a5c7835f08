package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/redis/go-redis/v9"
)

// This file contains the preference persistence layer. A KVStore is the
// external collaborator: a synchronous, string-keyed text store. The
// PreferenceStore sits above it and owns the JSON encoding plus the
// failure contract: storage and serialization errors never propagate past
// this boundary, callers only ever see boolean success or an absent value.

// keyPrefix namespaces every key this application writes, so Clear can wipe
// preferences without touching anything else sharing the store.
const keyPrefix = "skycast:"

type KVStore interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// RedisStore is the default KVStore backend.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
	}
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, keyPrefix+key, value, 0).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

// Clear enumerates the namespaced keys and deletes them in one round trip.
func (s *RedisStore) Clear(ctx context.Context) error {
	keys, err := s.client.Keys(ctx, keyPrefix+"*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// MemcachedStore is an alternative KVStore backend, selected with
// PREFS_BACKEND=memcached.
type MemcachedStore struct {
	client *memcache.Client
}

// NewMemcachedStore creates a MemcachedStore. addrs is a comma-separated list
// (e.g. "localhost:11211" or "host1:11211,host2:11211").
func NewMemcachedStore(addrs string, timeout time.Duration) *MemcachedStore {
	client := memcache.New(parseAddrs(addrs)...)
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &MemcachedStore{client: client}
}

func parseAddrs(s string) []string {
	var out []string
	for _, a := range splitAndTrim(s, ",") {
		if a != "" {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		out = []string{"localhost:11211"}
	}
	return out
}

func (s *MemcachedStore) Set(ctx context.Context, key, value string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return s.client.Set(&memcache.Item{
		Key:   keyPrefix + key,
		Value: []byte(value),
	})
}

func (s *MemcachedStore) Get(ctx context.Context, key string) (string, bool, error) {
	if ctx.Err() != nil {
		return "", false, ctx.Err()
	}
	item, err := s.client.Get(keyPrefix + key)
	if err == memcache.ErrCacheMiss {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(item.Value), true, nil
}

func (s *MemcachedStore) Remove(ctx context.Context, key string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	err := s.client.Delete(keyPrefix + key)
	if err == memcache.ErrCacheMiss {
		return nil
	}
	return err
}

// Clear flushes everything; memcached has no key enumeration, so the
// namespace cannot be wiped selectively.
func (s *MemcachedStore) Clear(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return s.client.FlushAll()
}

func (s *MemcachedStore) Ping() error {
	return s.client.Ping()
}

// PreferenceStore persists user preferences as JSON text in a KVStore.
// All operations are best-effort: failures are logged and reported as a
// false return or an absent value, never as an error to the caller.
type PreferenceStore struct {
	kv     KVStore
	logger *slog.Logger
	now    func() time.Time
}

func NewPreferenceStore(kv KVStore, logger *slog.Logger) *PreferenceStore {
	return &PreferenceStore{
		kv:     kv,
		logger: logger,
		now:    time.Now,
	}
}

// Save serializes value and writes it under key. Returns false on any
// serialization or storage error.
func (s *PreferenceStore) Save(ctx context.Context, key string, value any) bool {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("could not serialize preference", "key", key, "error", err)
		return false
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		s.logger.Warn("could not store preference", "key", key, "error", err)
		return false
	}
	return true
}

// Load reads key and parses it into dest. Returns false when the key is
// absent or on any storage or parse error; dest is untouched in that case.
func (s *PreferenceStore) Load(ctx context.Context, key string, dest any) bool {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("could not read preference", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		s.logger.Warn("could not parse stored preference", "key", key, "error", err)
		return false
	}
	return true
}

// Remove deletes key. Returns false on storage error.
func (s *PreferenceStore) Remove(ctx context.Context, key string) bool {
	if err := s.kv.Remove(ctx, key); err != nil {
		s.logger.Warn("could not remove preference", "key", key, "error", err)
		return false
	}
	return true
}

// Clear wipes the whole preference namespace. Returns false on storage error.
func (s *PreferenceStore) Clear(ctx context.Context) bool {
	if err := s.kv.Clear(ctx); err != nil {
		s.logger.Warn("could not clear preferences", "error", err)
		return false
	}
	return true
}
