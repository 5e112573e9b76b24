package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/redis/go-redis/v9"
)

// insertScript upserts a hash field and returns the previous value, or nil.
var insertScript = redis.NewScript(`
local prev = redis.call('HGET', KEYS[1], ARGV[1])
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
return prev
`)

// removeScript deletes a hash field and returns the previous value, or nil.
var removeScript = redis.NewScript(`
local prev = redis.call('HGET', KEYS[1], ARGV[1])
if prev then
  redis.call('HDEL', KEYS[1], ARGV[1])
end
return prev
`)

// Redis is a Backend storing each map as one hash at <prefix>:<name>.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps an existing client. Close closes the client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Map(name string) Map {
	return &redisMap{client: r.client, key: r.prefix + ":" + name}
}

func (r *Redis) Close() error {
	return r.client.Close()
}

type redisMap struct {
	client *redis.Client
	key    string
}

func (m *redisMap) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := m.client.HGet(ctx, m.key, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("hget %s/%s: %w", m.key, key, err)
	}
	return v, true, nil
}

func (m *redisMap) Insert(ctx context.Context, key string, value []byte) ([]byte, bool, error) {
	return m.runPrev(ctx, insertScript, "insert", key, value)
}

func (m *redisMap) Remove(ctx context.Context, key string) ([]byte, bool, error) {
	return m.runPrev(ctx, removeScript, "remove", key)
}

func (m *redisMap) runPrev(ctx context.Context, script *redis.Script, op, key string, args ...any) ([]byte, bool, error) {
	res, err := script.Run(ctx, m.client, []string{m.key}, append([]any{key}, args...)...).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s %s/%s: %w", op, m.key, key, err)
	}
	s, ok := res.(string)
	if !ok {
		return nil, false, fmt.Errorf("%s %s/%s: unexpected reply %T", op, m.key, key, res)
	}
	return []byte(s), true, nil
}

func (m *redisMap) Entries(ctx context.Context) (iter.Seq2[string, []byte], error) {
	all, err := m.client.HGetAll(ctx, m.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", m.key, err)
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = []byte(all[k])
	}
	return entrySeq(keys, values), nil
}
