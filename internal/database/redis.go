package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/natindo/CountdownBot/internal/models"
)

const minRedisTTL = time.Minute

// Удаляет ключ, только если id в сохранённом JSON совпадает с ARGV[1].
var deleteExactScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
  return 0
end
if cjson.decode(v)['id'] == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisStore хранит каждое событие отдельным JSON-значением.
// Ключи живут до дедлайна плюс grace, поэтому чистку делает сам Redis.
type RedisStore struct {
	client *redis.Client
	grace  time.Duration
}

func NewRedisStore(client *redis.Client, grace time.Duration) *RedisStore {
	return &RedisStore{client: client, grace: grace}
}

func redisKey(key models.EventKey) string {
	return fmt.Sprintf("countdown:event:%d:%s", key.ChatID, key.Name)
}

func (r *RedisStore) ttl(deadline time.Time) time.Duration {
	ttl := time.Until(deadline.Add(r.grace))
	if ttl < minRedisTTL {
		ttl = minRedisTTL
	}
	return ttl
}

func (r *RedisStore) Insert(ctx context.Context, ev models.Event, overwrite bool) error {
	key := redisKey(ev.Key())
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if overwrite {
		if err := r.client.Set(ctx, key, data, r.ttl(ev.Deadline)).Err(); err != nil {
			return fmt.Errorf("redis SET failed: %w", err)
		}
		return nil
	}

	ok, err := r.client.SetNX(ctx, key, data, r.ttl(ev.Deadline)).Result()
	if err != nil {
		return fmt.Errorf("redis SETNX failed: %w", err)
	}
	if !ok {
		return ErrDuplicate
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, key models.EventKey) (*models.Event, error) {
	data, err := r.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}

	var ev models.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &ev, nil
}

func (r *RedisStore) Delete(ctx context.Context, key models.EventKey) (bool, error) {
	n, err := r.client.Del(ctx, redisKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis DEL failed: %w", err)
	}
	return n > 0, nil
}

func (r *RedisStore) DeleteExact(ctx context.Context, ev models.Event) (bool, error) {
	n, err := deleteExactScript.Run(ctx, r.client, []string{redisKey(ev.Key())}, ev.ID.String()).Int64()
	if err != nil {
		return false, fmt.Errorf("redis compare-and-delete failed: %w", err)
	}
	return n > 0, nil
}

// PurgeExpired ничего не делает: просроченные ключи удаляются по TTL.
func (r *RedisStore) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}
