package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores records in Redis so cooperating processes share one session.
type RedisBackend struct {
	client *redis.Client
	prefix string
	owned  bool
}

// NewRedisClient returns a go-redis client for url (e.g. redis://localhost:6379/0)
// after checking the server answers.
func NewRedisClient(url string) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("credstore: empty redis url")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("credstore: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("credstore: ping redis: %w", err)
	}
	return client, nil
}

// NewRedisBackend connects to url and stores keys under "sessionkit:<namespace>:".
func NewRedisBackend(url, namespace string) (*RedisBackend, error) {
	client, err := NewRedisClient(url)
	if err != nil {
		return nil, err
	}
	b := NewRedisBackendWithClient(client, namespace)
	b.owned = true
	return b, nil
}

// NewRedisBackendWithClient uses an existing client. Close leaves the client open.
func NewRedisBackendWithClient(client *redis.Client, namespace string) *RedisBackend {
	if namespace == "" {
		namespace = "default"
	}
	return &RedisBackend{client: client, prefix: "sessionkit:" + namespace + ":"}
}

// Load returns the record stored under key.
func (r *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return v, err
}

// Save stores value under key without expiry; the server decides token lifetime.
func (r *RedisBackend) Save(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

// Delete removes the record.
func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Close closes the client if the backend created it.
func (r *RedisBackend) Close() error {
	if r.owned {
		return r.client.Close()
	}
	return nil
}
