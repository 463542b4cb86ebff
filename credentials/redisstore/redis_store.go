package redisstore

import (
	"context"

	"github.com/jrsteele09/go-auth-client/credentials"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ credentials.Store = (*RedisStore)(nil)

// RedisStore keeps the bundle for one origin in a Redis hash whose fields are the
// persisted key names. HSET of several fields and DEL of the hash are single commands,
// so Save and Clear are atomic.
type RedisStore struct {
	client *redis.Client
	key    string
}

// New connects to redisURL and checks the connection. An unreachable server is
// reported as ErrStoreUnavailable.
func New(ctx context.Context, redisURL, keyPrefix, origin string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "redisstore.New ParseURL")
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(autherrors.ErrStoreUnavailable, "redisstore.New Ping %s: %v", opt.Addr, err)
	}
	return NewWithClient(client, keyPrefix, origin), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, keyPrefix, origin string) *RedisStore {
	return &RedisStore{
		client: client,
		key:    keyPrefix + origin,
	}
}

// Key returns the hash key holding the bundle
func (s *RedisStore) Key() string {
	return s.key
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Load(ctx context.Context) (credentials.Bundle, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return credentials.Bundle{}, errors.Wrap(err, "RedisStore.Load HGetAll")
	}
	return credentials.BundleFromFields(fields), nil
}

func (s *RedisStore) Save(ctx context.Context, b credentials.Bundle) error {
	fields := hashFields(b)
	if len(fields) == 0 {
		return nil
	}
	if err := s.client.HSet(ctx, s.key, fields).Err(); err != nil {
		return errors.Wrap(err, "RedisStore.Save HSet")
	}
	return nil
}

// Replace deletes the hash and writes b inside one MULTI/EXEC
func (s *RedisStore) Replace(ctx context.Context, b credentials.Bundle) error {
	fields := hashFields(b)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(fields) > 0 {
			pipe.HSet(ctx, s.key, fields)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "RedisStore.Replace TxPipelined")
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Wrap(err, "RedisStore.Clear Del")
	}
	return nil
}

func hashFields(b credentials.Bundle) map[string]interface{} {
	fields := make(map[string]interface{}, 3)
	for k, v := range b.Fields() {
		fields[k] = v
	}
	return fields
}
