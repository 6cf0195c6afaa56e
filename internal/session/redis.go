package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the session in Redis under namespaced keys, for shared
// terminals and server-rendered deployments where the session outlives a
// single process. Save and Clear go through a pipeline so the three keys
// change as one batch.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore builds a Redis-backed store. The namespace keeps multiple
// installations apart on a shared instance.
func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) key(k string) string {
	return s.namespace + ":" + k
}

func (s *RedisStore) Save(ctx context.Context, profile UserProfile, token string) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(KeyUser), string(raw), 0)
	pipe.Set(ctx, s.key(KeyToken), token, 0)
	pipe.Set(ctx, s.key(KeyLoggedIn), flagTrue, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Profile(ctx context.Context) (*UserProfile, error) {
	raw, err := s.client.Get(ctx, s.key(KeyUser)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return decodeProfile([]byte(raw)), nil
}

func (s *RedisStore) Token(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key(KeyToken)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}

func (s *RedisStore) FlagSet(ctx context.Context) (bool, error) {
	flag, err := s.client.Get(ctx, s.key(KeyLoggedIn)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("read login flag: %w", err)
	}
	return flag == flagTrue, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(KeyUser))
	pipe.Del(ctx, s.key(KeyToken))
	pipe.Del(ctx, s.key(KeyLoggedIn))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *RedisStore) UpdateProfile(ctx context.Context, patch ProfilePatch) error {
	current, err := s.Profile(ctx)
	if err != nil || current == nil {
		return err
	}
	raw, err := json.Marshal(current.Apply(patch))
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(KeyUser), string(raw), 0).Err(); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
