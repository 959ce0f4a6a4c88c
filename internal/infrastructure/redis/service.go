package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Nil is returned by Get when the key does not exist
const Nil = redis.Nil

type Service struct {
	client *redis.Client
}

// NewService connects to addr. An empty addr means Redis is not configured and
// nil is returned.
func NewService(addr, password string) *Service {
	if addr == "" {
		log.Warn().Msg("Redis URL not configured - service will be unavailable")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Error().
			Err(err).
			Str("addr", addr).
			Msg("Failed to establish Redis connection")
		_ = client.Close()
		return nil
	}

	log.Info().Str("addr", addr).Msg("Redis connection established")
	return &Service{client: client}
}

// NewServiceWithClient wraps an existing client
func NewServiceWithClient(client *redis.Client) *Service {
	return &Service{client: client}
}

// Set stores a value in Redis with an optional expiration
func (s *Service) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := s.client.Set(ctx, key, value, expiration).Err(); err != nil {
		log.Error().
			Err(err).
			Str("key", key).
			Dur("expiration", expiration).
			Msg("Critical Redis SET operation failed")
		return err
	}
	return nil
}

// Get retrieves a value from Redis
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil && err != redis.Nil {
		log.Error().
			Err(err).
			Str("key", key).
			Msg("Critical Redis GET operation failed")
		return "", err
	}
	return val, err
}

// Exists reports whether key is present
func (s *Service) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		log.Error().
			Err(err).
			Str("key", key).
			Msg("Redis EXISTS operation failed")
		return false, err
	}
	return n > 0, nil
}

// Delete removes a key from Redis
func (s *Service) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// Publish sends message on channel
func (s *Service) Publish(ctx context.Context, channel string, message interface{}) error {
	if err := s.client.Publish(ctx, channel, message).Err(); err != nil {
		log.Error().
			Err(err).
			Str("channel", channel).
			Msg("Redis PUBLISH operation failed")
		return err
	}
	return nil
}

// Ping checks if Redis is accessible
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Service) Close() error {
	return s.client.Close()
}
