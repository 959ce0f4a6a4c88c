package credential

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/office671/nawader/internal/infrastructure/redis"
)

const (
	SelectedKey     = "nawader:credential:selected"
	ReselectChannel = "nawader:credential:reselect"
)

// Host is the embedding environment's credential capability. A nil Host means
// the capability is absent, which is a valid configuration.
type Host interface {
	HasSelectedCredential(ctx context.Context) (bool, error)
	RequestCredentialSelection(ctx context.Context) error
}

// Store is the subset of the Redis service the host needs
type Store interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Publish(ctx context.Context, channel string, message interface{}) error
}

var _ Store = (*redis.Service)(nil)

// RedisHost keeps a "credential selected" marker in Redis and announces
// reselection requests on a pub/sub channel for the host UI to pick up.
type RedisHost struct {
	store Store
}

func NewRedisHost(store Store) *RedisHost {
	return &RedisHost{store: store}
}

func (h *RedisHost) HasSelectedCredential(ctx context.Context) (bool, error) {
	return h.store.Exists(ctx, SelectedKey)
}

func (h *RedisHost) RequestCredentialSelection(ctx context.Context) error {
	if err := h.store.Delete(ctx, SelectedKey); err != nil {
		return err
	}
	if err := h.store.Publish(ctx, ReselectChannel, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	log.Info().Str("channel", ReselectChannel).Msg("Credential reselection requested")
	return nil
}

// MarkSelected records that the host has a credential selected
func (h *RedisHost) MarkSelected(ctx context.Context) error {
	return h.store.Set(ctx, SelectedKey, time.Now().UTC().Format(time.RFC3339), 0)
}
