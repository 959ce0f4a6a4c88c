package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	svc := NewServiceWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = svc.Close() })
	return svc, mr
}

func TestSetGetDelete(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "k", "v", time.Minute))
	val, err := svc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	ok, err := svc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Delete(ctx, "k"))
	_, err = svc.Get(ctx, "k")
	assert.ErrorIs(t, err, Nil)

	ok, err = svc.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPublish(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	listener := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer listener.Close()
	sub := listener.Subscribe(ctx, "events")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Publish(ctx, "events", "ping"))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ping", msg.Payload)
}

func TestNewServiceWithoutAddress(t *testing.T) {
	assert.Nil(t, NewService("", ""))
}

func TestNewServiceConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	svc := NewService(mr.Addr(), "")
	require.NotNil(t, svc)
	defer svc.Close()

	assert.NoError(t, svc.Ping(context.Background()))
}

func TestNewServiceUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	assert.Nil(t, NewService(addr, ""))
}
