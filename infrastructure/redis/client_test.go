package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/formfill/infrastructure/redis"
)

func TestNewClient_EmptyAddress(t *testing.T) {
	t.Parallel()

	client, err := redis.NewClient(t.Context(), redis.Config{})

	require.ErrorIs(t, err, redis.ErrEmptyAddress)
	assert.Nil(t, client)
}

func TestNewClient_Connects(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	client, err := redis.NewClient(t.Context(), redis.Config{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Ping(t.Context()).Err())
}

func TestNewClient_PingFailure(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := redis.NewClient(t.Context(), redis.Config{Address: addr})
	require.Error(t, err)
	assert.Nil(t, client)
}

func TestNewClient_CancelledContext(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	client, err := redis.NewClient(ctx, redis.Config{Address: mr.Addr()})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, client)
}
