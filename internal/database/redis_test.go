package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/kitchen-assistant/backend/internal/testhelpers"
)

func TestNewRedisClient_InvalidURL(t *testing.T) {
	client, err := NewRedisClient(context.Background(), "not-a-redis-url")
	assert.Nil(t, client)
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	client, err := NewRedisClient(context.Background(), "redis://127.0.0.1:1/0")
	assert.Nil(t, client)
	assert.ErrorContains(t, err, "failed to connect to Redis at 127.0.0.1:1")
}

func TestNewRedisClient(t *testing.T) {
	existing := testhelpers.SetupTestRedis(t)

	client, err := NewRedisClient(context.Background(), "redis://"+existing.Options().Addr+"/1")
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 1, client.Options().DB)
	assert.NoError(t, client.Ping(context.Background()).Err())
}
