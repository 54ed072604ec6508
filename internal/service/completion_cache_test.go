package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/kitchen-assistant/backend/internal/testhelpers"
)

func TestCachedCompleter_Key(t *testing.T) {
	a := NewCachedCompleter(nil, nil, time.Minute, "model-a", zap.NewNop(), nil)
	b := NewCachedCompleter(nil, nil, time.Minute, "model-b", zap.NewNop(), nil)

	assert.Equal(t, a.key("prompt"), a.key("prompt"))
	assert.NotEqual(t, a.key("prompt"), a.key("other prompt"))
	assert.NotEqual(t, a.key("prompt"), b.key("prompt"))
	assert.True(t, len(a.key("prompt")) > len(completionKeyPrefix))
}

func TestCachedCompleter_RedisUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	defer client.Close()

	ctx := context.Background()
	next := &testhelpers.MockCompleter{}
	next.On("Complete", ctx, "prompt").Return(`{"usable_items":[]}`, nil).Twice()
	recorder := &testhelpers.RecordingRecorder{}

	cached := NewCachedCompleter(next, client, time.Minute, "model", zap.NewNop(), recorder)

	for i := 0; i < 2; i++ {
		content, err := cached.Complete(ctx, "prompt")
		require.NoError(t, err)
		assert.JSONEq(t, `{"usable_items":[]}`, string(content))
	}
	next.AssertExpectations(t)
	assert.Equal(t, 2, recorder.CacheMisses)
}

func TestCachedCompleter_Redis(t *testing.T) {
	client := testhelpers.SetupTestRedis(t)
	ctx := context.Background()

	t.Run("should serve repeated prompts from cache", func(t *testing.T) {
		next := &testhelpers.MockCompleter{}
		next.On("Complete", ctx, "cached prompt").Return(`{"compatible_items":["tomato"]}`, nil).Once()
		recorder := &testhelpers.RecordingRecorder{}
		cached := NewCachedCompleter(next, client, time.Minute, "model", zap.NewNop(), recorder)

		first, err := cached.Complete(ctx, "cached prompt")
		require.NoError(t, err)
		second, err := cached.Complete(ctx, "cached prompt")
		require.NoError(t, err)

		assert.JSONEq(t, string(first), string(second))
		next.AssertExpectations(t)
		assert.Equal(t, 1, recorder.CacheHits)
		assert.Equal(t, 1, recorder.CacheMisses)

		ttl, err := client.TTL(ctx, cached.key("cached prompt")).Result()
		require.NoError(t, err)
		assert.True(t, ttl > 0 && ttl <= time.Minute)
	})

	t.Run("should not cache failures", func(t *testing.T) {
		next := &testhelpers.MockCompleter{}
		next.On("Complete", ctx, "failing prompt").Return(nil, errors.New("provider down")).Once()
		next.On("Complete", ctx, "failing prompt").Return(`{}`, nil).Once()
		cached := NewCachedCompleter(next, client, time.Minute, "model", zap.NewNop(), nil)

		_, err := cached.Complete(ctx, "failing prompt")
		require.Error(t, err)

		content, err := cached.Complete(ctx, "failing prompt")
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(content))
		next.AssertExpectations(t)
	})

	t.Run("should replace corrupt entries", func(t *testing.T) {
		next := &testhelpers.MockCompleter{}
		next.On("Complete", ctx, mock.Anything).Return(`{"ok":true}`, nil).Once()
		cached := NewCachedCompleter(next, client, time.Minute, "model", zap.NewNop(), nil)

		require.NoError(t, client.Set(ctx, cached.key("corrupt prompt"), "not json", time.Minute).Err())

		content, err := cached.Complete(ctx, "corrupt prompt")
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(content))

		stored, err := client.Get(ctx, cached.key("corrupt prompt")).Result()
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, stored)
	})
}
