package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const completionKeyPrefix = "completion:"

// CachedCompleter serves repeated prompts from Redis. Only successful
// completions are stored, and Redis failures never fail a completion.
type CachedCompleter struct {
	next     Completer
	redis    *redis.Client
	ttl      time.Duration
	model    string
	logger   *zap.Logger
	recorder Recorder
}

// NewCachedCompleter wraps next with a Redis cache. model is part of the
// key so switching models does not serve stale answers.
func NewCachedCompleter(next Completer, redisClient *redis.Client, ttl time.Duration, model string, logger *zap.Logger, recorder Recorder) *CachedCompleter {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &CachedCompleter{
		next:     next,
		redis:    redisClient,
		ttl:      ttl,
		model:    model,
		logger:   logger,
		recorder: recorder,
	}
}

// Complete returns the cached content for prompt or asks the wrapped Completer
func (c *CachedCompleter) Complete(ctx context.Context, prompt string) (json.RawMessage, error) {
	key := c.key(prompt)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil && json.Valid(data):
		c.recorder.CacheLookup(true)
		return json.RawMessage(data), nil
	case err == nil:
		c.logger.Warn("discarding corrupt cached completion", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("completion cache read failed", zap.Error(err))
	}
	c.recorder.CacheLookup(false)

	content, err := c.next.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if err := c.redis.Set(ctx, key, []byte(content), c.ttl).Err(); err != nil {
		c.logger.Warn("completion cache write failed", zap.Error(err))
	}
	return content, nil
}

func (c *CachedCompleter) key(prompt string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + prompt))
	return completionKeyPrefix + hex.EncodeToString(sum[:])
}
