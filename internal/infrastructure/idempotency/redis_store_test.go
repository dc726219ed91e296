package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	keys   map[string]time.Duration
	failOn error
}

func (f *fakeRedis) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	if f.failOn != nil {
		return redis.NewIntResult(0, f.failOn)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, _ interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.failOn != nil {
		return redis.NewStatusResult("", f.failOn)
	}
	f.keys[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestSeenAfterMark(t *testing.T) {
	rdb := &fakeRedis{keys: map[string]time.Duration{}}
	s := &Store{rdb: rdb, ttl: 24 * time.Hour}
	key := SettlementKey("aa11")

	seen, err := s.Seen(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, s.Mark(context.Background(), key))
	assert.Equal(t, 24*time.Hour, rdb.keys["case:settled:aa11"])

	seen, err = s.Seen(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestRedisErrorsPropagate(t *testing.T) {
	s := &Store{rdb: &fakeRedis{failOn: errors.New("connection refused")}, ttl: time.Hour}

	_, err := s.Seen(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, s.Mark(context.Background(), "k"))
}
