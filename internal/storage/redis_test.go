package storage

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisStore_RequiresAddr(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{})
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestNewRedisStoreWithClient_Prefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	assert.Equal(t, DefaultRedisPrefix, NewRedisStoreWithClient(client, "").prefix)
	assert.Equal(t, "branch-a:", NewRedisStoreWithClient(client, "branch-a:").prefix)
}

func TestRedisStore_ValidatesKeys(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	store := NewRedisStoreWithClient(client, "")
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	_, _, err := store.Get(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyString)

	err = store.Set(ctx, "", "v")
	assert.ErrorIs(t, err, ErrEmptyString)
}
