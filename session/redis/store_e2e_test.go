//go:build e2e

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/coderi421/adkit/session"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要本地的 redis，例如 docker run -p 6379:6379 redis
func TestStore_e2e(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, rdb.Ping(ctx).Err())

	s := NewStore(rdb, WithPrefix("adkit_test"), WithExpiration(time.Minute))
	id := uuid.New().String()

	sess, err := s.Generate(ctx, id)
	require.NoError(t, err)
	_, err = s.Generate(ctx, id)
	assert.Equal(t, errSessionAlreadyExist, err)

	require.NoError(t, sess.Set(ctx, "network", "1234"))
	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	val, err := got.Get(ctx, "network")
	require.NoError(t, err)
	assert.Equal(t, "1234", val)

	require.NoError(t, got.Delete(ctx, "network"))
	_, err = got.Get(ctx, "network")
	assert.ErrorIs(t, err, session.ErrKeyNotFound)

	require.NoError(t, s.Refresh(ctx, id))
	require.NoError(t, s.Remove(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.ErrorIs(t, sess.Set(ctx, "network", "1"), session.ErrSessionNotFound)
	assert.ErrorIs(t, s.Refresh(ctx, id), session.ErrSessionNotFound)
}
