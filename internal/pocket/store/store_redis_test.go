package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, &storeContractSuite{
		newStore: func() pocketStore {
			mr := miniredis.RunT(t)
			return NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
		},
	})
}

func TestRedisStoreKeyLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	st := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	require.NoError(t, st.SaveIdentity(ctx, "alice", testIdentity()))
	require.NoError(t, st.SaveCredentials(ctx, "alice", nil))

	assert.ElementsMatch(t, []string{
		"pocket:alice:mysafepocket-identity",
		"pocket:alice:mysafepocket-credentials",
	}, mr.Keys())
	assert.Equal(t, "[]", mustGet(t, mr, "pocket:alice:mysafepocket-credentials"))
	assert.Zero(t, mr.TTL("pocket:alice:mysafepocket-identity"))
}

func TestRedisStoreCorruptRecord(t *testing.T) {
	mr := miniredis.RunT(t)
	st := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	require.NoError(t, mr.Set("pocket:alice:mysafepocket-credentials", "{not json"))

	_, err := st.LoadCredentials(context.Background(), "alice")
	assert.ErrorContains(t, err, "decode credentials record")
}

func TestRedisStoreConnectionFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	st := NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}))
	mr.Close()

	_, err := st.LoadIdentity(context.Background(), "alice")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Error(t, st.Ping(context.Background()))
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
