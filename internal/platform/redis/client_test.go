package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnectsAndReportsHealth(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(context.Background(), DefaultConfig("redis://"+mr.Addr()))
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Health(context.Background()))

	mr.Close()
	assert.Error(t, client.Health(context.Background()))
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)

	_, err = New(context.Background(), DefaultConfig("not-a-url"))
	assert.Error(t, err)
}

func TestPoolCollector(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), DefaultConfig("redis://"+mr.Addr()))
	require.NoError(t, err)
	defer client.Close()

	reg := prometheus.NewRegistry()
	RegisterPoolMetrics(reg, client.Client)

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
