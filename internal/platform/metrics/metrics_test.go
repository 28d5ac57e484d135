package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementPocketsCreated()
	m.IncrementPocketsCreated()
	m.IncrementPocketsDeleted()
	m.IncrementOpenSessions()
	m.IncrementOpenSessions()
	m.DecrementOpenSessions()
	m.IncrementCredentialsIssued("DRIVING_LICENSE")
	m.IncrementProofsGenerated("DRIVING_LICENSE")
	m.IncrementProofsVerified("verified")
	m.IncrementProofsVerified("error")
	m.ObserveRequest("/proofs/verify", 200, 15*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.PocketsCreated), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PocketsDeleted), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.OpenSessions), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CredentialsIssued.WithLabelValues("DRIVING_LICENSE")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ProofsGenerated.WithLabelValues("DRIVING_LICENSE")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ProofsVerified.WithLabelValues("error")), 0)

	count, err := testutil.GatherAndCount(reg, "mysafepocket_endpoint_latency_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewRegistersIndependently(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
