//go:build integration

package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"mysafepocket/internal/platform/kafka"
	"mysafepocket/pkg/testutil/containers"
)

func TestKafkaStoreIntegration(t *testing.T) {
	ctx := context.Background()
	kc := containers.GetManager().GetKafka(t)
	const topic = "pocket.audit.test"

	producer, err := kafka.NewProducer(kafka.DefaultConfig(kc.Brokers), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.EnsureTopic(ctx, topic, 1, 1))
	require.NoError(t, producer.EnsureTopic(ctx, topic, 1, 1), "existing topic is not an error")

	store := NewKafkaStore(producer, topic)
	require.NoError(t, store.Append(ctx, Event{
		Timestamp:    time.Now().UTC(),
		Action:       EventCredentialIssued,
		PocketID:     "alice",
		DID:          "did:pixel:sig_d6a4df6",
		CredentialID: "vc_1",
	}))

	consumer, err := kc.NewConsumer(topic)
	require.NoError(t, err)
	t.Cleanup(consumer.Close)

	rec := kc.WaitForMessage(ctx, consumer, 30*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "alice"
	})
	require.NotNil(t, rec, "audit record was not delivered")

	var got Event
	require.NoError(t, json.Unmarshal(rec.Value, &got))
	assert.Equal(t, EventCredentialIssued, got.Action)
	assert.Equal(t, "vc_1", got.CredentialID)
	require.Len(t, rec.Headers, 1)
	assert.Equal(t, "action", rec.Headers[0].Key)
	assert.Equal(t, string(EventCredentialIssued), string(rec.Headers[0].Value))
}
