package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"carematch/internal/app/ds"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestNew(t *testing.T) {
	s1 := "s1"
	at := time.Date(2030, 1, 2, 9, 0, 0, 0, time.FixedZone("JST", 9*3600))
	ev := New(RequestClaimed, &ds.Request{ID: 7, Status: ds.RequestMatched, MatchedSupporterID: &s1}, "s1", "supporter", at)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, uint(7), ev.RequestID)
	assert.Equal(t, "s1", ev.SupporterID)
	assert.Equal(t, time.UTC, ev.OccurredAt.Location())
}

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w}

	ev := Event{ID: "e1", Type: RequestTransitioned, RequestID: 42, RequestStatus: ds.RequestConfirmed, OrderStatus: ds.OrderConfirmed}
	require.NoError(t, p.Publish(context.Background(), ev))
	require.NoError(t, p.Close())

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "42", string(w.msgs[0].Key))
	assert.True(t, w.closed)

	var got Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, ds.OrderConfirmed, got.OrderStatus)
}
