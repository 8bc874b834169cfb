package sse

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/buddyai/buddy-server-go/internal/redis"
)

func newTestBroker(t *testing.T) *Broker {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	broker := NewBroker(redisclient.Wrap(rdb), nil)
	t.Cleanup(broker.Close)
	return broker
}

func TestBroker_PublishDeliversToSubscribedUser(t *testing.T) {
	broker := newTestBroker(t)
	client := broker.Subscribe("user-1")
	other := broker.Subscribe("user-2")

	err := broker.PublishJSON(context.Background(), "user-1", "meeting.status", map[string]string{"status": "active"})
	require.NoError(t, err)

	select {
	case event := <-client.Events:
		assert.Equal(t, "meeting.status", event.Type)
		assert.JSONEq(t, `{"status":"active"}`, string(event.Data))
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case event := <-other.Events:
		t.Fatalf("unexpected event for other user: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroker_UnsubscribeClosesClient(t *testing.T) {
	broker := newTestBroker(t)
	client := broker.Subscribe("user-1")
	assert.Equal(t, 1, broker.ClientCount("user-1"))

	broker.Unsubscribe(client)

	assert.Equal(t, 0, broker.ClientCount("user-1"))
	assert.Equal(t, 0, broker.TotalClients())
	_, open := <-client.Done
	assert.False(t, open)

	// Second unsubscribe is a no-op.
	broker.Unsubscribe(client)
}

func TestBroker_TotalClients(t *testing.T) {
	broker := newTestBroker(t)
	broker.Subscribe("user-1")
	broker.Subscribe("user-1")
	broker.Subscribe("user-2")

	assert.Equal(t, 2, broker.ClientCount("user-1"))
	assert.Equal(t, 3, broker.TotalClients())
}
