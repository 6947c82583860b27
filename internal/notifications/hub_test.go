package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(1, nil)
	require.NoError(t, err)
	_, err = hub.Register(2, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, hub.Count())

	hub.UnregisterClient(a)
	hub.UnregisterClient(a)
	assert.Equal(t, 2, hub.Count())

	_, open := <-a.Send
	assert.False(t, open)

	hub.BroadcastAll([]byte("hello"))
	assert.Equal(t, []byte("hello"), <-b.Send)
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(5, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(5, nil)
	assert.Error(t, err)

	_, err = hub.Register(6, nil)
	assert.NoError(t, err)
}

func TestHub_BroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(1, nil)
	require.NoError(t, err)

	for i := 0; i < cap(c.Send)+5; i++ {
		hub.BroadcastAll([]byte("event"))
	}
	assert.Equal(t, cap(c.Send), len(c.Send))
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(1, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))

	_, open := <-c.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.Count())

	// Late unregister from a read pump is harmless.
	hub.UnregisterClient(c)

	_, err = hub.Register(1, nil)
	assert.Error(t, err)
}

func TestHub_StartWiringForwardsEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewHub()
	c, err := hub.Register(1, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n := NewNotifier(rdb)
	require.NoError(t, hub.StartWiring(ctx, n))

	require.NoError(t, n.PublishDecision(context.Background(), DecisionEvent{RequestID: 4, Status: "declined"}))

	select {
	case msg := <-c.Send:
		assert.Contains(t, string(msg), `"request_id":4`)
	case <-time.After(time.Second):
		t.Fatal("event not forwarded to hub client")
	}
}
