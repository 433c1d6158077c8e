package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/seed-hypermedia/mintter-sub004/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func join(t *testing.T, hub *Hub, documentID uuid.UUID) *Client {
	t.Helper()
	c := &Client{Hub: hub, DocumentID: documentID, UserID: uuid.New(), Send: make(chan []byte, 1)}
	before := hub.ClientCount(documentID)
	hub.register <- c
	require.Eventually(t, func() bool { return hub.ClientCount(documentID) == before+1 }, time.Second, 5*time.Millisecond)
	return c
}

func TestHubPublishTargetsDocument(t *testing.T) {
	hub := startHub(t)
	docA, docB := uuid.New(), uuid.New()

	a := join(t, hub, docA)
	b := join(t, hub, docB)

	hub.Publish(docA, []byte(`{"type":"DOCUMENT_UPDATED"}`))

	select {
	case msg := <-a.Send:
		assert.JSONEq(t, `{"type":"DOCUMENT_UPDATED"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("subscriber of the document got nothing")
	}
	assert.Empty(t, b.Send)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := startHub(t)
	doc := uuid.New()
	c := join(t, hub, doc)

	hub.Publish(doc, []byte("1"))
	hub.Publish(doc, []byte("2"))

	assert.Equal(t, "1", string(<-c.Send))
	assert.Equal(t, 1, hub.ClientCount(doc), "slow clients stay registered")
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	doc := uuid.New()
	c := join(t, hub, doc)

	hub.unregister <- c

	require.Eventually(t, func() bool { return hub.ClientCount(doc) == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}

func TestHubClusterMessages(t *testing.T) {
	hub := startHub(t)
	doc := uuid.New()
	c := join(t, hub, doc)

	own, err := json.Marshal(clusterMessage{Origin: hub.instanceID, DocumentID: doc.String(), Message: []byte(`"own"`)})
	require.NoError(t, err)
	hub.handleClusterMessage(own)
	assert.Empty(t, c.Send, "own messages were already delivered locally")

	remote, err := json.Marshal(clusterMessage{Origin: "other", DocumentID: doc.String(), Message: []byte(`"remote"`)})
	require.NoError(t, err)
	hub.handleClusterMessage(remote)
	assert.Equal(t, `"remote"`, string(<-c.Send))

	hub.handleClusterMessage([]byte("not json"))
	assert.Empty(t, c.Send)
}

func TestHubForwardStops(t *testing.T) {
	tests := []struct {
		name string
		stop func(cancel context.CancelFunc, ch chan *redis.Message)
	}{
		{"context cancelled", func(cancel context.CancelFunc, _ chan *redis.Message) { cancel() }},
		{"channel closed", func(_ context.CancelFunc, ch chan *redis.Message) { close(ch) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := startHub(t)
			doc := uuid.New()
			c := join(t, hub, doc)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			ch := make(chan *redis.Message)
			done := make(chan struct{})
			go func() {
				hub.forward(ctx, ch)
				close(done)
			}()

			remote, err := json.Marshal(clusterMessage{Origin: "other", DocumentID: doc.String(), Message: []byte(`"remote"`)})
			require.NoError(t, err)
			ch <- &redis.Message{Channel: redisChannel, Payload: string(remote)}
			assert.Equal(t, `"remote"`, string(<-c.Send))

			tt.stop(cancel, ch)
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("forward kept running")
			}
		})
	}
}
