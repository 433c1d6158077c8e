package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/seed-hypermedia/mintter-sub004/internal/dto"
	"github.com/seed-hypermedia/mintter-sub004/internal/pkg/logger"
	"github.com/seed-hypermedia/mintter-sub004/internal/repository/memory"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerRendersPlainText(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	store := newFakeStore()
	consumer := NewConsumerService(pubSub, "render", store, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	jobs := NewPublisherService("render", pubSub)
	svc := NewDocumentService(store, memory.NewDocumentCache(time.Minute), jobs, nil, logger.NewNopLogger(), DocumentServiceOptions{})

	userId := uuid.New()
	created, err := svc.Create(ctx, userId, &dto.CreateDocumentRequest{Title: "t", Content: json.RawMessage(helloState)})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		d, _ := store.NewUnitOfWork(ctx).DocumentRepository().FindOne(ctx)
		return d != nil && d.PlainText != ""
	}, 2*time.Second, 10*time.Millisecond)

	shown, err := svc.Show(ctx, userId, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "Hello **world**\n\n", shown.PlainText)
}

func TestConsumerSkipsStaleJobs(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	cs := NewConsumerService(nil, "render", store, logger.NewNopLogger()).(*consumerService)

	svc := NewDocumentService(store, memory.NewDocumentCache(time.Minute), nil, nil, logger.NewNopLogger(), DocumentServiceOptions{})
	created, err := svc.Create(ctx, uuid.New(), &dto.CreateDocumentRequest{Title: "t", Content: json.RawMessage(helloState)})
	require.NoError(t, err)

	payload, err := json.Marshal(dto.RenderDocumentMessage{DocumentId: created.Id, Version: 7})
	require.NoError(t, err)
	msg := newTestMessage(payload)
	cs.processMessage(ctx, msg)

	select {
	case <-msg.Acked():
	case <-time.After(time.Second):
		t.Fatal("stale job should be acked")
	}
	assert.Empty(t, store.documents[created.Id].PlainText)

	bad := newTestMessage([]byte("nope"))
	cs.processMessage(ctx, bad)
	select {
	case <-bad.Acked():
	case <-time.After(time.Second):
		t.Fatal("unparseable job should be acked")
	}
}
