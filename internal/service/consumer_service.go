package service

import (
	"context"
	"encoding/json"

	"github.com/seed-hypermedia/mintter-sub004/internal/dto"
	"github.com/seed-hypermedia/mintter-sub004/internal/pkg/logger"
	"github.com/seed-hypermedia/mintter-sub004/internal/repository/specification"
	"github.com/seed-hypermedia/mintter-sub004/internal/repository/unitofwork"
	"github.com/seed-hypermedia/mintter-sub004/pkg/lexical"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService renders stored documents to markdown and keeps the
// plain_text column used by search in step with the blocks.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	renderer   *lexical.Renderer
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		renderer:   lexical.NewRenderer(),
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RenderDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Failed to unmarshal render job", map[string]interface{}{"error": err})
		msg.Ack() // never retry a payload that cannot parse
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		cs.logger.Error("Consumer", "Failed to load document", map[string]interface{}{
			"document_id": payload.DocumentId,
			"error":       err,
		})
		msg.Nack()
		return
	}
	if document == nil || document.Version != payload.Version {
		// Deleted, or a newer job already covers it.
		msg.Ack()
		return
	}

	markdown, err := cs.renderer.Render(document.Content)
	if err != nil {
		cs.logger.Error("Consumer", "Failed to render document", map[string]interface{}{
			"document_id": document.Id,
			"error":       err,
		})
		msg.Ack()
		return
	}

	if err := uow.DocumentRepository().UpdatePlainText(ctx, document.Id, document.Version, markdown); err != nil {
		cs.logger.Error("Consumer", "Failed to store plain text", map[string]interface{}{
			"document_id": document.Id,
			"error":       err,
		})
		msg.Nack()
		return
	}

	cs.logger.Debug("Consumer", "Document rendered", map[string]interface{}{
		"document_id": document.Id,
		"version":     document.Version,
		"length":      len(markdown),
	})
	msg.Ack()
}
