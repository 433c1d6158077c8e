package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/seed-hypermedia/mintter-sub004/internal/dto"
	"github.com/seed-hypermedia/mintter-sub004/internal/pkg/logger"
	"github.com/seed-hypermedia/mintter-sub004/internal/repository/specification"
	"github.com/seed-hypermedia/mintter-sub004/internal/repository/unitofwork"
	"github.com/seed-hypermedia/mintter-sub004/pkg/events"

	"github.com/google/uuid"
)

// LiveBroadcaster delivers a payload to every live subscriber of a document.
type LiveBroadcaster interface {
	Publish(documentID uuid.UUID, payload []byte)
}

type ILiveService interface {
	HandleEvent(ctx context.Context, event events.Event) error
}

// liveService turns document bus events into websocket pushes.
type liveService struct {
	uowFactory  unitofwork.RepositoryFactory
	broadcaster LiveBroadcaster
	logger      logger.ILogger
}

func NewLiveService(uowFactory unitofwork.RepositoryFactory, broadcaster LiveBroadcaster, log logger.ILogger) ILiveService {
	return &liveService{
		uowFactory:  uowFactory,
		broadcaster: broadcaster,
		logger:      log,
	}
}

func (s *liveService) HandleEvent(ctx context.Context, event events.Event) error {
	data := event.Payload()
	rawID, _ := data["document_id"].(string)
	documentID, err := uuid.Parse(rawID)
	if err != nil {
		// Malformed events are dropped rather than redelivered forever.
		s.logger.Warn("LiveService", "Event without document id", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	msg := dto.LiveDocumentMessage{
		Type:       event.EventType(),
		DocumentId: documentID,
	}
	if v, ok := data["version"].(float64); ok {
		msg.Version = int(v)
	}

	if event.EventType() != events.DocumentDeleted {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: documentID})
		if err != nil {
			return fmt.Errorf("load document %s: %w", documentID, err)
		}
		if document == nil {
			return nil
		}
		msg.Version = document.Version
		msg.Blocks = document.Content.Blocks
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.broadcaster.Publish(documentID, payload)
	return nil
}
