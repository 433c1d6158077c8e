package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/seed-hypermedia/mintter-sub004/internal/dto"
	"github.com/seed-hypermedia/mintter-sub004/internal/entity"
	"github.com/seed-hypermedia/mintter-sub004/internal/pkg/logger"
	"github.com/seed-hypermedia/mintter-sub004/internal/pkg/serverutils"
	"github.com/seed-hypermedia/mintter-sub004/internal/repository/memory"
	"github.com/seed-hypermedia/mintter-sub004/internal/repository/specification"
	"github.com/seed-hypermedia/mintter-sub004/internal/repository/unitofwork"
	"github.com/seed-hypermedia/mintter-sub004/pkg/events"
	"github.com/seed-hypermedia/mintter-sub004/pkg/lexical"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type IDocumentService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	List(ctx context.Context, userId uuid.UUID, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error)
	Authorize(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type DocumentServiceOptions struct {
	MaxDocumentBytes int
	DefaultPageLimit int
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	cache            *memory.DocumentCache
	publisherService IPublisherService
	eventPublisher   events.Publisher
	logger           logger.ILogger
	opts             DocumentServiceOptions
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	cache *memory.DocumentCache,
	publisherService IPublisherService,
	eventPublisher events.Publisher,
	log logger.ILogger,
	opts DocumentServiceOptions,
) IDocumentService {
	if opts.DefaultPageLimit <= 0 {
		opts.DefaultPageLimit = 20
	}
	return &documentService{
		uowFactory:       uowFactory,
		cache:            cache,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
		opts:             opts,
	}
}

func (s *documentService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	ctx, span := tracer.Start(ctx, "document.Create")
	defer span.End()

	content, err := s.encode(req.Content)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	document := entity.Document{
		Id:        uuid.New(),
		Title:     req.Title,
		Content:   content,
		Version:   1,
		UserId:    userId,
		CreatedAt: time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("document.id", document.Id.String()))

	s.enqueueRender(ctx, document.Id, document.Version)
	s.publishEvent(ctx, events.DocumentCreated, &document)

	return &dto.CreateDocumentResponse{
		Id:      document.Id,
		Version: document.Version,
	}, nil
}

func (s *documentService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	ctx, span := tracer.Start(ctx, "document.Show")
	defer span.End()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, serverutils.ErrNotFound
	}

	root, hit := s.cache.Get(document.Id, document.Version)
	if !hit {
		root, err = lexical.DecodeDocument(document.Content)
		if err != nil {
			// Stored blocks are produced by the encoder, so this is a server fault.
			s.logger.Error("DocumentService", "Stored document cannot be decoded", map[string]interface{}{
				"document_id": document.Id,
				"version":     document.Version,
				"error":       err,
			})
			return nil, fmt.Errorf("decode document %s: %w", document.Id, err)
		}
		s.cache.Save(document.Id, document.Version, root)
	}
	span.SetAttributes(attribute.Bool("document.cache_hit", hit))

	return &dto.ShowDocumentResponse{
		Id:        document.Id,
		Title:     document.Title,
		Version:   document.Version,
		Blocks:    document.Content.Blocks,
		Content:   root,
		PlainText: document.PlainText,
		CreatedAt: document.CreatedAt,
		UpdatedAt: document.UpdatedAt,
	}, nil
}

func (s *documentService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error) {
	ctx, span := tracer.Start(ctx, "document.Update")
	defer span.End()

	content, err := s.encode(req.Content)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			uow.Rollback()
			panic(r)
		}
	}()

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
		specification.ForUpdate{},
	)
	if err != nil {
		uow.Rollback()
		return nil, err
	}
	if document == nil {
		uow.Rollback()
		return nil, serverutils.ErrNotFound
	}
	if req.Version != 0 && req.Version != document.Version {
		uow.Rollback()
		return nil, serverutils.ErrConflict
	}

	previous := document.Version
	now := time.Now()
	document.Title = req.Title
	document.Content = content
	document.Version++
	document.UpdatedAt = &now

	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		uow.Rollback()
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.cache.Delete(document.Id, previous)
	s.enqueueRender(ctx, document.Id, document.Version)
	s.publishEvent(ctx, events.DocumentUpdated, document)

	return &dto.UpdateDocumentResponse{
		Id:      document.Id,
		Version: document.Version,
	}, nil
}

func (s *documentService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if document == nil {
		return serverutils.ErrNotFound
	}

	if err := uow.DocumentRepository().Delete(ctx, document.Id); err != nil {
		return err
	}

	s.cache.Delete(document.Id, document.Version)
	s.publishEvent(ctx, events.DocumentDeleted, document)

	return nil
}

func (s *documentService) List(ctx context.Context, userId uuid.UUID, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = s.opts.DefaultPageLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	filters := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.TextContains{Query: req.Query},
	}

	total, err := uow.DocumentRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	documents, err := uow.DocumentRepository().FindAll(ctx, append(filters,
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: req.Offset},
	)...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.DocumentSummary, 0, len(documents))
	for _, d := range documents {
		items = append(items, dto.DocumentSummary{
			Id:        d.Id,
			Title:     d.Title,
			Version:   d.Version,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		})
	}

	return &dto.ListDocumentsResponse{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: req.Offset,
	}, nil
}

func (s *documentService) Authorize(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.DocumentRepository().Count(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if count == 0 {
		return serverutils.ErrNotFound
	}
	return nil
}

func (s *documentService) encode(content json.RawMessage) (lexical.Document, error) {
	if s.opts.MaxDocumentBytes > 0 && len(content) > s.opts.MaxDocumentBytes {
		return lexical.Document{}, serverutils.ErrBadRequest(
			fmt.Sprintf("content exceeds %d bytes", s.opts.MaxDocumentBytes), nil)
	}
	return encodeContent(content)
}

// enqueueRender schedules the plain text refresh. The document is already
// stored, so a failed enqueue is logged and the request still succeeds.
func (s *documentService) enqueueRender(ctx context.Context, id uuid.UUID, version int) {
	if s.publisherService == nil {
		return
	}
	payload, err := json.Marshal(dto.RenderDocumentMessage{DocumentId: id, Version: version})
	if err == nil {
		err = s.publisherService.Publish(ctx, payload)
	}
	if err != nil {
		s.logger.Warn("DocumentService", "Failed to enqueue render job", map[string]interface{}{
			"document_id": id,
			"error":       err,
		})
	}
}

func (s *documentService) publishEvent(ctx context.Context, eventType string, document *entity.Document) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: eventType,
		Data: map[string]interface{}{
			"document_id": document.Id.String(),
			"user_id":     document.UserId.String(),
			"title":       document.Title,
			"version":     document.Version,
		},
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("DocumentService", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err,
		})
	}
}
