package service

import (
	"context"
	"errors"

	"github.com/seed-hypermedia/mintter-sub004/internal/dto"
	"github.com/seed-hypermedia/mintter-sub004/internal/pkg/serverutils"
	"github.com/seed-hypermedia/mintter-sub004/pkg/lexical"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("document-codec")

// ICodecService exposes the stateless codec over HTTP.
type ICodecService interface {
	Flatten(ctx context.Context, req *dto.FlattenRequest) (*dto.FlattenResponse, error)
	Expand(ctx context.Context, req *dto.ExpandRequest) (*dto.ExpandResponse, error)
	Markdown(ctx context.Context, req *dto.MarkdownRequest) (*dto.MarkdownResponse, error)
}

type codecService struct {
	renderer *lexical.Renderer
}

func NewCodecService() ICodecService {
	return &codecService{
		renderer: lexical.NewRenderer(),
	}
}

func (s *codecService) Flatten(ctx context.Context, req *dto.FlattenRequest) (*dto.FlattenResponse, error) {
	_, span := tracer.Start(ctx, "codec.Flatten")
	defer span.End()

	doc, err := encodeContent(req.Content)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("codec.blocks", len(doc.Blocks)))

	return &dto.FlattenResponse{Document: doc}, nil
}

func (s *codecService) Expand(ctx context.Context, req *dto.ExpandRequest) (*dto.ExpandResponse, error) {
	_, span := tracer.Start(ctx, "codec.Expand")
	defer span.End()

	root, err := lexical.DecodeDocument(lexical.Document{Blocks: req.Blocks})
	if err != nil {
		err = codecError("blocks cannot be expanded", err)
		recordError(span, err)
		return nil, err
	}

	return &dto.ExpandResponse{Content: root}, nil
}

func (s *codecService) Markdown(ctx context.Context, req *dto.MarkdownRequest) (*dto.MarkdownResponse, error) {
	_, span := tracer.Start(ctx, "codec.Markdown")
	defer span.End()

	md, err := s.renderer.Render(lexical.Document{Blocks: req.Blocks})
	if err != nil {
		err = codecError("blocks cannot be rendered", err)
		recordError(span, err)
		return nil, err
	}

	return &dto.MarkdownResponse{Markdown: md}, nil
}

// encodeContent parses a Lexical editor state and flattens every block.
func encodeContent(content []byte) (lexical.Document, error) {
	root, err := lexical.ParseRoot(content)
	if err != nil {
		return lexical.Document{}, serverutils.ErrBadRequest("content is not a lexical editor state", err)
	}
	doc, err := lexical.EncodeDocument(root)
	if err != nil {
		return lexical.Document{}, codecError("content cannot be flattened", err)
	}
	return doc, nil
}

// codecError turns codec failures caused by client input into 400s.
func codecError(message string, err error) error {
	switch {
	case errors.Is(err, lexical.ErrMalformedEmbed),
		errors.Is(err, lexical.ErrUnsupportedNode),
		errors.Is(err, lexical.ErrInvalidLayer),
		errors.Is(err, lexical.ErrOutOfOrderSpan),
		errors.Is(err, lexical.ErrInvalidSpan):
		return serverutils.ErrBadRequest(message, err)
	}
	return err
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
