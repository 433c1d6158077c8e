package contract

import (
	"context"

	"github.com/seed-hypermedia/mintter-sub004/internal/entity"
	"github.com/seed-hypermedia/mintter-sub004/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	Update(ctx context.Context, document *entity.Document) error
	UpdatePlainText(ctx context.Context, id uuid.UUID, version int, plainText string) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
