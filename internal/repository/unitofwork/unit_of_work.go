package unitofwork

import (
	"context"

	"github.com/seed-hypermedia/mintter-sub004/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
}
