package entity

import (
	"time"

	"github.com/seed-hypermedia/mintter-sub004/pkg/lexical"

	"github.com/google/uuid"
)

type Document struct {
	Id        uuid.UUID
	Title     string
	Content   lexical.Document
	PlainText string
	Version   int
	UserId    uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
