package dto

import (
	"encoding/json"
	"time"

	"github.com/seed-hypermedia/mintter-sub004/pkg/lexical"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Title   string          `json:"title" validate:"required,max=255"`
	Content json.RawMessage `json:"content" validate:"required"`
}

type CreateDocumentResponse struct {
	Id      uuid.UUID `json:"id"`
	Version int       `json:"version"`
}

type ShowDocumentResponse struct {
	Id        uuid.UUID           `json:"id"`
	Title     string              `json:"title"`
	Version   int                 `json:"version"`
	Blocks    []lexical.FlatBlock `json:"blocks"`
	Content   lexical.Root        `json:"content"` // Lexical state rebuilt from the blocks
	PlainText string              `json:"plain_text"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt *time.Time          `json:"updated_at"`
}

type UpdateDocumentRequest struct {
	Id      uuid.UUID
	Title   string          `json:"title" validate:"required,max=255"`
	Content json.RawMessage `json:"content" validate:"required"`
	// Version the client edited; zero skips the conflict check.
	Version int `json:"version" validate:"gte=0"`
}

type UpdateDocumentResponse struct {
	Id      uuid.UUID `json:"id"`
	Version int       `json:"version"`
}

type ListDocumentsRequest struct {
	Query  string `query:"q"`
	Limit  int    `query:"limit" validate:"gte=0,lte=100"`
	Offset int    `query:"offset" validate:"gte=0"`
}

type DocumentSummary struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Version   int        `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ListDocumentsResponse struct {
	Items  []DocumentSummary `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// RenderDocumentMessage is the payload of an in-process markdown render job.
type RenderDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	Version    int       `json:"version"`
}

// LiveDocumentMessage is pushed to websocket subscribers of a document.
type LiveDocumentMessage struct {
	Type       string              `json:"type"`
	DocumentId uuid.UUID           `json:"document_id"`
	Version    int                 `json:"version"`
	Blocks     []lexical.FlatBlock `json:"blocks,omitempty"`
}
