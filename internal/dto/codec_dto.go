package dto

import (
	"encoding/json"

	"github.com/seed-hypermedia/mintter-sub004/pkg/lexical"
)

type FlattenRequest struct {
	Content json.RawMessage `json:"content" validate:"required"`
}

type FlattenResponse struct {
	Document lexical.Document `json:"document"`
}

type ExpandRequest struct {
	Blocks []lexical.FlatBlock `json:"blocks" validate:"required"`
}

type ExpandResponse struct {
	Content lexical.Root `json:"content"`
}

type MarkdownRequest struct {
	Blocks []lexical.FlatBlock `json:"blocks" validate:"required"`
}

type MarkdownResponse struct {
	Markdown string `json:"markdown"`
}
