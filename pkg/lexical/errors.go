package lexical

import "errors"

var (
	// ErrMalformedEmbed is returned when an embed wrapper does not hold exactly one leaf.
	ErrMalformedEmbed = errors.New("lexical: embed must wrap exactly one leaf")

	// ErrUnreachableEmptyText is returned by Expand for a block with no text.
	// Callers special-case empty blocks (see ExpandBlock).
	ErrUnreachableEmptyText = errors.New("lexical: cannot expand empty text")

	// ErrOutOfOrderSpan is returned when a span starts before the end of the last one.
	ErrOutOfOrderSpan = errors.New("lexical: span inserted out of order")

	// ErrInvalidSpan is returned for a span whose end precedes its start.
	ErrInvalidSpan = errors.New("lexical: span end before start")

	// ErrUnsupportedNode is returned for inline node types the codec does not know.
	ErrUnsupportedNode = errors.New("lexical: unsupported inline node")

	// ErrInvalidLayer is returned by Block.Validate for a non-canonical layer.
	ErrInvalidLayer = errors.New("lexical: invalid layer")
)
