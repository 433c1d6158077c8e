package lexical

import (
	"encoding/json"
	"fmt"
)

// FlatBlock is one block container with its inline content flattened.
// Container blocks (lists, quotes holding paragraphs, tables) keep their nested
// blocks in Children. Annotation layers never span two blocks.
type FlatBlock struct {
	Type      string `json:"type"`
	Tag       string `json:"tag,omitempty"`
	ListType  string `json:"listType,omitempty"`
	Checked   bool   `json:"checked,omitempty"`
	Alignment string `json:"alignment,omitempty"`
	Indent    int    `json:"indent,omitempty"`
	Block
	Children []FlatBlock `json:"children,omitempty"`
}

// Document is the flat encoding of a whole Lexical root.
type Document struct {
	Blocks []FlatBlock `json:"blocks"`
}

// ParseRoot decodes a Lexical editor state.
func ParseRoot(data []byte) (Root, error) {
	var root Root
	if err := json.Unmarshal(data, &root); err != nil {
		return Root{}, fmt.Errorf("failed to parse lexical json: %w", err)
	}
	if root.Root.Type != "root" {
		return Root{}, fmt.Errorf("failed to parse lexical json: top node is %q, want \"root\"", root.Root.Type)
	}
	return root, nil
}

// EncodeDocument flattens every block of root in document order.
func EncodeDocument(root Root) (Document, error) {
	blocks, err := encodeBlocks(root.Root.Children)
	if err != nil {
		return Document{}, err
	}
	return Document{Blocks: blocks}, nil
}

func encodeBlocks(nodes []Node) ([]FlatBlock, error) {
	out := make([]FlatBlock, 0, len(nodes))
	for i, node := range nodes {
		fb, err := encodeBlock(node)
		if err != nil {
			return nil, fmt.Errorf("block %d (%s): %w", i, node.Type, err)
		}
		out = append(out, fb)
	}
	return out, nil
}

// encodeBlock splits children into inline content and nested blocks.
// Inline content is assumed to precede nested blocks, as Lexical lays out list items.
func encodeBlock(node Node) (FlatBlock, error) {
	fb := FlatBlock{
		Type:     node.Type,
		Tag:      node.Tag,
		ListType: node.ListType,
		Checked:  node.Checked,
		Indent:   node.Indent,
	}
	if align, ok := node.Format.(string); ok {
		fb.Alignment = align
	}

	var inline, nested []Node
	for _, child := range node.Children {
		if isInline(child.Type) {
			inline = append(inline, child)
		} else {
			nested = append(nested, child)
		}
	}

	inlines, err := InlinesFromNodes(inline)
	if err != nil {
		return FlatBlock{}, err
	}
	fb.Block, err = Encode(inlines)
	if err != nil {
		return FlatBlock{}, err
	}

	if len(nested) > 0 {
		fb.Children, err = encodeBlocks(nested)
		if err != nil {
			return FlatBlock{}, err
		}
	}
	return fb, nil
}

// DecodeDocument rebuilds the Lexical root from its flat encoding.
func DecodeDocument(doc Document) (Root, error) {
	children, err := decodeBlocks(doc.Blocks)
	if err != nil {
		return Root{}, err
	}
	return Root{Root: Node{
		Type:      "root",
		Version:   1,
		Direction: "ltr",
		Children:  children,
	}}, nil
}

func decodeBlocks(blocks []FlatBlock) ([]Node, error) {
	out := make([]Node, 0, len(blocks))
	for i, fb := range blocks {
		if err := fb.Validate(); err != nil {
			return nil, fmt.Errorf("block %d (%s): %w", i, fb.Type, err)
		}
		inline, err := Decode(fb.Block)
		if err != nil {
			return nil, fmt.Errorf("block %d (%s): %w", i, fb.Type, err)
		}
		nested, err := decodeBlocks(fb.Children)
		if err != nil {
			return nil, err
		}

		node := Node{
			Type:     fb.Type,
			Version:  1,
			Tag:      fb.Tag,
			ListType: fb.ListType,
			Checked:  fb.Checked,
			Indent:   fb.Indent,
			Children: append(inline, nested...),
		}
		if fb.Alignment != "" {
			node.Format = fb.Alignment
		}
		out = append(out, node)
	}
	return out, nil
}
