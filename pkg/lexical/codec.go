package lexical

import (
	"fmt"
	"strings"
)

// Block is the flat form of one block's inline content.
type Block struct {
	Text   string   `json:"text"`
	Layers []*Layer `json:"layers,omitempty"`
}

// booleanKinds pairs each boolean attribute with its layer kind, in emission order.
var booleanKinds = []struct {
	kind string
	get  func(Attributes) bool
	set  func(*Attributes)
}{
	{KindStrong, func(a Attributes) bool { return a.Bold }, func(a *Attributes) { a.Bold = true }},
	{KindEmphasis, func(a Attributes) bool { return a.Italic }, func(a *Attributes) { a.Italic = true }},
	{KindUnderline, func(a Attributes) bool { return a.Underline }, func(a *Attributes) { a.Underline = true }},
	{KindStrikethrough, func(a Attributes) bool { return a.Strikethrough }, func(a *Attributes) { a.Strikethrough = true }},
	{KindSuperscript, func(a Attributes) bool { return a.Superscript }, func(a *Attributes) { a.Superscript = true }},
	{KindSubscript, func(a Attributes) bool { return a.Subscript }, func(a *Attributes) { a.Subscript = true }},
	{KindCode, func(a Attributes) bool { return a.Code }, func(a *Attributes) { a.Code = true }},
}

// Encode flattens an inline tree into a Block.
func Encode(inlines []Inline) (Block, error) {
	leaves, err := Flatten(inlines)
	if err != nil {
		return Block{}, err
	}
	return FlattenLeaves(leaves)
}

// FlattenLeaves concatenates leaf text and records one layer per formatting identity.
func FlattenLeaves(leaves []Leaf) (Block, error) {
	var (
		sb  strings.Builder
		set = NewLayerSet()
		pos int
	)

	for _, leaf := range leaves {
		start := pos
		end := start + CodePointLength(leaf.Text)

		for _, bk := range booleanKinds {
			if !bk.get(leaf.Attributes) {
				continue
			}
			if err := set.AddSpan(bk.kind, nil, start, end); err != nil {
				return Block{}, err
			}
		}

		if leaf.URL != "" {
			kind := KindLink
			if leaf.Text == ObjectReplacement {
				kind = KindEmbed
			}
			if err := set.AddSpan(kind, map[string]string{"url": leaf.URL}, start, end); err != nil {
				return Block{}, err
			}
		}

		sb.WriteString(leaf.Text)
		pos = end
	}

	return Block{Text: sb.String(), Layers: set.List()}, nil
}

// Expand rebuilds the maximal leaf sequence of a block. A new leaf starts exactly
// where the set of layers covering the current code point changes. Embeds are
// atomic: every code point under an embed layer is a leaf of its own.
// Empty text is a caller error; use ExpandBlock to accept it.
func Expand(b Block) ([]Leaf, error) {
	var (
		units     = toCodeUnits(b.Text)
		active    = make([]bool, len(b.Layers))
		out       []Leaf
		current   *Leaf
		textStart int
		pos       int
	)

	for i := 0; i < len(units); {
		width := units.width(i)

		changed := false
		for li, l := range b.Layers {
			_, in := l.Contains(pos)
			if in != active[li] {
				active[li] = in
				changed = true
			}
			if in && l.Kind == KindEmbed {
				changed = true
			}
		}

		switch {
		case current == nil:
			current = openLeaf(b.Layers, active)
		case changed:
			current.Text = units.slice(textStart, i)
			out = append(out, *current)
			textStart = i
			current = openLeaf(b.Layers, active)
		}

		// Last code point closes the open leaf.
		if i+width >= len(units) {
			current.Text = units.slice(textStart, len(units))
			return append(out, *current), nil
		}

		pos++
		i += width
	}

	return nil, ErrUnreachableEmptyText
}

// ExpandBlock is Expand with the empty block mapped to no leaves.
func ExpandBlock(b Block) ([]Leaf, error) {
	if b.Text == "" {
		return nil, nil
	}
	return Expand(b)
}

func openLeaf(layers []*Layer, active []bool) *Leaf {
	leaf := &Leaf{}
	for i, l := range layers {
		if !active[i] {
			continue
		}
		switch l.Kind {
		case KindLink, KindEmbed:
			leaf.URL = l.Attributes["url"]
		default:
			for _, bk := range booleanKinds {
				if bk.kind == l.Kind {
					bk.set(&leaf.Attributes)
					break
				}
			}
		}
	}
	return leaf
}

// Validate checks that every layer is sorted, disjoint, coalesced and within the text.
func (b Block) Validate() error {
	length := CodePointLength(b.Text)
	for _, l := range b.Layers {
		if l == nil || l.Kind == "" {
			return fmt.Errorf("%w: missing kind", ErrInvalidLayer)
		}
		for i, iv := range l.Intervals {
			if iv.Start < 0 || iv.Start >= iv.End || iv.End > length {
				return fmt.Errorf("%w: %s interval [%d,%d) outside text of length %d", ErrInvalidLayer, l.Kind, iv.Start, iv.End, length)
			}
			if i > 0 && l.Intervals[i-1].End >= iv.Start {
				return fmt.Errorf("%w: %s intervals %d and %d overlap or touch", ErrInvalidLayer, l.Kind, i-1, i)
			}
		}
	}
	return nil
}

// Decode expands a block and assembles the Lexical inline nodes.
func Decode(b Block) ([]Node, error) {
	leaves, err := ExpandBlock(b)
	if err != nil {
		return nil, err
	}
	return NodesFromLeaves(leaves), nil
}

// NodesFromLeaves groups consecutive leaves sharing a url under one link node
// and turns placeholder leaves into embed nodes.
func NodesFromLeaves(leaves []Leaf) []Node {
	var out []Node
	for i := 0; i < len(leaves); {
		leaf := leaves[i]

		if leaf.URL == "" {
			out = append(out, textNode(leaf))
			i++
			continue
		}

		if leaf.Text == ObjectReplacement {
			out = append(out, Node{
				Type:     NodeEmbed,
				Version:  1,
				URL:      leaf.URL,
				Children: []Node{textNode(leaf)},
			})
			i++
			continue
		}

		link := Node{Type: NodeLink, Version: 1, URL: leaf.URL}
		for i < len(leaves) && leaves[i].URL == leaf.URL && leaves[i].Text != ObjectReplacement {
			link.Children = append(link.Children, textNode(leaves[i]))
			i++
		}
		out = append(out, link)
	}
	return out
}

func textNode(leaf Leaf) Node {
	switch leaf.Text {
	case "\n":
		if leaf.Attributes == (Attributes{URL: leaf.URL}) {
			return Node{Type: NodeLineBreak, Version: 1}
		}
	case "\t":
		if leaf.Attributes == (Attributes{URL: leaf.URL}) {
			return Node{Type: NodeTab, Version: 1}
		}
	}
	return Node{
		Type:    NodeText,
		Version: 1,
		Text:    leaf.Text,
		Format:  leaf.format(),
		Mode:    "normal",
	}
}
