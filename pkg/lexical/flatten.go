package lexical

import "fmt"

// Flatten resolves link and embed wrappers into an ordered run of leaves.
// Link urls are stamped on every descendant leaf, overriding inner urls.
// An embed collapses to one placeholder leaf carrying its child's attributes.
func Flatten(inlines []Inline) ([]Leaf, error) {
	var out []Leaf
	for i, in := range inlines {
		switch n := in.(type) {
		case Leaf:
			out = append(out, n)

		case *Link:
			leaves, err := Flatten(n.Children)
			if err != nil {
				return nil, err
			}
			for _, leaf := range leaves {
				leaf.URL = n.URL
				out = append(out, leaf)
			}

		case *Embed:
			if len(n.Children) != 1 {
				return nil, fmt.Errorf("%w: inline %d has %d children", ErrMalformedEmbed, i, len(n.Children))
			}
			child, ok := n.Children[0].(Leaf)
			if !ok {
				return nil, fmt.Errorf("%w: inline %d wraps a %T", ErrMalformedEmbed, i, n.Children[0])
			}
			leaf := Leaf{Text: ObjectReplacement, Attributes: child.Attributes}
			leaf.URL = n.URL
			out = append(out, leaf)

		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedNode, in)
		}
	}
	return out, nil
}

// InlinesFromNodes converts the inline children of a Lexical block.
func InlinesFromNodes(nodes []Node) ([]Inline, error) {
	out := make([]Inline, 0, len(nodes))
	for _, node := range nodes {
		switch node.Type {
		case NodeText:
			out = append(out, Leaf{
				Text:       node.Text,
				Attributes: attributesFromFormat(formatInt(node.Format)),
			})

		case NodeLineBreak:
			out = append(out, Leaf{Text: "\n"})

		case NodeTab:
			out = append(out, Leaf{Text: "\t"})

		case NodeLink, NodeAutoLink:
			children, err := InlinesFromNodes(node.Children)
			if err != nil {
				return nil, err
			}
			out = append(out, &Link{URL: node.URL, Children: children})

		case NodeEmbed:
			children, err := InlinesFromNodes(node.Children)
			if err != nil {
				return nil, err
			}
			out = append(out, &Embed{URL: node.URL, Children: children})

		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedNode, node.Type)
		}
	}
	return out, nil
}

// isInline reports whether a Lexical node type lives inside a block.
func isInline(nodeType string) bool {
	switch nodeType {
	case NodeText, NodeLink, NodeAutoLink, NodeEmbed, NodeLineBreak, NodeTab:
		return true
	}
	return false
}
