package lexical

import (
	"fmt"
	"strings"
)

// Renderer converts flat documents to Markdown
type Renderer struct{}

// NewRenderer creates a new renderer instance
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render converts a flat document to Markdown
func (r *Renderer) Render(doc Document) (string, error) {
	var sb strings.Builder
	for _, fb := range doc.Blocks {
		if err := r.walkBlock(fb, &sb, 0); err != nil {
			return "", err
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// ParseContent is a convenience function to render a raw string
// It attempts to parse as Lexical JSON; if it fails (not JSON or error), it returns the original string
func ParseContent(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, `{"root":`) {
		return content
	}

	root, err := ParseRoot([]byte(trimmed))
	if err != nil {
		return content
	}
	doc, err := EncodeDocument(root)
	if err != nil {
		return content
	}
	md, err := NewRenderer().Render(doc)
	if err != nil {
		return content
	}
	return md
}

// walkBlock writes one block and its nested blocks
func (r *Renderer) walkBlock(fb FlatBlock, sb *strings.Builder, depth int) error {
	switch fb.Type {
	case "paragraph":
		return r.handleParagraph(fb, sb)

	case "heading":
		level := 1
		if len(fb.Tag) == 2 && fb.Tag[0] == 'h' && fb.Tag[1] >= '1' && fb.Tag[1] <= '6' {
			level = int(fb.Tag[1] - '0')
		}
		sb.WriteString(strings.Repeat("#", level) + " ")
		if err := r.handleInline(fb.Block, sb); err != nil {
			return err
		}
		sb.WriteString("\n")

	case "quote":
		var inner strings.Builder
		if err := r.handleInline(fb.Block, &inner); err != nil {
			return err
		}
		for _, line := range strings.Split(inner.String(), "\n") {
			sb.WriteString("> " + line + "\n")
		}

	case "code":
		sb.WriteString("```\n")
		sb.WriteString(fb.Text)
		sb.WriteString("\n```\n")

	case "list":
		return r.handleList(fb, sb, depth)

	case "horizontalrule":
		sb.WriteString("---\n")

	default:
		// Generic: inline content then nested blocks
		if err := r.handleInline(fb.Block, sb); err != nil {
			return err
		}
		for _, child := range fb.Children {
			if err := r.walkBlock(child, sb, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) handleParagraph(fb FlatBlock, sb *strings.Builder) error {
	align := ""
	if fb.Alignment != "" && fb.Alignment != "left" {
		align = fb.Alignment
	}

	if align != "" {
		sb.WriteString(fmt.Sprintf("<div align=\"%s\">", align))
	}
	if err := r.handleInline(fb.Block, sb); err != nil {
		return err
	}
	if align != "" {
		sb.WriteString("</div>")
	}
	sb.WriteString("\n")
	return nil
}

// handleInline expands the block back into leaves and wraps each run
func (r *Renderer) handleInline(b Block, sb *strings.Builder) error {
	if err := b.Validate(); err != nil {
		return err
	}
	leaves, err := ExpandBlock(b)
	if err != nil {
		return err
	}

	for i := 0; i < len(leaves); {
		leaf := leaves[i]
		switch {
		case leaf.URL == "":
			r.handleText(leaf, sb)
			i++

		case leaf.Text == ObjectReplacement:
			sb.WriteString(fmt.Sprintf("![](%s)", leaf.URL))
			i++

		default:
			// Standard MD link: [text](url)
			sb.WriteString("[")
			for i < len(leaves) && leaves[i].URL == leaf.URL && leaves[i].Text != ObjectReplacement {
				r.handleText(leaves[i], sb)
				i++
			}
			sb.WriteString(fmt.Sprintf("](%s)", leaf.URL))
		}
	}
	return nil
}

func (r *Renderer) handleText(leaf Leaf, sb *strings.Builder) {
	// Apply wrappers (Code > Bold > Italic > Underline > Strike)
	// Markdown doesn't support underline natively everywhere, using HTML <u>
	if leaf.Code {
		sb.WriteString("`")
	}
	if leaf.Bold {
		sb.WriteString("**")
	}
	if leaf.Italic {
		sb.WriteString("_")
	}
	if leaf.Underline {
		sb.WriteString("<u>")
	}
	if leaf.Strikethrough {
		sb.WriteString("~~")
	}
	if leaf.Superscript {
		sb.WriteString("<sup>")
	}
	if leaf.Subscript {
		sb.WriteString("<sub>")
	}

	sb.WriteString(leaf.Text)

	if leaf.Subscript {
		sb.WriteString("</sub>")
	}
	if leaf.Superscript {
		sb.WriteString("</sup>")
	}
	if leaf.Strikethrough {
		sb.WriteString("~~")
	}
	if leaf.Underline {
		sb.WriteString("</u>")
	}
	if leaf.Italic {
		sb.WriteString("_")
	}
	if leaf.Bold {
		sb.WriteString("**")
	}
	if leaf.Code {
		sb.WriteString("`")
	}
}

func (r *Renderer) handleList(fb FlatBlock, sb *strings.Builder, depth int) error {
	index := 1

	for _, item := range fb.Children {
		if item.Type != "listitem" {
			continue
		}

		// Indentation for nested lists (2 spaces per depth level)
		sb.WriteString(strings.Repeat("  ", depth))

		switch fb.ListType {
		case "number":
			sb.WriteString(fmt.Sprintf("%d. ", index))
			index++
		case "check":
			if item.Checked {
				sb.WriteString("- [x] ")
			} else {
				sb.WriteString("- [ ] ")
			}
		default:
			sb.WriteString("- ")
		}

		if err := r.handleInline(item.Block, sb); err != nil {
			return err
		}
		for _, nested := range item.Children {
			if nested.Type == "list" {
				sb.WriteString("\n")
				if err := r.handleList(nested, sb, depth+1); err != nil {
					return err
				}
				continue
			}
			if err := r.walkBlock(nested, sb, depth); err != nil {
				return err
			}
		}
		sb.WriteString("\n")
	}
	// Extra newline after list
	if depth == 0 {
		sb.WriteString("\n")
	}
	return nil
}
