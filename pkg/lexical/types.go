package lexical

// Root represents the top-level structure of a Lexical editor state
type Root struct {
	Root Node `json:"root"`
}

// Node represents any node in the Lexical tree
type Node struct {
	Type     string `json:"type"`
	Version  int    `json:"version"`
	Children []Node `json:"children,omitempty"`

	// Text specific
	Text   string      `json:"text,omitempty"`
	Format interface{} `json:"format,omitempty"` // Can be int (bitmask) or string (alignment)
	Style  string      `json:"style,omitempty"`
	Mode   string      `json:"mode,omitempty"`
	Detail int         `json:"detail,omitempty"`

	// Paragraph specific
	Direction  string `json:"direction,omitempty"`
	Indent     int    `json:"indent,omitempty"`
	TextFormat int    `json:"textFormat,omitempty"`

	// Link / Embed specific
	URL    string `json:"url,omitempty"`
	Rel    string `json:"rel,omitempty"`
	Target string `json:"target,omitempty"`
	Title  string `json:"title,omitempty"`

	// List / Heading specific
	ListType string `json:"listType,omitempty"` // check, bullet, number
	Start    int    `json:"start,omitempty"`
	Tag      string `json:"tag,omitempty"`

	// ListItem specific
	Checked bool `json:"checked,omitempty"`
	Value   int  `json:"value,omitempty"`
}

// Constants for Text Format Bitmask
const (
	FormatBold          = 1
	FormatItalic        = 2
	FormatStrikethrough = 4
	FormatUnderline     = 8
	FormatCode          = 16
	FormatSubscript     = 32
	FormatSuperscript   = 64
)

// Lexical node types the codec understands on the inline level.
const (
	NodeText      = "text"
	NodeLink      = "link"
	NodeAutoLink  = "autolink"
	NodeEmbed     = "embed"
	NodeLineBreak = "linebreak"
	NodeTab       = "tab"
)

// Annotation kinds. These strings are part of the wire format.
const (
	KindStrong        = "strong"
	KindEmphasis      = "emphasis"
	KindUnderline     = "underline"
	KindStrikethrough = "strikethrough"
	KindSuperscript   = "superscript"
	KindSubscript     = "subscript"
	KindCode          = "code"
	KindLink          = "link"
	KindEmbed         = "embed"
)

// ObjectReplacement is the single code point standing in for an embed in flat text.
const ObjectReplacement = "\uFFFC"

// Attributes is the formatting bag carried by a leaf.
type Attributes struct {
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Underline     bool   `json:"underline,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	Superscript   bool   `json:"superscript,omitempty"`
	Subscript     bool   `json:"subscript,omitempty"`
	Code          bool   `json:"code,omitempty"`
	URL           string `json:"url,omitempty"`
}

// Leaf is a run of text sharing one attribute bag.
type Leaf struct {
	Text string `json:"text"`
	Attributes
}

// Inline is one child of a block: a Leaf, a *Link or an *Embed.
type Inline interface {
	inline()
}

// Link wraps inline content pointing at URL.
type Link struct {
	URL      string
	Children []Inline
}

// Embed wraps exactly one leaf standing for an embedded object.
type Embed struct {
	URL      string
	Children []Inline
}

func (Leaf) inline()   {}
func (*Link) inline()  {}
func (*Embed) inline() {}

// format returns the Lexical bitmask for the boolean attributes.
func (a Attributes) format() int {
	f := 0
	if a.Bold {
		f |= FormatBold
	}
	if a.Italic {
		f |= FormatItalic
	}
	if a.Strikethrough {
		f |= FormatStrikethrough
	}
	if a.Underline {
		f |= FormatUnderline
	}
	if a.Code {
		f |= FormatCode
	}
	if a.Subscript {
		f |= FormatSubscript
	}
	if a.Superscript {
		f |= FormatSuperscript
	}
	return f
}

func attributesFromFormat(f int) Attributes {
	return Attributes{
		Bold:          f&FormatBold != 0,
		Italic:        f&FormatItalic != 0,
		Strikethrough: f&FormatStrikethrough != 0,
		Underline:     f&FormatUnderline != 0,
		Code:          f&FormatCode != 0,
		Subscript:     f&FormatSubscript != 0,
		Superscript:   f&FormatSuperscript != 0,
	}
}

// formatInt reads a numeric format field. JSON numbers decode as float64.
func formatInt(v interface{}) int {
	switch f := v.(type) {
	case float64:
		return int(f)
	case int:
		return f
	}
	return 0
}
