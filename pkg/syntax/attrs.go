package syntax

// BlockAttrs holds attributes for block-level nodes.
type BlockAttrs struct {
	// HeadingLevel is the heading level (1-6) for KindHeading.
	HeadingLevel int

	// List holds list-specific attributes for KindList.
	List *ListAttrs

	// Code holds code block attributes for KindFencedCode and KindIndentedCode.
	Code *CodeAttrs

	// Alignments are the column alignments of a KindTable.
	Alignments []Alignment

	// Alignment is the column alignment of a KindTableCell.
	Alignment Alignment

	// Math holds math attributes for KindMathBlock.
	Math *MathAttrs

	// Literal is the raw text of KindHTMLBlock and KindCitationBlock nodes.
	Literal string
}

// ListAttrs holds attributes for list nodes.
type ListAttrs struct {
	// Ordered is true for ordered lists (1., 2., etc.).
	Ordered bool

	// Marker is the bullet character ('-', '+', '*') or the ordered delimiter ('.', ')').
	Marker byte

	// Start is the starting number for ordered lists.
	Start int

	// Tight is true if this is a tight list (no blank lines between items).
	Tight bool
}

// CodeAttrs holds attributes for code block nodes.
type CodeAttrs struct {
	// FenceChar is the fence character ('`' or '~'), zero for indented code.
	FenceChar byte

	// FenceLength is the number of fence characters.
	FenceLength int

	// Info is the info string following the opening fence.
	Info string

	// Content is the code without fences.
	Content string
}

// MathAttrs holds attributes for math nodes.
type MathAttrs struct {
	// Display is true for display math ($$ and \[ forms).
	Display bool

	// Opener is the opening delimiter as written ("$", "$$", "\(", "\[").
	Opener string

	// Content is the TeX source between the delimiters.
	Content string
}

// Alignment is a table column alignment.
type Alignment uint8

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// String returns the alignment name.
func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignNone:
		return "none"
	default:
		return "none"
	}
}

// InlineAttrs holds attributes for inline-level nodes.
type InlineAttrs struct {
	// Text holds the literal content of KindText, KindCodeSpan, KindRawHTML
	// and the id of KindCitationRef.
	Text string

	// Link holds link attributes for KindLink, KindImage and KindAutoLink.
	Link *LinkAttrs

	// EmphasisLevel indicates emphasis strength (1 for emphasis, 2 for strong).
	EmphasisLevel int

	// Math holds math attributes for KindMathInline.
	Math *MathAttrs

	// Checked reports the state of a KindTaskCheckBox.
	Checked bool
}

// LinkAttrs holds attributes for link and image nodes.
type LinkAttrs struct {
	// Destination is the link URL.
	Destination string

	// Title is the optional link title.
	Title string
}

// NewBlockAttrs creates a new BlockAttrs with default values.
func NewBlockAttrs() *BlockAttrs {
	return &BlockAttrs{}
}

// NewInlineAttrs creates a new InlineAttrs with default values.
func NewInlineAttrs() *InlineAttrs {
	return &InlineAttrs{}
}

// WithHeadingLevel sets the heading level and returns the BlockAttrs for chaining.
func (a *BlockAttrs) WithHeadingLevel(level int) *BlockAttrs {
	a.HeadingLevel = level
	return a
}

// WithList sets list attributes and returns the BlockAttrs for chaining.
func (a *BlockAttrs) WithList(attrs *ListAttrs) *BlockAttrs {
	a.List = attrs
	return a
}

// WithCode sets code block attributes and returns the BlockAttrs for chaining.
func (a *BlockAttrs) WithCode(attrs *CodeAttrs) *BlockAttrs {
	a.Code = attrs
	return a
}

// WithMath sets math attributes and returns the BlockAttrs for chaining.
func (a *BlockAttrs) WithMath(attrs *MathAttrs) *BlockAttrs {
	a.Math = attrs
	return a
}

// WithLiteral sets the literal text and returns the BlockAttrs for chaining.
func (a *BlockAttrs) WithLiteral(literal string) *BlockAttrs {
	a.Literal = literal
	return a
}

// WithText sets the text content and returns the InlineAttrs for chaining.
func (a *InlineAttrs) WithText(text string) *InlineAttrs {
	a.Text = text
	return a
}

// WithLink sets link attributes and returns the InlineAttrs for chaining.
func (a *InlineAttrs) WithLink(attrs *LinkAttrs) *InlineAttrs {
	a.Link = attrs
	return a
}

// WithEmphasisLevel sets the emphasis level and returns the InlineAttrs for chaining.
func (a *InlineAttrs) WithEmphasisLevel(level int) *InlineAttrs {
	a.EmphasisLevel = level
	return a
}

// WithMath sets math attributes and returns the InlineAttrs for chaining.
func (a *InlineAttrs) WithMath(attrs *MathAttrs) *InlineAttrs {
	a.Math = attrs
	return a
}
