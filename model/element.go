package model

import "golang.org/x/net/html"

// BlockType identifies the variant of a Block.
type BlockType int

const (
	BlockTypeUnknown BlockType = iota
	BlockTypeParagraph
	BlockTypeTable
	BlockTypeBlockGroup
	BlockTypeEntity
	BlockTypeDivider
)

func (bt BlockType) String() string {
	switch bt {
	case BlockTypeParagraph:
		return "Paragraph"
	case BlockTypeTable:
		return "Table"
	case BlockTypeBlockGroup:
		return "BlockGroup"
	case BlockTypeEntity:
		return "Entity"
	case BlockTypeDivider:
		return "Divider"
	default:
		return "Unknown"
	}
}

// Block is a child of a BlockGroup. The set of implementations is closed:
// *Paragraph, *Table, *ListItem, *FormatContainer, *Entity and *Divider.
type Block interface {
	BlockType() BlockType
	isBlock()
}

// BlockGroupType identifies the variant of a BlockGroup.
type BlockGroupType int

const (
	BlockGroupUnknown BlockGroupType = iota
	BlockGroupDocument
	BlockGroupListItem
	BlockGroupFormatContainer
	BlockGroupTableCell
)

func (gt BlockGroupType) String() string {
	switch gt {
	case BlockGroupDocument:
		return "Document"
	case BlockGroupListItem:
		return "ListItem"
	case BlockGroupFormatContainer:
		return "FormatContainer"
	case BlockGroupTableCell:
		return "TableCell"
	default:
		return "Unknown"
	}
}

// BlockGroup is a container of blocks: *Document, *ListItem,
// *FormatContainer or *TableCell.
type BlockGroup interface {
	GroupType() BlockGroupType
	Children() []Block
	SetChildren(blocks []Block)
	isBlockGroup()
}

// SegmentType identifies the variant of a Segment.
type SegmentType int

const (
	SegmentTypeUnknown SegmentType = iota
	SegmentTypeText
	SegmentTypeBr
	SegmentTypeSelectionMarker
	SegmentTypeImage
	SegmentTypeEntity
)

func (st SegmentType) String() string {
	switch st {
	case SegmentTypeText:
		return "Text"
	case SegmentTypeBr:
		return "Br"
	case SegmentTypeSelectionMarker:
		return "SelectionMarker"
	case SegmentTypeImage:
		return "Image"
	case SegmentTypeEntity:
		return "Entity"
	default:
		return "Unknown"
	}
}

// Segment is an inline unit inside a Paragraph. Implementations: *Text, *Br,
// *SelectionMarker, *Image and *Entity.
type Segment interface {
	SegmentType() SegmentType
	SegmentFormat() Format
	SetSegmentFormat(f Format)
	Selected() bool
	SetSelected(selected bool)
	isSegment()
}

// ============================================================================
// Block groups
// ============================================================================

// ListLevel is one entry of a list item's nesting stack.
type ListLevel struct {
	ListType string // "OL" or "UL"
	Format   Format
	Dataset  Dataset
}

// ListItem is a list entry. Nested lists are flattened into sibling list
// items with a deeper Levels stack.
type ListItem struct {
	Blocks        []Block
	Levels        []ListLevel
	FormatHolder  *SelectionMarker
	Format        Format
	CachedElement *html.Node
}

func (li *ListItem) BlockType() BlockType      { return BlockTypeBlockGroup }
func (li *ListItem) GroupType() BlockGroupType { return BlockGroupListItem }
func (li *ListItem) Children() []Block         { return li.Blocks }
func (li *ListItem) SetChildren(b []Block)     { li.Blocks = b }
func (li *ListItem) isBlock()                  {}
func (li *ListItem) isBlockGroup()             {}

// FormatContainer wraps blocks in a formatting element such as blockquote.
type FormatContainer struct {
	TagName       string
	Blocks        []Block
	Format        Format
	CachedElement *html.Node
}

func (fc *FormatContainer) BlockType() BlockType      { return BlockTypeBlockGroup }
func (fc *FormatContainer) GroupType() BlockGroupType { return BlockGroupFormatContainer }
func (fc *FormatContainer) Children() []Block         { return fc.Blocks }
func (fc *FormatContainer) SetChildren(b []Block)     { fc.Blocks = b }
func (fc *FormatContainer) isBlock()                  {}
func (fc *FormatContainer) isBlockGroup()             {}

// ============================================================================
// Blocks
// ============================================================================

// ParagraphDecorator records the element a paragraph was declared with
// (p, h1..h6) and its default format.
type ParagraphDecorator struct {
	TagName string
	Format  Format
}

// Paragraph is an ordered run of segments.
type Paragraph struct {
	Segments      []Segment
	Format        Format
	SegmentFormat Format
	Decorator     *ParagraphDecorator
	// IsImplicit marks a paragraph with no element of its own in the DOM.
	IsImplicit    bool
	CachedElement *html.Node
}

func (p *Paragraph) BlockType() BlockType { return BlockTypeParagraph }
func (p *Paragraph) isBlock()             {}

// IndexOf returns the index of seg within the paragraph, or -1.
func (p *Paragraph) IndexOf(seg Segment) int {
	for i, s := range p.Segments {
		if s == seg {
			return i
		}
	}
	return -1
}

// Divider is a horizontal rule.
type Divider struct {
	TagName       string
	Format        Format
	IsSelected    bool
	CachedElement *html.Node
}

func (d *Divider) BlockType() BlockType { return BlockTypeDivider }
func (d *Divider) isBlock()             {}

// ============================================================================
// Segments
// ============================================================================

// Text is a run of characters sharing one format.
type Text struct {
	Text       string
	Format     Format
	Link       *Link
	IsSelected bool
}

func (t *Text) SegmentType() SegmentType  { return SegmentTypeText }
func (t *Text) SegmentFormat() Format     { return t.Format }
func (t *Text) SetSegmentFormat(f Format) { t.Format = f }
func (t *Text) Selected() bool            { return t.IsSelected }
func (t *Text) SetSelected(s bool)        { t.IsSelected = s }
func (t *Text) isSegment()                {}

// Br is a line break.
type Br struct {
	Format     Format
	IsSelected bool
}

func (b *Br) SegmentType() SegmentType  { return SegmentTypeBr }
func (b *Br) SegmentFormat() Format     { return b.Format }
func (b *Br) SetSegmentFormat(f Format) { b.Format = f }
func (b *Br) Selected() bool            { return b.IsSelected }
func (b *Br) SetSelected(s bool)        { b.IsSelected = s }
func (b *Br) isSegment()                {}

// SelectionMarker is a zero-width caret anchor.
type SelectionMarker struct {
	Format     Format
	IsSelected bool
}

func (m *SelectionMarker) SegmentType() SegmentType  { return SegmentTypeSelectionMarker }
func (m *SelectionMarker) SegmentFormat() Format     { return m.Format }
func (m *SelectionMarker) SetSegmentFormat(f Format) { m.Format = f }
func (m *SelectionMarker) Selected() bool            { return m.IsSelected }
func (m *SelectionMarker) SetSelected(s bool)        { m.IsSelected = s }
func (m *SelectionMarker) isSegment()                {}

// Image is an inline picture.
type Image struct {
	Src        string
	Alt        string
	Title      string
	Width      string
	Height     string
	Format     Format
	Dataset    Dataset
	Link       *Link
	IsSelected bool
	// IsSelectedAsImageSelection is set when the image itself, rather than a
	// text range around it, is the selection target.
	IsSelectedAsImageSelection bool
}

func (i *Image) SegmentType() SegmentType  { return SegmentTypeImage }
func (i *Image) SegmentFormat() Format     { return i.Format }
func (i *Image) SetSegmentFormat(f Format) { i.Format = f }
func (i *Image) Selected() bool            { return i.IsSelected }
func (i *Image) SetSelected(s bool)        { i.IsSelected = s }
func (i *Image) isSegment()                {}

// EntityFormat identifies an entity and how editing treats it.
type EntityFormat struct {
	ID           string
	EntityType   string
	IsReadonly   bool
	IsFakeEntity bool
	// Undeletable entities survive DeleteSelection.
	Undeletable bool
}

// Entity is an opaque island of host content. It is both a Block (when its
// wrapper is block-level) and a Segment (when inline).
type Entity struct {
	Wrapper      *html.Node
	EntityFormat EntityFormat
	Format       Format
	IsSelected   bool
}

func (e *Entity) BlockType() BlockType      { return BlockTypeEntity }
func (e *Entity) SegmentType() SegmentType  { return SegmentTypeEntity }
func (e *Entity) SegmentFormat() Format     { return e.Format }
func (e *Entity) SetSegmentFormat(f Format) { e.Format = f }
func (e *Entity) Selected() bool            { return e.IsSelected }
func (e *Entity) SetSelected(s bool)        { e.IsSelected = s }
func (e *Entity) isBlock()                  {}
func (e *Entity) isSegment()                {}

// ============================================================================
// Constructors
// ============================================================================

// NewParagraph creates a paragraph. Format is cloned.
func NewParagraph(isImplicit bool, format Format) *Paragraph {
	return &Paragraph{
		IsImplicit: isImplicit,
		Format:     format.Clone(),
	}
}

// NewText creates a text segment. Format is cloned.
func NewText(text string, format Format) *Text {
	return &Text{Text: text, Format: format.Clone()}
}

// NewBr creates a line break segment.
func NewBr(format Format) *Br {
	return &Br{Format: format.Clone()}
}

// NewSelectionMarker creates a selected caret marker.
func NewSelectionMarker(format Format) *SelectionMarker {
	return &SelectionMarker{Format: format.Clone(), IsSelected: true}
}

// NewImage creates an image segment.
func NewImage(src string, format Format) *Image {
	return &Image{Src: src, Format: format.Clone(), Dataset: Dataset{}}
}

// NewEntity creates an entity around wrapper.
func NewEntity(wrapper *html.Node, ef EntityFormat, format Format) *Entity {
	return &Entity{Wrapper: wrapper, EntityFormat: ef, Format: format.Clone()}
}

// NewDivider creates a divider for tagName (normally "hr").
func NewDivider(tagName string, format Format) *Divider {
	return &Divider{TagName: tagName, Format: format.Clone()}
}

// NewListItem creates a list item with a copy of levels.
func NewListItem(levels []ListLevel, format Format) *ListItem {
	cp := make([]ListLevel, len(levels))
	for i, l := range levels {
		cp[i] = ListLevel{ListType: l.ListType, Format: l.Format.Clone(), Dataset: l.Dataset.Clone()}
	}
	return &ListItem{
		Levels:       cp,
		Format:       format.Clone(),
		FormatHolder: &SelectionMarker{Format: Format{}},
	}
}

// NewFormatContainer creates a container rendered as tagName.
func NewFormatContainer(tagName string, format Format) *FormatContainer {
	return &FormatContainer{TagName: tagName, Format: format.Clone()}
}

// ============================================================================
// Group helpers
// ============================================================================

// AddBlock appends block to group.
func AddBlock(group BlockGroup, block Block) {
	group.SetChildren(append(group.Children(), block))
}

// AddSegment appends seg to the last paragraph of group, creating an
// implicit paragraph when the group does not end with one.
func AddSegment(group BlockGroup, seg Segment) *Paragraph {
	blocks := group.Children()
	if n := len(blocks); n > 0 {
		if p, ok := blocks[n-1].(*Paragraph); ok {
			p.Segments = append(p.Segments, seg)
			return p
		}
	}
	p := NewParagraph(true, nil)
	p.Segments = append(p.Segments, seg)
	AddBlock(group, p)
	return p
}

// IndexOfBlock returns the index of block inside group, or -1.
func IndexOfBlock(group BlockGroup, block Block) int {
	for i, b := range group.Children() {
		if b == block {
			return i
		}
	}
	return -1
}

// InsertBlock inserts block at index in group.
func InsertBlock(group BlockGroup, index int, blocks ...Block) {
	children := group.Children()
	if index < 0 || index > len(children) {
		index = len(children)
	}
	out := make([]Block, 0, len(children)+len(blocks))
	out = append(out, children[:index]...)
	out = append(out, blocks...)
	out = append(out, children[index:]...)
	group.SetChildren(out)
}

// RemoveBlock removes block from group. It reports whether it was found.
func RemoveBlock(group BlockGroup, block Block) bool {
	idx := IndexOfBlock(group, block)
	if idx < 0 {
		return false
	}
	children := group.Children()
	out := make([]Block, 0, len(children)-1)
	out = append(out, children[:idx]...)
	out = append(out, children[idx+1:]...)
	group.SetChildren(out)
	return true
}
