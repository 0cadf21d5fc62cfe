package model

import "strings"

// Document is the root of a content model. One is produced per snapshot of
// an editing surface; it is not kept in sync with the DOM afterwards.
type Document struct {
	Blocks []Block
	// Format is the default segment format of the surface.
	Format Format
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{
		Blocks: make([]Block, 0),
		Format: Format{},
	}
}

func (d *Document) GroupType() BlockGroupType { return BlockGroupDocument }
func (d *Document) Children() []Block         { return d.Blocks }
func (d *Document) SetChildren(b []Block)     { d.Blocks = b }
func (d *Document) isBlockGroup()             {}

// CopyMode selects how an editor snapshot relates to the live DOM.
type CopyMode int

const (
	// CopyConnected keeps cached element references to the live DOM.
	CopyConnected CopyMode = iota
	// CopyDisconnected deep clones the model and drops every live reference.
	CopyDisconnected
)

func (m CopyMode) String() string {
	switch m {
	case CopyConnected:
		return "connected"
	case CopyDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// ExtractText returns the text of the document, one line per paragraph and
// tab-separated table cells.
func (d *Document) ExtractText() string {
	var sb strings.Builder
	writeGroupText(&sb, d)
	return strings.TrimRight(sb.String(), "\n")
}

func writeGroupText(sb *strings.Builder, group BlockGroup) {
	for _, block := range group.Children() {
		switch b := block.(type) {
		case *Paragraph:
			for _, seg := range b.Segments {
				switch s := seg.(type) {
				case *Text:
					sb.WriteString(s.Text)
				case *Br:
					sb.WriteString("\n")
				}
			}
			sb.WriteString("\n")
		case *Table:
			sb.WriteString(b.GetText())
		case *ListItem:
			writeGroupText(sb, b)
		case *FormatContainer:
			writeGroupText(sb, b)
		case *Divider:
			sb.WriteString("\n")
		case *Entity:
			// opaque
		}
	}
}
