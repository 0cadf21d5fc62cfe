package model

import (
	"github.com/tsawler/inkwell/dom"
	"golang.org/x/net/html"
)

// CachedElementKind tells a CachedElementHandler what a node is used for.
type CachedElementKind int

const (
	// CachedElementCache is a render cache (paragraph, table, row, cell).
	CachedElementCache CachedElementKind = iota
	// CachedElementEntity is an entity wrapper, which is content.
	CachedElementEntity
)

// CachedElementHandler decides what a clone keeps for a DOM reference.
// Returning nil drops the reference.
type CachedElementHandler func(node *html.Node, kind CachedElementKind) *html.Node

// CloneOptions controls CloneModel.
type CloneOptions struct {
	// KeepCachedElements copies DOM references as-is (connected clone).
	KeepCachedElements bool
	// IncludeCachedElement, when set, maps every DOM reference.
	IncludeCachedElement CachedElementHandler
}

// CloneModel returns a deep copy of doc. By default render caches are
// dropped and entity wrappers are deep cloned, so the copy never shares DOM
// nodes with the live surface.
func CloneModel(doc *Document, opts CloneOptions) *Document {
	c := cloner{opts: opts}
	return &Document{
		Blocks: c.blocks(doc.Blocks),
		Format: doc.Format.Clone(),
	}
}

type cloner struct {
	opts CloneOptions
}

func (c cloner) cached(node *html.Node, kind CachedElementKind) *html.Node {
	if node == nil {
		return nil
	}
	switch {
	case c.opts.KeepCachedElements:
		return node
	case c.opts.IncludeCachedElement != nil:
		return c.opts.IncludeCachedElement(node, kind)
	case kind == CachedElementEntity:
		return dom.CloneNode(node, true)
	default:
		return nil
	}
}

func (c cloner) blocks(blocks []Block) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if cb := c.block(b); cb != nil {
			out = append(out, cb)
		}
	}
	return out
}

func (c cloner) block(block Block) Block {
	switch b := block.(type) {
	case *Paragraph:
		return c.paragraph(b)
	case *Table:
		return c.table(b)
	case *ListItem:
		levels := make([]ListLevel, len(b.Levels))
		for i, l := range b.Levels {
			levels[i] = ListLevel{ListType: l.ListType, Format: l.Format.Clone(), Dataset: l.Dataset.Clone()}
		}
		var holder *SelectionMarker
		if b.FormatHolder != nil {
			holder = &SelectionMarker{Format: b.FormatHolder.Format.Clone(), IsSelected: b.FormatHolder.IsSelected}
		}
		return &ListItem{
			Blocks:        c.blocks(b.Blocks),
			Levels:        levels,
			FormatHolder:  holder,
			Format:        b.Format.Clone(),
			CachedElement: c.cached(b.CachedElement, CachedElementCache),
		}
	case *FormatContainer:
		return &FormatContainer{
			TagName:       b.TagName,
			Blocks:        c.blocks(b.Blocks),
			Format:        b.Format.Clone(),
			CachedElement: c.cached(b.CachedElement, CachedElementCache),
		}
	case *Entity:
		return c.entity(b)
	case *Divider:
		return &Divider{
			TagName:       b.TagName,
			Format:        b.Format.Clone(),
			IsSelected:    b.IsSelected,
			CachedElement: c.cached(b.CachedElement, CachedElementCache),
		}
	default:
		return nil
	}
}

func (c cloner) paragraph(p *Paragraph) *Paragraph {
	out := &Paragraph{
		Segments:      make([]Segment, 0, len(p.Segments)),
		Format:        p.Format.Clone(),
		SegmentFormat: p.SegmentFormat.Clone(),
		IsImplicit:    p.IsImplicit,
		CachedElement: c.cached(p.CachedElement, CachedElementCache),
	}
	if p.Decorator != nil {
		out.Decorator = &ParagraphDecorator{TagName: p.Decorator.TagName, Format: p.Decorator.Format.Clone()}
	}
	for _, seg := range p.Segments {
		if cs := c.segment(seg); cs != nil {
			out.Segments = append(out.Segments, cs)
		}
	}
	return out
}

func (c cloner) segment(seg Segment) Segment {
	switch s := seg.(type) {
	case *Text:
		return &Text{Text: s.Text, Format: s.Format.Clone(), Link: s.Link.Clone(), IsSelected: s.IsSelected}
	case *Br:
		return &Br{Format: s.Format.Clone(), IsSelected: s.IsSelected}
	case *SelectionMarker:
		return &SelectionMarker{Format: s.Format.Clone(), IsSelected: s.IsSelected}
	case *Image:
		return &Image{
			Src:                        s.Src,
			Alt:                        s.Alt,
			Title:                      s.Title,
			Width:                      s.Width,
			Height:                     s.Height,
			Format:                     s.Format.Clone(),
			Dataset:                    s.Dataset.Clone(),
			Link:                       s.Link.Clone(),
			IsSelected:                 s.IsSelected,
			IsSelectedAsImageSelection: s.IsSelectedAsImageSelection,
		}
	case *Entity:
		return c.entity(s)
	default:
		return nil
	}
}

func (c cloner) entity(e *Entity) *Entity {
	return &Entity{
		Wrapper:      c.cached(e.Wrapper, CachedElementEntity),
		EntityFormat: e.EntityFormat,
		Format:       e.Format.Clone(),
		IsSelected:   e.IsSelected,
	}
}

func (c cloner) table(t *Table) *Table {
	out := &Table{
		Rows:          make([]*TableRow, len(t.Rows)),
		Widths:        append([]float64(nil), t.Widths...),
		Format:        t.Format.Clone(),
		Dataset:       t.Dataset.Clone(),
		CachedElement: c.cached(t.CachedElement, CachedElementCache),
	}
	if out.Widths == nil {
		out.Widths = []float64{}
	}
	for i, row := range t.Rows {
		nr := &TableRow{
			Height:        row.Height,
			Format:        row.Format.Clone(),
			Cells:         make([]*TableCell, len(row.Cells)),
			CachedElement: c.cached(row.CachedElement, CachedElementCache),
		}
		for j, cell := range row.Cells {
			nr.Cells[j] = &TableCell{
				Blocks:        c.blocks(cell.Blocks),
				Format:        cell.Format.Clone(),
				Dataset:       cell.Dataset.Clone(),
				SpanLeft:      cell.SpanLeft,
				SpanAbove:     cell.SpanAbove,
				IsHeader:      cell.IsHeader,
				IsSelected:    cell.IsSelected,
				CachedElement: c.cached(cell.CachedElement, CachedElementCache),
			}
		}
		out.Rows[i] = nr
	}
	return out
}
