package model

// NormalizeContentModel tidies group in place:
//   - empty text segments are dropped and adjacent equal text runs merged
//   - a selected marker next to a selected segment is redundant and dropped
//   - a non-implicit paragraph holding only markers gets a Br
//   - empty paragraphs, list items and format containers are removed
//   - real table cells always hold at least one block, shadow cells none
//
// A document is never left without blocks.
func NormalizeContentModel(group BlockGroup) {
	normalizeGroup(group)
	if doc, ok := group.(*Document); ok && len(doc.Blocks) == 0 {
		p := NewParagraph(false, nil)
		p.Segments = append(p.Segments, NewBr(doc.Format))
		doc.Blocks = append(doc.Blocks, p)
	}
}

func normalizeGroup(group BlockGroup) {
	children := group.Children()
	out := make([]Block, 0, len(children))
	for _, block := range children {
		switch b := block.(type) {
		case *Paragraph:
			normalizeParagraph(b)
			if len(b.Segments) == 0 {
				continue
			}
		case *Table:
			normalizeTableCells(b)
		case *ListItem:
			normalizeGroup(b)
			if len(b.Blocks) == 0 {
				continue
			}
		case *FormatContainer:
			normalizeGroup(b)
			if len(b.Blocks) == 0 {
				continue
			}
		}
		out = append(out, block)
	}
	group.SetChildren(out)
}

func normalizeTableCells(t *Table) {
	for _, row := range t.Rows {
		for _, cell := range row.Cells {
			if cell.SpanLeft || cell.SpanAbove {
				cell.Blocks = nil
				continue
			}
			normalizeGroup(cell)
			if len(cell.Blocks) == 0 {
				p := NewParagraph(true, nil)
				p.Segments = append(p.Segments, NewBr(nil))
				cell.Blocks = append(cell.Blocks, p)
			}
		}
	}
}

func normalizeParagraph(p *Paragraph) {
	segs := make([]Segment, 0, len(p.Segments))
	for _, seg := range p.Segments {
		if t, ok := seg.(*Text); ok && t.Text == "" {
			continue
		}
		if n := len(segs); n > 0 {
			if prev, ok := segs[n-1].(*Text); ok {
				if cur, ok := seg.(*Text); ok && canMergeText(prev, cur) {
					prev.Text += cur.Text
					continue
				}
			}
			if seg.SegmentType() == SegmentTypeSelectionMarker && segs[n-1].SegmentType() == SegmentTypeSelectionMarker &&
				seg.Selected() == segs[n-1].Selected() {
				continue
			}
		}
		segs = append(segs, seg)
	}

	kept := make([]Segment, 0, len(segs))
	for i, seg := range segs {
		if seg.SegmentType() == SegmentTypeSelectionMarker && seg.Selected() &&
			(selectedContent(segs, i-1) || selectedContent(segs, i+1)) {
			continue
		}
		kept = append(kept, seg)
	}
	p.Segments = kept

	if !p.IsImplicit && len(kept) > 0 && onlyMarkers(kept) {
		p.Segments = append(p.Segments, NewBr(kept[len(kept)-1].SegmentFormat()))
	}
}

func canMergeText(a, b *Text) bool {
	if a.IsSelected != b.IsSelected || !a.Format.Equal(b.Format) {
		return false
	}
	if (a.Link == nil) != (b.Link == nil) {
		return false
	}
	return a.Link == nil || a.Link.Href == b.Link.Href
}

func selectedContent(segs []Segment, i int) bool {
	if i < 0 || i >= len(segs) {
		return false
	}
	s := segs[i]
	return s.Selected() && s.SegmentType() != SegmentTypeSelectionMarker
}

func onlyMarkers(segs []Segment) bool {
	for _, s := range segs {
		if s.SegmentType() != SegmentTypeSelectionMarker {
			return false
		}
	}
	return true
}

// isParagraphEmpty reports whether p renders no content (markers and breaks
// only).
func isParagraphEmpty(p *Paragraph) bool {
	for _, s := range p.Segments {
		switch s.SegmentType() {
		case SegmentTypeSelectionMarker, SegmentTypeBr:
		default:
			return false
		}
	}
	return true
}
