package model

// MergeOptions controls MergeModel.
type MergeOptions struct {
	// MergeFormat gives pasted segments the format at the insert point and
	// keeps only emphasis (EmphasisFormatKeys) from the source.
	MergeFormat bool
	// InsertOnNewLine inserts the first pasted paragraph as its own block
	// instead of joining it with the paragraph at the caret.
	InsertOnNewLine bool
}

// MergeModel splices source into target at target's selection, replacing
// any selected content. The caret ends up right after the pasted content.
// The returned insert point describes that caret. source is consumed.
func MergeModel(target *Document, source *Document, opts MergeOptions) *InsertPoint {
	ctx := DeleteSelection(target, DeleteEmptyList)
	ip := ctx.InsertPoint
	if ip == nil {
		ip = appendInsertPoint(target)
	}

	ClearSelection(source)
	RemoveSelectionMarkers(source)
	NormalizeContentModel(source)
	if len(source.Blocks) == 1 {
		if p, ok := source.Blocks[0].(*Paragraph); ok && len(p.Segments) == 1 && p.Segments[0].SegmentType() == SegmentTypeBr {
			// an empty source normalizes to a lone break; nothing to paste
			NormalizeContentModel(target)
			return ip
		}
	}

	blocks := source.Blocks
	for i, block := range blocks {
		if opts.MergeFormat {
			applyMergeFormat(block, ip.Marker.Format)
		}
		p, isPara := block.(*Paragraph)
		switch {
		case isPara && i == 0 && !opts.InsertOnNewLine:
			insertSegments(ip, p.Segments)
		case isPara && i > 0 && i == len(blocks)-1:
			splitAtMarker(ip)
			insertSegments(ip, p.Segments)
		default:
			splitAtMarker(ip)
			insertBlockBeforeCaret(ip, block)
		}
	}

	NormalizeContentModel(target)
	return ip
}

func appendInsertPoint(doc *Document) *InsertPoint {
	marker := NewSelectionMarker(doc.Format)
	if n := len(doc.Blocks); n > 0 {
		if p, ok := doc.Blocks[n-1].(*Paragraph); ok {
			p.Segments = append(p.Segments, marker)
			return &InsertPoint{Marker: marker, Paragraph: p, Path: []BlockGroup{doc}}
		}
	}
	p := NewParagraph(false, nil)
	p.Segments = append(p.Segments, marker)
	doc.Blocks = append(doc.Blocks, p)
	return &InsertPoint{Marker: marker, Paragraph: p, Path: []BlockGroup{doc}}
}

func insertSegments(ip *InsertPoint, segs []Segment) {
	p := ip.Paragraph
	idx := p.IndexOf(ip.Marker)
	if idx < 0 {
		idx = len(p.Segments)
	}
	out := make([]Segment, 0, len(p.Segments)+len(segs))
	out = append(out, p.Segments[:idx]...)
	out = append(out, segs...)
	out = append(out, p.Segments[idx:]...)
	p.Segments = out
}

// splitAtMarker moves the segments before the marker into a new paragraph
// placed before the caret paragraph, so the caret paragraph starts with the
// marker.
func splitAtMarker(ip *InsertPoint) {
	p := ip.Paragraph
	idx := p.IndexOf(ip.Marker)
	if idx <= 0 {
		return
	}
	head := &Paragraph{
		Segments:      append([]Segment(nil), p.Segments[:idx]...),
		Format:        p.Format.Clone(),
		SegmentFormat: p.SegmentFormat.Clone(),
		IsImplicit:    p.IsImplicit,
	}
	if p.Decorator != nil {
		head.Decorator = &ParagraphDecorator{TagName: p.Decorator.TagName, Format: p.Decorator.Format.Clone()}
	}
	p.Segments = append([]Segment(nil), p.Segments[idx:]...)
	group := ip.Path[0]
	InsertBlock(group, IndexOfBlock(group, p), head)
}

func insertBlockBeforeCaret(ip *InsertPoint, block Block) {
	group := ip.Path[0]
	li, inList := group.(*ListItem)
	if _, pastingItem := block.(*ListItem); !pastingItem || !inList || len(ip.Path) < 2 {
		InsertBlock(group, IndexOfBlock(group, ip.Paragraph), block)
		return
	}

	// A pasted list item becomes a sibling of the caret's list item. Blocks
	// before the caret stay in an item of their own ahead of it.
	parent := ip.Path[1]
	caretIdx := IndexOfBlock(li, ip.Paragraph)
	if caretIdx > 0 {
		head := NewListItem(li.Levels, li.Format)
		head.Blocks = append([]Block(nil), li.Blocks[:caretIdx]...)
		li.Blocks = append([]Block(nil), li.Blocks[caretIdx:]...)
		InsertBlock(parent, IndexOfBlock(parent, li), head)
	}
	InsertBlock(parent, IndexOfBlock(parent, li), block)
}

func applyMergeFormat(block Block, base Format) {
	walkSegments(&Document{Blocks: []Block{block}}, func(seg Segment) bool {
		f := base.Clone()
		src := seg.SegmentFormat()
		for _, key := range EmphasisFormatKeys {
			if v := src.Get(key); v != "" {
				f[key] = v
			}
		}
		seg.SetSegmentFormat(f)
		return false
	})
}
