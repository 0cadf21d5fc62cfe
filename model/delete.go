package model

// DeleteResult describes what DeleteSelection did.
type DeleteResult int

const (
	// DeleteResultNothingToDelete means no selection was found.
	DeleteResultNothingToDelete DeleteResult = iota
	// DeleteResultNotDeleted means the selection was a collapsed caret.
	DeleteResultNotDeleted
	// DeleteResultRange means selected content was removed.
	DeleteResultRange
)

func (r DeleteResult) String() string {
	switch r {
	case DeleteResultNotDeleted:
		return "notDeleted"
	case DeleteResultRange:
		return "range"
	default:
		return "nothingToDelete"
	}
}

// InsertPoint is the caret left behind by a deletion.
type InsertPoint struct {
	Marker       *SelectionMarker
	Paragraph    *Paragraph
	Path         []BlockGroup
	TableContext *TableSelectionContext
}

// DeleteSelectionContext carries the deletion outcome through DeleteSteps.
type DeleteSelectionContext struct {
	DeleteResult DeleteResult
	InsertPoint  *InsertPoint

	entries       []selectionEntry
	removedTables map[*Table]bool
	clearedCells  map[*TableCell]bool
}

// DeleteStep runs after the selected content has been removed.
type DeleteStep func(ctx *DeleteSelectionContext)

type selectionEntry struct {
	path         []BlockGroup
	tableContext *TableSelectionContext
	block        Block
	segments     []Segment
}

// DeleteSelection removes the selected content under group and leaves one
// selected marker where the selection started. Undeletable entities are kept
// and unselected. Paragraph content that followed the selection is merged
// into the paragraph holding the marker when both sit in the same table cell
// (or both outside tables). The model is not normalized; callers do that.
func DeleteSelection(group BlockGroup, steps ...DeleteStep) *DeleteSelectionContext {
	ctx := &DeleteSelectionContext{
		removedTables: make(map[*Table]bool),
		clearedCells:  make(map[*TableCell]bool),
	}
	IterateSelections(group, func(path []BlockGroup, tc *TableSelectionContext, block Block, segments []Segment) bool {
		ctx.entries = append(ctx.entries, selectionEntry{path: path, tableContext: tc, block: block, segments: segments})
		return false
	})

	if len(ctx.entries) == 0 {
		ctx.DeleteResult = DeleteResultNothingToDelete
		return ctx
	}

	first := ctx.entries[0]
	if p, ok := first.block.(*Paragraph); ok && len(ctx.entries) == 1 &&
		len(first.segments) == 1 && first.segments[0].SegmentType() == SegmentTypeSelectionMarker {
		ctx.DeleteResult = DeleteResultNotDeleted
		ctx.InsertPoint = &InsertPoint{
			Marker:       first.segments[0].(*SelectionMarker),
			Paragraph:    p,
			Path:         first.path,
			TableContext: first.tableContext,
		}
		return ctx
	}

	ctx.InsertPoint = ctx.createInsertPoint(first)
	for _, e := range ctx.entries {
		ctx.deleteEntry(e)
	}
	ctx.mergeFollowingParagraph()

	ClearSelection(group)
	ctx.InsertPoint.Marker.IsSelected = true
	ctx.DeleteResult = DeleteResultRange

	for _, step := range steps {
		step(ctx)
	}
	return ctx
}

func (ctx *DeleteSelectionContext) createInsertPoint(e selectionEntry) *InsertPoint {
	switch b := e.block.(type) {
	case *Paragraph:
		seg := e.segments[0]
		if m, ok := seg.(*SelectionMarker); ok {
			return &InsertPoint{Marker: m, Paragraph: b, Path: e.path, TableContext: e.tableContext}
		}
		marker := NewSelectionMarker(seg.SegmentFormat())
		idx := b.IndexOf(seg)
		b.Segments = append(b.Segments[:idx], append([]Segment{marker}, b.Segments[idx:]...)...)
		return &InsertPoint{Marker: marker, Paragraph: b, Path: e.path, TableContext: e.tableContext}

	case nil:
		tc := e.tableContext
		marker := NewSelectionMarker(nil)
		para := NewParagraph(false, nil)
		para.Segments = append(para.Segments, marker, NewBr(nil))
		if tc.IsWholeTableSelected {
			group := e.path[0]
			idx := IndexOfBlock(group, tc.Table)
			RemoveBlock(group, tc.Table)
			InsertBlock(group, idx, para)
			ctx.removedTables[tc.Table] = true
			return &InsertPoint{Marker: marker, Paragraph: para, Path: e.path}
		}
		cell := tc.Table.Rows[tc.RowIndex].Cells[tc.ColIndex]
		cell.Blocks = []Block{para}
		ctx.clearedCells[cell] = true
		return &InsertPoint{Marker: marker, Paragraph: para, Path: prependPath(cell, e.path), TableContext: tc}

	default:
		marker := NewSelectionMarker(nil)
		para := NewParagraph(false, nil)
		para.Segments = append(para.Segments, marker)
		group := e.path[0]
		idx := IndexOfBlock(group, e.block)
		if ent, ok := e.block.(*Entity); ok && ent.EntityFormat.Undeletable {
			InsertBlock(group, idx+1, para)
		} else {
			RemoveBlock(group, e.block)
			InsertBlock(group, idx, para)
		}
		return &InsertPoint{Marker: marker, Paragraph: para, Path: e.path, TableContext: e.tableContext}
	}
}

func (ctx *DeleteSelectionContext) consumed(tc *TableSelectionContext) bool {
	if tc == nil {
		return false
	}
	if ctx.removedTables[tc.Table] {
		return true
	}
	return ctx.clearedCells[tc.Table.Rows[tc.RowIndex].Cells[tc.ColIndex]]
}

func (ctx *DeleteSelectionContext) deleteEntry(e selectionEntry) {
	ip := ctx.InsertPoint
	switch b := e.block.(type) {
	case *Paragraph:
		if ctx.consumed(e.tableContext) && b != ip.Paragraph {
			return
		}
		selected := make(map[Segment]bool, len(e.segments))
		for _, s := range e.segments {
			selected[s] = true
		}
		kept := make([]Segment, 0, len(b.Segments))
		for _, s := range b.Segments {
			if s == Segment(ip.Marker) || !selected[s] {
				kept = append(kept, s)
				continue
			}
			if ent, ok := s.(*Entity); ok && ent.EntityFormat.Undeletable {
				ent.IsSelected = false
				kept = append(kept, s)
			}
		}
		b.Segments = kept

	case nil:
		tc := e.tableContext
		if ctx.consumed(tc) {
			return
		}
		if tc.IsWholeTableSelected {
			RemoveBlock(e.path[0], tc.Table)
			ctx.removedTables[tc.Table] = true
			return
		}
		cell := tc.Table.Rows[tc.RowIndex].Cells[tc.ColIndex]
		cell.IsSelected = false
		if !cell.SpanLeft && !cell.SpanAbove {
			p := NewParagraph(true, nil)
			p.Segments = append(p.Segments, NewBr(nil))
			cell.Blocks = []Block{p}
		}
		ctx.clearedCells[cell] = true

	case *Entity:
		if b.EntityFormat.Undeletable {
			b.IsSelected = false
			return
		}
		RemoveBlock(e.path[0], b)

	case *Divider:
		RemoveBlock(e.path[0], b)
	}
}

// mergeFollowingParagraph moves what is left of the last partially selected
// paragraph into the insert point's paragraph.
func (ctx *DeleteSelectionContext) mergeFollowingParagraph() {
	ip := ctx.InsertPoint
	for i := len(ctx.entries) - 1; i > 0; i-- {
		e := ctx.entries[i]
		p, ok := e.block.(*Paragraph)
		if !ok || p == ip.Paragraph || ctx.consumed(e.tableContext) {
			continue
		}
		if !SameTableContext(e.tableContext, ip.TableContext) {
			return
		}
		if IndexOfBlock(e.path[0], p) < 0 {
			return
		}
		ip.Paragraph.Segments = append(ip.Paragraph.Segments, p.Segments...)
		p.Segments = nil
		RemoveBlock(e.path[0], p)
		return
	}
}

// DeleteEmptyList removes list items emptied by the deletion. When the caret
// ends up in an emptied list item and the selection reached outside of it,
// the item is unwrapped into a plain paragraph.
func DeleteEmptyList(ctx *DeleteSelectionContext) {
	ip := ctx.InsertPoint
	if ip == nil || ctx.DeleteResult != DeleteResultRange {
		return
	}

	var caretItem *ListItem
	caretIdx := -1
	for i, g := range ip.Path {
		if li, ok := g.(*ListItem); ok {
			caretItem, caretIdx = li, i
			break
		}
	}

	for _, e := range ctx.entries {
		for i, g := range e.path {
			li, ok := g.(*ListItem)
			if !ok || li == caretItem || i+1 >= len(e.path) {
				continue
			}
			if isListItemEmpty(li) {
				RemoveBlock(e.path[i+1], li)
			}
		}
	}

	if caretItem == nil || caretIdx+1 >= len(ip.Path) || !isListItemEmpty(caretItem) {
		return
	}
	spanned := false
	for _, e := range ctx.entries {
		if !pathContains(e.path, caretItem) && e.block != Block(ip.Paragraph) {
			spanned = true
			break
		}
	}
	if !spanned {
		return
	}
	parent := ip.Path[caretIdx+1]
	idx := IndexOfBlock(parent, caretItem)
	if idx < 0 {
		return
	}
	RemoveBlock(parent, caretItem)
	for _, b := range caretItem.Blocks {
		// an unwrapped paragraph renders its own element so it keeps a line
		if p, ok := b.(*Paragraph); ok {
			p.IsImplicit = false
		}
	}
	InsertBlock(parent, idx, caretItem.Blocks...)
	ip.Path = append(append([]BlockGroup{}, ip.Path[:caretIdx]...), ip.Path[caretIdx+1:]...)
}

func isListItemEmpty(li *ListItem) bool {
	for _, b := range li.Blocks {
		p, ok := b.(*Paragraph)
		if !ok || !isParagraphEmpty(p) {
			return false
		}
	}
	return true
}

func pathContains(path []BlockGroup, g BlockGroup) bool {
	for _, p := range path {
		if p == g {
			return true
		}
	}
	return false
}
