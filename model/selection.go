package model

// TableSelectionContext locates a selection inside a table cell.
type TableSelectionContext struct {
	Table                *Table
	RowIndex             int
	ColIndex             int
	IsWholeTableSelected bool
}

// SameTableContext reports whether a and b point at the same cell. Two nil
// contexts are the same (both outside any table).
func SameTableContext(a, b *TableSelectionContext) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Table == b.Table && a.RowIndex == b.RowIndex && a.ColIndex == b.ColIndex
}

// IterationCallback receives one selected run. path lists the enclosing
// groups innermost first. block is nil for a selected table cell, in which
// case tableContext names the cell. segments is set only for paragraphs.
// Returning true stops the iteration.
type IterationCallback func(path []BlockGroup, tableContext *TableSelectionContext, block Block, segments []Segment) bool

// IterateSelections walks every selected block and segment run under group
// in document order.
func IterateSelections(group BlockGroup, callback IterationCallback) {
	iterateGroup([]BlockGroup{group}, callback, nil, false)
}

func iterateGroup(path []BlockGroup, callback IterationCallback, tableContext *TableSelectionContext, treatAllAsSelected bool) bool {
	group := path[0]
	for _, block := range group.Children() {
		switch b := block.(type) {
		case *Paragraph:
			var segments []Segment
			for _, seg := range b.Segments {
				if treatAllAsSelected || seg.Selected() {
					segments = append(segments, seg)
				}
			}
			if len(segments) > 0 && callback(path, tableContext, b, segments) {
				return true
			}

		case *Table:
			if iterateTable(path, callback, b, treatAllAsSelected) {
				return true
			}

		case *ListItem:
			if iterateGroup(prependPath(b, path), callback, tableContext, treatAllAsSelected) {
				return true
			}

		case *FormatContainer:
			if iterateGroup(prependPath(b, path), callback, tableContext, treatAllAsSelected) {
				return true
			}

		case *Entity:
			if (treatAllAsSelected || b.IsSelected) && callback(path, tableContext, b, nil) {
				return true
			}

		case *Divider:
			if (treatAllAsSelected || b.IsSelected) && callback(path, tableContext, b, nil) {
				return true
			}
		}
	}
	return false
}

func iterateTable(path []BlockGroup, callback IterationCallback, table *Table, treatAllAsSelected bool) bool {
	whole := isWholeTableSelected(table)
	for r, row := range table.Rows {
		for c, cell := range row.Cells {
			ctx := &TableSelectionContext{
				Table:                table,
				RowIndex:             r,
				ColIndex:             c,
				IsWholeTableSelected: whole,
			}
			selected := treatAllAsSelected || cell.IsSelected
			if selected && callback(path, ctx, nil, nil) {
				return true
			}
			if iterateGroup(prependPath(cell, path), callback, ctx, selected) {
				return true
			}
		}
	}
	return false
}

func isWholeTableSelected(table *Table) bool {
	if len(table.Rows) == 0 {
		return false
	}
	for _, row := range table.Rows {
		for _, cell := range row.Cells {
			if !cell.IsSelected {
				return false
			}
		}
	}
	return true
}

func prependPath(group BlockGroup, path []BlockGroup) []BlockGroup {
	out := make([]BlockGroup, 0, len(path)+1)
	out = append(out, group)
	return append(out, path...)
}

// SelectedSegmentsAndParagraphs returns every selected segment paired with its
// paragraph, in document order.
func SelectedSegmentsAndParagraphs(group BlockGroup) []SegmentInParagraph {
	var out []SegmentInParagraph
	IterateSelections(group, func(_ []BlockGroup, _ *TableSelectionContext, block Block, segments []Segment) bool {
		if p, ok := block.(*Paragraph); ok {
			for _, s := range segments {
				out = append(out, SegmentInParagraph{Segment: s, Paragraph: p})
			}
		}
		return false
	})
	return out
}

// SegmentInParagraph pairs a segment with the paragraph holding it.
type SegmentInParagraph struct {
	Segment   Segment
	Paragraph *Paragraph
}

// ClearSelection resets every IsSelected flag under group.
func ClearSelection(group BlockGroup) {
	for _, block := range group.Children() {
		switch b := block.(type) {
		case *Paragraph:
			for _, seg := range b.Segments {
				seg.SetSelected(false)
				if img, ok := seg.(*Image); ok {
					img.IsSelectedAsImageSelection = false
				}
			}
		case *Table:
			for _, row := range b.Rows {
				for _, cell := range row.Cells {
					cell.IsSelected = false
					ClearSelection(cell)
				}
			}
		case *ListItem:
			ClearSelection(b)
		case *FormatContainer:
			ClearSelection(b)
		case *Entity:
			b.IsSelected = false
		case *Divider:
			b.IsSelected = false
		}
	}
}

// RemoveSelectionMarkers drops every selection marker under group.
func RemoveSelectionMarkers(group BlockGroup) {
	for _, block := range group.Children() {
		switch b := block.(type) {
		case *Paragraph:
			kept := b.Segments[:0]
			for _, seg := range b.Segments {
				if seg.SegmentType() != SegmentTypeSelectionMarker {
					kept = append(kept, seg)
				}
			}
			b.Segments = kept
		case *Table:
			for _, row := range b.Rows {
				for _, cell := range row.Cells {
					RemoveSelectionMarkers(cell)
				}
			}
		case *ListItem:
			RemoveSelectionMarkers(b)
		case *FormatContainer:
			RemoveSelectionMarkers(b)
		}
	}
}

// SetSelection clears the current selection under group and selects every
// segment from start through end inclusive, in document order. When start and
// end are the same selection marker the result is a collapsed caret.
func SetSelection(group BlockGroup, start, end Segment) {
	ClearSelection(group)
	if start == nil {
		return
	}
	if end == nil {
		end = start
	}
	inRange := false
	walkSegments(group, func(seg Segment) bool {
		if seg == start {
			inRange = true
		}
		if inRange {
			seg.SetSelected(true)
		}
		if seg == end {
			return true
		}
		return false
	})
}

// walkSegments visits every segment under group in document order until fn
// returns true.
func walkSegments(group BlockGroup, fn func(Segment) bool) bool {
	for _, block := range group.Children() {
		switch b := block.(type) {
		case *Paragraph:
			for _, seg := range b.Segments {
				if fn(seg) {
					return true
				}
			}
		case *Table:
			for _, row := range b.Rows {
				for _, cell := range row.Cells {
					if walkSegments(cell, fn) {
						return true
					}
				}
			}
		case *ListItem:
			if walkSegments(b, fn) {
				return true
			}
		case *FormatContainer:
			if walkSegments(b, fn) {
				return true
			}
		}
	}
	return false
}
