package dom

import "golang.org/x/net/html"

// Selection is the document's native selection. It holds at most one range
// plus a direction.
type Selection struct {
	rng      *Range
	reversed bool
}

// RangeCount returns 0 or 1.
func (s *Selection) RangeCount() int {
	if s.rng == nil {
		return 0
	}
	return 1
}

// RangeAt returns the range at index i, or nil.
func (s *Selection) RangeAt(i int) *Range {
	if i != 0 || s.rng == nil {
		return nil
	}
	return s.rng
}

// AddRange selects r in forward direction. Like browsers, a selection that
// already holds a range ignores the call.
func (s *Selection) AddRange(r *Range) {
	if s.rng != nil || r == nil {
		return
	}
	s.rng = r.Clone()
	s.reversed = false
}

// RemoveAllRanges clears the selection.
func (s *Selection) RemoveAllRanges() {
	s.rng = nil
	s.reversed = false
}

// SetBaseAndExtent selects from the anchor to the focus point. The
// selection is reversed when the focus comes before the anchor.
func (s *Selection) SetBaseAndExtent(anchor *html.Node, anchorOffset int, focus *html.Node, focusOffset int) {
	if ComparePoints(focus, focusOffset, anchor, anchorOffset) < 0 {
		s.rng = &Range{StartContainer: focus, StartOffset: focusOffset, EndContainer: anchor, EndOffset: anchorOffset}
		s.reversed = true
		return
	}
	s.rng = &Range{StartContainer: anchor, StartOffset: anchorOffset, EndContainer: focus, EndOffset: focusOffset}
	s.reversed = false
}

// Collapse replaces the selection with a caret at (n, offset).
func (s *Selection) Collapse(n *html.Node, offset int) {
	s.rng = NewRange(n, offset)
	s.reversed = false
}

// IsReversed reports whether the focus point comes before the anchor.
func (s *Selection) IsReversed() bool {
	return s.reversed
}

// IsCollapsed reports whether the selection is empty or a caret.
func (s *Selection) IsCollapsed() bool {
	return s.rng == nil || s.rng.Collapsed()
}

// Anchor returns the point where the selection started.
func (s *Selection) Anchor() (*html.Node, int) {
	switch {
	case s.rng == nil:
		return nil, 0
	case s.reversed:
		return s.rng.EndContainer, s.rng.EndOffset
	default:
		return s.rng.StartContainer, s.rng.StartOffset
	}
}

// Focus returns the point where the selection ends.
func (s *Selection) Focus() (*html.Node, int) {
	switch {
	case s.rng == nil:
		return nil, 0
	case s.reversed:
		return s.rng.StartContainer, s.rng.StartOffset
	default:
		return s.rng.EndContainer, s.rng.EndOffset
	}
}
