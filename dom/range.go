package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Range is a pair of boundary points. A boundary point is a container node
// and an offset: a byte offset for text and comment nodes, a child index
// otherwise. Ranges are not live; editing the tree does not update them.
type Range struct {
	StartContainer *html.Node
	StartOffset    int
	EndContainer   *html.Node
	EndOffset      int
}

// NewRange returns a range collapsed at (n, offset).
func NewRange(n *html.Node, offset int) *Range {
	return &Range{StartContainer: n, StartOffset: offset, EndContainer: n, EndOffset: offset}
}

// Clone returns a copy of r.
func (r *Range) Clone() *Range {
	c := *r
	return &c
}

// Collapsed reports whether start and end are the same point.
func (r *Range) Collapsed() bool {
	return r.StartContainer == r.EndContainer && r.StartOffset == r.EndOffset
}

// SetStart moves the start point. When the new start lies after the end,
// the range collapses to the new start.
func (r *Range) SetStart(n *html.Node, offset int) {
	r.StartContainer, r.StartOffset = n, offset
	if r.EndContainer == nil || ComparePoints(n, offset, r.EndContainer, r.EndOffset) > 0 {
		r.EndContainer, r.EndOffset = n, offset
	}
}

// SetEnd moves the end point. When the new end lies before the start, the
// range collapses to the new end.
func (r *Range) SetEnd(n *html.Node, offset int) {
	r.EndContainer, r.EndOffset = n, offset
	if r.StartContainer == nil || ComparePoints(n, offset, r.StartContainer, r.StartOffset) < 0 {
		r.StartContainer, r.StartOffset = n, offset
	}
}

// SetStartBefore puts the start right before n.
func (r *Range) SetStartBefore(n *html.Node) { r.SetStart(n.Parent, IndexOf(n)) }

// SetStartAfter puts the start right after n.
func (r *Range) SetStartAfter(n *html.Node) { r.SetStart(n.Parent, IndexOf(n)+1) }

// SetEndBefore puts the end right before n.
func (r *Range) SetEndBefore(n *html.Node) { r.SetEnd(n.Parent, IndexOf(n)) }

// SetEndAfter puts the end right after n.
func (r *Range) SetEndAfter(n *html.Node) { r.SetEnd(n.Parent, IndexOf(n)+1) }

// SelectNode makes the range surround n. n must have a parent.
func (r *Range) SelectNode(n *html.Node) {
	idx := IndexOf(n)
	r.StartContainer, r.StartOffset = n.Parent, idx
	r.EndContainer, r.EndOffset = n.Parent, idx+1
}

// SelectNodeContents makes the range span the contents of n.
func (r *Range) SelectNodeContents(n *html.Node) {
	r.StartContainer, r.StartOffset = n, 0
	r.EndContainer, r.EndOffset = n, NodeLength(n)
}

// Collapse collapses the range onto its start (toStart) or end.
func (r *Range) Collapse(toStart bool) {
	if toStart {
		r.EndContainer, r.EndOffset = r.StartContainer, r.StartOffset
	} else {
		r.StartContainer, r.StartOffset = r.EndContainer, r.EndOffset
	}
}

// CommonAncestor returns the deepest node containing both boundary points.
func (r *Range) CommonAncestor() *html.Node {
	for n := r.StartContainer; n != nil; n = n.Parent {
		if Contains(n, r.EndContainer) {
			return n
		}
	}
	return nil
}

// IsPointInRange reports whether (n, offset) lies within r, boundaries
// included.
func (r *Range) IsPointInRange(n *html.Node, offset int) bool {
	return ComparePoints(n, offset, r.StartContainer, r.StartOffset) >= 0 &&
		ComparePoints(n, offset, r.EndContainer, r.EndOffset) <= 0
}

// IntersectsNode reports whether any part of n lies inside r.
func (r *Range) IntersectsNode(n *html.Node) bool {
	if n.Parent == nil {
		return Contains(n, r.StartContainer)
	}
	idx := IndexOf(n)
	return ComparePoints(n.Parent, idx, r.EndContainer, r.EndOffset) < 0 &&
		ComparePoints(n.Parent, idx+1, r.StartContainer, r.StartOffset) > 0
}

// CloneContents copies the content between the boundary points into a new
// fragment. Partially selected elements are copied shallowly with only their
// selected descendants; partially selected text is cut at the offsets.
func (r *Range) CloneContents() *html.Node {
	frag := NewFragment()
	if r.Collapsed() || r.StartContainer == nil {
		return frag
	}
	if r.StartContainer == r.EndContainer && isCharacterData(r.StartContainer) {
		c := CloneNode(r.StartContainer, false)
		c.Data = r.StartContainer.Data[r.StartOffset:r.EndOffset]
		frag.AppendChild(c)
		return frag
	}
	if ca := r.CommonAncestor(); ca != nil {
		r.cloneInto(frag, ca)
	}
	return frag
}

func (r *Range) cloneInto(dst, node *html.Node) {
	idx := 0
	for c := node.FirstChild; c != nil; c, idx = c.NextSibling, idx+1 {
		if ComparePoints(node, idx+1, r.StartContainer, r.StartOffset) <= 0 {
			continue
		}
		if ComparePoints(node, idx, r.EndContainer, r.EndOffset) >= 0 {
			break
		}
		holdsStart := Contains(c, r.StartContainer)
		holdsEnd := Contains(c, r.EndContainer)
		switch {
		case !holdsStart && !holdsEnd:
			dst.AppendChild(CloneNode(c, true))
		case isCharacterData(c):
			from, to := 0, len(c.Data)
			if c == r.StartContainer {
				from = r.StartOffset
			}
			if c == r.EndContainer {
				to = r.EndOffset
			}
			if from >= to {
				continue
			}
			t := CloneNode(c, false)
			t.Data = c.Data[from:to]
			dst.AppendChild(t)
		default:
			shallow := CloneNode(c, false)
			dst.AppendChild(shallow)
			r.cloneInto(shallow, c)
		}
	}
}

// String returns the text inside the range.
func (r *Range) String() string {
	var sb strings.Builder
	Walk(r.CloneContents(), func(n *html.Node) bool {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		return true
	})
	return sb.String()
}

func isCharacterData(n *html.Node) bool {
	return n.Type == html.TextNode || n.Type == html.CommentNode
}

// ComparePoints orders two boundary points: -1 when (a, aOffset) comes first,
// 1 when it comes last and 0 when they are equal. Both nodes must share a
// root.
func ComparePoints(a *html.Node, aOffset int, b *html.Node, bOffset int) int {
	pa := append(treePath(a), aOffset)
	pb := append(treePath(b), bOffset)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		switch {
		case pa[i] < pb[i]:
			return -1
		case pa[i] > pb[i]:
			return 1
		}
	}
	switch {
	case len(pa) < len(pb):
		return -1
	case len(pa) > len(pb):
		return 1
	default:
		return 0
	}
}

// treePath lists the child indices leading from the root to n.
func treePath(n *html.Node) []int {
	var rev []int
	for c := n; c.Parent != nil; c = c.Parent {
		rev = append(rev, IndexOf(c))
	}
	out := make([]int, len(rev), len(rev)+1)
	for i, v := range rev {
		out[len(rev)-1-i] = v
	}
	return out
}
