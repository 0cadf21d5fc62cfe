package converter

import (
	"strconv"
	"strings"

	"github.com/tsawler/inkwell/dom"
	"github.com/tsawler/inkwell/model"
	"github.com/tsawler/inkwell/selection"
	"golang.org/x/net/html"
)

// OnNodeCreated is called for every node produced for a model element, after
// the node has been inserted into its parent.
type OnNodeCreated func(modelElement any, node *html.Node)

// ModelToDomContext configures ContentModelToDom and collects the selection
// found while writing.
type ModelToDomContext struct {
	// AllowCacheElement records produced elements as CachedElement.
	AllowCacheElement bool
	// OnNodeCreated, when set, observes every produced node.
	OnNodeCreated OnNodeCreated

	start, end *point
	image      *html.Node
	table      *tableSelectionState
}

type point struct {
	node   *html.Node
	offset int
}

type tableSelectionState struct {
	el                    *html.Node
	firstRow, firstColumn int
	lastRow, lastColumn   int
}

func (ctx *ModelToDomContext) reset() {
	ctx.start, ctx.end = nil, nil
	ctx.image = nil
	ctx.table = nil
}

// ContentModelToDom replaces the children of root with the rendering of m
// and returns the selection recorded in the model: an image selection, then
// a range over the selected segments, then a rectangle of selected cells.
// It returns nil when nothing is selected.
func ContentModelToDom(doc *dom.Document, root *html.Node, m *model.Document, ctx *ModelToDomContext) selection.DOMSelection {
	if ctx == nil {
		ctx = &ModelToDomContext{}
	}
	ctx.reset()

	dom.RemoveChildren(root)
	w := &writer{doc: doc, ctx: ctx}
	w.blockGroup(root, m)

	return ctx.selection()
}

func (ctx *ModelToDomContext) selection() selection.DOMSelection {
	switch {
	case ctx.image != nil:
		return &selection.ImageSelection{Image: ctx.image}
	case ctx.start != nil:
		return &selection.RangeSelection{Range: &dom.Range{
			StartContainer: ctx.start.node,
			StartOffset:    ctx.start.offset,
			EndContainer:   ctx.end.node,
			EndOffset:      ctx.end.offset,
		}}
	case ctx.table != nil:
		return &selection.TableSelection{
			Table:       ctx.table.el,
			FirstRow:    ctx.table.firstRow,
			FirstColumn: ctx.table.firstColumn,
			LastRow:     ctx.table.lastRow,
			LastColumn:  ctx.table.lastColumn,
		}
	}
	return nil
}

type writer struct {
	doc *dom.Document
	ctx *ModelToDomContext
}

func (w *writer) element(tag string) *html.Node {
	if w.doc != nil {
		return w.doc.CreateElement(tag)
	}
	return dom.NewElement(tag)
}

func (w *writer) created(modelElement any, node *html.Node) {
	if w.ctx.OnNodeCreated != nil {
		w.ctx.OnNodeCreated(modelElement, node)
	}
}

// listEntry is one open list element while writing consecutive list items.
type listEntry struct {
	listType string
	el       *html.Node
}

func (w *writer) blockGroup(parent *html.Node, group model.BlockGroup) {
	blocks := group.Children()
	var lists []listEntry
	for _, b := range blocks {
		if li, ok := b.(*model.ListItem); ok {
			lists = w.listItem(parent, li, lists)
			continue
		}
		lists = nil
		w.block(parent, b, len(blocks) == 1)
	}
}

func (w *writer) block(parent *html.Node, b model.Block, only bool) {
	switch v := b.(type) {
	case *model.Paragraph:
		w.paragraph(parent, v, only)
	case *model.Table:
		w.table(parent, v)
	case *model.ListItem:
		w.listItem(parent, v, nil)
	case *model.FormatContainer:
		w.formatContainer(parent, v)
	case *model.Divider:
		w.divider(parent, v)
	case *model.Entity:
		w.entity(parent, v)
	}
}

// ============================================================================
// Paragraphs and segments
// ============================================================================

func (w *writer) paragraph(parent *html.Node, p *model.Paragraph, only bool) {
	tag := ""
	switch {
	case p.Decorator != nil:
		tag = p.Decorator.TagName
	case !p.IsImplicit || !only || len(p.Format) > 0:
		tag = "div"
	}

	container := parent
	if tag != "" {
		el := w.element(tag)
		style := p.Format
		if p.Decorator != nil {
			style = p.Decorator.Format.With(p.Format)
		}
		setStyle(el, style)
		dom.AppendChild(parent, el)
		if w.ctx.AllowCacheElement {
			p.CachedElement = el
		}
		w.created(p, el)
		container = el
	}

	for _, seg := range p.Segments {
		w.segment(container, seg)
	}
}

func (w *writer) segment(parent *html.Node, seg model.Segment) {
	if seg.Selected() && w.ctx.start == nil {
		w.ctx.start = &point{parent, dom.ChildCount(parent)}
	}

	switch s := seg.(type) {
	case *model.Text:
		node := &html.Node{Type: html.TextNode, Data: s.Text}
		w.wrapSegment(parent, node, s, s.Format, s.Link)
		w.created(s, node)

	case *model.Br:
		br := w.element("br")
		dom.AppendChild(parent, br)
		w.created(s, br)

	case *model.Image:
		img := w.element("img")
		dom.SetAttr(img, "src", s.Src)
		if s.Alt != "" {
			dom.SetAttr(img, "alt", s.Alt)
		}
		if s.Title != "" {
			dom.SetAttr(img, "title", s.Title)
		}
		if s.Width != "" {
			dom.SetAttr(img, "width", strings.TrimSuffix(s.Width, "px"))
		}
		if s.Height != "" {
			dom.SetAttr(img, "height", strings.TrimSuffix(s.Height, "px"))
		}
		setDataset(img, s.Dataset)
		w.wrapSegment(parent, img, s, nil, s.Link)
		if s.IsSelectedAsImageSelection {
			w.ctx.image = img
		}
		w.created(s, img)

	case *model.Entity:
		w.entity(parent, s)

	case *model.SelectionMarker:
	}

	if seg.Selected() {
		w.ctx.end = &point{parent, dom.ChildCount(parent)}
	}
}

// wrapSegment appends node to parent inside the elements that express
// format and link: a > span > b > i > u > s > sub|sup > node.
func (w *writer) wrapSegment(parent, node *html.Node, seg model.Segment, format model.Format, link *model.Link) {
	rest := format.Clone()
	var tags []string

	switch rest["vertical-align"] {
	case "sub":
		tags = append(tags, "sub")
		delete(rest, "vertical-align")
	case "super":
		tags = append(tags, "sup")
		delete(rest, "vertical-align")
	}
	if deco := rest["text-decoration"]; deco != "" {
		var left []string
		var line, under bool
		for _, d := range strings.Fields(deco) {
			switch d {
			case "line-through":
				line = true
			case "underline":
				under = true
			default:
				left = append(left, d)
			}
		}
		if line {
			tags = append(tags, "s")
		}
		if under {
			tags = append(tags, "u")
		}
		if len(left) > 0 {
			rest["text-decoration"] = strings.Join(left, " ")
		} else {
			delete(rest, "text-decoration")
		}
	}
	if rest["font-style"] == "italic" {
		tags = append(tags, "i")
		delete(rest, "font-style")
	}
	switch rest["font-weight"] {
	case "bold", "700":
		tags = append(tags, "b")
		delete(rest, "font-weight")
	}

	inner := node
	for _, tag := range tags {
		el := w.element(tag)
		el.AppendChild(inner)
		inner = el
	}
	if len(rest) > 0 {
		span := w.element("span")
		setStyle(span, rest)
		span.AppendChild(inner)
		inner = span
	}
	if link != nil {
		a := w.element("a")
		dom.SetAttr(a, "href", link.Href)
		if link.Target != "" {
			dom.SetAttr(a, "target", link.Target)
		}
		if link.Title != "" {
			dom.SetAttr(a, "title", link.Title)
		}
		setStyle(a, link.Format)
		setDataset(a, link.Dataset)
		a.AppendChild(inner)
		inner = a
	}
	dom.AppendChild(parent, inner)
	if inner != node {
		w.created(seg, inner)
	}
}

func (w *writer) entity(parent *html.Node, e *model.Entity) {
	if e.Wrapper == nil {
		return
	}
	ApplyEntityFormat(e.Wrapper, e.EntityFormat)
	dom.AppendChild(parent, e.Wrapper)
	w.created(e, e.Wrapper)
}

// ============================================================================
// Block groups
// ============================================================================

func (w *writer) formatContainer(parent *html.Node, fc *model.FormatContainer) {
	tag := fc.TagName
	if tag == "" {
		tag = "div"
	}
	el := w.element(tag)
	setStyle(el, fc.Format)
	dom.AppendChild(parent, el)
	if w.ctx.AllowCacheElement {
		fc.CachedElement = el
	}
	w.created(fc, el)
	w.blockGroup(el, fc)
}

func (w *writer) divider(parent *html.Node, d *model.Divider) {
	tag := d.TagName
	if tag == "" {
		tag = "hr"
	}
	el := w.element(tag)
	setStyle(el, d.Format)
	dom.AppendChild(parent, el)
	if w.ctx.AllowCacheElement {
		d.CachedElement = el
	}
	w.created(d, el)
}

// listItem writes li into the open lists, reusing the levels it shares with
// the previous item and opening the rest. A nested list goes inside the last
// item of its parent list.
func (w *writer) listItem(parent *html.Node, li *model.ListItem, lists []listEntry) []listEntry {
	levels := li.Levels
	if len(levels) == 0 {
		levels = []model.ListLevel{{ListType: "UL"}}
	}

	keep := 0
	for keep < len(lists) && keep < len(levels) && lists[keep].listType == levels[keep].ListType {
		keep++
	}
	lists = lists[:keep]
	for i := keep; i < len(levels); i++ {
		level := levels[i]
		tag := "ul"
		if level.ListType == "OL" {
			tag = "ol"
		}
		listEl := w.element(tag)
		style := level.Format.Clone()
		if start := style[ListStartKey]; start != "" {
			dom.SetAttr(listEl, "start", start)
			delete(style, ListStartKey)
		}
		setStyle(listEl, style)
		setDataset(listEl, level.Dataset)

		host := parent
		if i > 0 {
			host = lists[i-1].el
			if last := lastChildElement(host, "li"); last != nil {
				host = last
			}
		}
		dom.AppendChild(host, listEl)
		w.created(level, listEl)
		lists = append(lists, listEntry{listType: level.ListType, el: listEl})
	}

	liEl := w.element("li")
	setStyle(liEl, li.Format)
	dom.AppendChild(lists[len(lists)-1].el, liEl)
	if w.ctx.AllowCacheElement {
		li.CachedElement = liEl
	}
	w.created(li, liEl)
	w.blockGroup(liEl, li)
	return lists
}

func lastChildElement(n *html.Node, tag string) *html.Node {
	for c := n.LastChild; c != nil; c = c.PrevSibling {
		if dom.IsElement(c, tag) {
			return c
		}
	}
	return nil
}

// ============================================================================
// Tables
// ============================================================================

func (w *writer) table(parent *html.Node, t *model.Table) {
	if len(t.Rows) == 0 {
		return
	}
	el := w.element("table")
	setStyle(el, t.Format)
	setDataset(el, t.Dataset)
	dom.AppendChild(parent, el)
	if w.ctx.AllowCacheElement {
		t.CachedElement = el
	}

	hasWidths := false
	for _, wd := range t.Widths {
		if wd > 0 {
			hasWidths = true
			break
		}
	}
	if hasWidths {
		colgroup := w.element("colgroup")
		for _, wd := range t.Widths {
			col := w.element("col")
			if wd > 0 {
				dom.SetAttr(col, "style", "width:"+formatLength(wd)+";")
			}
			colgroup.AppendChild(col)
		}
		el.AppendChild(colgroup)
	}

	tbody := w.element("tbody")
	el.AppendChild(tbody)

	for r, row := range t.Rows {
		tr := w.element("tr")
		style := row.Format.Clone()
		if row.Height > 0 {
			style["height"] = formatLength(row.Height)
		}
		setStyle(tr, style)
		tbody.AppendChild(tr)
		if w.ctx.AllowCacheElement {
			row.CachedElement = tr
		}

		phys := 0
		for c, cell := range row.Cells {
			if cell.SpanLeft || cell.SpanAbove {
				continue
			}
			tag := "td"
			if cell.IsHeader {
				tag = "th"
			}
			td := w.element(tag)
			if span := colSpan(row, c); span > 1 {
				dom.SetAttr(td, "colspan", strconv.Itoa(span))
			}
			if span := rowSpan(t, r, c); span > 1 {
				dom.SetAttr(td, "rowspan", strconv.Itoa(span))
			}
			setStyle(td, cell.Format)
			setDataset(td, cell.Dataset)
			tr.AppendChild(td)
			if w.ctx.AllowCacheElement {
				cell.CachedElement = td
			}
			if cell.IsSelected {
				w.selectCell(el, r, phys)
			}
			w.created(cell, td)
			w.blockGroup(td, cell)
			phys++
		}
	}
	w.created(t, el)
}

func colSpan(row *model.TableRow, c int) int {
	span := 1
	for c+span < len(row.Cells) && row.Cells[c+span].SpanLeft && !row.Cells[c+span].SpanAbove {
		span++
	}
	return span
}

func rowSpan(t *model.Table, r, c int) int {
	span := 1
	for r+span < len(t.Rows) {
		row := t.Rows[r+span]
		if c >= len(row.Cells) || !row.Cells[c].SpanAbove || row.Cells[c].SpanLeft {
			break
		}
		span++
	}
	return span
}

// selectCell grows the selected rectangle of the first table that has
// selected cells.
func (w *writer) selectCell(table *html.Node, r, c int) {
	ts := w.ctx.table
	if ts == nil {
		w.ctx.table = &tableSelectionState{el: table, firstRow: r, firstColumn: c, lastRow: r, lastColumn: c}
		return
	}
	if ts.el != table {
		return
	}
	ts.firstRow = min(ts.firstRow, r)
	ts.firstColumn = min(ts.firstColumn, c)
	ts.lastRow = max(ts.lastRow, r)
	ts.lastColumn = max(ts.lastColumn, c)
}
