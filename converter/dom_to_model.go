package converter

import (
	"strings"

	"github.com/tsawler/inkwell/dom"
	"github.com/tsawler/inkwell/model"
	"github.com/tsawler/inkwell/selection"
	"golang.org/x/net/html"
)

// ProcessorKeyEntity is the ProcessorOverride key for entity wrappers.
const ProcessorKeyEntity = "#entity"

// ElementProcessor turns el into model content appended to group. Custom
// processors can hand nested content back through ctx.ProcessChildren.
type ElementProcessor func(group model.BlockGroup, el *html.Node, ctx *DomToModelContext)

// DomToModelOption configures DomToContentModel.
type DomToModelOption struct {
	// ProcessorOverride replaces the processor for a lower-case tag name, or
	// for entity wrappers under ProcessorKeyEntity.
	ProcessorOverride map[string]ElementProcessor
	// FormatParserOverride replaces the default parser of a format kind.
	FormatParserOverride map[FormatKind]FormatParser
	// Selection is mapped onto the model: markers and selected segments for
	// a range, selected cells for a table, a flagged image for an image.
	Selection selection.DOMSelection
	// IncludeRoot converts the root element itself instead of only its
	// children.
	IncludeRoot bool
	// AllowCacheElement records source elements as CachedElement.
	AllowCacheElement bool
}

// DomToModelContext carries the option and the walk state of one
// conversion.
type DomToModelContext struct {
	Option DomToModelOption

	segmentFormat model.Format
	blockFormat   model.Format
	link          *model.Link
	listLevels    []model.ListLevel
	listParent    model.BlockGroup
	preserveSpace bool

	rng           *dom.Range
	tableSel      *selection.TableSelection
	imageSel      *selection.ImageSelection
	isInSelection bool
	pending       []*model.SelectionMarker
}

// NewDomToModelContext creates a context for opt.
func NewDomToModelContext(opt DomToModelOption) *DomToModelContext {
	return &DomToModelContext{Option: opt}
}

// SegmentFormat returns the character format in effect at the current
// position of the walk.
func (ctx *DomToModelContext) SegmentFormat() model.Format { return ctx.segmentFormat }

// IsInSelection reports whether content at the current position is selected.
func (ctx *DomToModelContext) IsInSelection() bool { return ctx.isInSelection }

func (ctx *DomToModelContext) reset() {
	ctx.segmentFormat = model.Format{}
	ctx.blockFormat = model.Format{}
	ctx.link = nil
	ctx.listLevels = nil
	ctx.listParent = nil
	ctx.preserveSpace = false
	ctx.isInSelection = false
	ctx.pending = nil
	ctx.rng, ctx.tableSel, ctx.imageSel = nil, nil, nil

	switch s := ctx.Option.Selection.(type) {
	case *selection.RangeSelection:
		if s.Range != nil && s.Range.StartContainer != nil && s.Range.EndContainer != nil {
			ctx.rng = s.Range
		}
	case *selection.TableSelection:
		ctx.tableSel = s
	case *selection.ImageSelection:
		ctx.imageSel = s
	}
}

// DomToContentModel converts the content under root into a normalized
// content model. A nil ctx uses default options.
func DomToContentModel(root *html.Node, ctx *DomToModelContext) *model.Document {
	if ctx == nil {
		ctx = NewDomToModelContext(DomToModelOption{})
	}
	ctx.reset()

	doc := model.NewDocument()
	if root == nil {
		model.NormalizeContentModel(doc)
		return doc
	}

	if ctx.Option.IncludeRoot {
		ctx.ProcessElement(doc, root)
	} else {
		style := dom.StyleMap(root)
		for k, v := range style {
			if segmentKeys[k] {
				doc.Format[k] = v
			}
		}
		ctx.ProcessChildren(doc, root)
	}
	ctx.flushPending(doc)

	model.NormalizeContentModel(doc)
	return doc
}

// ProcessChildren converts every child of parent into group, placing
// selection markers at the range boundaries that fall between children.
func (ctx *DomToModelContext) ProcessChildren(group model.BlockGroup, parent *html.Node) {
	idx := 0
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		ctx.checkBoundary(parent, idx)
		switch c.Type {
		case html.TextNode:
			ctx.processText(group, c)
		case html.ElementNode:
			ctx.ProcessElement(group, c)
		}
		idx++
	}
	ctx.checkBoundary(parent, idx)
}

// ProcessElement converts el into group with the matching processor.
func (ctx *DomToModelContext) ProcessElement(group model.BlockGroup, el *html.Node) {
	if p := ctx.Option.ProcessorOverride[el.Data]; p != nil {
		p(group, el, ctx)
		return
	}
	if IsEntityWrapper(el) {
		if p := ctx.Option.ProcessorOverride[ProcessorKeyEntity]; p != nil {
			p(group, el, ctx)
			return
		}
		ctx.processEntity(group, el)
		return
	}
	if shouldSkipElement(el.Data) {
		return
	}

	switch el.Data {
	case "br":
		br := model.NewBr(ctx.segmentFormat)
		br.IsSelected = ctx.isInSelection
		ctx.addSegment(group, br)
	case "img":
		ctx.processImage(group, el)
	case "a":
		ctx.processLink(group, el)
	case "ul", "ol":
		ctx.processList(group, el)
	case "li":
		ctx.processListItem(group, el)
	case "blockquote":
		ctx.processFormatContainer(group, el)
	case "table":
		ctx.processTable(group, el)
	case "hr":
		ctx.processDivider(group, el)
	case "p", "pre", "h1", "h2", "h3", "h4", "h5", "h6":
		ctx.processParagraph(group, el, el.Data)
	default:
		if isBlockElement(el) {
			ctx.processParagraph(group, el, "")
			return
		}
		ctx.processInline(group, el)
	}
}

// ============================================================================
// Selection
// ============================================================================

func (ctx *DomToModelContext) checkBoundary(node *html.Node, offset int) {
	r := ctx.rng
	if r == nil {
		return
	}
	if r.StartContainer == node && r.StartOffset == offset {
		ctx.markStart()
	}
	if r.EndContainer == node && r.EndOffset == offset {
		ctx.markEnd()
	}
}

func (ctx *DomToModelContext) markStart() {
	ctx.pending = append(ctx.pending, model.NewSelectionMarker(ctx.segmentFormat))
	ctx.isInSelection = true
}

func (ctx *DomToModelContext) markEnd() {
	if !ctx.rng.Collapsed() {
		ctx.pending = append(ctx.pending, model.NewSelectionMarker(ctx.segmentFormat))
	}
	ctx.isInSelection = false
}

// flushPending places markers waiting for the next segment into group.
func (ctx *DomToModelContext) flushPending(group model.BlockGroup) {
	for _, m := range ctx.pending {
		model.AddSegment(group, m)
	}
	ctx.pending = nil
}

func (ctx *DomToModelContext) addSegment(group model.BlockGroup, seg model.Segment) {
	ctx.flushPending(group)
	model.AddSegment(group, seg)
}

// ============================================================================
// Text and inline content
// ============================================================================

func (ctx *DomToModelContext) processText(group model.BlockGroup, n *html.Node) {
	r := ctx.rng
	startHere := r != nil && r.StartContainer == n
	endHere := r != nil && r.EndContainer == n
	if !startHere && !endHere {
		ctx.addText(group, n.Data)
		return
	}

	text := n.Data
	pos := 0
	if startHere {
		off := clampOffset(text, r.StartOffset)
		ctx.addText(group, text[pos:off])
		pos = off
		ctx.markStart()
	}
	if endHere {
		off := clampOffset(text, r.EndOffset)
		if off < pos {
			off = pos
		}
		ctx.addText(group, text[pos:off])
		pos = off
		ctx.markEnd()
	}
	ctx.addText(group, text[pos:])
}

func clampOffset(s string, off int) int {
	if off < 0 {
		return 0
	}
	if off > len(s) {
		return len(s)
	}
	return off
}

func (ctx *DomToModelContext) addText(group model.BlockGroup, s string) {
	if s == "" {
		return
	}
	if !ctx.preserveSpace {
		s = collapseSpace(s)
		if !hasContent(group) {
			s = strings.TrimLeft(s, " ")
		}
		if s == "" {
			return
		}
	}
	t := model.NewText(s, ctx.segmentFormat)
	t.Link = ctx.link.Clone()
	t.IsSelected = ctx.isInSelection
	ctx.addSegment(group, t)
}

// collapseSpace folds runs of HTML whitespace into one space.
func collapseSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f':
			space = true
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteByte(s[i])
	}
	if space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// hasContent reports whether group ends with a paragraph that already holds
// something other than markers.
func hasContent(group model.BlockGroup) bool {
	blocks := group.Children()
	if len(blocks) == 0 {
		return false
	}
	p, ok := blocks[len(blocks)-1].(*model.Paragraph)
	if !ok {
		return false
	}
	for _, seg := range p.Segments {
		if seg.SegmentType() != model.SegmentTypeSelectionMarker {
			return true
		}
	}
	return false
}

func trimTrailingSpace(p *model.Paragraph) {
	if len(p.Segments) == 0 {
		return
	}
	if t, ok := p.Segments[len(p.Segments)-1].(*model.Text); ok {
		t.Text = strings.TrimRight(t.Text, " ")
	}
}

func (ctx *DomToModelContext) parseFormat(kind FormatKind, base model.Format, el *html.Node, style map[string]string) model.Format {
	out := base.Clone()
	parser := ctx.Option.FormatParserOverride[kind]
	if parser == nil {
		switch kind {
		case FormatSegment:
			parser = parseSegmentFormat
		case FormatBlock:
			parser = parseBlockFormat
		}
	}
	parser(out, el, style)
	return out
}

func (ctx *DomToModelContext) processInline(group model.BlockGroup, el *html.Node) {
	save := ctx.segmentFormat
	ctx.segmentFormat = ctx.parseFormat(FormatSegment, save, el, dom.StyleMap(el))
	ctx.ProcessChildren(group, el)
	ctx.segmentFormat = save
}

func (ctx *DomToModelContext) processLink(group model.BlockGroup, el *html.Node) {
	href, ok := dom.GetAttr(el, "href")
	if !ok {
		ctx.processInline(group, el)
		return
	}
	saveLink := ctx.link
	ctx.link = &model.Link{
		Href:    href,
		Target:  dom.Attr(el, "target"),
		Title:   dom.Attr(el, "title"),
		Format:  model.Format{},
		Dataset: model.Dataset(dom.Dataset(el)),
	}
	ctx.processInline(group, el)
	ctx.link = saveLink
}

func (ctx *DomToModelContext) processImage(group model.BlockGroup, el *html.Node) {
	style := dom.StyleMap(el)
	img := model.NewImage(dom.Attr(el, "src"), ctx.segmentFormat)
	img.Alt = dom.Attr(el, "alt")
	img.Title = dom.Attr(el, "title")
	img.Width = firstNonEmpty(style["width"], dom.Attr(el, "width"))
	img.Height = firstNonEmpty(style["height"], dom.Attr(el, "height"))
	img.Dataset = model.Dataset(dom.Dataset(el))
	img.Link = ctx.link.Clone()
	img.IsSelected = ctx.isInSelection
	if ctx.imageSel != nil && ctx.imageSel.Image == el {
		img.IsSelected = true
		img.IsSelectedAsImageSelection = true
	}
	ctx.addSegment(group, img)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ============================================================================
// Blocks
// ============================================================================

func (ctx *DomToModelContext) processParagraph(group model.BlockGroup, el *html.Node, decorator string) {
	style := dom.StyleMap(el)
	saveSeg, saveBlock, savePre := ctx.segmentFormat, ctx.blockFormat, ctx.preserveSpace

	ctx.segmentFormat = ctx.parseFormat(FormatSegment, saveSeg, el, style)
	own := ctx.parseFormat(FormatBlock, saveBlock, el, style)
	ctx.blockFormat = inherited(own)
	if el.Data == "pre" || strings.HasPrefix(own["white-space"], "pre") {
		ctx.preserveSpace = true
	}

	para := model.NewParagraph(false, own)
	if decorator != "" {
		para.Decorator = &model.ParagraphDecorator{TagName: decorator, Format: model.Format{}}
	}
	if ctx.Option.AllowCacheElement {
		para.CachedElement = el
	}
	model.AddBlock(group, para)

	ctx.ProcessChildren(group, el)
	ctx.flushPending(group)
	if !ctx.preserveSpace {
		trimTrailingSpace(para)
	}

	ctx.segmentFormat, ctx.blockFormat, ctx.preserveSpace = saveSeg, saveBlock, savePre
	// Inline content after the element starts a new line.
	model.AddBlock(group, model.NewParagraph(true, ctx.blockFormat))
}

func (ctx *DomToModelContext) processDivider(group model.BlockGroup, el *html.Node) {
	ctx.flushPending(group)
	d := model.NewDivider(el.Data, ctx.parseFormat(FormatBlock, nil, el, dom.StyleMap(el)))
	d.IsSelected = ctx.isInSelection
	if ctx.Option.AllowCacheElement {
		d.CachedElement = el
	}
	model.AddBlock(group, d)
}

func (ctx *DomToModelContext) processFormatContainer(group model.BlockGroup, el *html.Node) {
	style := dom.StyleMap(el)
	fc := model.NewFormatContainer(el.Data, ctx.parseFormat(FormatBlock, nil, el, style))
	if ctx.Option.AllowCacheElement {
		fc.CachedElement = el
	}
	model.AddBlock(group, fc)

	saveSeg, saveBlock := ctx.segmentFormat, ctx.blockFormat
	saveParent, saveLevels := ctx.listParent, ctx.listLevels
	ctx.segmentFormat = ctx.parseFormat(FormatSegment, saveSeg, el, style)
	ctx.blockFormat = inherited(fc.Format)
	ctx.listParent, ctx.listLevels = nil, nil

	ctx.ProcessChildren(fc, el)
	ctx.flushPending(fc)

	ctx.segmentFormat, ctx.blockFormat = saveSeg, saveBlock
	ctx.listParent, ctx.listLevels = saveParent, saveLevels
}

func (ctx *DomToModelContext) processEntity(group model.BlockGroup, el *html.Node) {
	selected := ctx.isInSelection
	if r := ctx.rng; r != nil {
		if dom.Contains(el, r.StartContainer) {
			selected = true
			ctx.isInSelection = true
		}
		if dom.Contains(el, r.EndContainer) {
			selected = true
			ctx.isInSelection = false
		}
	}

	e := model.NewEntity(el, ParseEntityFormat(el), ctx.segmentFormat)
	e.IsSelected = selected
	if isBlockElement(el) {
		ctx.flushPending(group)
		model.AddBlock(group, e)
		return
	}
	ctx.addSegment(group, e)
}

// ============================================================================
// Lists
// ============================================================================

func (ctx *DomToModelContext) processList(group model.BlockGroup, el *html.Node) {
	style := dom.StyleMap(el)
	level := model.ListLevel{
		ListType: strings.ToUpper(el.Data),
		Format:   ctx.parseFormat(FormatBlock, nil, el, style),
		Dataset:  model.Dataset(dom.Dataset(el)),
	}
	if t := style["list-style-type"]; t != "" {
		level.Format["list-style-type"] = t
	}
	if start := dom.Attr(el, "start"); start != "" {
		level.Format[ListStartKey] = start
	}

	saveParent, saveLevels, saveSeg := ctx.listParent, ctx.listLevels, ctx.segmentFormat
	if ctx.listParent == nil {
		ctx.listParent = group
	}
	levels := make([]model.ListLevel, len(saveLevels), len(saveLevels)+1)
	copy(levels, saveLevels)
	ctx.listLevels = append(levels, level)
	ctx.segmentFormat = ctx.parseFormat(FormatSegment, saveSeg, el, style)

	ctx.ProcessChildren(ctx.listParent, el)

	ctx.listParent, ctx.listLevels, ctx.segmentFormat = saveParent, saveLevels, saveSeg
}

// ListStartKey is the list level format key holding an ordered list's start
// number. It is written back as the start attribute, not as style.
const ListStartKey = "start"

func (ctx *DomToModelContext) processListItem(group model.BlockGroup, el *html.Node) {
	parent := ctx.listParent
	if parent == nil {
		parent = group
	}
	levels := ctx.listLevels
	if len(levels) == 0 {
		levels = []model.ListLevel{{ListType: "UL", Format: model.Format{}, Dataset: model.Dataset{}}}
	}

	style := dom.StyleMap(el)
	li := model.NewListItem(levels, ctx.parseFormat(FormatBlock, nil, el, style))
	if ctx.Option.AllowCacheElement {
		li.CachedElement = el
	}
	model.AddBlock(parent, li)

	saveSeg, saveBlock := ctx.segmentFormat, ctx.blockFormat
	ctx.segmentFormat = ctx.parseFormat(FormatSegment, saveSeg, el, style)
	li.FormatHolder.Format = ctx.segmentFormat.Clone()
	ctx.blockFormat = inherited(li.Format)

	ctx.ProcessChildren(li, el)
	ctx.flushPending(li)

	ctx.segmentFormat, ctx.blockFormat = saveSeg, saveBlock
}

// ============================================================================
// Tables
// ============================================================================

func (ctx *DomToModelContext) processTable(group model.BlockGroup, el *html.Node) {
	ctx.flushPending(group)

	table := &model.Table{
		Format:  tableFormat(el),
		Dataset: model.Dataset(dom.Dataset(el)),
	}
	if ctx.Option.AllowCacheElement {
		table.CachedElement = el
	}

	trs := tableRows(el)
	colWidths := columnWidths(el)
	selected := ctx.tableSel != nil && ctx.tableSel.Table == el

	saveSeg, saveBlock := ctx.segmentFormat, ctx.blockFormat
	saveParent, saveLevels := ctx.listParent, ctx.listLevels
	ctx.segmentFormat = ctx.parseFormat(FormatSegment, saveSeg, el, dom.StyleMap(el))
	ctx.listParent, ctx.listLevels = nil, nil

	var grid [][]*model.TableCell
	get := func(r, c int) *model.TableCell {
		if r >= len(grid) || c >= len(grid[r]) {
			return nil
		}
		return grid[r][c]
	}
	set := func(r, c int, cell *model.TableCell) {
		for len(grid) <= r {
			grid = append(grid, nil)
		}
		for len(grid[r]) <= c {
			grid[r] = append(grid[r], nil)
		}
		grid[r][c] = cell
	}

	var cellWidths []float64
	rows := make([]*model.TableRow, 0, len(trs))
	for r, tr := range trs {
		rowStyle := dom.StyleMap(tr)
		row := model.NewTableRow(nil)
		for k, v := range rowStyle {
			if k != "height" {
				row.Format[k] = v
			}
		}
		row.Height = parseLength(firstNonEmpty(rowStyle["height"], dom.Attr(tr, "height")))
		if ctx.Option.AllowCacheElement {
			row.CachedElement = tr
		}
		rows = append(rows, row)

		c, phys := 0, 0
		for td := tr.FirstChild; td != nil; td = td.NextSibling {
			if !dom.IsElement(td, "td", "th") {
				continue
			}
			for get(r, c) != nil {
				c++
			}
			colSpan := intAttr(td, "colspan", 1)
			if colSpan < 1 {
				colSpan = 1
			} else if colSpan > maxColSpan {
				colSpan = maxColSpan
			}
			rowSpan := intAttr(td, "rowspan", 1)
			if rowSpan == 0 || r+rowSpan > len(trs) {
				rowSpan = len(trs) - r
			}

			inRect := selected &&
				r >= ctx.tableSel.FirstRow && r <= ctx.tableSel.LastRow &&
				phys >= ctx.tableSel.FirstColumn && phys <= ctx.tableSel.LastColumn
			isHeader := td.Data == "th"

			var main *model.TableCell
			for dr := 0; dr < rowSpan; dr++ {
				for dc := 0; dc < colSpan; dc++ {
					cell := model.NewTableCell(dc > 0, dr > 0, isHeader, nil)
					cell.IsSelected = inRect
					if dr == 0 && dc == 0 {
						main = cell
					}
					set(r+dr, c+dc, cell)
				}
			}

			if colSpan == 1 {
				for len(cellWidths) <= c {
					cellWidths = append(cellWidths, 0)
				}
				if cellWidths[c] == 0 {
					cellWidths[c] = parseLength(firstNonEmpty(dom.StyleProperty(td, "width"), dom.Attr(td, "width")))
				}
			}
			ctx.processCell(main, td)
			c += colSpan
			phys++
		}
	}

	cols := 0
	for _, gr := range grid {
		if len(gr) > cols {
			cols = len(gr)
		}
	}
	for r, row := range rows {
		for c := 0; c < cols; c++ {
			cell := get(r, c)
			if cell == nil {
				cell = model.NewTableCell(false, false, false, nil)
			}
			row.Cells = append(row.Cells, cell)
		}
	}
	table.Rows = rows

	table.Widths = make([]float64, cols)
	for c := 0; c < cols; c++ {
		switch {
		case c < len(colWidths) && colWidths[c] > 0:
			table.Widths[c] = colWidths[c]
		case c < len(cellWidths):
			table.Widths[c] = cellWidths[c]
		}
	}
	model.NormalizeTable(table)

	ctx.segmentFormat, ctx.blockFormat = saveSeg, saveBlock
	ctx.listParent, ctx.listLevels = saveParent, saveLevels
	model.AddBlock(group, table)
}

// maxColSpan is the largest colspan browsers honour.
const maxColSpan = 1000

func (ctx *DomToModelContext) processCell(cell *model.TableCell, td *html.Node) {
	style := dom.StyleMap(td)
	for k, v := range style {
		cell.Format[k] = v
	}
	cell.Dataset = model.Dataset(dom.Dataset(td))
	if ctx.Option.AllowCacheElement {
		cell.CachedElement = td
	}

	saveSeg, saveBlock := ctx.segmentFormat, ctx.blockFormat
	ctx.segmentFormat = ctx.parseFormat(FormatSegment, saveSeg, td, style)
	ctx.blockFormat = inherited(ctx.parseFormat(FormatBlock, nil, td, style))

	ctx.ProcessChildren(cell, td)
	ctx.flushPending(cell)

	ctx.segmentFormat, ctx.blockFormat = saveSeg, saveBlock
}

func tableFormat(el *html.Node) model.Format {
	f := model.Format(dom.StyleMap(el))
	if f["width"] == "" {
		if w := dom.Attr(el, "width"); w != "" {
			if parseLength(w) > 0 && !strings.HasSuffix(w, "%") {
				f["width"] = formatLength(parseLength(w))
			} else {
				f["width"] = w
			}
		}
	}
	return f
}

// tableRows lists the physical rows of a table in document order.
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case dom.IsElement(c, "thead", "tbody", "tfoot"):
			for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
				if dom.IsElement(tr, "tr") {
					rows = append(rows, tr)
				}
			}
		case dom.IsElement(c, "tr"):
			rows = append(rows, c)
		}
	}
	return rows
}

// columnWidths reads <col> widths, honouring span.
func columnWidths(table *html.Node) []float64 {
	var widths []float64
	for g := table.FirstChild; g != nil; g = g.NextSibling {
		if !dom.IsElement(g, "colgroup") {
			continue
		}
		for col := g.FirstChild; col != nil; col = col.NextSibling {
			if !dom.IsElement(col, "col") {
				continue
			}
			w := parseLength(firstNonEmpty(dom.StyleProperty(col, "width"), dom.Attr(col, "width")))
			span := intAttr(col, "span", 1)
			if span < 1 {
				span = 1
			}
			for i := 0; i < span; i++ {
				widths = append(widths, w)
			}
		}
	}
	return widths
}
