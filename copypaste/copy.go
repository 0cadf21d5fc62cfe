package copypaste

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/tsawler/inkwell/converter"
	"github.com/tsawler/inkwell/dom"
	"github.com/tsawler/inkwell/model"
	"github.com/tsawler/inkwell/selection"
	"golang.org/x/net/html"
)

// Clipboard flavours written by a copy.
const (
	MIMEHTML     = "text/html"
	MIMEText     = "text/plain"
	MIMEMarkdown = "text/markdown"
)

// OnCopy copies the current selection. It returns nil when there is nothing
// to copy.
func (p *Plugin) OnCopy(ctx context.Context) (*CopyResult, error) {
	return p.cutCopy(ctx, false)
}

// OnCut copies the current selection and schedules its deletion on the
// editor's Scheduler. It returns nil when there is nothing to cut.
func (p *Plugin) OnCut(ctx context.Context) (*CopyResult, error) {
	return p.cutCopy(ctx, true)
}

func (p *Plugin) cutCopy(ctx context.Context, isCut bool) (*CopyResult, error) {
	e := p.editor
	if e.IsDisposed() {
		return nil, ErrDisposed
	}

	id := uuid.NewString()
	log := p.logger.With("gesture", id, "cut", isCut)

	original := e.DOMSelection()
	if original == nil {
		log.Debug("copy aborted: no selection")
		return nil, nil
	}
	if rs, ok := original.(*selection.RangeSelection); ok && (rs.Range == nil || rs.Range.Collapsed()) {
		log.Debug("copy aborted: collapsed selection")
		return nil, nil
	}

	m := e.GetContentModelCopy(model.CopyDisconnected)
	switch original.SelectionType() {
	case selection.SelectionTypeTable:
		if t := selectedTable(m); t != nil {
			model.PreprocessTable(t)
		}
	case selection.SelectionTypeRange:
		AdjustSelectionForCopyCut(m)
	}

	scratch := p.scratchElement()
	doc := e.Document()
	copied := converter.ContentModelToDom(doc, scratch, m, &converter.ModelToDomContext{
		OnNodeCreated: func(_ any, node *html.Node) {
			prepareCopiedNode(doc, node)
		},
	})

	rng := copyRange(copied)
	if rng == nil {
		log.Debug("copy aborted: nothing selectable")
		p.hideScratch()
		return nil, nil
	}

	ev := &BeforeCutCopyEvent{ID: id, IsCut: isCut, ClonedRoot: scratch, Range: rng}
	for _, h := range p.beforeCutCopy {
		if h != nil {
			h(ev)
		}
	}
	if ev.Range == nil {
		log.Debug("copy aborted by handler")
		p.hideScratch()
		return nil, nil
	}

	if err := e.SelectionManager().SetSelection(&selection.RangeSelection{Range: ev.Range}, true); err != nil {
		log.Warn("failed to select copied content", "error", err)
	}

	res := p.clipboardPayload(ev.Range)
	res.ID = id
	res.IsCut = isCut
	if p.writer != nil {
		data := map[string]string{MIMEHTML: res.HTML, MIMEText: res.Text}
		if res.Markdown != "" {
			data[MIMEMarkdown] = res.Markdown
		}
		if err := p.writer.WriteClipboard(ctx, data); err != nil {
			log.Warn("failed to write clipboard", "error", err)
		}
	}

	e.RunAsync(func() {
		p.hideScratch()
		e.Focus()
		if err := e.SetDOMSelection(original); err != nil {
			log.Warn("failed to restore selection", "error", err)
		}
		if isCut {
			e.FormatContentModel("cut", func(m *model.Document) bool {
				if model.DeleteSelection(m, model.DeleteEmptyList).DeleteResult == model.DeleteResultRange {
					model.NormalizeContentModel(m)
				}
				return true
			})
		}
	})
	return res, nil
}

// clipboardPayload serializes what rng covers into the clipboard flavours.
func (p *Plugin) clipboardPayload(rng *dom.Range) *CopyResult {
	contents := rng.CloneContents()
	markup, err := dom.RenderChildren(contents)
	if err != nil {
		p.logger.Warn("failed to render copied content", "error", err)
	}

	text := converter.DomToContentModel(contents, converter.NewDomToModelContext(converter.DomToModelOption{})).ExtractText()

	md, err := p.md.ConvertString(markup)
	if err != nil {
		p.logger.Debug("markdown conversion failed", "error", err)
		md = ""
	}

	return &CopyResult{
		HTML:     markup,
		Text:     text,
		Markdown: strings.TrimSpace(md),
		Range:    rng,
	}
}

// prepareCopiedNode wraps tables in a <div> and removes
// contenteditable="false" from the node and its descendants.
func prepareCopiedNode(doc *dom.Document, node *html.Node) {
	if node.Type != html.ElementNode {
		return
	}
	if dom.IsElement(node, "table") && node.Parent != nil {
		wrapper := doc.CreateElement("div")
		dom.InsertBefore(node.Parent, wrapper, node)
		dom.RemoveNode(node)
		wrapper.AppendChild(node)
	}
	dom.Walk(node, func(n *html.Node) bool {
		if n.Type == html.ElementNode && strings.EqualFold(dom.Attr(n, "contenteditable"), "false") {
			dom.RemoveAttr(n, "contenteditable")
		}
		return true
	})
}

// copyRange derives the range to copy from the selection found in the
// scratch element. A table is selected through its wrapper when the wrapper
// holds nothing else.
func copyRange(sel selection.DOMSelection) *dom.Range {
	switch s := sel.(type) {
	case *selection.TableSelection:
		target := s.Table
		if parent := target.Parent; parent != nil && elementChildren(parent) == 1 {
			target = parent
		}
		r := &dom.Range{}
		r.SelectNode(target)
		return r
	case *selection.ImageSelection:
		r := &dom.Range{}
		r.SelectNode(s.Image)
		return r
	case *selection.RangeSelection:
		return s.Range
	}
	return nil
}

func elementChildren(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			count++
		}
	}
	return count
}

// selectedTable returns the first table holding a selected cell.
func selectedTable(m *model.Document) *model.Table {
	var found *model.Table
	model.IterateSelections(m, func(_ []model.BlockGroup, tc *model.TableSelectionContext, _ model.Block, _ []model.Segment) bool {
		if tc != nil && tc.Table != nil {
			found = tc.Table
			return true
		}
		return false
	})
	return found
}
