package copypaste

import (
	"context"
	"fmt"
	"strings"

	"github.com/tsawler/inkwell/converter"
	"github.com/tsawler/inkwell/dom"
	"github.com/tsawler/inkwell/model"
	"golang.org/x/net/html"
)

// OnPaste reads the clipboard items and pastes them. Reading is the only
// step that may wait; if the editor is disposed meanwhile the paste is
// dropped. An empty pasteType uses the editor's default paste type.
func (p *Plugin) OnPaste(ctx context.Context, items []Item, pasteType PasteType) error {
	if p.editor.IsDisposed() {
		return ErrDisposed
	}

	opts := p.editor.Options()
	cd, err := ExtractClipboardItems(ctx, items, ExtractOptions{AllowedCustomPasteTypes: opts.AllowedCustomPasteTypes})
	if err != nil {
		return err
	}

	if p.editor.IsDisposed() {
		p.logger.Debug("paste dropped: editor disposed while reading clipboard", "gesture", cd.ID)
		return nil
	}
	return p.Paste(cd, pasteType)
}

// Paste merges an extracted payload into the editor at the current
// selection, replacing selected content. A payload with nothing to insert
// leaves the content unchanged.
func (p *Plugin) Paste(cd *ClipboardData, pasteType PasteType) error {
	e := p.editor
	if e.IsDisposed() {
		return ErrDisposed
	}
	if pasteType == "" {
		pasteType = PasteType(e.Options().DefaultPasteType)
	}
	log := p.logger.With("gesture", cd.ID, "pasteType", string(pasteType))

	// focus
	e.Focus()

	// baseline snapshot
	if cd.SnapshotBeforePaste == nil {
		cd.SnapshotBeforePaste = e.GetContentModelCopy(model.CopyConnected)
	}
	if cd.HTML == "" {
		cd.HTML = cd.RawHTML
	}

	// source parse
	var source *html.Node
	if cd.RawHTML != "" {
		doc, err := p.parseTrusted(cd.RawHTML)
		if err != nil {
			log.Warn("failed to parse pasted HTML", "error", err)
		} else {
			source = doc
		}
	}

	// html info
	info := RetrieveHTMLInfo(source, cd.RawHTML)

	// fragment
	if pasteType == PasteAsPlainText {
		p.recognizeImage(cd, log.Warn)
	}
	var body *html.Node
	if cd.HTML == cd.RawHTML {
		body = bodyOf(source)
	} else if cd.HTML != "" {
		doc, err := p.parseTrusted(cd.HTML)
		if err != nil {
			log.Warn("failed to parse rewritten HTML", "error", err)
		}
		body = bodyOf(doc)
	}
	ev := &BeforePasteEvent{
		ClipboardData: cd,
		Fragment:      CreateFragment(cd, pasteType, body),
		HTMLInfo:      info,
		PasteType:     pasteType,
		MergeOptions:  model.MergeOptions{MergeFormat: pasteType == PasteMergeFormat},
	}

	// negotiation
	for _, h := range p.beforePaste {
		if h != nil {
			h(ev)
		}
	}
	if ev.Fragment == nil {
		log.Debug("paste cancelled by handler")
		return nil
	}

	// inline css
	if ev.HTMLInfo != nil {
		ConvertInlineCSS(ev.Fragment, ev.HTMLInfo.GlobalCSSRules)
	}

	// merge
	e.FormatContentModel("paste", func(m *model.Document) bool {
		opt := ev.DomToModelOption
		opt.Selection = nil
		src := converter.DomToContentModel(ev.Fragment, converter.NewDomToModelContext(opt))
		if len(src.Blocks) == 0 {
			return false
		}
		model.MergeModel(m, src, ev.MergeOptions)
		return true
	})
	return nil
}

func (p *Plugin) parseTrusted(markup string) (*html.Node, error) {
	doc, err := html.Parse(strings.NewReader(p.editor.TrustedHTMLHandler()(markup)))
	if err != nil {
		return nil, fmt.Errorf("parsing clipboard HTML: %w", err)
	}
	return doc, nil
}

// recognizeImage fills in the text of an image-only payload.
func (p *Plugin) recognizeImage(cd *ClipboardData, warn func(string, ...any)) {
	if cd.Text != "" || cd.Image == nil || p.recognizer == nil {
		return
	}
	text, err := p.recognizer.RecognizeImage(cd.Image.Data)
	if err != nil {
		warn("image recognition failed", "error", err)
		return
	}
	cd.Text = text
}

func bodyOf(doc *html.Node) *html.Node {
	if doc == nil {
		return nil
	}
	body, _ := dom.QuerySelector(doc, "body")
	return body
}
