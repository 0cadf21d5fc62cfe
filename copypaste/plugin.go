package copypaste

import (
	"log/slog"

	mdconverter "github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/tsawler/inkwell/dom"
	"github.com/tsawler/inkwell/editor"
	"golang.org/x/net/html"
)

// Plugin runs the copy, cut and paste pipelines of one editor.
type Plugin struct {
	editor     *editor.Editor
	logger     *slog.Logger
	writer     ClipboardWriter
	recognizer Recognizer
	md         *mdconverter.Converter

	beforePaste   []func(*BeforePasteEvent)
	beforeCutCopy []func(*BeforeCutCopyEvent)

	// scratch is the pooled off-screen element copies are rendered into.
	scratch *html.Node
}

// PluginOption configures a Plugin.
type PluginOption func(*Plugin)

// WithClipboardWriter sends every copy to w.
func WithClipboardWriter(w ClipboardWriter) PluginOption {
	return func(p *Plugin) {
		p.writer = w
	}
}

// WithRecognizer sets the OCR used when an image-only payload is pasted as
// plain text.
func WithRecognizer(r Recognizer) PluginOption {
	return func(p *Plugin) {
		p.recognizer = r
	}
}

// NewPlugin creates the clipboard plugin for e. It logs through e's logger.
func NewPlugin(e *editor.Editor, opts ...PluginOption) *Plugin {
	p := &Plugin{
		editor: e,
		logger: e.Logger(),
		md:     NewMarkdownConverter(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewMarkdownConverter returns the HTML to Markdown converter used for the
// text/markdown clipboard flavour.
func NewMarkdownConverter() *mdconverter.Converter {
	return mdconverter.NewConverter(
		mdconverter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			strikethrough.NewStrikethroughPlugin(),
			table.NewTablePlugin(),
		),
	)
}

// OnBeforePaste registers a handler run before pasted content is merged.
// The returned function removes it.
func (p *Plugin) OnBeforePaste(h func(*BeforePasteEvent)) func() {
	p.beforePaste = append(p.beforePaste, h)
	idx := len(p.beforePaste) - 1
	return func() { p.beforePaste[idx] = nil }
}

// OnBeforeCutCopy registers a handler run before content reaches the
// clipboard. The returned function removes it.
func (p *Plugin) OnBeforeCutCopy(h func(*BeforeCutCopyEvent)) func() {
	p.beforeCutCopy = append(p.beforeCutCopy, h)
	idx := len(p.beforeCutCopy) - 1
	return func() { p.beforeCutCopy[idx] = nil }
}

// Dispose removes the scratch element and drops every handler.
func (p *Plugin) Dispose() {
	if p.scratch != nil {
		dom.RemoveNode(p.scratch)
		p.scratch = nil
	}
	p.beforePaste = nil
	p.beforeCutCopy = nil
}

// scratchElement returns the pooled off-screen element, emptied and shown.
func (p *Plugin) scratchElement() *html.Node {
	doc := p.editor.Document()
	if p.scratch == nil || !doc.Contains(p.scratch) {
		div := doc.CreateElement("div")
		dom.SetAttr(div, "contenteditable", "true")
		dom.SetAttr(div, "style", "position:fixed;top:-10000px;left:0;width:600px;height:1px;overflow:hidden;user-select:text;")
		parent := doc.Body()
		if parent == nil {
			parent = doc.Node()
		}
		parent.AppendChild(div)
		p.scratch = div
	}
	dom.RemoveChildren(p.scratch)
	dom.SetStyleProperty(p.scratch, "display", "")
	return p.scratch
}

// hideScratch empties the pooled element and hides it until the next gesture.
func (p *Plugin) hideScratch() {
	if p.scratch == nil {
		return
	}
	dom.RemoveChildren(p.scratch)
	dom.SetStyleProperty(p.scratch, "display", "none")
}
