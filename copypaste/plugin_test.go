package copypaste

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/inkwell/dom"
	"github.com/tsawler/inkwell/editor"
	"github.com/tsawler/inkwell/ocr"
	"github.com/tsawler/inkwell/selection"
	"golang.org/x/net/html"
)

var _ Recognizer = (*ocr.Client)(nil)

type fakeRecognizer struct {
	text  string
	err   error
	calls int
}

func (f *fakeRecognizer) RecognizeImage([]byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fixture struct {
	editor  *editor.Editor
	plugin  *Plugin
	queue   *editor.FrameQueue
	written map[string]string
}

func newFixture(t *testing.T, body string, opts ...PluginOption) *fixture {
	t.Helper()
	doc, err := dom.ParseString(`<html><head></head><body><div id="root" contenteditable="true">` + body + `</div></body></html>`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	f := &fixture{queue: editor.NewFrameQueue()}
	f.editor, err = editor.New(doc, doc.GetElementByID("root"), editor.WithScheduler(f.queue))
	if err != nil {
		t.Fatalf("editor.New() error = %v", err)
	}
	writer := ClipboardWriterFunc(func(_ context.Context, data map[string]string) error {
		f.written = data
		return nil
	})
	f.plugin = NewPlugin(f.editor, append([]PluginOption{WithClipboardWriter(writer)}, opts...)...)
	return f
}

func (f *fixture) text() *html.Node {
	var found *html.Node
	dom.Walk(f.editor.Root(), func(n *html.Node) bool {
		if found == nil && n.Type == html.TextNode {
			found = n
		}
		return found == nil
	})
	return found
}

func (f *fixture) selectText(t *testing.T, start, end int) {
	t.Helper()
	n := f.text()
	r := &dom.Range{StartContainer: n, StartOffset: start, EndContainer: n, EndOffset: end}
	if err := f.editor.SetDOMSelection(&selection.RangeSelection{Range: r}); err != nil {
		t.Fatalf("SetDOMSelection() error = %v", err)
	}
}

func (f *fixture) rootText() string {
	return dom.TextContent(f.editor.Root())
}

// ============================================================================
// Copy and Cut Tests
// ============================================================================

func TestOnCopyRange(t *testing.T) {
	f := newFixture(t, "<p>hello world</p>")
	f.selectText(t, 0, 5)

	var seen *BeforeCutCopyEvent
	f.plugin.OnBeforeCutCopy(func(ev *BeforeCutCopyEvent) { seen = ev })

	res, err := f.plugin.OnCopy(context.Background())
	if err != nil {
		t.Fatalf("OnCopy() error = %v", err)
	}
	if res == nil {
		t.Fatal("OnCopy() returned nil result")
	}
	if seen == nil || seen.IsCut || seen.ClonedRoot != f.plugin.scratch || seen.ID != res.ID {
		t.Errorf("before cut/copy event = %+v", seen)
	}
	if res.Text != "hello" {
		t.Errorf("Text = %q, want hello", res.Text)
	}
	if !strings.Contains(res.HTML, "hello") || strings.Contains(res.HTML, "world") {
		t.Errorf("HTML = %q", res.HTML)
	}
	if res.Markdown != "hello" {
		t.Errorf("Markdown = %q, want hello", res.Markdown)
	}
	if f.written[MIMEHTML] != res.HTML || f.written[MIMEText] != "hello" || f.written[MIMEMarkdown] != "hello" {
		t.Errorf("clipboard = %v", f.written)
	}

	if f.editor.PendingTasks() != 1 {
		t.Fatalf("PendingTasks() = %d, want 1", f.editor.PendingTasks())
	}
	f.queue.Flush()

	if f.plugin.scratch.FirstChild != nil {
		t.Error("scratch element was not emptied")
	}
	if dom.StyleProperty(f.plugin.scratch, "display") != "none" {
		t.Error("scratch element was not hidden")
	}
	if f.rootText() != "hello world" {
		t.Errorf("copy changed content to %q", f.rootText())
	}
	rs, ok := f.editor.DOMSelection().(*selection.RangeSelection)
	if !ok || !dom.Contains(f.editor.Root(), rs.Range.StartContainer) {
		t.Errorf("selection not restored into root: %#v", f.editor.DOMSelection())
	}
}

func TestOnCutDeletesAfterFlush(t *testing.T) {
	f := newFixture(t, "<p>hello world</p>")
	f.selectText(t, 0, 5)

	res, err := f.plugin.OnCut(context.Background())
	if err != nil || res == nil {
		t.Fatalf("OnCut() = %v, %v", res, err)
	}
	if !res.IsCut {
		t.Error("IsCut = false")
	}
	if f.rootText() != "hello world" {
		t.Errorf("content deleted before the deferred step: %q", f.rootText())
	}

	f.queue.Flush()
	got := f.rootText()
	if strings.Contains(got, "hello") || !strings.Contains(got, "world") {
		t.Errorf("root text after cut = %q", got)
	}
}

func TestOnCutCancelledByDispose(t *testing.T) {
	f := newFixture(t, "<p>hello world</p>")
	f.selectText(t, 0, 5)

	if _, err := f.plugin.OnCut(context.Background()); err != nil {
		t.Fatalf("OnCut() error = %v", err)
	}
	f.editor.Dispose()
	f.queue.Flush()

	if f.rootText() != "hello world" {
		t.Errorf("disposed editor was modified: %q", f.rootText())
	}
}

func TestOnCutNothingSelected(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*testing.T, *fixture)
	}{
		{"no selection", func(*testing.T, *fixture) {}},
		{"collapsed", func(t *testing.T, f *fixture) { f.selectText(t, 2, 2) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "<p>hello</p>")
			tt.setup(t, f)
			called := false
			f.plugin.OnBeforeCutCopy(func(*BeforeCutCopyEvent) { called = true })

			res, err := f.plugin.OnCut(context.Background())
			if err != nil || res != nil {
				t.Fatalf("OnCut() = %v, %v, want nil, nil", res, err)
			}
			if called {
				t.Error("handler called for an empty selection")
			}
			if f.queue.Len() != 0 {
				t.Error("deferred work scheduled for an empty selection")
			}
			if f.written != nil {
				t.Error("clipboard written for an empty selection")
			}
		})
	}
}

func TestOnCopyAbortedByHandler(t *testing.T) {
	f := newFixture(t, "<p>hello</p>")
	f.selectText(t, 0, 5)
	remove := f.plugin.OnBeforeCutCopy(func(ev *BeforeCutCopyEvent) { ev.Range = nil })

	res, err := f.plugin.OnCopy(context.Background())
	if err != nil || res != nil {
		t.Fatalf("OnCopy() = %v, %v, want nil, nil", res, err)
	}
	if f.written != nil {
		t.Error("clipboard written after abort")
	}

	remove()
	if res, _ := f.plugin.OnCopy(context.Background()); res == nil {
		t.Error("removed handler still aborts")
	}
}

func TestOnCopyImage(t *testing.T) {
	f := newFixture(t, `<p>a<img src="x.png">b</p>`)
	img, _ := dom.QuerySelector(f.editor.Root(), "img")
	if err := f.editor.SetDOMSelection(&selection.ImageSelection{Image: img}); err != nil {
		t.Fatalf("SetDOMSelection() error = %v", err)
	}

	res, err := f.plugin.OnCopy(context.Background())
	if err != nil || res == nil {
		t.Fatalf("OnCopy() = %v, %v", res, err)
	}
	if !strings.Contains(res.HTML, `src="x.png"`) || strings.Contains(res.HTML, ">a") {
		t.Errorf("HTML = %q", res.HTML)
	}

	f.queue.Flush()
	if _, ok := f.editor.DOMSelection().(*selection.ImageSelection); !ok {
		t.Errorf("selection after copy = %#v, want image", f.editor.DOMSelection())
	}
	if dom.Attr(img, "id") != "image_0" {
		t.Errorf("image id = %q", dom.Attr(img, "id"))
	}
	rules := strings.Join(f.editor.StyleInjector().Rules(selection.StyleKeySelection), "")
	if !strings.Contains(rules, "#image_0") {
		t.Errorf("selection rules = %q", rules)
	}
}

func TestOnCopyTable(t *testing.T) {
	f := newFixture(t, `<table><tbody><tr><td>a</td><td>b</td></tr><tr><td>c</td><td>d</td></tr></tbody></table>`)
	table, _ := dom.QuerySelector(f.editor.Root(), "table")
	sel := &selection.TableSelection{Table: table, FirstRow: 0, FirstColumn: 0, LastRow: 0, LastColumn: 1}
	if err := f.editor.SetDOMSelection(sel); err != nil {
		t.Fatalf("SetDOMSelection() error = %v", err)
	}

	res, err := f.plugin.OnCopy(context.Background())
	if err != nil || res == nil {
		t.Fatalf("OnCopy() = %v, %v", res, err)
	}
	if !strings.HasPrefix(res.HTML, "<div><table") {
		t.Errorf("HTML = %q, want a wrapped table", res.HTML)
	}
	if !strings.Contains(res.Text, "a") || !strings.Contains(res.Text, "b") || strings.Contains(res.Text, "c") {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestPrepareCopiedNode(t *testing.T) {
	doc := dom.NewDocument()
	root := doc.CreateElement("div")
	table := doc.CreateElement("table")
	span := doc.CreateElement("span")
	dom.SetAttr(span, "contenteditable", "false")
	root.AppendChild(table)
	root.AppendChild(span)

	prepareCopiedNode(doc, table)
	prepareCopiedNode(doc, span)

	if table.Parent == root || !dom.IsElement(table.Parent, "div") || table.Parent.Parent != root {
		t.Error("table not wrapped in a div")
	}
	if dom.HasAttr(span, "contenteditable") {
		t.Error("contenteditable=false kept")
	}
}

func TestGesturesOnDisposedEditor(t *testing.T) {
	f := newFixture(t, "<p>hello</p>")
	f.editor.Dispose()

	if _, err := f.plugin.OnCopy(context.Background()); !errors.Is(err, ErrDisposed) {
		t.Errorf("OnCopy() error = %v, want ErrDisposed", err)
	}
	if _, err := f.plugin.OnCut(context.Background()); !errors.Is(err, ErrDisposed) {
		t.Errorf("OnCut() error = %v, want ErrDisposed", err)
	}
	if err := f.plugin.OnPaste(context.Background(), nil, ""); !errors.Is(err, ErrDisposed) {
		t.Errorf("OnPaste() error = %v, want ErrDisposed", err)
	}
}

// ============================================================================
// Paste Tests
// ============================================================================

func TestOnPasteHTMLWithGlobalCSS(t *testing.T) {
	f := newFixture(t, "<p>ab</p>")
	f.selectText(t, 1, 1)

	var ev *BeforePasteEvent
	f.plugin.OnBeforePaste(func(e *BeforePasteEvent) { ev = e })

	markup := `<html><head><style>.x{color:red}</style></head><body><!--StartFragment--><span class="x">Z</span><!--EndFragment--></body></html>`
	err := f.plugin.OnPaste(context.Background(), []Item{
		{Type: "text/html", Data: []byte(markup)},
		{Type: "text/plain", Data: []byte("Z")},
	}, "")
	if err != nil {
		t.Fatalf("OnPaste() error = %v", err)
	}

	if ev == nil {
		t.Fatal("before paste handler not called")
	}
	if ev.PasteType != PasteNormal {
		t.Errorf("PasteType = %q, want normal", ev.PasteType)
	}
	if ev.ClipboardData.SnapshotBeforePaste == nil {
		t.Error("SnapshotBeforePaste not taken")
	}
	if len(ev.HTMLInfo.GlobalCSSRules) != 1 {
		t.Errorf("GlobalCSSRules = %+v", ev.HTMLInfo.GlobalCSSRules)
	}
	if got := f.rootText(); got != "aZb" {
		t.Errorf("root text = %q, want aZb", got)
	}
	out, _ := dom.RenderChildren(f.editor.Root())
	if !strings.Contains(out, "red") {
		t.Errorf("global style not inlined: %s", out)
	}
}

func TestOnPasteNoItems(t *testing.T) {
	f := newFixture(t, "<p>ab</p>")
	f.selectText(t, 1, 1)

	if err := f.plugin.OnPaste(context.Background(), nil, ""); err != nil {
		t.Fatalf("OnPaste() error = %v", err)
	}
	if f.rootText() != "ab" {
		t.Errorf("root text = %q, want ab", f.rootText())
	}
}

func TestOnPasteHandlerRewritesFragment(t *testing.T) {
	tests := []struct {
		name    string
		handler func(*BeforePasteEvent)
		want    string
	}{
		{"replace", func(ev *BeforePasteEvent) {
			frag := dom.NewFragment()
			frag.AppendChild(&html.Node{Type: html.TextNode, Data: "Q"})
			ev.Fragment = frag
		}, "aQb"},
		{"cancel", func(ev *BeforePasteEvent) { ev.Fragment = nil }, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "<p>ab</p>")
			f.selectText(t, 1, 1)
			f.plugin.OnBeforePaste(tt.handler)

			err := f.plugin.OnPaste(context.Background(), []Item{{Type: "text/plain", Data: []byte("Z")}}, PasteAsPlainText)
			if err != nil {
				t.Fatalf("OnPaste() error = %v", err)
			}
			if got := f.rootText(); got != tt.want {
				t.Errorf("root text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOnPastePlainTextRecognizesImage(t *testing.T) {
	rec := &fakeRecognizer{text: "OCR"}
	f := newFixture(t, "<p>ab</p>", WithRecognizer(rec))
	f.selectText(t, 2, 2)

	err := f.plugin.OnPaste(context.Background(), []Item{{Type: "image/png", Data: encodePNG(t, 2, 2)}}, PasteAsPlainText)
	if err != nil {
		t.Fatalf("OnPaste() error = %v", err)
	}
	if rec.calls != 1 {
		t.Errorf("recognizer called %d times, want 1", rec.calls)
	}
	if got := f.rootText(); got != "abOCR" {
		t.Errorf("root text = %q, want abOCR", got)
	}
}

func TestOnPastePlainTextRecognizerError(t *testing.T) {
	rec := &fakeRecognizer{err: errors.New("no engine")}
	f := newFixture(t, "<p>ab</p>", WithRecognizer(rec))
	f.selectText(t, 2, 2)

	err := f.plugin.OnPaste(context.Background(), []Item{{Type: "image/png", Data: encodePNG(t, 2, 2)}}, PasteAsPlainText)
	if err != nil {
		t.Fatalf("OnPaste() error = %v", err)
	}
	if got := f.rootText(); got != "ab" {
		t.Errorf("root text = %q, want ab", got)
	}
}

func TestOnPasteImage(t *testing.T) {
	f := newFixture(t, "<p>ab</p>")
	f.selectText(t, 1, 1)

	err := f.plugin.OnPaste(context.Background(), []Item{{Type: "image/png", Data: encodePNG(t, 2, 2)}}, "")
	if err != nil {
		t.Fatalf("OnPaste() error = %v", err)
	}
	img, _ := dom.QuerySelector(f.editor.Root(), "img")
	if img == nil || !strings.HasPrefix(dom.Attr(img, "src"), "data:image/png;base64,") {
		t.Errorf("pasted image not found")
	}
}

func TestPluginDispose(t *testing.T) {
	f := newFixture(t, "<p>hello</p>")
	f.selectText(t, 0, 5)
	if _, err := f.plugin.OnCopy(context.Background()); err != nil {
		t.Fatalf("OnCopy() error = %v", err)
	}
	scratch := f.plugin.scratch

	f.plugin.Dispose()
	if f.editor.Document().Contains(scratch) {
		t.Error("scratch element still attached")
	}
}
