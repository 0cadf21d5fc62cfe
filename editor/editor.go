package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tsawler/inkwell/converter"
	"github.com/tsawler/inkwell/dom"
	"github.com/tsawler/inkwell/model"
	"github.com/tsawler/inkwell/selection"
	"golang.org/x/net/html"
)

// ErrNilDocument is returned by New without a host document.
var ErrNilDocument = errors.New("editor: document is nil")

// TrustedHTMLHandler turns untrusted markup into markup that is safe to
// parse into the editor.
type TrustedHTMLHandler func(markup string) string

// Editor is the editing surface around one root element. It owns the
// selection manager and the style injector of that root, converts between
// the DOM and the content model, and runs deferred work on its Scheduler.
//
// An Editor is not safe for concurrent use except for RunAsync, Dispose and
// IsDisposed.
type Editor struct {
	doc  *dom.Document
	root *html.Node

	opts        Options
	logger      *slog.Logger
	scheduler   Scheduler
	trustedHTML TrustedHTMLHandler

	styles    *selection.StyleInjector
	selection *selection.Manager
	darkMode  bool

	mu       sync.Mutex
	tasks    []*Task
	disposed bool
}

// New creates an editor for root, which must belong to doc.
func New(doc *dom.Document, root *html.Node, opts ...Option) (*Editor, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	if root == nil {
		return nil, fmt.Errorf("creating editor: %w", selection.ErrNilRoot)
	}

	e := &Editor{
		doc:    doc,
		root:   root,
		opts:   DefaultOptions(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.opts.defaults()
	if e.scheduler == nil {
		e.scheduler = NewFrameQueue()
	}
	if e.trustedHTML == nil {
		e.trustedHTML = DefaultTrustedHTMLHandler()
	}
	e.darkMode = e.opts.DarkMode

	e.styles = selection.NewStyleInjector(doc, root)
	e.selection = selection.NewManager(doc, root, e.styles, e.opts.SelectionOptions())
	return e, nil
}

// Document returns the host document.
func (e *Editor) Document() *dom.Document { return e.doc }

// Root returns the editing root.
func (e *Editor) Root() *html.Node { return e.root }

// Logger returns the editor's logger.
func (e *Editor) Logger() *slog.Logger { return e.logger }

// Options returns a copy of the editor settings.
func (e *Editor) Options() Options { return e.opts.clone() }

// Scheduler returns where RunAsync queues tasks.
func (e *Editor) Scheduler() Scheduler { return e.scheduler }

// SelectionManager returns the manager of the root's selection.
func (e *Editor) SelectionManager() *selection.Manager { return e.selection }

// StyleInjector returns the injector scoped to the root.
func (e *Editor) StyleInjector() *selection.StyleInjector { return e.styles }

// TrustedHTMLHandler returns the handler applied to pasted markup.
func (e *Editor) TrustedHTMLHandler() TrustedHTMLHandler { return e.trustedHTML }

// ============================================================================
// Content model
// ============================================================================

// CreateContentModel converts the live root into a model. When opt carries
// no selection, the current DOM selection is mapped into the model.
func (e *Editor) CreateContentModel(opt *converter.DomToModelOption) *model.Document {
	var o converter.DomToModelOption
	if opt != nil {
		o = *opt
	}
	if o.Selection == nil {
		o.Selection = e.selection.Selection()
	}
	o.AllowCacheElement = true
	return converter.DomToContentModel(e.root, converter.NewDomToModelContext(o))
}

// GetContentModelCopy returns a snapshot of the content. A connected copy
// keeps references to live elements. A disconnected copy shares nothing with
// the DOM: render caches are dropped and entity wrappers are cloned, with
// their original colors restored in dark mode.
func (e *Editor) GetContentModelCopy(mode model.CopyMode) *model.Document {
	m := e.CreateContentModel(nil)
	if mode == model.CopyConnected {
		return m
	}
	darkMode := e.darkMode
	return model.CloneModel(m, model.CloneOptions{
		IncludeCachedElement: func(node *html.Node, kind model.CachedElementKind) *html.Node {
			if kind != model.CachedElementEntity {
				return nil
			}
			return converter.CloneEntityWrapper(node, darkMode)
		},
	})
}

// SetContentModel rewrites the root from m and applies the selection found
// in it. The applied selection is returned.
func (e *Editor) SetContentModel(m *model.Document, ctx *converter.ModelToDomContext) selection.DOMSelection {
	if ctx == nil {
		ctx = &converter.ModelToDomContext{AllowCacheElement: true}
	}
	sel := converter.ContentModelToDom(e.doc, e.root, m, ctx)
	if sel != nil {
		if err := e.selection.SetSelection(sel, false); err != nil {
			e.logger.Warn("failed to apply selection", "error", err)
		}
	}
	return sel
}

// FormatContentModel is the entry point of a named editing transaction. It
// builds a model of the root, passes it to fn and writes the model back when
// fn reports a change.
func (e *Editor) FormatContentModel(apiName string, fn func(m *model.Document) bool) bool {
	if e.IsDisposed() {
		e.logger.Debug("format skipped on disposed editor", "api", apiName)
		return false
	}

	m := e.CreateContentModel(nil)
	changed := fn(m)
	e.logger.Debug("format content model", "api", apiName, "changed", changed)
	if changed {
		e.SetContentModel(m, nil)
	}
	return changed
}

// ============================================================================
// Selection and focus
// ============================================================================

// SetDOMSelection makes sel the current selection and notifies listeners.
func (e *Editor) SetDOMSelection(sel selection.DOMSelection) error {
	return e.selection.SetSelection(sel, false)
}

// DOMSelection returns the current selection, or nil.
func (e *Editor) DOMSelection() selection.DOMSelection {
	return e.selection.Selection()
}

// OnSelectionChanged registers l and returns a function that removes it.
func (e *Editor) OnSelectionChanged(l selection.Listener) func() {
	return e.selection.OnSelectionChanged(l)
}

// Focus moves focus into the root. A range selection kept while the root
// was unfocused becomes the native selection again.
func (e *Editor) Focus() {
	if e.HasFocus() {
		return
	}
	kept := e.selection.Selection()
	e.doc.Focus(e.root)
	if r, ok := kept.(*selection.RangeSelection); ok {
		if err := e.selection.SetSelection(r, true); err != nil {
			e.logger.Warn("failed to restore selection on focus", "error", err)
		}
	}
}

// HasFocus reports whether the focused element is the root or inside it.
func (e *Editor) HasFocus() bool {
	return e.doc.HasFocus(e.root)
}

// SetDarkMode switches dark mode.
func (e *Editor) SetDarkMode(on bool) { e.darkMode = on }

// IsDarkMode reports whether dark mode is on.
func (e *Editor) IsDarkMode() bool { return e.darkMode }

// ============================================================================
// Deferred work
// ============================================================================

// RunAsync schedules fn on the editor's Scheduler. The task does nothing if
// the editor is disposed before it runs. On a disposed editor the returned
// task is already cancelled.
func (e *Editor) RunAsync(fn func()) *Task {
	var t *Task
	t = NewTask(func() {
		e.forget(t)
		if e.IsDisposed() {
			e.logger.Debug("discarding async task after dispose")
			return
		}
		fn()
	})

	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		t.Cancel()
		return t
	}
	e.tasks = append(e.tasks, t)
	e.mu.Unlock()

	e.scheduler.Schedule(t)
	return t
}

// PendingTasks returns the number of scheduled tasks that have not run.
func (e *Editor) PendingTasks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

func (e *Editor) forget(t *Task) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, p := range e.tasks {
		if p == t {
			e.tasks = append(e.tasks[:i], e.tasks[i+1:]...)
			return
		}
	}
}

// Dispose cancels pending tasks, removes the highlight and injected styles
// and marks the editor disposed. Later calls do nothing.
func (e *Editor) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	tasks := e.tasks
	e.tasks = nil
	e.mu.Unlock()

	for _, t := range tasks {
		t.Cancel()
	}
	e.selection.Dispose()
	e.styles.Dispose()
}

// IsDisposed reports whether Dispose was called.
func (e *Editor) IsDisposed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disposed
}

// ============================================================================
// Trusted HTML
// ============================================================================

// DefaultTrustedHTMLHandler returns a handler backed by a bluemonday policy.
// It keeps what clipboard markup needs: inline styles, classes, data
// attributes, fragment comments, <meta> tags and <style> blocks. Scripts,
// event handlers and unsafe URLs are removed.
func DefaultTrustedHTMLHandler() TrustedHTMLHandler {
	p := bluemonday.UGCPolicy()
	p.AllowStyling()
	p.AllowAttrs("style").Globally()
	p.AllowDataAttributes()
	p.AllowComments()
	p.AllowAttrs("contenteditable").Globally()
	p.AllowAttrs("width", "height", "bgcolor", "align", "valign").Globally()
	p.AllowAttrs("color", "face", "size").OnElements("font")
	p.AllowElements("font")
	p.AllowElements("style")
	p.AllowAttrs("name", "content", "charset").OnElements("meta")
	p.AllowElements("meta")
	p.AllowUnsafe(true)
	return p.Sanitize
}
