package inkwell

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/tsawler/inkwell/copypaste"
	"github.com/tsawler/inkwell/dom"
	"github.com/tsawler/inkwell/editor"
	"github.com/tsawler/inkwell/format"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ErrNoRoot is returned when the document has no element to edit.
var ErrNoRoot = errors.New("inkwell: no editable root found")

// Loader provides a fluent interface for loading an HTML document into an
// editor. Each configuration method returns a new Loader instance, making
// it safe for concurrent use and allowing method chaining.
type Loader struct {
	// Source
	filename string
	reader   io.Reader

	// Configuration
	options loadOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Loader with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (l *Loader) clone() *Loader {
	return &Loader{
		filename: l.filename,
		reader:   l.reader,
		options:  l.options.clone(),
		err:      l.err,
	}
}

// ============================================================================
// Configuration Methods (return new Loader instance)
// ============================================================================

// RootSelector selects the editable root with a CSS selector. Without it
// the first [contenteditable] element is used, else the body.
//
// Example:
//
//	ed, err := inkwell.Open("page.html").RootSelector("#editor").Editor()
func (l *Loader) RootSelector(sel string) *Loader {
	newLoader := l.clone()
	if newLoader.err == nil {
		if _, err := cascadia.Compile(sel); err != nil {
			newLoader.err = fmt.Errorf("invalid root selector %q: %w", sel, err)
		}
	}
	newLoader.options.rootSelector = sel
	return newLoader
}

// DarkMode sets the editor's dark mode, overriding the options file.
func (l *Loader) DarkMode(on bool) *Loader {
	newLoader := l.clone()
	newLoader.options.darkMode = &on
	return newLoader
}

// Logger sets the logger of the editor.
func (l *Loader) Logger(logger *slog.Logger) *Loader {
	newLoader := l.clone()
	newLoader.options.logger = logger
	return newLoader
}

// OptionsFile loads the editor options from a YAML file at the terminal
// call.
//
// Example:
//
//	ed, err := inkwell.Open("page.html").OptionsFile("editor.yaml").Editor()
func (l *Loader) OptionsFile(path string) *Loader {
	newLoader := l.clone()
	newLoader.options.optionsFile = path
	return newLoader
}

// Scheduler sets where the editor runs deferred work.
func (l *Loader) Scheduler(s editor.Scheduler) *Loader {
	newLoader := l.clone()
	newLoader.options.scheduler = s
	return newLoader
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Editor loads the document and returns an editor bound to its editable
// root. The caller owns the editor and should Dispose it.
func (l *Loader) Editor() (*editor.Editor, error) {
	if l.err != nil {
		return nil, l.err
	}

	opts, err := l.options.editorOptionFuncs()
	if err != nil {
		return nil, err
	}
	doc, err := l.document()
	if err != nil {
		return nil, err
	}
	root, err := l.findRoot(doc)
	if err != nil {
		return nil, err
	}
	return editor.New(doc, root, opts...)
}

// Text returns the text of the editable root, one line per paragraph.
//
// Example:
//
//	text, err := inkwell.Open("page.html").Text()
func (l *Loader) Text() (string, error) {
	ed, err := l.Editor()
	if err != nil {
		return "", err
	}
	defer ed.Dispose()

	return ed.CreateContentModel(nil).ExtractText(), nil
}

// Markdown returns the editable root converted to Markdown.
//
// Example:
//
//	md, err := inkwell.Open("page.html").RootSelector("article").Markdown()
func (l *Loader) Markdown() (string, error) {
	ed, err := l.Editor()
	if err != nil {
		return "", err
	}
	defer ed.Dispose()

	markup, err := dom.RenderChildren(ed.Root())
	if err != nil {
		return "", fmt.Errorf("rendering root: %w", err)
	}
	md, err := copypaste.NewMarkdownConverter().ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("converting to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// ============================================================================
// Loading
// ============================================================================

// document parses the source, decoding it to UTF-8 by its BOM or
// <meta charset>.
func (l *Loader) document() (*dom.Document, error) {
	r := l.reader
	if r == nil {
		if l.filename == "" {
			return nil, fmt.Errorf("no filename specified")
		}
		if f := detectFormat(l.filename); f != format.HTML {
			return nil, fmt.Errorf("unsupported file format: %s", f)
		}
		file, err := os.Open(l.filename)
		if err != nil {
			return nil, fmt.Errorf("failed to open HTML: %w", err)
		}
		defer file.Close()
		r = file
	}

	decoded, err := charset.NewReader(r, "text/html")
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}
	return dom.Parse(decoded)
}

// findRoot locates the editable root: the configured selector, else the
// first [contenteditable] element, else the body.
func (l *Loader) findRoot(doc *dom.Document) (*html.Node, error) {
	if sel := l.options.rootSelector; sel != "" {
		n, err := dom.QuerySelector(doc.Node(), sel)
		if err != nil {
			return nil, err
		}
		if n == nil {
			return nil, fmt.Errorf("%w: nothing matches %q", ErrNoRoot, sel)
		}
		return n, nil
	}
	if n, err := dom.QuerySelector(doc.Node(), "[contenteditable]"); err == nil && n != nil {
		return n, nil
	}
	if body := doc.Body(); body != nil {
		return body, nil
	}
	return nil, ErrNoRoot
}

// detectFormat maps a file extension to a format.
func detectFormat(filename string) format.Format {
	return format.Detect(mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))))
}
