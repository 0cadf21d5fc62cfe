package dom

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML document together with the host state an editor
// needs from it: a native selection, a focus owner and the stylesheets
// attached to <style> elements.
type Document struct {
	root     *html.Node
	head     *html.Node
	body     *html.Node
	title    string
	metadata map[string]string

	selection *Selection
	active    *html.Node
	sheets    map[*html.Node]*StyleSheet
	issued    map[string]*html.Node
}

// Open opens an HTML file for editing.
func Open(filename string) (*Document, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse parses HTML from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return Wrap(root), nil
}

// ParseString parses an HTML string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// NewDocument returns an empty document with a head and a body.
func NewDocument() *Document {
	doc, _ := ParseString("<html><head></head><body></body></html>")
	return doc
}

// Wrap adopts an already parsed document node. Missing head or body
// elements are created.
func Wrap(root *html.Node) *Document {
	d := &Document{
		root:     root,
		metadata: make(map[string]string),
		sheets:   make(map[*html.Node]*StyleSheet),
		issued:   make(map[string]*html.Node),
	}
	d.selection = &Selection{}

	d.head = findElement(root, atom.Head)
	d.body = findElement(root, atom.Body)

	htmlEl := findElement(root, atom.Html)
	if htmlEl == nil {
		htmlEl = d.CreateElement("html")
		AppendChild(root, htmlEl)
	}
	if d.head == nil {
		d.head = d.CreateElement("head")
		InsertBefore(htmlEl, d.head, htmlEl.FirstChild)
	}
	if d.body == nil {
		d.body = d.CreateElement("body")
		AppendChild(htmlEl, d.body)
	}

	d.extractHead()
	return d
}

// extractHead reads the title and meta tags from the head element.
func (d *Document) extractHead() {
	for c := d.head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Title:
			d.title = strings.TrimSpace(TextContent(c))
		case atom.Meta:
			name, content := "", ""
			for _, attr := range c.Attr {
				switch attr.Key {
				case "name", "property":
					name = attr.Val
				case "content":
					content = attr.Val
				}
			}
			if name != "" && content != "" {
				d.metadata[name] = content
			}
		}
	}
}

// Node returns the underlying document node.
func (d *Document) Node() *html.Node { return d.root }

// Head returns the head element.
func (d *Document) Head() *html.Node { return d.head }

// Body returns the body element.
func (d *Document) Body() *html.Node { return d.body }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Metadata returns a copy of the <meta> name/content pairs found in the head.
func (d *Document) Metadata() map[string]string {
	out := make(map[string]string, len(d.metadata))
	for k, v := range d.metadata {
		out[k] = v
	}
	return out
}

// Selection returns the document's native selection.
func (d *Document) Selection() *Selection { return d.selection }

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) *html.Node {
	return NewElement(tag)
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// Contains reports whether n is attached to this document.
func (d *Document) Contains(n *html.Node) bool {
	return Contains(d.root, n)
}

// GetElementByID returns the first element with the given id in document
// order, or nil.
func (d *Document) GetElementByID(id string) *html.Node {
	var found *html.Node
	Walk(d.root, func(n *html.Node) bool {
		if found == nil && n.Type == html.ElementNode && Attr(n, "id") == id {
			found = n
		}
		return found == nil
	})
	return found
}

// QuerySelectorAll returns every element under the document matching sel.
func (d *Document) QuerySelectorAll(sel string) ([]*html.Node, error) {
	return QuerySelectorAll(d.root, sel)
}

// QuerySelectorAll returns every descendant of root matching the selector
// group sel, in document order.
func QuerySelectorAll(root *html.Node, sel string) ([]*html.Node, error) {
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("compiling selector %q: %w", sel, err)
	}
	return cascadia.QueryAll(root, s), nil
}

// QuerySelector returns the first descendant of root matching sel, or nil.
func QuerySelector(root *html.Node, sel string) (*html.Node, error) {
	s, err := cascadia.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("compiling selector %q: %w", sel, err)
	}
	return cascadia.Query(root, s), nil
}

// Matches reports whether n matches sel.
func Matches(n *html.Node, sel string) (bool, error) {
	s, err := cascadia.Compile(sel)
	if err != nil {
		return false, fmt.Errorf("compiling selector %q: %w", sel, err)
	}
	return s.Match(n), nil
}

// ============================================================================
// Focus
// ============================================================================

// Focus moves focus to n.
func (d *Document) Focus(n *html.Node) {
	d.active = n
}

// Blur clears focus.
func (d *Document) Blur() {
	d.active = nil
}

// ActiveElement returns the focused element, or nil.
func (d *Document) ActiveElement() *html.Node {
	return d.active
}

// HasFocus reports whether the focused element is n or inside n.
func (d *Document) HasFocus(n *html.Node) bool {
	return d.active != nil && Contains(n, d.active)
}

// ============================================================================
// Stylesheets
// ============================================================================

// StyleSheet returns the stylesheet object of a <style> element, creating it
// on first use. Rules already present in the element's text are kept.
func (d *Document) StyleSheet(style *html.Node) *StyleSheet {
	if s, ok := d.sheets[style]; ok {
		return s
	}
	s := newStyleSheet(style)
	d.sheets[style] = s
	return s
}

// ============================================================================
// Issued ids
// ============================================================================

// RecordID notes that id was handed to el. The element may not be attached
// to the document yet.
func (d *Document) RecordID(id string, el *html.Node) {
	d.issued[id] = el
}

// RecordedID returns the element id was last handed to, if it still
// carries it.
func (d *Document) RecordedID(id string) *html.Node {
	el := d.issued[id]
	if el == nil || Attr(el, "id") != id {
		return nil
	}
	return el
}

// Render serializes the whole document.
func (d *Document) Render() (string, error) {
	return Render(d.root)
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
