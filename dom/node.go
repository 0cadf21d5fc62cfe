package dom

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewElement creates a detached element for tag.
func NewElement(tag string) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
}

// NewFragment creates an empty document fragment. Appending a fragment moves
// its children instead of the fragment itself.
func NewFragment() *html.Node {
	return &html.Node{Type: html.DocumentNode}
}

// IsElement reports whether n is an element with one of the given tag names.
// With no names it reports whether n is any element.
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// ============================================================================
// Attributes
// ============================================================================

// GetAttr returns the value of key and whether it is present.
func GetAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Attr returns the value of key, or "".
func Attr(n *html.Node, key string) string {
	v, _ := GetAttr(n, key)
	return v
}

// HasAttr reports whether key is present on n.
func HasAttr(n *html.Node, key string) bool {
	_, ok := GetAttr(n, key)
	return ok
}

// SetAttr sets key to val, replacing any existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr removes key from n.
func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// Classes returns the class list of n.
func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// HasClass reports whether n carries class c.
func HasClass(n *html.Node, c string) bool {
	for _, cls := range Classes(n) {
		if cls == c {
			return true
		}
	}
	return false
}

// AddClass adds c to the class list of n.
func AddClass(n *html.Node, c string) {
	if HasClass(n, c) {
		return
	}
	SetAttr(n, "class", strings.TrimSpace(Attr(n, "class")+" "+c))
}

// Dataset returns the data-* attributes of n keyed without the prefix.
func Dataset(n *html.Node) map[string]string {
	out := make(map[string]string)
	for _, a := range n.Attr {
		if strings.HasPrefix(a.Key, "data-") {
			out[strings.TrimPrefix(a.Key, "data-")] = a.Val
		}
	}
	return out
}

// ============================================================================
// Inline style
// ============================================================================

// Declaration is one property of an inline style.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

func (d Declaration) String() string {
	if d.Important {
		return d.Property + ":" + d.Value + "!important"
	}
	return d.Property + ":" + d.Value
}

// ParseStyle parses an inline style string into its declarations, in source
// order.
func ParseStyle(style string) ([]Declaration, error) {
	text := strings.TrimSpace(style)
	if text == "" {
		return nil, nil
	}
	// The scanner drops the value of an unterminated last declaration.
	if !strings.HasSuffix(text, ";") {
		text += ";"
	}
	decls, err := parser.ParseDeclarations(text)
	if err != nil {
		return nil, fmt.Errorf("parsing style %q: %w", style, err)
	}
	out := make([]Declaration, 0, len(decls))
	for _, d := range decls {
		out = append(out, Declaration{
			Property:  strings.ToLower(d.Property),
			Value:     d.Value,
			Important: d.Important,
		})
	}
	return out, nil
}

// StyleMap returns the computed inline style of n as a property map. Later
// declarations override earlier ones unless the earlier one is !important.
// Unparsable style text yields an empty map.
func StyleMap(n *html.Node) map[string]string {
	out := make(map[string]string)
	decls, err := ParseStyle(Attr(n, "style"))
	if err != nil {
		return out
	}
	important := make(map[string]bool)
	for _, d := range decls {
		if important[d.Property] && !d.Important {
			continue
		}
		out[d.Property] = d.Value
		if d.Important {
			important[d.Property] = true
		}
	}
	return out
}

// StyleProperty returns the effective value of prop in n's inline style.
func StyleProperty(n *html.Node, prop string) string {
	return StyleMap(n)[prop]
}

// SetStyleProperty sets prop in n's inline style, keeping the other
// declarations in order. An empty value removes the property.
func SetStyleProperty(n *html.Node, prop, value string) {
	decls, _ := ParseStyle(Attr(n, "style"))
	out := make([]string, 0, len(decls)+1)
	replaced := false
	for _, d := range decls {
		if d.Property == prop {
			if value != "" && !replaced {
				out = append(out, prop+":"+value)
				replaced = true
			}
			continue
		}
		out = append(out, d.String())
	}
	if value != "" && !replaced {
		out = append(out, prop+":"+value)
	}
	if len(out) == 0 {
		RemoveAttr(n, "style")
		return
	}
	SetAttr(n, "style", strings.Join(out, ";")+";")
}

// ============================================================================
// Tree
// ============================================================================

// Contains reports whether n is ancestor or n itself.
func Contains(ancestor, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// IndexOf returns the position of n among its siblings, or -1 when detached.
func IndexOf(n *html.Node) int {
	if n.Parent == nil {
		return -1
	}
	i := 0
	for c := n.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c == n {
			return i
		}
		i++
	}
	return -1
}

// ChildAt returns the i-th child of n, or nil.
func ChildAt(n *html.Node, i int) *html.Node {
	if i < 0 {
		return nil
	}
	c := n.FirstChild
	for ; c != nil && i > 0; i-- {
		c = c.NextSibling
	}
	return c
}

// ChildCount returns the number of children of n.
func ChildCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// NodeLength is the length used by boundary points: the byte length of a
// text or comment node, otherwise the child count.
func NodeLength(n *html.Node) int {
	switch n.Type {
	case html.TextNode, html.CommentNode:
		return len(n.Data)
	default:
		return ChildCount(n)
	}
}

// RemoveNode detaches n from its parent. Detached nodes are left alone.
func RemoveNode(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// AppendChild appends child to parent, detaching it first. A fragment has its
// children moved instead.
func AppendChild(parent, child *html.Node) {
	InsertBefore(parent, child, nil)
}

// InsertBefore inserts child before ref under parent (at the end when ref is
// nil), detaching it first. A fragment has its children moved instead.
func InsertBefore(parent, child, ref *html.Node) {
	if child.Type == html.DocumentNode {
		for c := child.FirstChild; c != nil; {
			next := c.NextSibling
			child.RemoveChild(c)
			parent.InsertBefore(c, ref)
			c = next
		}
		return
	}
	RemoveNode(child)
	parent.InsertBefore(child, ref)
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// MoveChildren moves every child of from to the end of to.
func MoveChildren(from, to *html.Node) {
	for c := from.FirstChild; c != nil; {
		next := c.NextSibling
		from.RemoveChild(c)
		to.AppendChild(c)
		c = next
	}
}

// CloneNode copies n. With deep set the whole subtree is copied.
func CloneNode(n *html.Node, deep bool) *html.Node {
	if n == nil {
		return nil
	}
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	if deep {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			c.AppendChild(CloneNode(child, true))
		}
	}
	return c
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// TextContent returns the concatenated text of n and its descendants.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	if IsElement(n, "script", "style") {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
		}
		return sb.String()
	}
	Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return !IsElement(c, "script", "style")
	})
	return sb.String()
}

// ============================================================================
// Serialization
// ============================================================================

// Render serializes n and its subtree. A fragment renders its children.
func Render(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", fmt.Errorf("rendering HTML: %w", err)
	}
	return sb.String(), nil
}

// RenderChildren serializes the children of n (its inner HTML).
func RenderChildren(n *html.Node) (string, error) {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", fmt.Errorf("rendering HTML: %w", err)
		}
	}
	return sb.String(), nil
}

// SetInnerHTML replaces the children of n with markup parsed in n's context.
func SetInnerHTML(n *html.Node, markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), n)
	if err != nil {
		return fmt.Errorf("parsing fragment: %w", err)
	}
	RemoveChildren(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// ParseFragment parses markup as the content of a body element and returns
// the result wrapped in a fragment.
func ParseFragment(markup string) (*html.Node, error) {
	ctx := NewElement("body")
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}
	frag := NewFragment()
	for _, c := range nodes {
		frag.AppendChild(c)
	}
	return frag, nil
}
