package selection

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsawler/inkwell/dom"
	"golang.org/x/net/html"
)

// DefaultMaxRuleLength caps the selector text of one injected rule.
const DefaultMaxRuleLength = 9000

// ErrNilRoot is returned when a rule is set without an editing root.
var ErrNilRoot = errors.New("selection: editing root is nil")

// StyleInjector installs named rule sets scoped to the editing root. Each
// key owns one <style> element in the document head, created on first use.
// Target elements are never touched.
type StyleInjector struct {
	doc    *dom.Document
	root   *html.Node
	styles map[string]*html.Node
	order  []string
}

// NewStyleInjector creates an injector for rules scoped to root.
func NewStyleInjector(doc *dom.Document, root *html.Node) *StyleInjector {
	return &StyleInjector{
		doc:    doc,
		root:   root,
		styles: make(map[string]*html.Node),
	}
}

// SetStyle replaces the rules of key with one rule "#root {rule}". An empty
// rule clears key.
func (s *StyleInjector) SetStyle(key, rule string) error {
	return s.set(key, rule, func(root string) []string {
		return []string{root}
	})
}

// SetPseudoStyle replaces the rules of key with "#root::pseudo {rule}".
func (s *StyleInjector) SetPseudoStyle(key, rule, pseudo string) error {
	return s.set(key, rule, func(root string) []string {
		return []string{root + "::" + pseudo}
	})
}

// SetSelectorStyle replaces the rules of key with rules applying rule to
// every "#root <sub>" selector. Selectors are grouped into as few rules as
// possible without letting one rule's selector text exceed maxLen (0 means
// DefaultMaxRuleLength). No sub selectors means the root itself.
func (s *StyleInjector) SetSelectorStyle(key, rule string, subSelectors []string, maxLen int) error {
	return s.set(key, rule, func(root string) []string {
		if len(subSelectors) == 0 {
			return []string{root}
		}
		return BuildSelectors(root, subSelectors, maxLen)
	})
}

func (s *StyleInjector) set(key, rule string, selectors func(root string) []string) error {
	el := s.styles[key]
	if el == nil && rule == "" {
		return nil
	}
	if rule != "" && s.root == nil {
		return fmt.Errorf("setting style %q: %w", key, ErrNilRoot)
	}
	if el == nil {
		el = s.doc.CreateElement("style")
		dom.AppendChild(s.doc.Head(), el)
		s.styles[key] = el
		s.order = append(s.order, key)
	}

	sheet := s.doc.StyleSheet(el)
	for sheet.Len() > 0 {
		if err := sheet.DeleteRule(0); err != nil {
			return fmt.Errorf("clearing style %q: %w", key, err)
		}
	}
	if rule == "" {
		return nil
	}

	root := IDSelector(EnsureUniqueID(s.doc, s.root, "contentDiv"))
	for _, sel := range selectors(root) {
		if _, err := sheet.InsertRule(sel+" {"+rule+"}", sheet.Len()); err != nil {
			return fmt.Errorf("setting style %q: %w", key, err)
		}
	}
	return nil
}

// Rules returns the rule texts currently installed for key.
func (s *StyleInjector) Rules(key string) []string {
	el := s.styles[key]
	if el == nil {
		return nil
	}
	return s.doc.StyleSheet(el).Rules()
}

// StyleElement returns the <style> element owned by key, or nil.
func (s *StyleInjector) StyleElement(key string) *html.Node {
	return s.styles[key]
}

// Dispose removes every <style> element created by the injector.
func (s *StyleInjector) Dispose() {
	for _, key := range s.order {
		dom.RemoveNode(s.styles[key])
	}
	s.styles = make(map[string]*html.Node)
	s.order = nil
}

// BuildSelectors prefixes every fragment with root and joins them into
// comma separated groups. A group is closed before it would exceed maxLen
// characters, so only a single fragment longer than maxLen can produce a
// longer group. Groups never split a fragment.
func BuildSelectors(root string, fragments []string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultMaxRuleLength
	}
	var out []string
	var cur strings.Builder
	for _, frag := range fragments {
		sel := root + " " + frag
		if cur.Len() > 0 && cur.Len()+1+len(sel) > maxLen {
			out = append(out, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString(",")
		}
		cur.WriteString(sel)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
