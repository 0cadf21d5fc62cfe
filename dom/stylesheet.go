package dom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
)

// ErrIndexOutOfRange is returned for a rule index outside the sheet.
var ErrIndexOutOfRange = errors.New("rule index out of range")

// StyleSheet is the rule list of a <style> element. Every change rewrites
// the element's text so rendering the document shows the current rules.
type StyleSheet struct {
	owner *html.Node
	rules []string
}

func newStyleSheet(owner *html.Node) *StyleSheet {
	s := &StyleSheet{owner: owner}
	text := strings.TrimSpace(TextContent(owner))
	if text == "" {
		return s
	}
	sheet, err := parser.Parse(text)
	if err != nil {
		// keep the text as a single opaque rule
		s.rules = append(s.rules, text)
		return s
	}
	for _, r := range sheet.Rules {
		s.rules = append(s.rules, r.String())
	}
	return s
}

// Owner returns the <style> element.
func (s *StyleSheet) Owner() *html.Node { return s.owner }

// Len returns the number of rules.
func (s *StyleSheet) Len() int { return len(s.rules) }

// Rules returns a copy of the rule texts.
func (s *StyleSheet) Rules() []string {
	return append([]string(nil), s.rules...)
}

// InsertRule inserts rule at index and returns the index. The rule must be a
// single syntactically valid CSS rule.
func (s *StyleSheet) InsertRule(rule string, index int) (int, error) {
	if index < 0 || index > len(s.rules) {
		return 0, fmt.Errorf("inserting rule at %d: %w", index, ErrIndexOutOfRange)
	}
	sheet, err := parser.Parse(rule)
	if err != nil {
		return 0, fmt.Errorf("parsing rule %q: %w", rule, err)
	}
	if len(sheet.Rules) != 1 {
		return 0, fmt.Errorf("parsing rule %q: expected one rule, got %d", rule, len(sheet.Rules))
	}

	s.rules = append(s.rules, "")
	copy(s.rules[index+1:], s.rules[index:])
	s.rules[index] = rule
	s.sync()
	return index, nil
}

// DeleteRule removes the rule at index.
func (s *StyleSheet) DeleteRule(index int) error {
	if index < 0 || index >= len(s.rules) {
		return fmt.Errorf("deleting rule %d: %w", index, ErrIndexOutOfRange)
	}
	s.rules = append(s.rules[:index], s.rules[index+1:]...)
	s.sync()
	return nil
}

func (s *StyleSheet) sync() {
	RemoveChildren(s.owner)
	if len(s.rules) > 0 {
		s.owner.AppendChild(&html.Node{Type: html.TextNode, Data: strings.Join(s.rules, "\n")})
	}
}
