package copypaste

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/gorilla/css/scanner"
	"github.com/tsawler/inkwell/dom"
	"golang.org/x/net/html"
)

// SplitSelectors splits a selector list at top-level commas. Commas inside
// parentheses, as in ":not(a, b)", and inside strings do not split.
// Empty selectors are dropped.
func SplitSelectors(selectorText string) []string {
	var (
		out   []string
		cur   strings.Builder
		depth int
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	s := scanner.New(selectorText)
	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			break
		}
		switch {
		case tok.Type == scanner.TokenFunction:
			depth++
		case tok.Type == scanner.TokenChar && tok.Value == "(":
			depth++
		case tok.Type == scanner.TokenChar && tok.Value == ")":
			if depth > 0 {
				depth--
			}
		case tok.Type == scanner.TokenChar && tok.Value == "," && depth == 0:
			flush()
			continue
		case tok.Type == scanner.TokenComment:
			continue
		}
		cur.WriteString(tok.Value)
	}
	flush()
	return out
}

// ParseGlobalCSS parses a stylesheet into rules. At-rules such as @media are
// skipped since their conditions cannot be evaluated on a fragment.
func ParseGlobalCSS(text string) ([]CSSRule, error) {
	sheet, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	var rules []CSSRule
	for _, r := range sheet.Rules {
		if r.Kind != css.QualifiedRule || len(r.Declarations) == 0 {
			continue
		}
		selectors := SplitSelectors(r.Prelude)
		if len(selectors) == 0 {
			continue
		}
		rules = append(rules, CSSRule{Selectors: selectors, Text: declarationText(r.Declarations)})
	}
	return rules, nil
}

func declarationText(decls []*css.Declaration) string {
	var b strings.Builder
	for _, d := range decls {
		b.WriteString(d.Property)
		b.WriteByte(':')
		b.WriteString(d.Value)
		if d.Important {
			b.WriteString("!important")
		}
		b.WriteByte(';')
	}
	return b.String()
}

// ConvertInlineCSS copies global rules into the inline style of matching
// elements under root. Rules are applied last to first and each prepends its
// declarations, so later rules win over earlier ones and the element's own
// inline style wins over all of them. Selectors that cannot be compiled are
// skipped.
func ConvertInlineCSS(root *html.Node, rules []CSSRule) {
	for i := len(rules) - 1; i >= 0; i-- {
		rule := rules[i]
		for _, sel := range rule.Selectors {
			nodes, err := dom.QuerySelectorAll(root, sel)
			if err != nil {
				continue
			}
			for _, n := range nodes {
				dom.SetAttr(n, "style", rule.Text+dom.Attr(n, "style"))
			}
		}
	}
}
