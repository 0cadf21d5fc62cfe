package copypaste

import (
	"strings"

	"github.com/tsawler/inkwell/dom"
	"golang.org/x/net/html"
)

// Fragment markers written by Office and browsers around the copied part of
// clipboard HTML.
const (
	StartFragment = "<!--StartFragment-->"
	EndFragment   = "<!--EndFragment-->"
)

// RetrieveHTMLInfo collects what the merge needs to know about a parsed
// clipboard document: the raw markup around the fragment markers, <meta>
// values, the <html> attributes and the global CSS rules. The <style>
// elements are removed from doc once read. doc may be nil, in which case
// only the marker split of rawHTML is done.
func RetrieveHTMLInfo(doc *html.Node, rawHTML string) *HTMLInfo {
	info := &HTMLInfo{
		Metadata:       make(map[string]string),
		HTMLAttributes: make(map[string]string),
	}

	if start := strings.Index(rawHTML, StartFragment); start >= 0 {
		if end := strings.LastIndex(rawHTML, EndFragment); end > start {
			info.HTMLBefore = rawHTML[:start]
			info.HTMLAfter = rawHTML[end+len(EndFragment):]
		}
	}
	if doc == nil {
		return info
	}

	var styles []*html.Node
	dom.Walk(doc, func(n *html.Node) bool {
		switch {
		case dom.IsElement(n, "html"):
			for _, a := range n.Attr {
				info.HTMLAttributes[a.Key] = a.Val
			}
		case dom.IsElement(n, "meta"):
			key := dom.Attr(n, "name")
			if key == "" {
				key = dom.Attr(n, "http-equiv")
			}
			if key == "" {
				key = dom.Attr(n, "property")
			}
			if key != "" {
				info.Metadata[key] = dom.Attr(n, "content")
			} else if cs := dom.Attr(n, "charset"); cs != "" {
				info.Metadata["charset"] = cs
			}
		case dom.IsElement(n, "style"):
			styles = append(styles, n)
			return false
		}
		return true
	})

	for _, style := range styles {
		rules, err := ParseGlobalCSS(dom.TextContent(style))
		if err == nil {
			info.GlobalCSSRules = append(info.GlobalCSSRules, rules...)
		}
		dom.RemoveNode(style)
	}
	return info
}
