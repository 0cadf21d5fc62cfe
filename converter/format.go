package converter

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/inkwell/dom"
	"github.com/tsawler/inkwell/model"
	"golang.org/x/net/html"
)

// FormatKind names the format a FormatParser fills.
type FormatKind int

const (
	// FormatSegment is the character format inherited by text, images and
	// line breaks.
	FormatSegment FormatKind = iota
	// FormatBlock is the format of paragraphs, list items and containers.
	FormatBlock
)

func (k FormatKind) String() string {
	switch k {
	case FormatSegment:
		return "segment"
	case FormatBlock:
		return "block"
	default:
		return "unknown"
	}
}

// FormatParser writes the format carried by el into format. style is el's
// parsed inline style.
type FormatParser func(format model.Format, el *html.Node, style map[string]string)

// segmentKeys are the style properties that belong to segments.
var segmentKeys = map[string]bool{
	"color":            true,
	"background-color": true,
	"font-family":      true,
	"font-size":        true,
	"font-weight":      true,
	"font-style":       true,
	"text-decoration":  true,
	"vertical-align":   true,
	"letter-spacing":   true,
}

// blockKeys are the style properties that belong to blocks.
var blockKeys = map[string]bool{
	"text-align":       true,
	"direction":        true,
	"line-height":      true,
	"white-space":      true,
	"text-indent":      true,
	"background-color": true,
	"margin-top":       true,
	"margin-right":     true,
	"margin-bottom":    true,
	"margin-left":      true,
	"padding-top":      true,
	"padding-right":    true,
	"padding-bottom":   true,
	"padding-left":     true,
}

// inheritedBlockKeys flow from a block into the blocks nested inside it.
var inheritedBlockKeys = map[string]bool{
	"text-align":  true,
	"direction":   true,
	"line-height": true,
	"white-space": true,
}

// tagSegmentDefaults is the format implied by inline formatting tags.
var tagSegmentDefaults = map[string]model.Format{
	"b":      {"font-weight": "bold"},
	"strong": {"font-weight": "bold"},
	"i":      {"font-style": "italic"},
	"em":     {"font-style": "italic"},
	"u":      {"text-decoration": "underline"},
	"s":      {"text-decoration": "line-through"},
	"strike": {"text-decoration": "line-through"},
	"del":    {"text-decoration": "line-through"},
	"sub":    {"vertical-align": "sub"},
	"sup":    {"vertical-align": "super"},
	"code":   {"font-family": "monospace"},
}

// parseSegmentFormat is the default FormatSegment parser: tag defaults, the
// legacy <font> attributes, then inline style.
func parseSegmentFormat(format model.Format, el *html.Node, style map[string]string) {
	for k, v := range tagSegmentDefaults[el.Data] {
		if k == "text-decoration" {
			format[k] = addDecoration(format[k], v)
			continue
		}
		format[k] = v
	}
	if el.Data == "font" {
		if c := dom.Attr(el, "color"); c != "" {
			format["color"] = c
		}
		if f := dom.Attr(el, "face"); f != "" {
			format["font-family"] = f
		}
	}
	for k, v := range style {
		if !segmentKeys[k] {
			continue
		}
		// A block's background paints the block, not its text.
		if k == "background-color" && isBlockElement(el) {
			continue
		}
		if k == "text-decoration" {
			format[k] = addDecoration(format[k], v)
			continue
		}
		format[k] = v
	}
}

// parseBlockFormat is the default FormatBlock parser.
func parseBlockFormat(format model.Format, el *html.Node, style map[string]string) {
	if align := dom.Attr(el, "align"); align != "" {
		format["text-align"] = align
	}
	if dir := dom.Attr(el, "dir"); dir != "" {
		format["direction"] = dir
	}
	for k, v := range style {
		if blockKeys[k] {
			format[k] = v
		}
	}
}

// addDecoration merges text-decoration line values.
func addDecoration(cur, add string) string {
	if cur == "" || cur == "none" {
		return add
	}
	if add == "none" {
		return cur
	}
	words := strings.Fields(cur)
	for _, w := range strings.Fields(add) {
		found := false
		for _, c := range words {
			if c == w {
				found = true
				break
			}
		}
		if !found {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}

// inherited keeps the keys of f that nested blocks inherit.
func inherited(f model.Format) model.Format {
	out := model.Format{}
	for k, v := range f {
		if inheritedBlockKeys[k] {
			out[k] = v
		}
	}
	return out
}

// parseLength reads a pixel length such as "120px" or "120". Other units
// yield 0.
func parseLength(s string) float64 {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSuffix(s, "px")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// formatLength renders a pixel length.
func formatLength(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// intAttr reads a positive integer attribute, falling back to def.
func intAttr(el *html.Node, key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(dom.Attr(el, key)))
	if err != nil || v < 0 {
		return def
	}
	return v
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"center": true, "dd": true, "div": true, "dl": true, "dt": true,
	"fieldset": true, "figcaption": true, "figure": true, "footer": true,
	"form": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "ul": true,
}

func isBlockElement(el *html.Node) bool {
	if blockTags[el.Data] {
		return true
	}
	switch dom.StyleProperty(el, "display") {
	case "block", "flex", "grid", "list-item", "table":
		return true
	}
	return false
}

// shouldSkipElement reports elements whose content never enters the model.
func shouldSkipElement(tagName string) bool {
	switch tagName {
	case "script", "style", "noscript", "template", "svg", "math", "iframe", "object", "embed",
		"head", "meta", "link", "title":
		return true
	}
	return false
}

func setStyle(el *html.Node, f model.Format) {
	if css := f.CSSText(); css != "" {
		dom.SetAttr(el, "style", css)
	}
}

func setDataset(el *html.Node, d model.Dataset) {
	for _, k := range sortedKeys(d) {
		dom.SetAttr(el, "data-"+k, d[k])
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
