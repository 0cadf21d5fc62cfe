package selection

import (
	"strconv"
	"strings"

	"github.com/tsawler/inkwell/dom"
	"golang.org/x/net/html"
)

// EnsureUniqueID returns an id for el that no other element of doc carries.
// An existing id is kept when no other element has it; otherwise el gets
// prefix_n for the smallest free n. Ids handed to elements not yet attached
// to doc stay reserved while those elements keep them.
func EnsureUniqueID(doc *dom.Document, el *html.Node, prefix string) string {
	id := dom.Attr(el, "id")
	if id == "" || idTaken(doc, el, id) {
		for n := 0; ; n++ {
			id = prefix + "_" + strconv.Itoa(n)
			if !idTaken(doc, el, id) {
				break
			}
		}
		dom.SetAttr(el, "id", id)
	}
	doc.RecordID(id, el)
	return id
}

// IDSelector returns a selector matching exactly the element with id. Ids
// that are not valid CSS identifiers, such as ones starting with a digit or
// a hyphen, use the attribute form [id="..."].
func IDSelector(id string) string {
	if isIdentifier(id) {
		return "#" + id
	}
	return `[id="` + strings.ReplaceAll(strings.ReplaceAll(id, `\`, `\\`), `"`, `\"`) + `"]`
}

// idTaken reports whether an element other than el carries id.
func idTaken(doc *dom.Document, el *html.Node, id string) bool {
	if nodes, err := doc.QuerySelectorAll(IDSelector(id)); err == nil {
		for _, n := range nodes {
			if n != el {
				return true
			}
		}
	}
	if owner := doc.RecordedID(id); owner != nil && owner != el {
		return true
	}
	return false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r >= 0x80:
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r == '-' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}
