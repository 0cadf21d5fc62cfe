package converter

import (
	"strings"

	"github.com/tsawler/inkwell/dom"
	"github.com/tsawler/inkwell/model"
	"golang.org/x/net/html"
)

// Entity wrapper class names.
const (
	EntityClass         = "_Entity"
	entityTypePrefix    = "_EType_"
	entityIDPrefix      = "_EId_"
	entityReadonlyClass = "_EReadonly_1"
)

// IsEntityWrapper reports whether el wraps an entity: either it carries the
// entity class, or it is a non-editable island without one (a fake entity).
func IsEntityWrapper(el *html.Node) bool {
	if !dom.IsElement(el) {
		return false
	}
	return dom.HasClass(el, EntityClass) || dom.Attr(el, "contenteditable") == "false"
}

// ParseEntityFormat reads the entity format encoded in a wrapper's classes.
func ParseEntityFormat(el *html.Node) model.EntityFormat {
	var ef model.EntityFormat
	isEntity := false
	for _, c := range dom.Classes(el) {
		switch {
		case c == EntityClass:
			isEntity = true
		case strings.HasPrefix(c, entityTypePrefix):
			ef.EntityType = strings.TrimPrefix(c, entityTypePrefix)
		case strings.HasPrefix(c, entityIDPrefix):
			ef.ID = strings.TrimPrefix(c, entityIDPrefix)
		case c == entityReadonlyClass:
			ef.IsReadonly = true
		}
	}
	if !isEntity {
		ef.IsFakeEntity = true
		ef.IsReadonly = true
	}
	return ef
}

// ApplyEntityFormat writes ef onto wrapper as classes. Readonly entities are
// marked contenteditable="false". Fake entities keep their markup.
func ApplyEntityFormat(wrapper *html.Node, ef model.EntityFormat) {
	if ef.IsFakeEntity {
		return
	}
	dom.AddClass(wrapper, EntityClass)
	if ef.EntityType != "" {
		dom.AddClass(wrapper, entityTypePrefix+ef.EntityType)
	}
	if ef.ID != "" {
		dom.AddClass(wrapper, entityIDPrefix+ef.ID)
	}
	if ef.IsReadonly {
		dom.AddClass(wrapper, entityReadonlyClass)
		dom.SetAttr(wrapper, "contenteditable", "false")
	}
}

// Attributes holding the colors an element had before dark mode rewrote
// them, mapped to where each color belongs.
var originalColorAttrs = []struct {
	attr  string
	style string // style property, or "" when the color was an attribute
	key   string // attribute restored when style is ""
}{
	{attr: "data-ogsc", style: "color"},
	{attr: "data-ogsb", style: "background-color"},
	{attr: "data-ogac", key: "color"},
	{attr: "data-ogab", key: "bgcolor"},
}

// CloneEntityWrapper deep clones an entity wrapper for export. In dark mode
// the original colors saved by the theme are put back, so the clone carries
// the light-mode appearance.
func CloneEntityWrapper(wrapper *html.Node, darkMode bool) *html.Node {
	clone := dom.CloneNode(wrapper, true)
	if !darkMode || clone == nil {
		return clone
	}
	dom.Walk(clone, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		for _, oc := range originalColorAttrs {
			v, ok := dom.GetAttr(n, oc.attr)
			if !ok {
				continue
			}
			if oc.style != "" {
				dom.SetStyleProperty(n, oc.style, v)
			} else if v != "" {
				dom.SetAttr(n, oc.key, v)
			} else {
				dom.RemoveAttr(n, oc.key)
			}
			dom.RemoveAttr(n, oc.attr)
		}
		return true
	})
	return clone
}
