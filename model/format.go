package model

import (
	"sort"
	"strings"
)

// Format is a style bag keyed by CSS property name ("font-weight",
// "text-align", "width", ...). A nil Format is valid and empty.
type Format map[string]string

// Get returns the value for key, or "" when unset.
func (f Format) Get(key string) string {
	if f == nil {
		return ""
	}
	return f[key]
}

// Clone returns an independent copy. Cloning nil yields an empty, non-nil bag.
func (f Format) Clone() Format {
	out := make(Format, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// With returns a copy of f with every key of other applied on top.
func (f Format) With(other Format) Format {
	out := f.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Equal reports whether both bags hold the same keys and values.
func (f Format) Equal(other Format) bool {
	if len(f) != len(other) {
		return false
	}
	for k, v := range f {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// CSSText renders the bag as an inline style string with keys sorted, so
// output is deterministic.
func (f Format) CSSText() string {
	if len(f) == 0 {
		return ""
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(":")
		sb.WriteString(f[k])
		sb.WriteString(";")
	}
	return sb.String()
}

// Segment format keys that carry emphasis. Merge-format paste keeps only
// these from the source content.
var EmphasisFormatKeys = []string{"font-weight", "font-style", "text-decoration"}

// Dataset is the opaque data-* payload attached to model elements. Keys are
// stored without the "data-" prefix. The core never interprets values.
type Dataset map[string]string

// Clone returns an independent copy.
func (d Dataset) Clone() Dataset {
	out := make(Dataset, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Link describes a hyperlink wrapping a segment.
type Link struct {
	Href    string
	Target  string
	Title   string
	Format  Format
	Dataset Dataset
}

// Clone returns a deep copy of the link, or nil for nil.
func (l *Link) Clone() *Link {
	if l == nil {
		return nil
	}
	return &Link{
		Href:    l.Href,
		Target:  l.Target,
		Title:   l.Title,
		Format:  l.Format.Clone(),
		Dataset: l.Dataset.Clone(),
	}
}
