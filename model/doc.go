// Package model is the content model: a format-annotated tree that mirrors
// the structure of an editing surface independently of its DOM.
//
// Converters (see the converter package) turn a DOM subtree into a
// [Document] and back. Editing operations work on the model and the result
// is written to the DOM again.
//
// # Structure
//
// A [Document] is a [BlockGroup]. Block groups hold [Block] values:
//
//   - [Paragraph] - an ordered run of [Segment] values
//   - [Table] - a dense grid of [TableCell] groups, merged cells kept as shadows
//   - [ListItem] - a list entry with its nesting levels
//   - [FormatContainer] - a formatting wrapper such as blockquote
//   - [Entity] - an opaque island of host content
//   - [Divider] - a horizontal rule
//
// Segments are [Text], [Br], [SelectionMarker], [Image] and [Entity].
//
// # Selection
//
// Selection lives in the model as IsSelected flags plus selection markers.
// [IterateSelections] walks the selected runs in document order,
// [DeleteSelection] removes them, and [MergeModel] splices another document
// in at the caret.
//
// # Formats
//
// Every element carries a [Format] bag keyed by CSS property name. Bags are
// always copied, never shared, between elements:
//
//	p := model.NewParagraph(false, model.Format{"text-align": "center"})
//	p.Segments = append(p.Segments, model.NewText("hello", nil))
//	doc := model.NewDocument()
//	model.AddBlock(doc, p)
package model
