// Package converter translates between an HTML tree and the content model.
//
// DomToContentModel walks an editing root and produces a normalized
// model.Document, mapping the current DOMSelection onto selection markers,
// selected cells or a selected image. ContentModelToDom writes a model back
// under a root and returns the selection recorded in it.
//
// Entities are opaque islands. Their wrapper element is carried through both
// directions unchanged apart from the classes that encode the entity format.
package converter
