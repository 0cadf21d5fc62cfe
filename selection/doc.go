// Package selection tracks the logical selection of an editing root and
// renders it without changing the selected elements.
//
// A [Manager] holds one [DOMSelection]: a text range, an image or a
// rectangle of table cells. Image and table highlights are drawn by rules
// that a [StyleInjector] installs in per-key <style> elements, scoped to the
// root through ids handed out by [EnsureUniqueID]. Range selections go to
// the document's native selection.
package selection
