// Package dom is the host document layer: an x/net/html tree plus the
// browser-side state an editor relies on.
//
// A [Document] owns a parsed tree, its native [Selection], a focus owner
// and one [StyleSheet] per <style> element. [Range] models boundary-point
// ranges, including [Range.CloneContents], which yields what a clipboard
// would capture from a selection.
//
// Selector queries use cascadia and inline style strings are parsed with
// douceur:
//
//	doc, err := dom.ParseString(`<div id="editor" contenteditable="true"><p>hi</p></div>`)
//	if err != nil {
//		return err
//	}
//	root := doc.GetElementByID("editor")
//	paras, _ := dom.QuerySelectorAll(root, "p")
package dom
