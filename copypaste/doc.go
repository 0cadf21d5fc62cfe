// Package copypaste implements the clipboard pipelines of an editor.
//
// Copy and cut render a disconnected copy of the selected content into a
// pooled off-screen element, let handlers adjust the range, and serialize it
// as HTML, plain text and Markdown:
//
//	p := copypaste.NewPlugin(ed, copypaste.WithClipboardWriter(w))
//	res, err := p.OnCopy(ctx)
//
// Paste reads raw clipboard items, decodes them, sanitizes the HTML through
// the editor's trusted HTML handler, inlines global CSS and merges the
// result at the selection:
//
//	err := p.OnPaste(ctx, []copypaste.Item{{Type: "text/html", Data: b}}, copypaste.PasteNormal)
//
// Work that must wait for the host, such as restoring the selection and
// deleting cut content, runs on the editor's Scheduler.
package copypaste
