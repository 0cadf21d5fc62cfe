// Package editor provides the editing surface the clipboard pipelines run
// against.
//
// An Editor wraps one editing root inside a dom.Document. It converts the
// root to and from the content model, owns the selection manager and style
// injector of the root, and defers work to a Scheduler:
//
//	ed, err := editor.New(doc, root, editor.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer ed.Dispose()
//
//	ed.FormatContentModel("clear", func(m *model.Document) bool {
//		m.Blocks = nil
//		return true
//	})
//
// Settings can be loaded from YAML with LoadOptionsFile.
package editor
