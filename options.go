package inkwell

import (
	"log/slog"

	"github.com/tsawler/inkwell/editor"
)

// loadOptions holds the configuration collected by a Loader chain.
type loadOptions struct {
	// Editable root; empty means [contenteditable], then body
	rootSelector string

	// Editor configuration
	optionsFile string
	darkMode    *bool
	logger      *slog.Logger
	scheduler   editor.Scheduler
}

// defaultOptions returns the default load options.
func defaultOptions() loadOptions {
	return loadOptions{}
}

// clone creates a copy of loadOptions that shares no mutable state.
func (o loadOptions) clone() loadOptions {
	newOpts := o
	if o.darkMode != nil {
		v := *o.darkMode
		newOpts.darkMode = &v
	}
	return newOpts
}

// editorOptions resolves the editor options: the options file when set,
// else the defaults, with an explicit dark mode applied last.
func (o loadOptions) editorOptions() (editor.Options, error) {
	opts := editor.DefaultOptions()
	if o.optionsFile != "" {
		var err error
		if opts, err = editor.LoadOptionsFile(o.optionsFile); err != nil {
			return editor.Options{}, err
		}
	}
	if o.darkMode != nil {
		opts.DarkMode = *o.darkMode
	}
	return opts, nil
}

// editorOptionFuncs converts the options into editor.New options.
func (o loadOptions) editorOptionFuncs() ([]editor.Option, error) {
	opts, err := o.editorOptions()
	if err != nil {
		return nil, err
	}
	funcs := []editor.Option{editor.WithOptions(opts)}
	if o.logger != nil {
		funcs = append(funcs, editor.WithLogger(o.logger))
	}
	if o.scheduler != nil {
		funcs = append(funcs, editor.WithScheduler(o.scheduler))
	}
	return funcs, nil
}
