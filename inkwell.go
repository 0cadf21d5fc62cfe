// Package inkwell provides a fluent API for loading an HTML document into an
// editor and exporting its editable content.
//
// Basic usage:
//
//	ed, err := inkwell.Open("page.html").Editor()
//	if err != nil {
//	    // handle error
//	}
//	defer ed.Dispose()
//
// With options:
//
//	md, err := inkwell.Open("page.html").
//	    RootSelector("#editor").
//	    OptionsFile("editor.yaml").
//	    Markdown()
//
// For clipboard handling, wrap the editor in a copypaste.Plugin.
package inkwell

import (
	"io"
)

// Open starts a Loader for an HTML file. The file is read by the terminal
// call.
//
// Example:
//
//	text, err := inkwell.Open("page.html").Text()
func Open(filename string) *Loader {
	return &Loader{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromReader starts a Loader for HTML read from r. The first terminal call
// consumes r, so a Loader built this way serves one terminal call.
//
// Example:
//
//	f, err := os.Open("page.html")
//	if err != nil {
//	    // handle error
//	}
//	defer f.Close()
//	ed, err := inkwell.FromReader(f).Editor()
func FromReader(r io.Reader) *Loader {
	return &Loader{
		reader:  r,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	text := inkwell.Must(inkwell.Open("page.html").Text())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
