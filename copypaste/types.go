package copypaste

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/tsawler/inkwell/converter"
	"github.com/tsawler/inkwell/dom"
	"github.com/tsawler/inkwell/model"
	"golang.org/x/net/html"
)

// ErrDisposed is returned when a clipboard gesture starts on a disposed
// editor.
var ErrDisposed = errors.New("copypaste: editor is disposed")

// PasteType selects how clipboard content becomes a fragment. Values other
// than the predefined ones are custom types and paste like PasteNormal.
type PasteType string

const (
	// PasteNormal pastes the HTML with its formatting.
	PasteNormal PasteType = "normal"
	// PasteMergeFormat pastes the HTML in the format at the caret.
	PasteMergeFormat PasteType = "mergeFormat"
	// PasteAsPlainText pastes the plain text only.
	PasteAsPlainText PasteType = "asPlainText"
	// PasteAsImage pastes the clipboard image, when there is one.
	PasteAsImage PasteType = "asImage"
)

// Item is one raw clipboard entry. Content comes from Data, or from Open
// when Data is nil.
type Item struct {
	// Type is the declared MIME type, possibly with a charset parameter.
	Type string
	Data []byte
	Open func() ([]byte, error)
}

// ImageData is a clipboard image.
type ImageData struct {
	MIMEType string
	Data     []byte
	// Width and Height are zero when the image header could not be read.
	Width  int
	Height int
}

// DataURI returns the image as a base64 data URI.
func (img *ImageData) DataURI() string {
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// ClipboardData is the normalized payload of one clipboard gesture.
type ClipboardData struct {
	// ID correlates the log lines of one gesture.
	ID    string
	Types []string
	Text  string
	// RawHTML is the HTML as read from the clipboard.
	RawHTML string
	// HTML is the markup to paste. It starts equal to RawHTML; a caller
	// that rewrites it gets a fresh parse of the new markup.
	HTML  string
	Image *ImageData
	// CustomValues holds allow-listed custom MIME types by media type.
	CustomValues map[string]string
	// SnapshotBeforePaste is the connected model before the paste.
	SnapshotBeforePaste *model.Document
}

// CSSRule is one global style rule found in pasted HTML.
type CSSRule struct {
	Selectors []string
	// Text is the declaration block, each declaration ending with ';'.
	Text string
}

// HTMLInfo describes the pasted document around its fragment.
type HTMLInfo struct {
	// HTMLBefore and HTMLAfter are the raw markup outside the
	// <!--StartFragment--> and <!--EndFragment--> markers.
	HTMLBefore string
	HTMLAfter  string
	// Metadata maps <meta> names to their content.
	Metadata map[string]string
	// HTMLAttributes holds the attributes of the <html> element.
	HTMLAttributes map[string]string
	GlobalCSSRules []CSSRule
}

// BeforePasteEvent lets handlers rewrite what is about to be merged. The
// event as left by the last handler is used for the rest of the paste.
type BeforePasteEvent struct {
	ClipboardData *ClipboardData
	// Fragment is the content to merge. Its children are converted.
	Fragment *html.Node
	HTMLInfo *HTMLInfo
	PasteType PasteType
	// DomToModelOption is used to convert Fragment.
	DomToModelOption converter.DomToModelOption
	// MergeOptions is passed to model.MergeModel.
	MergeOptions model.MergeOptions
}

// BeforeCutCopyEvent lets handlers inspect the content about to reach the
// clipboard and override the range that is copied.
type BeforeCutCopyEvent struct {
	// ID correlates the log lines of one gesture.
	ID    string
	IsCut bool
	// ClonedRoot holds the disconnected copy of the content.
	ClonedRoot *html.Node
	// Range is what gets copied. Setting it to nil aborts the gesture.
	Range *dom.Range
}

// CopyResult is what a copy or cut put on the clipboard.
type CopyResult struct {
	ID       string
	IsCut    bool
	HTML     string
	Text     string
	Markdown string
	// Range is the copied range inside the scratch element. Its nodes are
	// detached once the deferred cleanup has run.
	Range *dom.Range
}

// ClipboardWriter receives the clipboard flavours keyed by MIME type.
type ClipboardWriter interface {
	WriteClipboard(ctx context.Context, data map[string]string) error
}

// ClipboardWriterFunc adapts a function to ClipboardWriter.
type ClipboardWriterFunc func(ctx context.Context, data map[string]string) error

// WriteClipboard calls f.
func (f ClipboardWriterFunc) WriteClipboard(ctx context.Context, data map[string]string) error {
	return f(ctx, data)
}

// Recognizer turns an image into text. *ocr.Client implements it.
type Recognizer interface {
	RecognizeImage(data []byte) (string, error)
}
