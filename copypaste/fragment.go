package copypaste

import (
	"strings"

	"github.com/tsawler/inkwell/dom"
	"golang.org/x/net/html"
)

const nbsp = "\u00a0"

// CreateFragment builds the fragment to merge for pasteType.
//
// An image is pasted when asked for with PasteAsImage, or when the payload
// has an image and no text and plain text was not asked for. Any other type
// except PasteAsPlainText moves the children of body into the fragment.
// Otherwise the plain text is converted line by line.
func CreateFragment(cd *ClipboardData, pasteType PasteType, body *html.Node) *html.Node {
	frag := dom.NewFragment()

	switch {
	case cd.Image != nil && (pasteType == PasteAsImage || (pasteType != PasteAsPlainText && cd.Text == "")):
		img := dom.NewElement("img")
		dom.SetAttr(img, "src", cd.Image.DataURI())
		dom.SetStyleProperty(img, "max-width", "100%")
		frag.AppendChild(img)

	case pasteType != PasteAsPlainText && body != nil:
		dom.MoveChildren(body, frag)

	case cd.Text != "":
		appendPlainText(frag, cd.Text)
	}
	return frag
}

// appendPlainText converts text into nodes. A single line is pasted as is.
// Two lines are joined by a <br>. With three or more, the first and last
// lines stay inline and every line between is wrapped in a <div>, an empty
// one holding a <br>. Leading and doubled spaces become non-breaking.
func appendPlainText(frag *html.Node, text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		line = preserveSpaces(line)
		textNode := &html.Node{Type: html.TextNode, Data: line}

		switch {
		case len(lines) == 2 && i == 0:
			frag.AppendChild(textNode)
			frag.AppendChild(dom.NewElement("br"))
		case i > 0 && i < len(lines)-1:
			div := dom.NewElement("div")
			if line == "" {
				div.AppendChild(dom.NewElement("br"))
			} else {
				div.AppendChild(textNode)
			}
			frag.AppendChild(div)
		case line != "":
			frag.AppendChild(textNode)
		}
	}
}

func preserveSpaces(line string) string {
	line = strings.ReplaceAll(line, "\t", "    ")
	if strings.HasPrefix(line, " ") {
		line = nbsp + line[1:]
	}
	return strings.ReplaceAll(line, "  ", " "+nbsp)
}
