package selection

import (
	"github.com/tsawler/inkwell/dom"
	"golang.org/x/net/html"
)

// SelectionType identifies the variant of a DOMSelection.
type SelectionType int

const (
	SelectionTypeRange SelectionType = iota
	SelectionTypeImage
	SelectionTypeTable
)

func (t SelectionType) String() string {
	switch t {
	case SelectionTypeRange:
		return "range"
	case SelectionTypeImage:
		return "image"
	case SelectionTypeTable:
		return "table"
	default:
		return "unknown"
	}
}

// DOMSelection is a DOM-free description of what is selected:
// *RangeSelection, *ImageSelection or *TableSelection. A nil DOMSelection
// means nothing is selected.
type DOMSelection interface {
	SelectionType() SelectionType
	isDOMSelection()
}

// RangeSelection is a text range. IsReverted marks a selection made from
// end to start.
type RangeSelection struct {
	Range      *dom.Range
	IsReverted bool
}

func (*RangeSelection) SelectionType() SelectionType { return SelectionTypeRange }
func (*RangeSelection) isDOMSelection()              {}

// ImageSelection selects a single image element.
type ImageSelection struct {
	Image *html.Node
}

func (*ImageSelection) SelectionType() SelectionType { return SelectionTypeImage }
func (*ImageSelection) isDOMSelection()              {}

// TableSelection selects a rectangle of cells. Indices are zero based and
// inclusive, counted over the physical rows and cells of Table.
type TableSelection struct {
	Table       *html.Node
	FirstRow    int
	FirstColumn int
	LastRow     int
	LastColumn  int
}

func (*TableSelection) SelectionType() SelectionType { return SelectionTypeTable }
func (*TableSelection) isDOMSelection()              {}

// SelectionChangedEvent is delivered to listeners after every SetSelection
// call that does not skip the event.
type SelectionChangedEvent struct {
	Selection DOMSelection
}

// Listener receives selection changes.
type Listener func(SelectionChangedEvent)
