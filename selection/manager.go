package selection

import (
	"fmt"
	"strconv"

	"github.com/tsawler/inkwell/dom"
	"golang.org/x/net/html"
)

// Style keys owned by the Manager.
const (
	StyleKeySelection  = "_DOMSelection"
	StyleKeyHideCursor = "_DOMSelectionHideCursor"
)

// Options configures how selections are highlighted.
type Options struct {
	// ImageBorderColor is the outline color of a selected image.
	ImageBorderColor string
	// TableSelectionBackground is the background of selected cells.
	TableSelectionBackground string
	// HideCursorRule is installed on the root while an image or table is
	// selected.
	HideCursorRule string
	// MaxRuleLength caps one rule's selector text.
	MaxRuleLength int
}

// DefaultOptions returns the stock highlight settings.
func DefaultOptions() Options {
	return Options{
		ImageBorderColor:         "#DB626C",
		TableSelectionBackground: "#C6C6C6",
		HideCursorRule:           "caret-color: transparent",
		MaxRuleLength:            DefaultMaxRuleLength,
	}
}

// Manager holds the logical selection of one editing root and reflects it
// in the DOM through scoped stylesheet rules and the native selection.
type Manager struct {
	doc       *dom.Document
	root      *html.Node
	styles    *StyleInjector
	opts      Options
	selection DOMSelection
	listeners []Listener
}

// NewManager creates a manager for root. Highlight rules go through styles.
func NewManager(doc *dom.Document, root *html.Node, styles *StyleInjector, opts Options) *Manager {
	def := DefaultOptions()
	if opts.ImageBorderColor == "" {
		opts.ImageBorderColor = def.ImageBorderColor
	}
	if opts.TableSelectionBackground == "" {
		opts.TableSelectionBackground = def.TableSelectionBackground
	}
	if opts.HideCursorRule == "" {
		opts.HideCursorRule = def.HideCursorRule
	}
	if opts.MaxRuleLength <= 0 {
		opts.MaxRuleLength = def.MaxRuleLength
	}
	return &Manager{doc: doc, root: root, styles: styles, opts: opts}
}

// OnSelectionChanged registers a listener. The returned function removes it.
func (m *Manager) OnSelectionChanged(l Listener) func() {
	m.listeners = append(m.listeners, l)
	idx := len(m.listeners) - 1
	return func() {
		if idx < len(m.listeners) {
			m.listeners[idx] = nil
		}
	}
}

// SetSelection makes sel the current selection. Previous highlights are
// removed first, so repeating a call yields the same state. Nodes that are
// no longer attached skip native positioning while their highlight rules are
// still installed. Unless skipChangeEvent is set, listeners are notified
// once, after the state is updated.
func (m *Manager) SetSelection(sel DOMSelection, skipChangeEvent bool) error {
	if err := m.clearHighlights(); err != nil {
		return err
	}

	switch s := sel.(type) {
	case *ImageSelection:
		if err := m.selectImage(s); err != nil {
			return err
		}
		m.selection = s

	case *TableSelection:
		if err := m.selectTable(s); err != nil {
			return err
		}
		m.selection = s

	case *RangeSelection:
		m.selectRange(s)
		if m.doc.HasFocus(m.root) {
			m.selection = nil
		} else {
			m.selection = s
		}

	case nil:
		m.selection = nil

	default:
		return fmt.Errorf("setting selection: unknown selection type %T", sel)
	}

	if !skipChangeEvent {
		m.notify(SelectionChangedEvent{Selection: sel})
	}
	return nil
}

// Selection returns the current selection. While the root has focus a
// range selection is read from the native selection.
func (m *Manager) Selection() DOMSelection {
	if m.selection != nil && (m.selection.SelectionType() != SelectionTypeRange || !m.doc.HasFocus(m.root)) {
		return m.selection
	}
	native := m.doc.Selection()
	r := native.RangeAt(0)
	if r == nil || !dom.Contains(m.root, r.CommonAncestor()) {
		return nil
	}
	return &RangeSelection{Range: r.Clone(), IsReverted: native.IsReversed()}
}

// Dispose removes the highlights and drops every listener.
func (m *Manager) Dispose() {
	_ = m.clearHighlights()
	m.selection = nil
	m.listeners = nil
}

func (m *Manager) notify(ev SelectionChangedEvent) {
	for _, l := range m.listeners {
		if l != nil {
			l(ev)
		}
	}
}

func (m *Manager) clearHighlights() error {
	if err := m.styles.SetStyle(StyleKeySelection, ""); err != nil {
		return err
	}
	return m.styles.SetStyle(StyleKeyHideCursor, "")
}

func (m *Manager) hideCursor() error {
	return m.styles.SetStyle(StyleKeyHideCursor, m.opts.HideCursorRule)
}

func (m *Manager) selectImage(s *ImageSelection) error {
	id := EnsureUniqueID(m.doc, s.Image, "image")
	rule := "outline-style:auto!important;outline-color:" + m.opts.ImageBorderColor + "!important;"
	if err := m.styles.SetSelectorStyle(StyleKeySelection, rule, []string{IDSelector(id)}, m.opts.MaxRuleLength); err != nil {
		return err
	}
	if err := m.hideCursor(); err != nil {
		return err
	}
	if m.doc.Contains(s.Image) {
		r := &dom.Range{}
		r.SelectNode(s.Image)
		r.Collapse(false)
		m.applyRange(r, false)
	}
	return nil
}

func (m *Manager) selectTable(s *TableSelection) error {
	id := EnsureUniqueID(m.doc, s.Table, "table")
	grid := scanTable(s.Table)
	selectors := grid.selectors(IDSelector(id), s)
	rule := "background-color:" + m.opts.TableSelectionBackground + "!important;"
	if len(selectors) > 0 {
		if err := m.styles.SetSelectorStyle(StyleKeySelection, rule, selectors, m.opts.MaxRuleLength); err != nil {
			return err
		}
	}
	if err := m.hideCursor(); err != nil {
		return err
	}
	if cell := grid.cell(s.FirstRow, s.FirstColumn); cell != nil && m.doc.Contains(cell) {
		target := cell
		for c := cell.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				target = c
				break
			}
		}
		r := &dom.Range{}
		r.SelectNode(target)
		r.Collapse(true)
		m.applyRange(r, false)
	}
	return nil
}

func (m *Manager) selectRange(s *RangeSelection) {
	if s.Range == nil || !m.doc.Contains(s.Range.StartContainer) || !m.doc.Contains(s.Range.EndContainer) {
		return
	}
	m.applyRange(s.Range, s.IsReverted)
}

func (m *Manager) applyRange(r *dom.Range, reverted bool) {
	native := m.doc.Selection()
	native.RemoveAllRanges()
	if reverted {
		native.SetBaseAndExtent(r.EndContainer, r.EndOffset, r.StartContainer, r.StartOffset)
		return
	}
	native.AddRange(r)
}

// ============================================================================
// Table selectors
// ============================================================================

type tableRow struct {
	section string // "thead", "tbody", "tfoot" or "" for rows directly under table
	index   int    // 1-based nth-child index within the section
	cells   []*html.Node
}

type tableGrid struct {
	rows []tableRow
}

// scanTable indexes the physical rows of table once, recording each row's
// section and its position inside that section.
func scanTable(table *html.Node) tableGrid {
	var g tableGrid
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case dom.IsElement(c, "thead", "tbody", "tfoot"):
			for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
				if dom.IsElement(tr, "tr") {
					g.rows = append(g.rows, newTableRow(c.Data, tr))
				}
			}
		case dom.IsElement(c, "tr"):
			g.rows = append(g.rows, newTableRow("", c))
		}
	}
	return g
}

func newTableRow(section string, tr *html.Node) tableRow {
	row := tableRow{section: section, index: elementIndex(tr)}
	for td := tr.FirstChild; td != nil; td = td.NextSibling {
		if dom.IsElement(td, "td", "th") {
			row.cells = append(row.cells, td)
		}
	}
	return row
}

func (g tableGrid) cell(r, c int) *html.Node {
	if r < 0 || r >= len(g.rows) || c < 0 || c >= len(g.rows[r].cells) {
		return nil
	}
	return g.rows[r].cells[c]
}

// selectors returns two selectors per selected cell, the cell and its
// descendants, relative to the editing root. Selecting the whole grid
// collapses to the table and its descendants.
func (g tableGrid) selectors(tableSel string, s *TableSelection) []string {
	if len(g.rows) == 0 {
		return nil
	}
	last := len(g.rows) - 1
	if s.FirstRow == 0 && s.FirstColumn == 0 && s.LastRow == last && s.LastColumn == len(g.rows[last].cells)-1 {
		return []string{tableSel, tableSel + " *"}
	}

	var out []string
	for r := s.FirstRow; r <= s.LastRow && r < len(g.rows); r++ {
		if r < 0 {
			continue
		}
		row := g.rows[r]
		prefix := tableSel + ">"
		if row.section != "" {
			prefix += row.section + ">"
		}
		prefix += "tr:nth-child(" + strconv.Itoa(row.index) + ")>"
		for c := s.FirstColumn; c <= s.LastColumn && c < len(row.cells); c++ {
			if c < 0 {
				continue
			}
			cell := row.cells[c]
			sel := prefix + cell.Data + ":nth-child(" + strconv.Itoa(elementIndex(cell)) + ")"
			out = append(out, sel, sel+" *")
		}
	}
	return out
}

// elementIndex is the 1-based position of n among its element siblings.
func elementIndex(n *html.Node) int {
	idx := 1
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		if c.Type == html.ElementNode {
			idx++
		}
	}
	return idx
}
