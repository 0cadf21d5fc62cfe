package model

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Table is a dense rectangular grid of cells. Cells merged into a neighbour
// stay in the grid as shadow cells (SpanLeft/SpanAbove) with no blocks.
type Table struct {
	Rows []*TableRow
	// Widths holds one entry per column, in pixels (0 when unknown).
	Widths        []float64
	Format        Format
	Dataset       Dataset
	CachedElement *html.Node
}

func (t *Table) BlockType() BlockType { return BlockTypeTable }
func (t *Table) isBlock()             {}

// TableRow is one row of a table.
type TableRow struct {
	Height        float64
	Format        Format
	Cells         []*TableCell
	CachedElement *html.Node
}

// TableCell is a block group inside a table grid.
type TableCell struct {
	Blocks        []Block
	Format        Format
	Dataset       Dataset
	SpanLeft      bool
	SpanAbove     bool
	IsHeader      bool
	IsSelected    bool
	CachedElement *html.Node
}

func (c *TableCell) GroupType() BlockGroupType { return BlockGroupTableCell }
func (c *TableCell) Children() []Block         { return c.Blocks }
func (c *TableCell) SetChildren(b []Block)     { c.Blocks = b }
func (c *TableCell) isBlockGroup()             {}

// NewTable creates a table with the given dimensions. Every cell is empty and
// every width is 0.
func NewTable(rows, cols int) *Table {
	table := &Table{
		Rows:    make([]*TableRow, rows),
		Widths:  make([]float64, cols),
		Format:  Format{},
		Dataset: Dataset{},
	}
	for i := 0; i < rows; i++ {
		row := NewTableRow(nil)
		for j := 0; j < cols; j++ {
			row.Cells = append(row.Cells, NewTableCell(false, false, false, nil))
		}
		table.Rows[i] = row
	}
	return table
}

// NewTableRow creates an empty row.
func NewTableRow(format Format) *TableRow {
	return &TableRow{Format: format.Clone()}
}

// NewTableCell creates an empty cell.
func NewTableCell(spanLeft, spanAbove, isHeader bool, format Format) *TableCell {
	return &TableCell{
		SpanLeft:  spanLeft,
		SpanAbove: spanAbove,
		IsHeader:  isHeader,
		Format:    format.Clone(),
		Dataset:   Dataset{},
	}
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the widest row's cell count.
func (t *Table) ColCount() int {
	cols := 0
	for _, row := range t.Rows {
		if len(row.Cells) > cols {
			cols = len(row.Cells)
		}
	}
	return cols
}

// Cell returns the cell at (row, col), or nil when out of range.
func (t *Table) Cell(row, col int) *TableCell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	cells := t.Rows[row].Cells
	if col < 0 || col >= len(cells) {
		return nil
	}
	return cells[col]
}

// SetCell replaces the cell at (row, col).
func (t *Table) SetCell(row, col int, cell *TableCell) error {
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("row index %d out of bounds", row)
	}
	if col < 0 || col >= len(t.Rows[row].Cells) {
		return fmt.Errorf("col index %d out of bounds", col)
	}
	t.Rows[row].Cells[col] = cell
	return nil
}

// GetText returns the table text, tab-separated cells and one line per row.
func (t *Table) GetText() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, cell := range row.Cells {
			var cellText strings.Builder
			writeGroupText(&cellText, cell)
			sb.WriteString(strings.ReplaceAll(strings.TrimRight(cellText.String(), "\n"), "\n", " "))
			if j < len(row.Cells)-1 {
				sb.WriteString("\t")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// NormalizeTable pads short rows with empty cells and keeps Widths the same
// length as the column count.
func NormalizeTable(t *Table) {
	cols := t.ColCount()
	for _, row := range t.Rows {
		for len(row.Cells) < cols {
			row.Cells = append(row.Cells, NewTableCell(false, false, false, nil))
		}
	}
	switch {
	case len(t.Widths) > cols:
		t.Widths = t.Widths[:cols]
	case len(t.Widths) < cols:
		t.Widths = append(t.Widths, make([]float64, cols-len(t.Widths))...)
	}
}

// DeleteColumn drops column col from every row together with its width.
// A cell that spanned into the dropped column from the left keeps its own
// position; a shadow cell right of it that spanned into col is promoted.
func (t *Table) DeleteColumn(col int) error {
	if col < 0 || col >= t.ColCount() {
		return fmt.Errorf("col index %d out of bounds", col)
	}
	for _, row := range t.Rows {
		if col >= len(row.Cells) {
			continue
		}
		removed := row.Cells[col]
		if col+1 < len(row.Cells) {
			next := row.Cells[col+1]
			if next.SpanLeft && !removed.SpanLeft {
				next.SpanLeft = false
				next.Blocks = removed.Blocks
			}
		}
		row.Cells = append(row.Cells[:col], row.Cells[col+1:]...)
	}
	if col < len(t.Widths) {
		t.Widths = append(t.Widths[:col], t.Widths[col+1:]...)
	}
	return nil
}

// TableRegion is an inclusive rectangle of grid coordinates.
type TableRegion struct {
	FirstRow, FirstColumn int
	LastRow, LastColumn   int
}

// SelectedRegion returns the bounding rectangle of the selected cells. ok is
// false when no cell is selected.
func (t *Table) SelectedRegion() (region TableRegion, ok bool) {
	region = TableRegion{FirstRow: -1, FirstColumn: -1, LastRow: -1, LastColumn: -1}
	for r, row := range t.Rows {
		for c, cell := range row.Cells {
			if !cell.IsSelected {
				continue
			}
			if !ok {
				region = TableRegion{FirstRow: r, FirstColumn: c, LastRow: r, LastColumn: c}
				ok = true
				continue
			}
			if r < region.FirstRow {
				region.FirstRow = r
			}
			if c < region.FirstColumn {
				region.FirstColumn = c
			}
			if r > region.LastRow {
				region.LastRow = r
			}
			if c > region.LastColumn {
				region.LastColumn = c
			}
		}
	}
	return region, ok
}

// PreprocessTable trims a copied table down to its selected cells: rows with
// no selected cell are dropped, unselected cells are dropped from the
// remaining rows, Widths keeps only the selected columns, and the explicit
// table width is removed so the pasted table reflows.
func PreprocessTable(t *Table) {
	selectedCols := make(map[int]bool)
	rows := make([]*TableRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]*TableCell, 0, len(row.Cells))
		for c, cell := range row.Cells {
			if cell.IsSelected {
				cells = append(cells, cell)
				selectedCols[c] = true
			}
		}
		if len(cells) > 0 {
			row.Cells = cells
			rows = append(rows, row)
		}
	}

	widths := make([]float64, 0, len(selectedCols))
	for c, w := range t.Widths {
		if selectedCols[c] {
			widths = append(widths, w)
		}
	}

	t.Rows = rows
	t.Widths = widths
	delete(t.Format, "width")

	// The first kept row/column can no longer span into a dropped neighbour.
	for r, row := range t.Rows {
		for c, cell := range row.Cells {
			if c == 0 {
				cell.SpanLeft = false
			}
			if r == 0 {
				cell.SpanAbove = false
			}
		}
	}
}
