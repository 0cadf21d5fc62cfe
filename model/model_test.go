package model

import (
	"strings"
	"testing"
)

func textPara(texts ...string) *Paragraph {
	p := NewParagraph(false, nil)
	for _, s := range texts {
		p.Segments = append(p.Segments, NewText(s, nil))
	}
	return p
}

func cellWithText(text string) *TableCell {
	c := NewTableCell(false, false, false, nil)
	c.Blocks = append(c.Blocks, textPara(text))
	return c
}

// ============================================================================
// Enum Tests
// ============================================================================

func TestBlockTypeString(t *testing.T) {
	tests := []struct {
		bt   BlockType
		want string
	}{
		{BlockTypeParagraph, "Paragraph"},
		{BlockTypeTable, "Table"},
		{BlockTypeBlockGroup, "BlockGroup"},
		{BlockTypeEntity, "Entity"},
		{BlockTypeDivider, "Divider"},
		{BlockType(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.bt.String(); got != tt.want {
			t.Errorf("BlockType(%d).String() = %q, want %q", tt.bt, got, tt.want)
		}
	}
}

func TestSegmentTypeString(t *testing.T) {
	tests := []struct {
		st   SegmentType
		want string
	}{
		{SegmentTypeText, "Text"},
		{SegmentTypeBr, "Br"},
		{SegmentTypeSelectionMarker, "SelectionMarker"},
		{SegmentTypeImage, "Image"},
		{SegmentTypeEntity, "Entity"},
		{SegmentType(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.st.String(); got != tt.want {
			t.Errorf("SegmentType(%d).String() = %q, want %q", tt.st, got, tt.want)
		}
	}
}

func TestBlockGroupTypes(t *testing.T) {
	groups := []struct {
		g    BlockGroup
		want BlockGroupType
	}{
		{NewDocument(), BlockGroupDocument},
		{NewListItem(nil, nil), BlockGroupListItem},
		{NewFormatContainer("blockquote", nil), BlockGroupFormatContainer},
		{NewTableCell(false, false, false, nil), BlockGroupTableCell},
	}
	for _, tt := range groups {
		if tt.g.GroupType() != tt.want {
			t.Errorf("GroupType() = %v, want %v", tt.g.GroupType(), tt.want)
		}
	}
}

func TestCopyModeString(t *testing.T) {
	if CopyConnected.String() != "connected" {
		t.Errorf("CopyConnected.String() = %q", CopyConnected.String())
	}
	if CopyDisconnected.String() != "disconnected" {
		t.Errorf("CopyDisconnected.String() = %q", CopyDisconnected.String())
	}
}

// ============================================================================
// Format Tests
// ============================================================================

func TestFormatClone(t *testing.T) {
	var nilFormat Format
	c := nilFormat.Clone()
	if c == nil {
		t.Fatal("Clone() of nil should be non-nil")
	}

	f := Format{"color": "red"}
	c = f.Clone()
	c["color"] = "blue"
	if f["color"] != "red" {
		t.Error("Clone() should not share storage")
	}
}

func TestFormatWithAndEqual(t *testing.T) {
	base := Format{"color": "red", "font-size": "12pt"}
	merged := base.With(Format{"color": "blue"})
	if merged.Get("color") != "blue" || merged.Get("font-size") != "12pt" {
		t.Errorf("With() = %v", merged)
	}
	if base.Get("color") != "red" {
		t.Error("With() modified the receiver")
	}
	if !base.Equal(Format{"font-size": "12pt", "color": "red"}) {
		t.Error("Equal() should ignore key order")
	}
	if base.Equal(merged) {
		t.Error("Equal() should detect different values")
	}
}

func TestFormatCSSText(t *testing.T) {
	f := Format{"font-weight": "bold", "color": "red"}
	if got := f.CSSText(); got != "color:red;font-weight:bold;" {
		t.Errorf("CSSText() = %q", got)
	}
	if got := (Format{}).CSSText(); got != "" {
		t.Errorf("empty CSSText() = %q", got)
	}
}

func TestLinkClone(t *testing.T) {
	var nilLink *Link
	if nilLink.Clone() != nil {
		t.Error("nil link should clone to nil")
	}
	l := &Link{Href: "https://example.com", Dataset: Dataset{"x": "1"}}
	c := l.Clone()
	c.Dataset["x"] = "2"
	if l.Dataset["x"] != "1" || c.Href != l.Href {
		t.Errorf("Clone() = %+v", c)
	}
}

// ============================================================================
// Group Helper Tests
// ============================================================================

func TestAddSegment(t *testing.T) {
	doc := NewDocument()
	p1 := AddSegment(doc, NewText("a", nil))
	p2 := AddSegment(doc, NewText("b", nil))
	if p1 != p2 {
		t.Error("AddSegment() should reuse the trailing paragraph")
	}
	if !p1.IsImplicit {
		t.Error("AddSegment() should create an implicit paragraph")
	}

	AddBlock(doc, NewDivider("hr", nil))
	p3 := AddSegment(doc, NewText("c", nil))
	if p3 == p1 {
		t.Error("AddSegment() after a divider should start a new paragraph")
	}
	if len(doc.Blocks) != 3 {
		t.Errorf("len(Blocks) = %d, want 3", len(doc.Blocks))
	}
}

func TestInsertAndRemoveBlock(t *testing.T) {
	doc := NewDocument()
	a, b, c := textPara("a"), textPara("b"), textPara("c")
	AddBlock(doc, a)
	AddBlock(doc, c)
	InsertBlock(doc, 1, b)

	if got := doc.ExtractText(); got != "a\nb\nc" {
		t.Errorf("after InsertBlock text = %q", got)
	}
	if !RemoveBlock(doc, b) {
		t.Error("RemoveBlock() should report success")
	}
	if RemoveBlock(doc, b) {
		t.Error("RemoveBlock() of a missing block should report false")
	}
	if IndexOfBlock(doc, c) != 1 {
		t.Errorf("IndexOfBlock(c) = %d, want 1", IndexOfBlock(doc, c))
	}

	InsertBlock(doc, 99, b)
	if IndexOfBlock(doc, b) != 2 {
		t.Error("InsertBlock() with out of range index should append")
	}
}

func TestDocumentExtractText(t *testing.T) {
	doc := NewDocument()
	AddBlock(doc, textPara("Hello ", "world"))
	li := NewListItem([]ListLevel{{ListType: "UL"}}, nil)
	AddBlock(li, textPara("item"))
	AddBlock(doc, li)

	table := NewTable(1, 2)
	table.Rows[0].Cells[0] = cellWithText("A")
	table.Rows[0].Cells[1] = cellWithText("B")
	AddBlock(doc, table)

	want := "Hello world\nitem\nA\tB"
	if got := doc.ExtractText(); got != want {
		t.Errorf("ExtractText() = %q, want %q", got, want)
	}
}

// ============================================================================
// Table Tests
// ============================================================================

func TestNewTable(t *testing.T) {
	table := NewTable(3, 4)

	if table.RowCount() != 3 {
		t.Errorf("RowCount() = %d, want 3", table.RowCount())
	}
	if table.ColCount() != 4 {
		t.Errorf("ColCount() = %d, want 4", table.ColCount())
	}
	if len(table.Widths) != 4 {
		t.Errorf("len(Widths) = %d, want 4", len(table.Widths))
	}
	cell := table.Cell(0, 0)
	if cell == nil || cell.SpanLeft || cell.SpanAbove || cell.IsHeader {
		t.Errorf("default cell = %+v", cell)
	}
}

func TestTableCell(t *testing.T) {
	table := NewTable(2, 2)

	tests := []struct {
		name     string
		row, col int
		wantNil  bool
	}{
		{"valid", 1, 1, false},
		{"row out of range", 5, 0, true},
		{"col out of range", 0, 5, true},
		{"negative", -1, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Cell(tt.row, tt.col); (got == nil) != tt.wantNil {
				t.Errorf("Cell(%d, %d) = %v", tt.row, tt.col, got)
			}
		})
	}
}

func TestTableSetCell(t *testing.T) {
	table := NewTable(2, 2)

	t.Run("valid set", func(t *testing.T) {
		if err := table.SetCell(0, 0, cellWithText("New")); err != nil {
			t.Errorf("SetCell() error = %v", err)
		}
		if !strings.HasPrefix(table.GetText(), "New\t") {
			t.Errorf("GetText() = %q", table.GetText())
		}
	})

	t.Run("invalid row", func(t *testing.T) {
		if err := table.SetCell(10, 0, cellWithText("x")); err == nil {
			t.Error("SetCell() should return error for invalid row")
		}
	})

	t.Run("invalid col", func(t *testing.T) {
		if err := table.SetCell(0, 10, cellWithText("x")); err == nil {
			t.Error("SetCell() should return error for invalid col")
		}
	})
}

func TestNormalizeTable(t *testing.T) {
	table := &Table{
		Rows: []*TableRow{
			{Cells: []*TableCell{cellWithText("a"), cellWithText("b"), cellWithText("c")}},
			{Cells: []*TableCell{cellWithText("d")}},
		},
		Widths: []float64{10},
	}
	NormalizeTable(table)

	if len(table.Rows[1].Cells) != 3 {
		t.Errorf("short row has %d cells, want 3", len(table.Rows[1].Cells))
	}
	if len(table.Widths) != 3 {
		t.Errorf("len(Widths) = %d, want 3", len(table.Widths))
	}
}

func TestTableDeleteColumn(t *testing.T) {
	table := NewTable(1, 3)
	table.Rows[0].Cells[0] = cellWithText("a")
	table.Rows[0].Cells[1] = cellWithText("b")
	table.Rows[0].Cells[2] = NewTableCell(true, false, false, nil)
	table.Widths = []float64{10, 20, 30}

	if err := table.DeleteColumn(1); err != nil {
		t.Fatalf("DeleteColumn() error = %v", err)
	}
	if table.ColCount() != 2 {
		t.Fatalf("ColCount() = %d, want 2", table.ColCount())
	}
	promoted := table.Rows[0].Cells[1]
	if promoted.SpanLeft {
		t.Error("shadow cell spanning into the deleted column should be promoted")
	}
	if table.GetText() != "a\tb\n" {
		t.Errorf("GetText() = %q", table.GetText())
	}
	if len(table.Widths) != 2 || table.Widths[1] != 30 {
		t.Errorf("Widths = %v", table.Widths)
	}
	if err := table.DeleteColumn(5); err == nil {
		t.Error("DeleteColumn() out of range should fail")
	}
}

func TestTableSelectedRegion(t *testing.T) {
	table := NewTable(3, 3)
	if _, ok := table.SelectedRegion(); ok {
		t.Error("no cell selected, SelectedRegion() should report false")
	}
	table.Rows[2].Cells[1].IsSelected = true
	table.Rows[1].Cells[2].IsSelected = true

	region, ok := table.SelectedRegion()
	if !ok {
		t.Fatal("SelectedRegion() should report true")
	}
	want := TableRegion{FirstRow: 1, FirstColumn: 1, LastRow: 2, LastColumn: 2}
	if region != want {
		t.Errorf("SelectedRegion() = %+v, want %+v", region, want)
	}
}

func TestPreprocessTable(t *testing.T) {
	table := NewTable(3, 3)
	table.Widths = []float64{10, 20, 30}
	table.Format["width"] = "600px"
	table.Format["border-collapse"] = "collapse"
	for r := 1; r <= 2; r++ {
		for c := 1; c <= 2; c++ {
			table.Rows[r].Cells[c].IsSelected = true
		}
	}
	table.Rows[1].Cells[1].SpanLeft = true

	PreprocessTable(table)

	if table.RowCount() != 2 {
		t.Errorf("RowCount() = %d, want 2", table.RowCount())
	}
	for i, row := range table.Rows {
		if len(row.Cells) != 2 {
			t.Errorf("row %d has %d cells, want 2", i, len(row.Cells))
		}
	}
	if len(table.Widths) != 2 || table.Widths[0] != 20 || table.Widths[1] != 30 {
		t.Errorf("Widths = %v, want [20 30]", table.Widths)
	}
	if _, ok := table.Format["width"]; ok {
		t.Error("explicit width should be removed")
	}
	if table.Format.Get("border-collapse") != "collapse" {
		t.Error("other table format should be kept")
	}
	if table.Rows[0].Cells[0].SpanLeft {
		t.Error("first kept column cannot span left")
	}
}

// ============================================================================
// Selection Tests
// ============================================================================

func TestIterateSelections(t *testing.T) {
	doc := NewDocument()
	p1 := textPara("a", "b")
	p1.Segments[1].SetSelected(true)
	AddBlock(doc, p1)

	table := NewTable(1, 2)
	table.Rows[0].Cells[0] = cellWithText("x")
	table.Rows[0].Cells[0].IsSelected = true
	table.Rows[0].Cells[1] = cellWithText("y")
	AddBlock(doc, table)

	var blocks []Block
	var cellCallbacks int
	IterateSelections(doc, func(path []BlockGroup, tc *TableSelectionContext, block Block, segments []Segment) bool {
		if block == nil {
			cellCallbacks++
			if tc == nil || tc.RowIndex != 0 || tc.ColIndex != 0 || tc.IsWholeTableSelected {
				t.Errorf("unexpected table context %+v", tc)
			}
			return false
		}
		blocks = append(blocks, block)
		return false
	})

	if cellCallbacks != 1 {
		t.Errorf("cell callbacks = %d, want 1", cellCallbacks)
	}
	// p1 plus the paragraph inside the selected cell
	if len(blocks) != 2 || blocks[0] != Block(p1) {
		t.Errorf("selected blocks = %v", blocks)
	}
}

func TestIterateSelectionsStops(t *testing.T) {
	doc := NewDocument()
	for i := 0; i < 3; i++ {
		p := textPara("x")
		p.Segments[0].SetSelected(true)
		AddBlock(doc, p)
	}
	calls := 0
	IterateSelections(doc, func(_ []BlockGroup, _ *TableSelectionContext, _ Block, _ []Segment) bool {
		calls++
		return true
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSetSelection(t *testing.T) {
	doc := NewDocument()
	p1 := textPara("a", "b")
	p2 := textPara("c", "d")
	AddBlock(doc, p1)
	AddBlock(doc, p2)

	SetSelection(doc, p1.Segments[1], p2.Segments[0])

	got := SelectedSegmentsAndParagraphs(doc)
	if len(got) != 2 {
		t.Fatalf("selected = %d, want 2", len(got))
	}
	if got[0].Paragraph != p1 || got[1].Paragraph != p2 {
		t.Error("selection should span both paragraphs")
	}

	ClearSelection(doc)
	if len(SelectedSegmentsAndParagraphs(doc)) != 0 {
		t.Error("ClearSelection() left selected segments")
	}
}
