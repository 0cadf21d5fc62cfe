package model

import (
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func selectedText(s string) *Text {
	t := NewText(s, nil)
	t.IsSelected = true
	return t
}

func paraOf(segs ...Segment) *Paragraph {
	p := NewParagraph(false, nil)
	p.Segments = append(p.Segments, segs...)
	return p
}

func docOf(blocks ...Block) *Document {
	doc := NewDocument()
	doc.Blocks = append(doc.Blocks, blocks...)
	return doc
}

func segmentTypes(p *Paragraph) []SegmentType {
	out := make([]SegmentType, len(p.Segments))
	for i, s := range p.Segments {
		out[i] = s.SegmentType()
	}
	return out
}

func equalTypes(a, b []SegmentType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ============================================================================
// DeleteSelection Tests
// ============================================================================

func TestDeleteSelectionNothing(t *testing.T) {
	doc := docOf(textPara("a"))
	ctx := DeleteSelection(doc)
	if ctx.DeleteResult != DeleteResultNothingToDelete {
		t.Errorf("DeleteResult = %v, want nothingToDelete", ctx.DeleteResult)
	}
	if ctx.InsertPoint != nil {
		t.Error("InsertPoint should be nil")
	}
}

func TestDeleteSelectionCollapsed(t *testing.T) {
	marker := NewSelectionMarker(nil)
	p := paraOf(NewText("ab", nil), marker, NewText("cd", nil))
	doc := docOf(p)

	ctx := DeleteSelection(doc)
	if ctx.DeleteResult != DeleteResultNotDeleted {
		t.Fatalf("DeleteResult = %v, want notDeleted", ctx.DeleteResult)
	}
	if ctx.InsertPoint.Marker != marker || ctx.InsertPoint.Paragraph != p {
		t.Error("insert point should be the existing caret")
	}
	if doc.ExtractText() != "abcd" {
		t.Errorf("text = %q", doc.ExtractText())
	}
}

func TestDeleteSelectionWithinParagraph(t *testing.T) {
	p := paraOf(NewText("a", nil), selectedText("b"), NewText("c", nil))
	doc := docOf(p)

	ctx := DeleteSelection(doc)
	if ctx.DeleteResult != DeleteResultRange {
		t.Fatalf("DeleteResult = %v, want range", ctx.DeleteResult)
	}
	want := []SegmentType{SegmentTypeText, SegmentTypeSelectionMarker, SegmentTypeText}
	if got := segmentTypes(p); !equalTypes(got, want) {
		t.Errorf("segments = %v, want %v", got, want)
	}
	if !ctx.InsertPoint.Marker.IsSelected {
		t.Error("insert point marker should be selected")
	}
	if doc.ExtractText() != "ac" {
		t.Errorf("text = %q, want ac", doc.ExtractText())
	}
}

func TestDeleteSelectionAcrossParagraphs(t *testing.T) {
	p1 := paraOf(NewText("a", nil), selectedText("b"))
	p2 := paraOf(selectedText("c"), NewText("d", nil))
	doc := docOf(p1, p2)

	ctx := DeleteSelection(doc)
	if ctx.DeleteResult != DeleteResultRange {
		t.Fatalf("DeleteResult = %v", ctx.DeleteResult)
	}
	if len(doc.Blocks) != 1 {
		t.Fatalf("len(Blocks) = %d, want 1", len(doc.Blocks))
	}
	if ctx.InsertPoint.Paragraph != p1 {
		t.Error("caret should stay in the first paragraph")
	}
	if doc.ExtractText() != "ad" {
		t.Errorf("text = %q, want ad", doc.ExtractText())
	}
}

func TestDeleteSelectionWholeTable(t *testing.T) {
	table := NewTable(1, 2)
	for _, c := range table.Rows[0].Cells {
		c.IsSelected = true
	}
	doc := docOf(table)

	ctx := DeleteSelection(doc)
	if ctx.DeleteResult != DeleteResultRange {
		t.Fatalf("DeleteResult = %v", ctx.DeleteResult)
	}
	if len(doc.Blocks) != 1 {
		t.Fatalf("len(Blocks) = %d, want 1", len(doc.Blocks))
	}
	if doc.Blocks[0] != Block(ctx.InsertPoint.Paragraph) {
		t.Error("table should be replaced by the caret paragraph")
	}
}

func TestDeleteSelectionCells(t *testing.T) {
	table := NewTable(1, 2)
	table.Rows[0].Cells[0] = cellWithText("x")
	table.Rows[0].Cells[0].IsSelected = true
	table.Rows[0].Cells[1] = cellWithText("y")
	doc := docOf(table)

	ctx := DeleteSelection(doc)
	if len(doc.Blocks) != 1 || doc.Blocks[0] != Block(table) {
		t.Fatal("partially selected table should stay")
	}
	if ctx.InsertPoint.TableContext == nil || ctx.InsertPoint.TableContext.ColIndex != 0 {
		t.Errorf("TableContext = %+v", ctx.InsertPoint.TableContext)
	}
	if table.GetText() != "\ty\n" {
		t.Errorf("table text = %q", table.GetText())
	}
}

func TestDeleteSelectionUndeletableEntity(t *testing.T) {
	ent := NewEntity(nil, EntityFormat{ID: "e1", EntityType: "mention", Undeletable: true}, nil)
	ent.IsSelected = true
	p := paraOf(ent, selectedText("x"))
	doc := docOf(p)

	DeleteSelection(doc)

	if p.IndexOf(ent) < 0 {
		t.Fatal("undeletable entity was removed")
	}
	if ent.IsSelected {
		t.Error("undeletable entity should be unselected")
	}
	if doc.ExtractText() != "" {
		t.Errorf("text = %q, want empty", doc.ExtractText())
	}
}

func TestDeleteSelectionBlockEntity(t *testing.T) {
	ent := NewEntity(nil, EntityFormat{ID: "e1"}, nil)
	ent.IsSelected = true
	doc := docOf(textPara("a"), ent)

	ctx := DeleteSelection(doc)
	if IndexOfBlock(doc, ent) >= 0 {
		t.Error("selected entity should be removed")
	}
	if IndexOfBlock(doc, ctx.InsertPoint.Paragraph) != 1 {
		t.Error("caret paragraph should take the entity's place")
	}
}

func TestDeleteEmptyList(t *testing.T) {
	levels := []ListLevel{{ListType: "OL"}}
	li1 := NewListItem(levels, nil)
	AddBlock(li1, paraOf(selectedText("a")))
	li2 := NewListItem(levels, nil)
	AddBlock(li2, paraOf(selectedText("b")))
	doc := docOf(li1, li2)

	ctx := DeleteSelection(doc, DeleteEmptyList)

	if len(doc.Blocks) != 1 {
		t.Fatalf("len(Blocks) = %d, want 1", len(doc.Blocks))
	}
	if doc.Blocks[0] != Block(ctx.InsertPoint.Paragraph) {
		t.Errorf("caret list item should be unwrapped, got %v", doc.Blocks[0].BlockType())
	}
	if len(ctx.InsertPoint.Path) != 1 {
		t.Errorf("insert point path length = %d, want 1", len(ctx.InsertPoint.Path))
	}
}

func TestDeleteEmptyListKeepsLine(t *testing.T) {
	levels := []ListLevel{{ListType: "UL"}}
	li := NewListItem(levels, nil)
	implicit := NewParagraph(true, nil)
	implicit.Segments = append(implicit.Segments, selectedText("x"))
	AddBlock(li, implicit)
	doc := docOf(li, paraOf(selectedText("y")), paraOf(NewText("z", nil)))

	ctx := DeleteSelection(doc, DeleteEmptyList)
	NormalizeContentModel(doc)

	p := ctx.InsertPoint.Paragraph
	if doc.Blocks[0] != Block(p) {
		t.Fatalf("block 0 = %v, want the unwrapped paragraph", doc.Blocks[0].BlockType())
	}
	if p.IsImplicit {
		t.Error("unwrapped paragraph should not be implicit")
	}
	want := []SegmentType{SegmentTypeSelectionMarker, SegmentTypeBr}
	if got := segmentTypes(p); !equalTypes(got, want) {
		t.Errorf("segments = %v, want %v", got, want)
	}
}

// ============================================================================
// NormalizeContentModel Tests
// ============================================================================

func TestNormalizeParagraph(t *testing.T) {
	bold := Format{"font-weight": "bold"}

	tests := []struct {
		name string
		segs []Segment
		want []SegmentType
	}{
		{
			name: "drops empty and merges equal text",
			segs: []Segment{NewText("a", nil), NewText("", nil), NewText("b", nil)},
			want: []SegmentType{SegmentTypeText},
		},
		{
			name: "keeps differently formatted text apart",
			segs: []Segment{NewText("a", nil), NewText("b", bold)},
			want: []SegmentType{SegmentTypeText, SegmentTypeText},
		},
		{
			name: "dedupes markers and adds a break",
			segs: []Segment{NewSelectionMarker(nil), NewSelectionMarker(nil)},
			want: []SegmentType{SegmentTypeSelectionMarker, SegmentTypeBr},
		},
		{
			name: "drops marker next to selected content",
			segs: []Segment{NewSelectionMarker(nil), selectedText("a")},
			want: []SegmentType{SegmentTypeText},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := paraOf(tt.segs...)
			doc := docOf(p)
			NormalizeContentModel(doc)
			if got := segmentTypes(p); !equalTypes(got, tt.want) {
				t.Errorf("segments = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeRemovesEmptyBlocks(t *testing.T) {
	li := NewListItem(nil, nil)
	fc := NewFormatContainer("blockquote", nil)
	AddBlock(fc, NewParagraph(true, nil))
	doc := docOf(NewParagraph(false, nil), li, fc, textPara("keep"))

	NormalizeContentModel(doc)

	if len(doc.Blocks) != 1 {
		t.Fatalf("len(Blocks) = %d, want 1", len(doc.Blocks))
	}
	if doc.ExtractText() != "keep" {
		t.Errorf("text = %q", doc.ExtractText())
	}
}

func TestNormalizeEmptyDocument(t *testing.T) {
	doc := NewDocument()
	NormalizeContentModel(doc)
	if len(doc.Blocks) != 1 {
		t.Fatalf("len(Blocks) = %d, want 1", len(doc.Blocks))
	}
	p, ok := doc.Blocks[0].(*Paragraph)
	if !ok || len(p.Segments) != 1 || p.Segments[0].SegmentType() != SegmentTypeBr {
		t.Error("empty document should hold one paragraph with a break")
	}
}

func TestNormalizeTableCells(t *testing.T) {
	table := NewTable(1, 2)
	shadow := table.Rows[0].Cells[1]
	shadow.SpanLeft = true
	shadow.Blocks = []Block{textPara("stale")}
	doc := docOf(table)

	NormalizeContentModel(doc)

	if len(table.Rows[0].Cells[0].Blocks) != 1 {
		t.Error("real cell should get a placeholder paragraph")
	}
	if len(shadow.Blocks) != 0 {
		t.Error("shadow cell should hold no blocks")
	}
}

// ============================================================================
// CloneModel Tests
// ============================================================================

func TestCloneModelDisconnected(t *testing.T) {
	wrapper := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	wrapper.AppendChild(&html.Node{Type: html.TextNode, Data: "entity"})
	cached := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}

	p := textPara("hello")
	p.CachedElement = cached
	ent := NewEntity(wrapper, EntityFormat{ID: "e"}, nil)
	doc := docOf(p, ent)

	clone := CloneModel(doc, CloneOptions{})

	cp := clone.Blocks[0].(*Paragraph)
	if cp == p || cp.CachedElement != nil {
		t.Error("disconnected clone should drop render caches")
	}
	ce := clone.Blocks[1].(*Entity)
	if ce.Wrapper == wrapper || ce.Wrapper == nil {
		t.Fatal("entity wrapper should be deep cloned")
	}
	if ce.Wrapper.FirstChild == nil || ce.Wrapper.FirstChild.Data != "entity" {
		t.Error("entity wrapper children should be cloned")
	}

	cp.Segments[0].(*Text).Text = "changed"
	if doc.ExtractText() != "hello" {
		t.Error("editing the clone changed the source")
	}
}

func TestCloneModelConnected(t *testing.T) {
	cached := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
	p := textPara("x")
	p.CachedElement = cached

	clone := CloneModel(docOf(p), CloneOptions{KeepCachedElements: true})
	if clone.Blocks[0].(*Paragraph).CachedElement != cached {
		t.Error("connected clone should keep cached elements")
	}
}

func TestCloneModelHandler(t *testing.T) {
	cached := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
	p := textPara("x")
	p.CachedElement = cached

	var kinds []CachedElementKind
	CloneModel(docOf(p), CloneOptions{IncludeCachedElement: func(n *html.Node, kind CachedElementKind) *html.Node {
		kinds = append(kinds, kind)
		return n
	}})
	if len(kinds) != 1 || kinds[0] != CachedElementCache {
		t.Errorf("handler kinds = %v", kinds)
	}
}

// ============================================================================
// MergeModel Tests
// ============================================================================

func TestMergeModelInline(t *testing.T) {
	target := docOf(paraOf(NewText("a", nil), NewSelectionMarker(nil), NewText("b", nil)))
	source := docOf(textPara("x"))

	MergeModel(target, source, MergeOptions{})

	if len(target.Blocks) != 1 {
		t.Fatalf("len(Blocks) = %d, want 1", len(target.Blocks))
	}
	if got := target.ExtractText(); got != "axb" {
		t.Errorf("text = %q, want axb", got)
	}
}

func TestMergeModelMultipleBlocks(t *testing.T) {
	target := docOf(paraOf(NewText("a", nil), NewSelectionMarker(nil), NewText("b", nil)))
	table := NewTable(1, 1)
	table.Rows[0].Cells[0] = cellWithText("t")
	source := docOf(textPara("x"), table, textPara("y"))

	ip := MergeModel(target, source, MergeOptions{})

	if len(target.Blocks) != 3 {
		t.Fatalf("len(Blocks) = %d, want 3", len(target.Blocks))
	}
	if target.Blocks[1].BlockType() != BlockTypeTable {
		t.Errorf("middle block = %v, want Table", target.Blocks[1].BlockType())
	}
	if got := target.ExtractText(); got != "ax\nt\nyb" {
		t.Errorf("text = %q", got)
	}
	if target.Blocks[2] != Block(ip.Paragraph) {
		t.Error("caret should end in the last paragraph")
	}
}

func TestMergeModelReplacesSelection(t *testing.T) {
	target := docOf(paraOf(NewText("a", nil), selectedText("old"), NewText("b", nil)))
	source := docOf(textPara("new"))

	MergeModel(target, source, MergeOptions{})

	if got := target.ExtractText(); got != "anewb" {
		t.Errorf("text = %q, want anewb", got)
	}
}

func TestMergeModelNoSelection(t *testing.T) {
	target := docOf(textPara("a"))
	source := docOf(textPara("x"))

	MergeModel(target, source, MergeOptions{})

	if got := target.ExtractText(); got != "ax" {
		t.Errorf("text = %q, want ax", got)
	}
}

func TestMergeModelMergeFormat(t *testing.T) {
	marker := NewSelectionMarker(Format{"font-size": "12pt"})
	p := paraOf(marker)
	target := docOf(p)
	source := docOf(paraOf(NewText("x", Format{"font-weight": "bold", "color": "red"})))

	MergeModel(target, source, MergeOptions{MergeFormat: true})

	text, ok := p.Segments[0].(*Text)
	if !ok {
		t.Fatalf("first segment = %v", p.Segments[0].SegmentType())
	}
	want := Format{"font-size": "12pt", "font-weight": "bold"}
	if !text.Format.Equal(want) {
		t.Errorf("format = %v, want %v", text.Format, want)
	}
}

func TestMergeModelInsertOnNewLine(t *testing.T) {
	target := docOf(paraOf(NewText("a", nil), NewSelectionMarker(nil)))
	source := docOf(textPara("x"))

	MergeModel(target, source, MergeOptions{InsertOnNewLine: true})

	if len(target.Blocks) != 3 {
		t.Fatalf("len(Blocks) = %d, want 3", len(target.Blocks))
	}
	if got := target.ExtractText(); got != "a\nx" {
		t.Errorf("text = %q", got)
	}
}
