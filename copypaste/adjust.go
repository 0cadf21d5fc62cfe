package copypaste

import (
	"github.com/tsawler/inkwell/model"
)

// AdjustSelectionForCopyCut removes a stray caret from a model about to be
// copied. When the first selected run is a paragraph holding nothing but
// selection markers and the next selected run lies in a different table
// context, the markers of that first run are removed. Any other selection
// is left unchanged.
func AdjustSelectionForCopyCut(m *model.Document) {
	var (
		first        *model.Paragraph
		markers      []model.Segment
		firstContext *model.TableSelectionContext
		seen         bool
	)

	model.IterateSelections(m, func(_ []model.BlockGroup, tc *model.TableSelectionContext, block model.Block, segments []model.Segment) bool {
		if !seen {
			seen = true
			// a first run that also holds content keeps its markers
			p, ok := block.(*model.Paragraph)
			if !ok || !onlyMarkers(segments) {
				return true
			}
			first, markers, firstContext = p, segments, tc
			return false
		}

		if !model.SameTableContext(tc, firstContext) {
			removeSegments(first, markers)
		}
		return true
	})
}

func onlyMarkers(segments []model.Segment) bool {
	for _, s := range segments {
		if s.SegmentType() != model.SegmentTypeSelectionMarker {
			return false
		}
	}
	return len(segments) > 0
}

func removeSegments(p *model.Paragraph, remove []model.Segment) {
	drop := make(map[model.Segment]bool, len(remove))
	for _, s := range remove {
		drop[s] = true
	}
	kept := p.Segments[:0]
	for _, s := range p.Segments {
		if !drop[s] {
			kept = append(kept, s)
		}
	}
	p.Segments = kept
}
