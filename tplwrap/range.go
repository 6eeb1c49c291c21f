package tplwrap

import (
	"strings"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/diag"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

// Range is the sibling run of tree nodes produced by one invocation.
type Range struct {
	// ID is the grouping id shared by the markers, without the leading '#'.
	ID string

	StartMarker int
	EndMarker   int

	// Start and End bracket the range among the children of Root.
	Start int
	End   int
	Root  int

	// StartOffset is where the invocation starts in the source.
	StartOffset int

	// Flipped is set when End comes before Start in sibling order.
	Flipped bool

	idx int
}

// endpoints returns Start and End in sibling order.
func (rg *Range) endpoints() (int, int) {
	if rg.Flipped {
		return rg.End, rg.Start
	}
	return rg.Start, rg.End
}

func aboutID(about string) string {
	return strings.TrimPrefix(about, "#")
}

// addRange builds the range bracketed by the markers and registers it.
func (r *Resolver) addRange(startMarker, endMarker, endElem int) error {
	rg, err := r.getRange(startMarker, endMarker, endElem)
	if err != nil {
		return err
	}
	rg.idx = len(r.ranges)
	r.ranges = append(r.ranges, rg)
	return nil
}

// getRange finds the siblings that bracket the content between the markers.
func (r *Resolver) getRange(startElem, endMarker, endElem int) (*Range, error) {
	doc := r.doc
	rg := &Range{
		ID:          aboutID(doc.AttrOr(startElem, "about")),
		StartMarker: startElem,
		EndMarker:   endMarker,
		Start:       dom.NoNode,
		End:         dom.NoNode,
		Root:        dom.NoNode,
		StartOffset: doc.Info(startElem).TSR.Start,
	}

	startAncestors := doc.PathToRoot(startElem)
	index := make(map[int]int, len(startAncestors))
	for i, n := range startAncestors {
		index[n] = i
	}

	elem := endElem
	for p := doc.Parent(elem); p != dom.NoNode; elem, p = p, doc.Parent(p) {
		i, ok := index[p]
		if !ok {
			continue
		}
		if i == 0 {
			// The start element contains the end: the range is its content.
			rg.Root = startElem
			rg.Start = doc.FirstChild(startElem)
			rg.End = doc.LastChild(startElem)
		} else {
			rg.Root = p
			rg.Start = startAncestors[i-1]
			rg.End = elem
		}
		break
	}
	if rg.Start == dom.NoNode {
		return nil, diag.NewRangeError(diag.IssueDetachedRange, rg.ID, diag.ErrDetachedRange)
	}

	// Empty content still needs an element to carry the metadata.
	if doc.Name(startElem) == "meta" && doc.NextSibling(startElem) == endElem &&
		!doc.IsFosterablePosition(startElem) {
		span := doc.CreateElement("span")
		doc.Info(span).Temp().Wrapper = true
		doc.InsertBefore(doc.Parent(startElem), span, endElem)
	}

	if doc.IsFosterablePosition(rg.Start) && r.unanchoredInTable(rg.Start) {
		r.anchorInTable(rg, startElem)
	}

	if !doc.IsElement(rg.Start) && !r.expandToParagraph(rg, true) {
		old := rg.Start
		span := doc.CreateElement("span")
		doc.Info(span).Temp().Wrapper = true
		doc.InsertBefore(doc.Parent(old), span, old)
		doc.AppendChild(span, old)
		updateDSRForFirstNode(doc, span, startElem)
		rg.Start = span
		if rg.End == old {
			rg.End = span
		}
	}

	if doc.Name(rg.Start) == "table" {
		// Content fostered out of this table belongs to the range too.
		for prev := doc.PrevSibling(rg.Start); doc.IsFostered(prev); prev = doc.PrevSibling(rg.Start) {
			rg.Start = prev
		}
	}

	rg.Flipped = !doc.InSiblingOrder(rg.Start, rg.End)

	r.log.Trace().
		Str("stage", "findranges").
		Str("id", rg.ID).
		Int("start", rg.Start).
		Int("end", rg.End).
		Int("root", rg.Root).
		Bool("flipped", rg.Flipped).
		Msg("range")
	return rg, nil
}

// unanchoredInTable reports whether a range starting at n inside table
// structure lacks an element that could carry it.
func (r *Resolver) unanchoredInTable(n int) bool {
	doc := r.doc
	if !doc.IsElement(n) {
		return true
	}
	if !doc.IsInvocationMarker(n) {
		return false
	}
	next := doc.NextSibling(n)
	return doc.IsInvocationMarker(next) || !doc.IsElement(next)
}

// anchorInTable moves leading loose nodes into the following tbody or tr, or
// widens the range to the enclosing table structure.
func (r *Resolver) anchorInTable(rg *Range, startElem int) {
	doc := r.doc
	parent := doc.Parent(rg.Start)

	newStart := rg.Start
	for newStart != dom.NoNode && !doc.IsElement(newStart) {
		newStart = doc.NextSibling(newStart)
	}

	if newStart != dom.NoNode && dom.IsTbodyOrTr(doc.Name(newStart)) {
		insertPos := doc.FirstChild(newStart)
		for n := rg.Start; n != newStart; {
			next := doc.NextSibling(n)
			doc.InsertBefore(newStart, n, insertPos)
			n = next
		}
		rg.Start = newStart
		updateDSRForFirstNode(doc, rg.Start, startElem)
		return
	}

	rg.Start = parent
	rg.End = parent
}

// updateDSRForFirstNode gives the first node of a range the start of the
// template it now represents.
func updateDSRForFirstNode(doc *dom.Document, target, source int) {
	src := doc.Info(source)
	tgt := doc.Info(target)
	if src == nil || tgt == nil {
		return
	}
	if src.DSR.Valid() && tgt.DSR.Valid() && tgt.DSR.End > src.DSR.End {
		tgt.DSR.Start = src.DSR.Start
		return
	}
	tgt.DSR = src.DSR.Clone()
	tgt.Src = src.Src
}

// expandToParagraph widens a range to its paragraph when the range is the
// whole paragraph, to avoid wrapping leading text in a span.
func (r *Resolver) expandToParagraph(rg *Range, startsWithText bool) bool {
	if !startsWithText {
		return false
	}
	doc := r.doc
	p := doc.Parent(rg.Start)
	if doc.Name(p) != "p" || doc.Info(p).LiteralHTML() {
		return false
	}
	if doc.FirstChild(p) != rg.StartMarker || doc.LastChild(p) != rg.EndMarker || p != doc.Parent(rg.End) {
		return false
	}
	rg.Start = p
	rg.End = p
	return true
}

// rangeStartsWithText reports whether the first content node of a range is text.
func (r *Resolver) rangeStartsWithText(rg *Range) bool {
	n := rg.Start
	if r.doc.IsInvocationMarker(n) {
		n = r.doc.NextSibling(n)
	}
	return r.doc.IsText(n)
}
