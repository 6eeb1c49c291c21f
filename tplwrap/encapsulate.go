package tplwrap

import (
	"strings"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/diag"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

// encapsulate tags the content of every retained range with its grouping id
// and attaches the parts list to the range's first element.
func (r *Resolver) encapsulate(retained []*Range) error {
	for _, rg := range retained {
		if err := r.encapsulateRange(rg); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) encapsulateRange(rg *Range) error {
	doc := r.doc

	if rg.Flipped {
		r.warn(diag.IssueFlippedRange, rg.StartOffset, rg.StartMarker,
			"range %s ends before it starts; tagging from end to start", rg.ID)
	}

	r.expandToParagraph(rg, r.rangeStartsWithText(rg))

	about := doc.AttrOr(rg.StartMarker, "about")
	r.tagRangeContent(rg, about)

	target, err := r.findTarget(rg)
	if err != nil {
		return err
	}

	if rg.StartMarker != target {
		if t := doc.TypeOf(rg.StartMarker); t != "" {
			if cur := doc.TypeOf(target); cur != "" {
				t = t + " " + cur
			}
			doc.SetAttr(target, "typeof", t)
		}
	}

	startInfo := doc.Info(rg.Start)
	var span *dom.DSR
	fostered := false
	if startInfo != nil {
		span = startInfo.DSR.Clone()
		fostered = startInfo.Fostered
	}
	endDSR := r.rangeEndDSR(rg)

	if span != nil && endDSR != nil && dom.Known(endDSR.End) &&
		(!dom.Known(span.End) || endDSR.End > span.End) {
		span.End = endDSR.End
	}

	// A table whose leading content was fostered out starts where the table does.
	if doc.Name(rg.End) == "table" && span != nil && endDSR != nil && dom.Known(endDSR.Start) &&
		(!dom.Known(span.Start) || endDSR.Start < span.Start || fostered) {
		span.Start = endDSR.Start
	}

	var mw *dom.DataMw
	valid := span.Valid() && span.End >= span.Start && len(r.compound[rg.idx]) > 0
	if valid {
		mw = r.buildParts(rg, target, span)
	} else {
		r.warn(diag.IssueEncapsulationInvalid, rg.StartOffset, target,
			"cannot encapsulate %s: range %s", rg.ID, span)
	}

	if fostered && span != nil && (mw == nil || len(mw.Parts) <= 1) {
		// Content moved out of a table has no source of its own.
		span.End = span.Start
	}

	if valid {
		tdp := doc.Info(target)
		if tdp.DSR == nil {
			tdp.DSR = dom.UnknownDSR()
		}
		tdp.DSR.Start = span.Start
		tdp.DSR.End = span.End
		tdp.Src = r.frame.Slice(span.Start, span.End)
	}

	r.log.Debug().
		Str("stage", "encap").
		Str("id", rg.ID).
		Int("target", target).
		Stringer("dsr", span).
		Bool("valid", valid).
		Msg("encapsulated")

	if doc.IsInvocationMarker(rg.StartMarker) {
		doc.RemoveChild(rg.StartMarker)
	}
	doc.RemoveChild(rg.EndMarker)
	return nil
}

// tagRangeContent puts the grouping id on every top-level node of the range,
// wrapping loose text in spans where the tree allows it.
func (r *Resolver) tagRangeContent(rg *Range, about string) {
	doc := r.doc
	n, e := rg.endpoints()
	for n != dom.NoNode {
		next := doc.NextSibling(n)
		orig := n
		if !doc.IsElement(n) {
			if !doc.IsFosterablePosition(n) {
				span := doc.CreateElement("span")
				doc.Info(span).Temp().Wrapper = true
				doc.SetAttr(span, "about", about)
				doc.ReplaceChild(span, n)
				doc.AppendChild(span, n)
				if rg.Start == n {
					rg.Start = span
				}
				if rg.End == n {
					rg.End = span
				}
			}
		} else {
			doc.SetAttr(n, "about", about)
		}
		if orig == e {
			break
		}
		n = next
	}
}

// findTarget returns the first non-marker element of the range, in sibling
// order, to carry the range's metadata.
func (r *Resolver) findTarget(rg *Range) (int, error) {
	doc := r.doc
	target, e := rg.endpoints()
	for doc.IsInvocationMarker(target) || !doc.IsElement(target) {
		if target == dom.NoNode || target == e ||
			(!doc.IsElement(target) && !doc.IsFosterablePosition(target)) {
			return dom.NoNode, diag.NewRangeError(diag.IssueUnwrappable, rg.ID, diag.ErrUnwrappable)
		}
		target = doc.NextSibling(target)
	}
	return target, nil
}

// rangeEndDSR returns the range of the last node of rg. Text and comments
// have no range of their own, so theirs is extrapolated from the nearest
// element on their left.
func (r *Resolver) rangeEndDSR(rg *Range) *dom.DSR {
	doc := r.doc
	end := rg.End
	info := doc.Info(end)
	switch {
	case info == nil:
		return r.extrapolate(end, sourceLength(doc, end))
	case info.DSR != nil:
		return info.DSR
	case info.Tmp != nil && info.Tmp.Wrapper:
		n := 0
		for _, c := range doc.Children(end) {
			n += sourceLength(doc, c)
		}
		return r.extrapolate(end, n)
	}
	return nil
}

// extrapolate estimates the range of node, whose own source length is n,
// from its left siblings.
func (r *Resolver) extrapolate(node, n int) *dom.DSR {
	doc := r.doc
	offset := n
	for p := doc.PrevSibling(node); p != dom.NoNode; p = doc.PrevSibling(p) {
		if info := doc.Info(p); info != nil {
			if info.DSR == nil || !dom.Known(info.DSR.End) {
				return nil
			}
			end := info.DSR.End + offset
			return dom.NewDSR(end-n, end)
		}
		offset += sourceLength(doc, p)
	}
	return nil
}

func sourceLength(doc *dom.Document, id int) int {
	switch doc.Type(id) {
	case dom.NodeText:
		return len(doc.Data(id))
	case dom.NodeComment:
		return dom.DecodedCommentLength(doc.Data(id))
	}
	return 0
}

// buildParts turns the recorded invocations of rg into the parts list of the
// target, padded with the literal source the range covers around them.
func (r *Resolver) buildParts(rg *Range, target int, span *dom.DSR) *dom.DataMw {
	doc := r.doc
	entries := r.compound[rg.idx]
	first, last := entries[0], entries[len(entries)-1]

	var parts []dom.Part
	var paramOrder [][]dom.ParamInfo

	if first.dsr.Valid() && first.dsr.Start > span.Start {
		if ftn := r.firstTemplatedNode(rg); ftn != "" {
			doc.Info(target).FirstWikitextNode = ftn
		}
		parts = append(parts, dom.Part{Literal: r.frame.Slice(span.Start, first.dsr.Start)})
	}

	i := 0
	for _, e := range entries {
		if !e.isInvocation() {
			parts = append(parts, dom.Part{Literal: e.literal})
			continue
		}
		dict := e.info.Dict
		dict.I = i
		i++
		paramOrder = append(paramOrder, e.info.ParamInfos)
		inv := &dom.Invocation{Kind: e.kind(), Dict: dict}
		if e.dsr.Valid() {
			inv.Span = dom.SourceRange{Start: e.dsr.Start, End: e.dsr.End}
		}
		parts = append(parts, dom.Part{Invocation: inv})
	}

	if last.dsr.Valid() && last.dsr.End < span.End {
		parts = append(parts, dom.Part{Literal: r.frame.Slice(last.dsr.End, span.End)})
	}

	tdp := doc.Info(target)
	tdp.ParamOrder = paramOrder
	if tdp.FirstWikitextNode == "" {
		if sdp := doc.Info(rg.StartMarker); sdp != nil && sdp.FirstWikitextNode != "" {
			tdp.FirstWikitextNode = sdp.FirstWikitextNode
		}
	}

	mw := &dom.DataMw{Parts: parts}
	doc.SetMw(target, mw)
	return mw
}

// firstTemplatedNode names the first node of the range that came from
// literal source, for a range that starts with literal text.
func (r *Resolver) firstTemplatedNode(rg *Range) string {
	doc := r.doc
	n := rg.Start
	if doc.IsInvocationMarker(n) {
		n = doc.NextSibling(n)
	}
	for doc.IsFostered(n) {
		n = doc.NextSibling(n)
	}
	if !doc.IsElement(n) || doc.Name(n) == "meta" {
		return ""
	}
	name := strings.ToUpper(doc.Name(n))
	if stx := doc.Info(n).Stx; stx != "" {
		name += "_" + stx
	}
	return name
}
