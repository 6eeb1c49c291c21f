package tplwrap

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/diag"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

// tagRanges records, on every element a range spans, the ranges spanning it.
func (r *Resolver) tagRanges() {
	doc := r.doc
	for _, rg := range r.ranges {
		n, e := rg.endpoints()
		for n != dom.NoNode {
			if doc.IsElement(n) && !slices.Contains(r.nodeRanges[n], rg.idx) {
				r.nodeRanges[n] = append(r.nodeRanges[n], rg.idx)
			}
			if n == e {
				break
			}
			n = doc.NextSibling(n)
		}
	}
}

// introducesCycle reports whether nesting start inside end would loop.
func introducesCycle(start, end int, subsumed map[int]int) bool {
	visited := map[int]bool{start: true}
	for elt, ok := end, true; ok; elt, ok = subsumed[elt] {
		if visited[elt] {
			return true
		}
		visited[elt] = true
	}
	return false
}

// findSubsumedRanges maps every range nested inside another to the
// outermost range it is nested in.
func (r *Resolver) findSubsumedRanges(root int) map[int]int {
	doc := r.doc
	subsumed := make(map[int]int)

	for _, rg := range r.ranges {
		for n := rg.Start; n != dom.NoNode && n != root; n = doc.Parent(n) {
			tagged := r.nodeRanges[n]
			if len(tagged) == 0 {
				continue
			}

			if n != rg.Start {
				// Spanned by some range through an ancestor: nested in the
				// outermost one.
				outer := -1
				for _, oi := range tagged {
					if oi == rg.idx || introducesCycle(rg.idx, oi, subsumed) {
						continue
					}
					if outer == -1 || r.ranges[oi].StartOffset < r.ranges[outer].StartOffset {
						outer = oi
					}
				}
				if outer != -1 {
					subsumed[rg.idx] = outer
					break
				}
				continue
			}

			// Another range spanning both our start and our end encloses us.
			endTagged := r.nodeRanges[rg.End]
			found := false
			for _, oi := range tagged {
				other := r.ranges[oi]
				if oi == rg.idx || !slices.Contains(endTagged, oi) {
					continue
				}
				identical := other.Start == rg.Start && other.End == rg.End
				if identical && other.StartOffset >= rg.StartOffset {
					continue
				}
				if introducesCycle(rg.idx, oi, subsumed) {
					continue
				}
				found = true
				if cur, ok := subsumed[rg.idx]; !ok || other.StartOffset < r.ranges[cur].StartOffset {
					subsumed[rg.idx] = oi
				}
			}
			if found {
				break
			}
		}
	}
	return subsumed
}

var errCycle = errors.New("cycle")

// findTopLevelEnclosingRange follows the nesting chain of idx to its
// outermost range. It returns -1 when idx is not nested.
func findTopLevelEnclosingRange(subsumed map[int]int, idx int) (int, error) {
	cur, ok := subsumed[idx]
	if !ok {
		return -1, nil
	}
	visited := map[int]bool{idx: true}
	for {
		if visited[cur] {
			return -1, errCycle
		}
		visited[cur] = true
		next, ok := subsumed[cur]
		if !ok {
			return cur, nil
		}
		cur = next
	}
}

// rangesOverlap reports whether curr starts before prev ends.
func (r *Resolver) rangesOverlap(prev, curr *Range) bool {
	_, prevEnd := prev.endpoints()
	currStart, _ := curr.endpoints()
	return r.doc.InSiblingOrder(currStart, prevEnd)
}

// findTopLevelNonOverlappingRanges folds nested and overlapping ranges into
// the ranges that stay, recording the invocations of every range into the
// range that absorbs it.
func (r *Resolver) findTopLevelNonOverlappingRanges(root int) ([]*Range, error) {
	r.tagRanges()
	subsumed := r.findSubsumedRanges(root)

	sorted := slices.Clone(r.ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartOffset < sorted[j].StartOffset
	})

	var retained []*Range
	var prev *Range

	for _, rg := range sorted {
		info := r.argInfo(rg)

		enclosing, err := findTopLevelEnclosingRange(subsumed, rg.idx)
		if err != nil {
			return nil, diag.NewRangeError(diag.IssueNestingCycle, rg.ID,
				fmt.Errorf("%w: %s", diag.ErrNestingCycle, rg.ID))
		}

		switch {
		case enclosing != -1:
			r.stats.Nested++
			r.log.Trace().Str("stage", "merge").Str("id", rg.ID).
				Str("into", r.ranges[enclosing].ID).Msg("nested")
			if info != nil {
				r.recordInvocation(enclosing, rg, info)
			}
			r.stripStartMarker(rg.StartMarker)
			r.doc.RemoveChild(rg.EndMarker)

		case prev != nil && r.rangesOverlap(prev, rg):
			if rg.Flipped {
				return nil, diag.NewRangeError(diag.IssueFlippedMerge, rg.ID, diag.ErrFlippedMerge)
			}
			r.stats.Merged++
			r.log.Trace().Str("stage", "merge").Str("id", rg.ID).
				Str("into", prev.ID).Msg("overlapping")
			subsumed[rg.idx] = prev.idx
			if info != nil {
				r.recordInvocation(prev.idx, rg, info)
			}
			r.stripStartMarker(rg.StartMarker)
			r.doc.RemoveChild(prev.EndMarker)
			prev.End = rg.End
			prev.EndMarker = rg.EndMarker

		default:
			retained = append(retained, rg)
			prev = rg
			if info != nil {
				r.recordInvocation(rg.idx, rg, info)
			}
		}
	}

	return retained, nil
}

// argInfo decodes the argument data of a range's start marker.
func (r *Resolver) argInfo(rg *Range) *ArgInfo {
	doc := r.doc
	dp := doc.Info(rg.StartMarker)
	var raw []byte
	if dp.Tmp != nil {
		raw = dp.Tmp.ArgInfo
	}
	info, err := DecodeArgInfo(raw)
	if err != nil {
		r.warn(diag.IssueMalformedArgInfo, rg.StartOffset, rg.StartMarker, "%s: %v", rg.ID, err)
		return nil
	}
	if info == nil && (dp.Tmp == nil || !dp.Tmp.FromFoster) {
		r.warn(diag.IssueMissingArgInfo, rg.StartOffset, rg.StartMarker, "no argument data for %s", rg.ID)
	}
	return info
}

// recordInvocation appends the invocation of rg to the parts of the range at
// idx, with the source between it and the previous invocation as a literal.
func (r *Resolver) recordInvocation(idx int, rg *Range, info *ArgInfo) {
	doc := r.doc
	dp := doc.Info(rg.StartMarker)
	span := dp.DSR.Clone()
	if !span.Valid() && dp.TSR != nil {
		span = dom.NewDSR(dp.TSR.Start, dp.TSR.End)
	}

	entries := r.compound[idx]
	if n := len(entries); n > 0 && span.Valid() {
		last := entries[n-1]
		if last.dsr.Valid() {
			// An invocation written inside an argument of the previous one is
			// already part of that invocation's source.
			if last.dsr.Start <= span.Start && span.End <= last.dsr.End {
				r.log.Trace().Str("stage", "merge").Str("id", rg.ID).Msg("invocation inside argument")
				return
			}
			if last.dsr.End < span.Start {
				entries = append(entries, entry{literal: r.frame.Slice(last.dsr.End, span.Start)})
			}
		}
	}

	for i := range info.ParamInfos {
		info.ParamInfos[i].SrcOffsets = nil
	}

	r.compound[idx] = append(entries, entry{
		info:    info,
		dsr:     span,
		isParam: doc.HasTypeOf(rg.StartMarker, dom.TypeParam),
	})
}
