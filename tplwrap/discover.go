package tplwrap

import (
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/diag"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

// pendingPair holds the markers of a grouping id seen so far.
type pendingPair struct {
	start int
	end   int
}

// findRanges pairs up invocation markers below parent, depth first.
func (r *Resolver) findRanges(parent int, pending map[string]*pendingPair) error {
	doc := r.doc

	for el := doc.FirstChild(parent); el != dom.NoNode; {
		next := doc.NextSibling(el)
		if !doc.IsElement(el) {
			el = next
			continue
		}

		typ := doc.InvocationType(el)
		isEnd := dom.IsInvocationEndType(typ)
		if typ == "" || (!isEnd && doc.Info(el).TSR == nil) {
			// Start markers without a tsr belong to content that was not
			// written in this source, and are not ranges of their own.
			if err := r.findRanges(el, pending); err != nil {
				return err
			}
			el = next
			continue
		}

		about := doc.AttrOr(el, "about")
		p := pending[about]

		if !isEnd {
			if p == nil {
				pending[about] = &pendingPair{start: el, end: dom.NoNode}
			} else {
				p.start = el
				if p.end == dom.NoNode {
					return diag.NewRangeError(diag.IssueStartAfterContent, aboutID(about), diag.ErrStartAfterContent)
				}
				r.warn(diag.IssueFosteredEndMarker, doc.Info(el).TSR.Start, el,
					"end marker of %s seen before its start", about)
				if err := r.addRange(el, p.end, p.end); err != nil {
					return err
				}
			}
			el = next
			continue
		}

		if p == nil || p.start == dom.NoNode {
			pending[about] = &pendingPair{start: dom.NoNode, end: el}
			el = next
			continue
		}

		endElem := el
		if tbl := r.adoptableTable(p.start, el); tbl != dom.NoNode {
			tdp := doc.Info(tbl)
			pdp := doc.Info(doc.Parent(p.start))
			if pdp.TSR != nil && tdp.DSR != nil && !dom.Known(tdp.DSR.Start) {
				tdp.DSR.Start = pdp.TSR.Start
			}
			doc.SetAttr(tbl, "about", about)
			endElem = tbl
		}
		if err := r.addRange(p.start, el, endElem); err != nil {
			return err
		}
		el = next
	}
	return nil
}

// adoptableTable returns the table that follows the end marker's parent when
// the start marker's parent was fostered out of it. The fostered content and
// the table then form one range.
func (r *Resolver) adoptableTable(startMarker, endMarker int) int {
	doc := r.doc
	tbl := doc.NextSibling(doc.Parent(endMarker))
	if doc.IsText(tbl) && doc.Data(tbl) == "\n" {
		tbl = doc.NextSibling(tbl)
	}
	if doc.Name(tbl) != "table" {
		return dom.NoNode
	}
	if !doc.IsFostered(doc.Parent(startMarker)) {
		return dom.NoNode
	}
	return tbl
}
