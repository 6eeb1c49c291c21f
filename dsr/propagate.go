package dsr

import (
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

// propagateRight pushes a newly pinned end over the right siblings of child,
// whose starts were only estimated. It stops at content whose start is
// already authoritative. Running off the end of the sibling list moves the
// end of the frame.
func (c *computer) propagateRight(f *frame, child, ce int) {
	doc := c.doc
	newCE := ce
	sibling := c.nextLive(child)

	for dom.Known(newCE) && sibling != dom.NoNode && !doc.IsInvocationStartMarker(sibling) {
		switch doc.Type(sibling) {
		case dom.NodeText:
			newCE += len(doc.Data(sibling)) + c.indentPreCorrection(sibling)
		case dom.NodeComment:
			newCE += dom.DecodedCommentLength(doc.Data(sibling))
		case dom.NodeElement:
			sdp := doc.Info(sibling)
			if sdp.DSR == nil {
				sdp.DSR = dom.UnknownDSR()
			}
			sd := sdp.DSR
			if sdp.Fostered ||
				(dom.Known(sd.Start) && sd.Start == newCE) ||
				(dom.Known(sd.Start) && sd.Start < newCE && sdp.TSR != nil) {
				return
			}
			sd.Start = newCE
			if dom.Known(sd.End) && sd.End < newCE {
				sd.End = newCE
			}
			c.log.Trace().Int("node", sibling).Stringer("dsr", sd).Msg("propagated")
			newCE = sd.End
		default:
			return
		}
		sibling = c.nextLive(sibling)
	}

	if sibling == dom.NoNode {
		f.e = newCE
	}
}

// nextLive returns the next sibling that is not queued for deletion.
func (c *computer) nextLive(id int) int {
	n := c.doc.NextSibling(id)
	for n != dom.NoNode && c.doomed(n) {
		n = c.doc.NextSibling(n)
	}
	return n
}

func (c *computer) doomed(id int) bool {
	dp := c.doc.Info(id)
	return dp != nil && dp.Tmp != nil && dp.Tmp.Doomed
}

// compact removes the queued markers among the children of node, merging
// text nodes that end up next to each other.
func (c *computer) compact(node int) {
	doc := c.doc
	for n := doc.FirstChild(node); n != dom.NoNode; {
		next := doc.NextSibling(n)
		if !c.doomed(n) {
			n = next
			continue
		}
		prev := doc.PrevSibling(n)
		doc.RemoveChild(n)
		doc.Info(n).Tmp.Doomed = false
		if doc.IsText(prev) && doc.IsText(next) {
			doc.SetData(prev, doc.Data(prev)+doc.Data(next))
			after := doc.NextSibling(next)
			doc.RemoveChild(next)
			next = after
		}
		n = next
	}
}
