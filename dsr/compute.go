// Package dsr back-annotates a tree with the source ranges its nodes came from.
//
// Ranges are worked out right to left inside every node: the end of the
// last child is the end of its parent, and each child's start becomes the end
// of its left sibling. Tokenizer hints (tsr) pin offsets where they are
// authoritative, and newly pinned ends are pushed rightwards over siblings
// that were computed from weaker information.
package dsr

import (
	"github.com/rs/zerolog"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/diag"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

// Compute annotates every element under root with a dsr. The root itself gets
// the frame range (or opts.SourceOffsets) with zero widths. Tag-shadow markers
// are consumed and removed from the tree.
func Compute(doc *dom.Document, root int, frame dom.Frame, opts Options) {
	start, end := frame.Base, frame.End()
	if opts.SourceOffsets != nil {
		start, end = opts.SourceOffsets.Start, opts.SourceOffsets.End
	}

	c := &computer{
		doc:   doc,
		frame: frame,
		opts:  opts,
		log:   opts.logger(),
		warns: opts.Warnings,
	}

	c.log.Trace().Int("start", start).Int("end", end).Msg("computing dsr")
	c.run(root, start, end)

	if dp := doc.Info(root); dp != nil {
		dp.DSR = &dom.DSR{Start: start, End: end, OpenWidth: 0, CloseWidth: 0}
	}
}

type computer struct {
	doc   *dom.Document
	frame dom.Frame
	opts  Options
	log   zerolog.Logger
	warns *diag.Warnings
}

// frame is the state of one node whose children are being walked.
type frame struct {
	node int
	s, e int

	cs, ce int

	// dsrCorrection is the width donated by a stripped quote tag that a
	// later auto-closed quote tag gives back.
	dsrCorrection int

	// savedEndTagWidth is the width of an end tag recorded by a tag shadow
	// for the sibling on its left.
	savedEndTagWidth int

	// child is the child being processed, NoNode when all are done.
	child int

	cur  childState
	dead bool // some child was queued for deletion
}

// childState is the per-child state that survives a descent into the child.
type childState struct {
	prev           int
	origCE         int
	tsr            *dom.SourceRange
	oldCE          int
	stW, etW       int
	propagateRight bool
	fostered       bool
	isMarker       bool
	endTag         *endTagInfo
}

type endTagInfo struct {
	width int
	name  string
}

func (c *computer) newFrame(node, s, e, dsrCorrection int) *frame {
	if !dom.Known(e) && c.doc.FirstChild(node) == dom.NoNode {
		e = s
	}
	return &frame{
		node:             node,
		s:                s,
		e:                e,
		cs:               e,
		ce:               e,
		dsrCorrection:    dsrCorrection,
		savedEndTagWidth: dom.Unknown,
		child:            c.doc.LastChild(node),
	}
}

// run walks the tree post-order with an explicit stack of frames.
func (c *computer) run(root, s, e int) (int, int) {
	stack := []*frame{c.newFrame(root, s, e, 0)}

	for {
		f := stack[len(stack)-1]

		if f.child == dom.NoNode {
			cs, end := c.finishFrame(f)
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return cs, end
			}
			parent := stack[len(stack)-1]
			c.finishElement(parent, cs, end)
			c.finishChild(parent)
			continue
		}

		if next := c.beginChild(f); next != nil {
			stack = append(stack, next)
			continue
		}
		c.finishChild(f)
	}
}

// beginChild processes f.child up to the point where its own children are
// needed. It returns the frame to descend into, or nil when the child is done
// with this step and only finishChild remains.
func (c *computer) beginChild(f *frame) *frame {
	doc := c.doc
	child := f.child

	f.cur = childState{
		prev:   doc.PrevSibling(child),
		origCE: f.ce,
		oldCE:  dom.Unknown,
		stW:    dom.Unknown,
		etW:    dom.Unknown,
	}
	f.cs = dom.Unknown

	c.absorbStrippedQuote(f, child)

	switch doc.Type(child) {
	case dom.NodeText:
		if dom.Known(f.ce) {
			f.cs = f.ce - len(doc.Data(child)) - c.indentPreCorrection(child)
		}
		return nil
	case dom.NodeComment:
		if dom.Known(f.ce) {
			f.cs = f.ce - dom.DecodedCommentLength(doc.Data(child))
		}
		return nil
	case dom.NodeElement:
	default:
		return nil
	}

	cur := &f.cur
	dp := doc.Info(child)
	cur.tsr = dp.TSR
	if cur.tsr != nil {
		cur.oldCE = cur.tsr.End
	}
	cur.fostered = dp.Fostered

	// An auto-closed quote tag gives back the width a stripped tag donated.
	if dom.Known(f.ce) && dp.AutoInsertedEnd && dom.IsQuoteTag(doc.Name(child)) {
		if corr := 3 + len(doc.Name(child)); corr == f.dsrCorrection {
			f.ce -= corr
			f.dsrCorrection = 0
		}
	}

	switch {
	case doc.Name(child) == "meta":
		c.beginMeta(f, child, dp)
		c.finishElement(f, dom.Unknown, dom.Unknown)
		return nil

	case doc.IsEntity(child):
		if dom.Known(f.ce) && dp.Src != "" {
			f.cs = f.ce - len(dp.Src)
		}
		c.finishElement(f, dom.Unknown, dom.Unknown)
		return nil

	case doc.IsPlaceholder(child) && dom.Known(f.ce) && dp.Src != "":
		f.cs = f.ce - len(dp.Src)
		c.finishElement(f, dom.Unknown, dom.Unknown)
		return nil
	}

	if cur.tsr != nil && !dp.AutoInsertedStart {
		f.cs = cur.tsr.Start
		if doc.TSRSpansTagDOM(child) {
			if cur.tsr.End > 0 {
				f.ce = cur.tsr.End
				cur.propagateRight = true
			}
		} else {
			cur.stW = cur.tsr.Length()
		}
	} else if dom.Known(f.s) && cur.prev == dom.NoNode {
		f.cs = f.s
	}

	cur.stW, cur.etW = c.tagWidths(child, cur.stW, f.savedEndTagWidth)
	if dp.AutoInsertedStart {
		cur.stW = 0
	}
	if dp.AutoInsertedEnd {
		cur.etW = 0
	}

	ccs, cce := dom.Unknown, dom.Unknown
	if dom.Known(f.cs) && dom.Known(cur.stW) {
		ccs = f.cs + cur.stW
	}
	if dom.Known(f.ce) && dom.Known(cur.etW) {
		cce = f.ce - cur.etW
	}

	// Opaque content keeps the bounds its wrapper implies.
	if doc.IsFragmentWrapper(child) || doc.IsLanguageVariant(child) ||
		(doc.IsWikiLink(child) && dp.Stx != "piped") {
		c.finishElement(f, ccs, cce)
		return nil
	}

	return c.newFrame(child, ccs, cce, f.dsrCorrection)
}

// beginMeta handles meta elements, which have no children of interest.
func (c *computer) beginMeta(f *frame, child int, dp *dom.ParseInfo) {
	doc := c.doc
	cur := &f.cur

	switch {
	case doc.IsTagShadow(child):
		if doc.TypeOf(child) == dom.TypeEndTag && dp.EndTagSrc != "" {
			if prev := cur.prev; doc.Name(prev) == "table" && !doc.Info(prev).LiteralHTML() {
				doc.Info(prev).EndTagSrc = dp.EndTagSrc
			}
		}
		cur.isMarker = true
		if cur.tsr != nil {
			cur.endTag = &endTagInfo{width: cur.tsr.Length(), name: doc.AttrOr(child, "data-etag")}
			f.cs = cur.tsr.End
			f.ce = cur.tsr.End
			cur.propagateRight = true
		}
	case cur.tsr != nil:
		f.cs = cur.tsr.Start
		f.ce = cur.tsr.End
		if doc.IsInvocationMarker(child) {
			cur.propagateRight = true
		}
	case doc.IsPlaceholder(child) && dom.Known(f.ce) && dp.Src != "":
		f.cs = f.ce - len(dp.Src)
	}

	if w := dp.ExtTagWidths; w != nil {
		cur.stW, cur.etW = w.Open, w.Close
		dp.ExtTagWidths = nil
	}
}

// absorbStrippedQuote lets a quote tag take over the source of an unmatched
// quote tag right after it.
func (c *computer) absorbStrippedQuote(f *frame, child int) {
	doc := c.doc
	next := c.nextLive(child)
	if next == dom.NoNode || !doc.IsStrippedTag(next) {
		return
	}
	ndp := doc.Info(next)
	if ndp.Src == "" || doc.IsNestedInListItem(next) {
		return
	}
	if !dom.IsQuoteTag(ndp.Name) || !dom.IsQuoteTag(doc.Name(child)) || !dom.Known(f.ce) {
		return
	}
	correction := len(ndp.Src)
	f.ce += correction
	f.dsrCorrection = correction
	if ndp.DSR.Valid() {
		ndp.Temp().OrigDSR = dom.NewDSR(ndp.DSR.Start, ndp.DSR.End)
	}
}

// finishElement settles the range of the current element child once the
// range of its content (newStart, newEnd) is known.
func (c *computer) finishElement(f *frame, newStart, newEnd int) {
	doc := c.doc
	child := f.child
	cur := &f.cur
	dp := doc.Info(child)

	if dom.Known(cur.stW) && dom.Known(newStart) {
		newCs := newStart - cur.stW
		if !dom.Known(f.cs) || (cur.tsr == nil && newCs < f.cs) {
			f.cs = newCs
		}
	}
	if dom.Known(cur.etW) && dom.Known(newEnd) {
		if newCe := newEnd + cur.etW; !dom.Known(f.ce) || newCe > f.ce {
			f.ce = newCe
		}
	}

	if dom.Known(f.cs) || dom.Known(f.ce) {
		if dom.Known(f.ce) && f.ce < 0 {
			if !cur.fostered {
				c.warn(diag.IssueNegativeDSR, f.ce, child, "negative dsr end for <%s>, clamped to 0", doc.Name(child))
			}
			f.ce = 0
		}
		if cur.fostered {
			origCE := cur.origCE
			if dom.Known(origCE) && origCE < 0 {
				origCE = 0
			}
			dp.DSR = dom.NewDSR(origCE, origCE)
		} else {
			dp.DSR = &dom.DSR{Start: f.cs, End: f.ce, OpenWidth: cur.stW, CloseWidth: cur.etW}
		}
		c.log.Trace().
			Int("node", child).
			Str("name", doc.Name(child)).
			Stringer("dsr", dp.DSR).
			Msg("dsr")
	}

	if dom.Known(f.ce) && (cur.propagateRight || cur.oldCE != f.ce || !dom.Known(f.e)) &&
		!doc.IsInvocationStartMarker(child) {
		c.propagateRight(f, child, f.ce)
	}
}

// finishChild advances the frame to the left sibling.
func (c *computer) finishChild(f *frame) {
	doc := c.doc
	child := f.child
	cur := &f.cur

	if cur.fostered {
		f.ce = cur.origCE
	} else {
		f.ce = f.cs
		f.savedEndTagWidth = dom.Unknown
		if cur.endTag != nil && cur.prev != dom.NoNode && doc.Name(cur.prev) == cur.endTag.name {
			f.savedEndTagWidth = cur.endTag.width
		}
	}

	if cur.isMarker {
		doc.Info(child).Temp().Doomed = true
		f.dead = true
	}

	f.child = cur.prev
}

// finishFrame closes a node after all its children were processed.
func (c *computer) finishFrame(f *frame) (int, int) {
	doc := c.doc
	cs := f.cs
	if !dom.Known(cs) {
		cs = f.s
	}

	if dom.Known(f.s) && cs != f.s && !c.mismatchExpected(f.node) {
		c.warn(diag.IssueDSRInconsistent, f.s, f.node,
			"dsr inconsistency for <%s>: computed start %d, expected %d", doc.Name(f.node), cs, f.s)
	}

	if f.dead {
		c.compact(f.node)
	}

	return cs, f.e
}

func (c *computer) mismatchExpected(node int) bool {
	doc := c.doc
	if doc.IsURLLink(node) || doc.IsMagicLink(node) {
		return true
	}
	return c.opts.AttrExpansion && doc.AtTheTop(node)
}

func (c *computer) warn(issue diag.Issue, pos, node int, format string, args ...any) {
	if c.warns != nil {
		c.warns.Addf(issue, pos, node, format, args...)
		return
	}
	c.log.Warn().Str("issue", issue.String()).Int("pos", pos).Int("node", node).Msgf(format, args...)
}
