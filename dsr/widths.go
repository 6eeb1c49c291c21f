package dsr

import (
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

// tagWidths fills in the opening and closing syntax widths of an element.
// Widths already known are kept.
func (c *computer) tagWidths(id int, stW, etW int) (int, int) {
	doc := c.doc
	dp := doc.Info(id)

	if w := dp.ExtTagWidths; w != nil {
		return w.Open, w.Close
	}

	if dp.LiteralHTML() {
		if dp.SelfClose {
			etW = 0
		}
		return stW, etW
	}

	if doc.IsLanguageVariant(id) {
		return 2, 2
	}

	name := doc.Name(id)
	if name == "tr" && dp.StartTagSrc == "" {
		return 0, 0
	}

	widths, ok := dom.WikitextTagWidths[name]
	if !dom.Known(stW) {
		switch name {
		case "a":
			widths, ok = c.linkWidths(id)
			stW = widths[0]
		case "li", "dd":
			stW = c.listItemWidth(id)
		default:
			if ok {
				stW = widths[0]
			}
		}
	}
	if !dom.Known(etW) && ok {
		etW = widths[1]
	}
	return stW, etW
}

// linkWidths derives the syntax widths of a link from its kind.
func (c *computer) linkWidths(id int) ([2]int, bool) {
	doc := c.doc
	dp := doc.Info(id)

	switch {
	case doc.IsWikiLink(id) && !doc.HasExpandedAttrs(id):
		if dp.Stx != "piped" {
			return [2]int{2, 2}, true
		}
		if dp.Target == "" {
			return [2]int{dom.Unknown, dom.Unknown}, false
		}
		// [[ + target + |
		return [2]int{len(dp.Target) + 3, 2}, true
	case dp.TSR != nil && doc.IsExtLink(id):
		if dp.ExtLinkContentStart == nil {
			return [2]int{dom.Unknown, dom.Unknown}, false
		}
		return [2]int{*dp.ExtLinkContentStart - dp.TSR.Start, 1}, true
	case doc.IsURLLink(id) || doc.IsMagicLink(id):
		return [2]int{0, 0}, true
	}
	return [2]int{dom.Unknown, dom.Unknown}, false
}

// listItemWidth counts the bullets in front of a list item.
func (c *computer) listItemWidth(id int) int {
	doc := c.doc

	// A list item whose first child is a nested list shares its bullets
	// with the nested item.
	if doc.PrevSibling(id) == dom.NoNode {
		if fc := doc.FirstChild(id); dom.IsListTag(doc.Name(fc)) {
			return 0
		}
	}

	depth := 0
	for n := id; !doc.AtTheTop(n); n = doc.Parent(n) {
		name := doc.Name(n)
		switch {
		case dom.IsListItemTag(name):
			depth++
		case dom.IsListTag(name):
		default:
			dp := doc.Info(n)
			if !dp.LiteralHTML() || !dp.AutoInsertedStart || !dp.AutoInsertedEnd {
				return depth
			}
		}
	}
	return depth
}

// indentPreCorrection is the number of leading spaces an indent-pre text
// dropped from the source.
func (c *computer) indentPreCorrection(id int) int {
	doc := c.doc
	p := doc.Parent(id)
	if doc.Name(p) != "pre" || doc.Info(p).LiteralHTML() {
		return 0
	}
	data := doc.Data(id)
	n := 0
	for i := 0; i < len(data); i++ {
		if data[i] != '\n' {
			continue
		}
		// the last child's trailing newline opens no new line
		if doc.NextSibling(id) == dom.NoNode && (i+1 == len(data) || data[i+1] == '\n') {
			continue
		}
		n++
	}
	return n
}
