package dsr

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/diag"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

func newWarnings(t *testing.T) *diag.Warnings {
	t.Helper()
	w, err := diag.NewWarnings(diag.WarnOverflowNoCap, 0, zerolog.Nop())
	require.NoError(t, err)
	return w
}

func run(t *testing.T, doc *dom.Document, src string, opts Options) *diag.Warnings {
	t.Helper()
	if opts.Warnings == nil {
		opts.Warnings = newWarnings(t)
	}
	nop := zerolog.Nop()
	opts.Log = &nop
	Compute(doc, dom.RootID, dom.NewFrame(src), opts)
	return opts.Warnings
}

func elem(doc *dom.Document, parent int, name string) int {
	id := doc.CreateElement(name)
	doc.AppendChild(parent, id)
	return id
}

func elemTSR(doc *dom.Document, parent int, name string, start, end int) int {
	id := elem(doc, parent, name)
	doc.Info(id).TSR = &dom.SourceRange{Start: start, End: end}
	return id
}

func text(doc *dom.Document, parent int, data string) int {
	id := doc.CreateText(data)
	doc.AppendChild(parent, id)
	return id
}

func dsrOf(doc *dom.Document, id int) dom.DSR {
	d := doc.Info(id).DSR
	if d == nil {
		return *dom.UnknownDSR()
	}
	return *d
}

func issues(w *diag.Warnings) []diag.Issue {
	var out []diag.Issue
	for _, item := range w.List() {
		out = append(out, item.Issue)
	}
	return out
}

// requireNested checks that every known child range lies within its known
// parent range.
func requireNested(t *testing.T, doc *dom.Document) {
	t.Helper()
	doc.Walk(dom.RootID, func(id int) bool {
		pd := doc.Info(id)
		if pd == nil || !pd.DSR.Valid() {
			return true
		}
		for _, c := range doc.Children(id) {
			cd := doc.Info(c)
			if cd == nil || !cd.DSR.Valid() || cd.Fostered {
				continue
			}
			require.LessOrEqual(t, cd.DSR.Start, cd.DSR.End, "node %d", c)
			require.GreaterOrEqual(t, cd.DSR.Start, pd.DSR.Start, "node %d", c)
			require.LessOrEqual(t, cd.DSR.End, pd.DSR.End, "node %d", c)
		}
		return true
	})
}

func TestCompute_RootGetsFrameRange(t *testing.T) {
	doc := dom.NewDocument()
	text(doc, dom.RootID, "hello")

	w := run(t, doc, "hello", Options{})

	require.Equal(t, dom.DSR{Start: 0, End: 5, OpenWidth: 0, CloseWidth: 0}, dsrOf(doc, dom.RootID))
	require.Empty(t, w.List())
}

func TestCompute_SourceOffsetsOverrideFrame(t *testing.T) {
	doc := dom.NewDocument()
	text(doc, dom.RootID, "bc")

	w := run(t, doc, "abcd", Options{SourceOffsets: &dom.SourceRange{Start: 1, End: 3}})

	require.Equal(t, dom.DSR{Start: 1, End: 3, OpenWidth: 0, CloseWidth: 0}, dsrOf(doc, dom.RootID))
	require.Empty(t, w.List())
}

func TestCompute_Paragraphs(t *testing.T) {
	doc := dom.NewDocument()
	p1 := elem(doc, dom.RootID, "p")
	text(doc, p1, "a")
	text(doc, dom.RootID, "\n\n")
	p2 := elem(doc, dom.RootID, "p")
	text(doc, p2, "b")

	w := run(t, doc, "a\n\nb", Options{})

	require.Equal(t, dom.DSR{Start: 0, End: 1, OpenWidth: 0, CloseWidth: 0}, dsrOf(doc, p1))
	require.Equal(t, dom.DSR{Start: 3, End: 4, OpenWidth: 0, CloseWidth: 0}, dsrOf(doc, p2))
	require.Empty(t, w.List())
	requireNested(t, doc)
}

func TestCompute_QuoteTagWithLimitedTSR(t *testing.T) {
	src := "x '''b''' y"
	doc := dom.NewDocument()
	text(doc, dom.RootID, "x ")
	b := elemTSR(doc, dom.RootID, "b", 2, 5)
	text(doc, b, "b")
	text(doc, dom.RootID, " y")

	w := run(t, doc, src, Options{})

	require.Equal(t, dom.DSR{Start: 2, End: 9, OpenWidth: 3, CloseWidth: 3}, dsrOf(doc, b))
	require.Empty(t, w.List())
	requireNested(t, doc)
}

func TestCompute_Comment(t *testing.T) {
	doc := dom.NewDocument()
	doc.AppendChild(dom.RootID, doc.CreateComment("c"))
	x := elem(doc, dom.RootID, "p")
	text(doc, x, "x")

	w := run(t, doc, "<!--c-->x", Options{})

	require.Equal(t, 8, dsrOf(doc, x).Start)
	require.Equal(t, 9, dsrOf(doc, x).End)
	require.Empty(t, w.List())
}

func TestCompute_EndTagShadowPinsWidthAndIsRemoved(t *testing.T) {
	src := "<div>x</div>y"
	doc := dom.NewDocument()
	div := elemTSR(doc, dom.RootID, "div", 0, 5)
	doc.Info(div).Stx = "html"
	text(doc, div, "x")
	shadow := elemTSR(doc, dom.RootID, "meta", 6, 12)
	doc.SetAttr(shadow, "typeof", dom.TypeEndTag)
	doc.SetAttr(shadow, "data-etag", "div")
	text(doc, dom.RootID, "y")

	w := run(t, doc, src, Options{})

	require.Equal(t, dom.DSR{Start: 0, End: 12, OpenWidth: 5, CloseWidth: 6}, dsrOf(doc, div))
	require.Equal(t, 2, doc.ChildCount(dom.RootID))
	require.Equal(t, dom.NoNode, doc.Parent(shadow))
	require.Empty(t, w.List())
}

func TestCompute_MarkerRemovalMergesText(t *testing.T) {
	doc := dom.NewDocument()
	text(doc, dom.RootID, "a")
	m := elem(doc, dom.RootID, "meta")
	doc.SetAttr(m, "typeof", dom.TypeTSRMarker)
	text(doc, dom.RootID, "b")

	run(t, doc, "ab", Options{})

	children := doc.Children(dom.RootID)
	require.Len(t, children, 1)
	require.Equal(t, "ab", doc.Data(children[0]))
}

func TestCompute_FosteredElementIsZeroWidth(t *testing.T) {
	src := "{|x\n|}"
	doc := dom.NewDocument()
	p := elem(doc, dom.RootID, "p")
	doc.Info(p).Fostered = true
	text(doc, p, "x")
	table := elemTSR(doc, dom.RootID, "table", 0, 2)
	text(doc, table, "\n")

	w := run(t, doc, src, Options{})

	pd := dsrOf(doc, p)
	require.Equal(t, pd.Start, pd.End)
	require.Equal(t, 0, pd.Start)
	require.Equal(t, dom.DSR{Start: 0, End: 6, OpenWidth: 2, CloseWidth: 2}, dsrOf(doc, table))
	require.Contains(t, issues(w), diag.IssueDSRInconsistent)
}

func TestCompute_NegativeEndIsClamped(t *testing.T) {
	doc := dom.NewDocument()
	span := elem(doc, dom.RootID, "span")
	text(doc, span, "p")
	text(doc, dom.RootID, "toolongtext")

	w := run(t, doc, "ab", Options{})

	require.Equal(t, 0, dsrOf(doc, span).End)
	require.Contains(t, issues(w), diag.IssueNegativeDSR)
}

func TestCompute_Links(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		stx    string
		target string
		want   dom.DSR
	}{
		{
			name:   "piped_wikilink",
			src:    "[[Foo|bar]]",
			stx:    "piped",
			target: "Foo",
			want:   dom.DSR{Start: 0, End: 11, OpenWidth: 6, CloseWidth: 2},
		},
		{
			name: "plain_wikilink",
			src:  "[[bar]]",
			stx:  "simple",
			want: dom.DSR{Start: 0, End: 7, OpenWidth: 2, CloseWidth: 2},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := dom.NewDocument()
			a := elemTSR(doc, dom.RootID, "a", 0, len(tc.src))
			doc.SetAttr(a, "rel", "mw:WikiLink")
			doc.Info(a).Stx = tc.stx
			doc.Info(a).Target = tc.target
			text(doc, a, "bar")

			w := run(t, doc, tc.src, Options{})

			require.Equal(t, tc.want, dsrOf(doc, a))
			require.Empty(t, w.List())
		})
	}
}

func TestCompute_ExtLinkWidths(t *testing.T) {
	src := "[http://x.org y]"
	doc := dom.NewDocument()
	a := elemTSR(doc, dom.RootID, "a", 0, len(src))
	doc.SetAttr(a, "rel", "mw:ExtLink")
	contentStart := 14
	doc.Info(a).ExtLinkContentStart = &contentStart
	text(doc, a, "y")

	w := run(t, doc, src, Options{})

	require.Equal(t, dom.DSR{Start: 0, End: 16, OpenWidth: 14, CloseWidth: 1}, dsrOf(doc, a))
	require.Empty(t, w.List())
}

func TestCompute_NestedListItemWidths(t *testing.T) {
	doc := dom.NewDocument()
	ul1 := elem(doc, dom.RootID, "ul")
	li1 := elem(doc, ul1, "li")
	ul2 := elem(doc, li1, "ul")
	li2 := elem(doc, ul2, "li")
	text(doc, li2, "b")

	w := run(t, doc, "**b", Options{})

	require.Equal(t, dom.DSR{Start: 0, End: 3, OpenWidth: 0, CloseWidth: 0}, dsrOf(doc, li1))
	require.Equal(t, dom.DSR{Start: 0, End: 3, OpenWidth: 2, CloseWidth: 0}, dsrOf(doc, li2))
	require.Empty(t, w.List())
	requireNested(t, doc)
}

func TestCompute_IndentPre(t *testing.T) {
	src := " a\n b"
	doc := dom.NewDocument()
	pre := elemTSR(doc, dom.RootID, "pre", 0, 1)
	text(doc, pre, "a\nb")

	w := run(t, doc, src, Options{})

	require.Equal(t, dom.DSR{Start: 0, End: 5, OpenWidth: 1, CloseWidth: 0}, dsrOf(doc, pre))
	require.Empty(t, w.List())
}

func TestCompute_StrippedQuoteIsAbsorbed(t *testing.T) {
	doc := dom.NewDocument()
	i := elemTSR(doc, dom.RootID, "i", 0, 2)
	doc.Info(i).AutoInsertedEnd = true
	text(doc, i, "a")
	ph := elem(doc, dom.RootID, "meta")
	doc.SetAttr(ph, "typeof", dom.TypeStrippedTag)
	doc.Info(ph).Name = "i"
	doc.Info(ph).Src = "''"

	run(t, doc, "''a''", Options{})

	require.Equal(t, 5, dsrOf(doc, i).End)
	require.Equal(t, 0, dsrOf(doc, i).CloseWidth)
	require.NotNil(t, doc.Info(ph).Tmp)
	require.Equal(t, dom.NewDSR(3, 5), doc.Info(ph).Tmp.OrigDSR)
}

func TestCompute_RootMismatch(t *testing.T) {
	tests := []struct {
		name          string
		attrExpansion bool
		want          int
	}{
		{name: "reported", attrExpansion: false, want: 1},
		{name: "attr_expansion_exempt", attrExpansion: true, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := dom.NewDocument()
			text(doc, dom.RootID, "abc")

			w := run(t, doc, "abcd", Options{AttrExpansion: tc.attrExpansion})

			require.Len(t, w.List(), tc.want)
		})
	}
}

func TestCompute_Idempotent(t *testing.T) {
	src := "x '''b''' y\n\n[[Foo|bar]]"
	build := func() *dom.Document {
		doc := dom.NewDocument()
		p1 := elem(doc, dom.RootID, "p")
		text(doc, p1, "x ")
		b := elemTSR(doc, p1, "b", 2, 5)
		text(doc, b, "b")
		text(doc, p1, " y")
		text(doc, dom.RootID, "\n\n")
		p2 := elem(doc, dom.RootID, "p")
		a := elemTSR(doc, p2, "a", 13, 24)
		doc.SetAttr(a, "rel", "mw:WikiLink")
		doc.Info(a).Stx = "piped"
		doc.Info(a).Target = "Foo"
		text(doc, a, "bar")
		return doc
	}

	doc := build()
	w := run(t, doc, src, Options{})
	require.Empty(t, w.List())
	first := doc.Serialize(dom.RootID)

	run(t, doc, src, Options{})
	require.Equal(t, first, doc.Serialize(dom.RootID))
	requireNested(t, doc)
}
