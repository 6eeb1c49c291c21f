package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/diag"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/htmlio"
)

func testOptions() Options {
	nop := zerolog.Nop()
	return Options{Log: &nop}
}

func templated(doc *dom.Document, root int) []int {
	var out []int
	doc.Walk(root, func(id int) bool {
		if doc.Mw(id) != nil {
			out = append(out, id)
		}
		return true
	})
	return out
}

func TestProcess_Cases(t *testing.T) {
	cases, err := htmlio.LoadCases("testdata")
	require.NoError(t, err)
	require.NotEmpty(t, cases)

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			doc, root, err := c.Document()
			require.NoError(t, err)

			opts := testOptions()
			opts.SourceOffsets = c.SourceOffsets()
			rep, err := Process(context.Background(), doc, root, c.Frame(), opts)
			require.NoError(t, err)

			seen := map[string]bool{}
			for _, w := range rep.Warnings {
				seen[w.Issue.String()] = true
			}
			for _, issue := range c.Expect.Issues {
				require.True(t, seen[issue], "missing issue %s", issue)
			}

			doc.Walk(root, func(id int) bool {
				require.False(t, doc.IsInvocationMarker(id), "marker %d left in tree", id)
				if info := doc.Info(id); info != nil {
					require.Nil(t, info.Tmp)
				}
				return true
			})

			targets := templated(doc, root)
			require.Len(t, targets, len(c.Expect.Templates))
			for i, want := range c.Expect.Templates {
				id := targets[i]
				require.Equal(t, want.Name, doc.Name(id))
				require.Equal(t, want.About, doc.AttrOr(id, "about"))

				d := doc.Info(id).DSR
				require.Equal(t, want.DSR, []int{d.Start, d.End})
				require.Len(t, doc.Mw(id).Parts, want.Parts)

				var sb strings.Builder
				for _, p := range doc.Mw(id).Parts {
					if p.IsLiteral() {
						sb.WriteString(p.Literal)
						continue
					}
					sb.WriteString(c.Source[p.Invocation.Span.Start:p.Invocation.Span.End])
				}
				require.Equal(t, c.Source[d.Start:d.End], sb.String())
			}
		})
	}
}

func TestProcess_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := dom.NewDocument()
	_, err := Process(ctx, doc, dom.RootID, dom.NewFrame(""), testOptions())
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, doc.Info(dom.RootID).DSR)
}

func TestProcess_NegativeWarningsCap(t *testing.T) {
	opts := testOptions()
	opts.MaxWarnings = -1
	opts.WarningsPolicy = diag.WarnOverflowDrop

	_, err := Process(context.Background(), dom.NewDocument(), dom.RootID, dom.NewFrame(""), opts)
	var ce *diag.ConfigError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, diag.IssueNegativeWarningsCap, ce.Issue)
}

func TestProcess_RangeErrorIsReported(t *testing.T) {
	doc := dom.NewDocument()
	for range 2 {
		m := doc.CreateElement("meta")
		doc.SetAttr(m, "typeof", dom.TypeTransclusion)
		doc.SetAttr(m, "about", "#mwt1")
		doc.Info(m).TSR = &dom.SourceRange{Start: 0, End: 5}
		doc.AppendChild(dom.RootID, m)
	}

	_, err := Process(context.Background(), doc, dom.RootID, dom.NewFrame("{{A}}"), testOptions())
	require.ErrorIs(t, err, diag.ErrStartAfterContent)

	var re *diag.RangeError
	require.True(t, errors.As(err, &re))
	require.Equal(t, "mwt1", re.RangeID)
}

func TestProcess_RemovesStrippedTags(t *testing.T) {
	doc := dom.NewDocument()
	p := doc.CreateElement("p")
	doc.AppendChild(dom.RootID, p)
	doc.AppendChild(p, doc.CreateText("ab"))
	stripped := doc.CreateElement("meta")
	doc.SetAttr(stripped, "typeof", dom.TypeStrippedTag)
	doc.Info(stripped).Name = "span"
	doc.Info(stripped).Src = "</span>"
	doc.Info(stripped).TSR = &dom.SourceRange{Start: 2, End: 9}
	doc.AppendChild(p, stripped)

	opts := testOptions()
	opts.KeepScratch = true
	_, err := Process(context.Background(), doc, dom.RootID, dom.NewFrame("ab</span>"), opts)
	require.NoError(t, err)
	require.Equal(t, 1, doc.ChildCount(p))
	require.Equal(t, "ab", doc.TextContent(p))
}
