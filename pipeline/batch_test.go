package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/diag"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

// paragraphDoc builds <p>text</p> for the whole of frame.
func paragraphDoc(frame dom.Frame) *dom.Document {
	doc := dom.NewDocument()
	p := doc.CreateElement("p")
	doc.AppendChild(dom.RootID, p)
	doc.AppendChild(p, doc.CreateText(frame.Text()))
	return doc
}

func TestProcessBatch(t *testing.T) {
	frame := dom.NewFrame("shared source")

	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = Job{
			Name:  fmt.Sprintf("doc-%d", i),
			Doc:   paragraphDoc(frame),
			Root:  dom.RootID,
			Frame: frame,
			Opts:  testOptions(),
		}
	}

	// A document whose resolution fails does not affect the others.
	broken := dom.NewDocument()
	for range 2 {
		m := broken.CreateElement("meta")
		broken.SetAttr(m, "typeof", dom.TypeTransclusion)
		broken.SetAttr(m, "about", "#mwt1")
		broken.Info(m).TSR = &dom.SourceRange{Start: 0, End: 5}
		broken.AppendChild(dom.RootID, m)
	}
	jobs[3].Doc = broken

	results, err := ProcessBatch(context.Background(), jobs, 3)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	for i, res := range results {
		require.Equal(t, jobs[i].Name, res.Name)
		if i == 3 {
			require.ErrorIs(t, res.Err, diag.ErrStartAfterContent)
			continue
		}
		require.NoError(t, res.Err)

		p := jobs[i].Doc.FirstChild(dom.RootID)
		d := jobs[i].Doc.Info(p).DSR
		require.Equal(t, 0, d.Start)
		require.Equal(t, frame.Len(), d.End)
	}
}

func TestProcessBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	frame := dom.NewFrame("x")
	jobs := []Job{{Name: "a", Doc: paragraphDoc(frame), Root: dom.RootID, Frame: frame, Opts: testOptions()}}

	_, err := ProcessBatch(ctx, jobs, 0)
	require.ErrorIs(t, err, context.Canceled)
}
