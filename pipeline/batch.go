package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

// Job is one document of a batch. Jobs must not share a Document; they may
// share a Frame.
type Job struct {
	Name  string
	Doc   *dom.Document
	Root  int
	Frame dom.Frame
	Opts  Options
}

// Result is the outcome of one Job. Err holds a document-level failure, which
// does not stop the rest of the batch.
type Result struct {
	Name   string
	Report Report
	Err    error
}

// ProcessBatch runs the jobs concurrently, at most limit at a time, and
// returns their results in job order. A limit of zero or less means no limit.
// The returned error is only set when ctx was cancelled.
func ProcessBatch(ctx context.Context, jobs []Job, limit int) ([]Result, error) {
	results := make([]Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := range jobs {
		job := jobs[i]
		g.Go(func() error {
			rep, err := Process(gctx, job.Doc, job.Root, job.Frame, job.Opts)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = Result{Name: job.Name, Report: rep, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
