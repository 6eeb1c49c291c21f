// Package pipeline runs the annotation passes over whole documents: source
// ranges first, then template resolution, then cleanup.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/diag"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dsr"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/tplwrap"
)

// Options configure one document run.
type Options struct {
	// SourceOffsets overrides the range assigned to the root.
	SourceOffsets *dom.SourceRange

	AttrExpansion bool

	MaxWarnings    int
	WarningsPolicy diag.WarningOverflowPolicy

	// KeepScratch leaves the per-pass scratch state on the elements.
	KeepScratch bool

	// Log defaults to the global logger.
	Log *zerolog.Logger
}

// Report is the outcome of a document run.
type Report struct {
	Warnings []diag.Warning `json:"warnings"`

	// Dropped counts the warnings discarded after the collector overflowed.
	Dropped int `json:"dropped,omitempty"`

	Templates tplwrap.Stats `json:"templates"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Process annotates doc in place. The context is only checked before the run
// starts. A *diag.RangeError aborts the resolution of this document; the
// warnings gathered up to that point are still reported.
func Process(ctx context.Context, doc *dom.Document, root int, frame dom.Frame, opts Options) (rep Report, err error) {
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	logger := log.Logger
	if opts.Log != nil {
		logger = *opts.Log
	}

	warns, err := diag.NewWarnings(opts.WarningsPolicy, opts.MaxWarnings, logger)
	if err != nil {
		return rep, fmt.Errorf("pipeline: %w", err)
	}

	start := time.Now()
	defer func() {
		rep.Warnings = warns.List()
		rep.Dropped = warns.DroppedCount()
		rep.Elapsed = time.Since(start)
	}()

	dsr.Compute(doc, root, frame, dsr.Options{
		SourceOffsets: opts.SourceOffsets,
		AttrExpansion: opts.AttrExpansion,
		Log:           &logger,
		Warnings:      warns,
	})

	stats, err := tplwrap.NewResolver(doc, frame, tplwrap.Options{
		Log:      &logger,
		Warnings: warns,
	}).Run(root)
	rep.Templates = stats
	if err != nil {
		return rep, fmt.Errorf("resolve templates: %w", err)
	}

	removeStrippedTags(doc, root)
	if !opts.KeepScratch {
		doc.ClearScratch(root)
	}

	logger.Debug().
		Int("ranges", stats.Discovered).
		Int("retained", stats.Retained).
		Int("warnings", len(warns.List())).
		Msg("document processed")
	return rep, nil
}

// removeStrippedTags drops the placeholders left for tags the tree builder
// discarded. Their source has been accounted for by now.
func removeStrippedTags(doc *dom.Document, root int) {
	var doomed []int
	doc.Walk(root, func(id int) bool {
		if doc.Name(id) == "meta" && doc.IsStrippedTag(id) {
			doomed = append(doomed, id)
			return false
		}
		return true
	})
	for _, id := range doomed {
		doc.RemoveChild(id)
	}
}
