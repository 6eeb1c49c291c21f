// Package tplwrap finds the stretches of an annotated tree that were produced
// by template invocations and encapsulates each of them, so a serializer can
// emit the invocation source instead of the expanded content.
//
// Resolution runs in three stages over one tree: discovery pairs up the
// invocation markers into ranges, conflict resolution folds nested and
// overlapping ranges into a set of disjoint top-level ranges, and
// encapsulation tags the content of every remaining range and attaches the
// parts list to its first element.
package tplwrap

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/diag"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

// Options tune a Resolver.
type Options struct {
	// Log defaults to the global logger.
	Log *zerolog.Logger

	// Warnings receives the diagnostics. When nil they are only logged.
	Warnings *diag.Warnings
}

// Stats summarizes a resolution pass.
type Stats struct {
	Discovered int
	Nested     int
	Merged     int
	Retained   int
}

// Resolver resolves the template ranges of one tree. It is single use.
type Resolver struct {
	doc   *dom.Document
	frame dom.Frame
	log   zerolog.Logger
	warns *diag.Warnings

	ranges []*Range

	// nodeRanges maps an element to the ranges spanning it, in tagging order.
	nodeRanges map[int][]int

	// compound holds the parts being accumulated per range index.
	compound map[int][]entry

	stats Stats
}

// NewResolver prepares a resolver for doc. The tree must already carry dsr
// annotations.
func NewResolver(doc *dom.Document, frame dom.Frame, opts Options) *Resolver {
	l := log.Logger
	if opts.Log != nil {
		l = *opts.Log
	}
	return &Resolver{
		doc:        doc,
		frame:      frame,
		log:        l.With().Str("component", "tplwrap").Logger(),
		warns:      opts.Warnings,
		nodeRanges: make(map[int][]int),
		compound:   make(map[int][]entry),
	}
}

// Run resolves and encapsulates every template range under root. A returned
// error is a *diag.RangeError; the tree is left partially processed then.
func (r *Resolver) Run(root int) (Stats, error) {
	if err := r.findRanges(root, make(map[string]*pendingPair)); err != nil {
		return r.stats, err
	}
	r.stats.Discovered = len(r.ranges)
	if len(r.ranges) == 0 {
		r.stripLeftoverMarkers(root)
		return r.stats, nil
	}

	retained, err := r.findTopLevelNonOverlappingRanges(root)
	if err != nil {
		return r.stats, err
	}
	r.stats.Retained = len(retained)

	if err := r.encapsulate(retained); err != nil {
		return r.stats, err
	}

	r.stripLeftoverMarkers(root)
	r.nodeRanges = nil
	r.compound = nil
	return r.stats, nil
}

// stripLeftoverMarkers removes invocation markers that never formed a
// complete range.
func (r *Resolver) stripLeftoverMarkers(root int) {
	doc := r.doc
	var doomed []int
	doc.Walk(root, func(id int) bool {
		if doc.IsInvocationMarker(id) {
			doomed = append(doomed, id)
			return false
		}
		return true
	})
	for _, id := range doomed {
		r.log.Debug().Int("node", id).Str("about", doc.AttrOr(id, "about")).Msg("dropping unpaired marker")
		doc.RemoveChild(id)
	}
}

func (r *Resolver) warn(issue diag.Issue, pos, node int, format string, args ...any) {
	if r.warns != nil {
		r.warns.Addf(issue, pos, node, format, args...)
		return
	}
	r.log.Warn().Str("issue", issue.String()).Int("pos", pos).Int("node", node).Msgf(format, args...)
}

// stripStartMarker removes a start marker meta, or drops the marker types
// from an element that doubles as the start.
func (r *Resolver) stripStartMarker(id int) {
	if id == dom.NoNode {
		return
	}
	doc := r.doc
	if doc.Name(id) == "meta" {
		doc.RemoveChild(id)
		return
	}
	doc.RemoveTypeOf(id, func(t string) bool { return strings.HasPrefix(t, "mw:") })
}
