package dsr

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/diag"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

// Options tune a Compute run.
type Options struct {
	// SourceOffsets overrides the range assigned to the root. Defaults to the whole frame.
	SourceOffsets *dom.SourceRange

	// AttrExpansion is set when the tree came out of an attribute expansion.
	// A root start mismatch is expected then and not reported.
	AttrExpansion bool

	// Log defaults to the global logger.
	Log *zerolog.Logger

	// Warnings receives the diagnostics. When nil they are only logged.
	Warnings *diag.Warnings
}

func (o Options) logger() zerolog.Logger {
	l := log.Logger
	if o.Log != nil {
		l = *o.Log
	}
	return l.With().Str("component", "dsr").Logger()
}
