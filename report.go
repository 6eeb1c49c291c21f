package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/pipeline"
)

var (
	nameColor    = color.New(color.Bold)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	okColor      = color.New(color.FgGreen)
)

// printReport writes a per-document summary and returns the number of
// documents that failed.
func printReport(w io.Writer, results []pipeline.Result) int {
	failed := 0
	for _, res := range results {
		nameColor.Fprintf(w, "%s\n", res.Name)

		for _, item := range res.Report.Warnings {
			warningColor.Fprintf(w, "  warning[%s]", item.Issue)
			fmt.Fprintf(w, " at %d: %s\n", item.Pos, item.Description)
		}
		if res.Report.Dropped > 0 {
			warningColor.Fprintf(w, "  %d more warnings dropped\n", res.Report.Dropped)
		}

		if res.Err != nil {
			failed++
			errorColor.Fprintf(w, "  error: %v\n", res.Err)
			continue
		}

		stats := res.Report.Templates
		okColor.Fprintf(w, "  ok")
		fmt.Fprintf(w, " templates=%d nested=%d merged=%d encapsulated=%d elapsed=%s\n",
			stats.Discovered, stats.Nested, stats.Merged, stats.Retained, res.Report.Elapsed)
	}
	return failed
}
