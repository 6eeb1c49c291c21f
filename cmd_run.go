package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/htmlio"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/pipeline"
)

var keepScratch bool

var runCmd = &cobra.Command{
	Use:   "run <case.yaml|dir>...",
	Short: "Compute source ranges and encapsulate templates for stored cases",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cases, err := loadCases(args)
		if err != nil {
			return err
		}

		jobs := make([]pipeline.Job, 0, len(cases))
		for _, c := range cases {
			doc, root, err := c.Document()
			if err != nil {
				return err
			}
			jobs = append(jobs, pipeline.Job{
				Name:  c.Name,
				Doc:   doc,
				Root:  root,
				Frame: c.Frame(),
				Opts: pipeline.Options{
					SourceOffsets:  c.SourceOffsets(),
					MaxWarnings:    config.MaxWarnings,
					WarningsPolicy: config.Policy(),
					KeepScratch:    keepScratch,
				},
			})
		}

		log.Info().Int("documents", len(jobs)).Int("jobs", config.Jobs).Msg("processing batch")
		results, err := pipeline.ProcessBatch(cmd.Context(), jobs, config.Jobs)
		if err != nil {
			return err
		}

		failed := printReport(cmd.ErrOrStderr(), results)

		for i, job := range jobs {
			if results[i].Err != nil {
				continue
			}
			if err := writeDocument(cmd.OutOrStdout(), job.Doc, job.Root, config.OutputFormat); err != nil {
				return fmt.Errorf("%s: %w", job.Name, err)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&keepScratch, "keep-scratch", false, "keep per-pass scratch state in the output")
}

// loadCases reads case files and directories of case files in argument order.
func loadCases(args []string) ([]*htmlio.Case, error) {
	var cases []*htmlio.Case
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot open input: %w", err)
		}
		if st.IsDir() {
			more, err := htmlio.LoadCases(arg)
			if err != nil {
				return nil, err
			}
			cases = append(cases, more...)
			continue
		}
		c, err := htmlio.LoadCase(arg)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func writeDocument(w io.Writer, doc *dom.Document, root int, format string) error {
	if format == "html" {
		if err := htmlio.Render(w, doc, root); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}
	return doc.Encode(w, root, format)
}
