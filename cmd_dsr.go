package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/diag"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dsr"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/pipeline"
)

var dsrCmd = &cobra.Command{
	Use:   "dsr <case.yaml|dir>...",
	Short: "Only compute source ranges, leaving template markers in place",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cases, err := loadCases(args)
		if err != nil {
			return err
		}

		results := make([]pipeline.Result, 0, len(cases))
		for _, c := range cases {
			doc, root, err := c.Document()
			if err != nil {
				return err
			}

			logger := log.With().Str("case", c.Name).Logger()
			warns, err := diag.NewWarnings(config.Policy(), config.MaxWarnings, logger)
			if err != nil {
				return err
			}
			dsr.Compute(doc, root, c.Frame(), dsr.Options{
				SourceOffsets: c.SourceOffsets(),
				Log:           &logger,
				Warnings:      warns,
			})
			results = append(results, pipeline.Result{
				Name:   c.Name,
				Report: pipeline.Report{Warnings: warns.List(), Dropped: warns.DroppedCount()},
			})

			if err := writeDocument(cmd.OutOrStdout(), doc, root, config.OutputFormat); err != nil {
				return fmt.Errorf("%s: %w", c.Name, err)
			}
		}

		printReport(cmd.ErrOrStderr(), results)
		return nil
	},
}
