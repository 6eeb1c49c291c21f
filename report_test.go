package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/diag"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/pipeline"
	"github.com/wikimedia/mediawiki-services-parsoid-sub010/tplwrap"
)

func TestPrintReport(t *testing.T) {
	color.NoColor = true

	results := []pipeline.Result{
		{
			Name: "good",
			Report: pipeline.Report{
				Warnings:  []diag.Warning{{Issue: diag.IssueFlippedRange, Pos: 4, Node: 2, Description: "flipped"}},
				Dropped:   3,
				Templates: tplwrap.Stats{Discovered: 2, Nested: 1, Retained: 1},
			},
		},
		{Name: "bad", Err: errors.New("boom")},
	}

	var buf bytes.Buffer
	failed := printReport(&buf, results)
	require.Equal(t, 1, failed)

	out := buf.String()
	require.Contains(t, out, "warning[flipped-range] at 4: flipped")
	require.Contains(t, out, "3 more warnings dropped")
	require.Contains(t, out, "templates=2 nested=1 merged=0 encapsulated=1")
	require.Contains(t, out, "error: boom")
}

func TestLoadCases_Args(t *testing.T) {
	cases, err := loadCases([]string{"pipeline/testdata", "pipeline/testdata/01_paragraph.yaml"})
	require.NoError(t, err)
	require.Len(t, cases, 5)
	require.Equal(t, cases[0].Name, cases[4].Name)

	_, err = loadCases([]string{"does/not/exist.yaml"})
	require.Error(t, err)
}
