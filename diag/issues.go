package diag

import "fmt"

// Issue defines the kinds of problems found while annotating a tree.
type Issue int

const (
	// IssueDSRInconsistent means the start computed from a node's children does
	// not match the start its parent expected.
	IssueDSRInconsistent Issue = iota

	// IssueNegativeDSR means a computed end offset went below zero and was clamped.
	IssueNegativeDSR

	// IssueEncapsulationInvalid means a template range has no valid source
	// range, so the parts list could not be built.
	IssueEncapsulationInvalid

	// IssueFlippedRange means a template range ends before it starts in
	// sibling order.
	IssueFlippedRange

	// IssueFosteredEndMarker means the end marker of a template was seen before
	// its start marker, usually because the start was moved out of a table.
	IssueFosteredEndMarker

	// IssueMissingArgInfo means a template start marker carries no argument data.
	IssueMissingArgInfo

	// IssueMalformedArgInfo means the argument data of a start marker could not be decoded.
	IssueMalformedArgInfo

	// IssueNestingCycle means template nesting loops back on itself. Fatal.
	IssueNestingCycle

	// IssueUnwrappable means no element could carry a template's metadata. Fatal.
	IssueUnwrappable

	// IssueFlippedMerge means a flipped range had to be merged with its
	// predecessor. Fatal.
	IssueFlippedMerge

	// IssueStartAfterContent means a start marker showed up after content of
	// its own range was already seen. Fatal.
	IssueStartAfterContent

	// IssueDetachedRange means the markers of a template share no common ancestor. Fatal.
	IssueDetachedRange

	// IssueWarningsTruncated occurs when there are too many Warnings recorded.
	IssueWarningsTruncated

	// IssueNegativeWarningsCap reports an invalid (negative) warnings capacity.
	IssueNegativeWarningsCap

	// NumIssues is the total number of Issues. Should be placed as last const.
	NumIssues
)

var issueNames = [NumIssues]string{
	IssueDSRInconsistent:      "dsr-inconsistent",
	IssueNegativeDSR:          "negative-dsr",
	IssueEncapsulationInvalid: "encapsulation-invalid",
	IssueFlippedRange:         "flipped-range",
	IssueFosteredEndMarker:    "fostered-end-marker",
	IssueMissingArgInfo:       "missing-arg-info",
	IssueMalformedArgInfo:     "malformed-arg-info",
	IssueNestingCycle:         "nesting-cycle",
	IssueUnwrappable:          "unwrappable",
	IssueFlippedMerge:         "flipped-merge",
	IssueStartAfterContent:    "start-after-content",
	IssueDetachedRange:        "detached-range",
	IssueWarningsTruncated:    "warnings-truncated",
	IssueNegativeWarningsCap:  "negative-warnings-cap",
}

func (i Issue) String() string {
	if i >= 0 && i < NumIssues {
		return issueNames[i]
	}
	return fmt.Sprintf("issue(%d)", int(i))
}
