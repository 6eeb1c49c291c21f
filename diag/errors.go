package diag

import (
	"errors"
	"fmt"
)

// ConfigError describes a problem with the settings a run was started with.
type ConfigError struct {
	Issue Issue // Issue is a kind or the problem occured.
	Err   error // Err contains the original error.
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Issue, e.Err)
}

// NewConfigError is a factory function for creating a *ConfigError.
func NewConfigError(issue Issue, err error) *ConfigError {
	return &ConfigError{
		Issue: issue,
		Err:   err,
	}
}

var (
	ErrNestingCycle      = errors.New("template nesting forms a cycle")
	ErrUnwrappable       = errors.New("no element can carry the template metadata")
	ErrFlippedMerge      = errors.New("flipped range cannot be merged")
	ErrStartAfterContent = errors.New("start marker found after range content")
	ErrDetachedRange     = errors.New("range markers share no common ancestor")
)

// RangeError is a fatal problem tied to one template range. It aborts the
// resolution pass of the tree it was found in, and nothing else.
type RangeError struct {
	Issue   Issue
	RangeID string
	Err     error
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range %s: %s: %v", e.RangeID, e.Issue, e.Err)
}

// NewRangeError wraps err for the range id.
func NewRangeError(issue Issue, rangeID string, err error) *RangeError {
	return &RangeError{Issue: issue, RangeID: rangeID, Err: err}
}
