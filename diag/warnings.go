package diag

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Warning describes a non-fatal problem found while annotating a tree.
type Warning struct {
	Issue Issue `json:"issue"`

	// Pos is the source offset the problem relates to, or -1.
	Pos int `json:"pos"`

	// Node is the arena index of the offending node, or -1.
	Node int `json:"node"`

	Description string `json:"description"`
}

// WarningOverflowPolicy decides what a full collector does with new warnings.
type WarningOverflowPolicy int

const (
	// WarnOverflowNoCap keeps everything.
	WarnOverflowNoCap WarningOverflowPolicy = iota

	// WarnOverflowNoRec keeps nothing; warnings are only logged.
	WarnOverflowNoRec

	// WarnOverflowDrop keeps the first maxWarnings.
	WarnOverflowDrop

	// WarnOverflowTrunc keeps maxWarnings-1 and a closing truncation entry,
	// and counts what it did not keep.
	WarnOverflowTrunc
)

// ParsePolicy maps a configuration name to a policy.
func ParsePolicy(name string) (WarningOverflowPolicy, error) {
	switch name {
	case "", "nocap":
		return WarnOverflowNoCap, nil
	case "norec":
		return WarnOverflowNoRec, nil
	case "drop":
		return WarnOverflowDrop, nil
	case "trunc":
		return WarnOverflowTrunc, nil
	}
	return 0, fmt.Errorf("unknown warnings policy %q", name)
}

// Warnings collects the diagnostics of one run. Every warning offered to the
// collector is logged, whether or not it is kept.
type Warnings struct {
	policy WarningOverflowPolicy

	list []Warning

	maxWarnings int // capacity, including a Trunc marker

	overflowed   bool
	droppedCount int // Trunc only
	firstDropPos int // Pos of the first warning that did not fit

	log zerolog.Logger
}

func (w *Warnings) IsOverflow() bool {
	return w.overflowed
}

// DroppedCount is how many warnings Trunc did not keep.
func (w *Warnings) DroppedCount() int {
	return w.droppedCount
}

// FirstDropPos is the source position of the first warning that did not fit.
func (w *Warnings) FirstDropPos() int {
	return w.firstDropPos
}

func (w *Warnings) List() []Warning {
	return w.list
}

// Add logs item and keeps it unless the policy says otherwise. Once the
// collector is full, Drop forgets the rest and Trunc counts them, ending the
// list with a single truncation entry.
func (w *Warnings) Add(item Warning) {
	w.emit(item)

	switch {
	case w.policy == WarnOverflowNoRec:
		return
	case w.policy == WarnOverflowNoCap:
		w.list = append(w.list, item)
		return
	case w.overflowed:
		if w.policy == WarnOverflowTrunc {
			w.droppedCount++
		}
		return
	}

	if len(w.list) < w.room() {
		w.list = append(w.list, item)
		return
	}

	w.overflowed = true
	w.firstDropPos = item.Pos
	if w.policy != WarnOverflowTrunc {
		return
	}

	w.droppedCount = 1
	if w.maxWarnings == 0 {
		return
	}
	w.list = append(w.list, Warning{
		Issue:       IssueWarningsTruncated,
		Pos:         item.Pos,
		Node:        -1,
		Description: fmt.Sprintf("more than %d warnings, the rest are not kept", w.maxWarnings-1),
	})
}

// room is how many regular warnings fit. Trunc keeps the last slot for its
// marker.
func (w *Warnings) room() int {
	if w.policy == WarnOverflowTrunc {
		return max(w.maxWarnings-1, 0)
	}
	return w.maxWarnings
}

// Addf is a shorthand for Add with a formatted description.
func (w *Warnings) Addf(issue Issue, pos, node int, format string, args ...any) {
	w.Add(Warning{Issue: issue, Pos: pos, Node: node, Description: fmt.Sprintf(format, args...)})
}

func (w *Warnings) emit(item Warning) {
	ev := w.log.Warn()
	if item.Issue == IssueNegativeDSR {
		ev = w.log.Info()
	}
	ev.Str("issue", item.Issue.String()).
		Int("pos", item.Pos).
		Int("node", item.Node).
		Msg(item.Description)
}

// NewWarnings creates a Warnings collector with the given overflow policy and
// capacity, logging through logger. It returns a ConfigError if cap is negative.
func NewWarnings(policy WarningOverflowPolicy, cap int, logger zerolog.Logger) (*Warnings, error) {
	if cap < 0 {
		return nil, NewConfigError(
			IssueNegativeWarningsCap,
			fmt.Errorf("warnings cap must be non-negative, got %d", cap),
		)
	}

	return &Warnings{
		policy:      policy,
		list:        make([]Warning, 0, cap),
		maxWarnings: cap,
		log:         logger,
	}, nil
}
