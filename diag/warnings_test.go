package diag

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func mustNewWarnings(t *testing.T, policy WarningOverflowPolicy, cap int) *Warnings {
	t.Helper()
	w, err := NewWarnings(policy, cap, zerolog.Nop())
	require.NoError(t, err)
	return w
}

func newWarn(pos int) Warning {
	return Warning{Issue: IssueDSRInconsistent, Pos: pos, Node: -1}
}

func TestNewWarnings_NegativeCap_ReturnsConfigError(t *testing.T) {
	_, err := NewWarnings(WarnOverflowDrop, -1, zerolog.Nop())
	require.Error(t, err)

	var ce *ConfigError
	require.True(t, errors.As(err, &ce), "expected *ConfigError, got %T (%v)", err, err)
	require.Equal(t, IssueNegativeWarningsCap, ce.Issue)
}

func TestWarnings_Policies(t *testing.T) {
	tests := []struct {
		name         string
		policy       WarningOverflowPolicy
		cap          int
		adds         int
		wantLen      int
		wantOverflow bool
		wantDropped  int
		wantDropPos  int
	}{
		{name: "norec_is_noop", policy: WarnOverflowNoRec, cap: 3, adds: 2},
		{name: "nocap_ignores_cap", policy: WarnOverflowNoCap, cap: 2, adds: 10, wantLen: 10},
		{name: "drop_keeps_first_n", policy: WarnOverflowDrop, cap: 3, adds: 5, wantLen: 3, wantOverflow: true, wantDropPos: 3},
		{name: "drop_cap0", policy: WarnOverflowDrop, cap: 0, adds: 2, wantOverflow: true},
		{name: "trunc_reserves_marker_slot", policy: WarnOverflowTrunc, cap: 3, adds: 5, wantLen: 3, wantOverflow: true, wantDropped: 3, wantDropPos: 2},
		{name: "trunc_cap1_only_marker", policy: WarnOverflowTrunc, cap: 1, adds: 2, wantLen: 1, wantOverflow: true, wantDropped: 2},
		{name: "trunc_cap0_stores_nothing", policy: WarnOverflowTrunc, cap: 0, adds: 2, wantOverflow: true, wantDropped: 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := mustNewWarnings(t, tc.policy, tc.cap)
			for i := 0; i < tc.adds; i++ {
				w.Add(newWarn(i))
			}

			require.Len(t, w.List(), tc.wantLen)
			require.Equal(t, tc.wantOverflow, w.IsOverflow())
			require.Equal(t, tc.wantDropped, w.DroppedCount())
			require.Equal(t, tc.wantDropPos, w.FirstDropPos())

			if tc.policy == WarnOverflowTrunc && tc.wantLen > 0 {
				last := w.List()[len(w.List())-1]
				require.Equal(t, IssueWarningsTruncated, last.Issue)
			}
		})
	}
}

func TestWarnings_LogsEveryOfferedWarning(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWarnings(WarnOverflowDrop, 1, zerolog.New(&buf))
	require.NoError(t, err)

	w.Addf(IssueDSRInconsistent, 4, 7, "mismatch at %d", 4)
	w.Addf(IssueNegativeDSR, 9, 2, "clamped")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))

	require.Equal(t, "warn", first["level"])
	require.Equal(t, "dsr-inconsistent", first["issue"])
	require.Equal(t, float64(7), first["node"])
	require.Equal(t, "mismatch at 4", first["message"])
	require.Equal(t, "info", second["level"])

	require.Len(t, w.List(), 1)
}

func TestParsePolicy(t *testing.T) {
	for name, want := range map[string]WarningOverflowPolicy{
		"":      WarnOverflowNoCap,
		"nocap": WarnOverflowNoCap,
		"norec": WarnOverflowNoRec,
		"drop":  WarnOverflowDrop,
		"trunc": WarnOverflowTrunc,
	} {
		got, err := ParsePolicy(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParsePolicy("bogus")
	require.Error(t, err)
}

func TestRangeError(t *testing.T) {
	err := fmt.Errorf("resolve: %w", NewRangeError(IssueNestingCycle, "mwt3", ErrNestingCycle))

	require.ErrorIs(t, err, ErrNestingCycle)

	var re *RangeError
	require.True(t, errors.As(err, &re))
	require.Equal(t, "mwt3", re.RangeID)
	require.Contains(t, err.Error(), "nesting-cycle")
}
