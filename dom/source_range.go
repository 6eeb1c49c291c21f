package dom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Unknown marks a source offset or width that could not be determined.
// Offsets may temporarily become negative while ranges are being computed,
// so a far-away sentinel is used instead of -1.
const Unknown = math.MinInt32

// Known reports whether v holds a real offset.
func Known(v int) bool {
	return v != Unknown
}

// SourceRange is a [Start, End) pair of byte offsets into the source text.
type SourceRange struct {
	Start int
	End   int
}

func (r SourceRange) Length() int {
	return r.End - r.Start
}

func (r SourceRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Start, r.End})
}

func (r *SourceRange) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("source range: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("source range: expected 2 offsets, got %d", len(pair))
	}
	r.Start, r.End = pair[0], pair[1]
	return nil
}

// DSR is the computed source range of a node: the span of source text that
// produced it, plus the widths of its opening and closing syntax.
// Any component may be Unknown.
type DSR struct {
	Start      int
	End        int
	OpenWidth  int
	CloseWidth int
}

// NewDSR returns a range with unknown widths.
func NewDSR(start, end int) *DSR {
	return &DSR{Start: start, End: end, OpenWidth: Unknown, CloseWidth: Unknown}
}

// UnknownDSR returns a range with every component unknown.
func UnknownDSR() *DSR {
	return NewDSR(Unknown, Unknown)
}

// Valid reports whether both offsets are known.
func (d *DSR) Valid() bool {
	return d != nil && Known(d.Start) && Known(d.End)
}

func (d *DSR) Clone() *DSR {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func (d *DSR) Length() int {
	return d.End - d.Start
}

func (d *DSR) String() string {
	if d == nil {
		return "<nil>"
	}
	return fmt.Sprintf("[%s,%s,%s,%s]",
		offsetString(d.Start), offsetString(d.End),
		offsetString(d.OpenWidth), offsetString(d.CloseWidth))
}

func offsetString(v int) string {
	if !Known(v) {
		return "null"
	}
	return fmt.Sprint(v)
}

// MarshalJSON writes the range as a 4-element array with null for unknowns.
func (d DSR) MarshalJSON() ([]byte, error) {
	out := make([]*int, 4)
	for i, v := range [4]int{d.Start, d.End, d.OpenWidth, d.CloseWidth} {
		if Known(v) {
			out[i] = &v
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts arrays of 2 to 4 elements, null meaning unknown.
func (d *DSR) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = *UnknownDSR()
		return nil
	}
	var raw []*int
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("dsr: %w", err)
	}
	if len(raw) < 2 || len(raw) > 4 {
		return fmt.Errorf("dsr: expected 2 to 4 components, got %d", len(raw))
	}
	vals := [4]int{Unknown, Unknown, Unknown, Unknown}
	for i, p := range raw {
		if p != nil {
			vals[i] = *p
		}
	}
	d.Start, d.End, d.OpenWidth, d.CloseWidth = vals[0], vals[1], vals[2], vals[3]
	return nil
}
