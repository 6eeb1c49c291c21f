package dom

// SourceText is the immutable markup source that a tree was built from.
type SourceText string

// Frame is the window of source text active during one expansion context.
// Offsets handed to a Frame are absolute offsets into Src; Base is where the
// window starts. Frames are values and safe to share between goroutines.
type Frame struct {
	Src  SourceText
	Base int

	end     int
	bounded bool
}

// NewFrame returns a frame covering the whole text.
func NewFrame(src string) Frame {
	return Frame{Src: SourceText(src)}
}

// Sub returns a frame limited to [start, end) of the same text.
func (f Frame) Sub(start, end int) Frame {
	start = clamp(start, 0, len(f.Src))
	end = clamp(end, start, len(f.Src))
	return Frame{Src: f.Src, Base: start, end: end, bounded: true}
}

// Len is the number of bytes visible through the frame.
func (f Frame) Len() int {
	return f.End() - f.Base
}

// End is the absolute offset one past the last visible byte.
func (f Frame) End() int {
	if !f.bounded {
		return len(f.Src)
	}
	return f.end
}

// Text returns the visible window.
func (f Frame) Text() string {
	return string(f.Src[f.Base:f.End()])
}

// Slice returns Src[start:end], clamped to the text. Unknown or inverted
// bounds yield an empty string.
func (f Frame) Slice(start, end int) string {
	if !Known(start) || !Known(end) {
		return ""
	}
	start = clamp(start, 0, len(f.Src))
	end = clamp(end, 0, len(f.Src))
	if end <= start {
		return ""
	}
	return string(f.Src[start:end])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
