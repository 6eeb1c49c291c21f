package dom

import "encoding/json"

// TagWidths are the opening and closing syntax widths of an extension tag.
type TagWidths struct {
	Open  int
	Close int
}

func (w TagWidths) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{w.Open, w.Close})
}

func (w *TagWidths) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	w.Open, w.Close = pair[0], pair[1]
	return nil
}

// ParseInfo is the parsing record of an element, serialized as the
// data-parsoid attribute.
type ParseInfo struct {
	// TSR is the tag's own range as reported by the tokenizer.
	TSR *SourceRange `json:"tsr,omitempty"`

	// DSR is the computed range of the whole subtree.
	DSR *DSR `json:"dsr,omitempty"`

	AutoInsertedStart bool `json:"autoInsertedStart,omitempty"`
	AutoInsertedEnd   bool `json:"autoInsertedEnd,omitempty"`
	Fostered          bool `json:"fostered,omitempty"`
	SelfClose         bool `json:"selfClose,omitempty"`

	// Stx is the syntax flavor: "html" for literal HTML, "piped", "url", "magiclink", ...
	Stx string `json:"stx,omitempty"`

	// Src is the raw source of placeholders, entities and stripped tags, and
	// the covered source of an encapsulated template.
	Src string `json:"src,omitempty"`

	// Name is the tag name of a stripped tag.
	Name string `json:"name,omitempty"`

	// Target is the link target text of a wiki link.
	Target string `json:"target,omitempty"`

	ExtLinkContentStart *int       `json:"extLinkContentOffset,omitempty"`
	ExtTagWidths        *TagWidths `json:"extTagWidths,omitempty"`

	StartTagSrc string `json:"startTagSrc,omitempty"`
	EndTagSrc   string `json:"endTagSrc,omitempty"`

	// FirstWikitextNode names the first node produced by literal text that
	// precedes an invocation inside an encapsulated range.
	FirstWikitextNode string `json:"firstWikitextNode,omitempty"`

	// ParamOrder holds the parameter order of every invocation in a
	// template's parts list.
	ParamOrder [][]ParamInfo `json:"pi,omitempty"`

	Tmp *Scratch `json:"tmp,omitempty"`
}

// Scratch is state that only lives during a processing pass.
type Scratch struct {
	// EndTSR is the range of an element's end tag, if known.
	EndTSR *SourceRange `json:"endTSR,omitempty"`

	// ArgInfo is the serialized argument data of an invocation start marker.
	ArgInfo json.RawMessage `json:"tplarginfo,omitempty"`

	// OrigDSR is the range a stripped-tag placeholder had before its width
	// was donated to a neighbour.
	OrigDSR *DSR `json:"origDSR,omitempty"`

	FromFoster bool `json:"fromFoster,omitempty"`

	// Wrapper marks a span inserted by the resolver.
	Wrapper bool `json:"wrapper,omitempty"`

	// Doomed marks a marker queued for deletion.
	Doomed bool `json:"-"`
}

// LiteralHTML reports whether the element was written as literal HTML.
func (p *ParseInfo) LiteralHTML() bool {
	return p != nil && p.Stx == "html"
}

// Temp returns the scratch record, creating it when missing.
func (p *ParseInfo) Temp() *Scratch {
	if p.Tmp == nil {
		p.Tmp = &Scratch{}
	}
	return p.Tmp
}

// Clone returns a deep copy of the record.
func (p *ParseInfo) Clone() *ParseInfo {
	if p == nil {
		return nil
	}
	c := *p
	if p.TSR != nil {
		tsr := *p.TSR
		c.TSR = &tsr
	}
	c.DSR = p.DSR.Clone()
	if p.ExtTagWidths != nil {
		w := *p.ExtTagWidths
		c.ExtTagWidths = &w
	}
	if p.Tmp != nil {
		tmp := *p.Tmp
		c.Tmp = &tmp
	}
	return &c
}
