package dom

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Invocation kinds.
const (
	KindTemplate       = "template"
	KindTemplateArg    = "templatearg"
	KindParserFunction = "parserfunction"
)

// Target is the invoked name of a template, parameter or parser function.
type Target struct {
	Wt       string `json:"wt"`
	Href     string `json:"href,omitempty"`
	Function string `json:"function,omitempty"`
}

// ParamValue is the source of one argument.
type ParamValue struct {
	Wt   string `json:"wt"`
	HTML string `json:"html,omitempty"`
}

// InvocationDict describes a single invocation in a parts list.
type InvocationDict struct {
	Target Target                `json:"target"`
	Params map[string]ParamValue `json:"params"`
	I      int                   `json:"i"`
}

// ParamOffsets are the source ranges of a parameter key and value.
type ParamOffsets struct {
	Key   *SourceRange `json:"key,omitempty"`
	Value *SourceRange `json:"value,omitempty"`
}

// ParamInfo is the ordering and spacing record of one argument.
type ParamInfo struct {
	K          string        `json:"k"`
	Named      bool          `json:"named,omitempty"`
	Spc        []string      `json:"spc,omitempty"`
	SrcOffsets *ParamOffsets `json:"srcOffsets,omitempty"`
}

// Invocation is one template-like entry of a parts list.
type Invocation struct {
	Kind string
	Dict InvocationDict

	// Span is the source range of the invocation syntax. Not serialized.
	Span SourceRange
}

// Part is either literal source text or an invocation.
type Part struct {
	Literal    string
	Invocation *Invocation
}

func (p Part) IsLiteral() bool {
	return p.Invocation == nil
}

// MarshalJSON writes literals as strings and invocations as {kind: dict}.
func (p Part) MarshalJSON() ([]byte, error) {
	if p.Invocation == nil {
		return json.Marshal(p.Literal)
	}
	return json.Marshal(map[string]InvocationDict{p.Invocation.Kind: p.Invocation.Dict})
}

func (p *Part) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		p.Invocation = nil
		return json.Unmarshal(data, &p.Literal)
	}
	var m map[string]InvocationDict
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("part: %w", err)
	}
	if len(m) != 1 {
		return fmt.Errorf("part: expected a single invocation kind, got %d", len(m))
	}
	for kind, dict := range m {
		p.Invocation = &Invocation{Kind: kind, Dict: dict}
	}
	return nil
}

// DataMw is the encapsulation metadata of a template target, serialized as
// the data-mw attribute.
type DataMw struct {
	Parts []Part `json:"parts,omitempty"`
}

// Invocations returns the invocation parts in order.
func (m *DataMw) Invocations() []*Invocation {
	if m == nil {
		return nil
	}
	var out []*Invocation
	for _, p := range m.Parts {
		if p.Invocation != nil {
			out = append(out, p.Invocation)
		}
	}
	return out
}
