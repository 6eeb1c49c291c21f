package tplwrap

import (
	"encoding/json"
	"fmt"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

// ArgInfo is the argument data an invocation start marker carries.
type ArgInfo struct {
	Dict       dom.InvocationDict `json:"dict"`
	ParamInfos []dom.ParamInfo    `json:"paramInfos"`
}

// DecodeArgInfo parses a serialized argument blob. The blob may be the JSON
// object itself or a JSON string holding it.
func DecodeArgInfo(raw json.RawMessage) (*ArgInfo, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode arg info: %w", err)
		}
		raw = json.RawMessage(s)
	}
	var info ArgInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("decode arg info: %w", err)
	}
	return &info, nil
}

// EncodeArgInfo serializes argument data the way start markers carry it.
func EncodeArgInfo(info ArgInfo) (json.RawMessage, error) {
	b, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("encode arg info: %w", err)
	}
	return b, nil
}

// entry is one element of a parts list under construction.
type entry struct {
	literal string

	// The remaining fields are set for invocations.
	info    *ArgInfo
	dsr     *dom.DSR
	isParam bool
}

func (e entry) isInvocation() bool {
	return e.info != nil
}

// kind names the invocation type in the parts list.
func (e entry) kind() string {
	switch {
	case e.isParam:
		return dom.KindTemplateArg
	case e.info.Dict.Target.Function != "":
		return dom.KindParserFunction
	default:
		return dom.KindTemplate
	}
}
