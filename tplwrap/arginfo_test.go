package tplwrap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

func TestDecodeArgInfo(t *testing.T) {
	object := `{"dict":{"target":{"wt":"echo"},"params":{"1":{"wt":"b"}}},"paramInfos":[{"k":"1"}]}`
	quoted, err := json.Marshal(object)
	require.NoError(t, err)

	tests := []struct {
		name    string
		raw     string
		want    string
		wantNil bool
		wantErr bool
	}{
		{name: "object", raw: object, want: "echo"},
		{name: "json_string", raw: string(quoted), want: "echo"},
		{name: "empty", raw: "", wantNil: true},
		{name: "malformed", raw: `{"dict":`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info, err := DecodeArgInfo(json.RawMessage(tc.raw))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.wantNil {
				require.Nil(t, info)
				return
			}
			require.Equal(t, tc.want, info.Dict.Target.Wt)
			require.Equal(t, "b", info.Dict.Params["1"].Wt)
			require.Len(t, info.ParamInfos, 1)
		})
	}
}

func TestEntryKind(t *testing.T) {
	tests := []struct {
		name  string
		entry entry
		want  string
	}{
		{
			name:  "template",
			entry: entry{info: &ArgInfo{Dict: dom.InvocationDict{Target: dom.Target{Wt: "echo"}}}},
			want:  dom.KindTemplate,
		},
		{
			name:  "param",
			entry: entry{info: &ArgInfo{Dict: dom.InvocationDict{Target: dom.Target{Wt: "1"}}}, isParam: true},
			want:  dom.KindTemplateArg,
		},
		{
			name:  "parser_function",
			entry: entry{info: &ArgInfo{Dict: dom.InvocationDict{Target: dom.Target{Wt: "#if:x", Function: "if"}}}},
			want:  dom.KindParserFunction,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.entry.kind())
		})
	}
}
