package dom

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

var nodeTypeToString = map[NodeType]string{
	NodeElement: "Element",
	NodeText:    "Text",
	NodeComment: "Comment",
}

func (t NodeType) String() string {
	if s, ok := nodeTypeToString[t]; ok {
		return s
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// SerializableNode is a self-contained snapshot of a subtree.
type SerializableNode struct {
	Type       string             `json:"type" msgpack:"type"`
	Name       string             `json:"name,omitempty" msgpack:"name,omitempty"`
	Content    string             `json:"content,omitempty" msgpack:"content,omitempty"`
	Attributes []Attribute        `json:"attributes,omitempty" msgpack:"attributes,omitempty"`
	DSR        []*int             `json:"dsr,omitempty" msgpack:"dsr,omitempty"`
	TSR        []int              `json:"tsr,omitempty" msgpack:"tsr,omitempty"`
	Fostered   bool               `json:"fostered,omitempty" msgpack:"fostered,omitempty"`
	Parts      []SerializablePart `json:"parts,omitempty" msgpack:"parts,omitempty"`
	Children   []SerializableNode `json:"children,omitempty" msgpack:"children,omitempty"`
}

// SerializablePart flattens a Part so both encoders see the same shape.
type SerializablePart struct {
	Literal string `json:"literal,omitempty" msgpack:"literal,omitempty"`
	Kind    string `json:"kind,omitempty" msgpack:"kind,omitempty"`
	Target  string `json:"target,omitempty" msgpack:"target,omitempty"`
	Index   int    `json:"i" msgpack:"i"`
}

type serializeTask struct {
	parent   *SerializableNode
	childIdx int // index in parent.Children
	nodeIdx  int // index in d.Nodes
}

// Serialize snapshots the subtree rooted at root.
func (d *Document) Serialize(root int) SerializableNode {
	tree := d.snapshot(root)

	stack := make([]serializeTask, 0, 16)
	for i, c := range d.Children(root) {
		stack = append(stack, serializeTask{&tree, i, c})
	}

	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		task.parent.Children[task.childIdx] = d.snapshot(task.nodeIdx)
		placed := &task.parent.Children[task.childIdx]

		for i, c := range d.Children(task.nodeIdx) {
			stack = append(stack, serializeTask{placed, i, c})
		}
	}

	return tree
}

func (d *Document) snapshot(id int) SerializableNode {
	n := d.Nodes[id]
	sn := SerializableNode{
		Type:     n.Type.String(),
		Name:     n.Name,
		Content:  n.Data,
		Children: make([]SerializableNode, d.ChildCount(id)),
	}
	if len(n.Attrs) > 0 {
		sn.Attributes = append([]Attribute(nil), n.Attrs...)
	}
	if info := n.Info; info != nil {
		sn.Fostered = info.Fostered
		if info.TSR != nil {
			sn.TSR = []int{info.TSR.Start, info.TSR.End}
		}
		if info.DSR != nil {
			sn.DSR = make([]*int, 4)
			for i, v := range [4]int{info.DSR.Start, info.DSR.End, info.DSR.OpenWidth, info.DSR.CloseWidth} {
				if Known(v) {
					sn.DSR[i] = &v
				}
			}
		}
	}
	if n.Mw != nil {
		for _, p := range n.Mw.Parts {
			if p.Invocation == nil {
				sn.Parts = append(sn.Parts, SerializablePart{Literal: p.Literal})
				continue
			}
			sn.Parts = append(sn.Parts, SerializablePart{
				Kind:   p.Invocation.Kind,
				Target: p.Invocation.Dict.Target.Wt,
				Index:  p.Invocation.Dict.I,
			})
		}
	}
	return sn
}

// Encoding formats accepted by Encode.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Encode writes the snapshot of the subtree rooted at root to w.
func (d *Document) Encode(w io.Writer, root int, format string) error {
	tree := d.Serialize(root)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tree)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(tree)
	default:
		return fmt.Errorf("unknown encoding format %q", format)
	}
}
