package dom

import "strings"

// NodeType defines the kind of a tree node.
type NodeType int

const (
	NodeElement NodeType = iota
	NodeText
	NodeComment

	// NumNodeTypes is the total number of Node types. Should be placed as last const.
	NumNodeTypes
)

// NoNode is the null link.
const NoNode = -1

// RootID is the index of the document root in the arena.
const RootID = 0

// Attribute is a single element attribute. Keys are unique per element.
type Attribute struct {
	Key string `json:"key" msgpack:"key"`
	Val string `json:"val" msgpack:"val"`
}

// Node is a single tree node. Nodes live in the Document arena and link to
// each other by index.
type Node struct {
	Type NodeType

	// Name is the lower-case tag name of an element.
	Name string

	// Data is the content of a text or comment node.
	Data string

	Attrs []Attribute

	Parent      int
	FirstChild  int
	LastChild   int
	PrevSibling int
	NextSibling int

	// Info is the parsing record of an element; nil for text and comments.
	Info *ParseInfo

	// Mw is the encapsulation metadata attached to a template target.
	Mw *DataMw
}

func newNode(typ NodeType) Node {
	return Node{
		Type:        typ,
		Parent:      NoNode,
		FirstChild:  NoNode,
		LastChild:   NoNode,
		PrevSibling: NoNode,
		NextSibling: NoNode,
	}
}

// Document is the arena-backed annotated tree. Detached nodes stay in the
// arena but are unreachable from the root.
type Document struct {
	Nodes []Node
}

// NewDocument returns a document whose root is a "body" element.
func NewDocument() *Document {
	d := &Document{Nodes: make([]Node, 0, 64)}
	d.CreateElement("body")
	return d
}

func (d *Document) add(n Node) int {
	d.Nodes = append(d.Nodes, n)
	return len(d.Nodes) - 1
}

func (d *Document) CreateElement(name string) int {
	n := newNode(NodeElement)
	n.Name = strings.ToLower(name)
	n.Info = &ParseInfo{}
	return d.add(n)
}

func (d *Document) CreateText(data string) int {
	n := newNode(NodeText)
	n.Data = data
	return d.add(n)
}

func (d *Document) CreateComment(data string) int {
	n := newNode(NodeComment)
	n.Data = data
	return d.add(n)
}

func (d *Document) valid(id int) bool {
	return id >= 0 && id < len(d.Nodes)
}

// Type returns the node type; NoNode reports NumNodeTypes.
func (d *Document) Type(id int) NodeType {
	if !d.valid(id) {
		return NumNodeTypes
	}
	return d.Nodes[id].Type
}

func (d *Document) IsElement(id int) bool { return d.Type(id) == NodeElement }
func (d *Document) IsText(id int) bool    { return d.Type(id) == NodeText }
func (d *Document) IsComment(id int) bool { return d.Type(id) == NodeComment }

// Name returns the tag name of an element, "" for anything else.
func (d *Document) Name(id int) string {
	if !d.IsElement(id) {
		return ""
	}
	return d.Nodes[id].Name
}

// Data returns the text of a text or comment node.
func (d *Document) Data(id int) string {
	if !d.valid(id) {
		return ""
	}
	return d.Nodes[id].Data
}

func (d *Document) SetData(id int, data string) {
	d.Nodes[id].Data = data
}

// Info returns the parsing record of an element, nil otherwise.
func (d *Document) Info(id int) *ParseInfo {
	if !d.IsElement(id) {
		return nil
	}
	return d.Nodes[id].Info
}

func (d *Document) Mw(id int) *DataMw {
	if !d.valid(id) {
		return nil
	}
	return d.Nodes[id].Mw
}

func (d *Document) SetMw(id int, mw *DataMw) {
	d.Nodes[id].Mw = mw
}

func (d *Document) Parent(id int) int {
	if !d.valid(id) {
		return NoNode
	}
	return d.Nodes[id].Parent
}

func (d *Document) FirstChild(id int) int {
	if !d.valid(id) {
		return NoNode
	}
	return d.Nodes[id].FirstChild
}

func (d *Document) LastChild(id int) int {
	if !d.valid(id) {
		return NoNode
	}
	return d.Nodes[id].LastChild
}

func (d *Document) PrevSibling(id int) int {
	if !d.valid(id) {
		return NoNode
	}
	return d.Nodes[id].PrevSibling
}

func (d *Document) NextSibling(id int) int {
	if !d.valid(id) {
		return NoNode
	}
	return d.Nodes[id].NextSibling
}

// Children returns the child ids of a node in document order.
func (d *Document) Children(id int) []int {
	var out []int
	for c := d.FirstChild(id); c != NoNode; c = d.Nodes[c].NextSibling {
		out = append(out, c)
	}
	return out
}

func (d *Document) ChildCount(id int) int {
	n := 0
	for c := d.FirstChild(id); c != NoNode; c = d.Nodes[c].NextSibling {
		n++
	}
	return n
}

// RemoveChild detaches a node from its parent. The node keeps its subtree.
func (d *Document) RemoveChild(id int) {
	if !d.valid(id) {
		return
	}
	n := &d.Nodes[id]
	if n.Parent == NoNode {
		return
	}
	p := &d.Nodes[n.Parent]
	if n.PrevSibling != NoNode {
		d.Nodes[n.PrevSibling].NextSibling = n.NextSibling
	} else {
		p.FirstChild = n.NextSibling
	}
	if n.NextSibling != NoNode {
		d.Nodes[n.NextSibling].PrevSibling = n.PrevSibling
	} else {
		p.LastChild = n.PrevSibling
	}
	n.Parent, n.PrevSibling, n.NextSibling = NoNode, NoNode, NoNode
}

// InsertBefore inserts child into parent right before ref. A ref of NoNode
// appends. The child is detached from its old position first.
func (d *Document) InsertBefore(parent, child, ref int) {
	if child == ref {
		return
	}
	d.RemoveChild(child)
	c := &d.Nodes[child]
	c.Parent = parent
	if ref == NoNode {
		last := d.Nodes[parent].LastChild
		c.PrevSibling = last
		if last != NoNode {
			d.Nodes[last].NextSibling = child
		} else {
			d.Nodes[parent].FirstChild = child
		}
		d.Nodes[parent].LastChild = child
		return
	}
	prev := d.Nodes[ref].PrevSibling
	c.PrevSibling = prev
	c.NextSibling = ref
	d.Nodes[ref].PrevSibling = child
	if prev != NoNode {
		d.Nodes[prev].NextSibling = child
	} else {
		d.Nodes[parent].FirstChild = child
	}
}

func (d *Document) AppendChild(parent, child int) {
	d.InsertBefore(parent, child, NoNode)
}

// ReplaceChild puts newChild where old was and detaches old.
func (d *Document) ReplaceChild(newChild, old int) {
	parent := d.Parent(old)
	if parent == NoNode {
		return
	}
	d.InsertBefore(parent, newChild, old)
	d.RemoveChild(old)
}

// TextContent concatenates the text descendants of a node.
func (d *Document) TextContent(id int) string {
	if d.IsText(id) {
		return d.Data(id)
	}
	var sb strings.Builder
	stack := []int{}
	for c := d.LastChild(id); c != NoNode; c = d.PrevSibling(c) {
		stack = append(stack, c)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch d.Type(n) {
		case NodeText:
			sb.WriteString(d.Data(n))
		case NodeElement:
			for c := d.LastChild(n); c != NoNode; c = d.PrevSibling(c) {
				stack = append(stack, c)
			}
		}
	}
	return sb.String()
}

// Walk visits the subtree rooted at id in document order. Returning false
// from fn skips the node's children.
func (d *Document) Walk(id int, fn func(id int) bool) {
	stack := []int{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			continue
		}
		for c := d.LastChild(n); c != NoNode; c = d.PrevSibling(c) {
			stack = append(stack, c)
		}
	}
}

// ClearScratch drops the transient per-element state of every reachable element.
func (d *Document) ClearScratch(root int) {
	d.Walk(root, func(id int) bool {
		if info := d.Info(id); info != nil {
			info.Tmp = nil
		}
		return true
	})
}
