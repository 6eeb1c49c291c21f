package dom

import "strings"

// Attr returns the value of an attribute and whether it is present.
func (d *Document) Attr(id int, key string) (string, bool) {
	if !d.IsElement(id) {
		return "", false
	}
	for _, a := range d.Nodes[id].Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or "" when missing.
func (d *Document) AttrOr(id int, key string) string {
	v, _ := d.Attr(id, key)
	return v
}

func (d *Document) SetAttr(id int, key, val string) {
	n := &d.Nodes[id]
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attribute{Key: key, Val: val})
}

func (d *Document) RemoveAttr(id int, key string) {
	n := &d.Nodes[id]
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

// TypeOf returns the space separated typeof list of an element.
func (d *Document) TypeOf(id int) string {
	return d.AttrOr(id, "typeof")
}

// HasTypeOf reports whether typ is one of the element's types.
func (d *Document) HasTypeOf(id int, typ string) bool {
	for _, t := range strings.Fields(d.TypeOf(id)) {
		if t == typ {
			return true
		}
	}
	return false
}

// MatchTypeOf returns the first type accepted by match, or "".
func (d *Document) MatchTypeOf(id int, match func(string) bool) string {
	for _, t := range strings.Fields(d.TypeOf(id)) {
		if match(t) {
			return t
		}
	}
	return ""
}

// AddTypeOf adds typ to the element's types unless already present.
func (d *Document) AddTypeOf(id int, typ string, prepend bool) {
	if d.HasTypeOf(id, typ) {
		return
	}
	cur := d.TypeOf(id)
	switch {
	case cur == "":
		d.SetAttr(id, "typeof", typ)
	case prepend:
		d.SetAttr(id, "typeof", typ+" "+cur)
	default:
		d.SetAttr(id, "typeof", cur+" "+typ)
	}
}

// RemoveTypeOf drops every type accepted by match, removing the attribute
// when nothing is left.
func (d *Document) RemoveTypeOf(id int, match func(string) bool) {
	var keep []string
	for _, t := range strings.Fields(d.TypeOf(id)) {
		if !match(t) {
			keep = append(keep, t)
		}
	}
	if len(keep) == 0 {
		d.RemoveAttr(id, "typeof")
		return
	}
	d.SetAttr(id, "typeof", strings.Join(keep, " "))
}
