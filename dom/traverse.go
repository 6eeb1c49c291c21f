package dom

// AtTheTop reports whether id is a root of the tree.
func (d *Document) AtTheTop(id int) bool {
	return d.Parent(id) == NoNode
}

// PathToRoot returns id followed by each of its ancestors.
func (d *Document) PathToRoot(id int) []int {
	var path []int
	for n := id; n != NoNode; n = d.Parent(n) {
		path = append(path, n)
	}
	return path
}

// InSiblingOrder reports whether b is a (possibly equal) later sibling of a.
func (d *Document) InSiblingOrder(a, b int) bool {
	if a == NoNode || b == NoNode {
		return false
	}
	for n := a; n != NoNode; n = d.NextSibling(n) {
		if n == b {
			return true
		}
	}
	return false
}

// IsFosterablePosition reports whether content at id would be moved out of a
// table by the tree builder.
func (d *Document) IsFosterablePosition(id int) bool {
	p := d.Parent(id)
	return p != NoNode && fosterParentTags[d.Name(p)]
}

// IsNestedInListItem reports whether any ancestor of id is a list item.
func (d *Document) IsNestedInListItem(id int) bool {
	for p := d.Parent(id); p != NoNode; p = d.Parent(p) {
		if listItemTags[d.Name(p)] {
			return true
		}
	}
	return false
}

// IsFostered reports whether an element was moved out of a table.
func (d *Document) IsFostered(id int) bool {
	info := d.Info(id)
	return info != nil && info.Fostered
}
