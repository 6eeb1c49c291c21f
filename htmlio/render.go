package htmlio

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/net/html"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

type renderTask struct {
	id     int
	parent *html.Node
}

// Render writes the children of root as HTML. Scratch state is not written.
func Render(w io.Writer, doc *dom.Document, root int) error {
	holder := &html.Node{Type: html.ElementNode, Data: "body"}

	stack := []renderTask{}
	children := doc.Children(root)
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, renderTask{id: children[i], parent: holder})
	}

	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		hn, err := toHTML(doc, task.id)
		if err != nil {
			return err
		}
		task.parent.AppendChild(hn)

		kids := doc.Children(task.id)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, renderTask{id: kids[i], parent: hn})
		}
	}

	for c := holder.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
	}
	return nil
}

func toHTML(doc *dom.Document, id int) (*html.Node, error) {
	switch doc.Type(id) {
	case dom.NodeText:
		return &html.Node{Type: html.TextNode, Data: doc.Data(id)}, nil
	case dom.NodeComment:
		return &html.Node{Type: html.CommentNode, Data: doc.Data(id)}, nil
	}

	hn := &html.Node{Type: html.ElementNode, Data: doc.Name(id)}
	for _, a := range doc.Nodes[id].Attrs {
		hn.Attr = append(hn.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}

	if info := doc.Info(id); info != nil {
		persisted := *info
		persisted.Tmp = nil
		b, err := json.Marshal(&persisted)
		if err != nil {
			return nil, fmt.Errorf("<%s>: %s: %w", hn.Data, attrParseInfo, err)
		}
		if string(b) != "{}" {
			hn.Attr = append(hn.Attr, html.Attribute{Key: attrParseInfo, Val: string(b)})
		}
	}

	if mw := doc.Mw(id); mw != nil {
		b, err := json.Marshal(mw)
		if err != nil {
			return nil, fmt.Errorf("<%s>: %s: %w", hn.Data, attrDataMw, err)
		}
		hn.Attr = append(hn.Attr, html.Attribute{Key: attrDataMw, Val: string(b)})
	}
	return hn, nil
}
