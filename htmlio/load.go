// Package htmlio moves annotated trees in and out of HTML. Parsing records
// travel in the data-parsoid attribute and template metadata in data-mw.
package htmlio

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wikimedia/mediawiki-services-parsoid-sub010/dom"
)

const (
	attrParseInfo = "data-parsoid"
	attrDataMw    = "data-mw"
)

type loadTask struct {
	node   *html.Node
	parent int
}

// Load parses an HTML body fragment into a new document and returns it with
// the id of the body that holds the fragment.
func Load(r io.Reader) (*dom.Document, int, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, dom.NoNode, fmt.Errorf("parse html: %w", err)
	}

	doc := dom.NewDocument()
	stack := make([]loadTask, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, loadTask{node: nodes[i], parent: dom.RootID})
	}

	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		hn := task.node

		var id int
		switch hn.Type {
		case html.TextNode:
			id = doc.CreateText(hn.Data)
		case html.CommentNode:
			id = doc.CreateComment(hn.Data)
		case html.ElementNode:
			id = doc.CreateElement(hn.Data)
			if err := loadAttrs(doc, id, hn); err != nil {
				return nil, dom.NoNode, fmt.Errorf("<%s>: %w", hn.Data, err)
			}
		default:
			continue
		}
		doc.AppendChild(task.parent, id)

		for c := hn.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, loadTask{node: c, parent: id})
		}
	}

	return doc, dom.RootID, nil
}

func loadAttrs(doc *dom.Document, id int, hn *html.Node) error {
	for _, a := range hn.Attr {
		switch a.Key {
		case attrParseInfo:
			if err := json.Unmarshal([]byte(a.Val), doc.Info(id)); err != nil {
				return fmt.Errorf("%s: %w", attrParseInfo, err)
			}
		case attrDataMw:
			var mw dom.DataMw
			if err := json.Unmarshal([]byte(a.Val), &mw); err != nil {
				return fmt.Errorf("%s: %w", attrDataMw, err)
			}
			doc.SetMw(id, &mw)
		default:
			doc.SetAttr(id, a.Key, a.Val)
		}
	}
	return nil
}
