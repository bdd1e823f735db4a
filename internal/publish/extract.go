package publish

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// document is the part of a generated page that is re-wrapped on publish.
type document struct {
	Title string
	Body  string
}

// extract parses an HTML page and returns its title text and the inner
// HTML of its body.
func extract(r io.Reader) (document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return document{}, fmt.Errorf("parse html: %w", err)
	}

	var doc document
	if n := find(root, atom.Title); n != nil {
		doc.Title = strings.TrimSpace(textOf(n))
	}
	if n := find(root, atom.Body); n != nil {
		var buf bytes.Buffer
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return document{}, fmt.Errorf("render body: %w", err)
			}
		}
		doc.Body = strings.TrimSpace(buf.String())
	}
	return doc, nil
}

func find(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, a); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		} else {
			sb.WriteString(textOf(c))
		}
	}
	return sb.String()
}
