package htmltable

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// findFirst returns the first element below n with the given tag.
func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every element below n with the given tag, without
// descending into nested tables.
func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.DataAtom == a {
				out = append(out, c)
			}
			if c.DataAtom != atom.Table {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// cellsOf returns the td and th children of a row.
func cellsOf(tr *html.Node) []*html.Node {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			cells = append(cells, c)
		}
	}
	return cells
}

func hasCell(cells []*html.Node, a atom.Atom) bool {
	for _, c := range cells {
		if c.DataAtom == a {
			return true
		}
	}
	return false
}

// innerHTML renders the children of n, trimmed.
func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return strings.TrimSpace(buf.String())
}

// textContent returns the text below n with whitespace collapsed.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var getText func(*html.Node)
	getText = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			getText(c)
		}
	}
	getText(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// setAttr sets an attribute, removing it when val is empty.
func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key != key {
			continue
		}
		if val == "" {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
		} else {
			n.Attr[i].Val = val
		}
		return
	}
	if val != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	}
}
