package highlight

import (
	"go-openclaw-highlighter/internal/filter"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// skipped elements hold raw text or inert markup that must never be wrapped.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Textarea: true,
	atom.Template: true,
}

// Apply wraps every keyword match in the text nodes under container and
// returns how many markers it created. Existing markers are left alone, so
// running Apply twice without Remove never nests markers.
func Apply(container *html.Node, m *filter.Matcher, opts Options) int {
	if container == nil || m == nil || m.Empty() {
		return 0
	}

	//collect first: replacing nodes while walking siblings would skip some
	var texts []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				texts = append(texts, c)
			case html.ElementNode:
				if skipped[c.DataAtom] || IsMarker(c, opts.markerClass()) {
					continue
				}
				walk(c)
			}
		}
	}
	walk(container)

	created := 0
	for _, t := range texts {
		created += wrapText(t, m, opts)
	}
	return created
}

// wrapText replaces one text node by text/marker fragments in original order.
func wrapText(t *html.Node, m *filter.Matcher, opts Options) int {
	spans := m.Find(t.Data)
	if len(spans) == 0 || t.Parent == nil {
		return 0
	}

	parent := t.Parent
	text := t.Data
	last := 0
	for _, s := range spans {
		if s.Start > last {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[last:s.Start]}, t)
		}
		parent.InsertBefore(newMarker(s, opts), t)
		last = s.End
	}
	if last < len(text) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[last:]}, t)
	}
	parent.RemoveChild(t)
	return len(spans)
}
