package highlight

import (
	"strings"

	"golang.org/x/net/html"
)

// Remove turns every marker under container back into plain text and merges
// the surrounding text run into a single node. It returns how many markers
// were removed; a container without markers is left untouched.
func Remove(container *html.Node, markerClass string) int {
	markers := Markers(container, markerClass)
	for _, mk := range markers {
		parent := mk.Parent
		if parent == nil {
			continue
		}
		text := &html.Node{Type: html.TextNode, Data: TextContent(mk)}
		parent.InsertBefore(text, mk)
		parent.RemoveChild(mk)
		mergeTextRun(text)
	}
	return len(markers)
}

// mergeTextRun folds the contiguous text siblings around n into one node.
// Empty text nodes in the run disappear; the run is dropped entirely if it
// ends up empty.
func mergeTextRun(n *html.Node) {
	parent := n.Parent
	first := n
	for first.PrevSibling != nil && first.PrevSibling.Type == html.TextNode {
		first = first.PrevSibling
	}

	var sb strings.Builder
	var run []*html.Node
	for c := first; c != nil && c.Type == html.TextNode; c = c.NextSibling {
		sb.WriteString(c.Data)
		run = append(run, c)
	}

	merged := sb.String()
	keep := run[0]
	for _, c := range run[1:] {
		parent.RemoveChild(c)
	}
	if merged == "" {
		parent.RemoveChild(keep)
		return
	}
	keep.Data = merged
}
