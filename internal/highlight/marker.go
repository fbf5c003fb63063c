// Package highlight wraps keyword matches found in text nodes with marker
// elements and removes them again without leaving fragmented text behind.
package highlight

import (
	"strings"

	"go-openclaw-highlighter/internal/filter"
	"go-openclaw-highlighter/internal/theme"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// DefaultMarkerClass is reserved for highlight markers.
	DefaultMarkerClass = "jobhl-mark"
	// TierAttr carries the tier of a marker.
	TierAttr = "data-jobhl-tier"
)

// Options controls marker creation.
type Options struct {
	MarkerClass string
	// Style returns the inline style of a marker; nil uses theme.MarkerStyle.
	Style func(filter.Tier) string
}

func (o Options) markerClass() string {
	if o.MarkerClass == "" {
		return DefaultMarkerClass
	}
	return o.MarkerClass
}

func (o Options) style(t filter.Tier) string {
	if o.Style != nil {
		return o.Style(t)
	}
	return theme.MarkerStyle(t)
}

// IsMarker reports whether n is a highlight marker created with markerClass.
func IsMarker(n *html.Node, markerClass string) bool {
	if n == nil || n.Type != html.ElementNode || n.DataAtom != atom.Span {
		return false
	}
	if markerClass == "" {
		markerClass = DefaultMarkerClass
	}
	hasClass, hasTier := false, false
	for _, a := range n.Attr {
		switch a.Key {
		case "class":
			for _, c := range strings.Fields(a.Val) {
				if c == markerClass {
					hasClass = true
				}
			}
		case TierAttr:
			hasTier = true
		}
	}
	return hasClass && hasTier
}

// Markers returns every marker under root in document order.
func Markers(root *html.Node, markerClass string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if IsMarker(c, markerClass) {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

func newMarker(span filter.MatchSpan, opts Options) *html.Node {
	m := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Span,
		Data:     "span",
		Attr: []html.Attribute{
			{Key: "class", Val: opts.markerClass()},
			{Key: TierAttr, Val: span.Tier.String()},
			{Key: "style", Val: opts.style(span.Tier)},
		},
	}
	m.AppendChild(&html.Node{Type: html.TextNode, Data: span.Text})
	return m
}

// TextContent concatenates all descendant text of n, like DOM textContent.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				sb.WriteString(c.Data)
			case html.ElementNode, html.DocumentNode:
				walk(c)
			}
		}
	}
	walk(n)
	return sb.String()
}
