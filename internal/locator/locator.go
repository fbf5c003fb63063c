// Package locator finds elements of the host page through ordered lists of
// CSS strategies, so markup changes on the job site are configuration edits.
package locator

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Strategy is one way of finding an element.
type Strategy struct {
	Selector string
	matcher  cascadia.SelectorGroup
}

// Locator is an ordered fallback chain of strategies.
type Locator struct {
	Name       string
	Strategies []Strategy
}

// Compile builds a Locator from CSS selectors, tried in the given order.
func Compile(name string, selectors ...string) (Locator, error) {
	loc := Locator{Name: name}
	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		group, err := cascadia.ParseGroup(sel)
		if err != nil {
			return Locator{}, fmt.Errorf("locator %s: invalid selector %q: %w", name, sel, err)
		}
		loc.Strategies = append(loc.Strategies, Strategy{Selector: sel, matcher: group})
	}
	if len(loc.Strategies) == 0 {
		return Locator{}, fmt.Errorf("locator %s: no selectors", name)
	}
	return loc, nil
}

// MustCompile is Compile for selectors known at build time.
func MustCompile(name string, selectors ...string) Locator {
	loc, err := Compile(name, selectors...)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsZero reports whether the locator has no strategies.
func (l Locator) IsZero() bool {
	return len(l.Strategies) == 0
}

// First returns the first descendant of root matched by the first strategy
// that matches anything, or nil.
func (l Locator) First(root *html.Node) *html.Node {
	if root == nil {
		return nil
	}
	for _, s := range l.Strategies {
		if n := cascadia.Query(root, s.matcher); n != nil {
			return n
		}
	}
	return nil
}

// All returns every descendant matched by the first strategy that matches anything.
func (l Locator) All(root *html.Node) []*html.Node {
	if root == nil {
		return nil
	}
	for _, s := range l.Strategies {
		if nodes := cascadia.QueryAll(root, s.matcher); len(nodes) > 0 {
			return nodes
		}
	}
	return nil
}

// Each returns every descendant matched by any strategy, in strategy order
// and without duplicates. Used where several selectors name sibling kinds of
// element rather than fallbacks for one.
func (l Locator) Each(root *html.Node) []*html.Node {
	if root == nil {
		return nil
	}
	seen := make(map[*html.Node]bool)
	var out []*html.Node
	for _, s := range l.Strategies {
		for _, n := range cascadia.QueryAll(root, s.matcher) {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// Text tries each strategy in order and returns the trimmed text of the first
// element whose text is not blank.
func (l Locator) Text(root *html.Node) string {
	if root == nil {
		return ""
	}
	for _, s := range l.Strategies {
		n := cascadia.Query(root, s.matcher)
		if n == nil {
			continue
		}
		if text := strings.TrimSpace(textContent(n)); text != "" {
			return text
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
