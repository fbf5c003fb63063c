// Package page holds the live document the highlighter works on. A Document
// owns an HTML tree, serialises access to it and tells monitors when the
// page, rather than the highlighter, changed a watched subtree.
package page

import (
	"bytes"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"strings"
	"sync"
	"time"

	"go-openclaw-highlighter/internal/locator"
	"go-openclaw-highlighter/internal/monitor"

	"golang.org/x/net/html"
)

// ErrNotAttached is returned by Observe for a node outside the document.
var ErrNotAttached = errors.New("node is not attached to the document")

const eventBuffer = 16

// Document is a monitor.Host over an in-memory tree.
type Document struct {
	mu   sync.Mutex
	root *html.Node
	subs map[*subscription]struct{}
}

// New wraps an already parsed document node.
func New(root *html.Node) *Document {
	return &Document{root: root, subs: make(map[*subscription]struct{})}
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return New(root), nil
}

// ParseString is Parse for an in-memory string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Root returns the document node. Reading the tree outside Edit or Mutate
// is only safe from code already running inside one of them.
func (d *Document) Root() *html.Node {
	return d.root
}

func (d *Document) Find(loc locator.Locator) *html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return loc.First(d.root)
}

func (d *Document) Observe(node *html.Node) (monitor.Subscription, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if node == nil || !attached(d.root, node) {
		return nil, ErrNotAttached
	}
	s := &subscription{
		doc:         d,
		node:        node,
		events:      make(chan monitor.Event, eventBuffer),
		fingerprint: fingerprint(node),
	}
	d.subs[s] = struct{}{}
	return s, nil
}

// Edit runs the highlighter's changes. Subscriptions take the result as
// their new baseline and are not notified.
func (d *Document) Edit(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer d.rebase()
	fn()
}

// Mutate applies a change made by the page itself. Every subscription whose
// subtree changed receives a mutation event; subscriptions whose node left
// the document receive a detach event and are closed.
func (d *Document) Mutate(fn func(root *html.Node)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.root)

	now := time.Now()
	for s := range d.subs {
		if !attached(d.root, s.node) {
			s.send(monitor.Event{Kind: monitor.EventDetached, At: now})
			delete(d.subs, s)
			close(s.events)
			continue
		}
		fp := fingerprint(s.node)
		if fp == s.fingerprint {
			continue
		}
		s.fingerprint = fp
		s.send(monitor.Event{Kind: monitor.EventMutation, At: now})
	}
}

// Replace swaps the whole document content for a freshly parsed tree, the
// way a page navigation or a full re-render does.
func (d *Document) Replace(next *html.Node) {
	d.Mutate(func(root *html.Node) {
		for c := root.FirstChild; c != nil; {
			n := c.NextSibling
			root.RemoveChild(c)
			c = n
		}
		for c := next.FirstChild; c != nil; {
			n := c.NextSibling
			next.RemoveChild(c)
			root.AppendChild(c)
			c = n
		}
	})
}

// Sync brings the document in line with next, a fresh parse of the same
// page. Nodes whose tag and position are unchanged are kept and updated in
// place, so watches on them survive; everything else is replaced.
func (d *Document) Sync(next *html.Node) {
	d.Mutate(func(root *html.Node) {
		reconcile(root, next)
	})
}

// View runs fn with the tree locked for reading. fn must not modify it.
func (d *Document) View(fn func(root *html.Node)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.root)
}

// Render writes the current document.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String renders the current document, or returns "" on a render error.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Subscribers reports how many watches are live.
func (d *Document) Subscribers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// rebase refreshes every baseline after an Edit. Callers hold d.mu.
func (d *Document) rebase() {
	for s := range d.subs {
		s.fingerprint = fingerprint(s.node)
	}
}

type subscription struct {
	doc         *Document
	node        *html.Node
	events      chan monitor.Event
	fingerprint uint64
}

func (s *subscription) Events() <-chan monitor.Event {
	return s.events
}

func (s *subscription) Close() {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	delete(s.doc.subs, s)
}

// send never blocks. A full buffer already guarantees the monitor re-arms,
// so a dropped mutation event loses nothing.
func (s *subscription) send(ev monitor.Event) {
	select {
	case s.events <- ev:
	default:
	}
}

func reconcile(dst, src *html.Node) {
	d := dst.FirstChild
	for s := src.FirstChild; s != nil; {
		next := s.NextSibling
		if d != nil && sameKind(d, s) {
			copyNode(d, s)
			reconcile(d, s)
			d = d.NextSibling
		} else {
			src.RemoveChild(s)
			dst.InsertBefore(s, d)
		}
		s = next
	}
	for d != nil {
		next := d.NextSibling
		dst.RemoveChild(d)
		d = next
	}
}

func sameKind(a, b *html.Node) bool {
	if a.Type != b.Type {
		return false
	}
	if a.Type == html.ElementNode {
		return a.Data == b.Data && a.Namespace == b.Namespace
	}
	return true
}

func copyNode(dst, src *html.Node) {
	if dst.Data != src.Data {
		dst.Data = src.Data
	}
	if dst.Type == html.ElementNode && !sameAttrs(dst.Attr, src.Attr) {
		dst.Attr = append([]html.Attribute(nil), src.Attr...)
	}
}

func sameAttrs(a, b []html.Attribute) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func attached(root, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

func fingerprint(n *html.Node) uint64 {
	h := fnv.New64a()
	_ = html.Render(h, n)
	return h.Sum64()
}
