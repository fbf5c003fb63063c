package monitor

import (
	"time"

	"go-openclaw-highlighter/internal/locator"

	"golang.org/x/net/html"
)

// EventKind distinguishes mutation notifications from loss of the target.
type EventKind int

const (
	// EventMutation reports a structural change inside the watched subtree.
	EventMutation EventKind = iota
	// EventDetached reports that the watched node left the document.
	EventDetached
)

func (k EventKind) String() string {
	if k == EventDetached {
		return "detached"
	}
	return "mutation"
}

// Event is one notification delivered by a Subscription.
type Event struct {
	Kind EventKind
	At   time.Time
}

// Subscription is an active watch on one subtree. Events is closed by the
// host once the watched node is detached; Close releases the watch early.
type Subscription interface {
	Events() <-chan Event
	Close()
}

// Host is the page the monitor works on. It decouples the monitor from the
// concrete observation mechanism.
type Host interface {
	// Find locates a node, or returns nil when it is not on the page (yet).
	Find(loc locator.Locator) *html.Node
	// Observe starts watching node's subtree.
	Observe(node *html.Node) (Subscription, error)
	// Edit runs the highlighter's own tree surgery. Changes made inside fn
	// are not reported back as mutations.
	Edit(fn func())
}
