package browser

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-openclaw-highlighter/internal/locator"
	"go-openclaw-highlighter/internal/page"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/net/html"
)

const bindingName = "__jobhlMutated"

// observerScript reports every DOM change to the exposed binding. It is
// installed before any page script runs and survives navigations.
const observerScript = `(() => {
  if (window.__jobhlObserver) return;
  const notify = () => { if (window.` + bindingName + `) window.` + bindingName + `(); };
  const start = () => {
    window.__jobhlObserver = new MutationObserver(notify);
    window.__jobhlObserver.observe(document.documentElement, { childList: true, subtree: true, characterData: true });
    notify();
  };
  if (document.documentElement) start();
  else document.addEventListener('DOMContentLoaded', start);
})()`

// publishScript writes highlighted markup back to the live page. Card styles
// are attributes, which the observer ignores, so publishing them never
// bounces back as a mutation.
const publishScript = `(p) => {
  if (p.html !== null) {
    for (const sel of p.descriptionSelectors) {
      const el = document.querySelector(sel);
      if (el) { if (el.innerHTML !== p.html) el.innerHTML = p.html; break; }
    }
  }
  let cards = [];
  for (const sel of p.cardSelectors) {
    cards = document.querySelectorAll(sel);
    if (cards.length) break;
  }
  p.styles.forEach((s, i) => {
    if (!cards[i]) return;
    if (s) cards[i].setAttribute('style', s); else cards[i].removeAttribute('style');
  });
}`

// MirrorOptions says where the highlighted parts live on the page.
type MirrorOptions struct {
	Description locator.Locator
	Card        locator.Locator
	// Settle is the quiet period before the live DOM is copied.
	Settle time.Duration
	// SnapshotPath receives the mirrored document after each publish.
	SnapshotPath string
}

// Mirror keeps a page.Document in step with a live browser page and pushes
// the highlighter's result back into it.
type Mirror struct {
	pg   playwright.Page
	doc  *page.Document
	opts MirrorOptions

	changed   chan struct{}
	published chan struct{}

	lastHTML string
}

func NewMirror(pg playwright.Page, opts MirrorOptions) (*Mirror, error) {
	if opts.Settle <= 0 {
		opts.Settle = 50 * time.Millisecond
	}
	doc, err := page.ParseString("<html><head></head><body></body></html>")
	if err != nil {
		return nil, err
	}
	return &Mirror{
		pg:        pg,
		doc:       doc,
		opts:      opts,
		changed:   make(chan struct{}, 1),
		published: make(chan struct{}, 1),
	}, nil
}

// Document is the mirrored page, to be handed to the engine as its host.
func (m *Mirror) Document() *page.Document {
	return m.doc
}

// Attach installs the mutation observer. Call it before the first Goto.
func (m *Mirror) Attach() error {
	//the binding runs on the driver's dispatcher, so it only signals
	if err := m.pg.ExposeFunction(bindingName, func(args ...interface{}) interface{} {
		m.Notify()
		return nil
	}); err != nil {
		return fmt.Errorf("failed to expose mutation binding: %w", err)
	}
	if err := m.pg.AddInitScript(playwright.Script{Content: playwright.String(observerScript)}); err != nil {
		return fmt.Errorf("failed to install mutation observer: %w", err)
	}
	return nil
}

// Notify schedules a sync with the live page.
func (m *Mirror) Notify() {
	select {
	case m.changed <- struct{}{}:
	default:
	}
}

// PassDone schedules a publish. It is safe to call from inside an engine pass.
func (m *Mirror) PassDone(string) {
	select {
	case m.published <- struct{}{}:
	default:
	}
}

// Run syncs and publishes until ctx is done.
func (m *Mirror) Run(ctx context.Context) error {
	var syncTimer, publishTimer *time.Timer
	var syncC, publishC <-chan time.Time
	defer func() {
		if syncTimer != nil {
			syncTimer.Stop()
		}
		if publishTimer != nil {
			publishTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-m.changed:
			if syncTimer != nil {
				syncTimer.Stop()
			}
			syncTimer = time.NewTimer(m.opts.Settle)
			syncC = syncTimer.C

		case <-syncC:
			syncTimer, syncC = nil, nil
			if err := m.Sync(); err != nil {
				log.Printf("⚠️ Mirror sync failed: %v", err)
			}

		case <-m.published:
			if publishTimer != nil {
				publishTimer.Stop()
			}
			publishTimer = time.NewTimer(m.opts.Settle)
			publishC = publishTimer.C

		case <-publishC:
			publishTimer, publishC = nil, nil
			if err := m.Publish(); err != nil {
				log.Printf("⚠️ Mirror publish failed: %v", err)
			}
		}
	}
}

// Sync copies the live DOM into the mirrored document.
func (m *Mirror) Sync() error {
	content, err := m.pg.Content()
	if err != nil {
		return fmt.Errorf("failed to read page content: %w", err)
	}
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse page content: %w", err)
	}
	m.doc.Sync(root)
	return nil
}

// Publish writes the highlighted description and card styles to the live
// page and refreshes the snapshot file.
func (m *Mirror) Publish() error {
	payload := m.collect()
	var inner interface{}
	if payload.html != nil {
		inner = *payload.html
	}

	if _, err := m.pg.Evaluate(publishScript, map[string]interface{}{
		"descriptionSelectors": selectors(m.opts.Description),
		"cardSelectors":        selectors(m.opts.Card),
		"html":                 inner,
		"styles":               payload.styles,
	}); err != nil {
		return fmt.Errorf("failed to publish highlights: %w", err)
	}
	if payload.html != nil {
		m.lastHTML = *payload.html
	}

	if m.opts.SnapshotPath != "" {
		if err := m.WriteSnapshot(m.opts.SnapshotPath); err != nil {
			return err
		}
	}
	return nil
}

// WriteSnapshot renders the mirrored document to path.
func (m *Mirror) WriteSnapshot(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(m.doc.String()), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

type publishPayload struct {
	html   *string
	styles []string
}

// collect reads what to publish. The description markup is only sent when
// it changed since the last publish, so an unchanged description never
// triggers the live observer.
func (m *Mirror) collect() publishPayload {
	p := publishPayload{styles: []string{}}
	m.doc.View(func(root *html.Node) {
		if desc := m.opts.Description.First(root); desc != nil {
			inner := innerHTML(desc)
			if inner != m.lastHTML {
				p.html = &inner
			}
		}
		for _, card := range m.opts.Card.All(root) {
			p.styles = append(p.styles, attr(card, "style"))
		}
	})
	return p
}

func selectors(loc locator.Locator) []string {
	out := make([]string, 0, len(loc.Strategies))
	for _, s := range loc.Strategies {
		out = append(out, s.Selector)
	}
	return out
}

func innerHTML(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return ""
		}
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
