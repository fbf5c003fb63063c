// Package keywords provides the keyword collaborator: normalisation of user
// input and sources that hand the current keyword set to the highlighter and
// push updates to it.
package keywords

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Source owns the keyword set. Consumers never modify what Get returns.
type Source interface {
	Get() []string
	// OnChange registers fn for every later change and returns a func that
	// unregisters it.
	OnChange(fn func([]string)) (cancel func())
}

// Normalize trims, NFC-normalises and drops blank keywords, then removes
// case-insensitive duplicates keeping the first spelling and order.
func Normalize(raw []string) []string {
	folder := cases.Fold()
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, kw := range raw {
		kw = strings.TrimSpace(norm.NFC.String(kw))
		if kw == "" {
			continue
		}
		key := folder.String(kw)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}

// Parse splits a comma or newline separated list, as typed into a chat or a
// form, and normalises it.
func Parse(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	return Normalize(fields)
}

// Equal reports whether two normalised sets hold the same keywords in order.
func Equal(a, b []string) bool {
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

// listeners is the subscriber list shared by the sources.
type listeners struct {
	mu   sync.Mutex
	next int
	fns  map[int]func([]string)
}

func (l *listeners) add(fn func([]string)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func([]string))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.fns, id)
	}
}

func (l *listeners) notify(set []string) {
	l.mu.Lock()
	fns := make([]func([]string), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(clone(set))
	}
}

func clone(set []string) []string {
	out := make([]string, len(set))
	copy(out, set)
	return out
}

// Memory is an in-process Source.
type Memory struct {
	mu        sync.RWMutex
	set       []string
	listeners listeners
}

// NewMemory returns a Memory source holding the normalised initial set.
func NewMemory(initial ...string) *Memory {
	return &Memory{set: Normalize(initial)}
}

func (m *Memory) Get() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.set)
}

func (m *Memory) OnChange(fn func([]string)) func() {
	return m.listeners.add(fn)
}

// Set replaces the keyword set and notifies subscribers when it changed.
func (m *Memory) Set(raw []string) []string {
	set := Normalize(raw)
	m.mu.Lock()
	changed := !Equal(m.set, set)
	m.set = set
	m.mu.Unlock()

	if changed {
		m.listeners.notify(set)
	}
	return clone(set)
}
