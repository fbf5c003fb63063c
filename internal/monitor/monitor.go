// Package monitor keeps a highlighting pass in sync with a subtree of a page
// that changes underneath it. Each Monitor finds its target, watches it,
// coalesces bursts of mutations into one pass and finds the target again
// when the page replaces it.
package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"go-openclaw-highlighter/internal/locator"

	"golang.org/x/net/html"
)

// State is the monitor's position in its lifecycle.
type State int32

const (
	StateUnattached State = iota
	StateAttached
	StatePending
	StateFiring
)

func (s State) String() string {
	switch s {
	case StateAttached:
		return "attached"
	case StatePending:
		return "pending"
	case StateFiring:
		return "firing"
	default:
		return "unattached"
	}
}

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultPollTimeout  = 10 * time.Second
	DefaultDebounce     = 300 * time.Millisecond
)

// PassFunc re-highlights the attached target. It runs inside Host.Edit on
// the monitor's goroutine, so passes of one monitor never overlap.
type PassFunc func(node *html.Node)

// Config describes one watched target.
type Config struct {
	Name         string
	Locator      locator.Locator
	Debounce     time.Duration
	PollInterval time.Duration
	PollTimeout  time.Duration
	Pass         PassFunc
}

func (c *Config) defaults() {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = DefaultPollTimeout
	}
	if c.Name == "" {
		c.Name = c.Locator.Name
	}
}

type job struct {
	fn     func(*html.Node)
	result chan bool
}

// Monitor owns at most one Subscription at a time. All fields below the
// atomics are only touched by the run goroutine.
type Monitor struct {
	host Host
	cfg  Config

	state  atomic.Int32
	idle   atomic.Bool
	passes atomic.Int64

	work      chan job
	reacquire chan struct{}

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}

	node *html.Node
	sub  Subscription
}

// New creates a Monitor. Call Start to begin acquisition.
func New(host Host, cfg Config) *Monitor {
	cfg.defaults()
	return &Monitor{
		host:      host,
		cfg:       cfg,
		work:      make(chan job),
		reacquire: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Name returns the target name.
func (m *Monitor) Name() string {
	return m.cfg.Name
}

// State returns the current lifecycle state.
func (m *Monitor) State() State {
	return State(m.state.Load())
}

// Idle reports whether the last acquisition gave up and the monitor is
// waiting for Reacquire.
func (m *Monitor) Idle() bool {
	return m.idle.Load()
}

// Passes returns how many debounced or initial passes have run.
func (m *Monitor) Passes() int64 {
	return m.passes.Load()
}

// Done is closed once the monitor has stopped and released its watch.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// Start launches the monitor goroutine. Calling it more than once has no effect.
func (m *Monitor) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		ctx, m.cancel = context.WithCancel(ctx)
		go m.run(ctx)
	})
}

// Stop releases the watch and waits for the goroutine to exit.
func (m *Monitor) Stop() {
	started := false
	m.startOnce.Do(func() { close(m.done) })
	if m.cancel != nil {
		started = true
		m.cancel()
	}
	if started {
		<-m.done
	}
}

// Reacquire restarts acquisition if the monitor previously gave up. It never
// blocks and is a no-op while attached.
func (m *Monitor) Reacquire() {
	select {
	case m.reacquire <- struct{}{}:
	default:
	}
}

// Do runs fn against the attached node on the monitor goroutine, outside
// the debounce. It returns false if the monitor is not attached or stopped.
func (m *Monitor) Do(ctx context.Context, fn func(*html.Node)) bool {
	j := job{fn: fn, result: make(chan bool, 1)}
	select {
	case m.work <- j:
	case <-ctx.Done():
		return false
	case <-m.done:
		return false
	}
	select {
	case ok := <-j.result:
		return ok
	case <-ctx.Done():
		return false
	case <-m.done:
		return false
	}
}

func (m *Monitor) setState(s State) {
	m.state.Store(int32(s))
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)
	defer m.release()

	for {
		if !m.acquire(ctx) {
			if ctx.Err() != nil {
				return
			}
			log.Printf("⏳ [%s] target not found within %v, giving up", m.cfg.Name, m.cfg.PollTimeout)
			m.idle.Store(true)
			if !m.waitReacquire(ctx) {
				return
			}
			m.idle.Store(false)
			continue
		}

		log.Printf("👀 [%s] attached", m.cfg.Name)
		m.fire()
		if !m.watch(ctx) {
			return
		}
		log.Printf("🔌 [%s] target detached, re-acquiring", m.cfg.Name)
	}
}

// acquire polls for the target until it is found and observed, the poll
// timeout elapses or ctx ends.
func (m *Monitor) acquire(ctx context.Context) bool {
	deadline := time.Now().Add(m.cfg.PollTimeout)
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if node := m.host.Find(m.cfg.Locator); node != nil {
			sub, err := m.host.Observe(node)
			if err == nil {
				m.node, m.sub = node, sub
				m.setState(StateAttached)
				return true
			}
			log.Printf("⚠️ [%s] observe failed: %v", m.cfg.Name, err)
		}
		if !time.Now().Before(deadline) {
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case j := <-m.work:
			j.result <- false
		case <-m.reacquire:
		case <-ticker.C:
		}
	}
}

func (m *Monitor) waitReacquire(ctx context.Context) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case j := <-m.work:
			j.result <- false
		case <-m.reacquire:
			return true
		}
	}
}

// watch runs the attached/pending/firing cycle. It returns true when the
// target was detached and false when ctx ended.
func (m *Monitor) watch(ctx context.Context) bool {
	var timer *time.Timer
	var timerC <-chan time.Time
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
	}
	defer stopTimer()

	events := m.sub.Events()
	for {
		select {
		case <-ctx.Done():
			return false

		case ev, ok := <-events:
			if !ok || ev.Kind == EventDetached {
				m.release()
				return true
			}
			//every notification re-arms, including ones queued during a pass
			stopTimer()
			timer = time.NewTimer(m.cfg.Debounce)
			timerC = timer.C
			m.setState(StatePending)

		case <-timerC:
			timer, timerC = nil, nil
			m.fire()

		case j := <-m.work:
			j.result <- m.runJob(j.fn)

		case <-m.reacquire:
		}
	}
}

func (m *Monitor) fire() {
	m.setState(StateFiring)
	if m.cfg.Pass != nil {
		if err := m.safeEdit(m.cfg.Pass); err != nil {
			log.Printf("⚠️ [%s] pass failed: %v", m.cfg.Name, err)
		}
	}
	m.passes.Add(1)
	m.setState(StateAttached)
}

func (m *Monitor) runJob(fn func(*html.Node)) bool {
	prev := m.State()
	m.setState(StateFiring)
	err := m.safeEdit(fn)
	m.setState(prev)
	if err != nil {
		log.Printf("⚠️ [%s] update failed: %v", m.cfg.Name, err)
		return false
	}
	return true
}

// safeEdit runs fn inside Host.Edit and turns a panic into an error so that
// one broken pass never takes the monitor down.
func (m *Monitor) safeEdit(fn func(*html.Node)) (err error) {
	node := m.node
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	m.host.Edit(func() { fn(node) })
	return nil
}

func (m *Monitor) release() {
	if m.sub != nil {
		m.sub.Close()
		m.sub = nil
	}
	m.node = nil
	m.setState(StateUnattached)
}
