// Package engine wires the highlighter together: it keeps the card list and
// the job description of a page highlighted for the current keyword set and
// applies keyword updates pushed by the keyword collaborator.
package engine

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"go-openclaw-highlighter/internal/cards"
	"go-openclaw-highlighter/internal/filter"
	"go-openclaw-highlighter/internal/highlight"
	"go-openclaw-highlighter/internal/keywords"
	"go-openclaw-highlighter/internal/locator"
	"go-openclaw-highlighter/internal/models"
	"go-openclaw-highlighter/internal/monitor"
	"go-openclaw-highlighter/internal/theme"

	"golang.org/x/net/html"
)

// ErrNoKeywords is reported when an update carries no keyword data.
var ErrNoKeywords = errors.New("no keywords provided")

// NoKeywordsMessage is the message returned to the caller of such an update.
const NoKeywordsMessage = "No keywords provided."

// Monitor target names.
const (
	TargetCards       = "card_list"
	TargetDescription = "description"
)

const (
	DefaultCardSelector        = `.job-card-container`
	DefaultCardListSelector    = `body`
	DefaultDescriptionSelector = `.jobs-box__html-content`

	DefaultCardDebounce        = 100 * time.Millisecond
	DefaultDescriptionDebounce = 300 * time.Millisecond
)

// Locators groups every page location the engine depends on.
type Locators struct {
	Card        locator.Locator
	CardList    locator.Locator
	Description locator.Locator
	Cards       cards.Locators
}

func DefaultLocators() Locators {
	return Locators{
		Card:        locator.MustCompile("card", DefaultCardSelector),
		CardList:    locator.MustCompile(TargetCards, DefaultCardListSelector),
		Description: locator.MustCompile(TargetDescription, DefaultDescriptionSelector),
		Cards:       cards.DefaultLocators(),
	}
}

// Config tunes an Engine.
type Config struct {
	Locators    Locators
	MarkerClass string
	Sensitive   []string
	DarkClass   string
	// Theme overrides dark mode detection. When nil the engine reads the
	// dark class from the host document if the host exposes Root.
	Theme   theme.Signal
	Palette theme.CardPalette

	CardDebounce        time.Duration
	DescriptionDebounce time.Duration
	PollInterval        time.Duration
	PollTimeout         time.Duration

	// AfterPass is called at the end of every pass, still inside the host
	// edit. It must not block or call back into the host.
	AfterPass func(target string)
}

func DefaultConfig() Config {
	return Config{
		Locators:            DefaultLocators(),
		MarkerClass:         highlight.DefaultMarkerClass,
		Sensitive:           filter.DefaultSensitiveTerms,
		DarkClass:           theme.DefaultDarkClass,
		Palette:             theme.DefaultCardPalette,
		CardDebounce:        DefaultCardDebounce,
		DescriptionDebounce: DefaultDescriptionDebounce,
		PollInterval:        monitor.DefaultPollInterval,
		PollTimeout:         monitor.DefaultPollTimeout,
	}
}

type rootHost interface {
	Root() *html.Node
}

// Engine owns the two monitors of one page.
type Engine struct {
	host     monitor.Host
	source   keywords.Source
	cfg      Config
	signal   theme.Signal
	registry *monitor.Registry

	mu          sync.RWMutex
	current     []string
	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	cards       *monitor.Monitor
	description *monitor.Monitor
}

// New prepares an Engine for host. Nothing happens until Start.
func New(host monitor.Host, source keywords.Source, cfg Config) *Engine {
	signal := cfg.Theme
	if signal == nil {
		if rh, ok := host.(rootHost); ok {
			signal = theme.ClassSignal{Root: rh.Root, Class: cfg.DarkClass}
		} else {
			signal = theme.Static(false)
		}
	}
	return &Engine{
		host:     host,
		source:   source,
		cfg:      cfg,
		signal:   signal,
		registry: monitor.NewRegistry(),
	}
}

// Start reads the keyword set, attaches both monitors and subscribes to
// keyword changes. Calling Start again re-registers the monitors; the
// previous ones are released first.
func (e *Engine) Start(ctx context.Context) {
	e.setKeywords(e.source.Get())

	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
	runCtx := e.ctx
	e.mu.Unlock()

	desc := e.registry.Register(runCtx, e.host, monitor.Config{
		Name:         TargetDescription,
		Locator:      e.cfg.Locators.Description,
		Debounce:     e.cfg.DescriptionDebounce,
		PollInterval: e.cfg.PollInterval,
		PollTimeout:  e.cfg.PollTimeout,
		Pass:         e.firedDescription,
	})
	e.mu.Lock()
	e.description = desc
	e.mu.Unlock()

	list := e.registry.Register(runCtx, e.host, monitor.Config{
		Name:         TargetCards,
		Locator:      e.cfg.Locators.CardList,
		Debounce:     e.cfg.CardDebounce,
		PollInterval: e.cfg.PollInterval,
		PollTimeout:  e.cfg.PollTimeout,
		Pass:         e.firedCards,
	})

	e.mu.Lock()
	e.cards = list
	if e.unsubscribe == nil {
		e.unsubscribe = e.source.OnChange(e.onKeywords)
	}
	e.mu.Unlock()

	log.Printf("🚀 Highlighter started with %d keywords", len(e.Keywords()))
}

// Stop drops the keyword subscription and releases every watch.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.mu.Unlock()

	e.registry.Close()
	log.Println("🛑 Highlighter stopped")
}

// Keywords returns the set the last pass used.
func (e *Engine) Keywords() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.current))
	copy(out, e.current)
	return out
}

// Monitor returns the monitor for a target, or nil before Start.
func (e *Engine) Monitor(target string) *monitor.Monitor {
	return e.registry.Get(target)
}

// HandleUpdate applies a pushed keyword set to the cards and the description
// right away. Later monitor firings read the source again. A request without
// keyword data is answered with an error status and changes nothing; an empty
// set clears every highlight.
func (e *Engine) HandleUpdate(ctx context.Context, req models.UpdateRequest) models.UpdateResponse {
	if req.Keywords == nil {
		log.Printf("⚠️ Keyword update rejected: %v", ErrNoKeywords)
		return models.UpdateResponse{Status: models.UpdateStatusError, Message: NoKeywordsMessage}
	}

	set := keywords.Normalize(req.Keywords)
	e.apply(ctx, set)
	log.Printf("🔑 Applied %d keywords", len(set))
	return models.UpdateResponse{Status: models.UpdateStatusSuccess, Keywords: set}
}

func (e *Engine) onKeywords(set []string) {
	e.mu.RLock()
	ctx := e.ctx
	e.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}
	log.Printf("🔄 Keyword set changed: %d keywords", len(set))
	e.apply(ctx, set)
}

// apply runs both passes with set on their monitors. A monitor that is not
// attached fetches the set from the source on its next attach.
func (e *Engine) apply(ctx context.Context, set []string) {
	e.setKeywords(set)
	set = e.Keywords()

	e.mu.RLock()
	list, desc := e.cards, e.description
	e.mu.RUnlock()

	if list != nil {
		list.Do(ctx, func(n *html.Node) { e.cardPass(n, set) })
	}
	if desc != nil {
		desc.Do(ctx, func(n *html.Node) { e.descriptionPass(n, set) })
	}
}

func (e *Engine) setKeywords(set []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = keywords.Normalize(set)
}

// fetch reads the source on every monitor firing.
func (e *Engine) fetch() []string {
	e.setKeywords(e.source.Get())
	return e.Keywords()
}

func (e *Engine) firedCards(list *html.Node) {
	e.cardPass(list, e.fetch())
}

func (e *Engine) firedDescription(container *html.Node) {
	e.descriptionPass(container, e.fetch())
}

func (e *Engine) cardPass(list *html.Node, set []string) {
	dark := e.signal.IsDarkMode()
	classifyCards(list, set, dark, e.cfg)

	e.mu.RLock()
	desc := e.description
	e.mu.RUnlock()
	//the description panel is swapped in after clicks on a card
	if desc != nil && desc.Idle() {
		desc.Reacquire()
	}
	if e.cfg.AfterPass != nil {
		e.cfg.AfterPass(TargetCards)
	}
}

func (e *Engine) descriptionPass(container *html.Node, set []string) {
	highlightDescription(container, set, e.cfg)
	if e.cfg.AfterPass != nil {
		e.cfg.AfterPass(TargetDescription)
	}
}

func classifyCards(root *html.Node, set []string, dark bool, cfg Config) []models.CardState {
	found := cfg.Locators.Card.All(root)
	states := make([]models.CardState, 0, len(found))
	for _, card := range found {
		state := cards.Classify(card, set, cfg.Locators.Cards)
		cards.Apply(card, state, cfg.Palette, dark, cfg.Locators.Cards)
		states = append(states, state)
	}
	return states
}

func highlightDescription(container *html.Node, set []string, cfg Config) int {
	highlight.Remove(container, cfg.MarkerClass)
	m := filter.NewMatcher(set, cfg.Sensitive)
	return highlight.Apply(container, m, highlight.Options{MarkerClass: cfg.MarkerClass})
}
