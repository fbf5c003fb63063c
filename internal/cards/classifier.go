// Package cards decides, per listing card, between emphasis, dimming and a
// neutral look, and applies that decision as inline styles.
package cards

import (
	"go-openclaw-highlighter/internal/filter"
	"go-openclaw-highlighter/internal/locator"
	"go-openclaw-highlighter/internal/models"
	"go-openclaw-highlighter/internal/theme"

	"golang.org/x/net/html"
)

// Locators names the parts of a card the classifier looks at.
type Locators struct {
	Title          locator.Locator
	Status         locator.Locator
	TitleContainer locator.Locator
	// Text lists every other text element recoloured for the theme.
	Text locator.Locator
}

// DefaultTitleSelectors is the fallback chain for the job title, most specific first.
var DefaultTitleSelectors = []string{
	`.artdeco-entity-lockup__title a span[aria-hidden="true"]`,
	`.artdeco-entity-lockup__title a`,
	`.artdeco-entity-lockup__title span`,
	`.artdeco-entity-lockup__title`,
	`.job-card-list__title`,
	`.job-card-list__title a`,
	`h3 a`,
	`h3`,
	`[data-job-title]`,
}

// DefaultTextSelectors are the card text elements that follow the page theme.
var DefaultTextSelectors = []string{
	`.artdeco-entity-lockup__subtitle span`,
	`.artdeco-entity-lockup__caption span`,
	`.artdeco-entity-lockup__metadata span, .job-card-container__job-insight-text`,
	`.job-card-container__footer-wrapper li span`,
}

const (
	DefaultStatusSelector         = `.job-card-container__footer-job-state`
	DefaultTitleContainerSelector = `.artdeco-entity-lockup__title`
)

// DefaultLocators returns the locators for the current job-site markup.
func DefaultLocators() Locators {
	return Locators{
		Title:          locator.MustCompile("job_title", DefaultTitleSelectors...),
		Status:         locator.MustCompile("status", DefaultStatusSelector),
		TitleContainer: locator.MustCompile("title_container", DefaultTitleContainerSelector),
		Text:           locator.MustCompile("card_text", DefaultTextSelectors...),
	}
}

// Classify extracts the card's state. keywords are matched against the title
// as plain substrings.
func Classify(card *html.Node, keywords []string, loc Locators) models.CardState {
	title := loc.Title.Text(card)
	status := models.StatusNone
	if !loc.Status.IsZero() {
		status = models.ParseStatusTag(loc.Status.Text(card))
	}
	return models.CardState{
		TitleText:      title,
		Status:         status,
		MatchesKeyword: filter.TitleMatches(title, keywords),
	}
}

// Apply resets every treatment property on card and then applies the one
// state calls for, followed by theme text colours. Running it again with the
// same inputs leaves the card unchanged.
func Apply(card *html.Node, state models.CardState, palette theme.CardPalette, dark bool, loc Locators) models.Treatment {
	treatment := state.Treatment()

	setStyle(card,
		"background-color", "",
		"border", "",
		"border-radius", "",
		"filter", "",
		"opacity", "",
	)

	switch treatment {
	case models.TreatmentDimmed:
		setStyle(card,
			"filter", palette.DimFilter,
			"opacity", palette.DimOpacity,
		)
	case models.TreatmentEmphasized:
		setStyle(card,
			"background-color", palette.EmphasisBackground,
			"border", palette.EmphasisBorder,
			"border-radius", palette.EmphasisRadius,
		)
	}

	color := theme.TextColor(dark)
	if n := loc.TitleContainer.First(card); n != nil {
		setStyle(n, "color", color)
	}
	for _, n := range loc.Text.Each(card) {
		setStyle(n, "color", color)
	}
	if n := loc.Status.First(card); n != nil {
		setStyle(n, "color", color, "font-weight", "bold")
	}
	return treatment
}
