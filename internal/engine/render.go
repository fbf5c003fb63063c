package engine

import (
	"fmt"
	"strings"

	"go-openclaw-highlighter/internal/filter"
	"go-openclaw-highlighter/internal/highlight"
	"go-openclaw-highlighter/internal/models"
	"go-openclaw-highlighter/internal/theme"

	"golang.org/x/net/html"
)

// Render runs one card pass and one description pass over a standalone HTML
// document and returns the resulting markup. It is the offline counterpart
// of a running Engine.
func Render(htmlText string, set []string, cfg Config) (string, models.Report, error) {
	root, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return "", models.Report{}, fmt.Errorf("failed to parse document: %w", err)
	}

	report := Process(root, set, cfg)

	var sb strings.Builder
	if err := html.Render(&sb, root); err != nil {
		return "", report, fmt.Errorf("failed to render document: %w", err)
	}
	return sb.String(), report, nil
}

// Process highlights an already parsed document in place.
func Process(root *html.Node, set []string, cfg Config) models.Report {
	var dark bool
	if cfg.Theme != nil {
		dark = cfg.Theme.IsDarkMode()
	} else {
		dark = theme.HasDarkClass(root, cfg.DarkClass)
	}

	report := models.Report{DarkMode: dark}
	report.Cards = classifyCards(root, set, dark, cfg)
	for _, c := range report.Cards {
		switch c.Treatment() {
		case models.TreatmentEmphasized:
			report.Emphasis++
		case models.TreatmentDimmed:
			report.Dimmed++
		}
	}

	if container := cfg.Locators.Description.First(root); container != nil {
		report.Markers = highlightDescription(container, set, cfg)
		report.Sensitive = countSensitive(container, cfg.MarkerClass)
	}
	return report
}

func countSensitive(container *html.Node, markerClass string) int {
	n := 0
	for _, m := range highlight.Markers(container, markerClass) {
		for _, a := range m.Attr {
			if a.Key == highlight.TierAttr && a.Val == filter.TierSensitive.String() {
				n++
			}
		}
	}
	return n
}
