// Package theme holds the colour choices for highlights and card treatments
// and the dark-mode signal they depend on.
package theme

import (
	"strings"

	"go-openclaw-highlighter/internal/filter"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultDarkClass is the class the job site puts on <html> in dark mode.
const DefaultDarkClass = "theme--dark-lix"

// Signal tells whether the page is currently rendered in dark mode.
// It is polled once per card pass and never cached.
type Signal interface {
	IsDarkMode() bool
}

// Static is a fixed Signal.
type Static bool

func (s Static) IsDarkMode() bool { return bool(s) }

// ClassSignal reports dark mode when the document's <html> element carries Class.
type ClassSignal struct {
	Root  func() *html.Node
	Class string
}

func (c ClassSignal) IsDarkMode() bool {
	if c.Root == nil {
		return false
	}
	return HasDarkClass(c.Root(), c.Class)
}

// HasDarkClass finds the <html> element under root and checks its class list.
func HasDarkClass(root *html.Node, class string) bool {
	if class == "" {
		class = DefaultDarkClass
	}
	el := htmlElement(root)
	if el == nil {
		return false
	}
	for _, a := range el.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func htmlElement(n *html.Node) *html.Node {
	for n != nil && n.Parent != nil {
		n = n.Parent
	}
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.DataAtom == atom.Html {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			return c
		}
	}
	return nil
}

// ColorPair is a background/foreground pair.
type ColorPair struct {
	Background string
	Foreground string
}

// MarkerStyle returns the inline style for a highlight marker of the given tier.
// Sensitive terms are green on white text, everything else yellow on black.
func MarkerStyle(tier filter.Tier) string {
	p := MarkerColors(tier)
	return "background-color: " + p.Background + "; color: " + p.Foreground
}

// MarkerColors returns the colour pair used for a tier.
func MarkerColors(tier filter.Tier) ColorPair {
	if tier == filter.TierSensitive {
		return ColorPair{Background: "green", Foreground: "white"}
	}
	return ColorPair{Background: "yellow", Foreground: "black"}
}

// TextColor is the colour for card text elements.
func TextColor(dark bool) string {
	if dark {
		return "white"
	}
	return "black"
}

// CardPalette describes the inline style values for card treatments.
type CardPalette struct {
	EmphasisBackground string
	EmphasisBorder     string
	EmphasisRadius     string
	DimFilter          string
	DimOpacity         string
}

// DefaultCardPalette is the card look used on the job site.
var DefaultCardPalette = CardPalette{
	EmphasisBackground: "rgba(200, 230, 201, 0.8)",
	EmphasisBorder:     "2px solid #A5D6A7",
	EmphasisRadius:     "8px",
	DimFilter:          "blur(2px) grayscale(50%)",
	DimOpacity:         "0.7",
}
