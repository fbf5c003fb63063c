package filter

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultSensitiveTerms are clearance and citizenship terms that get the
// sensitive highlight tier.
var DefaultSensitiveTerms = []string{
	"U.S. Security Clearance",
	"Clearance",
	"Secret",
	"Citizen",
	"GC",
	"Citizenship",
}

// TitleMatches reports whether title contains any keyword as a plain,
// case-insensitive substring. Titles are short, so this is deliberately looser
// than the word-bounded description matching.
func TitleMatches(title string, keywords []string) bool {
	if title == "" {
		return false
	}
	folder := cases.Fold()
	folded := folder.String(title)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(folded, folder.String(kw)) {
			return true
		}
	}
	return false
}
