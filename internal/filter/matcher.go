package filter

import (
	"regexp"
	"strings"
)

// Tier is the priority class of a matched run of text.
type Tier int

const (
	TierGeneric Tier = iota
	TierSensitive
)

func (t Tier) String() string {
	if t == TierSensitive {
		return "sensitive"
	}
	return "generic"
}

// MatchSpan is one classified keyword occurrence inside a single text.
// Start and End are byte offsets into that text.
type MatchSpan struct {
	Start int
	End   int
	Text  string
	Tier  Tier
}

// Matcher finds whole-word, case-insensitive keyword occurrences.
// A Matcher is immutable and safe for concurrent use.
type Matcher struct {
	keywords  []string
	keywordRe *regexp.Regexp
	tierRe    *regexp.Regexp
}

// NewMatcher compiles keywords and sensitive terms. Blank entries are ignored,
// so an all-blank keyword list behaves like an empty one.
func NewMatcher(keywords, sensitive []string) *Matcher {
	m := &Matcher{keywords: cleanTerms(keywords)}
	m.keywordRe = wordBoundedRegex(m.keywords)
	m.tierRe = wordBoundedRegex(cleanTerms(sensitive))
	return m
}

// Keywords returns the terms the matcher was compiled from.
func (m *Matcher) Keywords() []string {
	out := make([]string, len(m.keywords))
	copy(out, m.keywords)
	return out
}

// Empty reports whether the matcher can never match.
func (m *Matcher) Empty() bool {
	return m.keywordRe == nil
}

// Find scans text left to right and returns non-overlapping spans.
// When two keywords could start at the same offset the one listed first wins.
func (m *Matcher) Find(text string) []MatchSpan {
	if m.keywordRe == nil || text == "" {
		return nil
	}

	locs := m.keywordRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	spans := make([]MatchSpan, 0, len(locs))
	for _, loc := range locs {
		//zero-width hits are impossible with non-blank keywords, guard anyway
		if loc[1] <= loc[0] {
			continue
		}
		matched := text[loc[0]:loc[1]]
		spans = append(spans, MatchSpan{
			Start: loc[0],
			End:   loc[1],
			Text:  matched,
			Tier:  m.Classify(matched),
		})
	}
	return spans
}

// Classify returns the tier for an already matched run of text.
func (m *Matcher) Classify(matched string) Tier {
	if m.tierRe != nil && m.tierRe.MatchString(matched) {
		return TierSensitive
	}
	return TierGeneric
}

func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// wordBoundedRegex builds (?i)\b(?:k1|k2|...)\b with every term quoted.
// Returns nil for an empty term list.
func wordBoundedRegex(terms []string) *regexp.Regexp {
	if len(terms) == 0 {
		return nil
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
