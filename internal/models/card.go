package models

import "strings"

// StatusTag is the footer state the job site shows on a listing card.
type StatusTag string

const (
	StatusNone    StatusTag = ""
	StatusViewed  StatusTag = "Viewed"
	StatusSaved   StatusTag = "Saved"
	StatusApplied StatusTag = "Applied"
)

// ParseStatusTag maps the card's footer text to a StatusTag. Anything that is
// not exactly one of the known states counts as StatusNone.
func ParseStatusTag(text string) StatusTag {
	switch StatusTag(strings.TrimSpace(text)) {
	case StatusViewed:
		return StatusViewed
	case StatusSaved:
		return StatusSaved
	case StatusApplied:
		return StatusApplied
	}
	return StatusNone
}

// Processed reports whether the listing was already looked at.
func (s StatusTag) Processed() bool {
	return s != StatusNone
}

// Treatment is the card-level visual decision.
type Treatment string

const (
	TreatmentNeutral    Treatment = "neutral"
	TreatmentEmphasized Treatment = "emphasized"
	TreatmentDimmed     Treatment = "dimmed"
)

// CardState is recomputed for every card on every pass and never stored.
type CardState struct {
	TitleText      string    `json:"title"`
	Status         StatusTag `json:"status"`
	MatchesKeyword bool      `json:"matches_keyword"`
}

// Treatment decides between dim, emphasis and neutral. Dimming wins over a
// keyword match.
func (c CardState) Treatment() Treatment {
	if c.Status.Processed() {
		return TreatmentDimmed
	}
	if c.MatchesKeyword {
		return TreatmentEmphasized
	}
	return TreatmentNeutral
}
