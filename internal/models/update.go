package models

import "encoding/json"

const (
	UpdateStatusSuccess = "success"
	UpdateStatusError   = "error"
)

// UpdateRequest carries a new keyword set pushed by the keyword collaborator.
// A nil Keywords slice means no keyword data was supplied; an empty, non-nil
// slice is a valid request that clears every highlight.
type UpdateRequest struct {
	Keywords []string `json:"keywords"`
}

// UpdateResponse acknowledges an UpdateRequest.
type UpdateResponse struct {
	Status   string   `json:"status"`
	Keywords []string `json:"keywords,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// MarshalJSON always echoes the applied set on success, as [] when it is
// empty, and leaves it out of error responses.
func (r UpdateResponse) MarshalJSON() ([]byte, error) {
	type plain UpdateResponse
	if r.Status != UpdateStatusSuccess {
		return json.Marshal(plain(r))
	}
	set := r.Keywords
	if set == nil {
		set = []string{}
	}
	return json.Marshal(struct {
		Status   string   `json:"status"`
		Keywords []string `json:"keywords"`
		Message  string   `json:"message,omitempty"`
	}{r.Status, set, r.Message})
}

// OK reports whether the update was applied.
func (r UpdateResponse) OK() bool {
	return r.Status == UpdateStatusSuccess
}

// Report summarises one highlighting pass over a document.
type Report struct {
	Markers   int         `json:"markers"`
	Sensitive int         `json:"sensitive"`
	Cards     []CardState `json:"cards"`
	Emphasis  int         `json:"emphasized"`
	Dimmed    int         `json:"dimmed"`
	DarkMode  bool        `json:"dark_mode"`
}
