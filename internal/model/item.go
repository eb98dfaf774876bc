// Package model defines the core data structures for the qflow application.
package model

// DetectedItem is one booking line extracted from pasted chat text, pending
// human confirmation.
type DetectedItem struct {
	ID           string `json:"id"`
	Program      string `json:"program"`
	Sub          string `json:"sub"`
	OriginalName string `json:"original_name,omitempty"`
	Que          int    `json:"que"`
	Verified     bool   `json:"verified"`
}

// IsComplete reports whether both program and sub-service are set.
func (d DetectedItem) IsComplete() bool {
	return d.Program != "" && d.Sub != ""
}

// Label returns the name used when summarizing an item.
func (d DetectedItem) Label() string {
	if d.Sub != "" {
		return d.Sub
	}
	return d.Program
}

// HeaderData holds the branch and date recovered from pasted text.
// Empty fields mean "not detected".
type HeaderData struct {
	Branch string `json:"branch"`
	Date   string `json:"date"`
}
