package model

// Classification is the (category, sub-category) pair assigned to a phrase.
type Classification struct {
	Program string `json:"program"`
	Sub     string `json:"sub"`
}

// IsEmpty reports whether nothing was classified.
func (c Classification) IsEmpty() bool {
	return c.Program == "" && c.Sub == ""
}

// KeywordMapping is a learned phrase with its classification.
type KeywordMapping struct {
	Phrase   string `json:"phrase"`
	Category string `json:"category"`
	Sub      string `json:"sub"`
	Legacy   bool   `json:"legacy,omitempty"`
}

// BranchAlias maps a learned nickname to a branch code.
type BranchAlias struct {
	Alias string `json:"alias"`
	Code  string `json:"code"`
}
