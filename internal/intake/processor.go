// Package intake turns pasted chat text into a reviewable list of booking
// items and manages the correction and confirmation of that list.
package intake

import (
	"github.com/Veraticus/qflow/internal/classify"
	"github.com/Veraticus/qflow/internal/header"
	"github.com/Veraticus/qflow/internal/memory"
	"github.com/Veraticus/qflow/internal/model"
	"github.com/Veraticus/qflow/internal/parser"
)

// HeaderExtractor finds the branch and date in text.
type HeaderExtractor interface {
	Extract(text string) model.HeaderData
}

// ItemParser finds booking items in text.
type ItemParser interface {
	Parse(text string) []model.DetectedItem
}

// Result is everything recovered from one paste.
type Result struct {
	Header model.HeaderData     `json:"header"`
	Items  []model.DetectedItem `json:"items"`
}

// Processor runs header extraction and item parsing over the same text.
type Processor struct {
	header HeaderExtractor
	items  ItemParser
}

// NewProcessor creates a processor from its two halves.
func NewProcessor(h HeaderExtractor, p ItemParser) *Processor {
	return &Processor{header: h, items: p}
}

// Build wires a classifier, header extractor and parser around mem, which
// may be nil when nothing has been learned yet.
func Build(mem *memory.Memory, catalog model.ServiceCatalog, directory model.BranchDirectory) *Processor {
	var (
		learned classify.LearnedLookup
		aliases header.AliasLookup
	)
	if mem != nil {
		learned = mem
		aliases = mem
	}

	classifier := classify.NewClassifier(learned, catalog)
	return NewProcessor(
		header.NewExtractor(directory, aliases),
		parser.NewParser(classifier),
	)
}

// Process extracts the header and items. The header is read from the full
// text because branch and date usually come before the item section.
func (p *Processor) Process(text string) Result {
	return Result{
		Header: p.header.Extract(text),
		Items:  p.items.Parse(text),
	}
}
