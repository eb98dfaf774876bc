// Package parser turns pasted booking-chat text into detected line items.
package parser

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Veraticus/qflow/internal/model"
)

// MaxQuantity is the largest quantity accepted on one line. Larger numbers
// are almost always phone numbers, prices or times.
const MaxQuantity = 100

const (
	sectionMarker = "แชทวันที่"
	ruleSeparator = "______________"
)

// Classifier assigns a category and sub-service to an item name.
type Classifier interface {
	Classify(phrase string) model.Classification
}

// Parser extracts booking items from chat text.
type Parser struct {
	classifier Classifier
	newID      func() string
}

// Option configures a Parser.
type Option func(*Parser)

// WithIDGenerator overrides how item IDs are generated.
func WithIDGenerator(fn func() string) Option {
	return func(p *Parser) {
		p.newID = fn
	}
}

// NewParser creates a parser that classifies every accepted line with classifier.
func NewParser(classifier Classifier, opts ...Option) *Parser {
	p := &Parser{
		classifier: classifier,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse returns the items found in text in line order. Lines that do not
// look like items are dropped; Parse never fails.
func (p *Parser) Parse(text string) []model.DetectedItem {
	if strings.TrimSpace(text) == "" {
		return []model.DetectedItem{}
	}

	items := []model.DetectedItem{}
	for _, line := range strings.Split(Clean(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || IsNoise(line) {
			continue
		}

		name, qty, ok := ParseLine(line)
		if !ok {
			continue
		}

		var c model.Classification
		if p.classifier != nil {
			c = p.classifier.Classify(name)
		}

		items = append(items, model.DetectedItem{
			ID:           p.newID(),
			Program:      c.Program,
			Sub:          c.Sub,
			OriginalName: name,
			Que:          qty,
			Verified:     false,
		})
	}

	return items
}

// Clean normalizes pasted text and cuts it down to the item section.
func Clean(text string) string {
	text = strings.ReplaceAll(text, ",", "")
	text = strings.ReplaceAll(text, "คน.", "คน")

	if idx := strings.Index(text, sectionMarker); idx >= 0 {
		return text[idx:]
	}
	if idx := strings.LastIndex(text, ruleSeparator); idx >= 0 {
		return text[idx+len(ruleSeparator):]
	}
	return text
}

// ParseLine applies the two line grammars: "name qty [คน]" and "name=qty".
// It reports false when the line is not an acceptable item.
func ParseLine(line string) (string, int, bool) {
	if m := quantityLine.FindStringSubmatch(line); m != nil {
		qty, err := strconv.Atoi(m[2])
		if err != nil {
			return "", 0, false
		}
		return accept(strings.TrimSpace(m[1]), qty)
	}

	if !strings.Contains(line, "=") {
		return "", 0, false
	}
	parts := strings.Split(line, "=")
	if len(parts) != 2 {
		return "", 0, false
	}
	qty, ok := leadingInt(strings.TrimSpace(parts[1]))
	if !ok {
		return "", 0, false
	}
	return accept(strings.TrimSpace(parts[0]), qty)
}

func accept(name string, qty int) (string, int, bool) {
	if qty > MaxQuantity || qty <= 0 || name == "" {
		return "", 0, false
	}
	return name, qty, true
}

// leadingInt reads an optionally signed run of leading digits, ignoring
// whatever follows ("5 คน" is 5).
func leadingInt(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// Too many digits to be a quantity
		return MaxQuantity + 1, true
	}
	return n, true
}
