// Package classify maps free-text booking item names to a service category
// and sub-service.
package classify

import (
	"strings"
	"sync"

	"github.com/Veraticus/qflow/internal/model"
)

// Rule is one keyword heuristic: any keyword contained in the lowercased
// phrase assigns Category.
type Rule struct {
	Name     string
	Category string
	Keywords []string
}

// Matches reports whether any keyword is contained in lower.
func (r Rule) Matches(lower string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// LearnedLookup resolves phrases that staff have explicitly taught.
type LearnedLookup interface {
	Lookup(phrase string) (model.Classification, bool)
}

// Classifier runs the three classification tiers in order: learned exact
// match, catalog substring match, keyword heuristics.
type Classifier struct {
	learned LearnedLookup
	catalog model.ServiceCatalog
	rules   []Rule
	mu      sync.RWMutex
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRules replaces the default heuristic rules.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) {
		c.rules = rules
	}
}

// NewClassifier creates a classifier. learned may be nil.
func NewClassifier(learned LearnedLookup, catalog model.ServiceCatalog, opts ...Option) *Classifier {
	c := &Classifier{
		learned: learned,
		catalog: catalog,
		rules:   DefaultRules(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetCatalog swaps in a freshly loaded service catalog.
func (c *Classifier) SetCatalog(catalog model.ServiceCatalog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalog = catalog
}

// Catalog returns the catalog currently in use.
func (c *Classifier) Catalog() model.ServiceCatalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog
}

// Classify never fails; an unrecognized phrase yields an empty
// classification.
func (c *Classifier) Classify(phrase string) model.Classification {
	lower := strings.ToLower(strings.TrimSpace(phrase))
	if lower == "" {
		return model.Classification{}
	}

	if c.learned != nil {
		if learned, ok := c.learned.Lookup(lower); ok {
			return learned
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if match, ok := c.matchCatalog(lower); ok {
		return match
	}

	return c.matchRules(lower)
}

func (c *Classifier) matchCatalog(lower string) (model.Classification, bool) {
	for _, svc := range c.catalog {
		if svc.Name == "" {
			continue
		}

		if strings.Contains(lower, strings.ToLower(svc.Name)) {
			return model.Classification{
				Program: svc.Name,
				Sub:     firstContainedSub(lower, svc.Subs),
			}, true
		}

		for _, sub := range svc.Subs {
			if sub == "" {
				continue
			}
			subLower := strings.ToLower(sub)
			if strings.Contains(lower, subLower) || strings.Contains(subLower, lower) {
				return model.Classification{Program: svc.Name, Sub: sub}, true
			}
		}
	}
	return model.Classification{}, false
}

func (c *Classifier) matchRules(lower string) model.Classification {
	for _, rule := range c.rules {
		if !rule.Matches(lower) {
			continue
		}
		result := model.Classification{Program: rule.Category}
		if subs, ok := c.catalog.Lookup(rule.Category); ok {
			result.Sub = firstContainedSub(lower, subs)
		}
		return result
	}
	return model.Classification{}
}

// firstContainedSub returns the first sub-service whose name appears in lower.
// Only this direction is checked here, unlike the catalog tier.
func firstContainedSub(lower string, subs []string) string {
	for _, sub := range subs {
		if sub != "" && strings.Contains(lower, strings.ToLower(sub)) {
			return sub
		}
	}
	return ""
}
