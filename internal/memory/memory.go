// Package memory keeps the phrases and branch nicknames that staff have
// taught the system, so the next paste is classified correctly.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/qflow/internal/model"
	"github.com/Veraticus/qflow/internal/service"
)

// Storage keys.
const (
	KeywordMappingsKey = "keywordMappings"
	BranchAliasesKey   = "branchAliases"
)

// ErrNoStore is returned when New is called without a backing store.
var ErrNoStore = errors.New("key-value store is required")

// Memory is the learned phrase and branch-alias memory.
type Memory struct {
	kv       service.KeyValueStore
	mappings map[string]storedMapping
	aliases  []model.BranchAlias
	mu       sync.RWMutex
}

// New loads both documents from kv. Missing documents start empty.
func New(ctx context.Context, kv service.KeyValueStore) (*Memory, error) {
	if kv == nil {
		return nil, ErrNoStore
	}

	rawMappings, _, err := kv.Get(ctx, KeywordMappingsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword mappings: %w", err)
	}
	mappings, err := decodeMappings(rawMappings)
	if err != nil {
		return nil, err
	}

	rawAliases, _, err := kv.Get(ctx, BranchAliasesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load branch aliases: %w", err)
	}
	aliases, err := decodeAliases(rawAliases)
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded keyword memory", "keywords", len(mappings), "aliases", len(aliases))

	return &Memory{
		kv:       kv,
		mappings: mappings,
		aliases:  aliases,
	}, nil
}

// Normalize is the key form of a phrase: trimmed and lowercased.
func Normalize(phrase string) string {
	return strings.ToLower(strings.TrimSpace(phrase))
}

// Lookup returns the learned classification for phrase.
func (m *Memory) Lookup(phrase string) (model.Classification, bool) {
	key := Normalize(phrase)

	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.mappings[key]
	if !ok || stored.Category == "" {
		return model.Classification{}, false
	}
	return stored.classification(), true
}

// Learn records phrase → (category, sub), replacing any earlier mapping.
// An empty phrase or category is ignored. The document is persisted before
// Learn returns.
func (m *Memory) Learn(ctx context.Context, phrase, category, sub string) error {
	key := Normalize(phrase)
	if key == "" || category == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	previous, existed := m.mappings[key]
	m.mappings[key] = storedMapping{Category: category, Sub: sub}

	if err := m.flushMappingsLocked(ctx); err != nil {
		if existed {
			m.mappings[key] = previous
		} else {
			delete(m.mappings, key)
		}
		return err
	}

	slog.Info("Learned keyword", "phrase", key, "category", category, "sub", sub)
	return nil
}

// LearnBranchAlias records alias → code. A repeated alias keeps its original
// position and takes the new code.
func (m *Memory) LearnBranchAlias(ctx context.Context, alias, code string) error {
	key := Normalize(alias)
	code = strings.TrimSpace(code)
	if key == "" || code == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	previous := append([]model.BranchAlias(nil), m.aliases...)

	replaced := false
	for i := range m.aliases {
		if m.aliases[i].Alias == key {
			m.aliases[i].Code = code
			replaced = true
			break
		}
	}
	if !replaced {
		m.aliases = append(m.aliases, model.BranchAlias{Alias: key, Code: code})
	}

	if err := m.flushAliasesLocked(ctx); err != nil {
		m.aliases = previous
		return err
	}

	slog.Info("Learned branch alias", "alias", key, "code", code)
	return nil
}

// BranchAlias returns the code of the first learned alias contained in text.
func (m *Memory) BranchAlias(text string) (string, bool) {
	lower := strings.ToLower(text)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.aliases {
		if strings.Contains(lower, a.Alias) {
			return a.Code, true
		}
	}
	return "", false
}

// Keywords returns every learned mapping sorted by phrase.
func (m *Memory) Keywords() []model.KeywordMapping {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]model.KeywordMapping, 0, len(m.mappings))
	for phrase, stored := range m.mappings {
		result = append(result, model.KeywordMapping{
			Phrase:   phrase,
			Category: stored.Category,
			Sub:      stored.Sub,
			Legacy:   stored.Legacy,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Phrase < result[j].Phrase
	})
	return result
}

// Aliases returns the learned branch aliases in match order.
func (m *Memory) Aliases() []model.BranchAlias {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.BranchAlias(nil), m.aliases...)
}

func (m *Memory) flushMappingsLocked(ctx context.Context) error {
	data, err := json.Marshal(m.mappings)
	if err != nil {
		return fmt.Errorf("failed to encode keyword mappings: %w", err)
	}
	if err := m.kv.Set(ctx, KeywordMappingsKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist keyword mappings: %w", err)
	}
	return nil
}

func (m *Memory) flushAliasesLocked(ctx context.Context) error {
	aliases := m.aliases
	if aliases == nil {
		aliases = []model.BranchAlias{}
	}
	data, err := json.Marshal(aliases)
	if err != nil {
		return fmt.Errorf("failed to encode branch aliases: %w", err)
	}
	if err := m.kv.Set(ctx, BranchAliasesKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist branch aliases: %w", err)
	}
	return nil
}
