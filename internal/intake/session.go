package intake

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Veraticus/qflow/internal/common"
	"github.com/Veraticus/qflow/internal/model"
)

// Learner records corrections so later pastes classify correctly.
type Learner interface {
	Learn(ctx context.Context, phrase, category, sub string) error
}

// Session owns the detected items of one paste while a human reviews them.
type Session struct {
	learner Learner
	header  model.HeaderData
	items   []model.DetectedItem
}

// NewSession creates an empty session. learner may be nil, in which case
// corrections are not remembered.
func NewSession(learner Learner) *Session {
	return &Session{learner: learner}
}

// Load replaces the session contents with a processing result.
func (s *Session) Load(result Result) {
	s.header = result.Header
	s.items = append([]model.DetectedItem(nil), result.Items...)
}

// Header returns the detected branch and date.
func (s *Session) Header() model.HeaderData {
	return s.header
}

// SetHeader overrides the detected branch and date.
func (s *Session) SetHeader(h model.HeaderData) {
	s.header = h
}

// Items returns a copy of the current items.
func (s *Session) Items() []model.DetectedItem {
	return append([]model.DetectedItem(nil), s.items...)
}

// Len returns the number of items.
func (s *Session) Len() int {
	return len(s.items)
}

// Clear discards every item and the header.
func (s *Session) Clear() {
	s.items = nil
	s.header = model.HeaderData{}
}

// AddManual appends a hand-entered item. Manual items are verified.
func (s *Session) AddManual(program, sub string, que int) error {
	if program == "" || sub == "" {
		return fmt.Errorf("%w: program and sub-service are required", common.ErrIncompleteItems)
	}
	if que < 1 {
		return fmt.Errorf("%w: %d", common.ErrInvalidQuantity, que)
	}

	s.items = append(s.items, model.DetectedItem{
		ID:       uuid.NewString(),
		Program:  program,
		Sub:      sub,
		Que:      que,
		Verified: true,
	})
	return nil
}

// Remove deletes the item at index.
func (s *Session) Remove(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	return nil
}

// SetQue changes the quantity of the item at index.
func (s *Session) SetQue(index, que int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if que < 1 {
		return fmt.Errorf("%w: %d", common.ErrInvalidQuantity, que)
	}
	s.items[index].Que = que
	return nil
}

// SetProgram changes the category of the item at index. The sub-service is
// cleared, the item needs verifying again and the original phrase is learned
// under the new category.
func (s *Session) SetProgram(ctx context.Context, index int, program string) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}

	item := &s.items[index]
	item.Program = program
	item.Sub = ""
	item.Verified = false

	if item.OriginalName != "" && program != "" {
		return s.learn(ctx, item.OriginalName, program, "")
	}
	return nil
}

// SetSub changes the sub-service of the item at index and learns the
// original phrase under the full classification.
func (s *Session) SetSub(ctx context.Context, index int, sub string) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}

	item := &s.items[index]
	item.Sub = sub
	item.Verified = false

	if item.OriginalName != "" && item.Program != "" && sub != "" {
		return s.learn(ctx, item.OriginalName, item.Program, sub)
	}
	return nil
}

// SetVerified marks the item at index as checked by a human. Only complete
// items can be verified.
func (s *Session) SetVerified(index int, verified bool) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if verified && !s.items[index].IsComplete() {
		return fmt.Errorf("%w: item %d", common.ErrIncompleteItems, index+1)
	}
	s.items[index].Verified = verified
	return nil
}

// ReadyToConfirm reports why the items cannot be submitted yet, if at all.
func (s *Session) ReadyToConfirm() error {
	if len(s.items) == 0 {
		return common.ErrNoItems
	}

	incomplete := 0
	unverified := 0
	for _, item := range s.items {
		if !item.IsComplete() {
			incomplete++
		}
		if !item.Verified {
			unverified++
		}
	}

	if incomplete > 0 {
		return fmt.Errorf("%w: %d item(s) missing program or sub-service", common.ErrIncompleteItems, incomplete)
	}
	if unverified > 0 {
		return fmt.Errorf("%w: %d item(s) not yet checked", common.ErrUnverifiedItems, unverified)
	}
	return nil
}

// SummaryLine is the total quantity for one label.
type SummaryLine struct {
	Label string
	Que   int
}

// Summary groups quantities by sub-service (or program when no sub is set)
// in first-seen order and returns the grand total.
func (s *Session) Summary() ([]SummaryLine, int) {
	var lines []SummaryLine
	index := make(map[string]int)
	total := 0

	for _, item := range s.items {
		label := item.Label()
		if i, ok := index[label]; ok {
			lines[i].Que += item.Que
		} else {
			index[label] = len(lines)
			lines = append(lines, SummaryLine{Label: label, Que: item.Que})
		}
		total += item.Que
	}

	return lines, total
}

// Submission builds the payload for the record store.
func (s *Session) Submission(date, branch string) model.Submission {
	return model.Submission{
		Date:   date,
		Branch: branch,
		Items:  s.Items(),
	}
}

func (s *Session) learn(ctx context.Context, phrase, category, sub string) error {
	if s.learner == nil {
		return nil
	}
	if err := s.learner.Learn(ctx, phrase, category, sub); err != nil {
		return fmt.Errorf("failed to remember correction: %w", err)
	}
	return nil
}

func (s *Session) checkIndex(index int) error {
	if index < 0 || index >= len(s.items) {
		return fmt.Errorf("%w: %d", common.ErrIndexOutOfRange, index)
	}
	return nil
}
