package sheets

import (
	"context"
	"fmt"
	"sync"

	"github.com/Veraticus/qflow/internal/common"
	"github.com/Veraticus/qflow/internal/model"
	"github.com/Veraticus/qflow/internal/service"
)

var _ service.RecordStore = (*MockStore)(nil)

// MockStore is an in-memory service.RecordStore for tests and offline use.
// Rows behave like the Data tab: appended at the end, matched top-down.
type MockStore struct {
	Err        error
	Catalog    model.ServiceCatalog
	Directory  model.BranchDirectory
	rows       []model.Record
	Appends    []model.Submission
	CallCounts map[string]int
	mu         sync.Mutex
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{CallCounts: make(map[string]int)}
}

// Seed replaces the stored rows.
func (m *MockStore) Seed(records ...model.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append([]model.Record(nil), records...)
}

func (m *MockStore) record(call string) error {
	m.CallCounts[call]++
	return m.Err
}

// LoadCatalog implements service.RecordStore.
func (m *MockStore) LoadCatalog(_ context.Context) (model.ServiceCatalog, model.BranchDirectory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("LoadCatalog"); err != nil {
		return nil, nil, err
	}
	return m.Catalog, m.Directory, nil
}

// Append implements service.RecordStore.
func (m *MockStore) Append(_ context.Context, submission model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Append"); err != nil {
		return err
	}
	if len(submission.Items) == 0 {
		return common.ErrNoItems
	}

	m.Appends = append(m.Appends, submission)
	for _, row := range submissionRows(submission) {
		number := len(m.rows) + 2
		m.rows = append(m.rows, model.Record{
			ID:      fmt.Sprintf("%s_%s_%d", submission.Date, submission.Branch, number),
			Date:    submission.Date,
			Branch:  submission.Branch,
			Program: row[2].(string),
			Sub:     row[3].(string),
			Que:     row[4].(int),
		})
	}
	return nil
}

// Records implements service.RecordStore.
func (m *MockStore) Records(_ context.Context, query service.RecordQuery) ([]model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Records"); err != nil {
		return nil, err
	}
	return selectRecords(m.dataRows(), query), nil
}

// UpdateQue implements service.RecordStore.
func (m *MockStore) UpdateQue(_ context.Context, key service.RecordKey, que int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateQue"); err != nil {
		return err
	}
	for i := range m.rows {
		if matchesKey(m.rows[i], key) {
			m.rows[i].Que = que
			return nil
		}
	}
	return common.ErrNotFound
}

// DeleteRecords implements service.RecordStore.
func (m *MockStore) DeleteRecords(_ context.Context, date, branch string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteRecords"); err != nil {
		return 0, err
	}

	kept := m.rows[:0]
	deleted := 0
	for _, r := range m.rows {
		if r.Date == date && r.Branch == branch {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept

	if deleted == 0 {
		return 0, common.ErrNotFound
	}
	return deleted, nil
}

func (m *MockStore) dataRows() []dataRow {
	rows := make([]dataRow, len(m.rows))
	for i, r := range m.rows {
		rows[i] = dataRow{record: r, number: i + 2}
	}
	return rows
}
