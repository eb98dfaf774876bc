// Package service defines the interfaces shared between qflow components.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/qflow/internal/model"
)

// KeyValueStore is the durable storage surface behind keyword memory.
// Set must be durable before it returns.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// RecordQuery filters remote records. When both dates are set only records
// inside the inclusive range are returned; otherwise the last Limit rows are.
type RecordQuery struct {
	StartDate string
	EndDate   string
	Limit     int
}

// RecordKey identifies a remote row for quantity updates.
type RecordKey struct {
	Date    string
	Branch  string
	Program string
	Sub     string
}

// RecordStore is the remote tabular store that confirmed bookings are
// reconciled against.
type RecordStore interface {
	LoadCatalog(ctx context.Context) (model.ServiceCatalog, model.BranchDirectory, error)
	Append(ctx context.Context, submission model.Submission) error
	Records(ctx context.Context, query RecordQuery) ([]model.Record, error)
	UpdateQue(ctx context.Context, key RecordKey, que int) error
	DeleteRecords(ctx context.Context, date, branch string) (int, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
