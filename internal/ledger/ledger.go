// Package ledger writes per-month balance lines. The latest import of an
// (account, month) pair replaces the stored line wholesale.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/arrears/internal/columns"
	"github.com/cleared-dev/arrears/internal/locale"
	"github.com/cleared-dev/arrears/internal/model"
	"github.com/cleared-dev/arrears/internal/period"
	"github.com/cleared-dev/arrears/internal/validate"
)

// Store persists balance lines.
type Store interface {
	UpsertBalance(ctx context.Context, b *model.PeriodBalance) error
}

// Writer stamps and stores balance lines.
type Writer struct {
	now   func() time.Time
	newID func() string
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock stamps ImportedAt from now.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// NewWriter returns a writer using the wall clock and random ids.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{now: time.Now, newID: uuid.NewString}
	for _, o := range opts {
		o(w)
	}
	return w
}

// FromRow builds the balance line of a validated row.
func FromRow(accountID string, p period.Date, a validate.Amounts, rec columns.Record) *model.PeriodBalance {
	return &model.PeriodBalance{
		AccountID:     accountID,
		Period:        p.FirstOfMonth(),
		DebtStart:     a.DebtStart,
		Accrued:       a.Accrued,
		Paid:          a.Paid,
		DebtEnd:       a.DebtEnd,
		MonthsInDebt:  locale.Int(rec.MonthsInDebt),
		DebtCategory:  rec.DebtCategory,
		DebtStructure: rec.DebtStructure,
		SrcFile:       rec.SrcFile,
		RoomNo:        rec.RoomNo,
	}
}

// Upsert inserts or replaces b for its (account, month).
func (w *Writer) Upsert(ctx context.Context, st Store, b *model.PeriodBalance) error {
	if b.ID == "" {
		b.ID = w.newID()
	}
	b.Period = b.Period.FirstOfMonth()
	b.ImportedAt = w.now()
	return st.UpsertBalance(ctx, b)
}
