package cases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cleared-dev/arrears/internal/model"
	"github.com/cleared-dev/arrears/internal/store"
)

// Store is the persistence the case engine needs.
type Store interface {
	LatestBalance(ctx context.Context, accountID string) (*model.PeriodBalance, error)
	FindCase(ctx context.Context, accountID string) (*model.CaseFile, error)
	InsertCase(ctx context.Context, c *model.CaseFile) error
	UpdateCase(ctx context.Context, c *model.CaseFile) error
}

// Outcome says what Refresh did.
type Outcome int

const (
	// Skipped: the account has no balance yet.
	Skipped Outcome = iota
	Created
	Refreshed
)

// Engine creates and refreshes cases.
type Engine struct {
	now   func() time.Time
	newID func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock stamps case creation and updates from now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an engine using the wall clock and random ids.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now, newID: uuid.NewString}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Refresh recomputes the case of a from its latest balance. A new case
// starts as a candidate; an existing one keeps its status and has every
// derived field overwritten.
func (e *Engine) Refresh(ctx context.Context, st Store, a *model.Account) (Outcome, error) {
	latest, err := st.LatestBalance(ctx, a.ID)
	if errors.Is(err, store.ErrNotFound) {
		return Skipped, nil
	}
	if err != nil {
		return Skipped, err
	}
	derived := Derive(a, latest)

	existing, err := st.FindCase(ctx, a.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		derived.ID = e.newID()
		derived.Status = model.CaseCandidate
		derived.CreatedAt = e.now()
		derived.UpdatedAt = derived.CreatedAt
		if err := st.InsertCase(ctx, &derived); err != nil {
			return Skipped, err
		}
		return Created, nil
	case err != nil:
		return Skipped, err
	}

	derived.ID = existing.ID
	derived.Status = existing.Status
	derived.CreatedAt = existing.CreatedAt
	derived.UpdatedAt = e.now()
	if err := st.UpdateCase(ctx, &derived); err != nil {
		return Skipped, err
	}
	return Refreshed, nil
}
