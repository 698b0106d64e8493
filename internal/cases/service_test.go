package cases

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/arrears/internal/model"
	"github.com/cleared-dev/arrears/internal/period"
	"github.com/cleared-dev/arrears/internal/store"
)

type mockStore struct {
	latest map[string]*model.PeriodBalance
	cases  map[string]*model.CaseFile
}

func newMockStore() *mockStore {
	return &mockStore{latest: map[string]*model.PeriodBalance{}, cases: map[string]*model.CaseFile{}}
}

func (m *mockStore) LatestBalance(_ context.Context, accountID string) (*model.PeriodBalance, error) {
	b, ok := m.latest[accountID]
	if !ok {
		return nil, fmt.Errorf("latest balance for %s: %w", accountID, store.ErrNotFound)
	}
	return b, nil
}

func (m *mockStore) FindCase(_ context.Context, accountID string) (*model.CaseFile, error) {
	c, ok := m.cases[accountID]
	if !ok {
		return nil, fmt.Errorf("finding case for %s: %w", accountID, store.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *mockStore) InsertCase(_ context.Context, c *model.CaseFile) error {
	cp := *c
	m.cases[c.AccountID] = &cp
	return nil
}

func (m *mockStore) UpdateCase(_ context.Context, c *model.CaseFile) error {
	cp := *c
	m.cases[c.AccountID] = &cp
	return nil
}

func testEngine() *Engine {
	return &Engine{
		now:   func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
		newID: func() string { return "case-1" },
	}
}

func TestRefresh_NoBalance(t *testing.T) {
	out, err := testEngine().Refresh(context.Background(), newMockStore(), &model.Account{ID: "acc-1"})
	require.NoError(t, err)
	assert.Equal(t, Skipped, out)
}

func TestRefresh_CreatesCandidate(t *testing.T) {
	st := newMockStore()
	st.latest["acc-1"] = &model.PeriodBalance{Period: period.NewDate(2025, 5, 1), DebtEnd: decimal.NewFromInt(100)}

	out, err := testEngine().Refresh(context.Background(), st, &model.Account{ID: "acc-1"})
	require.NoError(t, err)
	assert.Equal(t, Created, out)

	c := st.cases["acc-1"]
	require.NotNil(t, c)
	assert.Equal(t, "case-1", c.ID)
	assert.Equal(t, model.CaseCandidate, c.Status)
	assert.Equal(t, model.DebtorCompany, c.DebtorType)
	assert.Equal(t, model.Flags{NeedINN: true, NeedPeriodRefine: true}, c.Flags)
}

func TestRefresh_KeepsAdvancedStatus(t *testing.T) {
	st := newMockStore()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	st.cases["acc-1"] = &model.CaseFile{
		ID: "case-old", AccountID: "acc-1", Status: model.CaseLawsuit,
		DebtorType: model.DebtorCompany, Flags: model.Flags{NeedINN: true}, CreatedAt: created,
	}
	st.latest["acc-1"] = &model.PeriodBalance{Period: period.NewDate(2025, 5, 1), DebtEnd: decimal.NewFromInt(250), MonthsInDebt: intPtr(2)}

	out, err := testEngine().Refresh(context.Background(), st, &model.Account{ID: "acc-1", LsType: "Распределенные"})
	require.NoError(t, err)
	assert.Equal(t, Refreshed, out)

	c := st.cases["acc-1"]
	assert.Equal(t, "case-old", c.ID)
	assert.Equal(t, model.CaseLawsuit, c.Status)
	assert.Equal(t, created, c.CreatedAt)
	assert.Equal(t, model.DebtorPerson, c.DebtorType)
	assert.Equal(t, model.Flags{NeedBirthDate: true, NeedBirthPlace: true}, c.Flags, "flags recomputed, not accumulated")
	assert.Equal(t, "2025-04-01", c.PeriodFrom.ISO())
	assert.True(t, c.DebtAmount.Equal(decimal.NewFromInt(250)))
}

func TestNewEngine_Clock(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	st := newMockStore()
	st.latest["acc-1"] = &model.PeriodBalance{Period: period.NewDate(2025, 5, 1), DebtEnd: decimal.NewFromInt(100)}

	out, err := NewEngine(WithClock(func() time.Time { return at })).Refresh(context.Background(), st, &model.Account{ID: "acc-1"})
	require.NoError(t, err)
	assert.Equal(t, Created, out)
	assert.Equal(t, at, st.cases["acc-1"].CreatedAt)
	assert.Equal(t, at, st.cases["acc-1"].UpdatedAt)
}
