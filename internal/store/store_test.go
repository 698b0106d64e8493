package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/arrears/internal/model"
	"github.com/cleared-dev/arrears/internal/period"
)

var now = time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "arrears.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testAccount(id, ls string) *model.Account {
	return &model.Account{
		ID:         id,
		Ls:         ls,
		AddressRaw: "ул. Мира, 1",
		LsType:     "Распределенные",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func testBalance(id, accountID string, month time.Month, end string) *model.PeriodBalance {
	return &model.PeriodBalance{
		ID:         id,
		AccountID:  accountID,
		Period:     period.NewDate(2025, month, 1),
		DebtStart:  dec(end),
		DebtEnd:    dec(end),
		Accrued:    decimal.Zero,
		Paid:       decimal.Zero,
		ImportedAt: now,
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arrears.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.InsertAccount(context.Background(), testAccount("acc-1", "A1")))
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()
	st, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, st.Accounts)
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	a := testAccount("acc-1", "A1")
	a.AccrualCenter = "ЦН-1"
	closed := period.NewDate(2024, 12, 31)
	a.LsCloseDate = &closed
	require.NoError(t, s.InsertAccount(ctx, a))

	got, err := s.FindAccount(ctx, model.AccountKey{Ls: "A1", AccrualCenter: "ЦН-1"})
	require.NoError(t, err)
	assert.Equal(t, "acc-1", got.ID)
	assert.Equal(t, "ул. Мира, 1", got.AddressRaw)
	require.NotNil(t, got.LsCloseDate)
	assert.Equal(t, "2024-12-31", got.LsCloseDate.ISO())

	_, err = s.FindAccount(ctx, model.AccountKey{Ls: "A1"})
	assert.True(t, errors.Is(err, ErrNotFound), "scope is part of the key")

	got.FullName = "Иванов И. И."
	got.LsCloseDate = nil
	require.NoError(t, s.UpdateAccount(ctx, got))

	again, err := s.GetAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "Иванов И. И.", again.FullName)
	assert.Nil(t, again.LsCloseDate)

	assert.True(t, errors.Is(s.UpdateAccount(ctx, testAccount("missing", "Z")), ErrNotFound))
}

func TestAccounts_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	require.NoError(t, s.InsertAccount(ctx, testAccount("acc-1", "A1")))
	assert.Error(t, s.InsertAccount(ctx, testAccount("acc-2", "A1")))
}

func TestUpsertBalance_Replaces(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	require.NoError(t, s.InsertAccount(ctx, testAccount("acc-1", "A1")))

	months := 2
	b := testBalance("bal-1", "acc-1", time.May, "100.00")
	b.MonthsInDebt = &months
	b.DebtCategory = "текущий"
	require.NoError(t, s.UpsertBalance(ctx, b))

	repl := testBalance("bal-2", "acc-1", time.May, "80.50")
	require.NoError(t, s.UpsertBalance(ctx, repl))

	got, err := s.GetBalance(ctx, "acc-1", period.NewDate(2025, time.May, 20))
	require.NoError(t, err)
	assert.Equal(t, "bal-1", got.ID, "row identity survives replacement")
	assert.True(t, got.DebtEnd.Equal(dec("80.50")))
	assert.Nil(t, got.MonthsInDebt, "no field-level merge")
	assert.Empty(t, got.DebtCategory)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Balances)
}

func TestLatestBalance(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	require.NoError(t, s.InsertAccount(ctx, testAccount("acc-1", "A1")))

	_, err := s.LatestBalance(ctx, "acc-1")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.UpsertBalance(ctx, testBalance("b-may", "acc-1", time.May, "100")))
	require.NoError(t, s.UpsertBalance(ctx, testBalance("b-mar", "acc-1", time.March, "50")))

	latest, err := s.LatestBalance(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-01", latest.Period.ISO())

	all, err := s.Balances(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2025-03-01", all[0].Period.ISO())
}

func testCase(id, accountID, amount string) *model.CaseFile {
	return &model.CaseFile{
		ID:             id,
		AccountID:      accountID,
		Status:         model.CaseCandidate,
		DebtorType:     model.DebtorPerson,
		DebtAmount:     dec(amount),
		PeriodFrom:     period.NewDate(2025, 3, 1),
		PeriodTo:       period.NewDate(2025, 5, 1),
		ServiceKind:    model.ServiceKind,
		MgmtStatusText: "Дом находится под управлением УК (в лицензии).",
		Flags:          model.Flags{NeedBirthDate: true, NeedBirthPlace: true},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestCases(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	require.NoError(t, s.InsertAccount(ctx, testAccount("acc-1", "A1")))

	_, err := s.FindCase(ctx, "acc-1")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.InsertCase(ctx, testCase("case-1", "acc-1", "100.00")))
	c, err := s.FindCase(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, model.CaseCandidate, c.Status)
	assert.Equal(t, model.DebtorPerson, c.DebtorType)
	assert.True(t, c.NeedBirthPlace)
	assert.False(t, c.NeedINN)
	assert.Equal(t, "2025-03-01", c.PeriodFrom.ISO())

	c.DebtorType = model.DebtorCompany
	c.Flags = model.Flags{NeedINN: true}
	require.NoError(t, s.UpdateCase(ctx, c))

	c, err = s.FindCase(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, model.DebtorCompany, c.DebtorType)
	assert.True(t, c.NeedINN)
	assert.False(t, c.NeedBirthDate)

	require.NoError(t, s.SetCaseStatus(ctx, "case-1", model.CasePretrial))
	assert.Error(t, s.SetCaseStatus(ctx, "case-1", model.CaseStatus("closed")))
	assert.True(t, errors.Is(s.SetCaseStatus(ctx, "nope", model.CaseLawsuit), ErrNotFound))
}

func TestCaseSummaries_OrderedByDebt(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	for i, amount := range []string{"9.50", "1200.00", "300"} {
		id := string(rune('a' + i))
		acc := testAccount("acc-"+id, "LS-"+id)
		if i == 1 {
			acc.AddressNorm = "г. Москва, ул. Мира, д. 1"
		}
		require.NoError(t, s.InsertAccount(ctx, acc))
		require.NoError(t, s.InsertCase(ctx, testCase("case-"+id, "acc-"+id, amount)))
	}
	require.NoError(t, s.SetCaseStatus(ctx, "case-c", model.CaseLawsuit))

	got, err := s.CaseSummaries(ctx, model.CaseCandidate, 500)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "LS-b", got[0].Ls, "1200 before 9.50 numerically")
	assert.Equal(t, "г. Москва, ул. Мира, д. 1", got[0].Address)
	assert.Equal(t, "LS-a", got[1].Ls)
	assert.Equal(t, "ул. Мира, 1", got[1].Address)
	assert.Equal(t, "03.2025–05.2025", got[0].Period())
	assert.True(t, got[0].NeedBirthDate)

	limited, err := s.CaseSummaries(ctx, model.CaseCandidate, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestInTx_Rollback(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx *Store) error {
		require.NoError(t, tx.InsertAccount(ctx, testAccount("acc-1", "A1")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Accounts)

	require.NoError(t, s.InTx(ctx, func(tx *Store) error {
		if err := tx.InsertAccount(ctx, testAccount("acc-1", "A1")); err != nil {
			return err
		}
		return tx.InTx(ctx, func(inner *Store) error {
			return inner.InsertCase(ctx, testCase("case-1", "acc-1", "1"))
		})
	}))
	st, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Accounts: 1, Cases: 1}, st)
}
