package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/arrears/internal/columns"
	"github.com/cleared-dev/arrears/internal/model"
	"github.com/cleared-dev/arrears/internal/period"
	"github.com/cleared-dev/arrears/internal/validate"
)

type mockStore struct {
	got []*model.PeriodBalance
}

func (m *mockStore) UpsertBalance(_ context.Context, b *model.PeriodBalance) error {
	m.got = append(m.got, b)
	return nil
}

func TestFromRow(t *testing.T) {
	a := validate.Amounts{
		DebtStart: decimal.NewFromInt(100),
		Accrued:   decimal.NewFromInt(50),
		Paid:      decimal.NewFromInt(50),
		DebtEnd:   decimal.NewFromInt(100),
	}
	rec := columns.Record{MonthsInDebt: "3", DebtCategory: "до 3 мес.", SrcFile: "май.csv", RoomNo: "12"}

	b := FromRow("acc-1", period.NewDate(2025, 5, 17), a, rec)
	assert.Equal(t, "acc-1", b.AccountID)
	assert.Equal(t, "2025-05-01", b.Period.ISO())
	require.NotNil(t, b.MonthsInDebt)
	assert.Equal(t, 3, *b.MonthsInDebt)
	assert.Equal(t, "до 3 мес.", b.DebtCategory)
	assert.Equal(t, "май.csv", b.SrcFile)
	assert.True(t, b.DebtEnd.Equal(decimal.NewFromInt(100)))

	b = FromRow("acc-1", period.NewDate(2025, 5, 1), a, columns.Record{MonthsInDebt: ""})
	assert.Nil(t, b.MonthsInDebt, "unknown is not zero")
}

func TestUpsert_Stamps(t *testing.T) {
	w := &Writer{
		now:   func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) },
		newID: func() string { return "bal-1" },
	}
	st := &mockStore{}
	b := &model.PeriodBalance{AccountID: "acc-1", Period: period.NewDate(2025, 5, 9)}

	require.NoError(t, w.Upsert(context.Background(), st, b))
	require.Len(t, st.got, 1)
	assert.Equal(t, "bal-1", st.got[0].ID)
	assert.Equal(t, "2025-05-01", st.got[0].Period.ISO())
	assert.Equal(t, 2025, st.got[0].ImportedAt.Year())
}

func TestNewWriter_Clock(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	st := &mockStore{}
	w := NewWriter(WithClock(func() time.Time { return at }))

	require.NoError(t, w.Upsert(context.Background(), st, &model.PeriodBalance{AccountID: "acc-1", Period: period.NewDate(2025, 5, 1)}))
	require.Len(t, st.got, 1)
	assert.Equal(t, at, st.got[0].ImportedAt)
	assert.NotEmpty(t, st.got[0].ID)
}
