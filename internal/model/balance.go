package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/arrears/internal/period"
)

// PeriodBalance is one month's ledger line for an account.
type PeriodBalance struct {
	ID        string `db:"id"`
	AccountID string `db:"account_id"`
	// Period is always the first day of its month.
	Period        period.Date     `db:"period"`
	DebtStart     decimal.Decimal `db:"debt_start"`
	Accrued       decimal.Decimal `db:"accrued"`
	Paid          decimal.Decimal `db:"paid"`
	DebtEnd       decimal.Decimal `db:"debt_end"`
	MonthsInDebt  *int            `db:"months_in_debt"`
	DebtCategory  string          `db:"debt_category"`
	DebtStructure string          `db:"debt_structure"`
	SrcFile       string          `db:"src_file"`
	RoomNo        string          `db:"room_no"`
	ImportedAt    time.Time       `db:"imported_at"`
}

// Imbalance returns |start + accrued - paid - end|.
func (b *PeriodBalance) Imbalance() decimal.Decimal {
	return b.DebtStart.Add(b.Accrued).Sub(b.Paid).Sub(b.DebtEnd).Abs()
}
