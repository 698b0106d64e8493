package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cleared-dev/arrears/internal/model"
	"github.com/cleared-dev/arrears/internal/period"
)

const balanceColumns = `id, account_id, period, debt_start, accrued, paid, debt_end,
	months_in_debt, debt_category, debt_structure, src_file, room_no, imported_at`

// UpsertBalance inserts the balance or, when the account already has one for
// that month, replaces every field of it. The stored row keeps its id.
func (s *Store) UpsertBalance(ctx context.Context, b *model.PeriodBalance) error {
	_, err := sqlx.NamedExecContext(ctx, s.q, `INSERT INTO period_balance (`+balanceColumns+`) VALUES (
		:id, :account_id, :period, :debt_start, :accrued, :paid, :debt_end,
		:months_in_debt, :debt_category, :debt_structure, :src_file, :room_no, :imported_at)
		ON CONFLICT (account_id, period) DO UPDATE SET
		debt_start = excluded.debt_start, accrued = excluded.accrued, paid = excluded.paid,
		debt_end = excluded.debt_end, months_in_debt = excluded.months_in_debt,
		debt_category = excluded.debt_category, debt_structure = excluded.debt_structure,
		src_file = excluded.src_file, room_no = excluded.room_no, imported_at = excluded.imported_at`, b)
	if err != nil {
		return fmt.Errorf("upserting balance %s %s: %w", b.AccountID, b.Period.Key(), err)
	}
	return nil
}

// GetBalance returns an account's balance for one month.
func (s *Store) GetBalance(ctx context.Context, accountID string, p period.Date) (*model.PeriodBalance, error) {
	var b model.PeriodBalance
	err := sqlx.GetContext(ctx, s.q, &b,
		`SELECT `+balanceColumns+` FROM period_balance WHERE account_id = ? AND period = ?`,
		accountID, p.FirstOfMonth())
	if err != nil {
		return nil, fmt.Errorf("getting balance %s %s: %w", accountID, p.Key(), notFound(err))
	}
	return &b, nil
}

// LatestBalance returns the account's balance with the latest period.
func (s *Store) LatestBalance(ctx context.Context, accountID string) (*model.PeriodBalance, error) {
	var b model.PeriodBalance
	err := sqlx.GetContext(ctx, s.q, &b,
		`SELECT `+balanceColumns+` FROM period_balance WHERE account_id = ? ORDER BY period DESC LIMIT 1`,
		accountID)
	if err != nil {
		return nil, fmt.Errorf("latest balance for %s: %w", accountID, notFound(err))
	}
	return &b, nil
}

// Balances lists an account's balances, oldest first.
func (s *Store) Balances(ctx context.Context, accountID string) ([]model.PeriodBalance, error) {
	var out []model.PeriodBalance
	err := sqlx.SelectContext(ctx, s.q, &out,
		`SELECT `+balanceColumns+` FROM period_balance WHERE account_id = ? ORDER BY period`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing balances for %s: %w", accountID, err)
	}
	return out, nil
}
