package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cleared-dev/arrears/internal/model"
)

const accountColumns = `id, ls, accrual_center, ls_code, full_name, address_raw, address_norm,
	premises_type, ls_status, ls_close_date, ls_type, mgmt_status, organization,
	group_company, division, division_head, object_name, district, house,
	address_no, room_no, created_at, updated_at`

// FindAccount returns the account with the given natural key.
func (s *Store) FindAccount(ctx context.Context, key model.AccountKey) (*model.Account, error) {
	var a model.Account
	err := sqlx.GetContext(ctx, s.q, &a,
		`SELECT `+accountColumns+` FROM account WHERE ls = ? AND accrual_center = ?`,
		key.Ls, key.AccrualCenter)
	if err != nil {
		return nil, fmt.Errorf("finding account %s: %w", key, notFound(err))
	}
	return &a, nil
}

// GetAccount returns the account with the given id.
func (s *Store) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	var a model.Account
	err := sqlx.GetContext(ctx, s.q, &a, `SELECT `+accountColumns+` FROM account WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting account %s: %w", id, notFound(err))
	}
	return &a, nil
}

// InsertAccount stores a new account.
func (s *Store) InsertAccount(ctx context.Context, a *model.Account) error {
	_, err := sqlx.NamedExecContext(ctx, s.q, `INSERT INTO account (`+accountColumns+`) VALUES (
		:id, :ls, :accrual_center, :ls_code, :full_name, :address_raw, :address_norm,
		:premises_type, :ls_status, :ls_close_date, :ls_type, :mgmt_status, :organization,
		:group_company, :division, :division_head, :object_name, :district, :house,
		:address_no, :room_no, :created_at, :updated_at)`, a)
	if err != nil {
		return fmt.Errorf("inserting account %s: %w", a.Key(), err)
	}
	return nil
}

// UpdateAccount rewrites every mutable column of an existing account.
func (s *Store) UpdateAccount(ctx context.Context, a *model.Account) error {
	res, err := sqlx.NamedExecContext(ctx, s.q, `UPDATE account SET
		ls_code = :ls_code, full_name = :full_name, address_raw = :address_raw,
		address_norm = :address_norm, premises_type = :premises_type, ls_status = :ls_status,
		ls_close_date = :ls_close_date, ls_type = :ls_type, mgmt_status = :mgmt_status,
		organization = :organization, group_company = :group_company, division = :division,
		division_head = :division_head, object_name = :object_name, district = :district,
		house = :house, address_no = :address_no, room_no = :room_no, updated_at = :updated_at
		WHERE id = :id`, a)
	if err != nil {
		return fmt.Errorf("updating account %s: %w", a.Key(), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("updating account %s: %w", a.Key(), ErrNotFound)
	}
	return nil
}
