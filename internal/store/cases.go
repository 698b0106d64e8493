package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cleared-dev/arrears/internal/model"
)

const caseColumns = `id, account_id, status, debtor_type, debt_amount, period_from, period_to,
	service_kind, mgmt_status_text, need_inn, need_birth_date, need_birth_place,
	need_period_refine, created_at, updated_at`

// FindCase returns the case of an account.
func (s *Store) FindCase(ctx context.Context, accountID string) (*model.CaseFile, error) {
	var c model.CaseFile
	err := sqlx.GetContext(ctx, s.q, &c, `SELECT `+caseColumns+` FROM case_file WHERE account_id = ?`, accountID)
	if err != nil {
		return nil, fmt.Errorf("finding case for %s: %w", accountID, notFound(err))
	}
	return &c, nil
}

// InsertCase stores a new case.
func (s *Store) InsertCase(ctx context.Context, c *model.CaseFile) error {
	_, err := sqlx.NamedExecContext(ctx, s.q, `INSERT INTO case_file (`+caseColumns+`) VALUES (
		:id, :account_id, :status, :debtor_type, :debt_amount, :period_from, :period_to,
		:service_kind, :mgmt_status_text, :need_inn, :need_birth_date, :need_birth_place,
		:need_period_refine, :created_at, :updated_at)`, c)
	if err != nil {
		return fmt.Errorf("inserting case for %s: %w", c.AccountID, err)
	}
	return nil
}

// UpdateCase rewrites an existing case, status included.
func (s *Store) UpdateCase(ctx context.Context, c *model.CaseFile) error {
	res, err := sqlx.NamedExecContext(ctx, s.q, `UPDATE case_file SET
		status = :status, debtor_type = :debtor_type, debt_amount = :debt_amount,
		period_from = :period_from, period_to = :period_to, service_kind = :service_kind,
		mgmt_status_text = :mgmt_status_text, need_inn = :need_inn,
		need_birth_date = :need_birth_date, need_birth_place = :need_birth_place,
		need_period_refine = :need_period_refine, updated_at = :updated_at
		WHERE id = :id`, c)
	if err != nil {
		return fmt.Errorf("updating case %s: %w", c.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("updating case %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

// SetCaseStatus moves a case to another recovery stage.
func (s *Store) SetCaseStatus(ctx context.Context, caseID string, status model.CaseStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid case status %q", status)
	}
	res, err := s.q.ExecContext(ctx, `UPDATE case_file SET status = ? WHERE id = ?`, status, caseID)
	if err != nil {
		return fmt.Errorf("setting status of case %s: %w", caseID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("setting status of case %s: %w", caseID, ErrNotFound)
	}
	return nil
}

// CaseSummaries lists cases in a status joined with their accounts, largest
// debt first.
func (s *Store) CaseSummaries(ctx context.Context, status model.CaseStatus, limit int) ([]model.CandidateSummary, error) {
	var out []model.CandidateSummary
	err := sqlx.SelectContext(ctx, s.q, &out, `SELECT
		cf.id AS case_id, a.ls, a.full_name,
		CASE WHEN a.address_norm <> '' THEN a.address_norm ELSE a.address_raw END AS address,
		cf.debtor_type, cf.debt_amount, cf.period_from, cf.period_to,
		a.premises_type, cf.mgmt_status_text,
		cf.need_inn, cf.need_birth_date, cf.need_birth_place, cf.need_period_refine
		FROM case_file cf
		JOIN account a ON a.id = cf.account_id
		WHERE cf.status = ?
		ORDER BY CAST(cf.debt_amount AS REAL) DESC, a.ls
		LIMIT ?`, status, limit)
	if err != nil {
		return nil, fmt.Errorf("listing %s cases: %w", status, err)
	}
	return out, nil
}
