package model

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/arrears/internal/period"
)

// DebtorType drives which documents and facts a case needs.
type DebtorType string

const (
	DebtorPerson  DebtorType = "person"
	DebtorCompany DebtorType = "company"
)

// Value implements driver.Valuer.
func (t DebtorType) Value() (driver.Value, error) {
	return string(t), nil
}

// CaseStatus is the recovery stage of a case.
type CaseStatus string

const (
	CaseCandidate  CaseStatus = "candidate"
	CasePretrial   CaseStatus = "pretrial"
	CaseCourtOrder CaseStatus = "court_order"
	CaseLawsuit    CaseStatus = "lawsuit"
	CaseFSSP       CaseStatus = "fssp"
)

// Valid reports whether s is a known status.
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseCandidate, CasePretrial, CaseCourtOrder, CaseLawsuit, CaseFSSP:
		return true
	}
	return false
}

// Value implements driver.Valuer.
func (s CaseStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// ServiceKind labels every derived case.
const ServiceKind = "ЖКУ (обобщ.)"

// Flags mark legally required facts that are still missing.
type Flags struct {
	NeedINN          bool `db:"need_inn" json:"need_inn,omitempty"`
	NeedBirthDate    bool `db:"need_birth_date" json:"need_birth_date,omitempty"`
	NeedBirthPlace   bool `db:"need_birth_place" json:"need_birth_place,omitempty"`
	NeedPeriodRefine bool `db:"need_period_refine" json:"need_period_refine,omitempty"`
}

// Names lists the set flags in a stable order.
func (f Flags) Names() []string {
	var out []string
	if f.NeedINN {
		out = append(out, "need_inn")
	}
	if f.NeedBirthDate {
		out = append(out, "need_birth_date")
	}
	if f.NeedBirthPlace {
		out = append(out, "need_birth_place")
	}
	if f.NeedPeriodRefine {
		out = append(out, "need_period_refine")
	}
	return out
}

// CaseFile is the recovery case derived from an account's latest balance.
type CaseFile struct {
	ID             string          `db:"id"`
	AccountID      string          `db:"account_id"`
	Status         CaseStatus      `db:"status"`
	DebtorType     DebtorType      `db:"debtor_type"`
	DebtAmount     decimal.Decimal `db:"debt_amount"`
	PeriodFrom     period.Date     `db:"period_from"`
	PeriodTo       period.Date     `db:"period_to"`
	ServiceKind    string          `db:"service_kind"`
	MgmtStatusText string          `db:"mgmt_status_text"`
	Flags
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CandidateSummary is a candidate case joined with its account, as listed
// for review.
type CandidateSummary struct {
	CaseID         string          `db:"case_id"`
	Ls             string          `db:"ls"`
	FullName       string          `db:"full_name"`
	Address        string          `db:"address"`
	DebtorType     DebtorType      `db:"debtor_type"`
	DebtAmount     decimal.Decimal `db:"debt_amount"`
	PeriodFrom     period.Date     `db:"period_from"`
	PeriodTo       period.Date     `db:"period_to"`
	PremisesType   string          `db:"premises_type"`
	MgmtStatusText string          `db:"mgmt_status_text"`
	Flags
}

// Period renders the debt period as "MM.yyyy" or "MM.yyyy–MM.yyyy".
func (c CandidateSummary) Period() string {
	return period.FormatRange(c.PeriodFrom, c.PeriodTo)
}
