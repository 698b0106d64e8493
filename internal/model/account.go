package model

import (
	"time"

	"github.com/cleared-dev/arrears/internal/period"
)

// AccountKey identifies a ledger subscriber: the subscriber code (ЛС) scoped
// by accrual center. An empty scope is a valid scope.
type AccountKey struct {
	Ls            string
	AccrualCenter string
}

// String returns "center|ls".
func (k AccountKey) String() string {
	return k.AccrualCenter + "|" + k.Ls
}

// Account is one ledger subscriber. Empty strings mean "not known yet".
type Account struct {
	ID            string       `db:"id"`
	Ls            string       `db:"ls"`
	AccrualCenter string       `db:"accrual_center"`
	LsCode        string       `db:"ls_code"`
	FullName      string       `db:"full_name"`
	AddressRaw    string       `db:"address_raw"`
	AddressNorm   string       `db:"address_norm"`
	PremisesType  string       `db:"premises_type"`
	LsStatus      string       `db:"ls_status"`
	LsCloseDate   *period.Date `db:"ls_close_date"`
	LsType        string       `db:"ls_type"`
	MgmtStatus    string       `db:"mgmt_status"`
	Organization  string       `db:"organization"`
	GroupCompany  string       `db:"group_company"`
	Division      string       `db:"division"`
	DivisionHead  string       `db:"division_head"`
	ObjectName    string       `db:"object_name"`
	District      string       `db:"district"`
	House         string       `db:"house"`
	AddressNo     string       `db:"address_no"`
	RoomNo        string       `db:"room_no"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

// Key returns the account's natural key.
func (a *Account) Key() AccountKey {
	return AccountKey{Ls: a.Ls, AccrualCenter: a.AccrualCenter}
}

// DisplayAddress prefers the normalized address.
func (a *Account) DisplayAddress() string {
	if a.AddressNorm != "" {
		return a.AddressNorm
	}
	return a.AddressRaw
}
