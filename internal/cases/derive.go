// Package cases derives recovery cases from an account and its latest
// period balance.
package cases

import (
	"strings"

	"github.com/cleared-dev/arrears/internal/model"
	"github.com/cleared-dev/arrears/internal/period"
)

const (
	distributedType = "Распределенные"
	activeStatus    = "Действующий"
	licensedPhrase  = "управление (в лицензии)"
)

// ClassifyDebtor returns person for distributed (individual) subscriptions
// and company for everything else, including an empty type.
func ClassifyDebtor(lsType string) model.DebtorType {
	if strings.EqualFold(strings.TrimSpace(lsType), distributedType) {
		return model.DebtorPerson
	}
	return model.DebtorCompany
}

// Range returns the debt period ending at latest. With a known positive
// months-in-arrears m it starts m-1 months earlier.
func Range(latest period.Date, months *int) (from, to period.Date) {
	to = latest.FirstOfMonth()
	if months == nil || *months <= 0 {
		return to, to
	}
	return to.AddMonths(-(*months - 1)), to
}

// Narrative describes who manages the building. periodTo supplies the end
// date when the account has no close date.
func Narrative(a *model.Account, periodTo period.Date) string {
	active := strings.EqualFold(strings.TrimSpace(a.LsStatus), activeStatus)
	licensed := strings.Contains(strings.ToLower(a.MgmtStatus), licensedPhrase)
	org := strings.TrimSpace(a.Organization)

	if active && licensed {
		if org == "" {
			return "Дом находится под управлением управляющей организации (в лицензии)."
		}
		return "Дом находится под управлением " + org + " (в лицензии)."
	}

	end := periodTo.LastOfMonth()
	if a.LsCloseDate != nil {
		end = *a.LsCloseDate
	}
	if org == "" {
		return "До " + end.Russian() + " управляющая организация управляла домом."
	}
	return "До " + end.Russian() + " управляющая организация " + org + " управляла домом."
}

// FlagsFor returns the facts still missing for a debtor type. They are a
// fixed lookup and never accumulate across imports.
func FlagsFor(t model.DebtorType, monthsKnown bool) model.Flags {
	f := model.Flags{NeedPeriodRefine: !monthsKnown}
	if t == model.DebtorPerson {
		f.NeedBirthDate = true
		f.NeedBirthPlace = true
	} else {
		f.NeedINN = true
	}
	return f
}

// Derive computes the status-independent fields of an account's case.
// Identity, status and timestamps are left to the caller.
func Derive(a *model.Account, latest *model.PeriodBalance) model.CaseFile {
	debtor := ClassifyDebtor(a.LsType)
	from, to := Range(latest.Period, latest.MonthsInDebt)
	return model.CaseFile{
		AccountID:      a.ID,
		DebtorType:     debtor,
		DebtAmount:     latest.DebtEnd,
		PeriodFrom:     from,
		PeriodTo:       to,
		ServiceKind:    model.ServiceKind,
		MgmtStatusText: Narrative(a, to),
		Flags:          FlagsFor(debtor, latest.MonthsInDebt != nil),
	}
}
