// Package validate decides whether a source row may be imported.
package validate

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/arrears/internal/locale"
	"github.com/cleared-dev/arrears/internal/period"
	"github.com/cleared-dev/arrears/internal/source"
)

// DefaultTolerance is the largest imbalance still accepted, in currency units.
var DefaultTolerance = decimal.RequireFromString("0.01")

// Rule names the check a row failed.
type Rule int

const (
	RuleWellFormed Rule = iota + 1
	RuleKeyPresent
	RuleBalance
)

func (r Rule) String() string {
	switch r {
	case RuleWellFormed:
		return "well-formed"
	case RuleKeyPresent:
		return "key-present"
	case RuleBalance:
		return "balance"
	}
	return fmt.Sprintf("rule(%d)", int(r))
}

// Violation is a skipped row. Its message is the user-facing warning.
type Violation struct {
	Rule   Rule
	Line   int
	Ls     string
	Period period.Date
	// Diff is the imbalance for RuleBalance.
	Diff decimal.Decimal
}

func (v *Violation) Error() string {
	switch v.Rule {
	case RuleWellFormed:
		return fmt.Sprintf("Строка %d: количество колонок не совпадает с заголовком.", v.Line)
	case RuleKeyPresent:
		return fmt.Sprintf("Строка %d: пустой ЛС, строка пропущена.", v.Line)
	case RuleBalance:
		return fmt.Sprintf("Строка %d: ЛС %s %s: баланс не сходится (+/- %s). Строка пропущена.",
			v.Line, v.Ls, v.Period.Key(), v.Diff.StringFixed(2))
	}
	return fmt.Sprintf("Строка %d: %s", v.Line, v.Rule)
}

// Amounts are a row's parsed money fields.
type Amounts struct {
	DebtStart decimal.Decimal
	Accrued   decimal.Decimal
	Paid      decimal.Decimal
	DebtEnd   decimal.Decimal
}

// Imbalance returns |start + accrued - paid - end|.
func (a Amounts) Imbalance() decimal.Decimal {
	return a.DebtStart.Add(a.Accrued).Sub(a.Paid).Sub(a.DebtEnd).Abs()
}

// Checker applies the row rules.
type Checker struct {
	Tolerance decimal.Decimal
}

// NewChecker returns a checker with the given tolerance; a negative one
// falls back to DefaultTolerance.
func NewChecker(tolerance decimal.Decimal) *Checker {
	if tolerance.IsNegative() {
		tolerance = DefaultTolerance
	}
	return &Checker{Tolerance: tolerance}
}

// Check verifies structure, key presence and the balance identity
// start + accrued - paid == end. p is the row's parsed period and only
// appears in the balance warning.
func (c *Checker) Check(row source.Row, p period.Date) (Amounts, *Violation) {
	if row.Malformed {
		return Amounts{}, &Violation{Rule: RuleWellFormed, Line: row.Line}
	}
	rec := row.Record
	if rec.Ls == "" {
		return Amounts{}, &Violation{Rule: RuleKeyPresent, Line: row.Line}
	}

	a := Amounts{
		DebtStart: locale.Money(rec.DebtStart),
		Accrued:   locale.Money(rec.Accrued),
		Paid:      locale.Money(rec.Paid),
		DebtEnd:   locale.Money(rec.DebtEnd),
	}
	if diff := a.Imbalance(); diff.GreaterThan(c.Tolerance) {
		return a, &Violation{Rule: RuleBalance, Line: row.Line, Ls: rec.Ls, Period: p, Diff: diff}
	}
	return a, nil
}
