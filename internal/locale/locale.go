// Package locale parses cell text written with Russian number and date
// conventions: decimal commas, non-breaking thousand separators, dd.MM.yyyy
// dates and spreadsheet serial dates.
package locale

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/cleared-dev/arrears/internal/period"
)

// Serial dates outside this open interval are not treated as dates
// (roughly 1954 to 2119 in the 1900 date system).
const (
	minSerial = 20000
	maxSerial = 80000
)

var dateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"2.1.06",
	"2006-01-02",
}

// Clean removes non-breaking and ordinary spaces used as group separators.
func Clean(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\u2007', '\t':
			return -1
		}
		return r
	}, s)
}

// Money parses an amount. Blank and unparseable text yield zero.
func Money(s string) decimal.Decimal {
	d, _ := TryMoney(s)
	return d
}

// TryMoney is Money that also reports whether non-blank text was understood.
// Blank text is zero and ok.
func TryMoney(s string) (decimal.Decimal, bool) {
	t := Clean(s)
	if t == "" {
		return decimal.Zero, true
	}
	t = strings.ReplaceAll(t, ",", ".")
	d, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Date parses a calendar date. A trailing time of day is ignored.
func Date(s string) (period.Date, bool) {
	t := strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
	if t == "" {
		return period.Date{}, false
	}
	if i := strings.IndexAny(t, " T"); i > 0 {
		if d, ok := parseLayouts(t[:i]); ok {
			return d, true
		}
	}
	if d, ok := parseLayouts(t); ok {
		return d, true
	}
	return Serial(t)
}

func parseLayouts(s string) (period.Date, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return period.FromTime(t), true
		}
	}
	return period.Date{}, false
}

// Serial converts a spreadsheet serial date such as "45778" or "45778,5".
func Serial(s string) (period.Date, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(Clean(s), ",", "."), 64)
	if err != nil || v <= minSerial || v >= maxSerial {
		return period.Date{}, false
	}
	t, err := excelize.ExcelDateToTime(v, false)
	if err != nil {
		return period.Date{}, false
	}
	return period.FromTime(t), true
}

// Period parses a ledger period and normalizes it to the first of its month.
// When the text is not a date, the first of now's month is returned with
// ok false so the caller can report the substitution.
func Period(s string, now time.Time) (d period.Date, ok bool) {
	if parsed, ok := Date(s); ok {
		return parsed.FirstOfMonth(), true
	}
	return period.FromTime(now).FirstOfMonth(), false
}

// NullableDate returns nil for blank or unparseable text.
func NullableDate(s string) *period.Date {
	d, ok := Date(s)
	if !ok {
		return nil
	}
	return &d
}

// Int parses a whole number. Blank or unparseable text yields nil, which
// callers treat as "unknown" rather than zero.
func Int(s string) *int {
	t := Clean(s)
	if t == "" {
		return nil
	}
	if n, err := strconv.Atoi(t); err == nil {
		return &n
	}
	// Spreadsheets sometimes store counts as "3.0".
	f, err := strconv.ParseFloat(strings.ReplaceAll(t, ",", "."), 64)
	if err != nil || f != float64(int(f)) {
		return nil
	}
	n := int(f)
	return &n
}
