package period

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// isoLayout is the storage form of a Date.
const isoLayout = "2006-01-02"

// Date is a calendar day without time of day, stored as "yyyy-MM-dd".
type Date struct {
	time.Time
}

// NewDate returns the date for year, month, day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime drops the time of day from t.
func FromTime(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseISO parses "2025-05-01".
func ParseISO(s string) (Date, error) {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// ISO returns the date as "2025-05-01".
func (d Date) ISO() string {
	return d.Format(isoLayout)
}

// Russian returns the date as "01.05.2025".
func (d Date) Russian() string {
	return d.Format("02.01.2006")
}

// FirstOfMonth returns the first day of d's month.
func (d Date) FirstOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// LastOfMonth returns the last calendar day of d's month.
func (d Date) LastOfMonth() Date {
	return Date{d.FirstOfMonth().AddDate(0, 1, -1)}
}

// AddMonths shifts the first day of d's month by n months.
func (d Date) AddMonths(n int) Date {
	return Date{d.FirstOfMonth().AddDate(0, n, 0)}
}

// Key returns "2025-05", used in warnings and logs.
func (d Date) Key() string {
	return d.Format("2006-01")
}

// MonthLabel returns "05.2025".
func (d Date) MonthLabel() string {
	return d.Format("01.2006")
}

// Equal reports whether d and o are the same day.
func (d Date) Equal(o Date) bool {
	return d.ISO() == o.ISO()
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.ISO(), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case time.Time:
		*d = FromTime(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into period.Date", src)
	}
}

func (d *Date) parse(s string) error {
	if len(s) > len(isoLayout) {
		s = s[:len(isoLayout)]
	}
	parsed, err := ParseISO(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// FormatRange renders a debt period as "03.2025" or "03.2025–05.2025".
func FormatRange(from, to Date) string {
	if from.IsZero() {
		return ""
	}
	a, b := from.MonthLabel(), to.MonthLabel()
	if a == b {
		return a
	}
	return a + "–" + b
}
