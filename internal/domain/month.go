package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	monthLayout = "2006-01"
	dateLayout  = "2006-01-02"
)

// Month identifies a calendar month. The zero value means "no month selected".
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth builds a Month from any instant within it.
func NewMonth(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses the YYYY-MM wire format.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, &ErrValidation{Field: "month", Message: fmt.Sprintf("expected YYYY-MM, got %q", s)}
	}
	return NewMonth(t), nil
}

// IsZero reports whether no month is set.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// AddMonths moves m by n calendar months (n may be negative).
func (m Month) AddMonths(n int) Month {
	return NewMonth(m.firstDay().AddDate(0, n, 0))
}

// String renders the YYYY-MM wire format, or "" for the zero month.
func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return m.firstDay().Format(monthLayout)
}

// Label renders a human label such as "October 2025".
func (m Month) Label() string {
	if m.IsZero() {
		return "Loading..."
	}
	return m.firstDay().Format("January 2006")
}

func (m Month) firstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) MarshalJSON() ([]byte, error) {
	if m.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(m.String())
}

func (m *Month) UnmarshalJSON(b []byte) error {
	var s string
	if string(b) == "null" {
		*m = Month{}
		return nil
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*m = Month{}
		return nil
	}
	parsed, err := ParseMonth(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Date is a calendar day without time-of-day, encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate builds a Date in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the YYYY-MM-DD wire format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, &ErrValidation{Field: "date", Message: fmt.Sprintf("expected YYYY-MM-DD, got %q", s)}
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	// The backend sometimes serializes full timestamps; keep the day only.
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
