// Package dates validates due dates and computes overdue and recurrence values.
//
// Dates are plain calendar days in YYYY-MM-DD form. Functions that depend on
// the current day take it as a parameter instead of reading the clock.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Layout is the only accepted date format.
const Layout = "2006-01-02"

// Recurrence rules understood by NextDueDate.
const (
	Daily   = "daily"
	Weekly  = "weekly"
	Monthly = "monthly"
)

// ErrInvalidFormat is returned for malformed or non-existent dates.
var ErrInvalidFormat = errors.New("invalid date format")

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// recurrenceDays maps a rule to its offset. Monthly is a flat 30 days,
// not a calendar month.
var recurrenceDays = map[string]int{
	Daily:   1,
	Weekly:  7,
	Monthly: 30,
}

// Validate checks that s is a zero-padded YYYY-MM-DD string naming a real
// calendar day.
func Validate(s string) error {
	if !datePattern.MatchString(s) {
		return fmt.Errorf("%w: date must be in YYYY-MM-DD format, got %q", ErrInvalidFormat, s)
	}
	t, err := time.Parse(Layout, s)
	if err != nil || t.Year() < 1 {
		return fmt.Errorf("%w: %q is not a valid date", ErrInvalidFormat, s)
	}
	return nil
}

// Parse validates s and returns it as midnight UTC.
func Parse(s string) (time.Time, error) {
	if err := Validate(s); err != nil {
		return time.Time{}, err
	}
	t, _ := time.Parse(Layout, s)
	return t, nil
}

// Format renders t's calendar day.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Today truncates now to its calendar day, expressed as midnight UTC so it
// compares directly with parsed dates.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsOverdue reports whether due is strictly before today. Absent or
// unparseable dates are never overdue.
func IsOverdue(due *string, today time.Time) bool {
	d, ok := parseOptional(due)
	if !ok {
		return false
	}
	return d.Before(Today(today))
}

// IsDueToday reports whether due falls on today.
func IsDueToday(due *string, today time.Time) bool {
	d, ok := parseOptional(due)
	if !ok {
		return false
	}
	return d.Equal(Today(today))
}

// DaysOverdue returns the whole days between due and today, floored at 0.
func DaysOverdue(due *string, today time.Time) int {
	d, ok := parseOptional(due)
	if !ok {
		return 0
	}
	// Both are UTC midnights; a Duration would saturate past ~292 years.
	days := int((Today(today).Unix() - d.Unix()) / 86400)
	if days < 0 {
		return 0
	}
	return days
}

// NextDueDate advances current by the recurrence offset. It returns nil when
// either input is absent, the rule is unknown, or current does not parse.
func NextDueDate(current *string, recurrence string) *string {
	if current == nil || recurrence == "" {
		return nil
	}
	days, ok := recurrenceDays[recurrence]
	if !ok {
		return nil
	}
	d, ok := parseOptional(current)
	if !ok {
		return nil
	}
	next := Format(d.AddDate(0, 0, days))
	return &next
}

// IsRecurrence reports whether r is a known recurrence rule.
func IsRecurrence(r string) bool {
	_, ok := recurrenceDays[r]
	return ok
}

// FormatDueDisplay renders the due-date column used in listings.
func FormatDueDisplay(due *string, today time.Time) string {
	if due == nil {
		return ""
	}
	switch {
	case IsOverdue(due, today):
		n := DaysOverdue(due, today)
		unit := "days"
		if n == 1 {
			unit = "day"
		}
		return fmt.Sprintf("[OVERDUE] Due: %s (%d %s overdue)", *due, n, unit)
	case IsDueToday(due, today):
		return fmt.Sprintf("Due: Today (%s)", *due)
	default:
		return "Due: " + *due
	}
}

func parseOptional(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	t, err := Parse(*s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
