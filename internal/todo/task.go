package todo

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nibzard/todo-go/internal/dates"
)

// ErrValidation marks invalid descriptions, priorities and recurrence rules.
// Bad dates wrap dates.ErrInvalidFormat instead.
var ErrValidation = errors.New("validation failed")

// Priority is a task's importance.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultPriority is assigned when none is given.
const DefaultPriority = PriorityMedium

// Rank orders priorities for sorting. Unknown values rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// ParsePriority normalizes s and checks it against the known priorities.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", &ValidationError{
			Field: "priority",
			Err:   fmt.Errorf("%w: must be 'high', 'medium', or 'low', got %q", ErrValidation, s),
		}
	}
	return p, nil
}

// Recurrence is how often a task repeats.
type Recurrence string

const (
	RecurrenceDaily   Recurrence = dates.Daily
	RecurrenceWeekly  Recurrence = dates.Weekly
	RecurrenceMonthly Recurrence = dates.Monthly
)

// ParseRecurrence normalizes s and checks it against the known rules.
func ParseRecurrence(s string) (Recurrence, error) {
	r := strings.ToLower(strings.TrimSpace(s))
	if !dates.IsRecurrence(r) {
		return "", &ValidationError{
			Field: "recurrence",
			Err:   fmt.Errorf("%w: must be 'daily', 'weekly', or 'monthly', got %q", ErrValidation, s),
		}
	}
	return Recurrence(r), nil
}

// Task is a single todo item.
type Task struct {
	ID          int         `json:"id" yaml:"id"`
	Description string      `json:"description" yaml:"description"`
	Completed   bool        `json:"completed" yaml:"completed"`
	CreatedAt   string      `json:"created_at" yaml:"created_at"`
	Priority    Priority    `json:"priority" yaml:"priority"`
	Tags        []string    `json:"tags" yaml:"tags"`
	DueDate     *string     `json:"due_date" yaml:"due_date,omitempty"`
	Recurrence  *Recurrence `json:"recurrence" yaml:"recurrence,omitempty"`
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	c := t
	c.Tags = append([]string{}, t.Tags...)
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	if t.Recurrence != nil {
		r := *t.Recurrence
		c.Recurrence = &r
	}
	return c
}

// HasTag reports exact membership of tag.
func (t Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

// IsRecurring reports whether t has a recurrence rule.
func (t Task) IsRecurring() bool {
	return t.Recurrence != nil && *t.Recurrence != ""
}

// RecurrenceRule returns the rule as a plain string, or "".
func (t Task) RecurrenceRule() string {
	if t.Recurrence == nil {
		return ""
	}
	return string(*t.Recurrence)
}

// DueDateString returns the due date or "".
func (t Task) DueDateString() string {
	if t.DueDate == nil {
		return ""
	}
	return *t.DueDate
}

// ValidationError describes a rejected field.
type ValidationError struct {
	Field string // task field or JSON path
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func validateDescription(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", &ValidationError{
			Field: "description",
			Err:   fmt.Errorf("%w: description cannot be empty", ErrValidation),
		}
	}
	return trimmed, nil
}

func validateDueDate(s string) error {
	if err := dates.Validate(s); err != nil {
		return &ValidationError{Field: "due_date", Err: err}
	}
	return nil
}

// normalizeTags trims tags and drops blanks and repeats, keeping first
// occurrence order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}
