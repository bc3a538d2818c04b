package render

import (
	"cmp"
	"slices"
	"time"

	"github.com/nibzard/todo-go/internal/dates"
	"github.com/nibzard/todo-go/internal/todo"
)

// dueGroup buckets tasks for DisplayOrder.
func dueGroup(t todo.Task, today time.Time) int {
	switch {
	case dates.IsOverdue(t.DueDate, today):
		return 0
	case t.DueDate != nil:
		return 1
	default:
		return 2
	}
}

// DisplayOrder returns a copy of tasks with overdue tasks first (most
// overdue first), then tasks with a due date by date, then tasks without
// one. Ties keep their input order.
func DisplayOrder(tasks []todo.Task, today time.Time) []todo.Task {
	out := make([]todo.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}

	slices.SortStableFunc(out, func(a, b todo.Task) int {
		ga, gb := dueGroup(a, today), dueGroup(b, today)
		if c := cmp.Compare(ga, gb); c != 0 {
			return c
		}
		if ga == 0 {
			if c := cmp.Compare(dates.DaysOverdue(b.DueDate, today), dates.DaysOverdue(a.DueDate, today)); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.DueDateString(), b.DueDateString())
	})
	return out
}
