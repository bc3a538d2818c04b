package todo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/todo-go/internal/dates"
)

func fixedClock(day string) func() time.Time {
	t, err := time.Parse(dates.Layout, day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(15 * time.Hour) }
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(nil, WithClock(fixedClock("2026-01-01")))
}

func strPtr(s string) *string { return &s }

func ids(tasks []Task) []int {
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestStore_AddAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)

	a, err := s.Add("first", AddOptions{})
	require.NoError(t, err)
	b, err := s.Add("second", AddOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)
	assert.Equal(t, "2026-01-01", a.CreatedAt)
	assert.Equal(t, PriorityMedium, a.Priority)
	assert.Empty(t, a.Tags)
	assert.Nil(t, a.DueDate)
	assert.Nil(t, a.Recurrence)
	assert.False(t, a.Completed)
}

func TestStore_IDsNotReusedAfterDelete(t *testing.T) {
	s := newTestStore(t)

	for _, d := range []string{"a", "b", "c"} {
		_, err := s.Add(d, AddOptions{})
		require.NoError(t, err)
	}
	require.True(t, s.Delete(3))
	require.True(t, s.Delete(2))

	next, err := s.Add("d", AddOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, next.ID)
	assert.Equal(t, []int{1, 4}, ids(s.All()))
}

func TestStore_AddValidation(t *testing.T) {
	tests := []struct {
		name    string
		desc    string
		opts    AddOptions
		wantErr error
		field   string
	}{
		{"empty description", "", AddOptions{}, ErrValidation, "description"},
		{"whitespace description", "   \t", AddOptions{}, ErrValidation, "description"},
		{"bad priority", "x", AddOptions{Priority: "urgent"}, ErrValidation, "priority"},
		{"bad recurrence", "x", AddOptions{Recurrence: "yearly"}, ErrValidation, "recurrence"},
		{"bad date shape", "x", AddOptions{DueDate: "2026-1-01"}, dates.ErrInvalidFormat, "due_date"},
		{"impossible date", "x", AddOptions{DueDate: "2026-02-30"}, dates.ErrInvalidFormat, "due_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			_, err := s.Add(tt.desc, tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, 0, s.Len())
			assert.Equal(t, 1, s.NextID())
		})
	}
}

func TestStore_AddNormalizesInput(t *testing.T) {
	s := newTestStore(t)

	task, err := s.Add("  Pay rent  ", AddOptions{
		Priority:   "HIGH",
		Tags:       []string{"home", " bills ", "", "home"},
		DueDate:    "2026-02-01",
		Recurrence: "Monthly",
	})
	require.NoError(t, err)

	assert.Equal(t, "Pay rent", task.Description)
	assert.Equal(t, PriorityHigh, task.Priority)
	assert.Equal(t, []string{"home", "bills"}, task.Tags)
	assert.Equal(t, "2026-02-01", task.DueDateString())
	assert.Equal(t, "monthly", task.RecurrenceRule())
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add("task", AddOptions{Tags: []string{"work"}})
	require.NoError(t, err)

	got, ok := s.Get(1)
	require.True(t, ok)
	got.Tags[0] = "mutated"
	got.Description = "mutated"

	again, _ := s.Get(1)
	assert.Equal(t, "task", again.Description)
	assert.Equal(t, []string{"work"}, again.Tags)

	_, ok = s.Get(99)
	assert.False(t, ok)
}

func TestStore_AllIsSnapshot(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add("task", AddOptions{Tags: []string{"a"}})
	require.NoError(t, err)

	all := s.All()
	all[0].Completed = true
	all[0].Tags = append(all[0].Tags, "b")

	got, _ := s.Get(1)
	assert.False(t, got.Completed)
	assert.Equal(t, []string{"a"}, got.Tags)
}

func TestStore_Update(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add("write report", AddOptions{DueDate: "2026-01-10", Recurrence: "weekly"})
	require.NoError(t, err)

	ok, err := s.Update(1, Patch{
		Description: strPtr("write final report"),
		Priority:    strPtr("low"),
		Tags:        &[]string{"work"},
	})
	require.NoError(t, err)
	require.True(t, ok)

	got, _ := s.Get(1)
	assert.Equal(t, "write final report", got.Description)
	assert.Equal(t, PriorityLow, got.Priority)
	assert.Equal(t, []string{"work"}, got.Tags)
	assert.Equal(t, "2026-01-10", got.DueDateString())
	assert.Equal(t, "weekly", got.RecurrenceRule())
	assert.Equal(t, "2026-01-01", got.CreatedAt)

	ok, err = s.Update(1, Patch{DueDate: strPtr(""), Recurrence: strPtr("")})
	require.NoError(t, err)
	require.True(t, ok)

	got, _ = s.Get(1)
	assert.Nil(t, got.DueDate)
	assert.Nil(t, got.Recurrence)
}

func TestStore_UpdateUnknownID(t *testing.T) {
	s := newTestStore(t)
	ok, err := s.Update(7, Patch{Description: strPtr("x")})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_UpdateRejectsInvalidFieldsAtomically(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add("keep me", AddOptions{Priority: "high"})
	require.NoError(t, err)

	ok, err := s.Update(1, Patch{
		Priority:    strPtr("low"),
		Description: strPtr("   "),
	})
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrValidation)

	ok, err = s.Update(1, Patch{Priority: strPtr("low"), DueDate: strPtr("2026-13-01")})
	assert.True(t, ok)
	assert.ErrorIs(t, err, dates.ErrInvalidFormat)

	got, _ := s.Get(1)
	assert.Equal(t, "keep me", got.Description)
	assert.Equal(t, PriorityHigh, got.Priority)
}

func TestStore_UpdateCompletedToggle(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add("task", AddOptions{})
	require.NoError(t, err)
	s.Complete(1)

	done := false
	ok, err := s.Update(1, Patch{Completed: &done})
	require.NoError(t, err)
	require.True(t, ok)

	got, _ := s.Get(1)
	assert.False(t, got.Completed)
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Add("task", AddOptions{})
	require.NoError(t, err)

	assert.True(t, s.Delete(1))
	assert.False(t, s.Delete(1))
	assert.Equal(t, 0, s.Len())
}

func TestStore_Search(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, "Buy milk", AddOptions{Tags: []string{"groceries"}})
	mustAdd(t, s, "Call mom", AddOptions{Tags: []string{"family"}})
	mustAdd(t, s, "Grocery list review", AddOptions{Tags: []string{"grocery"}})

	tests := []struct {
		keyword string
		want    []int
	}{
		{"MILK", []int{1}},
		{"grocer", []int{1, 3}},
		{"fam", []int{2}},
		{"nothing", []int{}},
		{"", []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(s.Search(tt.keyword)))
		})
	}
}

func TestStore_FilterANDSemantics(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, "one", AddOptions{Priority: "high", Tags: []string{"work"}})
	mustAdd(t, s, "two", AddOptions{Priority: "high", Tags: []string{"home"}})
	mustAdd(t, s, "three", AddOptions{Priority: "low", Tags: []string{"work"}})
	mustAdd(t, s, "four", AddOptions{Priority: "high", Tags: []string{"work", "urgent"}})
	mustAdd(t, s, "five", AddOptions{Priority: "high", Tags: []string{"work"}})
	s.Complete(5)

	tests := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{"all three", Filter{Status: "active", Priority: "high", Tag: "work"}, []int{1, 4}},
		{"case-insensitive status and priority", Filter{Status: "ACTIVE", Priority: "High", Tag: "work"}, []int{1, 4}},
		{"completed only", Filter{Status: "completed"}, []int{5}},
		{"unknown status ignored", Filter{Status: "someday", Priority: "low"}, []int{3}},
		{"tag exact match", Filter{Tag: "wor"}, []int{}},
		{"no filters", Filter{}, []int{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(s.Filter(tt.filter)))
		})
	}
}

func TestSort_PriorityStable(t *testing.T) {
	tasks := []Task{
		{ID: 1, Priority: PriorityLow},
		{ID: 2, Priority: PriorityHigh},
		{ID: 3, Priority: PriorityMedium},
		{ID: 4, Priority: PriorityHigh},
		{ID: 5, Priority: Priority("someday")},
		{ID: 6, Priority: PriorityLow},
	}

	assert.Equal(t, []int{2, 4, 3, 1, 6, 5}, ids(Sort(tasks, SortPriority, OrderDesc)))
	assert.Equal(t, []int{5, 1, 6, 3, 2, 4}, ids(Sort(tasks, SortPriority, OrderAsc)))
	assert.Equal(t, []int{2, 4, 3, 1, 6, 5}, ids(Sort(tasks, "", "")))
	assert.Equal(t, []int{2, 4, 3, 1, 6, 5}, ids(Sort(tasks, "color", "DESC")))
	assert.Equal(t, []int{5, 1, 6, 3, 2, 4}, ids(Sort(tasks, "color", "sideways")))

	// input untouched
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(tasks))
}

func TestSort_AlphaAndCreated(t *testing.T) {
	tasks := []Task{
		{ID: 1, Description: "banana", CreatedAt: "2026-01-03"},
		{ID: 2, Description: "Apple", CreatedAt: "2025-12-31"},
		{ID: 3, Description: "cherry", CreatedAt: "2026-01-01"},
	}

	assert.Equal(t, []int{2, 1, 3}, ids(Sort(tasks, SortAlpha, OrderAsc)))
	assert.Equal(t, []int{3, 1, 2}, ids(Sort(tasks, "ALPHA", "desc")))
	assert.Equal(t, []int{2, 3, 1}, ids(Sort(tasks, SortCreated, OrderAsc)))
	assert.Equal(t, []int{1, 3, 2}, ids(Sort(tasks, SortCreated, OrderDesc)))
}

func TestStore_CompleteRecurring(t *testing.T) {
	s := newTestStore(t)
	orig := mustAdd(t, s, "Weekly review", AddOptions{
		Priority:   "high",
		Tags:       []string{"work"},
		DueDate:    "2026-01-01",
		Recurrence: "weekly",
	})

	next, found := s.Complete(orig.ID)
	require.True(t, found)
	require.NotNil(t, next)

	got, _ := s.Get(orig.ID)
	assert.True(t, got.Completed)
	assert.Equal(t, "2026-01-01", got.DueDateString())

	assert.NotEqual(t, orig.ID, next.ID)
	assert.Equal(t, 2, next.ID)
	assert.False(t, next.Completed)
	assert.Equal(t, "Weekly review", next.Description)
	assert.Equal(t, PriorityHigh, next.Priority)
	assert.Equal(t, "weekly", next.RecurrenceRule())
	assert.Equal(t, "2026-01-08", next.DueDateString())
	assert.Equal(t, []string{"work"}, next.Tags)

	spawned, ok := s.Get(next.ID)
	require.True(t, ok)
	assert.Equal(t, *next, spawned)

	// tags are an independent copy
	_, err := s.Update(orig.ID, Patch{Tags: &[]string{"changed"}})
	require.NoError(t, err)
	spawned, _ = s.Get(next.ID)
	assert.Equal(t, []string{"work"}, spawned.Tags)
}

func TestStore_CompleteRecurringWithoutDueDate(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, "stretch", AddOptions{Recurrence: "daily"})

	next, found := s.Complete(1)
	require.True(t, found)
	require.NotNil(t, next)
	assert.Nil(t, next.DueDate)
	assert.Equal(t, 2, s.Len())
}

func TestStore_CompleteNonRecurring(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, "one-off", AddOptions{DueDate: "2026-01-05"})

	next, found := s.Complete(1)
	assert.True(t, found)
	assert.Nil(t, next)
	assert.Equal(t, 1, s.Len())

	got, _ := s.Get(1)
	assert.True(t, got.Completed)
}

func TestStore_CompleteUnknownID(t *testing.T) {
	s := newTestStore(t)
	next, found := s.Complete(42)
	assert.False(t, found)
	assert.Nil(t, next)
}

func TestNewStore_NextIDFollowsMax(t *testing.T) {
	s := NewStore([]Task{{ID: 3, Description: "a"}, {ID: 9, Description: "b"}}, WithClock(fixedClock("2026-01-01")))
	assert.Equal(t, 10, s.NextID())

	s.Replace([]Task{{ID: 2, Description: "c"}})
	assert.Equal(t, 10, s.NextID())
}

func mustAdd(t *testing.T, s *Store, desc string, opts AddOptions) Task {
	t.Helper()
	task, err := s.Add(desc, opts)
	require.NoError(t, err)
	return task
}
