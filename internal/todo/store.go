package todo

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/nibzard/todo-go/internal/dates"
)

// Sort keys and orders accepted by Sort.
const (
	SortPriority = "priority"
	SortAlpha    = "alpha"
	SortCreated  = "created"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Status filter values.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Store owns the in-memory task list.
type Store struct {
	tasks  []Task
	nextID int
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a store holding a copy of tasks. The next id follows the
// highest id present.
func NewStore(tasks []Task, opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.Replace(tasks)
	return s
}

// Replace swaps the task list, keeping ids from going backwards.
func (s *Store) Replace(tasks []Task) {
	s.tasks = make([]Task, 0, len(tasks))
	maxID := 0
	for _, t := range tasks {
		s.tasks = append(s.tasks, t.Clone())
		maxID = max(maxID, t.ID)
	}
	s.nextID = max(s.nextID, maxID+1)
}

// NextID returns the id the next added task will receive.
func (s *Store) NextID() int {
	return s.nextID
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Today returns the store clock's calendar day.
func (s *Store) Today() time.Time {
	return dates.Today(s.now())
}

// AddOptions holds the optional fields of a new task. Empty values are
// treated as not given.
type AddOptions struct {
	Priority   string
	Tags       []string
	DueDate    string
	Recurrence string
}

// Add validates and appends a new task.
func (s *Store) Add(description string, opts AddOptions) (Task, error) {
	desc, err := validateDescription(description)
	if err != nil {
		return Task{}, err
	}

	task := Task{
		Description: desc,
		Priority:    DefaultPriority,
		Tags:        normalizeTags(opts.Tags),
	}
	if opts.Priority != "" {
		if task.Priority, err = ParsePriority(opts.Priority); err != nil {
			return Task{}, err
		}
	}
	if opts.DueDate != "" {
		if err := validateDueDate(opts.DueDate); err != nil {
			return Task{}, err
		}
		due := opts.DueDate
		task.DueDate = &due
	}
	if opts.Recurrence != "" {
		r, err := ParseRecurrence(opts.Recurrence)
		if err != nil {
			return Task{}, err
		}
		task.Recurrence = &r
	}

	return s.insert(task), nil
}

func (s *Store) insert(task Task) Task {
	task.ID = s.nextID
	task.CreatedAt = dates.Format(s.Today())
	s.nextID++
	s.tasks = append(s.tasks, task)
	return task.Clone()
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id int) (Task, bool) {
	i := s.index(id)
	if i < 0 {
		return Task{}, false
	}
	return s.tasks[i].Clone(), true
}

func (s *Store) index(id int) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Patch is a partial update. Nil fields are left unchanged; an empty
// DueDate or Recurrence clears that field.
type Patch struct {
	Description *string
	Priority    *string
	Tags        *[]string
	Completed   *bool
	DueDate     *string
	Recurrence  *string
}

// Update applies p to the task. It returns false when the id is unknown.
// All provided fields are validated before any is applied.
func (s *Store) Update(id int, p Patch) (bool, error) {
	i := s.index(id)
	if i < 0 {
		return false, nil
	}

	next := s.tasks[i].Clone()
	if p.Description != nil {
		desc, err := validateDescription(*p.Description)
		if err != nil {
			return true, err
		}
		next.Description = desc
	}
	if p.Priority != nil {
		pr, err := ParsePriority(*p.Priority)
		if err != nil {
			return true, err
		}
		next.Priority = pr
	}
	if p.Tags != nil {
		next.Tags = normalizeTags(*p.Tags)
	}
	if p.Completed != nil {
		next.Completed = *p.Completed
	}
	if p.DueDate != nil {
		if *p.DueDate == "" {
			next.DueDate = nil
		} else {
			if err := validateDueDate(*p.DueDate); err != nil {
				return true, err
			}
			due := *p.DueDate
			next.DueDate = &due
		}
	}
	if p.Recurrence != nil {
		if *p.Recurrence == "" {
			next.Recurrence = nil
		} else {
			r, err := ParseRecurrence(*p.Recurrence)
			if err != nil {
				return true, err
			}
			next.Recurrence = &r
		}
	}

	s.tasks[i] = next
	return true, nil
}

// Delete removes the task. It returns false when the id is unknown.
func (s *Store) Delete(id int) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return true
}

// All returns a snapshot of every task in insertion order.
func (s *Store) All() []Task {
	return cloneAll(s.tasks)
}

// Search matches keyword case-insensitively against descriptions and tags.
func (s *Store) Search(keyword string) []Task {
	kw := strings.ToLower(keyword)
	var out []Task
	for _, t := range s.tasks {
		if strings.Contains(strings.ToLower(t.Description), kw) ||
			slices.ContainsFunc(t.Tags, func(tag string) bool {
				return strings.Contains(strings.ToLower(tag), kw)
			}) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Filter selects tasks by status, priority and tag. Empty fields match all.
type Filter struct {
	Status   string
	Priority string
	Tag      string
}

// Matches reports whether t passes every set criterion. Unknown status
// values do not filter.
func (f Filter) Matches(t Task) bool {
	switch strings.ToLower(f.Status) {
	case StatusActive:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}
	if f.Priority != "" && !strings.EqualFold(string(t.Priority), f.Priority) {
		return false
	}
	if f.Tag != "" && !t.HasTag(f.Tag) {
		return false
	}
	return true
}

// Filter returns the tasks matching f in insertion order.
func (s *Store) Filter(f Filter) []Task {
	var out []Task
	for _, t := range s.tasks {
		if f.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Sort is a convenience for the package-level Sort.
func (s *Store) Sort(tasks []Task, by, order string) []Task {
	return Sort(tasks, by, order)
}

// Sort returns a stably sorted copy of tasks. by is priority, alpha or
// created (unknown falls back to priority). Only desc, or an empty order,
// reverses; any other order word sorts ascending.
func Sort(tasks []Task, by, order string) []Task {
	out := cloneAll(tasks)

	var compare func(a, b Task) int
	switch strings.ToLower(by) {
	case SortAlpha:
		compare = func(a, b Task) int {
			return cmp.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
		}
	case SortCreated:
		compare = func(a, b Task) int {
			return cmp.Compare(a.CreatedAt, b.CreatedAt)
		}
	default:
		compare = func(a, b Task) int {
			return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
		}
	}

	if order == "" || strings.EqualFold(order, OrderDesc) {
		asc := compare
		compare = func(a, b Task) int { return asc(b, a) }
	}

	slices.SortStableFunc(out, compare)
	return out
}

// Complete marks the task completed. For a recurring task it also appends
// the next occurrence and returns it. found is false for unknown ids.
func (s *Store) Complete(id int) (next *Task, found bool) {
	i := s.index(id)
	if i < 0 {
		return nil, false
	}
	s.tasks[i].Completed = true

	cur := s.tasks[i]
	if !cur.IsRecurring() {
		return nil, true
	}

	r := *cur.Recurrence
	spawned := s.insert(Task{
		Description: cur.Description,
		Priority:    cur.Priority,
		Tags:        append([]string{}, cur.Tags...),
		DueDate:     dates.NextDueDate(cur.DueDate, string(r)),
		Recurrence:  &r,
	})
	return &spawned, true
}

func cloneAll(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
