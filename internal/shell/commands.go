package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nibzard/todo-go/internal/dates"
	"github.com/nibzard/todo-go/internal/render"
	"github.com/nibzard/todo-go/internal/todo"
	"github.com/nibzard/todo-go/internal/utils"
)

// command is one entry of the command table.
type command struct {
	name    string
	aliases []string
	usage   []string
	summary string
	run     func(*Shell, parsedArgs) error
}

// ErrUsage marks commands called with missing or malformed arguments.
var ErrUsage = errors.New("usage")

// ErrNotFound is returned when a command names an unknown task id.
var ErrNotFound = errors.New("not found")

var commands []command

func init() {
	commands = []command{
		{
			name:    "add",
			aliases: []string{"a"},
			usage: []string{
				`add "description" [priority] [tags]`,
				`add "description" --due-date YYYY-MM-DD --recurrence daily|weekly|monthly`,
			},
			summary: "Add a new task",
			run:     (*Shell).add,
		},
		{
			name:    "view",
			aliases: []string{"v", "list", "ls"},
			usage:   []string{"view"},
			summary: "View all tasks, overdue first",
			run:     (*Shell).view,
		},
		{
			name:    "update",
			aliases: []string{"u"},
			usage: []string{
				`update ID ["description"] [priority] [tags]`,
				`update ID --due-date YYYY-MM-DD|none --recurrence daily|weekly|monthly|none`,
			},
			summary: "Update a task",
			run:     (*Shell).update,
		},
		{
			name:    "delete",
			aliases: []string{"d", "rm"},
			usage:   []string{"delete ID [--yes]"},
			summary: "Delete a task",
			run:     (*Shell).delete,
		},
		{
			name:    "mark",
			aliases: []string{"m", "done"},
			usage:   []string{"mark ID"},
			summary: "Mark a task complete (recurring tasks get a next instance)",
			run:     (*Shell).mark,
		},
		{
			name:    "search",
			aliases: []string{"s"},
			usage:   []string{`search "keyword"`},
			summary: "Search descriptions and tags",
			run:     (*Shell).search,
		},
		{
			name:    "filter",
			aliases: []string{"f"},
			usage: []string{
				"filter [status] [priority] [tag]",
				"filter --status active|completed --priority high|medium|low --tag TAG",
			},
			summary: "Filter tasks (use all to skip a criterion)",
			run:     (*Shell).filter,
		},
		{
			name:    "sort",
			aliases: []string{"o"},
			usage:   []string{"sort [priority|alpha|created|due] [asc|desc]"},
			summary: "Sort tasks",
			run:     (*Shell).sort,
		},
		{
			name:    "help",
			aliases: []string{"h", "?"},
			usage:   []string{"help"},
			summary: "Show this help",
			run:     (*Shell).help,
		},
		{
			name:    "exit",
			aliases: []string{"q", "quit"},
			usage:   []string{"exit"},
			summary: "Exit the application",
			run:     (*Shell).exit,
		},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
		for _, a := range c.aliases {
			if a == name {
				return c, true
			}
		}
	}
	return command{}, false
}

func usageError(name string) error {
	c, _ := lookupCommand(name)
	return fmt.Errorf("%w: %s", ErrUsage, strings.Join(c.usage, " | "))
}

func notFound(id int) error {
	return fmt.Errorf("task with ID %d %w", id, ErrNotFound)
}

// optionalValue returns the --name flag, falling back to the positional
// word at index i.
func optionalValue(p parsedArgs, name string, i int) (string, bool) {
	if v, ok := p.flag(name); ok {
		return v, true
	}
	return p.arg(i)
}

func (s *Shell) add(p parsedArgs) error {
	desc, ok := p.arg(0)
	if !ok {
		return usageError("add")
	}

	var opts todo.AddOptions
	if v, ok := optionalValue(p, "priority", 1); ok {
		opts.Priority = v
	}
	if v, ok := optionalValue(p, "tags", 2); ok {
		opts.Tags = utils.SplitAndTrim(v, ",")
	}
	if v, ok := p.flag("due-date"); ok && !isNone(v) {
		opts.DueDate = v
	}
	if v, ok := p.flag("recurrence"); ok && !isNone(v) {
		opts.Recurrence = v
	}
	if len(p.positional) > 3 {
		return fmt.Errorf("add: unexpected argument %q (quote descriptions with spaces)", p.positional[3])
	}

	task, err := s.store.Add(desc, opts)
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	if err := s.save(); err != nil {
		return err
	}
	s.printer.Success(fmt.Sprintf("Task added with ID: %d", task.ID))
	return nil
}

func (s *Shell) view(parsedArgs) error {
	tasks := s.store.All()
	if len(tasks) == 0 {
		s.printer.Println("No tasks available.")
		return nil
	}
	s.printList(tasks)
	return nil
}

// printList renders tasks in display order, using the configured sort as
// the tie-break.
func (s *Shell) printList(tasks []todo.Task) {
	sorted := todo.Sort(tasks, s.sortBy, s.sortOrder)
	s.printer.PrintTable(render.DisplayOrder(sorted, s.today()), s.today())
}

func (s *Shell) update(p parsedArgs) error {
	raw, ok := p.arg(0)
	if !ok {
		return usageError("update")
	}
	id, err := parseID(raw)
	if err != nil {
		return err
	}

	var patch todo.Patch
	changed := false
	if v, ok := p.arg(1); ok {
		patch.Description = &v
		changed = true
	}
	if v, ok := optionalValue(p, "priority", 2); ok {
		patch.Priority = &v
		changed = true
	}
	if v, ok := optionalValue(p, "tags", 3); ok {
		tags := utils.SplitAndTrim(v, ",")
		patch.Tags = &tags
		changed = true
	}
	if v, ok := p.flag("due-date"); ok {
		if isNone(v) {
			v = ""
		}
		patch.DueDate = &v
		changed = true
	}
	if v, ok := p.flag("recurrence"); ok {
		if isNone(v) {
			v = ""
		}
		patch.Recurrence = &v
		changed = true
	}
	if !changed {
		return usageError("update")
	}

	found, err := s.store.Update(id, patch)
	if !found {
		return notFound(id)
	}
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	if err := s.save(); err != nil {
		return err
	}
	s.printer.Success(fmt.Sprintf("Task %d updated successfully", id))
	return nil
}

func (s *Shell) delete(p parsedArgs) error {
	raw, ok := p.arg(0)
	if !ok {
		return usageError("delete")
	}
	id, err := parseID(raw)
	if err != nil {
		return err
	}

	task, found := s.store.Get(id)
	if !found {
		return notFound(id)
	}

	if s.confirmDelete && !p.has("yes") {
		if !s.confirm(fmt.Sprintf("Are you sure you want to delete task '%s'?", task.Description)) {
			s.printer.Warn("Deletion cancelled")
			return nil
		}
	}

	if !s.store.Delete(id) {
		return notFound(id)
	}
	if err := s.save(); err != nil {
		return err
	}
	s.printer.Success(fmt.Sprintf("Task %d deleted successfully", id))
	return nil
}

func (s *Shell) mark(p parsedArgs) error {
	raw, ok := p.arg(0)
	if !ok {
		return usageError("mark")
	}
	id, err := parseID(raw)
	if err != nil {
		return err
	}

	task, found := s.store.Get(id)
	if !found {
		return notFound(id)
	}
	if task.Completed {
		s.printer.Warn(fmt.Sprintf("Task %d is already complete", id))
		return nil
	}

	next, _ := s.store.Complete(id)
	if err := s.save(); err != nil {
		return err
	}

	if next == nil {
		s.printer.Success(fmt.Sprintf("Task %d marked as complete", id))
		return nil
	}
	due := "no due date"
	if next.DueDate != nil {
		due = "due date " + *next.DueDate
	}
	s.printer.Success(fmt.Sprintf("Task %d marked as complete. Next instance created with ID %d and %s", id, next.ID, due))
	return nil
}

func (s *Shell) search(p parsedArgs) error {
	keyword := strings.TrimSpace(strings.Join(p.positional, " "))
	if keyword == "" {
		return usageError("search")
	}

	tasks := s.store.Search(keyword)
	if len(tasks) == 0 {
		s.printer.Println(fmt.Sprintf("No tasks found matching '%s'", keyword))
		return nil
	}
	s.printer.Println(fmt.Sprintf("Search results for '%s' (%d %s):", keyword, len(tasks), utils.Plural(len(tasks), "task")))
	s.printList(tasks)
	return nil
}

func (s *Shell) filter(p parsedArgs) error {
	var f todo.Filter
	if v, ok := optionalValue(p, "status", 0); ok && !isWildcard(v) {
		f.Status = v
	}
	if v, ok := optionalValue(p, "priority", 1); ok && !isWildcard(v) {
		pr, err := todo.ParsePriority(v)
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
		f.Priority = string(pr)
	}
	if v, ok := optionalValue(p, "tag", 2); ok && !isWildcard(v) {
		f.Tag = v
	}

	tasks := s.store.Filter(f)
	if len(tasks) == 0 {
		s.printer.Println("No tasks match the filter criteria")
		return nil
	}
	s.printer.Println("Filtered tasks:")
	s.printList(tasks)
	return nil
}

func (s *Shell) sort(p parsedArgs) error {
	by := s.sortBy
	if v, ok := p.arg(0); ok && v != "" {
		by = strings.ToLower(v)
	}
	order := s.sortOrder
	if v, ok := p.arg(1); ok {
		switch strings.ToLower(v) {
		case todo.OrderAsc, todo.OrderDesc:
			order = strings.ToLower(v)
		}
	}

	switch by {
	case todo.SortPriority, todo.SortAlpha, todo.SortCreated, "due", "due_date":
	default:
		return fmt.Errorf("sort criteria must be 'priority', 'alpha', 'created', or 'due', got '%s'", by)
	}

	tasks := s.store.All()
	if len(tasks) == 0 {
		s.printer.Println("No tasks available.")
		return nil
	}

	today := s.today()
	if by == "due" || by == "due_date" {
		s.printer.Println("Tasks sorted by due date (overdue first):")
		s.printer.PrintTable(render.DisplayOrder(tasks, today), today)
		return nil
	}
	s.printer.Println(fmt.Sprintf("Tasks sorted by %s (%s):", by, order))
	s.printer.PrintTable(todo.Sort(tasks, by, order), today)
	return nil
}

func (s *Shell) help(parsedArgs) error {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, c := range commands {
		names := append([]string{c.name}, c.aliases...)
		fmt.Fprintf(&b, "  %-24s %s\n", strings.Join(names, ", "), c.summary)
		for _, u := range c.usage {
			fmt.Fprintf(&b, "      %s\n", u)
		}
	}
	b.WriteString("\nDates use YYYY-MM-DD. Today is " + dates.Format(s.today()) + ".\n")
	s.printer.Println(strings.TrimRight(b.String(), "\n"))
	return nil
}

func (s *Shell) exit(parsedArgs) error {
	s.printer.Println("Goodbye!")
	return errExit
}
