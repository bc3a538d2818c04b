// Package ui provides the interactive full-screen task browser.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/nibzard/todo-go/internal/dates"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/render"
	"github.com/nibzard/todo-go/internal/todo"
)

// ErrNotTTY is returned when the browser is started without a terminal.
var ErrNotTTY = errors.New("tui requires a TTY")

// sortModes is the order the s key cycles through. "due" is the default
// overdue-first display order.
var sortModes = []string{"due", todo.SortPriority, todo.SortAlpha, todo.SortCreated}

// Options configures the browser.
type Options struct {
	Path             string
	Logger           *log.Logger
	NoColor          bool
	DescriptionWidth int
	SortBy           string
	SortOrder        string
	RefreshInterval  time.Duration
}

// RunTUI browses the store until the user quits or ctx is cancelled.
func RunTUI(ctx context.Context, store *todo.Store, opts Options) error {
	if !render.IsTTY(os.Stdout) {
		return ErrNotTTY
	}
	model := newTUIModel(store, opts)
	model.styles = newStyles(lipgloss.NewRenderer(os.Stdout), opts.NoColor)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type tuiModel struct {
	store        *todo.Store
	path         string
	logger       *log.Logger
	styles       tuiStyles
	width        int
	sortBy       string
	sortOrder    string
	filter       string
	cursor       int
	showHelp     bool
	message      string
	loadErr      error
	modTime      time.Time
	tickInterval time.Duration
}

type tuiStyles struct {
	title     lipgloss.Style
	selected  lipgloss.Style
	completed lipgloss.Style
	overdue   lipgloss.Style
	dueToday  lipgloss.Style
	muted     lipgloss.Style
	message   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, noColor bool) tuiStyles {
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return tuiStyles{
		title:     r.NewStyle().Bold(true),
		selected:  r.NewStyle().Reverse(true),
		completed: r.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true),
		overdue:   r.NewStyle().Foreground(lipgloss.Color("9")),
		dueToday:  r.NewStyle().Foreground(lipgloss.Color("11")),
		muted:     r.NewStyle().Foreground(lipgloss.Color("8")),
		message:   r.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

type tickMsg time.Time

func newTUIModel(store *todo.Store, opts Options) *tuiModel {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	interval := opts.RefreshInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	width := opts.DescriptionWidth
	if width <= 0 {
		width = render.DefaultDescriptionWidth
	}
	m := &tuiModel{
		store:        store,
		path:         opts.Path,
		logger:       logger,
		styles:       newStyles(lipgloss.NewRenderer(io.Discard), true),
		width:        width,
		sortBy:       "due",
		sortOrder:    opts.SortOrder,
		tickInterval: interval,
	}
	if opts.SortBy != "" && opts.SortBy != "due" {
		m.sortBy = opts.SortBy
	}
	if info, err := os.Stat(m.path); err == nil {
		m.modTime = info.ModTime()
	}
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showHelp {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			}
			m.showHelp = false
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.reload(true)
		case "h", "?":
			m.showHelp = true
		case "j", "down":
			m.move(1)
		case "k", "up":
			m.move(-1)
		case "g", "home":
			m.cursor = 0
		case "G", "end":
			m.cursor = len(m.visible()) - 1
			m.clampCursor()
		case "x", " ", "enter":
			m.toggleSelected()
		case "s":
			m.cycleSort()
		case "1":
			m.setFilter(todo.StatusActive)
		case "2":
			m.setFilter(todo.StatusCompleted)
		case "0":
			m.setFilter("")
		}
		return m, nil
	case tickMsg:
		m.reload(false)
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	m.writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString("Error loading todo file:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
	}

	m.writeOverview(&b)
	m.writeTasks(&b)

	if m.message != "" {
		b.WriteString(m.styles.message.Render(m.message) + "\n\n")
	}
	b.WriteString(m.styles.muted.Render("j/k move | x complete | 1/2/0 filter | s sort | ? help | q quit") + "\n")
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// visible returns the tasks shown for the current filter and sort.
func (m *tuiModel) visible() []todo.Task {
	tasks := m.store.Filter(todo.Filter{Status: m.filter})
	if m.sortBy == "due" {
		return render.DisplayOrder(tasks, m.store.Today())
	}
	return todo.Sort(tasks, m.sortBy, m.sortOrder)
}

func (m *tuiModel) selected() (todo.Task, bool) {
	tasks := m.visible()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return todo.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *tuiModel) move(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *tuiModel) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) setFilter(status string) {
	m.filter = status
	m.cursor = 0
}

func (m *tuiModel) cycleSort() {
	next := 0
	for i, mode := range sortModes {
		if mode == m.sortBy {
			next = (i + 1) % len(sortModes)
			break
		}
	}
	m.sortBy = sortModes[next]
	m.cursor = 0
	m.message = "Sorted by " + m.sortLabel()
}

func (m *tuiModel) sortLabel() string {
	if m.sortBy == "due" {
		return "due date (overdue first)"
	}
	order := todo.OrderAsc
	if m.sortOrder == "" || strings.EqualFold(m.sortOrder, todo.OrderDesc) {
		order = todo.OrderDesc
	}
	return fmt.Sprintf("%s (%s)", m.sortBy, order)
}

// toggleSelected completes an active task, spawning the next occurrence of
// a recurring one, or reopens a completed task.
func (m *tuiModel) toggleSelected() {
	task, ok := m.selected()
	if !ok {
		return
	}

	if task.Completed {
		reopen := false
		if _, err := m.store.Update(task.ID, todo.Patch{Completed: &reopen}); err != nil {
			m.message = "Error: " + err.Error()
			return
		}
		m.message = fmt.Sprintf("Task %d reopened", task.ID)
	} else {
		next, _ := m.store.Complete(task.ID)
		m.message = fmt.Sprintf("Task %d marked as complete", task.ID)
		if next != nil {
			m.message += fmt.Sprintf(". Next instance created with ID %d", next.ID)
		}
	}

	if err := m.save(); err != nil {
		m.message = "Error: " + err.Error()
	}
	m.clampCursor()
}

func (m *tuiModel) save() error {
	if m.path == "" {
		return nil
	}
	if err := m.store.Save(m.path); err != nil {
		m.logger.Error("save failed", "path", m.path, "err", err)
		return err
	}
	if info, err := os.Stat(m.path); err == nil {
		m.modTime = info.ModTime()
	}
	return nil
}

// reload rereads the task file. Unless forced it only does so when the
// file changed on disk.
func (m *tuiModel) reload(force bool) {
	if m.path == "" {
		return
	}
	info, err := os.Stat(m.path)
	if err == nil && !force && info.ModTime().Equal(m.modTime) {
		return
	}
	if err == nil {
		m.modTime = info.ModTime()
	}
	if err := m.store.Load(m.path, m.logger); err != nil {
		m.loadErr = err
		return
	}
	m.loadErr = nil
	m.clampCursor()
	if force {
		m.message = "Reloaded " + m.path
	}
}

func (m *tuiModel) writeTitle(b *strings.Builder) {
	title := "Todo"
	b.WriteString(m.styles.title.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func (m *tuiModel) writeOverview(b *strings.Builder) {
	today := m.store.Today()
	active, completed, overdue := 0, 0, 0
	for _, t := range m.store.All() {
		if t.Completed {
			completed++
			continue
		}
		active++
		if dates.IsOverdue(t.DueDate, today) {
			overdue++
		}
	}
	fmt.Fprintf(b, "  Active: %d  Completed: %d  Overdue: %d  Today: %s\n", active, completed, overdue, dates.Format(today))

	filter := "all"
	if m.filter != "" {
		filter = m.filter
	}
	fmt.Fprintf(b, "  Showing: %s  Sorted by: %s\n\n", filter, m.sortLabel())
}

func (m *tuiModel) writeTasks(b *strings.Builder) {
	tasks := m.visible()
	if len(tasks) == 0 {
		if m.store.Len() == 0 {
			b.WriteString("  No tasks available.\n\n")
		} else {
			b.WriteString("  No tasks match the filter criteria\n\n")
		}
		return
	}

	today := m.store.Today()
	for i, t := range tasks {
		line := m.formatTask(t, today)
		if i == m.cursor {
			line = m.styles.selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
}

func (m *tuiModel) formatTask(t todo.Task, today time.Time) string {
	line := fmt.Sprintf("%s #%d (%s) %s", render.StatusMark(t), t.ID, t.Priority, render.Truncate(t.Description, m.width))
	if len(t.Tags) > 0 {
		line += " [" + strings.Join(t.Tags, ", ") + "]"
	}
	if t.IsRecurring() {
		line += " (" + t.RecurrenceRule() + ")"
	}
	if t.Completed {
		return m.styles.completed.Render(line)
	}

	if t.DueDate == nil {
		return line
	}
	due := dates.FormatDueDisplay(t.DueDate, today)
	switch {
	case dates.IsOverdue(t.DueDate, today):
		due = m.styles.overdue.Render(due)
	case dates.IsDueToday(t.DueDate, today):
		due = m.styles.dueToday.Render(due)
	}
	return line + "  " + due
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c           Quit\n")
	b.WriteString("  j, down / k, up     Move selection\n")
	b.WriteString("  g / G               First / last task\n")
	b.WriteString("  x, space, enter     Complete or reopen the selected task\n")
	b.WriteString("  1                   Show active tasks\n")
	b.WriteString("  2                   Show completed tasks\n")
	b.WriteString("  0                   Show all tasks\n")
	b.WriteString("  s                   Cycle sort: due, priority, alpha, created\n")
	b.WriteString("  r, F5               Reload the todo file\n")
	b.WriteString("  h, ?                Toggle this help screen\n\n")
	b.WriteString("Press any key to return.\n")
}
