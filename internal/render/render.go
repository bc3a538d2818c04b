// Package render formats tasks for the terminal.
package render

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/nibzard/todo-go/internal/dates"
	"github.com/nibzard/todo-go/internal/todo"
)

// DefaultDescriptionWidth is used when Options leaves the width unset.
const DefaultDescriptionWidth = 48

// Options controls table output.
type Options struct {
	NoColor          bool
	DescriptionWidth int
}

// Printer renders tasks and messages for one output stream.
type Printer struct {
	w      io.Writer
	opts   Options
	styles styles
}

type styles struct {
	header    lipgloss.Style
	cell      lipgloss.Style
	border    lipgloss.Style
	high      lipgloss.Style
	medium    lipgloss.Style
	low       lipgloss.Style
	overdue   lipgloss.Style
	dueToday  lipgloss.Style
	completed lipgloss.Style
	success   lipgloss.Style
	warning   lipgloss.Style
	errorText lipgloss.Style
	muted     lipgloss.Style
}

// NewPrinter creates a printer for w. Colors are dropped when opts.NoColor
// is set or w is not a terminal.
func NewPrinter(w io.Writer, opts Options) *Printer {
	if opts.DescriptionWidth <= 0 {
		opts.DescriptionWidth = DefaultDescriptionWidth
	}

	r := lipgloss.NewRenderer(w)
	if !ColorEnabled(w, opts.NoColor) {
		r.SetColorProfile(termenv.Ascii)
	}

	cell := r.NewStyle().Padding(0, 1)
	return &Printer{
		w:    w,
		opts: opts,
		styles: styles{
			header:    cell.Bold(true),
			cell:      cell,
			border:    r.NewStyle().Foreground(lipgloss.Color("8")),
			high:      r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			medium:    r.NewStyle().Foreground(lipgloss.Color("11")),
			low:       r.NewStyle().Foreground(lipgloss.Color("10")),
			overdue:   r.NewStyle().Foreground(lipgloss.Color("9")),
			dueToday:  r.NewStyle().Foreground(lipgloss.Color("11")),
			completed: r.NewStyle().Foreground(lipgloss.Color("8")).Strikethrough(true),
			success:   r.NewStyle().Foreground(lipgloss.Color("10")),
			warning:   r.NewStyle().Foreground(lipgloss.Color("11")),
			errorText: r.NewStyle().Foreground(lipgloss.Color("9")),
			muted:     r.NewStyle().Foreground(lipgloss.Color("8")),
		},
	}
}

// ColorEnabled reports whether colored output should be written to w.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	return IsTTY(w)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Headers are the table column titles.
var Headers = []string{"ID", "Done", "Priority", "Description", "Tags", "Due", "Repeat"}

// Table renders tasks in the given order.
func (p *Printer) Table(tasks []todo.Task, today time.Time) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, p.row(t, today))
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.styles.border).
		Headers(Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.styles.header
			}
			if row < 0 || row >= len(tasks) {
				return p.styles.cell
			}
			return p.cellStyle(tasks[row], col, today)
		})

	return tbl.Render()
}

func (p *Printer) row(t todo.Task, today time.Time) []string {
	return []string{
		strconv.Itoa(t.ID),
		StatusMark(t),
		string(t.Priority),
		Truncate(t.Description, p.opts.DescriptionWidth),
		strings.Join(t.Tags, ", "),
		dates.FormatDueDisplay(t.DueDate, today),
		t.RecurrenceRule(),
	}
}

func (p *Printer) cellStyle(t todo.Task, col int, today time.Time) lipgloss.Style {
	base := p.styles.cell
	switch {
	case t.Completed:
		return base.Inherit(p.styles.completed)
	case col == 2:
		return base.Inherit(p.priorityStyle(t.Priority))
	case col == 5 && dates.IsOverdue(t.DueDate, today):
		return base.Inherit(p.styles.overdue)
	case col == 5 && dates.IsDueToday(t.DueDate, today):
		return base.Inherit(p.styles.dueToday)
	}
	return base
}

func (p *Printer) priorityStyle(pr todo.Priority) lipgloss.Style {
	switch pr {
	case todo.PriorityHigh:
		return p.styles.high
	case todo.PriorityMedium:
		return p.styles.medium
	case todo.PriorityLow:
		return p.styles.low
	}
	return p.styles.muted
}

// PrintTable writes the table followed by a newline.
func (p *Printer) PrintTable(tasks []todo.Task, today time.Time) {
	io.WriteString(p.w, p.Table(tasks, today)+"\n")
}

// Success writes a confirmation line.
func (p *Printer) Success(msg string) {
	io.WriteString(p.w, p.styles.success.Render(msg)+"\n")
}

// Warn writes a warning line.
func (p *Printer) Warn(msg string) {
	io.WriteString(p.w, p.styles.warning.Render(msg)+"\n")
}

// Error writes an error line.
func (p *Printer) Error(msg string) {
	io.WriteString(p.w, p.styles.errorText.Render(msg)+"\n")
}

// Println writes an unstyled line.
func (p *Printer) Println(msg string) {
	io.WriteString(p.w, msg+"\n")
}

// StatusMark returns "[x]" for completed tasks and "[ ]" otherwise.
func StatusMark(t todo.Task) string {
	if t.Completed {
		return "[x]"
	}
	return "[ ]"
}

// Truncate shortens s to at most width terminal cells, marking the cut
// with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	cut := runewidth.Truncate(s, width-1, "")
	return strings.TrimRight(cut, " ") + "…"
}
