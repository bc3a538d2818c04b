package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nibzard/todo-go/internal/dates"
	"github.com/nibzard/todo-go/internal/todo"
)

const (
	icsDateLayout  = "20060102"
	icsStampLayout = "20060102T150405Z"
	icsLineLimit   = 75
)

// ICS writes one all-day VEVENT per task with a valid due date and returns
// how many events were written. Tasks without a due date are skipped.
func ICS(w io.Writer, tasks []todo.Task, now time.Time) (int, error) {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//todo-go//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}

	stamp := now.UTC().Format(icsStampLayout)
	count := 0
	for _, t := range tasks {
		event, ok := taskEvent(t, stamp)
		if !ok {
			continue
		}
		lines = append(lines, event...)
		count++
	}
	lines = append(lines, "END:VCALENDAR")

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(foldICSLine(line))
		b.WriteString("\r\n")
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return 0, fmt.Errorf("write ics: %w", err)
	}
	return count, nil
}

func taskEvent(t todo.Task, stamp string) ([]string, bool) {
	if t.DueDate == nil {
		return nil, false
	}
	due, err := dates.Parse(*t.DueDate)
	if err != nil {
		return nil, false
	}

	lines := []string{
		"BEGIN:VEVENT",
		fmt.Sprintf("UID:task-%d-%s@todo-go", t.ID, t.CreatedAt),
		"DTSTAMP:" + stamp,
		"SUMMARY:" + escapeICSText(t.Description),
		"DTSTART;VALUE=DATE:" + due.Format(icsDateLayout),
		"DTEND;VALUE=DATE:" + due.AddDate(0, 0, 1).Format(icsDateLayout),
		"DESCRIPTION:" + escapeICSText(fmt.Sprintf("Priority: %s", t.Priority)),
	}
	if len(t.Tags) > 0 {
		escaped := make([]string, len(t.Tags))
		for i, tag := range t.Tags {
			escaped[i] = escapeICSText(tag)
		}
		lines = append(lines, "CATEGORIES:"+strings.Join(escaped, ","))
	}
	if t.Completed {
		lines = append(lines, "TRANSP:TRANSPARENT", "STATUS:CANCELLED")
	}
	if rrule := recurrenceRRULE(t.RecurrenceRule()); rrule != "" {
		lines = append(lines, "RRULE:"+rrule)
	}
	lines = append(lines, "END:VEVENT")
	return lines, true
}

// recurrenceRRULE maps a recurrence rule to an RRULE. Monthly is a flat
// 30 days, matching how due dates advance.
func recurrenceRRULE(rule string) string {
	switch rule {
	case dates.Daily:
		return "FREQ=DAILY;INTERVAL=1"
	case dates.Weekly:
		return "FREQ=WEEKLY;INTERVAL=1"
	case dates.Monthly:
		return "FREQ=DAILY;INTERVAL=30"
	}
	return ""
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}

// foldICSLine splits lines longer than 75 octets, continuing each with a
// leading space. Cuts never split a UTF-8 sequence.
func foldICSLine(line string) string {
	if len(line) <= icsLineLimit {
		return line
	}

	var b strings.Builder
	limit := icsLineLimit
	start := 0
	for start < len(line) {
		end := start + limit
		if end >= len(line) {
			b.WriteString(line[start:])
			break
		}
		for end > start && !isRuneStart(line[end]) {
			end--
		}
		b.WriteString(line[start:end])
		b.WriteString("\r\n ")
		start = end
		limit = icsLineLimit - 1
	}
	return b.String()
}

func isRuneStart(c byte) bool {
	return c&0xC0 != 0x80
}
