package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/todo-go/internal/todo"
)

var stamp = time.Date(2026, 1, 10, 15, 4, 5, 0, time.UTC)

func strPtr(s string) *string { return &s }

func recPtr(r todo.Recurrence) *todo.Recurrence { return &r }

func sampleTasks() []todo.Task {
	return []todo.Task{
		{ID: 1, Description: "Pay rent; utilities, too", CreatedAt: "2026-01-01", Priority: todo.PriorityHigh,
			Tags: []string{"home", "bills"}, DueDate: strPtr("2026-02-01"), Recurrence: recPtr(todo.RecurrenceMonthly)},
		{ID: 2, Description: "Read a book", CreatedAt: "2026-01-02", Priority: todo.PriorityLow, Tags: []string{}},
		{ID: 3, Description: "Standup", Completed: true, CreatedAt: "2026-01-03", Priority: todo.PriorityMedium,
			Tags: []string{}, DueDate: strPtr("2026-01-05"), Recurrence: recPtr(todo.RecurrenceWeekly)},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{".yml", FormatYAML},
		{"yaml", FormatYAML},
		{"ics", FormatICS},
		{"ical", FormatICS},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat("csv")
	assert.ErrorContains(t, err, "unknown export format")
}

func TestJSON_MatchesFileFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleTasks(), stamp))

	want, err := todo.EncodeTasks(sampleTasks())
	require.NoError(t, err)
	assert.Equal(t, string(want), buf.String())

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded, 3)
	assert.Nil(t, decoded[1]["due_date"])
}

func TestYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleTasks(), stamp))

	out := buf.String()
	assert.Contains(t, out, "- id: 1\n")
	assert.Contains(t, out, "recurrence: monthly")
	assert.Contains(t, out, "- home")
	assert.Contains(t, out, "- bills")

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, "2026-02-01", decoded[0]["due_date"])
	assert.NotContains(t, decoded[1], "due_date")
	assert.NotContains(t, decoded[1], "recurrence")
}

func TestICS(t *testing.T) {
	var buf bytes.Buffer
	n, err := ICS(&buf, sampleTasks(), stamp)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	assert.NotContains(t, strings.ReplaceAll(out, "\r\n", ""), "\n")

	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "UID:task-1-2026-01-01@todo-go\r\n")
	assert.Contains(t, out, "DTSTAMP:20260110T150405Z\r\n")
	assert.Contains(t, out, "SUMMARY:Pay rent\\; utilities\\, too\r\n")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20260201\r\n")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20260202\r\n")
	assert.Contains(t, out, "CATEGORIES:home,bills\r\n")
	assert.Contains(t, out, "RRULE:FREQ=DAILY;INTERVAL=30\r\n")
	assert.Contains(t, out, "RRULE:FREQ=WEEKLY;INTERVAL=1\r\n")
	assert.Contains(t, out, "STATUS:CANCELLED\r\n")
	assert.NotContains(t, out, "Read a book")
}

func TestICS_SkipsInvalidDueDate(t *testing.T) {
	tasks := []todo.Task{{ID: 1, Description: "bad", Priority: todo.PriorityLow, DueDate: strPtr("soon")}}

	var buf bytes.Buffer
	n, err := ICS(&buf, tasks, stamp)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NotContains(t, buf.String(), "VEVENT")
}

func TestRecurrenceRRULE(t *testing.T) {
	assert.Equal(t, "FREQ=DAILY;INTERVAL=1", recurrenceRRULE("daily"))
	assert.Equal(t, "FREQ=WEEKLY;INTERVAL=1", recurrenceRRULE("weekly"))
	assert.Equal(t, "FREQ=DAILY;INTERVAL=30", recurrenceRRULE("monthly"))
	assert.Empty(t, recurrenceRRULE(""))
}

func TestEscapeICSText(t *testing.T) {
	assert.Equal(t, `a\\b\;c\,d\ne`, escapeICSText("a\\b;c,d\ne"))
	assert.Equal(t, `x\ny`, escapeICSText("x\r\ny"))
}

func TestFoldICSLine(t *testing.T) {
	short := "SUMMARY:short"
	assert.Equal(t, short, foldICSLine(short))

	long := "SUMMARY:" + strings.Repeat("é", 80)
	folded := foldICSLine(long)
	parts := strings.Split(folded, "\r\n")
	require.Greater(t, len(parts), 1)

	var rebuilt strings.Builder
	for i, p := range parts {
		assert.LessOrEqual(t, len(p), icsLineLimit, "segment %d", i)
		if i > 0 {
			require.True(t, strings.HasPrefix(p, " "))
			p = p[1:]
		}
		rebuilt.WriteString(p)
	}
	assert.Equal(t, long, rebuilt.String())
}
