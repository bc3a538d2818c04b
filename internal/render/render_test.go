package render

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/todo-go/internal/todo"
)

var today = time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)

func ptr(s string) *string { return &s }

func ids(tasks []todo.Task) []int {
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestDisplayOrder(t *testing.T) {
	tasks := []todo.Task{
		{ID: 1, Description: "no due"},
		{ID: 2, Description: "future", DueDate: ptr("2026-02-01")},
		{ID: 3, Description: "overdue 1 day", DueDate: ptr("2026-01-09")},
		{ID: 4, Description: "today", DueDate: ptr("2026-01-10")},
		{ID: 5, Description: "overdue 9 days", DueDate: ptr("2026-01-01")},
		{ID: 6, Description: "no due either"},
		{ID: 7, Description: "soon", DueDate: ptr("2026-01-12")},
	}

	got := ids(DisplayOrder(tasks, today))
	want := []int{5, 3, 4, 7, 2, 1, 6}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DisplayOrder: got %v, want %v", got, want)
	}

	if ids(tasks)[0] != 1 {
		t.Errorf("DisplayOrder modified its input")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer description", 10, "a longer…"},
		{"日本語のタスク", 7, "日本語…"},
		{"anything", 0, "anything"},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d): got %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestStatusMark(t *testing.T) {
	if got := StatusMark(todo.Task{Completed: true}); got != "[x]" {
		t.Errorf("StatusMark(completed): got %q, want [x]", got)
	}
	if got := StatusMark(todo.Task{}); got != "[ ]" {
		t.Errorf("StatusMark(active): got %q, want [ ]", got)
	}
}

func TestTable_PlainOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{DescriptionWidth: 12})

	weekly := todo.RecurrenceWeekly
	tasks := []todo.Task{
		{ID: 1, Description: "Pay the electricity bill", Priority: todo.PriorityHigh, Tags: []string{"home", "bills"}, DueDate: ptr("2026-01-08")},
		{ID: 2, Description: "Review", Priority: todo.PriorityLow, Completed: true, DueDate: ptr("2026-01-10"), Recurrence: &weekly},
	}
	p.PrintTable(tasks, today)
	out := buf.String()

	if strings.Contains(out, "\x1b[") {
		t.Errorf("non-TTY output contains ANSI escapes: %q", out)
	}
	for _, want := range append(Headers,
		"Pay the ele…",
		"home, bills",
		"[OVERDUE] Due: 2026-01-08 (2 days overdue)",
		"Due: Today (2026-01-10)",
		"weekly",
		"[x]",
		"[ ]",
	) {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestTable_Empty(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{}, Options{})
	out := p.Table(nil, today)
	if !strings.Contains(out, "Description") {
		t.Errorf("empty table should still render headers, got %q", out)
	}
}

func TestMessages(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{NoColor: true})
	p.Success("Task added with ID: 1")
	p.Warn("Deletion cancelled")
	p.Error("Error: boom")
	p.Println("plain")

	want := "Task added with ID: 1\nDeletion cancelled\nError: boom\nplain\n"
	if buf.String() != want {
		t.Errorf("messages: got %q, want %q", buf.String(), want)
	}
}

func TestColorEnabled(t *testing.T) {
	if ColorEnabled(&bytes.Buffer{}, false) {
		t.Error("ColorEnabled(buffer): got true, want false")
	}
	if IsTTY(&bytes.Buffer{}) {
		t.Error("IsTTY(buffer): got true, want false")
	}
}
