// Package export writes tasks in formats other tools can read.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/todo-go/internal/todo"
)

// Format names an export format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatICS  Format = "ics"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatICS}

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "ics", "ical", "icalendar":
		return FormatICS, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json, yaml or ics)", s)
}

// Write encodes tasks to w in the given format.
func Write(w io.Writer, format Format, tasks []todo.Task, now time.Time) error {
	switch format {
	case FormatJSON:
		return JSON(w, tasks)
	case FormatYAML:
		return YAML(w, tasks)
	case FormatICS:
		_, err := ICS(w, tasks, now)
		return err
	}
	return fmt.Errorf("unknown export format %q", format)
}

// JSON writes tasks in the task file format.
func JSON(w io.Writer, tasks []todo.Task) error {
	data, err := todo.EncodeTasks(tasks)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// YAML writes tasks as a YAML sequence. Absent due dates and recurrences
// are omitted.
func YAML(w io.Writer, tasks []todo.Task) error {
	out := make([]todo.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return nil
}
