package todo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/dates"
)

// record is the on-disk shape of a task. Pointer fields distinguish
// "missing" from zero values so older files can be back-filled.
type record struct {
	ID          *int      `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   *string   `json:"created_at"`
	Priority    *string   `json:"priority"`
	Tags        *[]string `json:"tags"`
	DueDate     *string   `json:"due_date"`
	Recurrence  *string   `json:"recurrence"`

	// Basic-format files used title/complete.
	Title    string `json:"title,omitempty"`
	Complete *bool  `json:"complete,omitempty"`
}

// LoadFile reads the task file at path. A missing file yields no tasks. A
// file that is not a JSON array of tasks is reported through logger and also
// yields no tasks. Only I/O failures are returned as errors.
func LoadFile(path string, today time.Time, logger *log.Logger) ([]Task, error) {
	if logger == nil {
		logger = log.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("task file not found, starting empty", "path", path)
			return []Task{}, nil
		}
		return nil, fmt.Errorf("read task file: %w", err)
	}

	tasks, skipped, err := decodeTasks(data, today)
	if err != nil {
		logger.Warn(fmt.Sprintf("%s is corrupted. Starting with empty task list.", path), "err", err)
		return []Task{}, nil
	}
	for _, i := range skipped {
		logger.Warn("skipping task without a description", "path", path, "index", i)
	}

	if result := ValidateDocument(data); !result.Valid {
		for _, e := range result.Errors {
			logger.Debug("task file schema mismatch", "path", path, "err", e)
		}
	}

	logger.Debug("loaded tasks", "path", path, "count", len(tasks))
	return tasks, nil
}

// DecodeTasks parses a JSON task array and back-fills missing fields:
// priority becomes medium, tags empty, created_at today, due_date and
// recurrence absent. Records without an id get ids after the highest
// explicit id, in file order. Records with no description are dropped.
func DecodeTasks(data []byte, today time.Time) ([]Task, error) {
	tasks, _, err := decodeTasks(data, today)
	return tasks, err
}

// decodeTasks is DecodeTasks that also reports the array positions of the
// records it dropped.
func decodeTasks(data []byte, today time.Time) ([]Task, []int, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return []Task{}, nil, nil
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil, fmt.Errorf("parse task file: %w", err)
	}

	nextID := 1
	for _, r := range records {
		if r.ID != nil {
			nextID = max(nextID, *r.ID+1)
		}
	}

	created := dates.Format(dates.Today(today))
	tasks := make([]Task, 0, len(records))
	var skipped []int
	for i, r := range records {
		if r.Description == "" && r.Title != "" {
			r.Description = r.Title
		}
		if _, err := validateDescription(r.Description); err != nil {
			skipped = append(skipped, i)
			continue
		}

		t := Task{
			Description: r.Description,
			Completed:   r.Completed,
			CreatedAt:   created,
			Priority:    DefaultPriority,
			Tags:        []string{},
			DueDate:     r.DueDate,
		}

		if r.ID != nil {
			t.ID = *r.ID
		} else {
			t.ID = nextID
			nextID++
		}
		if r.Complete != nil && !r.Completed {
			t.Completed = *r.Complete
		}
		if r.CreatedAt != nil {
			t.CreatedAt = *r.CreatedAt
		}
		if r.Priority != nil {
			t.Priority = Priority(strings.ToLower(*r.Priority))
		}
		if r.Tags != nil {
			t.Tags = append(t.Tags, *r.Tags...)
		}
		if r.Recurrence != nil && *r.Recurrence != "" {
			rec := Recurrence(strings.ToLower(*r.Recurrence))
			t.Recurrence = &rec
		}

		tasks = append(tasks, t)
	}

	return tasks, skipped, nil
}

// EncodeTasks renders tasks as an indented JSON array with a trailing
// newline. Absent due dates and recurrences are written as null.
func EncodeTasks(tasks []Task) ([]byte, error) {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal task file: %w", err)
	}
	return append(data, '\n'), nil
}

// SaveFile rewrites the whole task file. The data goes to a temporary file
// in the same directory first and is renamed into place.
func SaveFile(path string, tasks []Task) error {
	data, err := EncodeTasks(tasks)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create task dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write task file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("chmod task file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace task file: %w", err)
	}
	return nil
}

// Open loads the task file at path into a new store.
func Open(path string, logger *log.Logger, opts ...Option) (*Store, error) {
	s := NewStore(nil, opts...)
	if err := s.Load(path, logger); err != nil {
		return nil, err
	}
	return s, nil
}

// Load replaces the store's tasks with the contents of path.
func (s *Store) Load(path string, logger *log.Logger) error {
	tasks, err := LoadFile(path, s.Today(), logger)
	if err != nil {
		return err
	}
	s.Replace(tasks)
	return nil
}

// Save writes every task to path.
func (s *Store) Save(path string) error {
	return SaveFile(path, s.tasks)
}
