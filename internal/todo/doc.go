// Package todo holds the task entity, the in-memory task store, and the JSON
// task file it persists to.
//
// The task file is a JSON array, one object per task:
//
//	[
//	  {
//	    "id": 1,
//	    "description": "Pay rent",
//	    "completed": false,
//	    "created_at": "2026-01-01",
//	    "priority": "high",
//	    "tags": ["home", "bills"],
//	    "due_date": "2026-02-01",
//	    "recurrence": "monthly"
//	  }
//	]
//
// # Loading
//
// Files written by older versions may omit fields. Missing values are
// back-filled before a Task is built:
//   - priority: "medium"
//   - tags: []
//   - created_at: the loading day
//   - due_date, recurrence: absent
//   - id: the next id after the highest id in the file
//
// A missing file loads as an empty list. A file that does not parse is
// reported as a warning and also loads as an empty list.
//
// # Validation
//
// ValidateDocument checks raw bytes against the embedded JSON Schema
// (draft 2020-12, date formats asserted). It is advisory: loading does not
// reject documents that fail it.
//
// # Recurrence
//
// Completing a recurring task leaves it completed and appends a new task
// with a fresh id and the due date advanced by 1, 7 or 30 days.
//
// # File Format
//
// When writing task files, the package uses:
//   - 2-space indentation
//   - Trailing newline
//   - null for absent due_date and recurrence
package todo
