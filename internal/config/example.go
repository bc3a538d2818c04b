package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todo configuration file
# Values can be overridden by environment variables (TODO_*) or CLI flags.

# Task file (relative to the working directory; supports ~ and $VAR)
todo_file = "todos.json"

# Logging: debug, info, warn, error
log_level = "warn"
# text, json or logfmt
log_format = "text"
log_timestamps = false

# Disable colors (NO_COLOR in the environment does the same)
no_color = false

# Ask before deleting a task
confirm_delete = true

# Default for the sort command, and the tie-break inside the overdue-first
# listings of view, search and filter: priority, alpha, created or due
sort_by = "priority"
# asc or desc
sort_order = "desc"

# Descriptions longer than this are truncated in tables
description_width = 48
`
}
