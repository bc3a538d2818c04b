package config

import (
	"os"
	"strconv"
	"strings"
)

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	loadFromEnvHelper(cfg, nil)
}

// loadFromEnvHelper is the shared implementation for env loading.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnvHelper(cfg *Config, sources map[string]ConfigSource) {
	mark := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv("TODO_FILE"); v != "" {
		cfg.TodoFile = v
		mark("todo_file")
	}
	if v := os.Getenv("TODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		mark("log_level")
	}
	if v := os.Getenv("TODO_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		mark("log_format")
	}
	if v := os.Getenv("TODO_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		mark("log_timestamps")
	}
	if v := os.Getenv("TODO_CONFIRM_DELETE"); v != "" {
		cfg.ConfirmDelete = boolFromString(v)
		mark("confirm_delete")
	}
	if v := os.Getenv("TODO_SORT_BY"); v != "" {
		cfg.SortBy = v
		mark("sort_by")
	}
	if v := os.Getenv("TODO_SORT_ORDER"); v != "" {
		cfg.SortOrder = v
		mark("sort_order")
	}
	if v := os.Getenv("TODO_DESCRIPTION_WIDTH"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.DescriptionWidth = i
			mark("description_width")
		}
	}
	// https://no-color.org: any non-empty value disables color.
	if v := os.Getenv("NO_COLOR"); v != "" {
		cfg.NoColor = true
		mark("no_color")
	}
}

// boolFromString parses common truthy spellings; anything else is false.
func boolFromString(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on", "y":
		return true
	default:
		return false
	}
}
