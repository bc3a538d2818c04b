package config

import (
	"flag"
)

// parseFlags defines and parses CLI flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	return parseFlagsHelper(cfg, fs, args, nil)
}

// parseFlagsHelper binds the global flags to cfg and parses args. Parsing
// stops at the first non-flag argument, so shell commands keep their own
// flags.
func parseFlagsHelper(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todo", flag.ContinueOnError)
	}

	fs.StringVar(&cfg.TodoFile, "file", cfg.TodoFile, "Path to the task file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable colored output")
	fs.IntVar(&cfg.DescriptionWidth, "width", cfg.DescriptionWidth, "Maximum description width in tables")
	fs.StringVar(&cfg.SortBy, "sort-by", cfg.SortBy, "Default sort key (priority, alpha, created, due)")
	fs.StringVar(&cfg.SortOrder, "sort-order", cfg.SortOrder, "Default sort order (asc, desc)")
	yes := fs.Bool("yes", false, "Delete without asking for confirmation")
	fs.BoolVar(yes, "y", false, "Delete without asking for confirmation")

	if err := fs.Parse(args); err != nil {
		return err
	}

	flagToSource := map[string]string{
		"file":           "todo_file",
		"log-level":      "log_level",
		"log-format":     "log_format",
		"log-timestamps": "log_timestamps",
		"no-color":       "no_color",
		"width":          "description_width",
		"sort-by":        "sort_by",
		"sort-order":     "sort_order",
		"yes":            "confirm_delete",
		"y":              "confirm_delete",
	}

	fs.Visit(func(f *flag.Flag) {
		if (f.Name == "yes" || f.Name == "y") && *yes {
			cfg.ConfirmDelete = false
		}
		if sources == nil {
			return
		}
		if field, ok := flagToSource[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})

	return nil
}
