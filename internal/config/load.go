package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nibzard/todo-go/internal/logging"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.todo/todo.toml or OS-specific config dir)
// 3. Project config file (todo.toml or .todo.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := load(fs, args, nil)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}
	return load(fs, args, sources)
}

func load(fs *flag.FlagSet, args []string, sources map[string]ConfigSource) (*ConfigWithSources, error) {
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	cfg.ProjectRoot = wd

	// 2. User config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFileWithSources(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(wd); projectConfigFile != "" {
		if err := loadConfigFileWithSources(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	// 4. Environment
	loadFromEnvHelper(cfg, sources)

	// 5. CLI flags (they override everything)
	if err := parseFlagsHelper(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{Config: cfg, Sources: sources}, nil
}

// finalizeConfig expands paths, normalizes enums and validates values.
func finalizeConfig(cfg *Config) error {
	cfg.TodoFile = expandPath(strings.TrimSpace(cfg.TodoFile))
	if cfg.TodoFile == "" {
		return fmt.Errorf("todo_file is empty")
	}
	if !filepath.IsAbs(cfg.TodoFile) {
		cfg.TodoFile = filepath.Join(cfg.ProjectRoot, cfg.TodoFile)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if !logging.ValidLevel(cfg.LogLevel) {
		return fmt.Errorf("invalid log_level %q (want debug, info, warn, error or fatal)", cfg.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if !logging.ValidFormat(cfg.LogFormat) {
		return fmt.Errorf("invalid log_format %q (want text, json or logfmt)", cfg.LogFormat)
	}

	cfg.SortBy = strings.ToLower(strings.TrimSpace(cfg.SortBy))
	switch cfg.SortBy {
	case "priority", "alpha", "created", "due":
	default:
		return fmt.Errorf("invalid sort_by %q (want priority, alpha, created or due)", cfg.SortBy)
	}
	cfg.SortOrder = strings.ToLower(strings.TrimSpace(cfg.SortOrder))
	switch cfg.SortOrder {
	case "asc", "desc":
	default:
		return fmt.Errorf("invalid sort_order %q (want asc or desc)", cfg.SortOrder)
	}

	if cfg.DescriptionWidth < 8 {
		return fmt.Errorf("description_width must be at least 8, got %d", cfg.DescriptionWidth)
	}
	return nil
}
