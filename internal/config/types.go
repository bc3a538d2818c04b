package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
}

// Default values.
const (
	DefaultTodoFile         = "todos.json"
	DefaultLogLevel         = "warn"
	DefaultLogFormat        = "text"
	DefaultConfirmDelete    = true
	DefaultSortBy           = "priority"
	DefaultSortOrder        = "desc"
	DefaultDescriptionWidth = 48
)

// Config holds the full configuration for todo.
type Config struct {
	// Paths
	TodoFile string `toml:"todo_file"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`

	// Output
	NoColor          bool `toml:"no_color"`
	DescriptionWidth int  `toml:"description_width"`

	// Shell behaviour
	ConfirmDelete bool   `toml:"confirm_delete"`
	SortBy        string `toml:"sort_by"`
	SortOrder     string `toml:"sort_order"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`

	// Files that contributed values, in load order (computed)
	Files []string `toml:"-"`

	// Keys present in config files but not understood (computed)
	UnknownKeys []string `toml:"-"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"todo_file",
		"log_level",
		"log_format",
		"log_timestamps",
		"no_color",
		"description_width",
		"confirm_delete",
		"sort_by",
		"sort_order",
	}
}
