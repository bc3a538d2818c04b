package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.TodoFile = DefaultTodoFile
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.ConfirmDelete = DefaultConfirmDelete
	cfg.SortBy = DefaultSortBy
	cfg.SortOrder = DefaultSortOrder
	cfg.DescriptionWidth = DefaultDescriptionWidth
}

// loadConfigFile loads TOML config from the given file.
func loadConfigFile(cfg *Config, path string) error {
	return loadConfigFileWithSources(cfg, path, nil, "")
}

// loadConfigFileWithSources decodes path over cfg. Only keys present in the
// file are touched and, when sources is non-nil, attributed to source.
func loadConfigFileWithSources(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}

	cfg.Files = append(cfg.Files, path)
	for _, key := range md.Undecoded() {
		cfg.UnknownKeys = append(cfg.UnknownKeys, fmt.Sprintf("%s: %s", path, key.String()))
	}

	if sources != nil {
		for _, field := range configFields() {
			if md.IsDefined(field) {
				sources[field] = source
			}
		}
	}
	return nil
}

// GetConfigFile returns the highest-priority config file that was read, or "".
func (cws *ConfigWithSources) GetConfigFile() string {
	if cws == nil || cws.Config == nil || len(cws.Config.Files) == 0 {
		return ""
	}
	return cws.Config.Files[len(cws.Config.Files)-1]
}
