package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	appDirName     = "todo"
	configFileName = "todo.toml"
)

// expandPath expands environment variables and a leading ~ in p.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := os.ExpandEnv(p)
	if expanded != "~" && !strings.HasPrefix(expanded, "~/") &&
		!(runtime.GOOS == "windows" && strings.HasPrefix(expanded, `~\`)) {
		return expanded
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return expanded
	}
	if expanded == "~" {
		return home
	}
	return filepath.Join(home, expanded[2:])
}

// findProjectConfigFile looks for a config file in dir.
func findProjectConfigFile(dir string) string {
	for _, name := range []string{configFileName, "." + configFileName} {
		p := filepath.Join(dir, name)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// findUserConfigFile checks ~/.todo/todo.toml first, then the OS-specific
// config directory.
func findUserConfigFile() string {
	for _, p := range userConfigCandidates() {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// userConfigCandidates lists user config locations in lookup order.
func userConfigCandidates() []string {
	var out []string
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, "."+appDirName, configFileName))
	}
	if dir := osUserConfigDir(); dir != "" {
		out = append(out, filepath.Join(dir, appDirName, configFileName))
	}
	return out
}

// osUserConfigDir returns the OS-specific user config directory, or "".
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return os.Getenv("APPDATA")
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// UserConfigPath returns where a new user config file should be written.
func UserConfigPath() string {
	candidates := userConfigCandidates()
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0]
}
