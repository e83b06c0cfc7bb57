package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives both entry points. The monitored project list lives here so
// the CLI and the web server share one source instead of each hard-coding it.
type Config struct {
	Projects      []string `yaml:"projects"`
	ListenAddr    string   `yaml:"listenAddr"`
	HistoryDBPath string   `yaml:"historyDBPath"`
	LogLevel      int      `yaml:"logLevel"`
	LogPath       string   `yaml:"logPath"`
}

var defaultProjects = []string{
	"km-prod",
	"km-prod-cn-443607",
	"km-prod-eu",
	"km-prod-in",
	"km-prod-us",
	"km-dev-434106",
}

func Default() Config {
	return Config{
		Projects:   append([]string(nil), defaultProjects...),
		ListenAddr: ":8080",
		LogLevel:   3,
		LogPath:    "log",
	}
}

// LoadConfig reads a yaml config file and fills unset fields with defaults.
// An empty path returns the defaults.
func LoadConfig(file string) (Config, error) {
	config := Default()
	if file == "" {
		return config, nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return Config{}, fmt.Errorf("error reading config file: %w", err)
	}

	var loaded Config
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Config{}, fmt.Errorf("error parsing config file: %w", err)
	}

	if len(loaded.Projects) > 0 {
		config.Projects = loaded.Projects
	}
	if loaded.ListenAddr != "" {
		config.ListenAddr = loaded.ListenAddr
	}
	if loaded.HistoryDBPath != "" {
		config.HistoryDBPath = loaded.HistoryDBPath
	}
	if loaded.LogLevel != 0 {
		config.LogLevel = loaded.LogLevel
	}
	if loaded.LogPath != "" {
		config.LogPath = loaded.LogPath
	}
	return config, nil
}

// Knows reports whether project is in the configured list.
func (c Config) Knows(project string) bool {
	for _, p := range c.Projects {
		if p == project {
			return true
		}
	}
	return false
}
