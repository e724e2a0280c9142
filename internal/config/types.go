package config

import "time"

// Config is the top-level deckview configuration, corresponding to .deckview.yml.
type Config struct {
	BackendURL     string          `yaml:"backend_url" koanf:"backend_url"`
	RequestTimeout time.Duration   `yaml:"request_timeout" koanf:"request_timeout"`
	DataDir        string          `yaml:"data_dir" koanf:"data_dir"`
	Server         ServerConfig    `yaml:"server" koanf:"server"`
	Viewer         ViewerConfig    `yaml:"viewer" koanf:"viewer"`
	Dashboard      DashboardConfig `yaml:"dashboard" koanf:"dashboard"`
}

// ServerConfig controls the local preview server.
type ServerConfig struct {
	Port           int           `yaml:"port" koanf:"port"`
	AllowAll       bool          `yaml:"allow_all" koanf:"allow_all"`
	HandlerTimeout time.Duration `yaml:"handler_timeout" koanf:"handler_timeout"`
}

// ViewerConfig holds the slide viewer tunables.
type ViewerConfig struct {
	PreloadCount          int           `yaml:"preload_count" koanf:"preload_count"`
	MaxConcurrentPreloads int           `yaml:"max_concurrent_preloads" koanf:"max_concurrent_preloads"`
	PrefetchDebounce      time.Duration `yaml:"prefetch_debounce" koanf:"prefetch_debounce"`
	SaveExitDelay         time.Duration `yaml:"save_exit_delay" koanf:"save_exit_delay"`
	WheelThrottle         time.Duration `yaml:"wheel_throttle" koanf:"wheel_throttle"`
}

// DashboardConfig holds settings for project polling and exports.
type DashboardConfig struct {
	PollInterval time.Duration `yaml:"poll_interval" koanf:"poll_interval"`
	DownloadDir  string        `yaml:"download_dir" koanf:"download_dir"`
}
