package config

import "time"

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = ".deckview.yml"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BackendURL:     "http://127.0.0.1:8000",
		RequestTimeout: 30 * time.Second,
		DataDir:        ".deckview",
		Server: ServerConfig{
			Port:           8090,
			HandlerTimeout: 60 * time.Second,
		},
		Viewer: ViewerConfig{
			PreloadCount:          2,
			MaxConcurrentPreloads: 3,
			PrefetchDebounce:      100 * time.Millisecond,
			SaveExitDelay:         1000 * time.Millisecond,
			WheelThrottle:         400 * time.Millisecond,
		},
		Dashboard: DashboardConfig{
			PollInterval: 6 * time.Second,
			DownloadDir:  ".",
		},
	}
}
