package config

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and saves the result
// to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to deckview! Let's point it at your presentation backend.")
	fmt.Println()

	cfg := DefaultConfig()

	backendPrompt := promptui.Prompt{
		Label:   "Backend URL",
		Default: cfg.BackendURL,
		Validate: func(s string) error {
			u, err := url.Parse(s)
			if err != nil || u.Host == "" {
				return fmt.Errorf("enter an absolute URL such as http://127.0.0.1:8000")
			}
			return nil
		},
	}
	backend, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend url: %w", err)
	}
	cfg.BackendURL = backend

	portPrompt := promptui.Prompt{
		Label:    "Local preview port",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	dirPrompt := promptui.Prompt{
		Label:   "Directory for exported decks",
		Default: cfg.Dashboard.DownloadDir,
	}
	downloadDir, err := dirPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("download dir: %w", err)
	}
	cfg.Dashboard.DownloadDir = downloadDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("port must be a number")
	}
	if n <= 0 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}
