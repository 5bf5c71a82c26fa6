package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".missionctl"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
)

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("MISSIONCTL_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := resolveHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := resolveHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

func resolveHomeDir() (string, error) {
	if h := strings.TrimSpace(os.Getenv("MISSIONCTL_HOME")); h != "" {
		if strings.HasPrefix(h, "~") {
			base, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(base, h[1:]), nil
		}
		return h, nil
	}
	return os.UserHomeDir()
}

// DefaultConfig returns a config populated with defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	workspace := filepath.Join(home, ".openclaw", "workspace")
	return &Config{
		Paths: PathsConfig{Workspace: workspace},
		Store: StoreConfig{Path: filepath.Join(home, ConfigDir, "missionctl.db")},
		Gateway: GatewayConfig{
			Host: "127.0.0.1",
			Port: 8700,
		},
		Cron: CronConfig{
			Command: "openclaw cron list --json",
			Timeout: 30 * time.Second,
		},
		Drafts: DraftsConfig{Dir: filepath.Join(workspace, "content-drafts")},
		Notes: NotesConfig{
			RootFile: "MEMORY.md",
			Dir:      "memory",
		},
		Publish: PublishConfig{
			FeedURL: "https://2xko-news-jp.com/wp-json/wp/v2/posts",
			Timeout: 15 * time.Second,
		},
	}
}

// Load reads the config file (if present), applies env file candidates and
// environment variable overrides, and fills in defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Load process env vars from ~/.missionctl/env (and fallbacks) first.
	LoadEnvFileCandidates()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil // Use defaults if we can't find config path
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	// If file doesn't exist, continue with defaults

	// Override with environment variables for each group
	envconfig.Process("MISSIONCTL_PATHS", &cfg.Paths)
	envconfig.Process("MISSIONCTL_STORE", &cfg.Store)
	envconfig.Process("MISSIONCTL_GATEWAY", &cfg.Gateway)
	envconfig.Process("MISSIONCTL_CRON", &cfg.Cron)
	envconfig.Process("MISSIONCTL_DRAFTS", &cfg.Drafts)
	envconfig.Process("MISSIONCTL_NOTES", &cfg.Notes)
	envconfig.Process("MISSIONCTL_PUBLISH", &cfg.Publish)
	envconfig.Process("MISSIONCTL_NOTIFY_SLACK", &cfg.Notify.Slack)
	envconfig.Process("MISSIONCTL_NOTIFY_KAFKA", &cfg.Notify.Kafka)

	applyFallbacks(cfg)
	return cfg, nil
}

// Save writes the config as indented JSON, creating the directory if needed.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func applyFallbacks(cfg *Config) {
	def := DefaultConfig()
	if cfg.Paths.Workspace == "" {
		cfg.Paths.Workspace = def.Paths.Workspace
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = def.Store.Path
	}
	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = def.Gateway.Host
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = def.Gateway.Port
	}
	if cfg.Cron.Command == "" {
		cfg.Cron.Command = def.Cron.Command
	}
	if cfg.Cron.Timeout <= 0 {
		cfg.Cron.Timeout = def.Cron.Timeout
	}
	if cfg.Drafts.Dir == "" {
		cfg.Drafts.Dir = filepath.Join(cfg.Paths.Workspace, "content-drafts")
	}
	if cfg.Notes.RootFile == "" {
		cfg.Notes.RootFile = def.Notes.RootFile
	}
	if cfg.Notes.Dir == "" {
		cfg.Notes.Dir = def.Notes.Dir
	}
	if cfg.Publish.FeedURL == "" {
		cfg.Publish.FeedURL = def.Publish.FeedURL
	}
	if cfg.Publish.Timeout <= 0 {
		cfg.Publish.Timeout = def.Publish.Timeout
	}
}

// NoteRoot resolves the root note file to an absolute path.
func (c *Config) NoteRoot() string {
	return resolveUnder(c.Paths.Workspace, c.Notes.RootFile)
}

// NoteDir resolves the notes directory to an absolute path.
func (c *Config) NoteDir() string {
	return resolveUnder(c.Paths.Workspace, c.Notes.Dir)
}

func resolveUnder(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func hostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
