// Package config provides configuration types and loading for missionctl.
package config

import "time"

// Config is the root configuration struct.
// Top-level groups: Paths, Store, Gateway, Cron, Drafts, Notes, Publish, Notify.
type Config struct {
	Paths   PathsConfig   `json:"paths"`
	Store   StoreConfig   `json:"store"`
	Gateway GatewayConfig `json:"gateway"`
	Cron    CronConfig    `json:"cron"`
	Drafts  DraftsConfig  `json:"drafts"`
	Notes   NotesConfig   `json:"notes"`
	Publish PublishConfig `json:"publish"`
	Notify  NotifyConfig  `json:"notify"`
}

// PathsConfig groups filesystem path settings.
type PathsConfig struct {
	Workspace string `json:"workspace" envconfig:"WORKSPACE"`
}

// StoreConfig configures the record store.
type StoreConfig struct {
	Path string `json:"path" envconfig:"PATH"`
}

// GatewayConfig configures the HTTP gateway.
type GatewayConfig struct {
	Host      string `json:"host" envconfig:"HOST"`
	Port      int    `json:"port" envconfig:"PORT"`
	SyncToken string `json:"syncToken" envconfig:"SYNC_TOKEN"`
}

// Addr returns the host:port listen address.
func (g GatewayConfig) Addr() string {
	host := g.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := g.Port
	if port == 0 {
		port = 8700
	}
	return hostPort(host, port)
}

// CronConfig configures the external scheduler CLI used by the cron mirror.
type CronConfig struct {
	Command  string        `json:"command" envconfig:"COMMAND"`
	Timezone string        `json:"timezone" envconfig:"TIMEZONE"`
	Timeout  time.Duration `json:"timeout" envconfig:"TIMEOUT"`
}

// DraftsConfig configures the draft importer.
type DraftsConfig struct {
	Dir string `json:"dir" envconfig:"DIR"`
}

// NotesConfig configures the note endpoints. Paths are relative to the
// workspace unless absolute.
type NotesConfig struct {
	RootFile string `json:"rootFile" envconfig:"ROOT_FILE"`
	Dir      string `json:"dir" envconfig:"DIR"`
}

// PublishConfig configures the external blog latest-post probe.
type PublishConfig struct {
	FeedURL string        `json:"feedUrl" envconfig:"FEED_URL"`
	Timeout time.Duration `json:"timeout" envconfig:"TIMEOUT"`
}

// NotifyConfig groups the optional outbound notification sinks.
type NotifyConfig struct {
	Slack SlackConfig `json:"slack"`
	Kafka KafkaConfig `json:"kafka"`
}

// SlackConfig configures the Slack notifier. Disabled while Token is empty.
type SlackConfig struct {
	Token   string `json:"token" envconfig:"TOKEN"`
	Channel string `json:"channel" envconfig:"CHANNEL"`
}

// KafkaConfig configures the Kafka activity sink. Disabled while Brokers is empty.
type KafkaConfig struct {
	Brokers []string `json:"brokers" envconfig:"BROKERS"`
	Topic   string   `json:"topic" envconfig:"TOPIC"`
}
