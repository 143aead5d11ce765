// Package config defines the service configuration. Raw YAML is unmarshaled
// into the Yaml* structs and then mapped onto the validated AppConfig that
// the rest of the application consumes.
package config

import "time"

// YamlDatabaseConfig points at the dispatch Postgres database.
type YamlDatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// YamlRedisConfig points at the push-token cache.
type YamlRedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	TokenTTL string `yaml:"token_ttl"`
}

// YamlPushConfig selects and configures the push sender.
type YamlPushConfig struct {
	Type      string `yaml:"type"` // "pubsub" or "http"
	ProjectID string `yaml:"project_id"`
	TopicID   string `yaml:"topic_id"`
	Endpoint  string `yaml:"endpoint"`
	ServerKey string `yaml:"server_key"`
}

// YamlAuthConfig carries the shared JWT validation secret.
type YamlAuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// YamlConfig is the structure of the embedded config.yaml file.
type YamlConfig struct {
	RunMode  string             `yaml:"run_mode"`
	APIPort  string             `yaml:"api_port"`
	HubPort  string             `yaml:"hub_port"`
	Database YamlDatabaseConfig `yaml:"database"`
	Redis    YamlRedisConfig    `yaml:"redis"`
	Push     YamlPushConfig     `yaml:"push"`
	Auth     YamlAuthConfig     `yaml:"auth"`
}

// AppConfig is the canonical, validated configuration object used throughout
// the application.
type AppConfig struct {
	RunMode       string
	APIPort       string
	HubPort       string
	DatabaseDSN   string
	RedisEnabled  bool
	RedisAddr     string
	TokenCacheTTL time.Duration
	Push          YamlPushConfig
	JWTSecret     string
}
