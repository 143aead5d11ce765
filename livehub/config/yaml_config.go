package config

import (
	"fmt"
	"time"
)

const defaultTokenCacheTTL = 5 * time.Minute

// NewConfigFromYaml converts raw unmarshaled YAML into a validated AppConfig.
func NewConfigFromYaml(yamlCfg *YamlConfig) (*AppConfig, error) {
	if yamlCfg.APIPort == "" {
		return nil, fmt.Errorf("api_port is required")
	}
	if yamlCfg.HubPort == "" {
		return nil, fmt.Errorf("hub_port is required")
	}

	ttl := defaultTokenCacheTTL
	if yamlCfg.Redis.TokenTTL != "" {
		parsed, err := time.ParseDuration(yamlCfg.Redis.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis token_ttl %q: %w", yamlCfg.Redis.TokenTTL, err)
		}
		ttl = parsed
	}

	switch yamlCfg.Push.Type {
	case "", "pubsub", "http":
	default:
		return nil, fmt.Errorf("unknown push type %q", yamlCfg.Push.Type)
	}

	return &AppConfig{
		RunMode:       yamlCfg.RunMode,
		APIPort:       yamlCfg.APIPort,
		HubPort:       yamlCfg.HubPort,
		DatabaseDSN:   yamlCfg.Database.DSN,
		RedisEnabled:  yamlCfg.Redis.Enabled,
		RedisAddr:     yamlCfg.Redis.Addr,
		TokenCacheTTL: ttl,
		Push:          yamlCfg.Push,
		JWTSecret:     yamlCfg.Auth.JWTSecret,
	}, nil
}
