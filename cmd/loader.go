// Package cmd loads the embedded service configuration and applies
// environment overrides for deploy-time values.
package cmd

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/livehub/config"
)

//go:embed livehub/config.yaml
var configFile []byte

// Load parses the embedded configuration file and applies environment
// overrides. Secrets and DSNs come from the environment in production.
func Load() (*config.AppConfig, error) {
	var yamlCfg config.YamlConfig
	if err := yaml.Unmarshal(configFile, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedded yaml config: %w", err)
	}

	appCfg, err := config.NewConfigFromYaml(&yamlCfg)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("LIVEHUB_API_PORT"); v != "" {
		appCfg.APIPort = v
	}
	if v := os.Getenv("LIVEHUB_HUB_PORT"); v != "" {
		appCfg.HubPort = v
	}
	if v := os.Getenv("LIVEHUB_DATABASE_DSN"); v != "" {
		appCfg.DatabaseDSN = v
	}
	if v := os.Getenv("LIVEHUB_REDIS_ADDR"); v != "" {
		appCfg.RedisAddr = v
		appCfg.RedisEnabled = true
	}
	if v := os.Getenv("LIVEHUB_JWT_SECRET"); v != "" {
		appCfg.JWTSecret = v
	}
	if v := os.Getenv("LIVEHUB_PUSH_SERVER_KEY"); v != "" {
		appCfg.Push.ServerKey = v
	}

	return appCfg, nil
}
