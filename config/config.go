// Package config loads the daemon configuration for temporad. The trigger
// document itself stays an opaque string here; decoding it is the trigger
// parser's job.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/tempora-io/tempora/modules/attributes"
	"github.com/tempora-io/tempora/modules/servers"
)

const envPrefix = "TEMPORA"

type Config struct {
	Triggers   Triggers       `mapstructure:"triggers"`
	Attributes AttributeStore `mapstructure:"attributes"`
	Server     servers.Config `mapstructure:"server"`
}

// Triggers locates the trigger configuration document: inline in the
// daemon config or in a separate file.
type Triggers struct {
	Document string `mapstructure:"document"`
	Path     string `mapstructure:"path"`
}

// AttributeStore selects the attribute store backend.
type AttributeStore struct {
	Backend  string                    `mapstructure:"backend"` // memory, redis or postgres
	Redis    attributes.RedisConfig    `mapstructure:"redis"`
	Postgres attributes.PostgresConfig `mapstructure:"postgres"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("attributes.backend", "memory")
	v.SetDefault("server.host", servers.DefaultHost)
	v.SetDefault("server.port", servers.DefaultPort)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// TriggerDocument returns the trigger configuration text, reading it from
// Triggers.Path when no inline document is set. An empty result means the
// document should come from the attribute store instead.
func (c *Config) TriggerDocument() (string, error) {
	if c.Triggers.Document != "" {
		return c.Triggers.Document, nil
	}
	if c.Triggers.Path == "" {
		return "", nil
	}
	data, err := os.ReadFile(c.Triggers.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read trigger document %s: %w", c.Triggers.Path, err)
	}
	return string(data), nil
}
