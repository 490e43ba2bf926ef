package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the bot's configuration settings.
type Config struct {
	Discord  DiscordConfig  `yaml:"discord"`
	Postgres PostgresConfig `yaml:"postgres"`
	NATS     NATSConfig     `yaml:"nats"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DiscordConfig holds gateway configuration.
type DiscordConfig struct {
	Token string `yaml:"token"`
	// GuildID scopes slash-command registration to one guild for fast
	// iteration; empty registers commands globally.
	GuildID string `yaml:"guild_id"`
}

// PostgresConfig holds record store configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds the optional NATS event bus configuration. An empty URL
// selects the in-process bus.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// MetricsConfig holds the health/metrics HTTP listener configuration.
type MetricsConfig struct {
	Address string `yaml:"address"`
}

// LoadConfig loads configuration from a YAML file, falling back to
// environment variables when the file is absent.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadConfigFromEnv() (*Config, error) {
	cfg := &Config{}
	cfg.applyEnvOverrides()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets the environment win over the file, which is how the
// container deployment injects secrets.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DISCORD_TOKEN"); v != "" {
		c.Discord.Token = v
	}
	if v := os.Getenv("DISCORD_GUILD_ID"); v != "" {
		c.Discord.GuildID = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		c.Metrics.Address = v
	}
}

func (c *Config) validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("missing Discord token (discord.token or DISCORD_TOKEN)")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("missing Postgres DSN (postgres.dsn or POSTGRES_DSN)")
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = ":8085"
	}
	return nil
}
