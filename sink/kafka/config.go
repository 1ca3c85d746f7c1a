package kafka

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "REJAR_KAFKA__"

type Config struct {
	Brokers  []string `koanf:"brokers"`
	Topic    string   `koanf:"topic"`
	ClientID string   `koanf:"client_id"`
	Version  string   `koanf:"version"`
	Acks     int16    `koanf:"required_acks"` // 0,1,-1
	TLSEn    bool     `koanf:"tls_enabled"`
	SASLUser string   `koanf:"sasl_user"`
	SASLPass string   `koanf:"sasl_pass"`

	Timeout time.Duration `koanf:"timeout"`
	Retries int           `koanf:"retries"`
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

// LoadConfig merges YAML (if present) with env-vars
// (prefix `REJAR_KAFKA__`, delimiter `__`), e.g.
// REJAR_KAFKA__TOPIC=builds.
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	// schema version check (only when YAML is present)
	sv := k.String("schema_version")
	if sv != "" && sv != "v1" {
		return Config{}, fmt.Errorf("kafka schema_version %q not supported (want v1)", sv)
	}

	_ = k.Load(env.Provider(envPrefix, "__", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	// 0 is a valid setting, so only an absent key gets the default.
	if !k.Exists("required_acks") {
		cfg.Acks = -1
	}
	switch cfg.Acks {
	case -1, 0, 1:
	default:
		return cfg, fmt.Errorf("kafka sink: required_acks %d not one of -1, 0, 1", cfg.Acks)
	}
	if len(cfg.Brokers) == 0 {
		return cfg, errors.New("kafka sink: no brokers configured")
	}
	if cfg.Topic == "" {
		return cfg, errors.New("kafka sink: no topic configured")
	}
	return cfg, nil
}

// ---------------------------------------------------------------------------
// defaults
// ---------------------------------------------------------------------------

func applyDefaults(c *Config) {
	if c.ClientID == "" {
		c.ClientID = "rejar"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Retries == 0 {
		c.Retries = 3
	}
}
