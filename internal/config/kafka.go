package config

import (
	kcfg "rejar/sink/kafka"
)

// LoadKafkaConfig delegates to the Kafka report sink loader while
// centralizing loader entrypoints under internal/config.
func LoadKafkaConfig(path string) (kcfg.Config, error) {
	return kcfg.LoadConfig(path)
}
