package kafka

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_YAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kafka_report.yml")
	body := []byte(`schema_version: v1
brokers: [localhost:9092]
topic: builds
timeout: 2s
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("REJAR_KAFKA__TOPIC", "rewrites")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Topic != "rewrites" {
		t.Fatalf("topic = %q, want env override", cfg.Topic)
	}
	if cfg.Timeout != 2*time.Second {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
	if cfg.ClientID != "rejar" || cfg.Acks != -1 || cfg.Retries != 3 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfig_ExplicitZeroAcks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kafka_report.yml")
	if err := os.WriteFile(path, []byte("brokers: [b]\ntopic: t\nrequired_acks: 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Acks != 0 {
		t.Fatalf("acks = %d, want 0", cfg.Acks)
	}

	t.Setenv("REJAR_KAFKA__REQUIRED_ACKS", "1")
	if cfg, err = LoadConfig(path); err != nil || cfg.Acks != 1 {
		t.Fatalf("env override: acks = %d, err = %v", cfg.Acks, err)
	}

	t.Setenv("REJAR_KAFKA__REQUIRED_ACKS", "2")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected invalid required_acks error")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(bad, []byte("schema_version: v2\nbrokers: [b]\ntopic: t\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Fatal("expected schema error")
	}
	if _, err := LoadConfig(filepath.Join(dir, "missing.yml")); err == nil {
		t.Fatal("expected missing brokers error")
	}
}
