package config

import (
	"os"
	"path/filepath"
	"testing"
)

var keys = []string{
	"CONFIG_FILE", "API_PORT", "LOG_LEVEL", "DATASET_PATH", "DATASET_DESCRIPTION_COLUMN", "DATASET_CATEGORY_COLUMN",
	"CLASSIFIER_TEST_SIZE", "CLASSIFIER_SEED", "CLASSIFIER_WARMUP", "STORE_BACKEND", "POSTGRES_DSN",
	"NATS_URL", "NATS_SUBJECT", "API_RATE_LIMIT_RPS", "API_RATE_LIMIT_BURST", "API_MAX_INFLIGHT", "UPLOAD_MAX_BYTES",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.DatasetDescriptionColumn != "Descript" || cfg.DatasetCategoryColumn != "Category" {
		t.Fatalf("unexpected dataset columns %q/%q", cfg.DatasetDescriptionColumn, cfg.DatasetCategoryColumn)
	}
	if cfg.ClassifierTestSize != 0.2 || cfg.ClassifierSeed != 42 {
		t.Fatalf("unexpected classifier defaults %v/%d", cfg.ClassifierTestSize, cfg.ClassifierSeed)
	}
	if cfg.StoreBackend != StoreMemory || cfg.NATSURL != "" || cfg.NATSSubject != "reports.extracted" {
		t.Fatalf("unexpected backend defaults %+v", cfg)
	}
	if cfg.APIRateLimitRPS != 0 || cfg.UploadMaxBytes != 32<<20 {
		t.Fatalf("unexpected traffic defaults %+v", cfg)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CLASSIFIER_TEST_SIZE", "0.25")
	t.Setenv("CLASSIFIER_SEED", "7")
	t.Setenv("CLASSIFIER_WARMUP", "false")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("API_RATE_LIMIT_RPS", "12.5")
	t.Setenv("API_RATE_LIMIT_BURST", "not-a-number")

	cfg := Load()
	if cfg.ClassifierTestSize != 0.25 || cfg.ClassifierSeed != 7 || cfg.ClassifierWarmup {
		t.Fatalf("unexpected classifier overrides %+v", cfg)
	}
	if cfg.StoreBackend != StorePostgres || cfg.APIRateLimitRPS != 12.5 {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if cfg.APIRateLimitBurst != 20 {
		t.Fatalf("invalid int must fall back to default, got %d", cfg.APIRateLimitBurst)
	}
}

func TestLoadAppliesYAMLFileBeforeEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "dataset_path: /data/sf.xlsx\napi_port: \"9000\"\nclassifier_seed: 11\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_PORT", "9100")

	cfg := Load()
	if cfg.DatasetPath != "/data/sf.xlsx" || cfg.ClassifierSeed != 11 {
		t.Fatalf("expected file values, got %+v", cfg)
	}
	if cfg.APIPort != "9100" {
		t.Fatalf("env must win over file, got %q", cfg.APIPort)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("keys absent from file keep defaults, got %q", cfg.LogLevel)
	}
}

func TestLoadIgnoresUnreadableFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if cfg := Load(); cfg.APIPort != "8080" {
		t.Fatalf("expected defaults, got %q", cfg.APIPort)
	}
}
