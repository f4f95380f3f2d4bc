package config

import (
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string `yaml:"api_port"`
	LogLevel string `yaml:"log_level"`

	DatasetPath              string `yaml:"dataset_path"`
	DatasetDescriptionColumn string `yaml:"dataset_description_column"`
	DatasetCategoryColumn    string `yaml:"dataset_category_column"`

	ClassifierTestSize float64 `yaml:"classifier_test_size"`
	ClassifierSeed     int     `yaml:"classifier_seed"`
	ClassifierWarmup   bool    `yaml:"classifier_warmup"`

	StoreBackend string `yaml:"store_backend"`
	PostgresDSN  string `yaml:"postgres_dsn"`

	NATSURL     string `yaml:"nats_url"`
	NATSSubject string `yaml:"nats_subject"`

	APIRateLimitRPS   float64 `yaml:"api_rate_limit_rps"`
	APIRateLimitBurst int     `yaml:"api_rate_limit_burst"`
	APIMaxInFlight    int     `yaml:"api_max_inflight"`
	UploadMaxBytes    int     `yaml:"upload_max_bytes"`
}

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

func defaults() Config {
	return Config{
		APIPort:  "8080",
		LogLevel: "info",

		DatasetPath:              "./data/train.csv",
		DatasetDescriptionColumn: "Descript",
		DatasetCategoryColumn:    "Category",

		ClassifierTestSize: 0.2,
		ClassifierSeed:     42,
		ClassifierWarmup:   true,

		StoreBackend: StoreMemory,

		NATSSubject: "reports.extracted",

		APIRateLimitBurst: 20,
		UploadMaxBytes:    32 << 20,
	}
}

// Load builds the configuration from defaults, then the optional YAML file
// named by CONFIG_FILE, then environment variables.
func Load() Config {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		applyFile(&cfg, path)
	}

	return Config{
		APIPort:  mustEnv("API_PORT", cfg.APIPort),
		LogLevel: mustEnv("LOG_LEVEL", cfg.LogLevel),

		DatasetPath:              mustEnv("DATASET_PATH", cfg.DatasetPath),
		DatasetDescriptionColumn: mustEnv("DATASET_DESCRIPTION_COLUMN", cfg.DatasetDescriptionColumn),
		DatasetCategoryColumn:    mustEnv("DATASET_CATEGORY_COLUMN", cfg.DatasetCategoryColumn),

		ClassifierTestSize: mustEnvFloat("CLASSIFIER_TEST_SIZE", cfg.ClassifierTestSize),
		ClassifierSeed:     mustEnvInt("CLASSIFIER_SEED", cfg.ClassifierSeed),
		ClassifierWarmup:   mustEnvBool("CLASSIFIER_WARMUP", cfg.ClassifierWarmup),

		StoreBackend: mustEnv("STORE_BACKEND", cfg.StoreBackend),
		PostgresDSN:  mustEnv("POSTGRES_DSN", cfg.PostgresDSN),

		NATSURL:     mustEnv("NATS_URL", cfg.NATSURL),
		NATSSubject: mustEnv("NATS_SUBJECT", cfg.NATSSubject),

		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", cfg.APIRateLimitRPS),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", cfg.APIRateLimitBurst),
		APIMaxInFlight:    mustEnvInt("API_MAX_INFLIGHT", cfg.APIMaxInFlight),
		UploadMaxBytes:    mustEnvInt("UPLOAD_MAX_BYTES", cfg.UploadMaxBytes),
	}
}

// applyFile overlays keys present in the YAML file. A missing or malformed
// file leaves the defaults in place.
func applyFile(cfg *Config, path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("config_file_unreadable", "path", path, "error", err)
		return
	}
	overlay := *cfg
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		slog.Warn("config_file_invalid", "path", path, "error", err)
		return
	}
	*cfg = overlay
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
