package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the service settings. Values come from an optional YAML file
// and can be overridden individually through environment variables.
type Config struct {
	ListenAddr   string        `yaml:"listen_addr"`
	ModelPath    string        `yaml:"model_path"`
	MetadataPath string        `yaml:"metadata_path"`
	RedisAddr    string        `yaml:"redis_addr"`
	JWTSecret    string        `yaml:"jwt_secret"`
	JWTAudience  string        `yaml:"jwt_audience"`
	ResultTTL    time.Duration `yaml:"result_ttl"`
}

// Default returns the configuration used when nothing else is provided.
func Default() Config {
	return Config{
		ListenAddr:   ":8080",
		ModelPath:    "models/firerisk.onnx",
		MetadataPath: "models/firerisk_metadata.json",
		RedisAddr:    "redis:6379",
		JWTSecret:    "dev-secret",
		ResultTTL:    5 * time.Minute,
	}
}

// Load reads configuration from path (if the file exists) on top of the
// defaults, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")
	envOverride(&cfg.ModelPath, "MODEL_PATH")
	envOverride(&cfg.MetadataPath, "MODEL_METADATA_PATH")
	envOverride(&cfg.RedisAddr, "REDIS_ADDR")
	envOverride(&cfg.JWTSecret, "JWT_SECRET")
	envOverride(&cfg.JWTAudience, "JWT_AUDIENCE")
	envOverrideDuration(&cfg.ResultTTL, "RESULT_TTL")

	if cfg.ResultTTL <= 0 {
		return Config{}, fmt.Errorf("result_ttl must be positive, got %s", cfg.ResultTTL)
	}

	return cfg, nil
}

func envOverride(target *string, key string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

func envOverrideDuration(target *time.Duration, key string) {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			*target = parsed
		}
	}
}
