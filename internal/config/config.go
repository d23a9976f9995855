package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"media-dater/internal/walk"
)

// FileEnv names the environment variable pointing at an optional YAML config.
const FileEnv = "MEDIADATE_CONFIG"

// Config holds application configuration
type Config struct {
	Exiftool    string   `yaml:"exiftool" validate:"required"`
	Backend     string   `yaml:"backend" validate:"oneof=exiftool native"`
	Debug       bool     `yaml:"debug"`
	LogFormat   string   `yaml:"log_format" validate:"oneof=console json"`
	Skip        []string `yaml:"skip" validate:"dive,required"`
	MetricsFile string   `yaml:"metrics_file"`
}

var validate = validator.New()

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Exiftool:  "exiftool",
		Backend:   "exiftool",
		LogFormat: "console",
		Skip:      append([]string(nil), walk.DefaultSkip...),
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// MEDIADATE_CONFIG, then environment variables, and validates the result.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Exiftool = getEnv("MEDIADATE_EXIFTOOL", cfg.Exiftool)
	cfg.Backend = getEnv("MEDIADATE_BACKEND", cfg.Backend)
	cfg.Debug = getEnvBool("MEDIADATE_DEBUG", cfg.Debug)
	cfg.LogFormat = getEnv("MEDIADATE_LOG_FORMAT", cfg.LogFormat)
	cfg.Skip = getEnvList("MEDIADATE_SKIP", cfg.Skip)
	cfg.MetricsFile = getEnv("MEDIADATE_METRICS_FILE", cfg.MetricsFile)

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return nil, fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
		}
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
