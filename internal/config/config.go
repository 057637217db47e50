// Package config loads liftmap settings. Values are resolved in order of
// precedence: command-line flags (applied by the caller), LIFTMAP_*
// environment variables, .env files, the YAML config file, then Defaults.
package config

import (
	stderrors "errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/liftmap/pkg/constants"
	"github.com/agentstation/liftmap/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "LIFTMAP"

// Config holds the resolved application settings.
type Config struct {
	// ConfigFile is the config file that was read, if any.
	ConfigFile string `mapstructure:"-" json:"config_file,omitempty" yaml:"config_file,omitempty"`

	// Storage
	DBPath string `mapstructure:"db_path" json:"db_path" yaml:"db_path"`

	// Sources
	PrimaryURL    string        `mapstructure:"primary_url" json:"primary_url" yaml:"primary_url"`
	FallbackURL   string        `mapstructure:"fallback_url" json:"fallback_url" yaml:"fallback_url"`
	RetryAttempts int           `mapstructure:"retry_attempts" json:"retry_attempts" yaml:"retry_attempts"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff" json:"retry_backoff" yaml:"retry_backoff"`
	HTTPTimeout   time.Duration `mapstructure:"http_timeout" json:"http_timeout" yaml:"http_timeout"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl" json:"cache_ttl" yaml:"cache_ttl"`

	// Pipeline
	MinCount       int    `mapstructure:"min_count" json:"min_count" yaml:"min_count"`
	BatchSize      int    `mapstructure:"batch_size" json:"batch_size" yaml:"batch_size"`
	CatalogVersion string `mapstructure:"catalog_version" json:"catalog_version" yaml:"catalog_version"`

	// Metrics
	MetricsFile string `mapstructure:"metrics_file" json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`

	// Logging
	LogLevel  string `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" json:"log_format" yaml:"log_format"`
	LogOutput string `mapstructure:"log_output" json:"log_output" yaml:"log_output"`
}

// keys lists every setting Load binds to the environment.
var keys = []string{
	"db_path",
	"primary_url",
	"fallback_url",
	"retry_attempts",
	"retry_backoff",
	"http_timeout",
	"cache_ttl",
	"min_count",
	"batch_size",
	"catalog_version",
	"metrics_file",
	"log_level",
	"log_format",
	"log_output",
}

// Defaults returns the settings used when nothing else provides a value.
// LogLevel stays empty so the -v and -q shortcuts can apply.
func Defaults() Config {
	return Config{
		DBPath:         filepath.Join(constants.DefaultDataPath, constants.DefaultDBFile),
		PrimaryURL:     constants.PrimaryCatalogURL,
		FallbackURL:    constants.FallbackCatalogURL,
		RetryAttempts:  constants.DefaultRetryAttempts,
		RetryBackoff:   constants.RetryBackoff,
		HTTPTimeout:    constants.DefaultHTTPTimeout,
		CacheTTL:       constants.CacheTTL,
		MinCount:       constants.DefaultMinCount,
		BatchSize:      constants.DefaultBatchSize,
		CatalogVersion: constants.CatalogVersion,
		LogFormat:      "auto",
		LogOutput:      "stderr",
	}
}

// Load resolves the configuration. configFile names an explicit YAML file;
// when empty, .liftmap.yaml is looked up in the home and working directories
// and a missing file is not an error.
func Load(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		envs := []string{key, EnvPrefix + "_" + strings.ToUpper(key)}
		if strings.HasPrefix(key, "log_") {
			// Unprefixed LOG_* variables are shared with the logging package.
			envs = append(envs, strings.ToUpper(key))
		}
		if err := v.BindEnv(envs...); err != nil {
			return nil, errors.NewConfigError("config", "bind "+key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".liftmap")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "read config file", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfigError("config", "decode settings", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	// Fill whatever no source set.
	defaults := Defaults()
	if err := mergo.Merge(cfg, defaults); err != nil {
		return nil, errors.NewConfigError("config", "apply defaults", err)
	}

	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.RetryAttempts < 1:
		return errors.NewValidationError("retry_attempts", c.RetryAttempts, "must be at least 1")
	case c.BatchSize < 1:
		return errors.NewValidationError("batch_size", c.BatchSize, "must be positive")
	case c.MinCount < 0:
		return errors.NewValidationError("min_count", c.MinCount, "must be non-negative")
	case c.DBPath == "":
		return errors.NewValidationError("db_path", c.DBPath, "is required")
	}
	if err := checkURL("primary_url", c.PrimaryURL); err != nil {
		return err
	}
	return checkURL("fallback_url", c.FallbackURL)
}

// ResolvedDBPath returns DBPath with a leading ~ expanded to the home directory.
func (c *Config) ResolvedDBPath() (string, error) {
	return expandHome(c.DBPath)
}

// UpdateFromFlags applies flag values that were explicitly set. Flags win
// over every other source.
func (c *Config) UpdateFromFlags(dbPath, logLevel string) {
	if dbPath != "" {
		c.DBPath = dbPath
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

func checkURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.NewValidationError(field, raw, "must be an http(s) URL")
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewConfigError("config", "resolve home directory", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// loadEnvFiles loads .env.local then .env. godotenv never overwrites a
// variable that is already set, so .env.local wins over .env and the real
// environment wins over both.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
