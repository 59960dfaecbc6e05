package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Log        LogConfig
	Extractor  ExtractorConfig
	Reference  ReferenceConfig
	Validation ValidationConfig
	Batch      BatchConfig
}

// ExtractorProviderConfig holds settings for a single LLM extractor provider.
type ExtractorProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ExtractorConfig holds structured extractor settings with multi-provider support.
type ExtractorConfig struct {
	// Legacy flat fields (single provider)
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Fallback chain
	Primary   ExtractorProviderConfig `mapstructure:"primary"`
	Secondary ExtractorProviderConfig `mapstructure:"secondary"`
	Tertiary  ExtractorProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (e *ExtractorConfig) PrimaryConfig() *ExtractorProviderConfig {
	if e.Primary.Provider != "" {
		return &e.Primary
	}
	return &ExtractorProviderConfig{
		Provider:     e.Provider,
		APIKey:       e.APIKey,
		DefaultModel: e.DefaultModel,
		MaxRetries:   e.MaxRetries,
		TimeoutSecs:  e.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (e *ExtractorConfig) SecondaryConfig() *ExtractorProviderConfig {
	if e.Secondary.Provider != "" {
		return &e.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (e *ExtractorConfig) TertiaryConfig() *ExtractorProviderConfig {
	if e.Tertiary.Provider != "" {
		return &e.Tertiary
	}
	return nil
}

// Chain returns the configured providers in fallback order.
func (e *ExtractorConfig) Chain() []*ExtractorProviderConfig {
	chain := []*ExtractorProviderConfig{e.PrimaryConfig()}
	if s := e.SecondaryConfig(); s != nil {
		chain = append(chain, s)
	}
	if t := e.TertiaryConfig(); t != nil {
		chain = append(chain, t)
	}
	return chain
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`

	// AllowedOrigins are the CORS origins, comma-separated in the environment.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
	// Enabled turns on the validation run audit log.
	Enabled bool `mapstructure:"enabled"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Reference data sources.
const (
	ReferenceSourceFile     = "file"
	ReferenceSourceXLSX     = "xlsx"
	ReferenceSourcePostgres = "postgres"
	ReferenceSourceS3       = "s3"
)

// ReferenceConfig selects where the county vocabulary and tax table come from.
type ReferenceConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
	Sheet  string `mapstructure:"sheet"`
	Bucket string `mapstructure:"bucket"`
	Key    string `mapstructure:"key"`
}

// ValidationConfig holds pipeline tuning.
type ValidationConfig struct {
	MatchThreshold float64 `mapstructure:"match_threshold"`
	Scorer         string  `mapstructure:"scorer"`
}

// BatchConfig holds batch validation settings.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// Load reads configuration from environment variables with the DEEDCHECK_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DEEDCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "deedcheck")
	v.SetDefault("db.password", "deedcheck_secret")
	v.SetDefault("db.name", "deedcheck_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)
	v.SetDefault("db.enabled", false)

	// S3 defaults
	v.SetDefault("s3.region", "us-west-2")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Extractor defaults (legacy flat)
	v.SetDefault("extractor.provider", "openai")
	v.SetDefault("extractor.api_key", "")
	v.SetDefault("extractor.default_model", "gpt-4o-mini")
	v.SetDefault("extractor.max_retries", 2)
	v.SetDefault("extractor.timeout_secs", 60)

	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("extractor."+tier+".provider", "")
		v.SetDefault("extractor."+tier+".api_key", "")
		v.SetDefault("extractor."+tier+".default_model", "")
		v.SetDefault("extractor."+tier+".max_retries", 2)
		v.SetDefault("extractor."+tier+".timeout_secs", 60)
	}

	// Reference defaults
	v.SetDefault("reference.source", ReferenceSourceFile)
	v.SetDefault("reference.path", "db/seeds/counties.yaml")
	v.SetDefault("reference.sheet", "")
	v.SetDefault("reference.bucket", "")
	v.SetDefault("reference.key", "")

	// Validation defaults
	v.SetDefault("validation.match_threshold", 85.0)
	v.SetDefault("validation.scorer", "token_sort_partial")

	// Batch defaults
	v.SetDefault("batch.concurrency", 8)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                "DEEDCHECK_SERVER_PORT",
		"server.read_timeout":        "DEEDCHECK_SERVER_READ_TIMEOUT",
		"server.write_timeout":       "DEEDCHECK_SERVER_WRITE_TIMEOUT",
		"server.environment":         "DEEDCHECK_SERVER_ENVIRONMENT",
		"server.allowed_origins":     "DEEDCHECK_SERVER_ALLOWED_ORIGINS",
		"db.host":                    "DEEDCHECK_DB_HOST",
		"db.port":                    "DEEDCHECK_DB_PORT",
		"db.user":                    "DEEDCHECK_DB_USER",
		"db.password":                "DEEDCHECK_DB_PASSWORD",
		"db.name":                    "DEEDCHECK_DB_NAME",
		"db.sslmode":                 "DEEDCHECK_DB_SSLMODE",
		"db.max_open":                "DEEDCHECK_DB_MAX_OPEN",
		"db.max_idle":                "DEEDCHECK_DB_MAX_IDLE",
		"db.enabled":                 "DEEDCHECK_DB_ENABLED",
		"s3.region":                  "DEEDCHECK_S3_REGION",
		"s3.endpoint":                "DEEDCHECK_S3_ENDPOINT",
		"s3.access_key":              "DEEDCHECK_S3_ACCESS_KEY",
		"s3.secret_key":              "DEEDCHECK_S3_SECRET_KEY",
		"log.level":                  "DEEDCHECK_LOG_LEVEL",
		"log.format":                 "DEEDCHECK_LOG_FORMAT",
		"extractor.provider":         "DEEDCHECK_EXTRACTOR_PROVIDER",
		"extractor.api_key":          "DEEDCHECK_EXTRACTOR_API_KEY",
		"extractor.default_model":    "DEEDCHECK_EXTRACTOR_DEFAULT_MODEL",
		"extractor.max_retries":      "DEEDCHECK_EXTRACTOR_MAX_RETRIES",
		"extractor.timeout_secs":     "DEEDCHECK_EXTRACTOR_TIMEOUT_SECS",
		"reference.source":           "DEEDCHECK_REFERENCE_SOURCE",
		"reference.path":             "DEEDCHECK_REFERENCE_PATH",
		"reference.sheet":            "DEEDCHECK_REFERENCE_SHEET",
		"reference.bucket":           "DEEDCHECK_REFERENCE_BUCKET",
		"reference.key":              "DEEDCHECK_REFERENCE_KEY",
		"validation.match_threshold": "DEEDCHECK_VALIDATION_MATCH_THRESHOLD",
		"validation.scorer":          "DEEDCHECK_VALIDATION_SCORER",
		"batch.concurrency":          "DEEDCHECK_BATCH_CONCURRENCY",
	}
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		for _, field := range []string{"provider", "api_key", "default_model", "max_retries", "timeout_secs"} {
			key := "extractor." + tier + "." + field
			envBindings[key] = "DEEDCHECK_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it if DEEDCHECK_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DEEDCHECK_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),

		AllowedOrigins: splitList(v.GetString("server.allowed_origins")),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
		Enabled:  v.GetBool("db.enabled"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	provider := func(tier string) ExtractorProviderConfig {
		prefix := "extractor." + tier + "."
		return ExtractorProviderConfig{
			Provider:     v.GetString(prefix + "provider"),
			APIKey:       v.GetString(prefix + "api_key"),
			DefaultModel: v.GetString(prefix + "default_model"),
			MaxRetries:   v.GetInt(prefix + "max_retries"),
			TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
		}
	}
	cfg.Extractor = ExtractorConfig{
		Provider:     v.GetString("extractor.provider"),
		APIKey:       v.GetString("extractor.api_key"),
		DefaultModel: v.GetString("extractor.default_model"),
		MaxRetries:   v.GetInt("extractor.max_retries"),
		TimeoutSecs:  v.GetInt("extractor.timeout_secs"),
		Primary:      provider("primary"),
		Secondary:    provider("secondary"),
		Tertiary:     provider("tertiary"),
	}

	cfg.Reference = ReferenceConfig{
		Source: v.GetString("reference.source"),
		Path:   v.GetString("reference.path"),
		Sheet:  v.GetString("reference.sheet"),
		Bucket: v.GetString("reference.bucket"),
		Key:    v.GetString("reference.key"),
	}
	cfg.Validation = ValidationConfig{
		MatchThreshold: v.GetFloat64("validation.match_threshold"),
		Scorer:         v.GetString("validation.scorer"),
	}
	cfg.Batch = BatchConfig{
		Concurrency: v.GetInt("batch.concurrency"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if t := c.Validation.MatchThreshold; t < 0 || t > 100 {
		return fmt.Errorf("validation.match_threshold %.2f outside [0, 100]", t)
	}
	switch c.Reference.Source {
	case ReferenceSourceFile, ReferenceSourceXLSX:
		if c.Reference.Path == "" {
			return fmt.Errorf("reference.path is required for source %q", c.Reference.Source)
		}
	case ReferenceSourceS3:
		if c.Reference.Bucket == "" || c.Reference.Key == "" {
			return fmt.Errorf("reference.bucket and reference.key are required for source %q", c.Reference.Source)
		}
	case ReferenceSourcePostgres:
	default:
		return fmt.Errorf("unknown reference.source %q", c.Reference.Source)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be >= 1, got %d", c.Batch.Concurrency)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
