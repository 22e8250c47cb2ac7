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
	Server  ServerConfig
	DB      DBConfig
	S3      S3Config
	Log     LogConfig
	Parser  ParserConfig
	Extract ExtractConfig
	CORS    CORSConfig
	Email   EmailConfig
}

// EmailConfig holds batch notification settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ToAddress   string `mapstructure:"to_address"`
}

// ExtractConfig holds batch extraction settings.
type ExtractConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MaxFiles    int `mapstructure:"max_files"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserProviderConfig holds settings for a single LLM parser provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds LLM document parser settings with multi-provider support.
type ParserConfig struct {
	// Legacy flat fields (backwards-compatible)
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
}

// PrimaryConfig returns the primary parser provider config, falling back to legacy flat fields.
func (p *ParserConfig) PrimaryConfig() *ParserProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return &ParserProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		MaxRetries:   p.MaxRetries,
		TimeoutSecs:  p.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary parser provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
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
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the MEIBO_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEIBO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "meibo")
	v.SetDefault("db.password", "meibo_secret")
	v.SetDefault("db.name", "meibo_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "ap-northeast-1")
	v.SetDefault("s3.bucket", "meibo-scans")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 20)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Extraction defaults match the scan operators' working set: small batches
	// of phone photos, three uploads in flight at once.
	v.SetDefault("extract.concurrency", 3)
	v.SetDefault("extract.max_files", 10)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-northeast-1")
	v.SetDefault("email.from_address", "noreply@meibo.example.com")
	v.SetDefault("email.from_name", "Meibo")
	v.SetDefault("email.to_address", "")

	// Parser defaults (legacy flat)
	v.SetDefault("parser.provider", "claude")
	v.SetDefault("parser.api_key", "")
	v.SetDefault("parser.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("parser.max_retries", 2)
	v.SetDefault("parser.timeout_secs", 120)

	// Parser primary/secondary defaults
	v.SetDefault("parser.primary.provider", "")
	v.SetDefault("parser.primary.api_key", "")
	v.SetDefault("parser.primary.default_model", "")
	v.SetDefault("parser.primary.max_retries", 2)
	v.SetDefault("parser.primary.timeout_secs", 120)
	v.SetDefault("parser.secondary.provider", "")
	v.SetDefault("parser.secondary.api_key", "")
	v.SetDefault("parser.secondary.default_model", "")
	v.SetDefault("parser.secondary.max_retries", 2)
	v.SetDefault("parser.secondary.timeout_secs", 120)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "MEIBO_SERVER_PORT",
		"server.read_timeout":  "MEIBO_SERVER_READ_TIMEOUT",
		"server.write_timeout": "MEIBO_SERVER_WRITE_TIMEOUT",
		"server.environment":   "MEIBO_SERVER_ENVIRONMENT",
		"db.host":              "MEIBO_DB_HOST",
		"db.port":              "MEIBO_DB_PORT",
		"db.user":              "MEIBO_DB_USER",
		"db.password":          "MEIBO_DB_PASSWORD",
		"db.name":              "MEIBO_DB_NAME",
		"db.sslmode":           "MEIBO_DB_SSLMODE",
		"db.max_open":          "MEIBO_DB_MAX_OPEN",
		"db.max_idle":          "MEIBO_DB_MAX_IDLE",
		"s3.region":            "MEIBO_S3_REGION",
		"s3.bucket":            "MEIBO_S3_BUCKET",
		"s3.endpoint":          "MEIBO_S3_ENDPOINT",
		"s3.access_key":        "MEIBO_S3_ACCESS_KEY",
		"s3.secret_key":        "MEIBO_S3_SECRET_KEY",
		"s3.max_file_size_mb":  "MEIBO_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":    "MEIBO_S3_PRESIGN_EXPIRY",
		"log.level":            "MEIBO_LOG_LEVEL",
		"log.format":           "MEIBO_LOG_FORMAT",
		"cors.allowed_origins": "MEIBO_CORS_ALLOWED_ORIGINS",
		"extract.concurrency":  "MEIBO_EXTRACT_CONCURRENCY",
		"extract.max_files":    "MEIBO_EXTRACT_MAX_FILES",
		"parser.provider":      "MEIBO_PARSER_PROVIDER",
		"parser.api_key":       "MEIBO_PARSER_API_KEY",
		"parser.default_model": "MEIBO_PARSER_DEFAULT_MODEL",
		"parser.max_retries":   "MEIBO_PARSER_MAX_RETRIES",
		"parser.timeout_secs":  "MEIBO_PARSER_TIMEOUT_SECS",
		"parser.primary.provider":        "MEIBO_PARSER_PRIMARY_PROVIDER",
		"parser.primary.api_key":         "MEIBO_PARSER_PRIMARY_API_KEY",
		"parser.primary.default_model":   "MEIBO_PARSER_PRIMARY_DEFAULT_MODEL",
		"parser.primary.max_retries":     "MEIBO_PARSER_PRIMARY_MAX_RETRIES",
		"parser.primary.timeout_secs":    "MEIBO_PARSER_PRIMARY_TIMEOUT_SECS",
		"parser.secondary.provider":      "MEIBO_PARSER_SECONDARY_PROVIDER",
		"parser.secondary.api_key":       "MEIBO_PARSER_SECONDARY_API_KEY",
		"parser.secondary.default_model": "MEIBO_PARSER_SECONDARY_DEFAULT_MODEL",
		"parser.secondary.max_retries":   "MEIBO_PARSER_SECONDARY_MAX_RETRIES",
		"parser.secondary.timeout_secs":  "MEIBO_PARSER_SECONDARY_TIMEOUT_SECS",
		"email.provider":                 "MEIBO_EMAIL_PROVIDER",
		"email.region":                   "MEIBO_EMAIL_REGION",
		"email.from_address":             "MEIBO_EMAIL_FROM_ADDRESS",
		"email.from_name":                "MEIBO_EMAIL_FROM_NAME",
		"email.to_address":               "MEIBO_EMAIL_TO_ADDRESS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if MEIBO_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("MEIBO_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
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
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Parser = ParserConfig{
		Provider:     v.GetString("parser.provider"),
		APIKey:       v.GetString("parser.api_key"),
		DefaultModel: v.GetString("parser.default_model"),
		MaxRetries:   v.GetInt("parser.max_retries"),
		TimeoutSecs:  v.GetInt("parser.timeout_secs"),
		Primary: ParserProviderConfig{
			Provider:     v.GetString("parser.primary.provider"),
			APIKey:       v.GetString("parser.primary.api_key"),
			DefaultModel: v.GetString("parser.primary.default_model"),
			MaxRetries:   v.GetInt("parser.primary.max_retries"),
			TimeoutSecs:  v.GetInt("parser.primary.timeout_secs"),
		},
		Secondary: ParserProviderConfig{
			Provider:     v.GetString("parser.secondary.provider"),
			APIKey:       v.GetString("parser.secondary.api_key"),
			DefaultModel: v.GetString("parser.secondary.default_model"),
			MaxRetries:   v.GetInt("parser.secondary.max_retries"),
			TimeoutSecs:  v.GetInt("parser.secondary.timeout_secs"),
		},
	}

	cfg.Extract = ExtractConfig{
		Concurrency: v.GetInt("extract.concurrency"),
		MaxFiles:    v.GetInt("extract.max_files"),
	}
	if cfg.Extract.Concurrency < 1 {
		cfg.Extract.Concurrency = 1
	}
	if cfg.Extract.MaxFiles < 1 {
		cfg.Extract.MaxFiles = 1
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		ToAddress:   v.GetString("email.to_address"),
	}

	return cfg, nil
}
