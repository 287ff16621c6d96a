package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the runtime configuration of the operations service.
type Config struct {
	Port      string `mapstructure:"PORT"`
	Env       string `mapstructure:"ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	PermissionsFile string        `mapstructure:"PERMISSIONS_FILE"`
	SessionSecret   string        `mapstructure:"SESSION_SECRET"`
	SessionTTL      time.Duration `mapstructure:"SESSION_TTL"`
	BcryptCost      int           `mapstructure:"BCRYPT_COST"`

	SimulationEnabled  bool          `mapstructure:"SIMULATION_ENABLED"`
	SimulationInterval time.Duration `mapstructure:"SIMULATION_INTERVAL"`
	AssistantDelay     time.Duration `mapstructure:"ASSISTANT_REPLY_DELAY"`

	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	OTelEnabled         bool          `mapstructure:"OTEL_ENABLED"`
	OTelEndpoint        string        `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelServiceName     string        `mapstructure:"OTEL_SERVICE_NAME"`
	OTelSampler         string        `mapstructure:"OTEL_TRACES_SAMPLER"`
	OTelSampleRatio     float64       `mapstructure:"OTEL_TRACES_SAMPLER_ARG"`
	OTelMetricsInterval time.Duration `mapstructure:"OTEL_METRICS_EXPORT_INTERVAL"`
	ServiceVersion      string        `mapstructure:"SERVICE_VERSION"`

	ArchiveBucket string `mapstructure:"ARCHIVE_BUCKET"`
	AWSRegion     string `mapstructure:"AWS_REGION"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "LOG_FORMAT",
	"PERMISSIONS_FILE", "SESSION_SECRET", "SESSION_TTL", "BCRYPT_COST",
	"SIMULATION_ENABLED", "SIMULATION_INTERVAL", "ASSISTANT_REPLY_DELAY",
	"ALLOWED_ORIGINS",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"RABBITMQ_URL",
	"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME",
	"OTEL_TRACES_SAMPLER", "OTEL_TRACES_SAMPLER_ARG", "OTEL_METRICS_EXPORT_INTERVAL",
	"SERVICE_VERSION",
	"ARCHIVE_BUCKET", "AWS_REGION",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "SMTP_FROM",
}

// Load reads configuration from the environment, optionally seeded from a
// .env file in the working directory.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	setDefaults(v)
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Env values arrive as one comma separated string.
	cfg.AllowedOrigins = splitList(strings.Join(cfg.AllowedOrigins, ","))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PERMISSIONS_FILE", "")
	v.SetDefault("SESSION_SECRET", "medflow-dev-secret")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("SIMULATION_ENABLED", true)
	v.SetDefault("SIMULATION_INTERVAL", "5s")
	v.SetDefault("ASSISTANT_REPLY_DELAY", "600ms")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_SERVICE_NAME", "operations-service")
	v.SetDefault("OTEL_TRACES_SAMPLER", "always_on")
	v.SetDefault("OTEL_TRACES_SAMPLER_ARG", 0.1)
	v.SetDefault("OTEL_METRICS_EXPORT_INTERVAL", "30s")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("SMTP_PORT", 587)
}

// Validate checks values that would otherwise fail at first use.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if c.SimulationInterval <= 0 {
		return fmt.Errorf("SIMULATION_INTERVAL must be positive, got %s", c.SimulationInterval)
	}
	if c.IsProduction() && c.SessionSecret == "medflow-dev-secret" {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	return nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DatabaseEnabled reports whether Postgres settings were supplied.
func (c *Config) DatabaseEnabled() bool {
	return c.DBHost != "" && c.DBUser != "" && c.DBName != ""
}

// SMTPEnabled reports whether outbound email is configured.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
