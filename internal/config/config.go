// Package config loads worker and command configuration from an optional
// config file, a .env file and the process environment.
//
// Keys are dotted (smtp.host) and map onto environment variables by
// upper-casing and replacing dots with underscores (SMTP_HOST).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Ledger backends.
const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Mail transports.
const (
	TransportAuto     = "auto"
	TransportSMTP     = "smtp"
	TransportSES      = "ses"
	TransportDisabled = "disabled"
)

// Schedule overlap policies accepted by schedule.overlap_policy.
const (
	OverlapSkip      = "skip"
	OverlapBufferOne = "buffer_one"
	OverlapAllowAll  = "allow_all"
)

// Defaults.
const (
	DefaultTemporalTarget    = "localhost:7233"
	DefaultTemporalNamespace = "default"
	DefaultTaskQueue         = "application-review"
	DefaultDataDir           = "data"
	DefaultRedisPrefix       = "{ledger}"
	DefaultGeminiModel       = "models/gemini-2.5-flash"
	DefaultGeminiTimeout     = 60 * time.Second
	DefaultSMTPPort          = 587
	DefaultSMTPTimeout       = 30 * time.Second
	DefaultMetricsAddr       = ":9090"
	DefaultMaxSweepFanOut    = 32
	DefaultSweepMaxRows      = 200
	MaxSweepRows             = 1000
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full process configuration.
type Config struct {
	Temporal TemporalConfig `mapstructure:"temporal"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Google   GoogleConfig   `mapstructure:"google"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Mail     MailConfig     `mapstructure:"mail"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	SES      SESConfig      `mapstructure:"ses"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Sweep    SweepConfig    `mapstructure:"sweep"`
}

// TemporalConfig locates the Temporal frontend and the pipeline's task queue.
type TemporalConfig struct {
	Target    string `mapstructure:"target"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// LedgerConfig selects the ledger backend and its connection settings. The
// Redis prefix keeps its braces so every key lands in one cluster slot.
type LedgerConfig struct {
	Backend     string `mapstructure:"backend"`
	DataDir     string `mapstructure:"data_dir"`
	RedisAddr   string `mapstructure:"redis_addr"`
	RedisPrefix string `mapstructure:"redis_prefix"`
	PostgresURL string `mapstructure:"postgres_url"`
}

// GoogleConfig holds the API key of the external scorer. An empty key leaves
// only the keyword scorer in the chain.
type GoogleConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// GeminiConfig configures the external scorer.
type GeminiConfig struct {
	Model    string        `mapstructure:"model"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MailConfig selects the transport. "auto" picks SMTP when smtp.host is set,
// then SES when ses.region is set, and otherwise disables delivery.
type MailConfig struct {
	Transport     string  `mapstructure:"transport"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// SMTPConfig configures the SMTP transport. From falls back to Username.
type SMTPConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SESConfig configures the SES transport.
type SESConfig struct {
	Region string `mapstructure:"region"`
	From   string `mapstructure:"from"`
}

// LogConfig selects the slog handler (text or json) and minimum level.
type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

// MetricsConfig sets the listen address of the /metrics endpoint.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// ScheduleConfig controls the sweep schedule.
type ScheduleConfig struct {
	OverlapPolicy string `mapstructure:"overlap_policy"`
}

// SweepConfig bounds notification fan-out and batch size of scheduled sweeps.
type SweepConfig struct {
	MaxConcurrent int `mapstructure:"max_concurrent"`
	MaxRows       int `mapstructure:"max_rows"`
}

// Load reads configuration. A .env file in the working directory is applied
// to the environment first when present; config.yaml is searched in ./configs
// and the working directory. Neither file is required.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

// LoadFile reads configuration from an explicit file plus the environment.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults registers every key, which is what lets AutomaticEnv reach it
// during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("temporal.target", DefaultTemporalTarget)
	v.SetDefault("temporal.namespace", DefaultTemporalNamespace)
	v.SetDefault("temporal.task_queue", DefaultTaskQueue)

	v.SetDefault("ledger.backend", BackendFile)
	v.SetDefault("ledger.data_dir", DefaultDataDir)
	v.SetDefault("ledger.redis_addr", "")
	v.SetDefault("ledger.redis_prefix", DefaultRedisPrefix)
	v.SetDefault("ledger.postgres_url", "")

	v.SetDefault("google.api_key", "")
	v.SetDefault("gemini.model", DefaultGeminiModel)
	v.SetDefault("gemini.endpoint", "")
	v.SetDefault("gemini.timeout", DefaultGeminiTimeout)

	v.SetDefault("mail.transport", TransportAuto)
	v.SetDefault("mail.rate_per_second", 0)
	v.SetDefault("mail.burst", 1)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", DefaultSMTPPort)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.timeout", DefaultSMTPTimeout)

	v.SetDefault("ses.region", "")
	v.SetDefault("ses.from", "")

	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.addr", DefaultMetricsAddr)
	v.SetDefault("schedule.overlap_policy", OverlapSkip)
	v.SetDefault("sweep.max_concurrent", 1)
	v.SetDefault("sweep.max_rows", DefaultSweepMaxRows)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks backend- and transport-specific requirements.
func (c *Config) Validate() error {
	if c.Temporal.Target == "" || c.Temporal.TaskQueue == "" {
		return fmt.Errorf("%w: temporal.target and temporal.task_queue are required", ErrInvalid)
	}

	switch c.Ledger.Backend {
	case BackendFile:
		if c.Ledger.DataDir == "" {
			return fmt.Errorf("%w: ledger.data_dir is required for the file backend", ErrInvalid)
		}
	case BackendRedis:
		if c.Ledger.RedisAddr == "" {
			return fmt.Errorf("%w: ledger.redis_addr is required for the redis backend", ErrInvalid)
		}
	case BackendPostgres:
		if c.Ledger.PostgresURL == "" {
			return fmt.Errorf("%w: ledger.postgres_url is required for the postgres backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown ledger.backend %q", ErrInvalid, c.Ledger.Backend)
	}

	switch c.Mail.Transport {
	case TransportAuto, TransportSMTP, TransportDisabled:
	case TransportSES:
		if c.SES.Region == "" || c.SES.From == "" {
			return fmt.Errorf("%w: ses.region and ses.from are required for the ses transport", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown mail.transport %q", ErrInvalid, c.Mail.Transport)
	}
	if c.Mail.RatePerSecond < 0 {
		return fmt.Errorf("%w: mail.rate_per_second must not be negative", ErrInvalid)
	}

	switch c.Schedule.OverlapPolicy {
	case OverlapSkip, OverlapBufferOne, OverlapAllowAll:
	default:
		return fmt.Errorf("%w: unknown schedule.overlap_policy %q", ErrInvalid, c.Schedule.OverlapPolicy)
	}

	if c.Sweep.MaxConcurrent < 1 || c.Sweep.MaxConcurrent > DefaultMaxSweepFanOut {
		return fmt.Errorf("%w: sweep.max_concurrent must be in [1, %d]", ErrInvalid, DefaultMaxSweepFanOut)
	}
	if c.Sweep.MaxRows < 1 || c.Sweep.MaxRows > MaxSweepRows {
		return fmt.Errorf("%w: sweep.max_rows must be in [1, %d]", ErrInvalid, MaxSweepRows)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json", ErrInvalid)
	}
	return nil
}

// MailTransport resolves "auto" into a concrete transport.
func (c *Config) MailTransport() string {
	if c.Mail.Transport != TransportAuto {
		return c.Mail.Transport
	}
	switch {
	case c.SMTP.Host != "":
		return TransportSMTP
	case c.SES.Region != "" && c.SES.From != "":
		return TransportSES
	default:
		return TransportDisabled
	}
}
