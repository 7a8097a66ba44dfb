package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/labloom/marketplace-api/pkg/messaging/redis"
)

type ServerConfig struct {
	Port           int           `mapstructure:"port" envconfig:"SERVER_PORT"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes" envconfig:"SERVER_MAX_HEADER_BYTES"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host" envconfig:"DB_HOST"`
	Port     int    `mapstructure:"port" envconfig:"DB_PORT"`
	User     string `mapstructure:"user" envconfig:"DB_USER"`
	Password string `mapstructure:"password" envconfig:"DB_PASSWORD"`
	Name     string `mapstructure:"name" envconfig:"DB_NAME"`
	SSLMode  string `mapstructure:"sslmode" envconfig:"DB_SSLMODE"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type JWTConfig struct {
	Secret              string        `mapstructure:"secret" envconfig:"JWT_SECRET"`
	AccessTTL           time.Duration `mapstructure:"access_ttl" envconfig:"JWT_ACCESS_TTL"`
	RefreshTTL          time.Duration `mapstructure:"refresh_ttl" envconfig:"JWT_REFRESH_TTL"`
	LegacyTTL           time.Duration `mapstructure:"legacy_ttl" envconfig:"JWT_LEGACY_TTL"`
	RestrictedLegacyTTL time.Duration `mapstructure:"restricted_legacy_ttl" envconfig:"JWT_RESTRICTED_LEGACY_TTL"`
}

// AuthConfig carries the OTP login knobs. The admin account authenticates
// with a fixed code instead of a generated one.
type AuthConfig struct {
	AdminPhone string        `mapstructure:"admin_phone" envconfig:"AUTH_ADMIN_PHONE"`
	AdminOTP   string        `mapstructure:"admin_otp" envconfig:"AUTH_ADMIN_OTP"`
	OTPTTL     time.Duration `mapstructure:"otp_ttl" envconfig:"AUTH_OTP_TTL"`
}

// BookingConfig holds the revenue and scheduling constants.
type BookingConfig struct {
	PlatformFee  int64         `mapstructure:"platform_fee" envconfig:"BOOKING_PLATFORM_FEE"`
	SlotStart    string        `mapstructure:"slot_start" envconfig:"BOOKING_SLOT_START"`
	SlotEnd      string        `mapstructure:"slot_end" envconfig:"BOOKING_SLOT_END"`
	SlotInterval time.Duration `mapstructure:"slot_interval" envconfig:"BOOKING_SLOT_INTERVAL"`
}

type ChatConfig struct {
	WindowDays int `mapstructure:"window_days" envconfig:"CHAT_WINDOW_DAYS"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url" envconfig:"REDIS_URL"`
	MaxRetries   int           `mapstructure:"max_retries" envconfig:"REDIS_MAX_RETRIES"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" envconfig:"REDIS_RETRY_BACKOFF"`
	PoolSize     int           `mapstructure:"pool_size" envconfig:"REDIS_POOL_SIZE"`
	MinIdleConns int           `mapstructure:"min_idle_conns" envconfig:"REDIS_MIN_IDLE_CONNS"`
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}

type SMTPConfig struct {
	Host     string `mapstructure:"host" envconfig:"SMTP_HOST"`
	Port     int    `mapstructure:"port" envconfig:"SMTP_PORT"`
	Username string `mapstructure:"username" envconfig:"SMTP_USERNAME"`
	Password string `mapstructure:"password" envconfig:"SMTP_PASSWORD"`
	From     string `mapstructure:"from" envconfig:"SMTP_FROM"`
}

type UploadConfig struct {
	Dir     string `mapstructure:"dir" envconfig:"UPLOAD_DIR"`
	BaseURL string `mapstructure:"base_url" envconfig:"UPLOAD_BASE_URL"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled" envconfig:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" envconfig:"RATE_LIMIT_RPS"`
	Burst             int     `mapstructure:"burst" envconfig:"RATE_LIMIT_BURST"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Booking   BookingConfig   `mapstructure:"booking"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Redis     RedisConfig     `mapstructure:"redis"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Uploads   UploadConfig    `mapstructure:"uploads"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.max_header_bytes", 1<<20)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.name", "marketplace")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("jwt.access_ttl", "15m")
	viper.SetDefault("jwt.refresh_ttl", "720h")
	viper.SetDefault("jwt.legacy_ttl", "720h")
	viper.SetDefault("jwt.restricted_legacy_ttl", "168h")

	viper.SetDefault("auth.admin_otp", "1234")
	viper.SetDefault("auth.otp_ttl", "10m")

	viper.SetDefault("booking.platform_fee", 50)
	viper.SetDefault("booking.slot_start", "09:00")
	viper.SetDefault("booking.slot_end", "16:30")
	viper.SetDefault("booking.slot_interval", "30m")

	viper.SetDefault("chat.window_days", 7)

	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.retry_backoff", "100ms")
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.min_idle_conns", 2)

	viper.SetDefault("uploads.dir", "./uploads")
	viper.SetDefault("uploads.base_url", "/uploads")

	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests_per_second", 50)
	viper.SetDefault("rate_limit.burst", 100)
}

// LoadConfig reads config.yml if present, then applies environment overrides.
func LoadConfig() (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/app/config")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process env overrides: %w", err)
	}

	return &config, nil
}
