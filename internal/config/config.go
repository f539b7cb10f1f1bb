package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage driver constants
const (
	StorageDriverLocal  = "local"
	StorageDriverGCS    = "gcs"
	StorageDriverMemory = "memory"
)

// Lock driver constants
const (
	LockDriverRedis  = "redis"
	LockDriverMemory = "memory"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	PDF      PDFConfig      `mapstructure:"pdf"`
	Coords   CoordsConfig   `mapstructure:"coords"`
	Lock     LockConfig     `mapstructure:"lock"`
	Mail     MailConfig     `mapstructure:"mail"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Port        int    `mapstructure:"port"`
	Env         string `mapstructure:"env"`
	BaseURL     string `mapstructure:"base_url"`
	CORSOrigins string `mapstructure:"cors_origins"`
	BodyLimitMB int    `mapstructure:"body_limit_mb"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds the settings used to verify tokens issued by the identity service
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type StorageConfig struct {
	Driver         string             `mapstructure:"driver"` // "local", "gcs" or "memory"
	OriginalFolder string             `mapstructure:"original_folder"`
	SignedFolder   string             `mapstructure:"signed_folder"`
	FetchTimeout   time.Duration      `mapstructure:"fetch_timeout"`
	Local          LocalStorageConfig `mapstructure:"local"`
	GCS            GCSStorageConfig   `mapstructure:"gcs"`
}

type LocalStorageConfig struct {
	BasePath  string `mapstructure:"base_path"`  // Directory holding stored blobs
	PublicURL string `mapstructure:"public_url"` // URL prefix the blobs are served under
}

type GCSStorageConfig struct {
	Bucket        string `mapstructure:"bucket"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type PDFConfig struct {
	SignatureScale float64 `mapstructure:"signature_scale"`
	RelaxedMode    bool    `mapstructure:"relaxed_mode"`
}

// CoordsConfig relates the preview render resolution to PDF points
type CoordsConfig struct {
	ScaleX float64 `mapstructure:"scale_x"`
	ScaleY float64 `mapstructure:"scale_y"`
}

type LockConfig struct {
	Driver string        `mapstructure:"driver"` // "redis" or "memory"
	TTL    time.Duration `mapstructure:"ttl"`
	Wait   time.Duration `mapstructure:"wait"`
}

type MailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	From         string `mapstructure:"from"`
	SignLinkBase string `mapstructure:"sign_link_base"`
	Outbox       string `mapstructure:"outbox"` // "redis" or "memory"
	Workers      int    `mapstructure:"workers"`
	MaxAttempts  int    `mapstructure:"max_attempts"`
	FanoutLimit  int    `mapstructure:"fanout_limit"`
	// RetryDelay grows linearly with the attempt number
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults() {
	viper.SetDefault("app.name", "EasySign")
	viper.SetDefault("app.port", 3000)
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.cors_origins", "http://localhost:5173")
	viper.SetDefault("app.body_limit_mb", 25)

	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("storage.driver", StorageDriverLocal)
	viper.SetDefault("storage.original_folder", "EasySign/Files")
	viper.SetDefault("storage.signed_folder", "EasySign/SignedDocs")
	viper.SetDefault("storage.fetch_timeout", 30)
	viper.SetDefault("storage.local.base_path", "./data")

	viper.SetDefault("pdf.signature_scale", 0.2)
	viper.SetDefault("pdf.relaxed_mode", true)

	viper.SetDefault("coords.scale_x", 1.65)
	viper.SetDefault("coords.scale_y", 4.0)

	viper.SetDefault("lock.driver", LockDriverRedis)
	viper.SetDefault("lock.ttl", 30)
	viper.SetDefault("lock.wait", 10)

	viper.SetDefault("mail.outbox", "redis")
	viper.SetDefault("mail.workers", 2)
	viper.SetDefault("mail.max_attempts", 3)
	viper.SetDefault("mail.fanout_limit", 4)
	viper.SetDefault("mail.port", 587)
	viper.SetDefault("mail.retry_delay", 5)
	viper.SetDefault("mail.send_timeout", 30)

	viper.SetDefault("logging.level", "info")
}

func NewConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	// Enable environment variable override
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Durations are configured in seconds
	cfg.Storage.FetchTimeout = cfg.Storage.FetchTimeout * time.Second
	cfg.Lock.TTL = cfg.Lock.TTL * time.Second
	cfg.Lock.Wait = cfg.Lock.Wait * time.Second
	cfg.Mail.RetryDelay = cfg.Mail.RetryDelay * time.Second
	cfg.Mail.SendTimeout = cfg.Mail.SendTimeout * time.Second

	if cfg.Storage.Local.PublicURL == "" {
		cfg.Storage.Local.PublicURL = strings.TrimRight(cfg.App.BaseURL, "/") + "/files"
	}
	if cfg.Mail.SignLinkBase == "" {
		cfg.Mail.SignLinkBase = "http://localhost:5173"
	}

	return &cfg, nil
}

// BodyLimitBytes is the request body cap, 25 MiB when unset
func (c *Config) BodyLimitBytes() int {
	if c.App.BodyLimitMB <= 0 {
		return 25 << 20
	}
	return c.App.BodyLimitMB << 20
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
