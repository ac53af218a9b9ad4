// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	WebhookToken   string        `yaml:"webhook_token"` // optional shared secret for /webhook/emby
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL         string `yaml:"url"`
	MaxConns    int32  `yaml:"max_conns"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type EmbyConfig struct {
	ServerURL   string        `yaml:"server_url"`
	PublicURL   string        `yaml:"public_url"` // used for links handed to browsers; defaults to server_url
	APIKey      string        `yaml:"api_key"`
	Timeout     time.Duration `yaml:"timeout"`
	ServerIDTTL time.Duration `yaml:"server_id_ttl"`
	// BackgroundFallbackURL is served as a redirect when no login backdrop is available.
	BackgroundFallbackURL string `yaml:"background_fallback_url"`
}

type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret"`
	TokenTTL         time.Duration `yaml:"token_ttl"`
	AdminUsername    string        `yaml:"admin_username"`
	LoginRateLimit   int           `yaml:"login_rate_limit"`
	LoginRateWindow  time.Duration `yaml:"login_rate_window"`
	SecureCookie     bool          `yaml:"secure_cookie"`
	CookieDomain     string        `yaml:"cookie_domain"`
	RegisterRateCap  int           `yaml:"register_rate_limit"`
	RegisterRateSpan time.Duration `yaml:"register_rate_window"`
}

type CDKConfig struct {
	Prefix                 string        `yaml:"prefix"`
	MaxBatch               int           `yaml:"max_batch"`
	DefaultCDKValidDays    int           `yaml:"default_cdk_valid_days"`
	DefaultMemberValidDays int           `yaml:"default_member_valid_days"`
	RedeemLockTTL          time.Duration `yaml:"redeem_lock_ttl"`
}

type SchedulerConfig struct {
	ExpirySchedules []string      `yaml:"expiry_schedules"` // standard 5-field cron
	RunOnStart      *bool         `yaml:"run_on_start"`
	StartupDelay    time.Duration `yaml:"startup_delay"`
	JobTimeout      time.Duration `yaml:"job_timeout"`
	ResyncInterval  time.Duration `yaml:"resync_interval"`
	ResyncBatch     int           `yaml:"resync_batch"`
}

type SecurityConfig struct {
	EncryptionKey string `yaml:"encryption_key"`
}

type TelegramConfig struct {
	Token        string  `yaml:"token"`
	AdminChatIDs []int64 `yaml:"admin_chat_ids"`
}

type I18nConfig struct {
	DefaultLang string `yaml:"default_lang"`
}

type WorkerConfig struct {
	Size int `yaml:"size"`
}

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Emby      EmbyConfig      `yaml:"emby"`
	Auth      AuthConfig      `yaml:"auth"`
	CDK       CDKConfig       `yaml:"cdk"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Security  SecurityConfig  `yaml:"security"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	I18n      I18nConfig      `yaml:"i18n"`
	Worker    WorkerConfig    `yaml:"worker"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path, applies env overrides for secrets,
// fills defaults and validates the minimum needed to boot.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return cfg, nil
}

// Parse is LoadConfig without the file read.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("EMBY_API_KEY"); v != "" {
		cfg.Emby.APIKey = v
	}
	if v := os.Getenv("EMBY_SERVER_URL"); v != "" {
		cfg.Emby.ServerURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 3000
	}
	if cfg.HTTP.ReadTimeout <= 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout <= 0 {
		cfg.HTTP.WriteTimeout = 60 * time.Second
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 45 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	cfg.Emby.ServerURL = strings.TrimRight(cfg.Emby.ServerURL, "/")
	if cfg.Emby.PublicURL == "" {
		cfg.Emby.PublicURL = cfg.Emby.ServerURL
	}
	cfg.Emby.PublicURL = strings.TrimRight(cfg.Emby.PublicURL, "/")
	if cfg.Emby.Timeout <= 0 {
		cfg.Emby.Timeout = 15 * time.Second
	}
	if cfg.Emby.BackgroundFallbackURL == "" {
		cfg.Emby.BackgroundFallbackURL = "https://picsum.photos/1920/1080?grayscale"
	}
	if cfg.Emby.ServerIDTTL <= 0 {
		cfg.Emby.ServerIDTTL = time.Hour
	}

	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 7 * 24 * time.Hour
	}
	if cfg.Auth.LoginRateLimit <= 0 {
		cfg.Auth.LoginRateLimit = 10
	}
	if cfg.Auth.LoginRateWindow <= 0 {
		cfg.Auth.LoginRateWindow = 5 * time.Minute
	}
	if cfg.Auth.RegisterRateCap <= 0 {
		cfg.Auth.RegisterRateCap = 20
	}
	if cfg.Auth.RegisterRateSpan <= 0 {
		cfg.Auth.RegisterRateSpan = 10 * time.Minute
	}

	if cfg.CDK.Prefix == "" {
		cfg.CDK.Prefix = "EMBY"
	}
	if cfg.CDK.MaxBatch <= 0 {
		cfg.CDK.MaxBatch = 50
	}
	if cfg.CDK.DefaultCDKValidDays <= 0 {
		cfg.CDK.DefaultCDKValidDays = 365
	}
	if cfg.CDK.DefaultMemberValidDays <= 0 {
		cfg.CDK.DefaultMemberValidDays = 30
	}
	if cfg.CDK.RedeemLockTTL <= 0 {
		cfg.CDK.RedeemLockTTL = time.Minute
	}

	if len(cfg.Scheduler.ExpirySchedules) == 0 {
		cfg.Scheduler.ExpirySchedules = []string{"0 * * * *", "0 3 * * *"}
	}
	if cfg.Scheduler.RunOnStart == nil {
		on := true
		cfg.Scheduler.RunOnStart = &on
	}
	if cfg.Scheduler.StartupDelay <= 0 {
		cfg.Scheduler.StartupDelay = 5 * time.Second
	}
	if cfg.Scheduler.JobTimeout <= 0 {
		cfg.Scheduler.JobTimeout = 10 * time.Minute
	}
	if cfg.Scheduler.ResyncInterval <= 0 {
		cfg.Scheduler.ResyncInterval = 10 * time.Minute
	}
	if cfg.Scheduler.ResyncBatch <= 0 {
		cfg.Scheduler.ResyncBatch = 100
	}

	if cfg.I18n.DefaultLang == "" {
		cfg.I18n.DefaultLang = "zh"
	}
	if cfg.Worker.Size <= 0 {
		cfg.Worker.Size = 4
	}
}

// Minimal validation
func validate(cfg *Config) error {
	if cfg.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	if cfg.Emby.ServerURL == "" {
		return errors.New("emby.server_url is required")
	}
	if cfg.Emby.APIKey == "" {
		return errors.New("emby.api_key is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	if n := len(cfg.Security.EncryptionKey); n != 0 && n != 16 && n != 24 && n != 32 {
		return fmt.Errorf("security.encryption_key must be 16, 24 or 32 bytes; got %d", n)
	}
	for _, spec := range cfg.Scheduler.ExpirySchedules {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("scheduler.expiry_schedules %q: %w", spec, err)
		}
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
