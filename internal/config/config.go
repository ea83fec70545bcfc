package config

import (
	"flag"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret     = "dev-secret-key"
	defaultRefreshSecret = "dev-refresh-secret-key"
)

type Config struct {
	// Server-side settings
	DatabaseDSN string `env:"DATABASE_URI"`
	Port        string `env:"PORT"`
	LogFormat   string `env:"LOG_FORMAT"`

	// JWT
	JWTSecret           string        `env:"JWT_SECRET"`
	JWTExpiresIn        string        `env:"JWT_EXPIRES_IN"`
	RefreshJWTSecret    string        `env:"REFRESH_JWT_SECRET"`
	RefreshJWTExpiresIn string        `env:"REFRESH_JWT_EXPIRES_IN"`
	AccessTTL           time.Duration `env:"-"`
	RefreshTTL          time.Duration `env:"-"`

	// Ссылки для редиректов и писем
	FrontendURL string `env:"FRONTEND_URL"`
	BackendURL  string `env:"BACKEND_URL"`

	// SMTP
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`

	// Загрузки
	UploadsDir  string `env:"UPLOADS_DIR"`
	UploadMaxMB int    `env:"UPLOAD_MAX_MB"`

	// Google OAuth
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL"`

	// Redis для блокировки тиков напоминаний; пустой адрес — без блокировки
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	ReminderInterval time.Duration `env:"REMINDER_INTERVAL"`

	// Warnings копит замечания о подставленных dev-значениях, их логирует main
	Warnings []string `env:"-"`
}

// NewConfig читает .env, переменные окружения и флаги командной строки.
func NewConfig() *Config {
	cfg := loadEnv()

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.Port, "a", cfg.Port, "порт HTTP сервера")
	flag.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "секрет для подписи access JWT")
	flag.StringVar(&cfg.UploadsDir, "uploads", cfg.UploadsDir, "каталог для загруженных файлов")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

// LoadEnv читает только .env и окружение, без флагов (флагами владеет вызывающий).
func LoadEnv() *Config {
	cfg := loadEnv()
	cfg.applyDefaults()
	return cfg
}

func loadEnv() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DatabaseDSN == "" {
		c.DatabaseDSN = "lura.db"
	}
	// PORT может прийти как "3001" или ":3001"
	portRe := regexp.MustCompile(`^:?\d{1,5}$`)
	if !portRe.MatchString(c.Port) {
		c.Port = "3001"
	}
	c.Port = strings.TrimPrefix(c.Port, ":")

	if c.JWTSecret == "" {
		c.JWTSecret = defaultJWTSecret
		c.Warnings = append(c.Warnings, "JWT_SECRET is not set, using development secret")
	}
	if c.RefreshJWTSecret == "" {
		c.RefreshJWTSecret = defaultRefreshSecret
		c.Warnings = append(c.Warnings, "REFRESH_JWT_SECRET is not set, using development secret")
	}
	if c.JWTExpiresIn == "" {
		c.JWTExpiresIn = "7d"
	}
	if c.RefreshJWTExpiresIn == "" {
		c.RefreshJWTExpiresIn = "7d"
	}
	var err error
	if c.AccessTTL, err = ParseExpiry(c.JWTExpiresIn); err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("JWT_EXPIRES_IN %q is invalid, using 7d", c.JWTExpiresIn))
		c.AccessTTL = 7 * 24 * time.Hour
	}
	if c.RefreshTTL, err = ParseExpiry(c.RefreshJWTExpiresIn); err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("REFRESH_JWT_EXPIRES_IN %q is invalid, using 7d", c.RefreshJWTExpiresIn))
		c.RefreshTTL = 7 * 24 * time.Hour
	}

	if c.FrontendURL == "" {
		c.FrontendURL = "http://localhost:3000"
	}
	if c.BackendURL == "" {
		c.BackendURL = "http://localhost:" + c.Port
	}
	c.FrontendURL = strings.TrimRight(c.FrontendURL, "/")
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")

	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	if c.MailFrom == "" {
		c.MailFrom = c.SMTPUser
	}
	if c.SMTPHost == "" {
		c.Warnings = append(c.Warnings, "SMTP_HOST is not set, emails will only be logged")
	}

	if c.UploadsDir == "" {
		c.UploadsDir = "uploads"
	}
	if c.UploadMaxMB <= 0 {
		c.UploadMaxMB = 10
	}
	if c.GoogleCallbackURL == "" {
		c.GoogleCallbackURL = c.BackendURL + "/auth/google/callback"
	}
	if c.ReminderInterval <= 0 {
		c.ReminderInterval = 5 * time.Minute
	}
}

// Addr адрес для http.Server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// GoogleEnabled сообщает, заданы ли учётные данные Google OAuth.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// ParseExpiry разбирает длительность в формате Go ("15m", "2h") или в днях ("7d").
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty expiry")
	}
	if strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid expiry %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid expiry %q", s)
	}
	return d, nil
}
