package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AdminConfig struct {
	Username         string
	PasswordHash     string
	Password         string
	SessionTTL       time.Duration
	AllowBonusPoints bool
}

type RedisConfig struct {
	Addr    string
	Channel string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type AppConfig struct {
	Port          string
	Env           string
	Database      DatabaseConfig
	MLServiceURL  string
	VerifyTimeout time.Duration
	PolicyFile    string
	JWTSecret     string
	Admin         AdminConfig
	CORSOrigins   []string
	Redis         RedisConfig
	Gemini        GeminiConfig
	R2            *R2Config
}

func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// Load reads .env (if present) and the process environment.
func Load() (*AppConfig, error) {
	// Missing .env is fine in production.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &AppConfig{
		Port: v.GetString("PORT"),
		Env:  v.GetString("APP_ENV"),
		Database: DatabaseConfig{
			Driver:     strings.ToLower(v.GetString("DB_DRIVER")),
			URL:        v.GetString("DATABASE_URL"),
			Host:       v.GetString("DB_HOST"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			Name:       v.GetString("DB_NAME"),
			Port:       v.GetString("DB_PORT"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		MLServiceURL:  v.GetString("ML_SERVICE_URL"),
		VerifyTimeout: v.GetDuration("VERIFY_TIMEOUT"),
		PolicyFile:    v.GetString("POLICY_FILE"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		Admin: AdminConfig{
			Username:         v.GetString("ADMIN_USERNAME"),
			PasswordHash:     v.GetString("ADMIN_PASSWORD_HASH"),
			Password:         v.GetString("ADMIN_PASSWORD"),
			SessionTTL:       v.GetDuration("ADMIN_SESSION_TTL"),
			AllowBonusPoints: v.GetBool("ADMIN_ALLOW_BONUS_POINTS"),
		},
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		Redis: RedisConfig{
			Addr:    v.GetString("REDIS_ADDR"),
			Channel: v.GetString("REDIS_CHANNEL"),
		},
		Gemini: GeminiConfig{
			APIKey: v.GetString("GEMINI_API_KEY"),
			Model:  v.GetString("GEMINI_MODEL"),
		},
		R2: GetR2Config(),
	}

	if cfg.VerifyTimeout <= 0 {
		return nil, errors.New("VERIFY_TIMEOUT must be positive")
	}
	if cfg.Admin.SessionTTL <= 0 {
		return nil, errors.New("ADMIN_SESSION_TTL must be positive")
	}
	switch cfg.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, errors.New("DB_DRIVER must be postgres or sqlite")
	}
	return cfg, nil
}

// Validate checks the settings only the HTTP server needs.
func (c *AppConfig) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Admin.Username == "" {
		return errors.New("ADMIN_USERNAME is required")
	}
	if c.Admin.PasswordHash == "" && c.Admin.Password == "" {
		return errors.New("ADMIN_PASSWORD_HASH or ADMIN_PASSWORD is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("SQLITE_PATH", "greenid.db")
	v.SetDefault("ML_SERVICE_URL", "http://127.0.0.1:5000")
	v.SetDefault("VERIFY_TIMEOUT", "30s")
	v.SetDefault("POLICY_FILE", "")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_SESSION_TTL", "2h")
	v.SetDefault("ADMIN_ALLOW_BONUS_POINTS", true)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("REDIS_CHANNEL", "activity-dispositions")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
