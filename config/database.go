package config

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver     string
	URL        string
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	SQLitePath string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	Region          string
}

// Enabled reports whether enough bucket settings exist to presign uploads.
func (c *R2Config) Enabled() bool {
	return c != nil && c.AccountID != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.BucketName != ""
}

func GetR2Config() *R2Config {
	return &R2Config{
		AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("CLOUDFLARE_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("CLOUDFLARE_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("CLOUDFLARE_BUCKET_NAME"),
		PublicURL:       os.Getenv("CLOUDFLARE_PUBLIC_URL"),
		Region:          "auto",
	}
}

// DSN prefers DATABASE_URL and otherwise assembles a postgres DSN from the DB_* parts.
func (c DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return c.SQLitePath
	}
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.User, c.Password, c.Name, c.Port)
}

func OpenDatabase(c DatabaseConfig) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch c.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(c.DSN())
	case DriverPostgres, "":
		dialector = postgres.Open(c.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", c.Driver, err)
	}

	if c.Driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.ActivityLog{})
}
