package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/viper"

	"github.com/policydesk/admin-api/migrations"
)

var DB *sqlx.DB

// Config is the typed view of the environment
type Config struct {
	Port     string
	Env      string
	LogLevel string
	Version  string

	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnLifetime time.Duration
	DBConnIdleTime time.Duration
	AutoMigrate    bool

	JWTSecret  string
	JWTExpire  time.Duration
	BcryptCost int

	AdminName     string
	AdminEmail    string
	AdminPassword string

	CORSOrigins []string
	RedisURL    string

	LoginRateLimit  int
	LoginRateWindow time.Duration
	LoginRateBlock  time.Duration
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", time.Minute)
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("JWT_EXPIRE", 7*24*time.Hour)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("ADMIN_NAME", "Super Admin")
	v.SetDefault("ADMIN_EMAIL", "admin@example.com")
	v.SetDefault("DEFAULT_ADMIN_PASSWORD", "Admin@123")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOGIN_RATE_LIMIT", 20)
	v.SetDefault("LOGIN_RATE_WINDOW", time.Minute)
	v.SetDefault("LOGIN_RATE_BLOCK", 5*time.Minute)
}

// InitConfig loads an optional .env file into the process environment and
// reads the configuration through viper.
func InitConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	v := viper.New()
	v.AutomaticEnv()
	return Load(v)
}

// Load builds a Config from v, applying defaults for unset keys
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{
		Port:            v.GetString("PORT"),
		Env:             v.GetString("APP_ENV"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		Version:         v.GetString("APP_VERSION"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		DBMaxOpenConns:  v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:  v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnLifetime:  v.GetDuration("DB_CONN_MAX_LIFETIME"),
		DBConnIdleTime:  v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
		AutoMigrate:     v.GetBool("AUTO_MIGRATE"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTExpire:       v.GetDuration("JWT_EXPIRE"),
		BcryptCost:      v.GetInt("BCRYPT_COST"),
		AdminName:       v.GetString("ADMIN_NAME"),
		AdminEmail:      v.GetString("ADMIN_EMAIL"),
		AdminPassword:   v.GetString("DEFAULT_ADMIN_PASSWORD"),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
		RedisURL:        v.GetString("REDIS_URL"),
		LoginRateLimit:  v.GetInt("LOGIN_RATE_LIMIT"),
		LoginRateWindow: v.GetDuration("LOGIN_RATE_WINDOW"),
		LoginRateBlock:  v.GetDuration("LOGIN_RATE_BLOCK"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.JWTExpire <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRE must be positive, got %s", cfg.JWTExpire)
	}
	return cfg, nil
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

// InitDB opens the Postgres pool, tunes it and verifies the connection
func InitDB(cfg *Config) (*sqlx.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	db, err := sqlx.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnLifetime)
	db.SetConnMaxIdleTime(cfg.DBConnIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	DB = db
	return db, nil
}

// Migrate applies every pending embedded migration
func Migrate(ctx context.Context, db *sqlx.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.DB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// CloseDB closes the database connection gracefully
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
