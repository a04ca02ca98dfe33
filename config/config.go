package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadEnv loads .env.<APP_ENV>.local then .env into the process
// environment. Missing files are not an error; existing variables win.
func LoadEnv() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "production"
	}
	_ = godotenv.Load(fmt.Sprintf(".env.%s.local", env))
	_ = godotenv.Load()
}

type Config struct {
	Port      string
	WebOrigin string
	// AdminToken guards mutating routes; empty disables the guard.
	AdminToken string

	Database DatabaseConfig
	Redis    RedisConfig

	// SequenceBackend is "db" or "redis".
	SequenceBackend string
	StatsCacheTTL   time.Duration

	Logging LoggingConfig
}

type DatabaseConfig struct {
	Driver   string // postgres | mysql | sqlite | memory
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// DSN returns DATABASE_URL when set, otherwise builds a postgres DSN from
// the DB_* parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Driver != "postgres" {
		return ""
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		d.Host, d.User, d.Password, d.Name, d.Port)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type LoggingConfig struct {
	Level  string
	Format string // text | json
}

// Load reads configuration from the environment through viper.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "4000")
	v.SetDefault("web_origin", "http://localhost:5173")
	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_host", "127.0.0.1")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_name", "switches")
	v.SetDefault("redis_db", 0)
	v.SetDefault("sequence_backend", "db")
	v.SetDefault("stats_cache_ttl", "30s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	cfg := &Config{
		Port:       v.GetString("port"),
		WebOrigin:  v.GetString("web_origin"),
		AdminToken: v.GetString("admin_token"),
		Database: DatabaseConfig{
			Driver:   strings.ToLower(v.GetString("db_driver")),
			URL:      v.GetString("database_url"),
			Host:     v.GetString("db_host"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			Name:     v.GetString("db_name"),
			Port:     v.GetString("db_port"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		SequenceBackend: strings.ToLower(v.GetString("sequence_backend")),
		StatsCacheTTL:   v.GetDuration("stats_cache_ttl"),
		Logging: LoggingConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
	}

	switch cfg.SequenceBackend {
	case "db":
	case "redis":
		if !cfg.Redis.Enabled() {
			return nil, fmt.Errorf("SEQUENCE_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return nil, fmt.Errorf("unsupported SEQUENCE_BACKEND %q", cfg.SequenceBackend)
	}
	return cfg, nil
}
