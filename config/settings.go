package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/wb-go/wbf/retry"
)

// Settings is the runtime configuration of the API and its tools.
type Settings struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	JWT      JWT      `mapstructure:"jwt"`
	CORS     CORS     `mapstructure:"cors"`
	Outbox   Outbox   `mapstructure:"outbox"`
	Monitor  Monitor  `mapstructure:"monitor"`
}

type Server struct {
	Port        string `mapstructure:"port"`
	GinMode     string `mapstructure:"gin_mode"`
	Environment string `mapstructure:"environment"`
}

func (s Server) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

type Database struct {
	Driver   string `mapstructure:"driver"` // mysql|postgres|sqlite
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"ssl_mode"`
	Path     string `mapstructure:"path"` // sqlite file
	DebugSQL bool   `mapstructure:"debug_sql"`
}

// DSN builds the connection string for the configured driver.
func (d Database) DSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	case "sqlite":
		return d.Path
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, d.Port, d.Name)
	}
}

type JWT struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

func (j JWT) TTL() time.Duration {
	return time.Duration(j.ExpireHours) * time.Hour
}

type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Outbox struct {
	Interval  time.Duration  `mapstructure:"interval"`
	BatchSize int            `mapstructure:"batch_size"`
	Retry     retry.Strategy `mapstructure:"retry"`
}

type Monitor struct {
	Token string `mapstructure:"token"`
}

var envBindings = map[string]string{
	"server.port":        "SERVER_PORT",
	"server.gin_mode":    "GIN_MODE",
	"server.environment": "ENVIRONMENT",

	"database.driver":    "DB_DRIVER",
	"database.host":      "DB_HOST",
	"database.port":      "DB_PORT",
	"database.name":      "DB_DATABASE",
	"database.user":      "DB_USERNAME",
	"database.password":  "DB_PASSWORD",
	"database.ssl_mode":  "DB_SSLMODE",
	"database.path":      "DB_PATH",
	"database.debug_sql": "DEBUG_SQL",

	"jwt.secret":       "JWT_SECRET",
	"jwt.expire_hours": "JWT_EXPIRE_HOURS",

	"cors.allowed_origins": "CORS_ALLOWED_ORIGINS",

	"outbox.interval":       "OUTBOX_INTERVAL",
	"outbox.batch_size":     "OUTBOX_BATCH_SIZE",
	"outbox.retry.attempts": "OUTBOX_MAX_ATTEMPTS",
	"outbox.retry.delay":    "OUTBOX_RETRY_DELAY",
	"outbox.retry.backoff":  "OUTBOX_BACKOFF",

	"monitor.token": "MONITOR_TOKEN",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("server.environment", "development")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.path", "job-board.db")

	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("outbox.interval", 2*time.Second)
	v.SetDefault("outbox.batch_size", 50)
	v.SetDefault("outbox.retry.attempts", 5)
	v.SetDefault("outbox.retry.delay", 5*time.Second)
	v.SetDefault("outbox.retry.backoff", 2.0)
}

// Load reads settings from the environment, optionally overlaid on a
// config.yaml found in ./config or the working directory.
func Load() (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	s.normalize()
	return &s, nil
}

func (s *Settings) normalize() {
	s.Database.Driver = strings.ToLower(strings.TrimSpace(s.Database.Driver))
	if s.Database.Driver == "postgres" && s.Database.Port == "3306" {
		s.Database.Port = "5432"
	}

	// CORS_ALLOWED_ORIGINS arrives as one comma separated string
	origins := make([]string, 0, len(s.CORS.AllowedOrigins))
	for _, raw := range s.CORS.AllowedOrigins {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}
	s.CORS.AllowedOrigins = origins

	if s.JWT.ExpireHours <= 0 {
		s.JWT.ExpireHours = 24
	}
	if s.Outbox.BatchSize <= 0 {
		s.Outbox.BatchSize = 50
	}
	if s.Outbox.Interval <= 0 {
		s.Outbox.Interval = 2 * time.Second
	}
	if s.Outbox.Retry.Attempts <= 0 {
		s.Outbox.Retry.Attempts = 5
	}
	if s.Outbox.Retry.Backoff < 1 {
		s.Outbox.Retry.Backoff = 1
	}
}
