package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-stockroom/pkg/database"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
)

type Config struct {
	Server       ServerConfig
	Logger       LoggerConfig
	Database     DatabaseConfig
	Session      SessionConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	SMTP         SMTPConfig
	Notification NotificationConfig
}

type ServerConfig struct {
	AppEnv   string
	HTTPPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

// DatabaseConfig selects the SQL backend. Driver is "pgx" for PostgreSQL or
// "sqlite3" for a local file database.
type DatabaseConfig struct {
	Driver          string
	SQLitePath      string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type SessionConfig struct {
	SecretKey  string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
	GroupID string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type NotificationConfig struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			HTTPPort: getEnv("HTTP_PORT", ":8080"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "pgx"),
			SQLitePath:      getEnv("SQLITE_PATH", "stockroom.db"),
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "stockroom"),
			Password:        getEnv("POSTGRES_PASSWORD", "stockroom"),
			DBName:          getEnv("POSTGRES_DB", "stockroom"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Session: SessionConfig{
			SecretKey:  getEnv("SESSION_SECRET_KEY", "your-secret-key-change-this-in-prod"),
			CookieName: getEnv("SESSION_COOKIE_NAME", "session"),
			TTL:        time.Duration(getEnvInt("SESSION_TTL_MINUTES", 720)) * time.Minute,
			Secure:     getEnvBool("SESSION_COOKIE_SECURE", false),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_SETTINGS_TTL_SECONDS", 60)) * time.Second,
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC_MOVEMENTS", "stock.movements"),
			GroupID: getEnv("KAFKA_GROUP_STOCKROOM", "stockroom"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Notification: NotificationConfig{
			Workers:     getEnvInt("NOTIFY_WORKERS", 2),
			QueueSize:   getEnvInt("NOTIFY_QUEUE_SIZE", 100),
			SendTimeout: time.Duration(getEnvInt("NOTIFY_SEND_TIMEOUT_SECONDS", 15)) * time.Second,
		},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "dev" || c.Server.AppEnv == "development"
}

// ZapConfig maps the logger section. Production always logs JSON.
func (c *Config) ZapConfig() *logger.ZapLoggerConfig {
	lc := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             c.Logger.Level,
		DisableCaller:     c.Logger.DisableCaller,
		DisableStacktrace: c.Logger.DisableStacktrace,
	}
	if c.IsDevelopment() {
		lc.IsDevelopment = true
		lc.Encoding = c.Logger.Encoding
	}
	return lc
}

func (c *Config) DatabaseConfig() *database.Config {
	return &database.Config{
		Driver:          c.Database.Driver,
		SQLitePath:      c.Database.SQLitePath,
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		User:            c.Database.User,
		Password:        c.Database.Password,
		DBName:          c.Database.DBName,
		SSLMode:         c.Database.SSLMode,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(c.Database.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(c.Database.ConnMaxIdleTime) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return fallback
}
