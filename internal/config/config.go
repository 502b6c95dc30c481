package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppPort string `yaml:"app_port"`

	DBDriver  string `yaml:"db_driver"`
	MySQLHost string `yaml:"mysql_host"`
	MySQLPort string `yaml:"mysql_port"`
	MySQLDB   string `yaml:"mysql_db"`
	MySQLUser string `yaml:"mysql_user"`
	MySQLPass string `yaml:"mysql_pass"`

	PostgresDSN string `yaml:"postgres_dsn"`
	SQLitePath  string `yaml:"sqlite_path"`

	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`

	IdempTTLSecs     int `yaml:"idempotency_ttl_seconds"`
	DashboardTTLSecs int `yaml:"dashboard_cache_ttl_seconds"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	AdvisoryAPIKey      string `yaml:"advisory_api_key"`
	AdvisoryAPIURL      string `yaml:"advisory_api_url"`
	AdvisoryModel       string `yaml:"advisory_model"`
	AdvisoryTimeoutSecs int    `yaml:"advisory_timeout_seconds"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	ReconcileSchedule string `yaml:"reconcile_schedule"`
	ReconcileRepair   bool   `yaml:"reconcile_repair"`

	SeedDemo bool `yaml:"seed_demo"`
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getenvBool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func defaults() *Config {
	return &Config{
		AppPort:   "8080",
		DBDriver:  "mysql",
		MySQLHost: "mysql",
		MySQLPort: "3306",
		MySQLDB:   "kasbon",
		MySQLUser: "kasbon",
		MySQLPass: "kasbon",

		SQLitePath: "kasbon.db",

		RedisAddr: "redis:6379",

		IdempTTLSecs:     300,
		DashboardTTLSecs: 60,

		LogLevel:  "info",
		LogFormat: "text",

		AdvisoryTimeoutSecs: 30,
		KafkaTopic:          "kasbon.loan-events",

		ReconcileSchedule: "0 */15 * * * *",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then the environment. A .env file in the working
// directory is loaded first and never overrides variables already set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	c.overrideWithEnv()
	return c, nil
}

func (c *Config) overrideWithEnv() {
	c.AppPort = getenv("APP_PORT", c.AppPort)

	c.DBDriver = strings.ToLower(getenv("DB_DRIVER", c.DBDriver))
	c.MySQLHost = getenv("MYSQL_HOST", c.MySQLHost)
	c.MySQLPort = getenv("MYSQL_PORT", c.MySQLPort)
	c.MySQLDB = getenv("MYSQL_DB", c.MySQLDB)
	c.MySQLUser = getenv("MYSQL_USER", c.MySQLUser)
	c.MySQLPass = getenv("MYSQL_PASS", c.MySQLPass)
	c.PostgresDSN = getenv("POSTGRES_DSN", c.PostgresDSN)
	c.SQLitePath = getenv("SQLITE_PATH", c.SQLitePath)

	c.RedisAddr = getenv("REDIS_ADDR", c.RedisAddr)
	c.RedisDB = getenvInt("REDIS_DB", c.RedisDB)
	c.IdempTTLSecs = getenvInt("IDEMPOTENCY_TTL_SECONDS", c.IdempTTLSecs)
	c.DashboardTTLSecs = getenvInt("DASHBOARD_CACHE_TTL_SECONDS", c.DashboardTTLSecs)

	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getenv("LOG_FORMAT", c.LogFormat)

	c.AdvisoryAPIKey = getenv("ADVISORY_API_KEY", c.AdvisoryAPIKey)
	c.AdvisoryAPIURL = getenv("ADVISORY_API_URL", c.AdvisoryAPIURL)
	c.AdvisoryModel = getenv("ADVISORY_MODEL", c.AdvisoryModel)
	c.AdvisoryTimeoutSecs = getenvInt("ADVISORY_TIMEOUT_SECONDS", c.AdvisoryTimeoutSecs)

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.KafkaBrokers = splitList(v)
	}
	c.KafkaTopic = getenv("KAFKA_TOPIC", c.KafkaTopic)

	c.ReconcileSchedule = getenv("RECONCILE_SCHEDULE", c.ReconcileSchedule)
	c.ReconcileRepair = getenvBool("RECONCILE_REPAIR", c.ReconcileRepair)
	c.SeedDemo = getenvBool("SEED_DEMO", c.SeedDemo)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if _, err := net.LookupPort("tcp", c.AppPort); err != nil {
		return fmt.Errorf("invalid APP_PORT %q: %w", c.AppPort, err)
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (mysql|postgres|sqlite)", c.DBDriver)
	}
	if c.ReconcileSchedule == "" {
		return errors.New("missing RECONCILE_SCHEDULE")
	}
	if c.IdempTTLSecs <= 0 || c.DashboardTTLSecs <= 0 || c.AdvisoryTimeoutSecs <= 0 {
		return errors.New("ttl and timeout settings must be positive")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "postgres":
		return c.PostgresDSN
	case "sqlite":
		return c.SQLitePath
	}
	return c.MySQLDSN()
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) DashboardTTL() time.Duration {
	return time.Duration(c.DashboardTTLSecs) * time.Second
}

func (c *Config) AdvisoryTimeout() time.Duration {
	return time.Duration(c.AdvisoryTimeoutSecs) * time.Second
}
