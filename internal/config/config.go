package config

import (
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port          string
	LogLevel      string
	DBDriver      string
	SQLitePath    string
	Postgres      DBConfig
	FamilyHeader  string
	CORSOrigins   []string
	MQTTBrokerURL string
	MQTTClientID  string
	MQTTPrefix    string
	Redis         RedisConfig
	OTLPEndpoint  string
}

type DBConfig struct {
	User     string
	Password string
	DBName   string
	Host     string
	Port     string
	SSLMode  string
}

type RedisConfig struct {
	Addr      string
	Password  string
	RateRPS   int
	RateBurst int
}

func Load() *Config {
	cfg := &Config{
		Port:       getEnv("HOUSEHOLD_SERVICE_PORT", "8000"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		SQLitePath: getEnv("SQLITE_PATH", "./home_assistant.db"),
		Postgres: DBConfig{
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:   getEnv("POSTGRES_DB", "homenavi"),
			Host:     getEnv("POSTGRES_HOST", "postgres"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		FamilyHeader:  getEnv("FAMILY_HEADER", "X-Family-Name"),
		CORSOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		MQTTBrokerURL: strings.TrimSpace(os.Getenv("MQTT_BROKER_URL")),
		MQTTClientID:  getEnv("HOUSEHOLD_MQTT_CLIENT_ID", "household-service"),
		MQTTPrefix:    getEnv("HOUSEHOLD_MQTT_TOPIC_PREFIX", "homenavi/household"),
		Redis: RedisConfig{
			Addr:      strings.TrimSpace(os.Getenv("REDIS_ADDR")),
			Password:  os.Getenv("REDIS_PASSWORD"),
			RateRPS:   parseInt(getEnv("RATE_LIMIT_RPS", "20"), 20),
			RateBurst: parseInt(getEnv("RATE_LIMIT_BURST", "40"), 40),
		},
		OTLPEndpoint: strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	slog.Info("household-service config loaded", "port", cfg.Port, "db_driver", cfg.DBDriver, "mqtt", redactURL(cfg.MQTTBrokerURL), "redis", cfg.Redis.Addr)
	return cfg
}

// redactURL hides the password of a URL with embedded credentials.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func parseInt(val string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
