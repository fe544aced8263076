package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	LogLevel  slog.Level
	AdminKey  string
	JWTSecret string
	TokenTTL  time.Duration

	// KVDriver selects the key/value backend: memory, sqlite or redis.
	KVDriver   string
	SQLitePath string
	RedisAddr  string
	RedisDB    int
	KeyPrefix  string

	// DBDriver, when set to mysql or postgres, moves orders, users and
	// products into a relational database. Empty keeps them in the kv store.
	DBDriver   string
	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	DBDSN      string

	RabbitMQURL   string
	OrderExchange string

	CORSOrigins            []string
	UploadDir              string
	SeedCatalog            bool
	StrictOrderTransitions bool
	ProductCache           bool
	ProductCacheTTL        time.Duration
	SnapshotSize           int
}

// Load reads .env when present, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "error", err)
	}

	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		LogLevel:               parseLevel(getEnv("LOG_LEVEL", "info")),
		AdminKey:               getEnvFromFile("ADMIN_KEY_FILE", "ADMIN_KEY", ""),
		JWTSecret:              getEnvFromFile("JWT_SECRET_FILE", "JWT_SECRET", ""),
		TokenTTL:               getDuration("TOKEN_TTL", 24*time.Hour),
		KVDriver:               strings.ToLower(getEnv("KV_DRIVER", "sqlite")),
		SQLitePath:             getEnv("SQLITE_PATH", "./storefront.db"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:                getInt("REDIS_DB", 0),
		KeyPrefix:              getEnv("KV_PREFIX", "storefront:"),
		DBDriver:               strings.ToLower(getEnv("DB_DRIVER", "")),
		DBUser:                 getEnv("DB_USER", "root"),
		DBPassword:             getEnvFromFile("DB_PASSWORD_FILE", "DB_PASSWORD", ""),
		DBHost:                 getEnv("DB_HOST", "localhost"),
		DBPort:                 getEnv("DB_PORT", ""),
		DBName:                 getEnv("DB_NAME", "storefront"),
		DBDSN:                  getEnv("DATABASE_URL", ""),
		RabbitMQURL:            getEnv("RABBITMQ_URL", ""),
		OrderExchange:          getEnv("ORDER_EXCHANGE", "orders.exchange"),
		CORSOrigins:            splitList(getEnv("CORS_ORIGINS", "*")),
		UploadDir:              getEnv("UPLOAD_DIR", "./uploads"),
		SeedCatalog:            getBool("SEED_CATALOG", true),
		StrictOrderTransitions: getBool("ORDER_STRICT_TRANSITIONS", false),
		ProductCache:           getBool("PRODUCT_CACHE", false),
		ProductCacheTTL:        getDuration("PRODUCT_CACHE_TTL", time.Minute),
		SnapshotSize:           getInt("CHANNEL_SNAPSHOT_SIZE", 10),
	}

	if cfg.AdminKey == "" {
		slog.Warn("ADMIN_KEY not set; every admin request will be rejected")
	}
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set; using an insecure development secret")
		cfg.JWTSecret = "dev-insecure-secret"
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("invalid PORT, falling back to default", "PORT", cfg.Port)
		cfg.Port = "8080"
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvFromFile(fileKey, envKey, defaultValue string) string {
	if filePath := os.Getenv(fileKey); filePath != "" {
		if content, err := os.ReadFile(filePath); err == nil {
			return strings.TrimSpace(string(content))
		}
		slog.Warn("could not read secret file", "variable", fileKey)
	}
	return getEnv(envKey, defaultValue)
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
