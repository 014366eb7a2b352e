package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
)

type Config struct {
	HTTP     HTTPConfig
	Store    StoreConfig
	DB       DBConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Telegram TelegramConfig
	Admin    AdminConfig
	Shop     ShopConfig
	Log      LogConfig
}

type HTTPConfig struct {
	Addr        string
	CORSOrigins []string
	RateRPS     float64
	RateBurst   int
}

type StoreConfig struct {
	Backend     string
	AutoMigrate bool
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MongoConfig struct {
	URI      string
	Database string
}

type TelegramConfig struct {
	Token   string
	AdminID int64 // chat that receives order notifications
}

type AdminConfig struct {
	Password     string // plaintext shared secret
	PasswordHash string // bcrypt hash, preferred when set
}

type ShopConfig struct {
	ExportPrefix  string
	CheckoutDelay time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json or console
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	adminID, _ := strconv.ParseInt(getEnv("TELEGRAM_ADMIN_ID", "0"), 10, 64)
	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_BURST: %w", err)
	}
	delay, err := time.ParseDuration(getEnv("CHECKOUT_DELAY", "3s"))
	if err != nil {
		return nil, fmt.Errorf("CHECKOUT_DELAY: %w", err)
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:        getEnv("HTTP_ADDR", ":8080"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
			RateRPS:     rps,
			RateBurst:   burst,
		},
		Store: StoreConfig{
			Backend:     strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
			AutoMigrate: parseBool(getEnv("AUTO_MIGRATE", "")),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "cafe"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "cafe"),
		},
		Telegram: TelegramConfig{
			Token:   getEnv("TELEGRAM_BOT_TOKEN", ""),
			AdminID: adminID,
		},
		Admin: AdminConfig{
			Password:     getEnv("ADMIN_PASSWORD", ""),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Shop: ShopConfig{
			ExportPrefix:  getEnv("EXPORT_PREFIX", "marauders-brew"),
			CheckoutDelay: delay,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis, BackendMongo:
	case BackendPostgres:
		if c.DB.Database == "" {
			return fmt.Errorf("DB_NAME is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Shop.CheckoutDelay < 0 {
		return fmt.Errorf("CHECKOUT_DELAY must not be negative")
	}
	if c.HTTP.RateRPS <= 0 || c.HTTP.RateBurst <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBool(v string) bool {
	v = strings.TrimSpace(v)
	return v == "1" || strings.EqualFold(v, "true")
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
