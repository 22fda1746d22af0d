package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	MySQLDSN   string
	RedisAddr  string
	RedisDB    int
	RedisPass  string

	JWTSecret         string
	AccessTokenExpiry time.Duration
	RememberMeExpiry  time.Duration
	BcryptCost        int

	Origins []string

	DefaultAdminEmail    string
	DefaultAdminPassword string
	DefaultAdminName     string

	SwaggerHost string
}

// Load builds Config from environment with sensible defaults. The signing
// secret has no default: the process refuses to start without SECRET_KEY.
func Load() *Config {
	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		MySQLDSN:   getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/users?charset=utf8mb4&parseTime=True&loc=UTC"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:    getEnvInt("REDIS_DB", 0),
		RedisPass:  os.Getenv("REDIS_PASSWORD"),

		JWTSecret:         os.Getenv("SECRET_KEY"),
		AccessTokenExpiry: time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		RememberMeExpiry:  time.Duration(getEnvInt("REMEMBER_ME_EXPIRE_DAYS", 30)) * 24 * time.Hour,
		BcryptCost:        getEnvInt("BCRYPT_COST", 12),

		Origins: splitCSV(getEnv("ORIGINS", "localhost")),

		DefaultAdminEmail:    getEnv("DEFAULT_ADMIN_EMAIL", "admin@example.com"),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin"),
		DefaultAdminName:     getEnv("DEFAULT_ADMIN_NAME", "Administrator"),

		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("SECRET_KEY is required")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
