package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	RedisURL       string
	AllowedOrigins []string

	// IdentityHeader carries the caller's user id, set by the upstream
	// proxy that authenticates requests. This service never derives
	// identity itself.
	IdentityHeader string

	// ReadOnly starts the process with the kill-switch engaged.
	ReadOnly bool
}

func Load() *Config {
	godotenv.Load()
	godotenv.Load("../.env")

	return &Config{
		Port: getEnv("PORT", "8080"),

		DBHost:     getEnv("DB_HOST", ""),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "patchbay"),
		DBPassword: getEnv("DB_PASSWORD", "patchbay"),
		DBName:     getEnv("DB_NAME", "patchbay"),
		DBPath:     getEnv("DB_PATH", "patchbay.db"),

		RedisURL:       getEnv("REDIS_URL", ""),
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")),

		IdentityHeader: getEnv("IDENTITY_HEADER", "X-User-ID"),

		ReadOnly: parseBool(getEnv("READ_ONLY", "false")),
	}
}

// DSN builds the postgres connection string; used only when DBHost is set,
// otherwise the embedded sqlite store at DBPath is used.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=disable TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func parseOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
