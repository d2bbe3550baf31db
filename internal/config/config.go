// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret         string // secret used to sign admin tokens
	AdminPasswordHash string // bcrypt hash of the admin panel password
	AdminTokenTTLMin  int    // admin token time-to-live in minutes

	AllowedOrigins []string // CORS allow-list for the public widget

	YooKassaShopID    string // shop identifier issued by the payment provider
	YooKassaSecretKey string // API secret for the payment provider
	YooKassaAPIURL    string // override of the provider base URL (tests only)
}

// Load reads configuration values from environment variables.
func Load() Config {
	return Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		JWTSecret:         must("JWT_SECRET"),
		AdminPasswordHash: must("ADMIN_PASSWORD_HASH"),
		AdminTokenTTLMin:  envInt("ADMIN_TOKEN_TTL_MIN", 60),
		AllowedOrigins:    splitList(envStr("ALLOWED_ORIGINS", "http://localhost:3000")),
		YooKassaShopID:    must("YOOKASSA_SHOP_ID"),
		YooKassaSecretKey: must("YOOKASSA_SECRET_KEY"),
		YooKassaAPIURL:    os.Getenv("YOOKASSA_API_URL"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}
