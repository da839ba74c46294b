package config

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// New reads the configuration from the environment. A .env file in the working directory is
// loaded first if present, variables already set in the environment take precedence.
func New() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env file: %v", err)
	}

	return Config{
		Hostname:      requireEnv("HOSTNAME"),
		ListenAddress: getEnv("LISTEN_ADDRESS", ":8080"),
		SameSiteMode:  requireEnvAsSameSiteMode("SAME_SITE_MODE"),
		CookieSecure:  getEnvAsBool("COOKIE_SECURE", true),
		LogPretty:     getEnvAsBool("LOG_PRETTY", false),
		Postgresql: Postgresql{
			Host:         requireEnv("DATABASE_HOST"),
			Port:         requireEnvAsInt("DATABASE_PORT"),
			Username:     requireEnv("DATABASE_USERNAME"),
			Password:     requireEnv("DATABASE_PASSWORD"),
			DatabaseName: requireEnv("DATABASE_NAME"),
		},
		Redis: Redis{
			Host:     requireEnv("REDIS_HOST"),
			Port:     requireEnvAsInt("REDIS_PORT"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Session: Session{
			Secret: requireEnv("SESSION_SECRET"),
			TTL:    time.Duration(getEnvAsInt("SESSION_TTL_SECONDS", 1209600)) * time.Second,
		},
		Admin: Admin{
			Username: requireEnv("ADMIN_USERNAME"),
			Password: requireEnv("ADMIN_PASSWORD"),
		},
		SMTP: SMTP{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "Eventos <no-reply@eventos.local>"),
		},
		JaegerEndpoint: getEnv("JAEGER_ENDPOINT", ""),
	}
}

type Config struct {
	Hostname       string
	ListenAddress  string
	SameSiteMode   http.SameSite
	CookieSecure   bool
	LogPretty      bool
	Postgresql     Postgresql
	Redis          Redis
	Session        Session
	Admin          Admin
	SMTP           SMTP
	JaegerEndpoint string
}

type Postgresql struct {
	Host         string
	Port         int
	Username     string
	Password     string
	DatabaseName string
}

type Redis struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type Session struct {
	Secret string
	TTL    time.Duration
}

type Admin struct {
	Username string
	Password string
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether mails should be sent.
func (s SMTP) Enabled() bool {
	return s.Host != ""
}

func requireEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("Can't find environment variable: %s\n", key)
	}
	return value
}

func requireEnvAsInt(key string) int {
	valueStr := requireEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("Can't parse value as integer: %s", err.Error())
	}
	return value
}

func requireEnvAsSameSiteMode(key string) http.SameSite {
	mode, err := parseSameSiteMode(requireEnv(key))
	if err != nil {
		log.Fatal(err)
	}
	return mode
}

func parseSameSiteMode(value string) (http.SameSite, error) {
	switch strings.ToLower(value) {
	case "strict":
		return http.SameSiteStrictMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	}
	return 0, fmt.Errorf("failed to parse same site mode %q, expected one of strict, lax or none", value)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Can't parse value of %s as integer: %s", key, err.Error())
	}
	return i
}

func getEnvAsBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Fatalf("Can't parse value of %s as boolean: %s", key, err.Error())
	}
	return b
}
