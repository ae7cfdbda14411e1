package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	JWTSecret string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	// Optional token-bucket guard on /login and /verify-otp, ahead of the
	// shared fixed-window limiter. Zero RPS turns it off.
	LoginThrottleRPS   float64
	LoginThrottleBurst int

	AllowedOrigins []string // CORS allowed origins

	InitSuperAdmin bool
	SuperAdmin     SuperAdmin
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users     string
	Articles  string
	AuditLogs string
}

// SuperAdmin is the account seeded into an empty user table.
type SuperAdmin struct {
	Username string
	Email    string
	Password string
	FullName string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:     getEnv("DYNAMO_TABLE_USERS", "users"),
			Articles:  getEnv("DYNAMO_TABLE_ARTICLES", "articles"),
			AuditLogs: getEnv("DYNAMO_TABLE_AUDIT_LOGS", "audit_logs"),
		},
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		CacheTTL:           getEnvDuration("CACHE_TTL", 5*time.Minute),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		SMTPHost:           getEnv("SMTP_HOST", "localhost"),
		SMTPPort:           getEnv("SMTP_PORT", "1025"),
		SMTPFrom:           getEnv("SMTP_FROM", "noreply@library.local"),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		LoginThrottleRPS:   getEnvFloat("LOGIN_THROTTLE_RPS", 0),
		LoginThrottleBurst: getEnvInt("LOGIN_THROTTLE_BURST", 10),
		AllowedOrigins:     strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		InitSuperAdmin:     getEnvBool("INIT_SUPER_ADMIN", true),
		SuperAdmin: SuperAdmin{
			Username: getEnv("SUPER_ADMIN_USERNAME", "admin"),
			Email:    getEnv("SUPER_ADMIN_EMAIL", "admin@library.local"),
			Password: getEnv("SUPER_ADMIN_PASSWORD", ""),
			FullName: getEnv("SUPER_ADMIN_FULL_NAME", "Library Super Admin"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "12h").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
