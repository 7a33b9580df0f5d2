package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Pulse    PulseConfig
	Notify   NotifyConfig
	AWS      AWSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
	// PublicBaseURL is the externally reachable URL used to build the
	// one-tap response links embedded in invites.
	PublicBaseURL string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/pulse?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT validation settings. Tokens are minted by the
// identity service; the engine only validates them.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// PulseConfig holds the survey engine's tunables.
type PulseConfig struct {
	// InviteTTLDays is how long a token stays answerable after send.
	InviteTTLDays int
	// DefaultCohortCount is used when a schedule does not set one.
	DefaultCohortCount int
	// DefaultThreshold is the anonymity k used when a tenant has none configured.
	DefaultThreshold int
	// TickSeconds is the scheduler driver interval.
	TickSeconds int
	// DispatchWorkers bounds concurrent invite issuance within one cohort.
	DispatchWorkers int
}

// NotifyConfig holds delivery collaborator settings. The engine enqueues
// send requests; the worker forwards them to WebhookURL and the
// collaborator owns delivery and retries from there.
type NotifyConfig struct {
	WebhookURL     string
	TimeoutSeconds int
}

// AWSConfig holds AWS credentials and the exports bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	ExportsBucket        string
	PresignExpireMinutes int
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", "postgres://localhost:5432/pulse?sslmode=disable"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "pulse"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		Pulse: PulseConfig{
			InviteTTLDays:      getEnvInt("PULSE_INVITE_TTL_DAYS", 7),
			DefaultCohortCount: getEnvInt("PULSE_DEFAULT_COHORT_COUNT", 5),
			DefaultThreshold:   getEnvInt("PULSE_DEFAULT_THRESHOLD", 5),
			TickSeconds:        getEnvInt("PULSE_TICK_SECONDS", 60),
			DispatchWorkers:    getEnvInt("PULSE_DISPATCH_WORKERS", 8),
		},
		Notify: NotifyConfig{
			WebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
			TimeoutSeconds: getEnvInt("NOTIFY_TIMEOUT_SEC", 10),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", ""),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			ExportsBucket:        getEnv("AWS_S3_EXPORTS_BUCKET", "pulse-exports-bucket"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
	}
	if cfg.Pulse.InviteTTLDays <= 0 {
		cfg.Pulse.InviteTTLDays = 7
	}
	if cfg.Pulse.DispatchWorkers <= 0 {
		cfg.Pulse.DispatchWorkers = 1
	}
	return cfg, nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
