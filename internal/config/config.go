package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreBackendDynamoDB = "dynamodb"
	StoreBackendPostgres = "postgres"
)

type Config struct {
	ServiceName  string
	ServerPort   string
	LogLevel     string
	MaxUploadMB  int
	StoreBackend string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	AWSRegion           string
	CognitoUserPoolID   string
	CognitoClientID     string
	CognitoClientSecret string // optional, enables SECRET_HASH
	BedrockModelID      string
	ViolationsTable     string
	OwnersTable         string
	EvidenceBucket      string // empty disables evidence archiving
	S3Endpoint          string // for MinIO / localstack
	S3AccessKeyID       string // static keys for S3Endpoint, optional
	S3SecretAccessKey   string
	ReportEventsQueue   string // empty disables report events

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	JWTSecret          string
	JWTExpirationHours time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := &Config{
		ServiceName:  getEnv("SERVICE_NAME", "traffic-violation-reporter"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		MaxUploadMB:  getEnvAsInt("MAX_UPLOAD_MB", 10),
		StoreBackend: getEnv("STORE_BACKEND", StoreBackendDynamoDB),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvAsInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "traffic_violations"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		CognitoUserPoolID:   getEnv("COGNITO_USER_POOL_ID", ""),
		CognitoClientID:     getEnv("COGNITO_CLIENT_ID", ""),
		CognitoClientSecret: getEnv("COGNITO_CLIENT_SECRET", ""),
		BedrockModelID:      getEnv("BEDROCK_MODEL_ID", "meta.llama3-70b-instruct-v1:0"),
		ViolationsTable:     getEnv("VIOLATIONS_TABLE", "ViolationRecords"),
		OwnersTable:         getEnv("OWNERS_TABLE", "VehicleOwners"),
		EvidenceBucket:      getEnv("EVIDENCE_BUCKET", ""),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:       getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:   getEnv("S3_SECRET_ACCESS_KEY", ""),
		ReportEventsQueue:   getEnv("REPORT_EVENTS_QUEUE_URL", ""),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 465),
		SMTPUser:     getEnv("GMAIL_USER", ""),
		SMTPPassword: getEnv("GMAIL_PASS", ""),

		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTExpirationHours: time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
	}

	if cfg.CognitoUserPoolID == "" || cfg.CognitoClientID == "" {
		return nil, fmt.Errorf("config: COGNITO_USER_POOL_ID and COGNITO_CLIENT_ID are required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	switch cfg.StoreBackend {
	case StoreBackendDynamoDB, StoreBackendPostgres:
	default:
		return nil, fmt.Errorf("config: unsupported STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("config: MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	return cfg, nil
}

// MaxUploadBytes is the upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// PostgresDSN builds the key/value connection string for the pgx stdlib driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return value
}
