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

	DynamoTables DynamoTables
	S3BucketName string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SNSRegion         string
	SNSEventsTopicARN string // empty disables the realtime event mirror

	// AdminAccessKey gates the administrative verification endpoints.
	// When empty, admin login is disabled entirely.
	AdminAccessKey string

	OTPTTL         time.Duration
	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Challenges    string
	Investments   string
	Transactions  string
	BankDetails   string
	AdminSettings string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "ap-south-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Challenges:    getEnv("DYNAMO_TABLE_CHALLENGES", "otps"),
			Investments:   getEnv("DYNAMO_TABLE_INVESTMENTS", "investments"),
			Transactions:  getEnv("DYNAMO_TABLE_TRANSACTIONS", "transactions"),
			BankDetails:   getEnv("DYNAMO_TABLE_BANK_DETAILS", "bank_details"),
			AdminSettings: getEnv("DYNAMO_TABLE_ADMIN_SETTINGS", "admin_settings"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "empower-receipts"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,

		SNSRegion:         getEnv("SNS_REGION", "ap-south-1"),
		SNSEventsTopicARN: getEnv("SNS_EVENTS_TOPIC_ARN", ""),

		AdminAccessKey: getEnv("ADMIN_ACCESS_KEY", ""),

		OTPTTL:         time.Duration(getEnvInt("OTP_TTL_MINUTES", 5)) * time.Minute,
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
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
