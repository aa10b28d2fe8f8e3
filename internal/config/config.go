package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	LogFormat     string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Booking wizard
	WizardFlow        string
	WizardSessionTTL  time.Duration
	SubmitDelay       time.Duration
	AvailabilityDelay time.Duration
	CatalogCacheTTL   time.Duration

	// HTTP edge
	AdminJWTSecret     string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// Payments
	StripeSecretKey   string
	StripeSuccessURL  string
	StripeCancelURL   string
	AllowFakePayments bool

	// Email
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	OperatorEmails    []string

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	MentorImagesBucket  string
	ConfirmationsTable  string

	// Events
	EventsTransport string
	EventsQueueURL  string
	KafkaBrokers    []string
	KafkaTopic      string
	OutboxInterval  time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		WizardFlow:        strings.ToLower(strings.TrimSpace(getEnv("WIZARD_FLOW", "short"))),
		WizardSessionTTL:  getEnvAsDuration("WIZARD_SESSION_TTL", 30*time.Minute),
		SubmitDelay:       getEnvAsDuration("SUBMIT_DELAY", 1500*time.Millisecond),
		AvailabilityDelay: getEnvAsDuration("AVAILABILITY_DELAY", 800*time.Millisecond),
		CatalogCacheTTL:   getEnvAsDuration("CATALOG_CACHE_TTL", 10*time.Minute),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		StripeSecretKey:   getEnv("STRIPE_SECRET_KEY", ""),
		StripeSuccessURL:  getEnv("STRIPE_SUCCESS_URL", ""),
		StripeCancelURL:   getEnv("STRIPE_CANCEL_URL", ""),
		AllowFakePayments: getEnvAsBool("ALLOW_FAKE_PAYMENTS", false),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "contact@mentoverse.com"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Mentoverse"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", "contact@mentoverse.com"),
		OperatorEmails:    getEnvAsList("OPERATOR_EMAILS"),

		AWSRegion:           getEnv("AWS_REGION", "ap-south-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		MentorImagesBucket:  getEnv("MENTOR_IMAGES_BUCKET", ""),
		ConfirmationsTable:  getEnv("CONFIRMATIONS_TABLE", ""),

		EventsTransport: strings.ToLower(strings.TrimSpace(getEnv("EVENTS_TRANSPORT", "none"))),
		EventsQueueURL:  getEnv("EVENTS_QUEUE_URL", ""),
		KafkaBrokers:    getEnvAsList("KAFKA_BROKERS"),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "mentoverse.bookings"),
		OutboxInterval:  getEnvAsDuration("OUTBOX_INTERVAL", 2*time.Second),
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
