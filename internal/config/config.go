package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	defaultAppPort       = "8080"
	defaultMinOrderValue = "200"
	defaultUploadDir     = "./uploads"
	defaultBaseURL       = "http://localhost:8080"
	defaultCORSOrigin    = "http://localhost:3000"
	defaultSSEKeepAlive  = 25 * time.Second
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBURL      string

	AppPort string
	AppEnv  string

	JWTSecret string

	// InternalServiceKey lifts the rate limit for trusted callers.
	InternalServiceKey string

	// MinOrderValue is the threshold below which an order is takeaway only.
	// Shops created without their own value inherit it.
	MinOrderValue decimal.Decimal

	UploadDir  string
	BaseURL    string
	CORSOrigin string

	RedisURL     string
	RabbitMQURL  string
	SSEKeepAlive time.Duration

	// Credentials handed to collaborators outside this service.
	SMTPHost          string
	SMTPPort          string
	SMTPUser          string
	SMTPPassword      string
	VAPIDPublicKey    string
	VAPIDPrivateKey   string
	StripeSecretKey   string
	RazorpayKeyID     string
	RazorpayKeySecret string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		DBURL:      os.Getenv("DB_URL"),

		AppPort: getEnv("APP_PORT", defaultAppPort),
		AppEnv:  os.Getenv("APP_ENV"),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		InternalServiceKey: os.Getenv("INTERNAL_SERVICE_KEY"),

		MinOrderValue: getDecimal("MIN_ORDER_VALUE", defaultMinOrderValue),

		UploadDir:  getEnv("UPLOAD_DIR", defaultUploadDir),
		BaseURL:    getEnv("BASE_URL", defaultBaseURL),
		CORSOrigin: getEnv("CORS_ORIGIN", defaultCORSOrigin),

		RedisURL:     os.Getenv("REDIS_URL"),
		RabbitMQURL:  os.Getenv("RABBITMQ_URL"),
		SSEKeepAlive: getDuration("SSE_KEEPALIVE", defaultSSEKeepAlive),

		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPPort:          os.Getenv("SMTP_PORT"),
		SMTPUser:          os.Getenv("SMTP_USER"),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		VAPIDPublicKey:    os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey:   os.Getenv("VAPID_PRIVATE_KEY"),
		StripeSecretKey:   os.Getenv("STRIPE_SECRET_KEY"),
		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
	}

	if cfg.DBHost == "" && cfg.DBURL == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDecimal(key, fallback string) decimal.Decimal {
	d, err := decimal.NewFromString(getEnv(key, fallback))
	if err != nil {
		log.Printf("invalid %s, using %s", key, fallback)
		return decimal.RequireFromString(fallback)
	}
	return d
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	// bare seconds
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
