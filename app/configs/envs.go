package configs

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type ENV struct {
	AppEnv   string
	AppPort  string
	LogLevel string

	DBDriver   string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	AppAuthKey string
	AppEncKey  string
	CSRFKey    string

	PaymentProvider   string
	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string
	MidtransServerKey string
	MidtransClientKey string

	TemplateDir string
	StaticDir   string
}

func (e ENV) IsProduction() bool {
	return strings.EqualFold(e.AppEnv, "production")
}

// LoadEnv reads .env when present and falls back to the process environment.
func LoadEnv() (ENV, error) {
	loadErr := godotenv.Load(".env")
	if loadErr != nil && !os.IsNotExist(loadErr) {
		return ENV{}, loadErr
	}

	return ENV{
		AppEnv:   getEnv("APP_ENV", "development"),
		AppPort:  getEnv("APP_PORT", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "kidstore"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		AppAuthKey: getEnv("APP_AUTH_KEY", ""),
		AppEncKey:  getEnv("APP_ENC_KEY", ""),
		CSRFKey:    getEnv("CSRF_KEY", ""),

		PaymentProvider:   strings.ToLower(getEnv("PAYMENT_PROVIDER", "razorpay")),
		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayBaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		MidtransServerKey: getEnv("MIDTRANS_SERVER_KEY", ""),
		MidtransClientKey: getEnv("MIDTRANS_CLIENT_KEY", ""),

		TemplateDir: getEnv("TEMPLATE_DIR", "templates"),
		StaticDir:   getEnv("STATIC_DIR", "assets"),
	}, nil
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
