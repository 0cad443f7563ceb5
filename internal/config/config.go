package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Expiry of the single session token issued by the Google login path.
	SessionTokenExpiry time.Duration

	BaseURL   string
	ClientURL string

	Google OAuthConfig
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	accessExpiry, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"))
	if err != nil {
		refreshExpiry = 168 * time.Hour
	}

	sessionExpiry, err := time.ParseDuration(getEnv("SESSION_TOKEN_EXPIRY", "168h"))
	if err != nil {
		sessionExpiry = 168 * time.Hour
	}

	baseURL := getEnv("BASE_URL", "http://localhost:8080")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTAccessSecret:  getEnvOrPanic("JWT_ACCESS_SECRET"),
		JWTRefreshSecret: getEnvOrPanic("JWT_REFRESH_SECRET"),
		JWTAccessExpiry:  accessExpiry,
		JWTRefreshExpiry: refreshExpiry,

		SessionTokenExpiry: sessionExpiry,

		BaseURL:   baseURL,
		ClientURL: getEnv("CLIENT_URL", "http://localhost:3000"),

		Google: OAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", baseURL+"/auth/google/callback"),
		},
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
