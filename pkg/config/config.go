package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port             string
	AppURL           string
	DatabaseURL      string
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	GoogleProjectID    string
	GoogleCredentials  string
	PubSubTopic        string

	FirebaseCredentials string
	RedisAddr           string
	TelegramToken       string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	ReminderInterval time.Duration
	DigestTime       string
	CORSOrigins      []string
	ShutdownTimeout  time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_URL", "http://localhost:5173")
	v.SetDefault("DATABASE_URL", "sqlite://kanban.db")
	v.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")
	v.SetDefault("JWT_REFRESH_EXPIRY", "168h") // 7 days
	v.SetDefault("GOOGLE_REDIRECT_URI", "http://localhost:8080/api/auth/google/callback")
	v.SetDefault("PUBSUB_TOPIC", "kanban-events")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("REMINDER_INTERVAL", "60s")
	v.SetDefault("DIGEST_TIME", "08:00")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SHUTDOWN_TIMEOUT", "20s")
}

// Load reads .env (if present), an optional YAML file named by KANBAN_CONFIG,
// and the process environment, in increasing order of precedence.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("KANBAN_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			log.Printf("[Config] Failed to read %s, using environment only: %v", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:                v.GetString("PORT"),
		AppURL:              strings.TrimRight(v.GetString("APP_URL"), "/"),
		DatabaseURL:         v.GetString("DATABASE_URL"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTAccessExpiry:     durationOr(v, "JWT_ACCESS_EXPIRY", 15*time.Minute),
		JWTRefreshExpiry:    durationOr(v, "JWT_REFRESH_EXPIRY", 168*time.Hour),
		GoogleClientID:      v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:   v.GetString("GOOGLE_REDIRECT_URI"),
		GoogleProjectID:     v.GetString("GOOGLE_PROJECT_ID"),
		GoogleCredentials:   v.GetString("GOOGLE_CREDENTIALS"),
		PubSubTopic:         v.GetString("PUBSUB_TOPIC"),
		FirebaseCredentials: v.GetString("FIREBASE_CREDENTIALS"),
		RedisAddr:           v.GetString("REDIS_ADDR"),
		TelegramToken:       v.GetString("TELEGRAM_TOKEN"),
		SMTPHost:            v.GetString("SMTP_HOST"),
		SMTPPort:            v.GetInt("SMTP_PORT"),
		SMTPUsername:        v.GetString("SMTP_USERNAME"),
		SMTPPassword:        v.GetString("SMTP_PASSWORD"),
		SMTPFrom:            v.GetString("SMTP_FROM"),
		ReminderInterval:    durationOr(v, "REMINDER_INTERVAL", time.Minute),
		DigestTime:          v.GetString("DIGEST_TIME"),
		CORSOrigins:         splitList(v.GetString("CORS_ORIGINS")),
		ShutdownTimeout:     durationOr(v, "SHUTDOWN_TIMEOUT", 20*time.Second),
	}
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		log.Printf("[Config] Invalid duration for %s (%q), using %s", key, raw, fallback)
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
