package config

import (
	"log"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port           string
	BaseURL        string
	DBDriver       string // sqlite, mysql or memory
	DBDSN          string
	JWTSecret      string
	CORSOrigins    []string
	PaymentDelay   time.Duration
	PasswordScheme string // plaintext or bcrypt
	UploadDir      string
	GeminiAPIKey   string
	Debug          bool
}

const devJWTSecret = "super_secret_key_for_pos_system_2025"

// Load reads the process environment. Call godotenv.Load first if a .env file
// should be honored.
func Load() *Config {
	cfg := &Config{
		Port:           getEnv("POS_PORT", "8080"),
		BaseURL:        getEnv("BASE_URL", "http://localhost:8080"),
		DBDriver:       strings.ToLower(getEnv("POS_DB_DRIVER", "sqlite")),
		DBDSN:          getEnv("DB_DSN", "pos.db"),
		JWTSecret:      getEnv("JWT_SECRET", devJWTSecret),
		CORSOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		PaymentDelay:   getDuration("POS_PAYMENT_DELAY", 1500*time.Millisecond),
		PasswordScheme: strings.ToLower(getEnv("POS_PASSWORD_SCHEME", "plaintext")),
		UploadDir:      getEnv("POS_UPLOAD_DIR", "./uploads"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		Debug:          os.Getenv("POS_DEBUG") == "true",
	}

	if cfg.JWTSecret == devJWTSecret {
		log.Println("⚠️ WARNING: JWT_SECRET not set, using the development key.")
	}
	switch cfg.DBDriver {
	case "sqlite", "mysql", "memory":
	default:
		log.Printf("⚠️ WARNING: unknown POS_DB_DRIVER %q, falling back to sqlite", cfg.DBDriver)
		cfg.DBDriver = "sqlite"
	}
	switch cfg.PasswordScheme {
	case "plaintext", "bcrypt":
	default:
		log.Printf("⚠️ WARNING: unknown POS_PASSWORD_SCHEME %q, falling back to plaintext", cfg.PasswordScheme)
		cfg.PasswordScheme = "plaintext"
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Printf("⚠️ WARNING: invalid %s %q, using %s", key, v, def)
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
