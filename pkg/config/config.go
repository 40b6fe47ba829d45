package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	LogLevel                string
	JWTSecret               string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string
	RedisAddr               string
	// WSSendBacklog pushes the stored notification backlog to a client right
	// after it registers. Off by default: reconnecting clients re-pull over
	// REST instead.
	WSSendBacklog bool
	// ReaperInterval is a cron spec for the read-notification expiry sweep.
	ReaperInterval string
}

// Load reads the .env file, if any, and snapshots the environment into a
// Config. A missing .env file means the environment is supplied directly.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "ripple"),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		WSSendBacklog:           getEnv("WS_SEND_BACKLOG", "") == "true",
		ReaperInterval:          getEnv("REAPER_INTERVAL", "@every 10m"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
