package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	StorageDriver string // postgres | memory
	DatabaseURL   string
	RedisURL      string
	RedisPassword string
	RedisDB       int
	LogLevel      string
	CORSOrigins   []string

	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	ResetTokenTTL    time.Duration

	RateLimitPerMinute   int
	ReplyOwnershipPolicy string
	MaxPostLength        int

	MediaDriver string // s3 | local
	S3          struct {
		Bucket        string
		Region        string
		Endpoint      string
		AccessKey     string
		SecretKey     string
		PublicBaseURL string
	}
	LocalMedia struct {
		Path    string
		BaseURL string
	}
}

func Load() *Config {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "postgres")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		JWTAccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTokenTTL:   getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL:  getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		ResetTokenTTL:    getDuration("RESET_TOKEN_TTL", 5*time.Minute),

		RateLimitPerMinute:   getInt("RATE_LIMIT_PER_MINUTE", 30),
		ReplyOwnershipPolicy: getEnv("REPLY_OWNERSHIP_POLICY", "reply_author"),
		MaxPostLength:        getInt("MAX_POST_LENGTH", 500),

		MediaDriver: strings.ToLower(getEnv("MEDIA_DRIVER", "local")),
	}

	cfg.S3.Bucket = os.Getenv("S3_BUCKET")
	cfg.S3.Region = getEnv("S3_REGION", "us-east-1")
	cfg.S3.Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3.AccessKey = os.Getenv("S3_ACCESS_KEY")
	cfg.S3.SecretKey = os.Getenv("S3_SECRET_KEY")
	cfg.S3.PublicBaseURL = os.Getenv("S3_PUBLIC_BASE_URL")

	cfg.LocalMedia.Path = getEnv("LOCAL_MEDIA_PATH", "./uploads")
	cfg.LocalMedia.BaseURL = getEnv("LOCAL_MEDIA_BASE_URL", "/media")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
