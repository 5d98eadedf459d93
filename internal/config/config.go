package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	StoreDriver string
	MongoURI    string
	DBName      string
	DatabaseURL string

	RequestTimeout time.Duration
	StoreTimeout   time.Duration
	ReadyInterval  time.Duration

	JWTAccessSecret []byte
	AccessTTL       time.Duration

	CORSOrigins  []string
	CSRF         bool
	CookieSecure bool

	Site  Site
	SMTP  SMTP
	Mail  MailQueue
	Kafka Kafka
	ES    Elastic
	MinIO MinIO
	Redis Redis
}

type Site struct {
	Name        string
	Description string
	FrontendURL string
}

type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type MailQueue struct {
	Size    int
	Workers int
}

type Kafka struct {
	Brokers []string
}

type Elastic struct {
	URL      string
	User     string
	Password string
	Index    string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type MinIO struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "droneshop"),
		ServerPort:  EnvIntDefault("PORT", EnvIntDefault("SERVER_PORT", 5000)),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		StoreDriver: EnvDefault("STORE_DRIVER", "mongo"),
		MongoURI:    os.Getenv("MONGODB_URI"),
		DBName:      EnvDefault("DB_NAME", "droneDB"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RequestTimeout: EnvDurationDefault("REQUEST_TIMEOUT", 15*time.Second),
		StoreTimeout:   EnvDurationDefault("STORE_TIMEOUT", 10*time.Second),
		ReadyInterval:  EnvDurationDefault("READY_INTERVAL", 5*time.Second),

		JWTAccessSecret: []byte(os.Getenv("JWT_SECRET")),
		AccessTTL:       EnvDurationDefault("ACCESS_TTL", 24*time.Hour),

		CORSOrigins:  CSV(os.Getenv("CORS_ORIGINS")),
		CSRF:         EnvBoolDefault("CSRF_ENABLED", true),
		CookieSecure: EnvBoolDefault("COOKIE_SECURE", false),

		Site: Site{
			Name:        EnvDefault("SITE_NAME", "Drone"),
			Description: EnvDefault("SITE_DESCRIPTION", "Your trusted destination for drones, cameras, and aerial solutions."),
			FrontendURL: strings.TrimRight(EnvDefault("FRONTEND_URL", "http://localhost:3000"), "/"),
		},
		SMTP: SMTP{
			Host:     EnvDefault("SMTP_HOST", "smtp.gmail.com"),
			Port:     EnvIntDefault("SMTP_PORT", 587),
			User:     firstEnv("SMTP_USER", "GMAIL_USER"),
			Password: firstEnv("SMTP_PASS", "GMAIL_APP_PASSWORD"),
			From:     os.Getenv("EMAIL_FROM"),
		},
		Mail: MailQueue{
			Size:    EnvIntDefault("MAIL_QUEUE_SIZE", 256),
			Workers: EnvIntDefault("MAIL_WORKERS", 2),
		},
		Kafka: Kafka{
			Brokers: CSV(os.Getenv("KAFKA_BROKERS")),
		},
		ES: Elastic{
			URL:      os.Getenv("ES_URL"),
			User:     os.Getenv("ES_USER"),
			Password: os.Getenv("ES_PASSWORD"),
			Index:    EnvDefault("ES_INDEX", "products"),
		},
		MinIO: MinIO{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    EnvDefault("MINIO_BUCKET", "uploads"),
			UseSSL:    EnvBoolDefault("MINIO_USE_SSL", false),
			PublicURL: strings.TrimRight(os.Getenv("MINIO_PUBLIC_URL"), "/"),
		},
		Redis: Redis{
			Addr:     os.Getenv("REDIS_HOST"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       EnvIntDefault("REDIS_DB", 0),
			TTL:      EnvDurationDefault("CACHE_TTL", time.Minute),
		},
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// EnvDurationDefault accepts Go durations ("15s") and bare seconds ("15").
func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
