package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	QR       QRConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr    string
	Enabled bool
	LockTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	TicketBooked    string
	TicketCancelled string
	TicketCheckedIn string
}

type AuthConfig struct {
	// Mode selects token verification: "hmac" (shared secret) or "oidc".
	Mode       string
	JWTSecret  string
	OIDCIssuer string
}

type QRConfig struct {
	Secret string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "ticketly"),
			Password:     getEnv("DB_PASSWORD", "ticketly"),
			Database:     getEnv("DB_NAME", "ticketly"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:    getEnv("REDIS_ADDR", "localhost:6379"),
			Enabled: getEnvBool("REDIS_ENABLED", true),
			LockTTL: time.Duration(getEnvInt("BOOKING_LOCK_TTL_SECONDS", 10)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Topics: TopicConfig{
				TicketBooked:    getEnv("KAFKA_TOPIC_BOOKED", "ticket-booked"),
				TicketCancelled: getEnv("KAFKA_TOPIC_CANCELLED", "ticket-cancelled"),
				TicketCheckedIn: getEnv("KAFKA_TOPIC_CHECKED_IN", "ticket-checked-in"),
			},
		},
		Auth: AuthConfig{
			Mode:       getEnv("AUTH_MODE", "hmac"),
			JWTSecret:  getEnv("AUTH_JWT_SECRET", ""),
			OIDCIssuer: getEnv("OIDC_ISSUER", ""),
		},
		QR: QRConfig{
			Secret: getEnv("QR_SECRET_KEY", ""),
		},
	}
}

// DSN builds a lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return "host=" + d.Host + " port=" + d.Port + " user=" + d.Username +
		" password=" + d.Password + " dbname=" + d.Database + " sslmode=" + d.SSLMode
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
