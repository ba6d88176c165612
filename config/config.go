package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server      ServerConfig
	Logger      LoggerConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Elastic     ElasticsearchConfig
	Reservation ReservationConfig
}

type ServerConfig struct {
	AppEnv string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers       []string
	ReceiptsTopic string
	GroupID       string
	NotifyTopic   string
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
}

// ReservationConfig carries the business-level timeouts and the outbox
// drain policy. Hold windows are minutes; pickup windows are days.
type ReservationConfig struct {
	HoldMinutes        int
	ActiveDays         int
	ExpirySweepSeconds int
	OutboxDrainLimit   int
	OutboxMaxAttempts  int
	SummaryCacheTTLSec int
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv: getEnv("APP_ENV", "dev"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "bookstock"),
			Password:        getEnv("POSTGRES_PASSWORD", "bookstock"),
			DBName:          getEnv("POSTGRES_DB", "bookstock_inventory"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			ReceiptsTopic: getEnv("KAFKA_TOPIC_RECEIPTS", "stock.receipts"),
			GroupID:       getEnv("KAFKA_GROUP_INVENTORY", "inventory"),
			NotifyTopic:   getEnv("KAFKA_TOPIC_NOTIFY", "notify.whatsapp"),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Reservation: ReservationConfig{
			HoldMinutes:        getEnvInt("RESERVATION_HOLD_MINUTES", 120),
			ActiveDays:         getEnvInt("RESERVATION_ACTIVE_DAYS", 14),
			ExpirySweepSeconds: getEnvInt("RESERVATION_EXPIRY_SWEEP_SECONDS", 60),
			OutboxDrainLimit:   getEnvInt("OUTBOX_DRAIN_LIMIT", 50),
			OutboxMaxAttempts:  getEnvInt("OUTBOX_MAX_ATTEMPTS", 2),
			SummaryCacheTTLSec: getEnvInt("INVENTORY_SUMMARY_CACHE_TTL_SECONDS", 5),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
