package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process level configuration.
type Server struct {
	Addr        string
	Environment string
	// SeedSampleData loads the demo entries and versions into in-memory stores.
	SeedSampleData bool

	Log      LogConfig
	Timeline TimelineConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// TimelineConfig controls grouping and paging defaults.
type TimelineConfig struct {
	Location *time.Location
	PageSize int
}

// PostgresConfig is empty-URL disabled.
type PostgresConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	Migrate      bool
}

// RedisConfig is empty-URL disabled.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DiffCacheTTL time.Duration
}

// KafkaConfig is disabled when no brokers are set.
type KafkaConfig struct {
	Brokers       []string
	AuditTopic    string
	VersionsTopic string
	GroupID       string
	CreateTopics  bool
}

// Enabled reports whether brokers are configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// IsDevelopment reports whether the process runs with development defaults.
func (s Server) IsDevelopment() bool { return s.Environment == "development" }

// FromEnv builds a Server config from environment variables so main stays
// lean. A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	loc, err := time.LoadLocation(getEnv("STATEDECK_TIMELINE_TZ", "UTC"))
	if err != nil {
		return Server{}, fmt.Errorf("STATEDECK_TIMELINE_TZ: %w", err)
	}

	pageSize, err := getInt("STATEDECK_PAGE_SIZE", 20)
	if err != nil {
		return Server{}, err
	}
	if pageSize <= 0 {
		return Server{}, fmt.Errorf("STATEDECK_PAGE_SIZE must be positive, got %d", pageSize)
	}

	diffTTL, err := getDuration("STATEDECK_DIFF_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return Server{}, err
	}

	env := getEnv("STATEDECK_ENV", "development")

	return Server{
		Addr:           getEnv("STATEDECK_ADDR", ":8080"),
		Environment:    env,
		SeedSampleData: getEnv("STATEDECK_SEED_SAMPLE_DATA", strconv.FormatBool(env == "development")) == "true",
		Log: LogConfig{
			Level:  getEnv("STATEDECK_LOG_LEVEL", "info"),
			Format: getEnv("STATEDECK_LOG_FORMAT", "json"),
		},
		Timeline: TimelineConfig{
			Location: loc,
			PageSize: pageSize,
		},
		Postgres: PostgresConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			Migrate:      getEnv("STATEDECK_DB_MIGRATE", "true") == "true",
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			DiffCacheTTL: diffTTL,
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:    getEnv("STATEDECK_AUDIT_TOPIC", "statedeck.audit"),
			VersionsTopic: getEnv("STATEDECK_VERSIONS_TOPIC", "statedeck.versions"),
			GroupID:       getEnv("STATEDECK_CONSUMER_GROUP", "statedeck"),
			CreateTopics:  getEnv("STATEDECK_CREATE_TOPICS", "false") == "true",
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
