package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Data source kinds accepted by DATA_SOURCE.
const (
	SourceFile = "file"
	SourceS3   = "s3"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataSource    string
	DataDir       string
	CasesFile     string
	CentroidsFile string

	// S3/MinIO settings, used when DataSource is "s3".
	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Region    string
	S3UseSSL    bool

	HTTPAddr           string
	CORSAllowedOrigins []string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	RefreshInterval    time.Duration

	// Result memoization.
	CacheSize     int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	// Joined record publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Mapbox geocoding for missing centroid suggestions.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "0s", true)
	if err != nil {
		return nil, err
	}
	redisTTL, err := parseDuration("REDIS_TTL", "24h", false)
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s", false)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("CACHE_SIZE", 8)
	if err != nil {
		return nil, err
	}
	mapboxCacheSize, err := parsePositiveInt("MAPBOX_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	redisDB, err := strconv.Atoi(sharedcfg.EnvOrDefault("REDIS_DB", "0"))
	if err != nil || redisDB < 0 {
		return nil, errors.New("invalid REDIS_DB")
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		DataSource:    strings.ToLower(sharedcfg.EnvOrDefault("DATA_SOURCE", SourceFile)),
		DataDir:       sharedcfg.EnvOrDefault("DATA_DIR", "data"),
		CasesFile:     sharedcfg.EnvOrDefault("CASES_FILE", "birdflu.csv"),
		CentroidsFile: sharedcfg.EnvOrDefault("CENTROIDS_FILE", "county_centroids.csv"),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Region:    sharedcfg.EnvOrDefault("S3_REGION", "us-east-1"),
		S3UseSSL:    os.Getenv("S3_USE_SSL") == "true",

		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: splitList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		RefreshInterval:    refreshInterval,

		CacheSize:     cacheSize,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		RedisTTL:      redisTTL,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "hpai-joined-cases"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: mapboxCacheSize,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DataSource {
	case SourceFile:
		if c.DataDir == "" {
			return errors.New("DATA_DIR is required")
		}
	case SourceS3:
		if c.S3Endpoint == "" || c.S3Bucket == "" {
			return errors.New("DATA_SOURCE is s3 but S3_ENDPOINT or S3_BUCKET is not set")
		}
	default:
		return fmt.Errorf("invalid DATA_SOURCE %q: want %q or %q", c.DataSource, SourceFile, SourceS3)
	}
	if c.CasesFile == "" || c.CentroidsFile == "" {
		return errors.New("CASES_FILE and CENTROIDS_FILE must not be empty")
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if c.KafkaTopic == "" {
			return errors.New("KAFKA_ENABLED is true but KAFKA_TOPIC is empty")
		}
	}
	if c.MapboxEnabled && c.MapboxToken == "" {
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	return nil
}

func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
