package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint string

	// DocumentStore selects the persistence adapter: gorm, mongo, dynamodb
	// or memory.
	DocumentStore string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	// DBAutoMigrate lets non-postgres dialects create tables through gorm.
	// Postgres always runs the embedded SQL migrations.
	DBAutoMigrate bool

	Mongo     MongoConfig
	Dynamo    DynamoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig

	SchemaPath   string
	CallerHeader string
}

type MongoConfig struct {
	URI      string
	Database string
}

type DynamoConfig struct {
	TablePrefix string
	Endpoint    string
	Region      string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

type RateLimitConfig struct {
	QueryRate  int
	QueryBurst int
}

const (
	StoreGorm   = "gorm"
	StoreMongo  = "mongo"
	StoreDynamo = "dynamodb"
	StoreMemory = "memory"
)

const DefaultCallerHeader = "X-User-Id"

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:       getenv("APP_SERVICE", "placements"),
		AppVersion:    getenv("APP_VERSION", "0.1.0"),
		Environment:   getenv("ENVIRONMENT", "development"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint:  getenv("OTLP_ENDPOINT", "localhost:4317"),
		DocumentStore: normalizeStore(getenv("DOCUMENT_STORE", StoreGorm)),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "placements"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 10),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 50),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),
		DBAutoMigrate:     getenvBool("DATABASE_AUTO_MIGRATE", true),

		Mongo: MongoConfig{
			URI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getenv("MONGO_DATABASE", "placements"),
		},
		Dynamo: DynamoConfig{
			TablePrefix: getenv("DYNAMODB_TABLE_PREFIX", "placements_"),
			Endpoint:    strings.TrimSpace(getenv("DYNAMODB_ENDPOINT", "")),
			Region:      getenv("AWS_REGION", "eu-west-2"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			QueryRate:  getenvInt("QUERY_RATE_LIMIT", 20),
			QueryBurst: getenvInt("QUERY_RATE_BURST", 40),
		},

		SchemaPath:   strings.TrimSpace(getenv("SCHEMA_PATH", "")),
		CallerHeader: getenv("CALLER_HEADER", DefaultCallerHeader),
	}

	return cfg
}

func normalizeStore(raw string) string {
	switch value := strings.ToLower(strings.TrimSpace(raw)); value {
	case StoreMongo, StoreDynamo, StoreMemory:
		return value
	case "dynamo":
		return StoreDynamo
	default:
		return StoreGorm
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
