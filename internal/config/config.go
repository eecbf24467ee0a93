package config

import (
	"math"
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ExtractionConfig points at the external document extraction service.
// TimeoutSec of 0 keeps the HTTP client default (no timeout).
type ExtractionConfig struct {
	URL        string
	DataPath   string
	TimeoutSec int
}

// IngestionConfig controls upload validation and object layout.
type IngestionConfig struct {
	AcceptedContentType string
	UploadPrefix        string
	RecordPrefix        string
	MaxUploadBytes      int64
	MaxRequestBytes     int64
	PersistRecords      bool
	DeriveRatios        bool
}

// bodyLimitHeadroom covers multipart framing and form fields around the file.
const bodyLimitHeadroom = 1 << 20

// BodyLimit is the HTTP request body ceiling. Unless MaxRequestBytes sets it
// explicitly it is twice MaxUploadBytes plus headroom, so files over the upload
// limit still reach validation. A zero MaxUploadBytes means no limit.
func (c IngestionConfig) BodyLimit() int {
	if c.MaxRequestBytes > 0 {
		return int(c.MaxRequestBytes)
	}
	if c.MaxUploadBytes <= 0 {
		return math.MaxInt
	}
	return int(2*c.MaxUploadBytes + bodyLimitHeadroom)
}

// AuditConfig controls the best-effort audit writer.
type AuditConfig struct {
	WriteTimeoutSec int
	DefaultPageSize int
	MaxPageSize     int
}

// KafkaConfig enables the processed-invoice event stream when Brokers is not empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// LogConfig selects slog level and handler format.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost    string
	Port       string
	TimeZone   string
	Database   DatabaseConfig
	MinIO      MinIOConfig
	Extraction ExtractionConfig
	Ingestion  IngestionConfig
	Audit      AuditConfig
	Kafka      KafkaConfig
	Log        LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		TimeZone: getEnv("TZ", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Extraction: ExtractionConfig{
			URL:        getEnv("EXTRACTION_URL", ""),
			DataPath:   getEnv("EXTRACTION_DATA_PATH", "$.extracted_data"),
			TimeoutSec: getEnvInt("EXTRACTION_TIMEOUT_SEC", 0),
		},
		Ingestion: IngestionConfig{
			AcceptedContentType: getEnv("ACCEPTED_CONTENT_TYPE", "application/pdf"),
			UploadPrefix:        getEnv("UPLOAD_PREFIX", "invoices/"),
			RecordPrefix:        getEnv("RECORD_PREFIX", "records/"),
			MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_BYTES", 20<<20)),
			MaxRequestBytes:     int64(getEnvInt("MAX_REQUEST_BYTES", 0)),
			PersistRecords:      getEnvBool("PERSIST_RECORDS", true),
			DeriveRatios:        getEnvBool("DERIVE_RATIOS", false),
		},
		Audit: AuditConfig{
			WriteTimeoutSec: getEnvInt("AUDIT_WRITE_TIMEOUT_SEC", 5),
			DefaultPageSize: getEnvInt("AUDIT_PAGE_SIZE", 100),
			MaxPageSize:     getEnvInt("AUDIT_MAX_PAGE_SIZE", 1000),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "invoice.processed"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvList splits a comma-separated variable, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
