package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// AppEnv is the running environment (development/production).
	AppEnv string
	// DBDriver selects the backend: "mysql", "postgres" or "sqlite".
	DBDriver string
	// DBDSN is the connection string handed to the driver.
	DBDSN string
	// DBHealthInterval is how often an idle connection is pinged. Zero disables it.
	DBHealthInterval time.Duration
	// DBIdentityQuery overrides the driver's insert identity lookup when set.
	DBIdentityQuery string
	// DBVerbose logs every streamed row.
	DBVerbose bool
	// StorageType determines where to save exports: "local" or "s3".
	StorageType string
	// LocalStoragePath is the directory for local exports.
	LocalStoragePath string
	// AWSRegion is the AWS region for S3 uploads.
	AWSRegion string
	// AWSAccessKeyID and AWSSecretAccessKey are static S3 credentials.
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	// S3Bucket is the target S3 bucket name.
	S3Bucket string
	// S3Endpoint is an optional custom endpoint (for non-AWS S3 providers like MinIO).
	S3Endpoint string
	// S3PathStyle enables path-style addressing (required for some S3 providers).
	S3PathStyle bool
	// ExportFormat is the default export format: csv, json, excel or pdf.
	ExportFormat string
	// Compression gzips exports.
	Compression bool
	// ExportSnapshot runs exports in a read-only repeatable-read transaction.
	ExportSnapshot bool
	// DefaultTimeout bounds a single command.
	DefaultTimeout time.Duration
}

func Load() *Config {
	return &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		DBDriver:           getEnv("DB_DRIVER", "mysql"),
		DBDSN:              getEnv("DB_DSN", "user:password@tcp(localhost:3306)/dbname?parseTime=true"),
		DBHealthInterval:   getEnvDuration("DB_HEALTH_INTERVAL", 30*time.Second),
		DBIdentityQuery:    getEnv("DB_IDENTITY_QUERY", ""),
		DBVerbose:          getEnvBool("DB_VERBOSE", false),
		StorageType:        getEnv("STORAGE_TYPE", "local"),
		LocalStoragePath:   getEnv("LOCAL_STORAGE_PATH", "./exports"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3PathStyle:        getEnvBool("S3_PATH_STYLE", false),
		ExportFormat:       getEnv("EXPORT_FORMAT", "csv"),
		Compression:        getEnvBool("COMPRESSION", false),
		ExportSnapshot:     getEnvBool("EXPORT_SNAPSHOT", false),
		DefaultTimeout:     getEnvDuration("DEFAULT_TIMEOUT", 15*time.Minute),
	}
}

var (
	validDrivers  = []string{"mysql", "postgres", "sqlite"}
	validStorages = []string{"local", "s3"}
	validFormats  = []string{"csv", "json", "excel", "pdf"}
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if !oneOf(c.DBDriver, validDrivers) {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be one of %v, got %q", validDrivers, c.DBDriver))
	}
	if c.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN is required"))
	}
	if c.DBHealthInterval < 0 {
		errs = append(errs, errors.New("DB_HEALTH_INTERVAL must not be negative"))
	}
	if !oneOf(c.StorageType, validStorages) {
		errs = append(errs, fmt.Errorf("STORAGE_TYPE must be one of %v, got %q", validStorages, c.StorageType))
	}
	if c.StorageType == "s3" && c.S3Bucket == "" {
		errs = append(errs, errors.New("S3_BUCKET is required when STORAGE_TYPE is s3"))
	}
	if c.StorageType == "local" && c.LocalStoragePath == "" {
		errs = append(errs, errors.New("LOCAL_STORAGE_PATH is required when STORAGE_TYPE is local"))
	}
	if !oneOf(c.ExportFormat, validFormats) {
		errs = append(errs, fmt.Errorf("EXPORT_FORMAT must be one of %v, got %q", validFormats, c.ExportFormat))
	}
	if c.DefaultTimeout <= 0 {
		errs = append(errs, errors.New("DEFAULT_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}
