package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	OCR      OCRConfig      `yaml:"ocr"`
	Workers  WorkerConfig   `yaml:"workers"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
}

// OCRConfig holds Document AI / poppler configuration
type OCRConfig struct {
	Pdftotext          string        `yaml:"pdftotext"`
	DocAIProjectID     string        `yaml:"docai_project_id"`
	DocAILocation      string        `yaml:"docai_location"`
	DocAIProcessorID   string        `yaml:"docai_processor_id"`
	ExtractionTimeout  time.Duration `yaml:"extraction_timeout"`
	RowGroupTolerance  float64       `yaml:"row_group_tolerance"`
}

// WorkerConfig holds processing queue configuration
type WorkerConfig struct {
	Workers   int           `yaml:"workers"`
	QueueSize int           `yaml:"queue_size"`
	Timeout   time.Duration `yaml:"timeout"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		OCR: OCRConfig{
			Pdftotext:         getEnv("PDFTOTEXT_BIN", "pdftotext"),
			DocAIProjectID:    getEnv("DOCAI_PROJECT_ID", ""),
			DocAILocation:     getEnv("DOCAI_LOCATION", "us"),
			DocAIProcessorID:  getEnv("DOCAI_PROCESSOR_ID", ""),
			ExtractionTimeout: getEnvAsDuration("EXTRACTION_TIMEOUT", 2*time.Minute),
			RowGroupTolerance: 10,
		},
		Workers: WorkerConfig{
			Workers:   getEnvAsInt("WORKERS", 4),
			QueueSize: getEnvAsInt("QUEUE_SIZE", 256),
			Timeout:   getEnvAsDuration("JOB_TIMEOUT", 3*time.Minute),
		},
	}
}

// LoadConfigFile overlays values from a YAML file onto cfg. Fields absent
// from the file keep their current values.
func LoadConfigFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration for the daemon.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	return nil
}

// HasDocAI reports whether the Document AI backend is configured. Without
// it the daemon still runs; scanned invoices fail extraction instead of
// falling back to OCR.
func (c *Config) HasDocAI() bool {
	return c.OCR.DocAIProjectID != "" && c.OCR.DocAIProcessorID != ""
}
