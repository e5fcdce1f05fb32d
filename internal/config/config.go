package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server configuration
	Port int    `json:"port"`
	Host string `json:"host"`

	// Database configuration
	DBDriver   string `json:"db_driver"`
	DBPath     string `json:"db_path"`
	DBHost     string `json:"db_host"`
	DBPort     string `json:"db_port"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBName     string `json:"db_name"`
	DBSSLMode  string `json:"db_sslmode"`

	// Mail configuration
	MailServer     string `json:"mail_server"`
	MailPort       int    `json:"mail_port"`
	MailUsername   string `json:"mail_username"`
	MailPassword   string `json:"mail_password"`
	MailSenderName string `json:"mail_sender_name"`

	// Admin account seeded by init-db
	AdminEmail    string `json:"admin_email"`
	AdminPassword string `json:"admin_password"`

	// Security configuration
	SecretKey  string        `json:"secret_key"`
	SessionTTL time.Duration `json:"session_ttl"`

	// Reminder scheduler
	ReminderInterval time.Duration `json:"reminder_interval"`

	// Attachment storage
	UploadDir string `json:"upload_dir"`

	// Portal timezone for rendering and SLA bookkeeping
	Timezone string `json:"timezone"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// CORS allowed origin ("" disables the middleware)
	CORSOrigin string `json:"cors_origin"`

	// Telemetry
	OtelEnabled  bool   `json:"otel_enabled"`
	OtelEndpoint string `json:"otel_endpoint"`
	ServiceName  string `json:"service_name"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Host: %s, Port: %d, DBDriver: %s, DBPath: %s, DBHost: %s, DBName: %s, "+
		"MailServer: %s:%d, MailUsername: %s, MailPassword: [REDACTED], AdminEmail: %s, AdminPassword: [REDACTED], "+
		"SecretKey: [REDACTED], SessionTTL: %s, ReminderInterval: %s, UploadDir: %s, Timezone: %s, LogLevel: %s}",
		c.Host, c.Port, c.DBDriver, c.DBPath, c.DBHost, c.DBName,
		c.MailServer, c.MailPort, c.MailUsername, c.AdminEmail,
		c.SessionTTL, c.ReminderInterval, c.UploadDir, c.Timezone, c.LogLevel)
}

// Location resolves the configured portal timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LoadConfig reads the proper configuration from environment variables and returns a Config struct.
// Returns an error if any required environment variable is missing or invalid.
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "5000"))
	if err != nil {
		return nil, err
	}

	mailPort, err := strconv.Atoi(GetEnvWithDefault("MAIL_PORT", "587"))
	if err != nil {
		return nil, err
	}

	sessionTTLHours := GetEnvAsType("SESSION_TTL_HOURS", 12)
	if sessionTTLHours <= 0 {
		return nil, errors.New("SESSION_TTL_HOURS must be positive")
	}

	reminderMinutes := GetEnvAsType("REMINDER_INTERVAL_MINUTES", 720)
	if reminderMinutes <= 0 {
		return nil, errors.New("REMINDER_INTERVAL_MINUTES must be positive")
	}

	config := &Config{
		Port: port,
		Host: GetEnvWithDefault("APP_HOST", "127.0.0.1"),

		DBDriver:   GetEnvWithDefault("DB_DRIVER", "sqlite"),
		DBPath:     GetEnvWithDefault("DB_PATH", "credentialing_helpdesk.db"),
		DBHost:     GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:     GetEnvWithDefault("DB_PORT", "5432"),
		DBUser:     GetEnvWithDefault("DB_USER", "helpdesk"),
		DBPassword: GetEnvWithDefault("DB_PASSWORD", ""),
		DBName:     GetEnvWithDefault("DB_NAME", "credentialing_helpdesk"),
		DBSSLMode:  GetEnvWithDefault("DB_SSLMODE", "disable"),

		MailServer:     GetEnvWithDefault("MAIL_SERVER", "smtp.zoho.com"),
		MailPort:       mailPort,
		MailUsername:   GetEnvWithDefault("MAIL_USERNAME", ""),
		MailPassword:   GetEnvWithDefault("MAIL_PASSWORD", ""),
		MailSenderName: GetEnvWithDefault("MAIL_SENDER_NAME", "Credentialing Helpdesk"),

		AdminEmail:    GetEnvWithDefault("ADMIN_EMAIL", "credentialing@docsmedicalbilling.com"),
		AdminPassword: GetEnvWithDefault("ADMIN_PASSWORD", ""),

		SecretKey:  GetEnvWithDefault("SECRET_KEY", "change-this-in-production"),
		SessionTTL: time.Duration(sessionTTLHours) * time.Hour,

		ReminderInterval: time.Duration(reminderMinutes) * time.Minute,

		UploadDir: GetEnvWithDefault("UPLOAD_DIR", "uploads"),
		Timezone:  GetEnvWithDefault("PORTAL_TIMEZONE", "Asia/Karachi"),
		LogLevel:  GetEnvWithDefault("LOG_LEVEL", "info"),

		CORSOrigin: GetEnvWithDefault("CORS_ORIGINS", ""),

		OtelEnabled:  GetEnvAsType("OTEL_ENABLED", false),
		OtelEndpoint: GetEnvWithDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		ServiceName:  GetEnvWithDefault("SERVICE_NAME", "credentialing-helpdesk"),
	}

	if _, err := config.Location(); err != nil {
		return nil, fmt.Errorf("invalid PORTAL_TIMEZONE %q: %w", config.Timezone, err)
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Warnf("Environment variable %s not set, using default value: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
