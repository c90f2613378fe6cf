package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database"`

	// Sampling configuration
	Sampling SamplingConfig `json:"sampling"`

	// Auth configuration
	Auth AuthConfig `json:"auth"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// CORS configuration
	CORS CORSConfig `json:"cors"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig holds database-related configuration. Driver selects
// the backend: "mongo" (default, matches the Atlas deployment) or
// "postgres".
type DatabaseConfig struct {
	Driver string `json:"driver"`

	// MongoDB
	MongoURI         string        `json:"mongo_uri"`
	MongoDB          string        `json:"mongo_db"`
	ReadingsColl     string        `json:"readings_coll"`
	ConfigsColl      string        `json:"configs_coll"`
	UsersColl        string        `json:"users_coll"`
	OperationTimeout time.Duration `json:"operation_timeout"`

	// PostgreSQL
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
	MaxConns int    `json:"max_conns"`
	MinConns int    `json:"min_conns"`
}

// SamplingConfig holds the simulated-sampling loop configuration. The
// tick interval itself lives in the versioned cistern configuration, not
// here; this only controls whether the loop runs and which sensors the
// simulator rotates over.
type SamplingConfig struct {
	Enabled bool     `json:"enabled"`
	Sensors []string `json:"sensors"`
}

// AuthConfig holds authentication-related configuration
type AuthConfig struct {
	JWTSecretKey         string        `json:"jwt_secret_key"`
	JWTIssuer            string        `json:"jwt_issuer"`
	AccessTokenDuration  time.Duration `json:"access_token_duration"`
	RefreshTokenDuration time.Duration `json:"refresh_token_duration"`
	InternalAPISecret    string        `json:"internal_api_secret"`
	Admin                AdminConfig   `json:"admin"`
}

// AdminConfig holds admin user configuration
type AdminConfig struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level        string `json:"level"`
	Format       string `json:"format"` // json or text
	Output       string `json:"output"` // stdout, stderr, or file path
	EnableCaller bool   `json:"enable_caller"`
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

// Load loads the full API service configuration from the environment.
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	// Environment variables can also be set directly
	if err := godotenv.Load(); err != nil {
		// Silently ignore .env file loading errors
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "3000"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "mongo"),
			MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			MongoDB:         getEnv("MONGODB_DB", "cisterna_db"),
			ReadingsColl:    getEnv("MONGODB_READINGS_COLL", "readings"),
			ConfigsColl:     getEnv("MONGODB_CONFIGS_COLL", "configurations"),
			UsersColl:       getEnv("MONGODB_USERS_COLL", "users"),
			OperationTimeout: getDuration("DB_OPERATION_TIMEOUT", 5*time.Second),
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getInt("POSTGRES_PORT", 5432),
			User:            getEnv("POSTGRES_USER", ""),
			Password:        getEnv("POSTGRES_PASSWORD", ""),
			DBName:          getEnv("POSTGRES_DB", "cisterna"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxConns:        getInt("POSTGRES_MAX_CONNS", 25),
			MinConns:        getInt("POSTGRES_MIN_CONNS", 5),
		},
		Sampling: SamplingConfig{
			Enabled: getBool("SAMPLING_ENABLED", true),
			Sensors: getStringSlice("SAMPLING_SENSORS", []string{"CAP-SENS-001"}),
		},
		Auth: AuthConfig{
			JWTSecretKey:         getEnv("JWT_SECRET_KEY", "change-this-secret-in-production"),
			JWTIssuer:            getEnv("JWT_ISSUER", "cis-auth-service"),
			AccessTokenDuration:  getDuration("JWT_ACCESS_TOKEN_DURATION", 8*time.Hour),
			RefreshTokenDuration: getDuration("JWT_REFRESH_TOKEN_DURATION", 7*24*time.Hour),
			InternalAPISecret:    getEnv("INTERNAL_API_SECRET", ""),
			Admin: AdminConfig{
				Username: getEnv("ADMIN_USERNAME", "admin"),
				Email:    getEnv("ADMIN_EMAIL", "admin@example.com"),
				Password: getEnv("ADMIN_PASSWORD", "adminpassword123"),
			},
		},
		Logging: LoggingConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			Format:       getEnv("LOG_FORMAT", "text"),
			Output:       getEnv("LOG_OUTPUT", "stdout"),
			EnableCaller: getBool("LOG_ENABLE_CALLER", false),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods:   getStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization"}),
			ExposedHeaders:   getStringSlice("CORS_EXPOSED_HEADERS", []string{"Content-Length", "Content-Disposition"}),
			AllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getInt("CORS_MAX_AGE", 43200), // 12 hours
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mongo":
		if c.Database.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for the mongo driver")
		}
	case "postgres":
		if c.Database.User == "" {
			return fmt.Errorf("POSTGRES_USER is required for the postgres driver")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("POSTGRES_PASSWORD is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (expected mongo or postgres)", c.Database.Driver)
	}
	if c.Auth.JWTSecretKey == "change-this-secret-in-production" {
		log.Println("WARNING: Using default JWT secret key. Change JWT_SECRET_KEY in production!")
	}
	if len(c.Sampling.Sensors) == 0 {
		return fmt.Errorf("SAMPLING_SENSORS must name at least one sensor")
	}
	return nil
}

// GetDatabaseDSN returns the PostgreSQL connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.DBName, c.Database.SSLMode)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return intValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if value == "1" || value == "true" || value == "TRUE" {
		return true
	}
	if value == "0" || value == "false" || value == "FALSE" {
		return false
	}
	log.Fatalf("invalid %s: %q (expected true/false or 1/0)", key, value)
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return duration
}

func getStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// LoadBridgeLogging loads just the logging section, used by the bridge
// service which has its own config loader for everything else.
func LoadBridgeLogging() LoggingConfig {
	if err := godotenv.Load(); err != nil {
		// ignore
	}
	return LoggingConfig{
		Level:        getEnv("LOG_LEVEL", "info"),
		Format:       getEnv("LOG_FORMAT", "text"),
		Output:       getEnv("LOG_OUTPUT", "stdout"),
		EnableCaller: getBool("LOG_ENABLE_CALLER", false),
	}
}
