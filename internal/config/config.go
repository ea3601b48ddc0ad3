package config

import (
	"errors"  // Validation errors
	"fmt"     // Error formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // Token lifetime

	"github.com/joho/godotenv" // For loading .env files
)

// MinJWTSecretLength is the shortest accepted HMAC secret
const MinJWTSecretLength = 32

// Config holds the application configuration
type Config struct {
	AppPort       string        // Application port
	DBDriver      string        // "mysql" or "sqlite"
	DBUser        string        // Database user
	DBPassword    string        // Database password
	DBHost        string        // Database host
	DBPort        string        // Database port
	DBName        string        // Database name
	SQLitePath    string        // Database file when DBDriver is sqlite
	JWTSecret     string        // JWT secret key
	JWTExpiration time.Duration // Token lifetime
	RedisAddr     string        // Redis server address, empty disables caching
	RedisPass     string        // Redis password
	RedisDB       int           // Redis database number
	BcryptCost    int           // bcrypt work factor
	LogLevel      string        // logrus level name
	IsProd        bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	bcryptCost, _ := strconv.Atoi(os.Getenv("BCRYPT_COST"))
	expirationMs := int64(24 * time.Hour / time.Millisecond) // Default: one day
	if v := os.Getenv("JWT_EXPIRATION"); v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			ms = -1 // Rejected by Validate
		}
		expirationMs = ms
	}
	return &Config{
		AppPort:       getenv("APP_PORT", "8080"),
		DBDriver:      getenv("DB_DRIVER", "mysql"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        getenv("DB_HOST", "127.0.0.1"),
		DBPort:        getenv("DB_PORT", "3306"),
		DBName:        os.Getenv("DB_NAME"),
		SQLitePath:    getenv("SQLITE_PATH", "finance_tracker.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiration: time.Duration(expirationMs) * time.Millisecond,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPass:     os.Getenv("REDIS_PASS"),
		RedisDB:       redisDB,
		BcryptCost:    bcryptCost, // Zero means bcrypt.DefaultCost
		LogLevel:      getenv("LOG_LEVEL", "info"),
		IsProd:        os.Getenv("IS_PROD") == "true",
	}
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", MinJWTSecretLength))
	}
	if c.JWTExpiration <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION must be a positive number of milliseconds"))
	}
	switch c.DBDriver {
	case "mysql":
		if c.DBName == "" {
			errs = append(errs, errors.New("DB_NAME is required for the mysql driver"))
		}
	case "sqlite":
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}
	return errors.Join(errs...)
}

// MySQLDSN builds the Data Source Name for the MySQL driver
func (c *Config) MySQLDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&loc=UTC&charset=utf8mb4"
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
