package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env            string
	Port           string
	AllowedOrigins []string

	// Database
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	MigrationsPath string

	// Defaults applied when the settings row is first created
	DefaultCurrency string
	DefaultLocale   string
}

// fileConfig mirrors the optional TOML file pointed to by PYGGY_CONFIG.
// Values set in the file override environment defaults.
type fileConfig struct {
	Server struct {
		Port           string   `toml:"port"`
		AllowedOrigins []string `toml:"allowed_origins"`
	} `toml:"server"`
	Settings struct {
		Currency string `toml:"currency"`
		Locale   string `toml:"locale"`
	} `toml:"settings"`
}

var appConfig *Config

// Load loads configuration from environment variables, a .env file and the
// optional TOML file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:            getEnv("ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "pyggy"),
		DBPassword:     getEnv("DB_PASSWORD", "pyggy"),
		DBName:         getEnv("DB_NAME", "pyggy"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "USD"),
		DefaultLocale:   getEnv("DEFAULT_LOCALE", "en_US"),
	}

	if path := os.Getenv("PYGGY_CONFIG"); path != "" {
		if err := config.applyFile(path); err != nil {
			return nil, err
		}
	}

	appConfig = config
	return config, nil
}

// applyFile overlays non-empty values from the TOML file at path.
func (c *Config) applyFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Server.Port != "" {
		c.Port = fc.Server.Port
	}
	if len(fc.Server.AllowedOrigins) > 0 {
		c.AllowedOrigins = fc.Server.AllowedOrigins
	}
	if fc.Settings.Currency != "" {
		c.DefaultCurrency = strings.ToUpper(fc.Settings.Currency)
	}
	if fc.Settings.Locale != "" {
		c.DefaultLocale = fc.Settings.Locale
	}
	return nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
