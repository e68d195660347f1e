package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultExamPassPercent = 80.0

type Config struct {
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBSSLMode       string
	JWTSecret       string
	ServerPort      string
	LogFormat       string
	LogLevel        string
	CORSOrigins     string
	AdminUsernames  []string
	ExamPassPercent float64
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	passPercent, err := parsePercent(getEnv("EXAM_PASS_PERCENT", ""))
	if err != nil {
		return nil, err
	}

	return &Config{
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "onlinecourse"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		JWTSecret:       getEnv("JWT_SECRET", "secret"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSOrigins:     getEnv("CORS_ORIGINS", "*"),
		AdminUsernames:  splitList(getEnv("ADMIN_USERNAMES", "")),
		ExamPassPercent: passPercent,
	}, nil
}

// IsAdminUsername reports whether username is listed in ADMIN_USERNAMES.
func (c *Config) IsAdminUsername(username string) bool {
	for _, name := range c.AdminUsernames {
		if strings.EqualFold(name, username) {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parsePercent(raw string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultExamPassPercent, nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid EXAM_PASS_PERCENT %q: %w", raw, err)
	}
	if value < 0 || value > 100 {
		return 0, fmt.Errorf("EXAM_PASS_PERCENT must be between 0 and 100, got %v", value)
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
