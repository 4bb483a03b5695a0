package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServerConfig   ServerConfig   `json:"server"`
	DatabaseConfig DatabaseConfig `json:"database"`
	RedisConfig    RedisConfig    `json:"redis"`
	AuthConfig     AuthConfig     `json:"auth"`
	LoggingConfig  LoggingConfig  `json:"logging"`
	StrategyConfig StrategyConfig `json:"strategy"`
	RiskConfig     RiskConfig     `json:"risk"`
}

type ServerConfig struct {
	Port            int      `json:"port"`
	Host            string   `json:"host"`
	AllowedOrigins  []string `json:"allowed_origins"`
	ProductionMode  bool     `json:"production_mode"`
	RateLimitPerMin int      `json:"rate_limit_per_min"`
	ShutdownSeconds int      `json:"shutdown_seconds"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode"`
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type AuthConfig struct {
	Enabled             bool          `json:"enabled"`
	JWTSecret           string        `json:"jwt_secret"`
	AccessTokenDuration time.Duration `json:"access_token_duration"`
}

type LoggingConfig struct {
	Level      string `json:"level"`       // DEBUG, INFO, WARN, ERROR
	Output     string `json:"output"`      // stdout, stderr, or file path
	JSONFormat bool   `json:"json_format"` // Output as JSON
}

// StrategyConfig mirrors the validation parameters of the signal engine.
type StrategyConfig struct {
	MinConfidenceScore        float64 `json:"min_confidence_score"`
	RequiredConfluenceFactors int     `json:"required_confluence_factors"`
	SessionFilterEnabled      bool    `json:"session_filter_enabled"`
	RiskPercentage            float64 `json:"risk_percentage"`
	MaxConcurrentTrades       int     `json:"max_concurrent_trades"`
	MaxDailyDrawdown          float64 `json:"max_daily_drawdown"`
}

type RiskConfig struct {
	InitialBalance float64 `json:"initial_balance"`
}

// LoadConfig reads configuration from an optional JSON file, then applies
// environment variable overrides on top.
func LoadConfig(filename string) (*Config, error) {
	cfg := defaultConfig()

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			loaded, err := loadFromFile(filename)
			if err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
			cfg = loaded
		}
	}

	applyEnvOverrides(cfg)

	if cfg.AuthConfig.Enabled && cfg.AuthConfig.JWTSecret == "" {
		return nil, fmt.Errorf("auth is enabled but JWT_SECRET is not set")
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		ServerConfig: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			AllowedOrigins:  []string{"http://localhost:5173"},
			RateLimitPerMin: 120,
			ShutdownSeconds: 10,
		},
		DatabaseConfig: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Database: "smc_signals",
			SSLMode:  "disable",
		},
		RedisConfig: RedisConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    6379,
		},
		AuthConfig: AuthConfig{
			Enabled:             true,
			AccessTokenDuration: 15 * time.Minute,
		},
		LoggingConfig: LoggingConfig{
			Level:      "INFO",
			Output:     "stdout",
			JSONFormat: true,
		},
		StrategyConfig: StrategyConfig{
			MinConfidenceScore:        88,
			RequiredConfluenceFactors: 5,
			SessionFilterEnabled:      true,
			RiskPercentage:            1.0,
			MaxConcurrentTrades:       3,
			MaxDailyDrawdown:          5.0,
		},
		RiskConfig: RiskConfig{
			InitialBalance: 0,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	cfg.ServerConfig.Port = getEnvIntOrDefault("SERVER_PORT", cfg.ServerConfig.Port)
	cfg.ServerConfig.Host = getEnvOrDefault("SERVER_HOST", cfg.ServerConfig.Host)
	cfg.ServerConfig.ProductionMode = getEnvOrDefault("PRODUCTION_MODE", boolString(cfg.ServerConfig.ProductionMode)) == "true"
	cfg.ServerConfig.RateLimitPerMin = getEnvIntOrDefault("RATE_LIMIT_PER_MIN", cfg.ServerConfig.RateLimitPerMin)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.ServerConfig.AllowedOrigins = splitCSV(origins)
	}

	cfg.DatabaseConfig.Host = getEnvOrDefault("DB_HOST", cfg.DatabaseConfig.Host)
	cfg.DatabaseConfig.Port = getEnvIntOrDefault("DB_PORT", cfg.DatabaseConfig.Port)
	cfg.DatabaseConfig.User = getEnvOrDefault("DB_USER", cfg.DatabaseConfig.User)
	cfg.DatabaseConfig.Password = getEnvOrDefault("DB_PASSWORD", cfg.DatabaseConfig.Password)
	cfg.DatabaseConfig.Database = getEnvOrDefault("DB_NAME", cfg.DatabaseConfig.Database)
	cfg.DatabaseConfig.SSLMode = getEnvOrDefault("DB_SSL_MODE", cfg.DatabaseConfig.SSLMode)

	cfg.RedisConfig.Enabled = getEnvOrDefault("REDIS_ENABLED", boolString(cfg.RedisConfig.Enabled)) == "true"
	cfg.RedisConfig.Host = getEnvOrDefault("REDIS_HOST", cfg.RedisConfig.Host)
	cfg.RedisConfig.Port = getEnvIntOrDefault("REDIS_PORT", cfg.RedisConfig.Port)
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", cfg.RedisConfig.DB)

	cfg.AuthConfig.Enabled = getEnvOrDefault("AUTH_ENABLED", boolString(cfg.AuthConfig.Enabled)) == "true"
	cfg.AuthConfig.JWTSecret = getEnvOrDefault("JWT_SECRET", cfg.AuthConfig.JWTSecret)
	cfg.AuthConfig.AccessTokenDuration = getEnvDurationOrDefault("ACCESS_TOKEN_DURATION", cfg.AuthConfig.AccessTokenDuration)

	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", cfg.LoggingConfig.Level)
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", cfg.LoggingConfig.Output)
	cfg.LoggingConfig.JSONFormat = getEnvOrDefault("LOG_JSON", boolString(cfg.LoggingConfig.JSONFormat)) == "true"

	cfg.StrategyConfig.MinConfidenceScore = getEnvFloatOrDefault("STRATEGY_MIN_CONFIDENCE", cfg.StrategyConfig.MinConfidenceScore)
	cfg.StrategyConfig.RequiredConfluenceFactors = getEnvIntOrDefault("STRATEGY_REQUIRED_FACTORS", cfg.StrategyConfig.RequiredConfluenceFactors)
	cfg.StrategyConfig.SessionFilterEnabled = getEnvOrDefault("STRATEGY_SESSION_FILTER", boolString(cfg.StrategyConfig.SessionFilterEnabled)) == "true"
	cfg.StrategyConfig.RiskPercentage = getEnvFloatOrDefault("STRATEGY_RISK_PERCENTAGE", cfg.StrategyConfig.RiskPercentage)
	cfg.StrategyConfig.MaxConcurrentTrades = getEnvIntOrDefault("STRATEGY_MAX_CONCURRENT_TRADES", cfg.StrategyConfig.MaxConcurrentTrades)
	cfg.StrategyConfig.MaxDailyDrawdown = getEnvFloatOrDefault("STRATEGY_MAX_DAILY_DRAWDOWN", cfg.StrategyConfig.MaxDailyDrawdown)

	cfg.RiskConfig.InitialBalance = getEnvFloatOrDefault("ACCOUNT_INITIAL_BALANCE", cfg.RiskConfig.InitialBalance)
}

// Addr returns the host:port address for the redis client.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func loadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	cfg := defaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config JSON: %w", err)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
