package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	os.Setenv("AUTH_ENABLED", "false")
	defer os.Unsetenv("AUTH_ENABLED")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ServerConfig.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.ServerConfig.Port)
	}
	if cfg.StrategyConfig.MinConfidenceScore != 88 {
		t.Errorf("default min confidence = %v, want 88", cfg.StrategyConfig.MinConfidenceScore)
	}
	if cfg.StrategyConfig.RequiredConfluenceFactors != 5 {
		t.Errorf("default required factors = %d, want 5", cfg.StrategyConfig.RequiredConfluenceFactors)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	os.Setenv("AUTH_ENABLED", "false")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("STRATEGY_MIN_CONFIDENCE", "92.5")
	os.Setenv("STRATEGY_SESSION_FILTER", "false")
	defer func() {
		os.Unsetenv("AUTH_ENABLED")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("STRATEGY_MIN_CONFIDENCE")
		os.Unsetenv("STRATEGY_SESSION_FILTER")
	}()

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ServerConfig.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.ServerConfig.Port)
	}
	if cfg.StrategyConfig.MinConfidenceScore != 92.5 {
		t.Errorf("min confidence = %v, want 92.5", cfg.StrategyConfig.MinConfidenceScore)
	}
	if cfg.StrategyConfig.SessionFilterEnabled {
		t.Error("session filter still enabled after override")
	}
}

func TestLoadConfigAuthRequiresSecret(t *testing.T) {
	os.Setenv("AUTH_ENABLED", "true")
	os.Unsetenv("JWT_SECRET")
	defer os.Unsetenv("AUTH_ENABLED")

	if _, err := LoadConfig(""); err == nil {
		t.Error("expected error when auth enabled without JWT_SECRET")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	os.Setenv("AUTH_ENABLED", "false")
	defer os.Unsetenv("AUTH_ENABLED")

	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"server":{"port":7777},"strategy":{"min_confidence_score":90,"required_confluence_factors":6,"session_filter_enabled":true,"risk_percentage":1,"max_concurrent_trades":3,"max_daily_drawdown":5}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.ServerConfig.Port != 7777 {
		t.Errorf("port = %d, want 7777", cfg.ServerConfig.Port)
	}
	if cfg.StrategyConfig.RequiredConfluenceFactors != 6 {
		t.Errorf("required factors = %d, want 6", cfg.StrategyConfig.RequiredConfluenceFactors)
	}
}
