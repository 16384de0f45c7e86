// Package config loads sitewatch configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the service.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Source  SourceConfig  `yaml:"source"`
	Refresh RefreshConfig `yaml:"refresh"`
	Overlay OverlayConfig `yaml:"overlay"`
	Logging LoggingConfig `yaml:"logging"`
	Limits  LimitsConfig  `yaml:"limits"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the bind host, defaulting to all interfaces.
func (s ServerConfig) GetHost() string {
	if s.Host == "" {
		return "0.0.0.0"
	}
	return s.Host
}

// SourceConfig describes where the workbook comes from. Mode "url" is
// a plain HTTP(S) download; mode "graph" pulls a drive item through
// the Microsoft Graph API with OAuth2 client credentials.
type SourceConfig struct {
	Mode      string      `yaml:"mode"`
	URL       string      `yaml:"url"`
	SheetName string      `yaml:"sheet_name"`
	Graph     GraphConfig `yaml:"graph"`
}

// GraphConfig holds Graph API credentials and the drive item address.
type GraphConfig struct {
	TenantID     string `yaml:"tenant_id"`
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	DriveID      string `yaml:"drive_id"`
	ItemID       string `yaml:"item_id"`
}

// Configured reports whether the Graph credentials are complete.
func (g GraphConfig) Configured() bool {
	return g.TenantID != "" && g.ClientID != "" && g.ClientSecret != "" &&
		g.DriveID != "" && g.ItemID != ""
}

// RefreshConfig holds the auto-refresh loop settings.
type RefreshConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`
}

// Interval returns the refresh period, defaulting to five minutes.
func (r RefreshConfig) Interval() time.Duration {
	if r.IntervalSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(r.IntervalSeconds) * time.Second
}

// OverlayConfig points at the optional boundary GeoJSON file.
type OverlayConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LimitsConfig caps uploads so a malformed file cannot exhaust the host.
type LimitsConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	MaxRows        int   `yaml:"max_rows"`
}

// MaxUpload returns the upload byte cap, defaulting to 25 MiB.
func (l LimitsConfig) MaxUpload() int64 {
	if l.MaxUploadBytes <= 0 {
		return 25 << 20
	}
	return l.MaxUploadBytes
}

// MaxRowCount returns the data-row cap, defaulting to 50000.
func (l LimitsConfig) MaxRowCount() int {
	if l.MaxRows <= 0 {
		return 50000
	}
	return l.MaxRows
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	return cfg, nil
}

// LoadFromEnv loads .env (if present), then the YAML file, then
// applies environment overrides. Missing config file is not fatal when
// every needed value arrives via environment.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = &Config{Server: ServerConfig{Port: 8080}}
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SITEWATCH_SOURCE_URL"); v != "" {
		cfg.Source.URL = v
		if cfg.Source.Mode == "" {
			cfg.Source.Mode = "url"
		}
	}
	if v := os.Getenv("SITEWATCH_GRAPH_CLIENT_SECRET"); v != "" {
		cfg.Source.Graph.ClientSecret = v
	}
	if v := os.Getenv("SITEWATCH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return cfg, nil
}
