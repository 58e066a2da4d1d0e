package config

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FormatConfig overrides the record templates of every destination.
type FormatConfig struct {
	Message  string `yaml:"message,omitempty"`  // e.g. "[%s] %s %s" (datetime, level, body)
	Datetime string `yaml:"datetime,omitempty"` // a Go time layout, e.g. "02.01.2006 15:04:05"
}

// FilterConfig decides which incoming lines are enqueued at all.
type FilterConfig struct {
	Levels []string `yaml:"levels,omitempty"` // allowed level names; empty means all
	Match  []string `yaml:"match,omitempty"`  // glob patterns on the message body; empty means all
}

// Config represents the application configuration
type Config struct {
	AppLog struct {
		Level string `yaml:"level"` // diagnostic log level (TRACE..FATAL)
	} `yaml:"app_log"`

	Format FormatConfig `yaml:"format"`
	Filter FilterConfig `yaml:"filter"`

	Server struct {
		Enabled        bool     `yaml:"enabled"`
		Host           string   `yaml:"host"`
		Port           int      `yaml:"port"`
		Mode           string   `yaml:"mode"` // production or debug
		TrustedProxies []string `yaml:"trusted_proxies"`
		ClientIPHeader string   `yaml:"client_ip_header"`
		RequestLimits  struct {
			MaxBodySize string `yaml:"max_body_size"` // e.g. "64KB"
			RateLimit   int    `yaml:"rate_limit"`    // requests per minute, 0 disables
		} `yaml:"request_limits"`
	} `yaml:"server"`

	LogDestinations []LogDestination `yaml:"log_destinations"`
}

// LogDestination represents a logging destination configuration
type LogDestination struct {
	Name    string `yaml:"name"` // Mandatory, unique identifier
	Type    string `yaml:"type"` // Mandatory: file, socket, gelf, debug
	Enabled bool   `yaml:"enabled"`

	// File specific
	Path      string `yaml:"path,omitempty"`       // Mandatory for type: file
	FlushRate *int   `yaml:"flush_rate,omitempty"` // nil means default (4); <= 0 disables periodic flush

	// Socket specific
	Host           string `yaml:"host,omitempty"` // Mandatory for type: socket, gelf
	Port           int    `yaml:"port,omitempty"` // Mandatory for type: socket, gelf
	TLS            bool   `yaml:"tls,omitempty"`
	TLSSkipVerify  bool   `yaml:"tls_skip_verify,omitempty"`
	ConnectTimeout string `yaml:"connect_timeout,omitempty"` // e.g. "30s"

	// GELF specific
	Protocol        string `yaml:"protocol,omitempty"`         // udp or tcp, default udp
	CompressionType string `yaml:"compression_type,omitempty"` // gzip, zlib, none, default none
}

// Valid level names for filter configuration; matches logger.ParseLevel.
var validLevelNames = map[string]bool{
	"INFO": true, "DEBUG": true, "WARNING": true, "WARN": true, "FATAL": true,
}

// LoadConfig loads and validates the configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	// Defaults that apply when the file leaves them out
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8514
	cfg.Server.Mode = "production"

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file '%s': %w", path, err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// validateConfig performs semantic validation of the configuration
func validateConfig(cfg *Config) error {
	// Server validation
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", cfg.Server.Port)
	}
	if cfg.Server.Mode != "production" && cfg.Server.Mode != "debug" {
		return fmt.Errorf("invalid server.mode: '%s', must be 'production' or 'debug'", cfg.Server.Mode)
	}
	if cfg.Server.RequestLimits.MaxBodySize != "" {
		if _, err := ParseSize(cfg.Server.RequestLimits.MaxBodySize); err != nil {
			return fmt.Errorf("invalid server.request_limits.max_body_size: %w", err)
		}
	}
	if cfg.Server.RequestLimits.RateLimit < 0 {
		return errors.New("server.request_limits.rate_limit cannot be negative")
	}

	// Filter validation
	for i, name := range cfg.Filter.Levels {
		if !validLevelNames[strings.ToUpper(strings.TrimSpace(name))] {
			return fmt.Errorf("filter.levels[%d]: unknown level '%s'", i, name)
		}
	}

	// Log Destinations validation
	if len(cfg.LogDestinations) == 0 {
		return errors.New("log_destinations: at least one destination is required")
	}
	destinationNames := make(map[string]bool)
	anyEnabled := false
	for i, dest := range cfg.LogDestinations {
		if dest.Name == "" {
			return fmt.Errorf("log_destinations[%d]: name is required", i)
		}
		if destinationNames[dest.Name] {
			return fmt.Errorf("log_destinations: duplicate name '%s' found", dest.Name)
		}
		destinationNames[dest.Name] = true
		if dest.Enabled {
			anyEnabled = true
		}

		switch dest.Type {
		case "file":
			if dest.Path == "" {
				return fmt.Errorf("log_destinations[%s]: path is required for type 'file'", dest.Name)
			}
		case "socket":
			if dest.Host == "" {
				return fmt.Errorf("log_destinations[%s]: host is required for type 'socket'", dest.Name)
			}
			if dest.Port <= 0 || dest.Port > 65535 {
				return fmt.Errorf("log_destinations[%s]: invalid port %d for type 'socket'", dest.Name, dest.Port)
			}
			if dest.ConnectTimeout != "" {
				if _, err := ParseDuration(dest.ConnectTimeout); err != nil {
					return fmt.Errorf("log_destinations[%s]: invalid connect_timeout: %w", dest.Name, err)
				}
			}
		case "gelf":
			if dest.Host == "" {
				return fmt.Errorf("log_destinations[%s]: host is required for type 'gelf'", dest.Name)
			}
			if dest.Port <= 0 || dest.Port > 65535 {
				return fmt.Errorf("log_destinations[%s]: invalid port %d for type 'gelf'", dest.Name, dest.Port)
			}
			if dest.Protocol != "" && dest.Protocol != "udp" && dest.Protocol != "tcp" {
				return fmt.Errorf("log_destinations[%s]: invalid protocol '%s', must be 'udp' or 'tcp' for type 'gelf'", dest.Name, dest.Protocol)
			}
			if dest.Protocol == "" {
				cfg.LogDestinations[i].Protocol = "udp" // Assign back to the slice element
			}
			if dest.CompressionType != "" && dest.CompressionType != "gzip" && dest.CompressionType != "zlib" && dest.CompressionType != "none" {
				return fmt.Errorf("log_destinations[%s]: invalid compression_type '%s', must be 'gzip', 'zlib', or 'none' for type 'gelf'", dest.Name, dest.CompressionType)
			}
			if dest.CompressionType == "" {
				cfg.LogDestinations[i].CompressionType = "none"
			}
		case "debug":
			// No extra fields
		default:
			return fmt.Errorf("log_destinations[%s]: unknown type '%s'", dest.Name, dest.Type)
		}
	}
	if !anyEnabled {
		return errors.New("log_destinations: at least one destination must be enabled")
	}

	return nil
}

// ValidateConfig uses go-playground/validator for struct-level validation.
// It complements the semantic validation in validateConfig.
func ValidateConfig(cfg *Config) error {
	validate := validator.New()

	err := validate.Struct(cfg)
	if err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			fieldName := err.Field()
			tag := err.Tag()
			message := fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", fieldName, tag)
			validationErrors = append(validationErrors, message)
		}
		return errors.New(strings.Join(validationErrors, "; "))
	}

	// Perform additional semantic validation (that validator can't easily handle)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	return nil
}

// ParseDuration parses a duration string (e.g., "10m", "1h30m", "7d").
// Supports standard time.ParseDuration units plus 'd' for days.
// Returns an error if the format is invalid or the duration is non-positive.
func ParseDuration(durationStr string) (time.Duration, error) {
	durationStr = strings.TrimSpace(durationStr)
	if durationStr == "" {
		return 0, errors.New("duration string cannot be empty")
	}

	// Handle 'd' suffix manually
	if strings.HasSuffix(strings.ToLower(durationStr), "d") {
		numStr := strings.TrimSuffix(strings.ToLower(durationStr), "d")
		days, err := strconv.ParseInt(numStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number format for days in '%s': %w", durationStr, err)
		}
		if days <= 0 {
			return 0, fmt.Errorf("duration must be positive: '%s'", durationStr)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	// Use standard time.ParseDuration for other units
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format '%s': %w", durationStr, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: '%s'", durationStr)
	}
	return d, nil
}

// ParseSize parses a size string (e.g., "10MB", "5k", "1G") into bytes.
// Supports K, M, G suffixes (case-insensitive), with or without a trailing B.
func ParseSize(sizeStr string) (int64, error) {
	sizeStr = strings.TrimSpace(strings.ToUpper(sizeStr))
	if sizeStr == "" {
		return 0, errors.New("size string cannot be empty")
	}

	var multiplier int64 = 1
	suffix := ""

	switch {
	case strings.HasSuffix(sizeStr, "KB"):
		multiplier, suffix = 1024, "KB"
	case strings.HasSuffix(sizeStr, "K"):
		multiplier, suffix = 1024, "K"
	case strings.HasSuffix(sizeStr, "MB"):
		multiplier, suffix = 1024*1024, "MB"
	case strings.HasSuffix(sizeStr, "M"):
		multiplier, suffix = 1024*1024, "M"
	case strings.HasSuffix(sizeStr, "GB"):
		multiplier, suffix = 1024*1024*1024, "GB"
	case strings.HasSuffix(sizeStr, "G"):
		multiplier, suffix = 1024*1024*1024, "G"
	}

	numStr := sizeStr
	if suffix != "" {
		numStr = strings.TrimSuffix(sizeStr, suffix)
	}
	numStr = strings.TrimSpace(numStr)

	// Use big.Int for invalid format detection and overflow checks
	numBig := new(big.Int)
	_, ok := numBig.SetString(numStr, 10)
	if !ok {
		return 0, fmt.Errorf("invalid number format in size string '%s'", sizeStr)
	}
	if numBig.Sign() < 0 {
		return 0, fmt.Errorf("size cannot be negative: %s", numBig.String())
	}
	if numBig.Sign() == 0 {
		return 0, nil
	}

	resultBig := new(big.Int).Mul(numBig, big.NewInt(multiplier))
	if !resultBig.IsInt64() {
		return 0, fmt.Errorf("size value %s%s results in overflow (exceeds max int64)", numBig.String(), suffix)
	}

	return resultBig.Int64(), nil
}
