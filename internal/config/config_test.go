package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfigFile(t, `
app_log:
  level: DEBUG

format:
  message: "[%s] %s %s"
  datetime: "02.01.2006 15:04:05"

filter:
  levels: [WARNING, FATAL]
  match: ["disk*", "*timeout*"]

server:
  enabled: true
  host: 127.0.0.1
  port: 9000
  mode: debug
  trusted_proxies: ["10.0.0.0/8"]
  client_ip_header: X-Real-IP
  request_limits:
    max_body_size: 64KB
    rate_limit: 120

log_destinations:
  - name: main
    type: file
    enabled: true
    path: /var/log/app/main.log
    flush_rate: 8
  - name: remote
    type: socket
    enabled: true
    host: logs.example.com
    port: 6514
    tls: true
    connect_timeout: 10s
  - name: graylog
    type: gelf
    enabled: false
    host: graylog.example.com
    port: 12201
  - name: console
    type: debug
    enabled: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.AppLog.Level)
	assert.Equal(t, "[%s] %s %s", cfg.Format.Message)
	assert.Equal(t, "02.01.2006 15:04:05", cfg.Format.Datetime)

	assert.Equal(t, []string{"WARNING", "FATAL"}, cfg.Filter.Levels)
	assert.Equal(t, []string{"disk*", "*timeout*"}, cfg.Filter.Match)

	assert.True(t, cfg.Server.Enabled)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.Server.TrustedProxies)
	assert.Equal(t, "X-Real-IP", cfg.Server.ClientIPHeader)
	assert.Equal(t, "64KB", cfg.Server.RequestLimits.MaxBodySize)
	assert.Equal(t, 120, cfg.Server.RequestLimits.RateLimit)

	require.Len(t, cfg.LogDestinations, 4)

	main := cfg.LogDestinations[0]
	assert.Equal(t, "main", main.Name)
	assert.Equal(t, "file", main.Type)
	require.NotNil(t, main.FlushRate)
	assert.Equal(t, 8, *main.FlushRate)

	remote := cfg.LogDestinations[1]
	assert.True(t, remote.TLS)
	assert.Equal(t, "10s", remote.ConnectTimeout)

	// GELF defaults are assigned during validation.
	graylog := cfg.LogDestinations[2]
	assert.Equal(t, "udp", graylog.Protocol)
	assert.Equal(t, "none", graylog.CompressionType)

	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfigFile(t, `
log_destinations:
  - name: main
    type: debug
    enabled: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8514, cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Mode)
	assert.False(t, cfg.Server.Enabled)
	assert.Nil(t, cfg.LogDestinations[0].FlushRate)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "log_destinations: [\n")
	_, err := LoadConfig(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing config file")
}

func TestLoadConfig_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "no destinations",
			yaml:    `app_log: {level: INFO}`,
			wantErr: "at least one destination is required",
		},
		{
			name: "destination without name",
			yaml: `
log_destinations:
  - type: debug
    enabled: true
`,
			wantErr: "name is required",
		},
		{
			name: "duplicate names",
			yaml: `
log_destinations:
  - name: dup
    type: debug
    enabled: true
  - name: dup
    type: debug
    enabled: true
`,
			wantErr: "duplicate name 'dup'",
		},
		{
			name: "unknown type",
			yaml: `
log_destinations:
  - name: weird
    type: telegraph
    enabled: true
`,
			wantErr: "unknown type 'telegraph'",
		},
		{
			name: "file without path",
			yaml: `
log_destinations:
  - name: main
    type: file
    enabled: true
`,
			wantErr: "path is required",
		},
		{
			name: "socket without host",
			yaml: `
log_destinations:
  - name: remote
    type: socket
    enabled: true
    port: 514
`,
			wantErr: "host is required",
		},
		{
			name: "socket with bad port",
			yaml: `
log_destinations:
  - name: remote
    type: socket
    enabled: true
    host: example.com
    port: 70000
`,
			wantErr: "invalid port",
		},
		{
			name: "socket with bad connect_timeout",
			yaml: `
log_destinations:
  - name: remote
    type: socket
    enabled: true
    host: example.com
    port: 514
    connect_timeout: soon
`,
			wantErr: "invalid connect_timeout",
		},
		{
			name: "gelf with bad protocol",
			yaml: `
log_destinations:
  - name: graylog
    type: gelf
    enabled: true
    host: example.com
    port: 12201
    protocol: sctp
`,
			wantErr: "invalid protocol",
		},
		{
			name: "gelf with bad compression",
			yaml: `
log_destinations:
  - name: graylog
    type: gelf
    enabled: true
    host: example.com
    port: 12201
    compression_type: lz4
`,
			wantErr: "invalid compression_type",
		},
		{
			name: "all destinations disabled",
			yaml: `
log_destinations:
  - name: main
    type: debug
    enabled: false
`,
			wantErr: "at least one destination must be enabled",
		},
		{
			name: "bad filter level",
			yaml: `
filter:
  levels: [NOTICE]
log_destinations:
  - name: main
    type: debug
    enabled: true
`,
			wantErr: "unknown level 'NOTICE'",
		},
		{
			name: "bad server mode",
			yaml: `
server:
  mode: staging
log_destinations:
  - name: main
    type: debug
    enabled: true
`,
			wantErr: "invalid server.mode",
		},
		{
			name: "bad server port",
			yaml: `
server:
  port: -1
log_destinations:
  - name: main
    type: debug
    enabled: true
`,
			wantErr: "invalid server.port",
		},
		{
			name: "bad max_body_size",
			yaml: `
server:
  request_limits:
    max_body_size: big
log_destinations:
  - name: main
    type: debug
    enabled: true
`,
			wantErr: "invalid server.request_limits.max_body_size",
		},
		{
			name: "negative rate_limit",
			yaml: `
server:
  request_limits:
    rate_limit: -5
log_destinations:
  - name: main
    type: debug
    enabled: true
`,
			wantErr: "rate_limit cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.yaml)
			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"10s", 10 * time.Second, false},
		{"1h30m", 90 * time.Minute, false},
		{"7d", 7 * 24 * time.Hour, false},
		{" 5m ", 5 * time.Minute, false},
		{"", 0, true},
		{"soon", 0, true},
		{"-10s", 0, true},
		{"0s", 0, true},
		{"-3d", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"512", 512, false},
		{"1K", 1024, false},
		{"1KB", 1024, false},
		{"10mb", 10 * 1024 * 1024, false},
		{"2G", 2 * 1024 * 1024 * 1024, false},
		{"0", 0, false},
		{"", 0, true},
		{"big", 0, true},
		{"-1K", 0, true},
		{"99999999999999999999G", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSize(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}
