package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validTestConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider:    "gemini",
			Model:       "gemini-2.0-flash",
			Timeout:     60 * time.Second,
			APIKey:      "test-key",
			Temperature: 0.2,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: "8080",
			TLS:  TLSConfig{Mode: "disabled"},
		},
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
			MaxResumeSize:    1024 * 1024,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "missing API key",
			mutate:      func(c *Config) { c.AI.APIKey = "" },
			expectError: true,
			errorMsg:    "AI API key is required",
		},
		{
			name:        "non-positive timeout",
			mutate:      func(c *Config) { c.AI.Timeout = 0 },
			expectError: true,
			errorMsg:    "AI timeout must be positive",
		},
		{
			name:        "negative retries",
			mutate:      func(c *Config) { c.AI.MaxRetries = -1 },
			expectError: true,
			errorMsg:    "maxRetries cannot be negative",
		},
		{
			name:        "missing server port",
			mutate:      func(c *Config) { c.Server.Port = "" },
			expectError: true,
			errorMsg:    "server port is required",
		},
		{
			name:        "non-positive resume size",
			mutate:      func(c *Config) { c.App.MaxResumeSize = 0 },
			expectError: true,
			errorMsg:    "maxResumeSize must be positive",
		},
		{
			name:        "unsupported default format",
			mutate:      func(c *Config) { c.App.DefaultFormat = "xml" },
			expectError: true,
			errorMsg:    "invalid default format: xml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTLSMode(t *testing.T) {
	tests := []struct {
		name        string
		tls         TLSConfig
		expectError bool
		errorMsg    string
	}{
		{
			name:        "disabled mode",
			tls:         TLSConfig{Mode: "disabled"},
			expectError: false,
		},
		{
			name: "server mode valid",
			tls: TLSConfig{
				Mode:     "server",
				CertFile: "/path/to/cert.pem",
				KeyFile:  "/path/to/key.pem",
			},
			expectError: false,
		},
		{
			name: "server mode missing key",
			tls: TLSConfig{
				Mode:     "server",
				CertFile: "/path/to/cert.pem",
			},
			expectError: true,
			errorMsg:    "TLS certificate and key are required",
		},
		{
			name: "server mode duplicate cert sources",
			tls: TLSConfig{
				Mode:        "server",
				CertFile:    "/path/to/cert.pem",
				CertContent: "---PEM---",
				KeyFile:     "/path/to/key.pem",
			},
			expectError: true,
			errorMsg:    "cannot specify both certFile and certContent",
		},
		{
			name: "mutual mode valid",
			tls: TLSConfig{
				Mode:     "mutual",
				CertFile: "/path/to/cert.pem",
				KeyFile:  "/path/to/key.pem",
				CAFile:   "/path/to/ca.pem",
			},
			expectError: false,
		},
		{
			name: "mutual mode missing CA",
			tls: TLSConfig{
				Mode:     "mutual",
				CertFile: "/path/to/cert.pem",
				KeyFile:  "/path/to/key.pem",
			},
			expectError: true,
			errorMsg:    "CA certificate is required",
		},
		{
			name: "mutual mode invalid client auth policy",
			tls: TLSConfig{
				Mode:             "mutual",
				CertFile:         "/path/to/cert.pem",
				KeyFile:          "/path/to/key.pem",
				CAFile:           "/path/to/ca.pem",
				ClientAuthPolicy: "optional",
			},
			expectError: true,
			errorMsg:    "invalid clientAuthPolicy: optional",
		},
		{
			name:        "invalid mode",
			tls:         TLSConfig{Mode: "invalid"},
			expectError: true,
			errorMsg:    "invalid TLS mode: invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTLSMode(tt.tls)

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTLSVersion(t *testing.T) {
	tests := []struct {
		version     string
		expectError bool
	}{
		{"", false},
		{"1.2", false},
		{"1.3", false},
		{"1.0", true},
		{"tls13", true},
	}

	for _, tt := range tests {
		t.Run("version "+tt.version, func(t *testing.T) {
			err := validateTLSVersion(TLSConfig{MinVersion: tt.version})

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyTLSDefaults(t *testing.T) {
	cfg := validTestConfig()
	cfg.Server.TLS.Mode = "mutual"
	cfg.Server.TLS.ClientAuthPolicy = ""
	cfg.Server.TLS.MinVersion = ""

	cfg.applyTLSDefaults()

	assert.Equal(t, "require", cfg.Server.TLS.ClientAuthPolicy)
	assert.Equal(t, "1.2", cfg.Server.TLS.MinVersion)
}

func TestPromptFileValidation(t *testing.T) {
	cfg := validTestConfig()
	cfg.AI.CustomPrompts.SystemPrompts.ScreenResumeFile = "/nonexistent/prompt.txt"

	err := cfg.validatePromptFiles()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "prompt file not found")
}
