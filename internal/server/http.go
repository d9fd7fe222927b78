package server

import (
	"time"

	"talentscreen/internal/ai"
	"talentscreen/internal/config"
	tsErrors "talentscreen/internal/errors"
	"talentscreen/internal/screening"
	"talentscreen/internal/store"
)

// CreateJobRequest is the request body for POST /api/jobs.
type CreateJobRequest struct {
	Title        string `json:"title"`
	Department   string `json:"department,omitempty"`
	Description  string `json:"description"`
	Requirements string `json:"requirements,omitempty"`
}

// AnalyzeRequest is the request body for POST /api/analyze.
type AnalyzeRequest struct {
	JobID         int64  `json:"jobId"`
	ResumeText    string `json:"resumeText"`
	CandidateName string `json:"candidateName"`
	FileName      string `json:"fileName,omitempty"`
}

// ErrorResponse is the JSON body for all error responses. Field is only
// populated for validation errors, naming the offending request field.
type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate management
	CertificateManager *CertificateManager

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Domain dependencies
	Store        store.Store
	Gateway      ai.Gateway
	Orchestrator *screening.Orchestrator

	// Logger
	Logger *tsErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
// (Refactored to reduce long parameter list in NewServer)
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, st store.Store, gateway ai.Gateway, logger *tsErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Store:          st,
		Gateway:        gateway,
		Orchestrator:   screening.NewOrchestrator(st, gateway, logger),
		Logger:         logger,
	}
}
