package server

import (
	"encoding/json"
	"time"

	"resumeforge/internal/ai"
	"resumeforge/internal/config"
	forgeErrors "resumeforge/internal/errors"
	"resumeforge/internal/store"
)

// ParseTextRequest is the request body for the parse-text endpoint
// JobMatchRequest is the request body for the job-match endpoint
// GenerateResumeRequest is the request body for the generate-resume endpoint
// ErrorResponse is the error envelope all endpoints share
type ParseTextRequest struct {
	Text string `json:"text"`
}

type JobMatchRequest struct {
	JobDescription string          `json:"jobDescription"`
	Resume         json.RawMessage `json:"resume"`
}

type GenerateResumeRequest struct {
	Resume   json.RawMessage `json:"resume"`
	Template string          `json:"template,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// aiServiceFactory builds the per-operation AI service. Swappable in tests.
type aiServiceFactory func(cfg *config.OperationAIConfig, operationType string, logger *forgeErrors.Logger) (*ai.Service, error)

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate hot-reload
	CertReloader *CertReloader

	// API Authentication
	APIKeys map[string]bool

	// Browser origins allowed to call the API
	AllowedOrigins []string

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Resume persistence
	Store store.Repository

	newAIService aiServiceFactory

	// Logger
	Logger *forgeErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *forgeErrors.Logger) *Server {
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
		AllowedOrigins: cfg.AllowedOrigins,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		newAIService:   ai.NewService,
		Logger:         logger,
	}
}
