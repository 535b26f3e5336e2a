package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"resumeforge/internal/config"
	forgeErrors "resumeforge/internal/errors"
)

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	return s.AppConfig.Observability.HealthCheck.Timeout
}

// healthHandler provides a comprehensive health check endpoint including AI model status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "resumeforge",
		"version": s.Version,
	}

	// Check AI model availability for all operations
	aiStatus := s.checkAIModelsHealth()
	response["ai_models"] = aiStatus

	// Check resume store connectivity
	storeStatus := s.checkStoreHealth()
	response["store"] = storeStatus

	// Check certificate status when hot-reload is active
	certStatus := s.checkCertificateHealth()
	if certStatus != nil {
		response["certificates"] = certStatus
	}

	// Determine overall health status
	overallHealthy := true
	for _, modelStatus := range aiStatus {
		if modelInfo, ok := modelStatus.(map[string]any); ok {
			if available, exists := modelInfo["available"]; exists {
				if avail, ok := available.(bool); ok && !avail {
					overallHealthy = false
					break
				}
			}
		}
	}

	if healthy, ok := storeStatus["healthy"].(bool); ok && !healthy {
		overallHealthy = false
	}

	if certStatus != nil {
		if healthy, exists := certStatus["healthy"]; exists {
			if certHealthy, ok := healthy.(bool); ok && !certHealthy {
				overallHealthy = false
			}
		}
	}

	if !overallHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// checkAIModelsHealth checks the health of the models behind each of the
// four resume operations.
func (s *Server) checkAIModelsHealth() map[string]any {
	timeout := s.getHealthCheckTimeout()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	operations := []struct {
		name string
		cfg  config.OperationAIConfig
	}{
		{"parseFile", s.AppConfig.GetParseFileConfig()},
		{"parseText", s.AppConfig.GetParseTextConfig()},
		{"jobMatch", s.AppConfig.GetJobMatchConfig()},
		{"generateLayout", s.AppConfig.GetGenerateLayoutConfig()},
	}

	aiStatus := make(map[string]any)
	for _, op := range operations {
		service, err := s.newAIService(&op.cfg, op.name, s.Logger)
		if err != nil {
			aiStatus[op.name] = map[string]any{
				"available": false,
				"error":     fmt.Sprintf("Failed to create %s service: %v", op.name, err),
			}
			continue
		}
		aiStatus[op.name] = service.GetModelInfo(ctx)
	}

	return aiStatus
}

// checkStoreHealth reports whether the resume store answers a lightweight
// read. With the store disabled the in-memory fallback is always healthy.
func (s *Server) checkStoreHealth() map[string]any {
	status := map[string]any{
		"enabled": s.AppConfig.Store.Enabled,
	}

	if s.Store == nil {
		status["healthy"] = false
		status["error"] = "store not initialized"
		return status
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.getHealthCheckTimeout())
	defer cancel()

	if _, err := s.Store.List(ctx, "health-check"); err != nil {
		status["healthy"] = false
		status["error"] = err.Error()
		return status
	}

	status["healthy"] = true
	return status
}

// checkCertificateHealth checks the health of TLS certificates
func (s *Server) checkCertificateHealth() map[string]any {
	if s.CertReloader == nil {
		return nil
	}

	certStatus := make(map[string]any)

	timeToExpiry, err := s.CertReloader.CheckExpiry()
	if err != nil {
		certStatus["healthy"] = false
		certStatus["error"] = fmt.Sprintf("Failed to check certificate expiry: %v", err)
		return certStatus
	}

	criticalThreshold := 24 * time.Hour
	warningThreshold := 7 * 24 * time.Hour

	certStatus["time_to_expiry_hours"] = int(timeToExpiry.Hours())
	certStatus["time_to_expiry"] = timeToExpiry.String()

	switch {
	case timeToExpiry <= 0:
		certStatus["healthy"] = false
		certStatus["status"] = "expired"
		certStatus["message"] = "Certificate has expired"
	case timeToExpiry <= criticalThreshold:
		certStatus["healthy"] = false
		certStatus["status"] = "critical"
		certStatus["message"] = "Certificate expires within 24 hours"
	case timeToExpiry <= warningThreshold:
		certStatus["healthy"] = true
		certStatus["status"] = "warning"
		certStatus["message"] = "Certificate expires within 7 days"
	default:
		certStatus["healthy"] = true
		certStatus["status"] = "ok"
		certStatus["message"] = "Certificate is valid"
	}

	certStatus["auto_reload"] = map[string]any{
		"enabled":              s.TLSConfig.AutoReload.Enabled,
		"file_watcher_enabled": s.TLSConfig.AutoReload.FileWatcher.Enabled,
		"watcher_running":      s.CertReloader.IsWatching(),
		"reload_count":         s.CertReloader.ReloadCount(),
	}

	return certStatus
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "resumeforge",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"allowed_origins":        s.AllowedOrigins,
		},
	}

	// Add rate limiting stats if enabled
	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	// Add configuration info
	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	response["store"] = map[string]any{
		"enabled": s.AppConfig.Store.Enabled,
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

// writeAppError maps service errors onto HTTP responses. Validation and
// schema problems surface to the caller with their specific message and a
// 400; anything upstream or internal hides behind a generic 500 so model
// failures never leak provider details.
func writeAppError(w http.ResponseWriter, logger *forgeErrors.Logger, err error, fallback string) {
	var appErr *forgeErrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case forgeErrors.ErrorTypeValidation, forgeErrors.ErrorTypeSchema:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			response := ErrorResponse{
				Error:   fallback,
				Code:    appErr.Code,
				Message: appErr.Message,
			}
			if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
				log.Printf("Failed to encode error response: %v", encodeErr)
			}
			return
		case forgeErrors.ErrorTypeStore:
			status := http.StatusInternalServerError
			if appErr.Code == forgeErrors.ErrCodeDocumentNotFound {
				status = http.StatusNotFound
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			response := ErrorResponse{
				Error:   fallback,
				Code:    appErr.Code,
				Message: appErr.Message,
			}
			if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
				log.Printf("Failed to encode error response: %v", encodeErr)
			}
			return
		}
	}

	if logger != nil {
		logger.LogError(err, fallback)
	}
	writeErrorResponse(w, fallback, "The request could not be completed. Please try again.", http.StatusInternalServerError)
}
