package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "openrouter")
	v.SetDefault("ai.model", "meta-llama/llama-3.1-8b-instruct")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.useSystemPrompts", true)

	// OpenRouter endpoint defaults. AppURL and AppName ride along as the
	// HTTP-Referer and X-Title attribution headers.
	v.SetDefault("ai.openrouter.baseUrl", "https://openrouter.ai/api/v1")
	v.SetDefault("ai.openrouter.appUrl", "http://localhost:5173")
	v.SetDefault("ai.openrouter.appName", "Resume Builder")

	// AI Configuration - ParseFile operation defaults (vision model)
	v.SetDefault("ai.parseFile.provider", "openrouter")
	v.SetDefault("ai.parseFile.model", "meta-llama/llama-3.2-70b-vision-instruct")
	v.SetDefault("ai.parseFile.timeout", 90*time.Second) // Vision parsing is the slowest operation
	v.SetDefault("ai.parseFile.apiKey", "")
	v.SetDefault("ai.parseFile.temperature", 0.1)
	v.SetDefault("ai.parseFile.useSystemPrompts", true)

	// AI Configuration - ParseText operation defaults
	v.SetDefault("ai.parseText.provider", "openrouter")
	v.SetDefault("ai.parseText.model", "meta-llama/llama-3.1-8b-instruct")
	v.SetDefault("ai.parseText.timeout", 60*time.Second)
	v.SetDefault("ai.parseText.apiKey", "")
	v.SetDefault("ai.parseText.temperature", 0.15)
	v.SetDefault("ai.parseText.useSystemPrompts", true)

	// AI Configuration - JobMatch operation defaults
	v.SetDefault("ai.jobMatch.provider", "openrouter")
	v.SetDefault("ai.jobMatch.model", "meta-llama/llama-3.1-8b-instruct")
	v.SetDefault("ai.jobMatch.timeout", 75*time.Second)
	v.SetDefault("ai.jobMatch.apiKey", "")
	v.SetDefault("ai.jobMatch.temperature", 0.35) // Some creative latitude for tailoring
	v.SetDefault("ai.jobMatch.useSystemPrompts", true)

	// AI Configuration - GenerateLayout operation defaults
	v.SetDefault("ai.generateLayout.provider", "openrouter")
	v.SetDefault("ai.generateLayout.model", "meta-llama/llama-3.1-70b-instruct")
	v.SetDefault("ai.generateLayout.timeout", 75*time.Second)
	v.SetDefault("ai.generateLayout.apiKey", "")
	v.SetDefault("ai.generateLayout.temperature", 0.2)
	v.SetDefault("ai.generateLayout.useSystemPrompts", true)

	// Circuit Breaker Configuration defaults for all operations.
	// Disabled by default; each model call is a single attempt either way.
	for _, op := range []string{"parseFile", "parseText", "jobMatch", "generateLayout"} {
		v.SetDefault("ai."+op+".circuitBreaker.enabled", false)
		v.SetDefault("ai."+op+".circuitBreaker.maxRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.interval", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.timeout", 60*time.Second)
		v.SetDefault("ai."+op+".circuitBreaker.minRequests", 3)
		v.SetDefault("ai."+op+".circuitBreaker.failureThreshold", 0.6)
	}

	// Server Configuration
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "4000")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second) // Model calls can run long
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxRequestSize", 8*1024*1024) // 8MB, bounds resume uploads

	// CORS defaults for the local browser client
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:5173"})

	// TLS Configuration defaults
	v.SetDefault("server.tls.mode", "disabled") // disabled, server, mutual
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.caFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")           // TLS 1.2 minimum
	v.SetDefault("server.tls.cipherSuites", []string{})    // Use Go defaults
	v.SetDefault("server.tls.clientAuthPolicy", "require") // require, request, verify
	v.SetDefault("server.tls.insecureSkipVerify", false)
	v.SetDefault("server.tls.serverName", "")

	// Auto-reload configuration defaults
	v.SetDefault("server.tls.autoReload.enabled", true)
	v.SetDefault("server.tls.autoReload.fileWatcher.enabled", true)
	v.SetDefault("server.tls.autoReload.fileWatcher.debounceDelay", time.Second)

	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})

	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// Store Configuration
	v.SetDefault("store.enabled", false)
	v.SetDefault("store.uri", "mongodb://localhost:27017")
	v.SetDefault("store.database", "resumeforge")
	v.SetDefault("store.collection", "resumes")
	v.SetDefault("store.timeout", 10*time.Second)
	v.SetDefault("store.maxPoolSize", 100)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.modelKey", "")
	v.SetDefault("vault.secrets.tlsCerts", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumeforge")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	// Tracing Configuration
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Custom Metrics Configuration
	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackModelInfo", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackContentSizes", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackCertExpiry", true)

	// Console Configuration
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	// Health Check Configuration
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}
