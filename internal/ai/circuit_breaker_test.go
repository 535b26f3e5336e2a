package ai

import (
	"testing"
	"time"

	"resumeforge/internal/config"
)

func TestIndependentCircuitBreakerConfigurations(t *testing.T) {
	// Each operation gets its own breaker with its own settings.
	parseTextConfig := &config.OperationAIConfig{
		Provider: "openrouter",
		Model:    "meta-llama/llama-3.1-8b-instruct",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}

	jobMatchConfig := &config.OperationAIConfig{
		Provider: "openrouter",
		Model:    "meta-llama/llama-3.1-8b-instruct",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          45 * time.Second,
			MinRequests:      2,
			FailureThreshold: 0.7,
		},
	}

	parseTextCB := NewCompletionBreaker("ParseText", parseTextConfig, nil)
	jobMatchCB := NewCompletionBreaker("JobMatch", jobMatchConfig, nil)

	t.Run("ParseTextBreaker", func(t *testing.T) {
		stats := parseTextCB.GetStats()

		name, ok := stats["name"].(string)
		if !ok {
			t.Fatal("Circuit breaker name not found")
		}
		if name != "AI-ParseText" {
			t.Errorf("Expected circuit breaker name 'AI-ParseText', got '%s'", name)
		}

		state, ok := stats["state"].(string)
		if !ok {
			t.Fatal("Circuit breaker state not found")
		}
		if state != "closed" {
			t.Errorf("Expected initial state 'closed', got '%s'", state)
		}

		enabled, ok := stats["enabled"].(bool)
		if !ok {
			t.Fatal("Circuit breaker enabled status not found")
		}
		if !enabled {
			t.Error("Circuit breaker should be enabled")
		}
	})

	t.Run("JobMatchBreaker", func(t *testing.T) {
		stats := jobMatchCB.GetStats()

		name, ok := stats["name"].(string)
		if !ok {
			t.Fatal("Circuit breaker name not found")
		}
		if name != "AI-JobMatch" {
			t.Errorf("Expected circuit breaker name 'AI-JobMatch', got '%s'", name)
		}
	})

	t.Run("IndependentInstances", func(t *testing.T) {
		if parseTextCB == jobMatchCB {
			t.Error("Breakers for different operations should be different instances")
		}
	})

	t.Run("IndependentHealthStates", func(t *testing.T) {
		if !parseTextCB.IsHealthy() {
			t.Error("ParseText breaker should be healthy initially")
		}
		if !jobMatchCB.IsHealthy() {
			t.Error("JobMatch breaker should be healthy initially")
		}
	})
}

func TestCompletionBreakerDisabled(t *testing.T) {
	disabledConfig := &config.OperationAIConfig{
		Provider: "openrouter",
		Model:    "test-model",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled: false,
		},
	}

	cb := NewCompletionBreaker("Disabled", disabledConfig, nil)
	if cb != nil {
		t.Fatal("Circuit breaker should be nil when disabled")
	}

	// Nil breakers pass calls straight through.
	got, err := cb.Execute(func() (string, error) { return "reply", nil })
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != "reply" {
		t.Errorf("Execute() = %q, want 'reply'", got)
	}
	if !cb.IsHealthy() {
		t.Error("nil breaker should report healthy")
	}
}
