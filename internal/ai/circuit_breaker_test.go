package ai

import (
	"errors"
	"testing"
	"time"

	"talentscreen/internal/config"

	"google.golang.org/genai"
)

func breakerConfig(enabled bool) *config.AIConfig {
	return &config.AIConfig{
		Provider: "gemini",
		Model:    "gemini-2.0-flash",
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          enabled,
			MaxRequests:      3,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			MinRequests:      3,
			FailureThreshold: 0.6,
		},
	}
}

func TestCircuitBreakerStats(t *testing.T) {
	cb := NewAICircuitBreaker("Screen", breakerConfig(true), nil)

	stats := cb.GetStats()

	name, ok := stats["name"].(string)
	if !ok {
		t.Fatal("Circuit breaker name not found")
	}
	if name != "AI-Screen" {
		t.Errorf("Expected circuit breaker name 'AI-Screen', got '%s'", name)
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

	if !cb.IsHealthy() {
		t.Error("New circuit breaker should be healthy")
	}
}

func TestDisabledCircuitBreaker(t *testing.T) {
	cb := NewAICircuitBreaker("Screen", breakerConfig(false), nil)

	if cb != nil {
		t.Fatal("Disabled circuit breaker should be nil")
	}

	// Nil breaker still executes the function directly
	called := false
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		called = true
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Execute through nil breaker failed: %v", err)
	}
	if !called {
		t.Error("Function was not executed through nil breaker")
	}

	stats := cb.GetStats()
	if enabled, _ := stats["enabled"].(bool); enabled {
		t.Error("Disabled circuit breaker should report enabled=false")
	}
	if !cb.IsHealthy() {
		t.Error("Disabled circuit breaker should be considered healthy")
	}
}

func TestCircuitBreakerPassesThroughErrors(t *testing.T) {
	cb := NewAICircuitBreaker("Screen", breakerConfig(true), nil)

	wantErr := errors.New("backend unavailable")
	_, err := cb.Execute(func() (*genai.GenerateContentResponse, error) {
		return nil, wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("Expected error %v, got %v", wantErr, err)
	}
	if !cb.IsHealthy() {
		t.Error("Single failure below minRequests should not trip the breaker")
	}
}

func TestModelCircuitBreaker(t *testing.T) {
	cb := NewModelCircuitBreaker("Screen", breakerConfig(true), nil)

	stats := cb.GetModelStats()
	name, ok := stats["name"].(string)
	if !ok {
		t.Fatal("Model circuit breaker name not found")
	}
	if name != "AI-Model-Screen" {
		t.Errorf("Expected circuit breaker name 'AI-Model-Screen', got '%s'", name)
	}
	if !cb.IsModelHealthy() {
		t.Error("New model circuit breaker should be healthy")
	}
}
