package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"talentscreen/internal/config"
	tsErrors "talentscreen/internal/errors"
	"talentscreen/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiGateway implements Gateway for Google Gemini
type GeminiGateway struct {
	client         *genai.Client
	httpClient     *http.Client
	config         *config.AIConfig
	circuitBreaker *AICircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *tsErrors.Logger
}

// Ensure GeminiGateway implements Gateway
var _ Gateway = (*GeminiGateway)(nil)

// NewGeminiGateway creates a new Gemini gateway instance
func NewGeminiGateway(cfg *config.AIConfig, logger *tsErrors.Logger) (*GeminiGateway, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, tsErrors.NewAIError(tsErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	circuitBreaker := NewAICircuitBreaker("screen", cfg, logger)
	modelBreaker := NewModelCircuitBreaker("screen", cfg, logger)

	return &GeminiGateway{
		client: client,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config:         cfg,
		circuitBreaker: circuitBreaker,
		modelBreaker:   modelBreaker,
		logger:         logger,
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiGateway) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	// Create a timeout context for the model check
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Get model information from Gemini API with circuit breaker
	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)

		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// executeWithRetry executes an AI operation with retry logic and exponential backoff
// secureJitter draws a random delay in [0, max) to spread out retries.
// Falls back to zero jitter when the random source fails.
func secureJitter(r io.Reader, max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	jitterBig, err := rand.Int(r, big.NewInt(int64(max)))
	if err != nil {
		return 0
	}
	return time.Duration(jitterBig.Int64())
}

func (g *GeminiGateway) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", g.config.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitter := secureJitter(rand.Reader, time.Duration(float64(baseDelay)*0.1))
			// Cap maximum backoff at 30 seconds
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on certain errors (auth, invalid input, etc.)
		if !g.isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	// Log final failure
	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", g.config.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, g.config.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func (g *GeminiGateway) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Check for network errors (timeouts, connection issues)
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true // Retry on timeouts
		}
		// Consider other network errors retryable (e.g., connection refused)
		return true
	}

	// Check for Google API errors (HTTP status codes)
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// ScreenResume implements Gateway for resume screening against a job
func (g *GeminiGateway) ScreenResume(ctx context.Context, input types.MatchInput) (types.MatchResult, *TokenUsage, error) {
	tracer := otel.Tracer("talentscreen.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.screen_resume")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(g.config.Temperature)),
		attribute.String("job.title", input.JobTitle),
		attribute.Int("input.resume_length", len(input.ResumeText)),
	)

	systemPrompt, userPrompt := g.getPromptsForScreen(input)
	genaiConfig := g.buildScreenSchema()

	if g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, "screen_resume", func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return types.MatchResult{}, nil, tsErrors.NewAIError(tsErrors.ErrCodeAIServiceFailed,
			"Failed to generate content for screen_resume", err)
	}

	var output types.MatchResult
	if err := json.Unmarshal([]byte(result.Text()), &output); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return types.MatchResult{}, nil, tsErrors.NewAIError(tsErrors.ErrCodeAIResponseParse,
			"Failed to parse AI response for screen_resume", err)
	}

	output = normalizeMatchResult(output)

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("match.score", output.MatchScore),
		attribute.Int("match.strengths_count", len(output.Strengths)),
	)

	return output, tokenUsage, nil
}

// normalizeMatchResult fills defensive defaults so downstream code never
// sees nil lists or an absent summary from a sparse model response.
func normalizeMatchResult(result types.MatchResult) types.MatchResult {
	if result.Summary == "" {
		result.Summary = "No summary provided."
	}
	if result.Strengths == nil {
		result.Strengths = []string{}
	}
	if result.Weaknesses == nil {
		result.Weaknesses = []string{}
	}
	if result.MissingQualifications == nil {
		result.MissingQualifications = []string{}
	}
	return result
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiGateway) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	// Overall health - both breakers must be healthy
	aiHealthy := g.circuitBreaker.IsHealthy()
	modelHealthy := g.modelBreaker.IsModelHealthy()
	stats["overall_healthy"] = aiHealthy && modelHealthy

	return stats
}

// Close implements Gateway
func (g *GeminiGateway) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	// Probably needed in streaming mode
	return nil
}

// buildScreenSchema creates the schema for screening requests
func (g *GeminiGateway) buildScreenSchema() *genai.GenerateContentConfig {
	scoreMin, scoreMax := 0.0, 100.0
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"matchScore": {Type: genai.TypeInteger, Minimum: &scoreMin, Maximum: &scoreMax},
				"summary":    {Type: genai.TypeString},
				"strengths": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"weaknesses": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"missingQualifications": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"matchScore", "summary", "strengths", "weaknesses", "missingQualifications"},
		},
	}

	// Apply temperature configuration if set
	if g.config.Temperature > 0 {
		temperature := g.config.Temperature
		config.Temperature = &temperature
	}

	return config
}

// getPromptsForScreen returns system and user prompts for screening
func (g *GeminiGateway) getPromptsForScreen(input types.MatchInput) (string, string) {
	systemPrompt := resolvePrompt(
		g.config.CustomPrompts.SystemPrompts.ScreenResume,
		DefaultScreenSystemPrompt,
	)
	userPrompt := resolvePrompt(
		g.config.CustomPrompts.UserPrompts.ScreenResume,
		DefaultScreenUserPrompt,
	)

	// Requirements are optional on a job; don't render an empty section
	requirements := input.JobRequirements
	if strings.TrimSpace(requirements) == "" {
		requirements = "None specified."
	}

	// Format user prompt with dynamic content
	formattedUserPrompt := fmt.Sprintf(userPrompt,
		input.JobTitle, input.JobDescription, requirements, input.ResumeText)

	return systemPrompt, formattedUserPrompt
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
