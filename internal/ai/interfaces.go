package ai

import (
	"context"

	"talentscreen/internal/types"
)

// Gateway is the interface to the AI matching backend.
// ScreenResume returns token usage information - callers can ignore it if not needed
type Gateway interface {
	ScreenResume(ctx context.Context, input types.MatchInput) (types.MatchResult, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	GetCircuitBreakerStats() map[string]any
	Close() error
}
