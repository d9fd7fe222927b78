package ai

import (
	"crypto/rand"
	"errors"
	"strings"
	"testing"
	"time"

	"talentscreen/internal/config"
	"talentscreen/internal/types"
)

func TestNormalizeMatchResult(t *testing.T) {
	t.Run("sparse response gets defaults", func(t *testing.T) {
		result := normalizeMatchResult(types.MatchResult{})

		if result.MatchScore != 0 {
			t.Errorf("Expected score 0, got %d", result.MatchScore)
		}
		if result.Summary != "No summary provided." {
			t.Errorf("Unexpected default summary: %q", result.Summary)
		}
		if result.Strengths == nil || result.Weaknesses == nil || result.MissingQualifications == nil {
			t.Error("List fields must never be nil after normalization")
		}
	})

	t.Run("populated response is untouched", func(t *testing.T) {
		in := types.MatchResult{
			MatchScore:            85,
			Summary:               "Strong match.",
			Strengths:             []string{"Go"},
			Weaknesses:            []string{"No Kubernetes"},
			MissingQualifications: []string{},
		}

		result := normalizeMatchResult(in)

		if result.MatchScore != 85 || result.Summary != "Strong match." {
			t.Errorf("Normalization altered populated fields: %+v", result)
		}
		if len(result.Strengths) != 1 || result.Strengths[0] != "Go" {
			t.Errorf("Normalization altered strengths: %v", result.Strengths)
		}
	})
}

func TestGetPromptsForScreen(t *testing.T) {
	g := &GeminiGateway{config: &config.AIConfig{}}

	input := types.MatchInput{
		JobTitle:        "Backend Engineer",
		JobDescription:  "Build Go services.",
		JobRequirements: "- 5 years of Go",
		ResumeText:      "A decade of Go experience.",
	}

	systemPrompt, userPrompt := g.getPromptsForScreen(input)

	if systemPrompt != DefaultScreenSystemPrompt {
		t.Error("Expected default system prompt when no custom prompt configured")
	}
	for _, want := range []string{"Backend Engineer", "Build Go services.", "- 5 years of Go", "A decade of Go experience."} {
		if !strings.Contains(userPrompt, want) {
			t.Errorf("User prompt missing %q", want)
		}
	}
}

func TestGetPromptsForScreenCustomOverride(t *testing.T) {
	g := &GeminiGateway{config: &config.AIConfig{
		CustomPrompts: config.PromptConfig{
			SystemPrompts: config.SystemPrompts{ScreenResume: "custom system"},
			UserPrompts:   config.UserPrompts{ScreenResume: "job=%s desc=%s req=%s resume=%s"},
		},
	}}

	systemPrompt, userPrompt := g.getPromptsForScreen(types.MatchInput{
		JobTitle:        "T",
		JobDescription:  "D",
		JobRequirements: "R",
		ResumeText:      "X",
	})

	if systemPrompt != "custom system" {
		t.Errorf("Expected custom system prompt, got %q", systemPrompt)
	}
	if userPrompt != "job=T desc=D req=R resume=X" {
		t.Errorf("Unexpected formatted user prompt: %q", userPrompt)
	}
}

func TestGetPromptsForScreenEmptyRequirements(t *testing.T) {
	g := &GeminiGateway{config: &config.AIConfig{
		CustomPrompts: config.PromptConfig{
			UserPrompts: config.UserPrompts{ScreenResume: "job=%s desc=%s req=%s resume=%s"},
		},
	}}

	_, userPrompt := g.getPromptsForScreen(types.MatchInput{
		JobTitle:       "T",
		JobDescription: "D",
		ResumeText:     "X",
	})

	if userPrompt != "job=T desc=D req=None specified. resume=X" {
		t.Errorf("Blank requirements should render a placeholder, got %q", userPrompt)
	}
}

func TestBuildScreenSchemaScoreBounds(t *testing.T) {
	g := &GeminiGateway{config: &config.AIConfig{}}

	cfg := g.buildScreenSchema()

	score := cfg.ResponseSchema.Properties["matchScore"]
	if score == nil {
		t.Fatal("Schema is missing the matchScore property")
	}
	if score.Minimum == nil || *score.Minimum != 0 {
		t.Errorf("matchScore minimum should be 0, got %v", score.Minimum)
	}
	if score.Maximum == nil || *score.Maximum != 100 {
		t.Errorf("matchScore maximum should be 100, got %v", score.Maximum)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestSecureJitter(t *testing.T) {
	if j := secureJitter(rand.Reader, time.Second); j < 0 || j >= time.Second {
		t.Errorf("Jitter out of range: %v", j)
	}
	if j := secureJitter(failingReader{}, time.Second); j != 0 {
		t.Errorf("Expected zero jitter on a failing random source, got %v", j)
	}
	if j := secureJitter(rand.Reader, 0); j != 0 {
		t.Errorf("Expected zero jitter for non-positive max, got %v", j)
	}
}
