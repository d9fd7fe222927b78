package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptsFromFiles loads custom prompts from external files if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	if c.AI.CustomPrompts.SystemPrompts.ScreenResumeFile != "" {
		content, err := c.loadPromptFromFile(c.AI.CustomPrompts.SystemPrompts.ScreenResumeFile, "system", "screenResume")
		if err != nil {
			return fmt.Errorf("failed to load system screen prompt: %w", err)
		}
		c.AI.CustomPrompts.SystemPrompts.ScreenResume = content
	}

	if c.AI.CustomPrompts.UserPrompts.ScreenResumeFile != "" {
		content, err := c.loadPromptFromFile(c.AI.CustomPrompts.UserPrompts.ScreenResumeFile, "user", "screenResume")
		if err != nil {
			return fmt.Errorf("failed to load user screen prompt: %w", err)
		}
		c.AI.CustomPrompts.UserPrompts.ScreenResume = content
	}

	c.logPromptLoadingSummary()

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func (c *Config) loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	// Log successful loading
	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	// Helper function to validate a file path
	validateFile := func(filePath, promptType, operation string) {
		if filePath == "" {
			return // No file specified, skip validation
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	validateFile(c.AI.CustomPrompts.SystemPrompts.ScreenResumeFile, "system", "screenResume")
	validateFile(c.AI.CustomPrompts.UserPrompts.ScreenResumeFile, "user", "screenResume")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs a summary of loaded prompts
func (c *Config) logPromptLoadingSummary() {
	log.Println("[CONFIG] === Custom Prompt Loading Summary ===")

	promptCount := 0
	if c.AI.CustomPrompts.SystemPrompts.ScreenResume != "" {
		log.Println("[CONFIG] Custom system screen prompt: loaded from config/file")
		promptCount++
	}
	if c.AI.CustomPrompts.UserPrompts.ScreenResume != "" {
		log.Println("[CONFIG] Custom user screen prompt: loaded from config/file")
		promptCount++
	}

	if promptCount == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", promptCount)
	}

	log.Println("[CONFIG] ==========================================")
}
