package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// StripCodeFences removes a surrounding Markdown code fence from a model
// response. Models that ignore JSON response mode often wrap the payload in
// ```json ... ``` anyway.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line ("json", "JSON", or empty)
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// GenerateJSON sends a prompt and decodes the JSON response into out.
func GenerateJSON(ctx context.Context, provider LLMProvider, prompt string, out any, options ...Option) error {
	options = append(options, WithJSONResponse())
	raw, err := provider.Generate(ctx, prompt, options...)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(StripCodeFences(raw)), out); err != nil {
		return fmt.Errorf("decode model response: %w", err)
	}
	return nil
}
