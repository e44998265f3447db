// Package structured turns a free-form LLM reply into a validated typed
// value. The contract is strict: the caller either gets a value that
// fully satisfies the target struct's validate tags, or an error.
package structured

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"ai-interviewer-be/pkg/llm"
)

var validate = validator.New()

// Complete sends a system+user prompt pair and decodes the reply into
// out, which must be a pointer to a struct. Models routinely wrap JSON
// in prose or code fences, so the first balanced object is extracted
// before decoding. Any decode or validation failure is returned as an
// error; no partially-populated value escapes.
func Complete(ctx context.Context, provider llm.LLMProvider, systemPrompt, userPrompt string, out interface{}, opts ...llm.Option) error {
	history := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}

	options := append([]llm.Option{llm.WithTemperature(0.2)}, opts...)

	response, err := provider.Chat(ctx, history, options...)
	if err != nil {
		return fmt.Errorf("completion call: %w", err)
	}

	jsonContent := ExtractJSON(response)
	if jsonContent == "" {
		return fmt.Errorf("no JSON object found in response")
	}

	decoder := json.NewDecoder(bytes.NewReader([]byte(jsonContent)))
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode structured response: %w", err)
	}

	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("response failed schema validation: %w", err)
	}

	return nil
}

// ExtractJSON pulls the first top-level JSON object out of a model reply,
// tolerating markdown fences and surrounding commentary.
func ExtractJSON(response string) string {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	startIdx := strings.Index(cleaned, "{")
	endIdx := strings.LastIndex(cleaned, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return cleaned[startIdx : endIdx+1]
}
