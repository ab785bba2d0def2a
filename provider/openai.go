package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ZaguanLabs/tercume"
	"github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"
)

// OpenAIName is the provider name recorded on cache entries.
const OpenAIName = "openai"

// OpenAIProvider implements Provider using OpenAI's chat completion API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
	HTTPClient  *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string { return OpenAIName }

// Translate translates a single text using OpenAI.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return req.Text, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", &tercume.ProviderError{
			Provider:  OpenAIName,
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &tercume.ProviderError{
			Provider:  OpenAIName,
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return p.parseResponse(resp.Choices[0].Message.Content)
}

func (p *OpenAIProvider) buildSystemPrompt(req TranslateRequest) string {
	sourceName := "the detected source language"
	if req.SourceLang != "" && req.SourceLang != tercume.AutoSource {
		sourceName = tercume.GetLanguageName(req.SourceLang)
	}
	targetName := tercume.GetLanguageName(req.TargetLang)

	return fmt.Sprintf(`# Role
You are a professional translator for an education platform. You translate from %s to %s.

# Rules
- Translate the user's message into natural, idiomatic %s.
- Tokens of the form __PROTECTED_0__ or __BUTTON_0__ are placeholders. Copy them unchanged and keep them in a grammatically sensible position.
- Do NOT translate URLs, email addresses or code.
- Preserve leading and trailing whitespace and line breaks.
- If the text is already in %s, return it unchanged.

# Format
Return a valid JSON object with a single key "translation" holding the translated string.
Example: { "translation": "..." }
Do NOT wrap the object in Markdown code blocks.`, sourceName, targetName, targetName, targetName)
}

func (p *OpenAIProvider) parseResponse(content string) (string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if gjson.Valid(content) {
		parsed := gjson.Parse(content)
		if v := parsed.Get("translation"); v.Type == gjson.String {
			return v.String(), nil
		}
		// Fallback: first string value of the object
		var first string
		parsed.ForEach(func(_, value gjson.Result) bool {
			if value.Type == gjson.String {
				first = value.String()
				return false
			}
			return true
		})
		if first != "" {
			return first, nil
		}
	}

	return "", &tercume.ProviderError{
		Provider:  OpenAIName,
		Message:   "invalid response format from OpenAI",
		Retryable: false,
	}
}

func isRetryableError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"connection reset",
		"temporary",
	}
	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
