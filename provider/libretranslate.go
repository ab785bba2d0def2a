package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ZaguanLabs/tercume"
	"github.com/go-resty/resty/v2"
)

// LibreTranslateName is the provider name recorded on cache entries.
const LibreTranslateName = "libretranslate"

// LibreTranslateConfig holds configuration for a self-hosted LibreTranslate
// instance.
type LibreTranslateConfig struct {
	BaseURL string        // e.g. "http://localhost:5000"
	APIKey  string        // optional
	Timeout time.Duration // HTTP client timeout (default: 5s)
}

// LibreTranslateProvider calls the LibreTranslate /translate endpoint.
type LibreTranslateProvider struct {
	baseURL string
	apiKey  string
	http    *resty.Client
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
}

type libreError struct {
	Error string `json:"error"`
}

// NewLibreTranslateProvider creates a LibreTranslate client.
func NewLibreTranslateProvider(cfg LibreTranslateConfig) *LibreTranslateProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "http://localhost:5000"
	}
	return &LibreTranslateProvider{
		baseURL: base,
		apiKey:  cfg.APIKey,
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", tercume.UserAgent()),
	}
}

// Name returns the provider name.
func (p *LibreTranslateProvider) Name() string { return LibreTranslateName }

// Translate sends the text to LibreTranslate. A missing or automatic source
// language is sent as "auto".
func (p *LibreTranslateProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	source := req.SourceLang
	if source == "" {
		source = tercume.AutoSource
	}

	var result libreResponse
	var apiErr libreError
	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(libreRequest{
			Q:      req.Text,
			Source: source,
			Target: req.TargetLang,
			Format: "text",
			APIKey: p.apiKey,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post(p.baseURL + "/translate")
	if err != nil {
		return "", &tercume.ProviderError{
			Provider:  LibreTranslateName,
			Message:   "request failed",
			Cause:     err,
			Retryable: true,
		}
	}
	if resp.IsError() {
		msg := apiErr.Error
		if msg == "" {
			msg = resp.String()
		}
		code := resp.StatusCode()
		return "", &tercume.ProviderError{
			Provider:  LibreTranslateName,
			Message:   fmt.Sprintf("%s: %s", resp.Status(), msg),
			Retryable: code == http.StatusTooManyRequests || code >= 500,
		}
	}
	if result.TranslatedText == "" {
		return "", &tercume.ProviderError{
			Provider: LibreTranslateName,
			Message:  "empty translatedText in response",
		}
	}

	return result.TranslatedText, nil
}

// Verify LibreTranslateProvider implements Provider
var _ Provider = (*LibreTranslateProvider)(nil)
