package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ZaguanLabs/tercume"
)

func TestLibreTranslateProvider_Translate(t *testing.T) {
	var got libreRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/translate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"translatedText":"Salam"}`))
	}))
	defer srv.Close()

	p := NewLibreTranslateProvider(LibreTranslateConfig{BaseURL: srv.URL + "/", APIKey: "secret"})

	out, err := p.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "az"})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if out != "Salam" {
		t.Errorf("expected Salam, got %q", out)
	}

	want := libreRequest{Q: "Hello", Source: "auto", Target: "az", Format: "text", APIKey: "secret"}
	if got != want {
		t.Errorf("request body = %+v, want %+v", got, want)
	}
	if p.Name() != LibreTranslateName {
		t.Errorf("unexpected name %q", p.Name())
	}
}

func TestLibreTranslateProvider_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		retryable bool
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, true},
		{"rate limited", http.StatusTooManyRequests, `{"error":"slow down"}`, true},
		{"bad request", http.StatusBadRequest, `{"error":"az is not supported"}`, false},
		{"empty translation", http.StatusOK, `{"translatedText":""}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewLibreTranslateProvider(LibreTranslateConfig{BaseURL: srv.URL})
			_, err := p.Translate(context.Background(), TranslateRequest{Text: "Hello", SourceLang: "en", TargetLang: "az"})

			var provErr *tercume.ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("expected ProviderError, got %v", err)
			}
			if provErr.Retryable != tt.retryable {
				t.Errorf("retryable = %v, want %v (%v)", provErr.Retryable, tt.retryable, err)
			}
		})
	}
}

func TestLibreTranslateProvider_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"translatedText":"late"}`))
	}))
	defer srv.Close()

	p := NewLibreTranslateProvider(LibreTranslateConfig{BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	if _, err := p.Translate(context.Background(), TranslateRequest{Text: "Hello", TargetLang: "az"}); err == nil {
		t.Error("expected timeout error")
	}
}
