package tercume

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidJSON is returned when structured content cannot be parsed.
	ErrInvalidJSON = errors.New("invalid JSON")

	// ErrNotArray is returned when structured content is not a JSON array.
	ErrNotArray = errors.New("structured content is not a JSON array")
)

// describe renders "<kind> (<qualifier>): <message>: <cause>", leaving out
// the parts that are empty.
func describe(kind, qualifier, message string, cause error) string {
	s := kind
	if qualifier != "" {
		s += " (" + qualifier + ")"
	}
	if message != "" {
		s += ": " + message
	}
	if cause != nil {
		s += ": " + cause.Error()
	}
	return s
}

// ProviderError is a failure of one translation backend. The chain treats
// any provider error as a reason to try the next tier.
type ProviderError struct {
	Provider  string // backend name, empty when unknown
	Message   string
	Cause     error
	Retryable bool // whether repeating the call within the tier may help
}

func (e *ProviderError) Error() string {
	return describe("provider error", e.Provider, e.Message, e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// CacheError is a failure of the translation-cache backend. The translator
// logs and absorbs these; lookups become misses and writes are dropped.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string {
	return describe("cache error", "", e.Message, e.Cause)
}

func (e *CacheError) Unwrap() error { return e.Cause }

// FieldError is a failure to read or write one field translation row.
type FieldError struct {
	Op    string // "get" or "put"
	Key   FieldKey
	Cause error
}

func (e *FieldError) Error() string {
	where := fmt.Sprintf("%s/%d/%s/%s", e.Key.ContentType, e.Key.ContentID, e.Key.FieldPath, e.Key.TargetLang)
	return describe("field store error", e.Op, where, e.Cause)
}

func (e *FieldError) Unwrap() error { return e.Cause }

// ProcessorError is a markup processing failure.
type ProcessorError struct {
	Message     string
	Cause       error
	ContentType string // "html", "json", ...
}

func (e *ProcessorError) Error() string {
	return describe("processor error", e.ContentType, e.Message, e.Cause)
}

func (e *ProcessorError) Unwrap() error { return e.Cause }
