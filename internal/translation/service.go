package translation

import (
	"context"
	"errors"
)

// PassthroughProvider marks responses answered without any provider call
// because the source language already matches the target.
const PassthroughProvider = "passthrough"

var (
	// ErrProviderRateLimited marks a 429 from a provider endpoint.
	ErrProviderRateLimited = errors.New("provider rate limited")
	// ErrUntranslated marks a provider response that returned the input
	// unchanged, treated as a failed attempt.
	ErrUntranslated = errors.New("provider returned untranslated text")
	// ErrAllProvidersExhausted is the terminal dispatch outcome when every
	// provider was skipped or failed.
	ErrAllProvidersExhausted = errors.New("all translation providers exhausted")
)

// Provider translates free-form text between languages.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)
	Name() string
}

// TranslateRequest describes one translation request.
type TranslateRequest struct {
	Text       string
	SourceLang string // ISO 639-1 code, or empty/"auto" for detection
	TargetLang string
}

// TranslateResponse contains translated text and provider metadata.
type TranslateResponse struct {
	Text         string
	SourceLang   string
	TargetLang   string
	ProviderName string
	LatencyMs    int64
	Cached       bool
}
