package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"horse.fit/polyglot/internal/language"
)

const defaultCallTimeout = 10 * time.Second

// LibreProvider translates text through a LibreTranslate-compatible HTTP
// endpoint. The wire contract is POST {"q","source","target","format"} with a
// {"translatedText": ...} response.
type LibreProvider struct {
	name        string
	endpointURL string
	timeout     time.Duration
	client      *http.Client
}

// NewLibreProvider builds a provider for one endpoint. timeout bounds each
// individual call; zero uses the default of 10s.
func NewLibreProvider(name, endpointURL string, timeout time.Duration) *LibreProvider {
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &LibreProvider{
		name:        strings.ToLower(strings.TrimSpace(name)),
		endpointURL: strings.TrimSpace(endpointURL),
		timeout:     timeout,
		client:      &http.Client{},
	}
}

func (p *LibreProvider) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type libreResponse struct {
	TranslatedText   string `json:"translatedText"`
	DetectedLanguage *struct {
		Language   string  `json:"language"`
		Confidence float64 `json:"confidence"`
	} `json:"detectedLanguage,omitempty"`
}

func (p *LibreProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if p == nil {
		return nil, fmt.Errorf("libre provider is nil")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	targetLang := language.NormalizeCode(req.TargetLang)
	if targetLang == "" {
		return nil, fmt.Errorf("target language is required")
	}
	sourceLang := language.NormalizeCode(req.SourceLang)
	if sourceLang == "" {
		sourceLang = "auto"
	}

	body, err := json.Marshal(libreRequest{
		Q:      text,
		Source: sourceLang,
		Target: targetLang,
		Format: "text",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal translation request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, p.endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build translation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send translation request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read translation response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("endpoint %s: %w", p.endpointURL, ErrProviderRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("translation endpoint status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed libreResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode translation response: %w", err)
	}

	translated := strings.TrimSpace(parsed.TranslatedText)
	if translated == "" {
		return nil, fmt.Errorf("translation response was empty")
	}

	resolvedSource := sourceLang
	if parsed.DetectedLanguage != nil {
		if detected := language.NormalizeCode(parsed.DetectedLanguage.Language); detected != "" {
			resolvedSource = detected
		}
	}

	return &TranslateResponse{
		Text:         translated,
		SourceLang:   resolvedSource,
		TargetLang:   targetLang,
		ProviderName: p.name,
		LatencyMs:    time.Since(started).Milliseconds(),
	}, nil
}
