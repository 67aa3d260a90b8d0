package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"horse.fit/polyglot/internal/auth"
	"horse.fit/polyglot/internal/language"
	"horse.fit/polyglot/internal/pipeline"
)

type translateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"target_lang"`
	SourceLang string `json:"source_lang"`

	// Flag is an alternative to TargetLang: a flag emoji resolved through
	// the flag table.
	Flag string `json:"flag"`

	RequesterKey string `json:"requester_key"`
	ScopeKey     string `json:"scope_key"`
	DebounceKey  string `json:"debounce_key"`
}

type translateResponse struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang"`
	Provider   string `json:"provider"`
	Cached     bool   `json:"cached"`
	LatencyMs  int64  `json:"latency_ms,omitempty"`
}

func (s *Server) handleTranslate(c echo.Context) error {
	var req translateRequest
	if err := decodeJSONBody(c, &req); err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	targetLang := language.NormalizeCode(req.TargetLang)
	if targetLang == "" && strings.TrimSpace(req.Flag) != "" {
		code, ok := language.CodeForFlag(strings.TrimSpace(req.Flag))
		if !ok {
			return failValidation(c, map[string]string{"flag": "is not a recognized flag emoji"})
		}
		targetLang = code
	}
	if targetLang == "" {
		return failValidation(c, map[string]string{"target_lang": "is required"})
	}

	sink, err := s.pipeline.Submit(c.Request().Context(), pipeline.Request{
		Text:         req.Text,
		TargetLang:   targetLang,
		SourceLang:   req.SourceLang,
		RequesterKey: strings.TrimSpace(req.RequesterKey),
		ScopeKey:     strings.TrimSpace(req.ScopeKey),
		DebounceKey:  strings.TrimSpace(req.DebounceKey),
	})
	if err != nil {
		return s.translateError(c, err)
	}

	timer := time.NewTimer(s.opts.RequestWait)
	defer timer.Stop()

	select {
	case out := <-sink:
		if out.Err != nil {
			return s.translateError(c, out.Err)
		}
		return success(c, translateResponse{
			Text:       out.Result.Text,
			SourceLang: out.Result.SourceLang,
			TargetLang: out.Result.TargetLang,
			Provider:   out.Result.ProviderName,
			Cached:     out.Result.Cached,
			LatencyMs:  out.Result.LatencyMs,
		})
	case <-timer.C:
		return fail(c, http.StatusGatewayTimeout, "Translation did not complete in time", nil)
	case <-c.Request().Context().Done():
		return c.Request().Context().Err()
	}
}

func (s *Server) translateError(c echo.Context, err error) error {
	var limited *pipeline.RateLimitedError
	switch {
	case errors.As(err, &limited):
		return failRateLimited(c, limited.Level, limited.RetryAfter)
	case errors.Is(err, pipeline.ErrEmptyText):
		return failValidation(c, map[string]string{"text": "is required"})
	case errors.Is(err, pipeline.ErrTextTooLong):
		return failValidation(c, map[string]string{"text": "exceeds the maximum length"})
	case errors.Is(err, pipeline.ErrQueueFull):
		return fail(c, http.StatusServiceUnavailable, "Translation queue is full, try again later", nil)
	case errors.Is(err, pipeline.ErrClosed):
		return fail(c, http.StatusServiceUnavailable, "Service is shutting down", nil)
	case errors.Is(err, pipeline.ErrSuperseded):
		return fail(c, http.StatusConflict, "Request was superseded by a newer one", nil)
	case errors.Is(err, pipeline.ErrAllProvidersExhausted):
		return fail(c, http.StatusBadGateway, "All translation providers are unavailable", nil)
	default:
		s.logger.Error().Err(err).Msg("translation request failed")
		return internalError(c, "Failed to translate text")
	}
}

func (s *Server) handleLanguages(c echo.Context) error {
	return success(c, map[string]any{
		"codes": language.Codes(),
		"flags": language.Flags(),
	})
}

func (s *Server) handleStats(c echo.Context) error {
	snapshot, err := s.pipeline.Stats().Read(c.Request().Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("read stats failed")
		return internalError(c, "Failed to load stats")
	}
	return success(c, snapshot)
}

func (s *Server) requireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s.opts.AdminTokenHash == "" {
				return failUnauthorized(c)
			}

			header := strings.TrimSpace(c.Request().Header.Get("Authorization"))
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				return failUnauthorized(c)
			}
			if !auth.VerifyToken(strings.TrimSpace(token), s.opts.AdminTokenHash) {
				return failUnauthorized(c)
			}
			return next(c)
		}
	}
}
