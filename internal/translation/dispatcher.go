package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"horse.fit/polyglot/internal/breaker"
	"horse.fit/polyglot/internal/language"
	"horse.fit/polyglot/internal/resultcache"
	"horse.fit/polyglot/internal/retrier"
)

// Dispatcher resolves a translation request by consulting the cache and then
// walking the provider priority order, skipping providers whose circuit is
// open. The first successful, actually-translated response wins; every
// provider fault is absorbed into circuit breaker state and only the terminal
// outcome is returned.
type Dispatcher struct {
	registry *Registry
	cache    *resultcache.Cache
	breakers *breaker.Board
	retry    *retrier.Policy
	detect   func(string) string
	logger   zerolog.Logger
	group    singleflight.Group
}

type DispatcherOptions struct {
	Cache    *resultcache.Cache
	Breakers *breaker.Board
	Retry    *retrier.Policy
	// Detect resolves the source language of a text sample when the request
	// asks for automatic detection. Optional.
	Detect func(string) string
	Logger zerolog.Logger
}

func NewDispatcher(registry *Registry, opts DispatcherOptions) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		cache:    opts.Cache,
		breakers: opts.Breakers,
		retry:    opts.Retry,
		detect:   opts.Detect,
		logger:   opts.Logger,
	}
}

// Dispatch translates text into the target language. Identical in-flight
// requests are collapsed into a single provider cascade.
func (d *Dispatcher) Dispatch(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if d == nil || d.registry == nil {
		return nil, fmt.Errorf("dispatcher is not initialized")
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
	if language.IsAuto(req.SourceLang) && d.detect != nil {
		if detected := d.detect(text); detected != "" {
			sourceLang = detected
		}
	}

	// Already in the target language: answer without burning a provider call.
	if sourceLang != "" && sourceLang == targetLang {
		return &TranslateResponse{
			Text:         text,
			SourceLang:   sourceLang,
			TargetLang:   targetLang,
			ProviderName: PassthroughProvider,
		}, nil
	}

	if cached, ok := d.cacheGet(text, targetLang); ok {
		return cached, nil
	}

	value, err, _ := d.group.Do(resultcache.Key(text, targetLang), func() (any, error) {
		return d.cascade(ctx, text, sourceLang, targetLang)
	})
	if err != nil {
		return nil, err
	}
	return value.(*TranslateResponse), nil
}

func (d *Dispatcher) cascade(ctx context.Context, text, sourceLang, targetLang string) (*TranslateResponse, error) {
	for _, provider := range d.registry.Ordered() {
		name := provider.Name()

		if d.breakers != nil && d.breakers.Open(name) {
			d.logger.Debug().Str("provider", name).Msg("skipping provider with open circuit")
			continue
		}

		resp, err := d.attempt(ctx, provider, text, sourceLang, targetLang)
		if err != nil {
			if breaker.Rejected(err) {
				d.logger.Debug().Str("provider", name).Msg("provider circuit rejected the attempt")
			} else {
				d.logger.Warn().Err(err).Str("provider", name).Msg("provider attempt failed")
			}
			continue
		}

		if d.cache != nil {
			d.cache.Put(text, targetLang, resultcache.Result{
				Text:       resp.Text,
				SourceLang: resp.SourceLang,
				Provider:   resp.ProviderName,
			})
		}
		return resp, nil
	}

	return nil, ErrAllProvidersExhausted
}

func (d *Dispatcher) attempt(ctx context.Context, provider Provider, text, sourceLang, targetLang string) (*TranslateResponse, error) {
	var resp *TranslateResponse
	call := func() error {
		r, err := provider.Translate(ctx, TranslateRequest{
			Text:       text,
			SourceLang: sourceLang,
			TargetLang: targetLang,
		})
		if err != nil {
			return err
		}
		translated := strings.TrimSpace(r.Text)
		if translated == "" || strings.EqualFold(translated, text) {
			return fmt.Errorf("provider %s: %w", provider.Name(), ErrUntranslated)
		}
		resp = r
		return nil
	}

	run := call
	if d.retry != nil {
		run = func() error { return d.retry.Run(ctx, call) }
	}

	var err error
	if d.breakers != nil {
		err = d.breakers.Execute(provider.Name(), run)
	} else {
		err = run()
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (d *Dispatcher) cacheGet(text, targetLang string) (*TranslateResponse, bool) {
	if d.cache == nil {
		return nil, false
	}
	hit, ok := d.cache.Get(text, targetLang)
	if !ok {
		return nil, false
	}
	return &TranslateResponse{
		Text:         hit.Text,
		SourceLang:   hit.SourceLang,
		TargetLang:   targetLang,
		ProviderName: hit.Provider,
		Cached:       true,
	}, true
}
