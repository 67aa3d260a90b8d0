package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"horse.fit/polyglot/internal/breaker"
	"horse.fit/polyglot/internal/config"
	"horse.fit/polyglot/internal/langdetect"
	"horse.fit/polyglot/internal/pipeline"
	"horse.fit/polyglot/internal/providerconf"
	"horse.fit/polyglot/internal/ratelimit"
	"horse.fit/polyglot/internal/resultcache"
	"horse.fit/polyglot/internal/retrier"
	"horse.fit/polyglot/internal/translation"
)

// runtime bundles the wired pipeline shared by the serve and translate
// commands.
type runtime struct {
	cfg      *config.Config
	logger   zerolog.Logger
	registry *translation.Registry
	pipe     *pipeline.Service
	rdb      *redis.Client
}

func newRuntime(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*runtime, error) {
	specs, err := providerconf.Load(cfg.ProviderConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load providers: %w", err)
	}

	registry, err := translation.NewRegistryFromSpecs(specs, cfg.ProviderTimeout)
	if err != nil {
		return nil, fmt.Errorf("build provider registry: %w", err)
	}

	breakers := breaker.New(registry.Names(), breaker.Options{
		Threshold: cfg.BreakerThreshold,
		Cooldown:  cfg.BreakerCooldown,
		Logger:    logger,
	})

	cache := resultcache.New(cfg.CacheMaxEntries, cfg.CacheTTL)
	retry := retrier.New(cfg.ProviderAttempts, cfg.RetryBaseDelay, cfg.RetryMaxDelay, 2.0, 0.2)

	dispatcher := translation.NewDispatcher(registry, translation.DispatcherOptions{
		Cache:    cache,
		Breakers: breakers,
		Retry:    retry,
		Detect:   langdetect.Detect,
		Logger:   logger,
	})

	requester := ratelimit.NewStore(cfg.RequesterRPM, cfg.RequesterBurst)
	scope := ratelimit.NewStore(cfg.ScopeRPM, cfg.ScopeBurst)
	global := ratelimit.NewStore(cfg.GlobalRPM, cfg.GlobalBurst)
	requester.StartJanitor(ctx)
	scope.StartJanitor(ctx)
	global.StartJanitor(ctx)
	gate := ratelimit.NewGate(requester, scope, global)

	var stats pipeline.StatsStore
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect to redis %s: %w", cfg.RedisAddr, err)
		}

		stats = pipeline.NewRedisStatsStore(rdb)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("using redis stats store")
	}

	pipe := pipeline.New(pipeline.Options{
		QueueDepth:    cfg.QueueDepth,
		Workers:       cfg.QueueWorkers,
		SubmitWait:    cfg.QueueSubmitWait,
		MaxTextLength: cfg.MaxTextLength,
		DebounceDelay: cfg.DebounceDelay,
		Logger:        logger,
	}, gate, cache, dispatcher, stats)
	pipe.Start(ctx)

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		pipe:     pipe,
		rdb:      rdb,
	}, nil
}

func (r *runtime) close() {
	if r == nil {
		return
	}
	if err := r.pipe.Close(); err != nil {
		r.logger.Error().Err(err).Msg("pipeline shutdown failed")
	}
	if r.rdb != nil {
		if err := r.rdb.Close(); err != nil {
			r.logger.Error().Err(err).Msg("redis close failed")
		}
	}
}
